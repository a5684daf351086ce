package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/repository"
	"github.com/google/uuid"
)

const DefaultActionWindow = 24 * time.Hour

var (
	ErrInvalidContentType = errors.New("invalid content_type: must be user, post, or comment")
	ErrReasonRequired     = errors.New("reason is required")
	ErrContentIDRequired  = errors.New("content_id is required")
	ErrPostIDRequired     = errors.New("post_id is required for comment reports")
	ErrSelfReport         = errors.New("cannot report your own content")
	ErrReportedContent    = errors.New("reported content does not exist")
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot",
	"retard", "retarded", "tranny",
}

// ModerationService handles report intake and the admin report list.
type ModerationService struct {
	reports           ReportStore
	content           ContentStore
	actionWindow      time.Duration
	bannedWordRegexps []*regexp.Regexp
	contactPattern    *regexp.Regexp
	now               func() time.Time
}

func NewModerationService(reports ReportStore, content ContentStore, actionWindow time.Duration) *ModerationService {
	if actionWindow <= 0 {
		actionWindow = DefaultActionWindow
	}
	ms := &ModerationService{
		reports:      reports,
		content:      content,
		actionWindow: actionWindow,
		now:          time.Now,
	}
	ms.bannedWordRegexps = make([]*regexp.Regexp, 0, len(BannedWords))
	for _, word := range BannedWords {
		ms.bannedWordRegexps = append(ms.bannedWordRegexps, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	ms.contactPattern = regexp.MustCompile(`(?i)(\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[a-z]{2,}\b|\d{3}[-.\s]?\d{3,4}[-.\s]?\d{4})`)
	return ms
}

// FilterText masks report descriptions that contain slurs or contact details
// before they reach the moderator queue.
func (s *ModerationService) FilterText(text string) string {
	if text == "" {
		return ""
	}
	for _, re := range s.bannedWordRegexps {
		if re.MatchString(text) {
			return "[content filtered]"
		}
	}
	return s.contactPattern.ReplaceAllString(text, "[redacted]")
}

// CreateReport stores a new pending report. Post and comment reports get an
// action deadline; user reports never do.
func (s *ModerationService) CreateReport(ctx context.Context, reporterID uuid.UUID, req *dto.CreateReportRequest) (*models.Report, error) {
	contentType := strings.TrimSpace(req.ContentType)
	switch contentType {
	case models.ContentTypePost, models.ContentTypeComment, models.ContentTypeUser:
	default:
		return nil, ErrInvalidContentType
	}
	if strings.TrimSpace(req.ContentID) == "" {
		return nil, ErrContentIDRequired
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, ErrReasonRequired
	}

	now := s.now().UTC()
	report := &models.Report{
		ContentType:    contentType,
		ContentID:      strings.TrimSpace(req.ContentID),
		ReportedBy:     reporterID,
		ReportedUserID: req.ReportedUserID,
		Reason:         strings.TrimSpace(req.Reason),
		Description:    s.FilterText(strings.TrimSpace(req.Description)),
		Status:         models.ReportStatusPending,
		CreatedAt:      now,
	}

	switch contentType {
	case models.ContentTypeComment:
		if req.PostID == nil || strings.TrimSpace(*req.PostID) == "" {
			return nil, ErrPostIDRequired
		}
		postID := strings.TrimSpace(*req.PostID)
		report.PostID = &postID
	case models.ContentTypeUser:
		if report.ReportedUserID == nil {
			if id, err := uuid.Parse(report.ContentID); err == nil {
				report.ReportedUserID = &id
			}
		}
	}

	if models.AutoActionable(contentType) {
		deadline := now.Add(s.actionWindow)
		report.ActionDeadline = &deadline

		if report.ReportedUserID == nil {
			author, err := s.content.FindAuthor(ctx, contentType, report.ContentID)
			if err != nil {
				if errors.Is(err, repository.ErrContentNotFound) {
					return nil, ErrReportedContent
				}
				return nil, err
			}
			report.ReportedUserID = &author
		}
	}

	if report.ReportedUserID != nil && *report.ReportedUserID == reporterID {
		return nil, ErrSelfReport
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ModerationService) ListReports(ctx context.Context, status string, limit, offset int) ([]models.Report, int64, error) {
	return s.reports.List(ctx, status, limit, offset)
}
