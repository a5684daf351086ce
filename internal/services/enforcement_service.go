package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var ErrMissingParentPost = errors.New("comment report has no post_id")

const (
	OutcomeActioned  = "actioned"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

type SweepConfig struct {
	Concurrency int
	AdminEmail  string
}

// SweepOutcome is what happened to one overdue report. A failed report is
// left pending and is picked up again by the next sweep.
type SweepOutcome struct {
	ReportID    uuid.UUID `json:"report_id"`
	ContentType string    `json:"content_type"`
	ContentID   string    `json:"content_id"`
	Status      string    `json:"status"`
	Success     bool      `json:"success"`
	ReportCount int       `json:"report_count,omitempty"`
	Banned      bool      `json:"banned,omitempty"`
	Error       string    `json:"error,omitempty"`
}

type SweepResult struct {
	RanAt     time.Time      `json:"ran_at"`
	Selected  int            `json:"selected"`
	Actioned  int            `json:"actioned"`
	Skipped   int            `json:"skipped"`
	Failed    int            `json:"failed"`
	Cancelled int            `json:"cancelled"`
	Outcomes  []SweepOutcome `json:"outcomes"`
}

// EnforcementService removes reported content once the report deadline has
// passed. Runs may overlap: the conditional write in CommitAutoAction decides
// which run owns a report, and only that run charges the violation.
type EnforcementService struct {
	reports    ReportStore
	content    ContentStore
	media      MediaStore
	escalation *EscalationService
	notifier   notify.Notifier
	metrics    *metrics.Metrics
	cfg        SweepConfig
}

func NewEnforcementService(reports ReportStore, content ContentStore, media MediaStore, escalation *EscalationService, notifier notify.Notifier, m *metrics.Metrics, cfg SweepConfig) *EnforcementService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if media == nil {
		media = LogMediaStore{}
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &EnforcementService{
		reports:    reports,
		content:    content,
		media:      media,
		escalation: escalation,
		notifier:   notifier,
		metrics:    m,
		cfg:        cfg,
	}
}

// RunSweep actions every overdue report. It only fails as a whole when the
// overdue set cannot be read; per-report failures are in the outcomes. Once
// ctx is cancelled no further reports are started, but reports already in
// flight run to completion.
func (s *EnforcementService) RunSweep(ctx context.Context, now time.Time) (*SweepResult, error) {
	start := time.Now()
	now = now.UTC()

	reports, err := s.reports.ListPendingOverdue(ctx, now)
	if err != nil {
		s.metrics.SweepRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	outcomes := make([]SweepOutcome, len(reports))
	workCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i, report := range reports {
		if ctx.Err() != nil {
			outcomes[i] = SweepOutcome{
				ReportID:    report.ID,
				ContentType: report.ContentType,
				ContentID:   report.ContentID,
				Status:      OutcomeCancelled,
				Error:       ctx.Err().Error(),
			}
			continue
		}
		i, report := i, report
		g.Go(func() error {
			outcomes[i] = s.processReport(workCtx, report, now)
			return nil
		})
	}
	_ = g.Wait()

	result := &SweepResult{RanAt: now, Selected: len(reports), Outcomes: outcomes}
	for _, o := range outcomes {
		switch o.Status {
		case OutcomeActioned:
			result.Actioned++
		case OutcomeSkipped:
			result.Skipped++
		case OutcomeCancelled:
			result.Cancelled++
		}
		if !o.Success && o.Status != OutcomeCancelled {
			result.Failed++
		}
		s.metrics.ReportsProcessed.WithLabelValues(o.Status).Inc()
	}

	s.metrics.SweepRuns.WithLabelValues("ok").Inc()
	s.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	slog.Info("enforcement sweep finished",
		"action", "sweep",
		"selected", result.Selected,
		"actioned", result.Actioned,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"cancelled", result.Cancelled,
		"latency_ms", float64(time.Since(start).Milliseconds()),
	)

	if result.Actioned > 0 || result.Failed > 0 {
		s.notifier.SweepSummary(ctx, notify.SweepSummary{
			AdminEmail: s.cfg.AdminEmail,
			Selected:   result.Selected,
			Actioned:   result.Actioned,
			Skipped:    result.Skipped,
			Failed:     result.Failed,
			RanAt:      now,
		})
	}
	return result, nil
}

func (s *EnforcementService) processReport(ctx context.Context, report models.Report, now time.Time) SweepOutcome {
	out := SweepOutcome{
		ReportID:    report.ID,
		ContentType: report.ContentType,
		ContentID:   report.ContentID,
	}

	if err := s.removeContent(ctx, report); err != nil {
		return s.fail(out, report, "remove content", err)
	}

	committed, err := s.reports.CommitAutoAction(ctx, repository.AutoAction{
		ReportID:     report.ID,
		UserID:       report.ReportedUserID,
		Now:          now,
		BanThreshold: s.escalation.Threshold(),
		BanReason:    BanReason,
	})
	if err != nil {
		return s.fail(out, report, "commit action", err)
	}
	if !committed.Won {
		out.Status = OutcomeSkipped
		out.Success = true
		return out
	}
	out.Status = OutcomeActioned
	out.Success = true

	if !committed.ViolationRecorded {
		return out
	}

	userID := *report.ReportedUserID
	out.ReportCount = committed.ReportCount
	out.Banned = committed.Banned
	s.escalation.Recorded(ctx, &ViolationResult{
		UserID:      userID,
		ReportCount: committed.ReportCount,
		Banned:      committed.Banned,
		BanReason:   committed.BanReason,
	}, now)
	s.notifier.ContentRemoved(ctx, notify.ContentRemoved{
		UserID:      userID,
		ContentType: report.ContentType,
		ContentID:   report.ContentID,
		ReportCount: committed.ReportCount,
		OccurredAt:  now,
	})
	return out
}

// removeContent treats content that is already gone as removed.
func (s *EnforcementService) removeContent(ctx context.Context, report models.Report) error {
	switch report.ContentType {
	case models.ContentTypePost:
		urls, err := s.content.DeletePost(ctx, report.ContentID)
		if err != nil {
			if errors.Is(err, repository.ErrContentNotFound) {
				return nil
			}
			return err
		}
		if err := s.media.Purge(ctx, urls); err != nil {
			slog.Error("media purge failed",
				"action", "media_purge", "report_id", report.ID.String(), "error", err)
		}
		return nil

	case models.ContentTypeComment:
		if report.PostID == nil || *report.PostID == "" {
			return ErrMissingParentPost
		}
		err := s.content.DeleteComment(ctx, *report.PostID, report.ContentID)
		if err != nil && !errors.Is(err, repository.ErrContentNotFound) {
			return err
		}
		return nil

	default:
		return fmt.Errorf("content type %q is not auto-actioned", report.ContentType)
	}
}

func (s *EnforcementService) fail(out SweepOutcome, report models.Report, step string, err error) SweepOutcome {
	slog.Error("sweep step failed",
		"action", "sweep", "step", step, "report_id", report.ID.String(), "error", err)
	out.Status = OutcomeFailed
	out.Error = fmt.Sprintf("%s: %v", step, err)
	return out
}
