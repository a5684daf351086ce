package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntakeService(author uuid.UUID, created *[]*models.Report) *ModerationService {
	reports := &mockReportStore{
		createFunc: func(ctx context.Context, report *models.Report) error {
			*created = append(*created, report)
			return nil
		},
	}
	content := &mockContentStore{
		findAuthorFunc: func(ctx context.Context, contentType, contentID string) (uuid.UUID, error) {
			if contentID == "gone" {
				return uuid.Nil, repository.ErrContentNotFound
			}
			return author, nil
		},
	}
	svc := NewModerationService(reports, content, 0)
	svc.now = func() time.Time { return testNow }
	return svc
}

func strPtr(s string) *string { return &s }

func TestModerationService_CreateReport(t *testing.T) {
	ctx := context.Background()
	reporter := uuid.New()
	author := uuid.New()

	t.Run("post report gets deadline and author", func(t *testing.T) {
		var created []*models.Report
		svc := newIntakeService(author, &created)

		report, err := svc.CreateReport(ctx, reporter, &dto.CreateReportRequest{
			ContentType: "post",
			ContentID:   "post-1",
			Reason:      " spam ",
		})
		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.Equal(t, models.ReportStatusPending, report.Status)
		assert.Equal(t, "spam", report.Reason)
		require.NotNil(t, report.ActionDeadline)
		assert.Equal(t, testNow.Add(24*time.Hour), *report.ActionDeadline)
		require.NotNil(t, report.ReportedUserID)
		assert.Equal(t, author, *report.ReportedUserID)
	})

	t.Run("comment report keeps parent post", func(t *testing.T) {
		var created []*models.Report
		svc := newIntakeService(author, &created)

		report, err := svc.CreateReport(ctx, reporter, &dto.CreateReportRequest{
			ContentType: "comment",
			ContentID:   "c-9",
			PostID:      strPtr("post-1"),
			Reason:      "abuse",
		})
		require.NoError(t, err)
		require.NotNil(t, report.PostID)
		assert.Equal(t, "post-1", *report.PostID)
		assert.NotNil(t, report.ActionDeadline)
	})

	t.Run("user report has no deadline", func(t *testing.T) {
		var created []*models.Report
		svc := newIntakeService(author, &created)
		target := uuid.New()

		report, err := svc.CreateReport(ctx, reporter, &dto.CreateReportRequest{
			ContentType: "user",
			ContentID:   target.String(),
			Reason:      "fake profile",
		})
		require.NoError(t, err)
		assert.Nil(t, report.ActionDeadline)
		require.NotNil(t, report.ReportedUserID)
		assert.Equal(t, target, *report.ReportedUserID)
	})

	t.Run("description is filtered", func(t *testing.T) {
		var created []*models.Report
		svc := newIntakeService(author, &created)

		report, err := svc.CreateReport(ctx, reporter, &dto.CreateReportRequest{
			ContentType: "post",
			ContentID:   "post-2",
			Reason:      "contact",
			Description: "he posted runner@example.com again",
		})
		require.NoError(t, err)
		assert.Equal(t, "he posted [redacted] again", report.Description)
	})

	cases := []struct {
		name string
		req  dto.CreateReportRequest
		err  error
	}{
		{"unknown type", dto.CreateReportRequest{ContentType: "meeting", ContentID: "x", Reason: "r"}, ErrInvalidContentType},
		{"missing content id", dto.CreateReportRequest{ContentType: "post", Reason: "r"}, ErrContentIDRequired},
		{"missing reason", dto.CreateReportRequest{ContentType: "post", ContentID: "x"}, ErrReasonRequired},
		{"comment without post", dto.CreateReportRequest{ContentType: "comment", ContentID: "c", Reason: "r"}, ErrPostIDRequired},
		{"content gone", dto.CreateReportRequest{ContentType: "post", ContentID: "gone", Reason: "r"}, ErrReportedContent},
		{"self report", dto.CreateReportRequest{ContentType: "user", ContentID: reporter.String(), Reason: "r"}, ErrSelfReport},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var created []*models.Report
			svc := newIntakeService(author, &created)

			_, err := svc.CreateReport(ctx, reporter, &tc.req)
			assert.ErrorIs(t, err, tc.err)
			assert.Empty(t, created)
		})
	}

	t.Run("own post", func(t *testing.T) {
		var created []*models.Report
		svc := newIntakeService(reporter, &created)

		_, err := svc.CreateReport(ctx, reporter, &dto.CreateReportRequest{ContentType: "post", ContentID: "mine", Reason: "r"})
		assert.ErrorIs(t, err, ErrSelfReport)
	})
}

func TestModerationService_FilterText(t *testing.T) {
	svc := NewModerationService(&mockReportStore{}, &mockContentStore{}, time.Hour)

	assert.Equal(t, "", svc.FilterText(""))
	assert.Equal(t, "slow pace today", svc.FilterText("slow pace today"))
	assert.Equal(t, "[content filtered]", svc.FilterText("what a Bastard"))
	assert.Equal(t, "call [redacted]", svc.FilterText("call 010-1234-5678"))
}
