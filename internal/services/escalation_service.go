package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/notify"
	"github.com/google/uuid"
)

const DefaultBanThreshold = 3

type ViolationResult struct {
	UserID      uuid.UUID `json:"user_id"`
	ReportCount int       `json:"report_count"`
	Banned      bool      `json:"banned"`
	BanReason   string    `json:"ban_reason,omitempty"`
}

// EscalationService counts violations per user and suspends the account
// when the count reaches the threshold.
type EscalationService struct {
	users     UserStore
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	threshold int
}

func NewEscalationService(users UserStore, notifier notify.Notifier, m *metrics.Metrics, threshold int) *EscalationService {
	if threshold <= 0 {
		threshold = DefaultBanThreshold
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &EscalationService{users: users, notifier: notifier, metrics: m, threshold: threshold}
}

func BanReason(count int) string {
	return fmt.Sprintf("repeated policy violations (count = %d)", count)
}

// Threshold is the violation count at which an account is banned.
func (s *EscalationService) Threshold() int {
	return s.threshold
}

// RecordViolation adds one violation. The threshold is compared with the
// count after the increment, so the third violation bans. Banned is true only
// for the call that performed the ban.
func (s *EscalationService) RecordViolation(ctx context.Context, userID uuid.UUID, now time.Time) (*ViolationResult, error) {
	count, err := s.users.IncrementReportCount(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	result := &ViolationResult{UserID: userID, ReportCount: count}
	if count >= s.threshold {
		reason := BanReason(count)
		banned, err := s.users.MarkBanned(ctx, userID, now, reason)
		if err != nil {
			s.metrics.Violations.Inc()
			return result, err
		}
		if banned {
			result.Banned = true
			result.BanReason = reason
		}
	}

	s.Recorded(ctx, result, now)
	return result, nil
}

// Recorded emits metrics and the ban notification for a violation that has
// already been committed, either by RecordViolation or by the sweep's
// combined write.
func (s *EscalationService) Recorded(ctx context.Context, result *ViolationResult, now time.Time) {
	s.metrics.Violations.Inc()
	if !result.Banned {
		return
	}
	s.metrics.Bans.Inc()
	slog.Info("account banned", "action", "ban", "user_id", result.UserID.String(), "report_count", result.ReportCount)
	s.notifier.AccountBanned(ctx, notify.AccountBanned{UserID: result.UserID, Reason: result.BanReason, OccurredAt: now})
}
