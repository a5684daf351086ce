package notify

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventContentRemoved = "moderation.content_removed"
	EventAccountBanned  = "moderation.account_banned"
	EventSweepSummary   = "moderation.sweep_summary"
)

type ContentRemoved struct {
	UserID      uuid.UUID `json:"user_id"`
	ContentType string    `json:"content_type"`
	ContentID   string    `json:"content_id"`
	ReportCount int       `json:"report_count"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type AccountBanned struct {
	UserID     uuid.UUID `json:"user_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SweepSummary goes to the moderation inbox after a sweep that did anything.
type SweepSummary struct {
	AdminEmail string    `json:"admin_email"`
	Selected   int       `json:"selected"`
	Actioned   int       `json:"actioned"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	RanAt      time.Time `json:"ran_at"`
}
