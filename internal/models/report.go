package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ContentTypePost    = "post"
	ContentTypeComment = "comment"
	ContentTypeUser    = "user"

	ReportStatusPending     = "pending"
	ReportStatusActionTaken = "action_taken"

	ActionTypeAutoRemoved = "auto_removed"
)

// Report is a user complaint about a post, comment or account. Post and
// comment reports carry an action deadline; once it passes the enforcement
// sweep removes the content. A report with AutoActionTaken set is never
// written again.
type Report struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ContentType     string     `gorm:"not null;size:20;index:idx_reports_sweep,priority:2" json:"content_type"`
	ContentID       string     `gorm:"not null;size:255;index" json:"content_id"`
	PostID          *string    `gorm:"size:255" json:"post_id,omitempty"`
	ReportedBy      uuid.UUID  `gorm:"type:uuid;not null;index" json:"reported_by"`
	ReportedUserID  *uuid.UUID `gorm:"type:uuid;index" json:"reported_user_id,omitempty"`
	Reason          string     `gorm:"not null;size:500" json:"reason"`
	Description     string     `gorm:"size:1000" json:"description,omitempty"`
	Status          string     `gorm:"not null;default:'pending';size:20;index:idx_reports_sweep,priority:1" json:"status"`
	ActionDeadline  *time.Time `gorm:"index:idx_reports_sweep,priority:3" json:"action_deadline,omitempty"`
	AutoActionTaken bool       `gorm:"not null;default:false" json:"auto_action_taken"`
	ActionTakenAt   *time.Time `json:"action_taken_at,omitempty"`
	ActionType      string     `gorm:"size:50" json:"action_type,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// AutoActionable reports whether the content type is ever removed by the sweep.
// User reports are moderated by hand.
func AutoActionable(contentType string) bool {
	return contentType == ContentTypePost || contentType == ContentTypeComment
}
