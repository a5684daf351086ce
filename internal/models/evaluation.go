package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Evaluation is what one participant submitted about the others after a
// meeting. Entries maps evaluated user id to
// {"mannerScore": 1..5, "specialSituations": [...]}. Rows are never updated,
// only deleted by moderators.
type Evaluation struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	MeetingID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_evaluations_meeting_evaluator,priority:1" json:"meeting_id"`
	EvaluatorID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_evaluations_meeting_evaluator,priority:2" json:"evaluator_id"`
	Entries     datatypes.JSON `gorm:"type:jsonb;not null" json:"entries"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (e *Evaluation) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
