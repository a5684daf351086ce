package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Post is a feed post from a meetup. ImageURLs point into the external image
// store.
type Post struct {
	ID           string                      `gorm:"size:255;primaryKey" json:"id"`
	AuthorID     uuid.UUID                   `gorm:"type:uuid;not null;index" json:"author_id"`
	MeetingID    *uuid.UUID                  `gorm:"type:uuid;index" json:"meeting_id,omitempty"`
	Content      string                      `gorm:"type:text" json:"content"`
	ImageURLs    datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"image_urls"`
	CommentCount int                         `gorm:"not null;default:0" json:"comment_count"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

type Comment struct {
	ID        string    `gorm:"size:255;primaryKey" json:"id"`
	PostID    string    `gorm:"size:255;not null;index" json:"post_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
