package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is the runner account. Only the moderation and reputation fields are
// written by this service; profile data is owned by the mobile client.
type User struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string         `gorm:"size:255;index" json:"email"`
	Nickname       string         `gorm:"size:100" json:"nickname"`
	Role           string         `gorm:"size:20;default:'user'" json:"role"`
	ReportCount    int            `gorm:"not null;default:0" json:"report_count"`
	LastReportedAt *time.Time     `json:"last_reported_at,omitempty"`
	IsBanned       bool           `gorm:"not null;default:false;index" json:"is_banned"`
	BannedAt       *time.Time     `json:"banned_at,omitempty"`
	BanReason      string         `gorm:"size:255" json:"ban_reason,omitempty"`
	CommunityStats CommunityStats `gorm:"embedded;embeddedPrefix:community_" json:"community_stats"`
	MannerDistance MannerDistance `gorm:"embedded;embeddedPrefix:manner_" json:"manner_distance"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// CommunityStats are the participation counters maintained at meeting close.
type CommunityStats struct {
	TotalParticipated  int               `gorm:"not null;default:0" json:"total_participated"`
	HostedEvents       int               `gorm:"not null;default:0" json:"hosted_events"`
	AverageMannerScore float64           `gorm:"not null;default:5" json:"average_manner_score"`
	MannerScoreCount   int               `gorm:"not null;default:0" json:"manner_score_count"`
	ReceivedTags       datatypes.JSONMap `gorm:"type:jsonb" json:"received_tags"`
}

type MannerDistance struct {
	CurrentDistance float64    `gorm:"not null;default:10" json:"current_distance"`
	LastUpdated     *time.Time `json:"last_updated,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TagCounts returns received tags with their counts, dropping values that are
// not numeric. Values loaded from the database arrive as json.Number.
func (s CommunityStats) TagCounts() map[string]int {
	counts := make(map[string]int, len(s.ReceivedTags))
	for tag, v := range s.ReceivedTags {
		switch n := v.(type) {
		case float64:
			counts[tag] = int(n)
		case int:
			counts[tag] = n
		case int64:
			counts[tag] = int(n)
		case json.Number:
			if i, err := n.Int64(); err == nil {
				counts[tag] = int(i)
			} else if f, err := n.Float64(); err == nil {
				counts[tag] = int(f)
			}
		}
	}
	return counts
}
