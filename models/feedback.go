package models

import (
	"time"

	"github.com/google/uuid"
)

// Feedback is a user suggestion or correction note, optionally attached to a
// specific requirement (feedback left from the search view carries the
// requirement id; general suggestions do not).
type Feedback struct {
	ID            int       `json:"id" db:"id" gorm:"primaryKey;autoIncrement;not null"`
	RequirementID *int      `json:"requirement_id,omitempty" db:"requirement_id" gorm:"index"`
	UserID        uuid.UUID `json:"user_id" db:"user_id" gorm:"type:uuid;not null;index"`
	CommentText   string    `json:"comment_text" db:"comment_text" gorm:"type:text;not null"`
	Notes         *string   `json:"notes,omitempty" db:"notes" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at" db:"created_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`

	Profile     Profile      `json:"profile,omitempty" gorm:"foreignKey:UserID;references:ID"`
	Requirement *Requirement `json:"requirement,omitempty" gorm:"foreignKey:RequirementID;references:ID"`
}
