package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Edit log entry types.
const (
	EditTypeCreate = "CREATE"
	EditTypeUpdate = "UPDATE"
	EditTypeDelete = "DELETE"
)

// EditLog records one write to a requirement. Rows are inserted inside the
// same transaction as the requirement write, so a log entry never exists
// without the write it describes.
type EditLog struct {
	ID            int            `json:"id" db:"id" gorm:"primaryKey;autoIncrement;not null"`
	RequirementID int            `json:"requirement_id" db:"requirement_id" gorm:"not null;index"`
	UserID        uuid.UUID      `json:"user_id" db:"user_id" gorm:"type:uuid;not null"`
	EditDate      time.Time      `json:"edit_date" db:"edit_date" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`
	EditType      string         `json:"edit_type" db:"edit_type" gorm:"type:text;not null"`
	Notes         *string        `json:"notes,omitempty" db:"notes" gorm:"type:text"`
	Changes       datatypes.JSON `json:"changes,omitempty" db:"changes" gorm:"type:jsonb"`
}
