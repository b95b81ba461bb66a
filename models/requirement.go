package models

import (
	"time"

	"github.com/google/uuid"
)

// Requirement represents the registered export requirements for one
// (country, crop) pair. The pair is unique across the table; the composite
// index is the sole arbiter when two users register the same pair at once.
type Requirement struct {
	ID                int       `json:"id" db:"id" gorm:"primaryKey;autoIncrement;not null"`
	CountryID         int       `json:"country_id" db:"country_id" gorm:"not null;uniqueIndex:idx_requirement_country_crop"`
	CropID            int       `json:"crop_id" db:"crop_id" gorm:"not null;uniqueIndex:idx_requirement_country_crop"`
	FullRequirements  string    `json:"full_requirements" db:"full_requirements" gorm:"type:text;not null"`
	PublicationNumber *string   `json:"publication_number,omitempty" db:"publication_number" gorm:"type:text"`
	PublicationYear   *int      `json:"publication_year,omitempty" db:"publication_year" gorm:"type:integer"`
	DocumentURL       *string   `json:"document_url,omitempty" db:"document_url" gorm:"type:text"`
	Notes             *string   `json:"notes,omitempty" db:"notes" gorm:"type:text"`
	UserID            uuid.UUID `json:"user_id" db:"user_id" gorm:"type:uuid;not null"`
	CreatedAt         time.Time `json:"created_at" db:"created_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`

	Country           Country            `json:"country,omitempty" gorm:"foreignKey:CountryID;references:ID"`
	Crop              Crop               `json:"crop,omitempty" gorm:"foreignKey:CropID;references:ID"`
	ShortRequirements []ShortRequirement `json:"short_requirements,omitempty" gorm:"many2many:requirement_short_requirements;joinForeignKey:RequirementID;joinReferences:ShortRequirementID"`
}
