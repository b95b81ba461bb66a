package models

// ShortRequirement is a reusable short-form requirement phrase that can be
// linked to any number of export requirements
type ShortRequirement struct {
	ID   int    `json:"id" db:"id" gorm:"primaryKey;autoIncrement;not null"`
	Name string `json:"name" db:"name" gorm:"type:text;not null;unique"`
}
