package models

// Crop represents an exportable crop in the reference catalog
type Crop struct {
	ID   int    `json:"id" db:"id" gorm:"primaryKey;autoIncrement;not null"`
	Name string `json:"name" db:"name" gorm:"type:text;not null;unique"`
}
