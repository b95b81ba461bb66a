package models

// Country represents a destination country in the reference catalog
type Country struct {
	ID   int    `json:"id" db:"id" gorm:"primaryKey;autoIncrement;not null"`
	Name string `json:"name" db:"name" gorm:"type:text;not null;unique"`
}
