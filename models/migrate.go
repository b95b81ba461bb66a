package models

import "gorm.io/gorm"

// Migrate creates or updates the schema for every model. Reference catalogs
// are listed before the tables that hold foreign keys into them.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Country{},
		&Crop{},
		&ShortRequirement{},
		&Profile{},
		&Requirement{},
		&RequirementShortRequirement{},
		&Feedback{},
		&EditLog{},
	)
}
