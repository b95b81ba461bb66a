package database

import (
	"gorm.io/gorm"
)

type Database struct {
	countryRepo          *CountryRepo
	cropRepo             *CropRepo
	shortRequirementRepo *ShortRequirementRepo
	requirementRepo      *RequirementRepo
	profileRepo          *ProfileRepo
	feedbackRepo         *FeedbackRepo
	editLogRepo          *EditLogRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		countryRepo:          NewCountryRepo(db),
		cropRepo:             NewCropRepo(db),
		shortRequirementRepo: NewShortRequirementRepo(db),
		requirementRepo:      NewRequirementRepo(db),
		profileRepo:          NewProfileRepo(db),
		feedbackRepo:         NewFeedbackRepo(db),
		editLogRepo:          NewEditLogRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) CountryRepo() *CountryRepo {
	return d.countryRepo
}

func (d Database) CropRepo() *CropRepo {
	return d.cropRepo
}

func (d Database) ShortRequirementRepo() *ShortRequirementRepo {
	return d.shortRequirementRepo
}

func (d Database) RequirementRepo() *RequirementRepo {
	return d.requirementRepo
}

func (d Database) ProfileRepo() *ProfileRepo {
	return d.profileRepo
}

func (d Database) FeedbackRepo() *FeedbackRepo {
	return d.feedbackRepo
}

func (d Database) EditLogRepo() *EditLogRepo {
	return d.editLogRepo
}
