package database

import (
	"github.com/agroreq/export-requirements-backend/models"
	"gorm.io/gorm"
)

type ShortRequirementRepo struct {
	db *gorm.DB
}

func NewShortRequirementRepo(db *gorm.DB) *ShortRequirementRepo {
	return &ShortRequirementRepo{db}
}

// FindAll returns the short-requirement catalog ordered by display name
func (r *ShortRequirementRepo) FindAll() ([]models.ShortRequirement, error) {
	var shorts []models.ShortRequirement
	err := r.db.Order("name").Find(&shorts).Error
	return shorts, err
}
