package database

import (
	"github.com/agroreq/export-requirements-backend/models"
	"gorm.io/gorm"
)

type CountryRepo struct {
	db *gorm.DB
}

func NewCountryRepo(db *gorm.DB) *CountryRepo {
	return &CountryRepo{db}
}

// FindAll returns the country catalog ordered by display name
func (r *CountryRepo) FindAll() ([]models.Country, error) {
	var countries []models.Country
	err := r.db.Order("name").Find(&countries).Error
	return countries, err
}
