package database

import (
	"github.com/agroreq/export-requirements-backend/models"
	"gorm.io/gorm"
)

type CropRepo struct {
	db *gorm.DB
}

func NewCropRepo(db *gorm.DB) *CropRepo {
	return &CropRepo{db}
}

// FindAll returns the crop catalog ordered by display name
func (r *CropRepo) FindAll() ([]models.Crop, error) {
	var crops []models.Crop
	err := r.db.Order("name").Find(&crops).Error
	return crops, err
}
