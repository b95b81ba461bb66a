package database

import (
	"github.com/agroreq/export-requirements-backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) *ProfileRepo {
	return &ProfileRepo{db}
}

// FindByID returns the profile matching the JWT subject
func (r *ProfileRepo) FindByID(id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.First(&profile, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindAll returns all profiles ordered by full name
func (r *ProfileRepo) FindAll() ([]*models.Profile, error) {
	var profiles []*models.Profile
	err := r.db.Order("full_name").Find(&profiles).Error
	return profiles, err
}

// UpdateRole sets a user's role tier and active flag
func (r *ProfileRepo) UpdateRole(id uuid.UUID, roleID int, isActive bool) error {
	res := r.db.Model(&models.Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"role_id":   roleID,
			"is_active": isActive,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
