package database

import (
	"github.com/agroreq/export-requirements-backend/models"
	"gorm.io/gorm"
)

type EditLogRepo struct {
	db *gorm.DB
}

func NewEditLogRepo(db *gorm.DB) *EditLogRepo {
	return &EditLogRepo{db}
}

// FindByRequirement returns the edit history of one requirement, newest first
func (r *EditLogRepo) FindByRequirement(requirementID int) ([]*models.EditLog, error) {
	var logs []*models.EditLog
	err := r.db.
		Where("requirement_id = ?", requirementID).
		Order("edit_date DESC").
		Find(&logs).Error
	return logs, err
}
