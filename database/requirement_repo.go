package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/agroreq/export-requirements-backend/errs"
	"github.com/agroreq/export-requirements-backend/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Name of the composite unique index on (country_id, crop_id). A violation
// of this constraint is the duplicate-pair case and is reported distinctly
// from every other write failure.
const pairConstraint = "idx_requirement_country_crop"

type RequirementRepo struct {
	db *gorm.DB
}

func NewRequirementRepo(db *gorm.DB) *RequirementRepo {
	return &RequirementRepo{db}
}

// FindByID returns a requirement with its linked short requirements and
// country/crop names preloaded
func (r *RequirementRepo) FindByID(id int) (*models.Requirement, error) {
	var req models.Requirement
	err := r.db.
		Preload("ShortRequirements").
		Preload("Country").
		Preload("Crop").
		First(&req, id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByCountryAndCrop returns the single requirement registered for the
// pair, or gorm.ErrRecordNotFound when none exists
func (r *RequirementRepo) FindByCountryAndCrop(countryID, cropID int) (*models.Requirement, error) {
	var req models.Requirement
	err := r.db.
		Preload("ShortRequirements").
		Preload("Country").
		Preload("Crop").
		Where("country_id = ? AND crop_id = ?", countryID, cropID).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// RequirementPage is one row of the paginated listing: the requirement
// joined with display names and an aggregate of linked short-requirement
// names, plus the total row count for the pager.
type RequirementPage struct {
	ID                   int     `json:"id"`
	CountryID            int     `json:"country_id"`
	CountryName          string  `json:"country_name"`
	CropID               int     `json:"crop_id"`
	CropName             string  `json:"crop_name"`
	ShortRequirementsAgg string  `json:"short_requirements_agg"`
	PublicationNumber    *string `json:"publication_number,omitempty"`
	PublicationYear      *int    `json:"publication_year,omitempty"`
	DocumentURL          *string `json:"document_url,omitempty"`
	TotalCount           int64   `json:"total_count"`
}

// FindPage returns one page of the listing ordered by country then crop name
func (r *RequirementRepo) FindPage(page, size int) ([]RequirementPage, error) {
	if page < 1 {
		page = 1
	}
	var rows []RequirementPage
	err := r.db.Raw(`
		SELECT er.id,
		       er.country_id,
		       c.name AS country_name,
		       er.crop_id,
		       cr.name AS crop_name,
		       COALESCE(string_agg(sr.name, ', ' ORDER BY sr.name), '') AS short_requirements_agg,
		       er.publication_number,
		       er.publication_year,
		       er.document_url,
		       COUNT(*) OVER () AS total_count
		FROM requirements er
		JOIN countries c ON c.id = er.country_id
		JOIN crops cr ON cr.id = er.crop_id
		LEFT JOIN requirement_short_requirements link ON link.requirement_id = er.id
		LEFT JOIN short_requirements sr ON sr.id = link.short_requirement_id
		GROUP BY er.id, c.name, cr.name
		ORDER BY c.name, cr.name
		LIMIT ? OFFSET ?`,
		size, (page-1)*size,
	).Scan(&rows).Error
	return rows, err
}

// CreateWithShorts inserts the requirement row, its short-requirement links
// and a CREATE log entry as one transaction. Either all rows become visible
// or none do; a duplicate (country, crop) pair rolls everything back and is
// returned as a distinct conflict error.
func (r *RequirementRepo) CreateWithShorts(ctx context.Context, req *models.Requirement, shortIDs []int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("ShortRequirements", "Country", "Crop").Create(req).Error; err != nil {
			if errs.IsUniqueViolation(err, pairConstraint) {
				return errs.NewDuplicateRequirementError(req.CountryID, req.CropID, err)
			}
			return err
		}

		if err := replaceShortLinks(tx, req.ID, shortIDs, false); err != nil {
			return err
		}

		return insertEditLog(tx, req, shortIDs, models.EditTypeCreate)
	})
}

// UpdateWithShorts updates the scalar fields of an existing requirement and
// replaces its full short-requirement link set in one transaction. The
// (country, crop) pair is immutable on edit, so the pair constraint cannot
// fire here.
func (r *RequirementRepo) UpdateWithShorts(ctx context.Context, req *models.Requirement, shortIDs []int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Requirement{}).
			Where("id = ?", req.ID).
			Updates(map[string]interface{}{
				"full_requirements":  req.FullRequirements,
				"publication_number": req.PublicationNumber,
				"publication_year":   req.PublicationYear,
				"document_url":       req.DocumentURL,
				"notes":              req.Notes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := replaceShortLinks(tx, req.ID, shortIDs, true); err != nil {
			return err
		}

		return insertEditLog(tx, req, shortIDs, models.EditTypeUpdate)
	})
}

// DeleteWithLog removes a requirement, its links and a DELETE log entry in
// one transaction. Administrative use only.
func (r *RequirementRepo) DeleteWithLog(ctx context.Context, id int, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		logEntry := models.EditLog{
			RequirementID: id,
			UserID:        userID,
			EditDate:      time.Now().UTC(),
			EditType:      models.EditTypeDelete,
		}
		if err := tx.Create(&logEntry).Error; err != nil {
			return err
		}

		if err := tx.Where("requirement_id = ?", id).
			Delete(&models.RequirementShortRequirement{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Requirement{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// replaceShortLinks applies the full-replace semantics for the link set:
// delete every existing row for the requirement, then insert the selected
// set. Must run inside the caller's transaction.
func replaceShortLinks(tx *gorm.DB, requirementID int, shortIDs []int, deleteExisting bool) error {
	if deleteExisting {
		if err := tx.Where("requirement_id = ?", requirementID).
			Delete(&models.RequirementShortRequirement{}).Error; err != nil {
			return err
		}
	}

	if len(shortIDs) == 0 {
		return nil
	}

	links := make([]models.RequirementShortRequirement, 0, len(shortIDs))
	for _, shortID := range shortIDs {
		links = append(links, models.RequirementShortRequirement{
			RequirementID:      requirementID,
			ShortRequirementID: shortID,
		})
	}
	return tx.Create(&links).Error
}

func insertEditLog(tx *gorm.DB, req *models.Requirement, shortIDs []int, editType string) error {
	changes, err := json.Marshal(map[string]interface{}{
		"full_requirements":     req.FullRequirements,
		"publication_number":    req.PublicationNumber,
		"publication_year":      req.PublicationYear,
		"document_url":          req.DocumentURL,
		"notes":                 req.Notes,
		"short_requirement_ids": shortIDs,
	})
	if err != nil {
		return err
	}

	logEntry := models.EditLog{
		RequirementID: req.ID,
		UserID:        req.UserID,
		EditDate:      time.Now().UTC(),
		EditType:      editType,
		Changes:       datatypes.JSON(changes),
	}
	return tx.Create(&logEntry).Error
}
