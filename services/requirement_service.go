package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/agroreq/export-requirements-backend/errs"
	"github.com/agroreq/export-requirements-backend/models"
	"github.com/agroreq/export-requirements-backend/storage"
)

// RequirementStore is the slice of the repository the workflow needs. The
// two write procedures are atomic: they apply every row change in one
// transaction or none at all.
type RequirementStore interface {
	FindByID(id int) (*models.Requirement, error)
	FindByCountryAndCrop(countryID, cropID int) (*models.Requirement, error)
	CreateWithShorts(ctx context.Context, req *models.Requirement, shortIDs []int) error
	UpdateWithShorts(ctx context.Context, req *models.Requirement, shortIDs []int) error
}

// DocumentUpload is a document attached to a submission.
type DocumentUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// RequirementInput carries the form fields of a registration or edit
// submission.
type RequirementInput struct {
	CountryID           int
	CropID              int
	FullRequirements    string
	PublicationNumber   *string
	PublicationYear     *int
	Notes               *string
	ShortRequirementIDs []int
	Document            *DocumentUpload
	// RemoveDocument clears the stored document URL on edit. Ignored when
	// a replacement Document is supplied.
	RemoveDocument bool
}

// RequirementService orchestrates the registration/edit workflow: input
// validation, role authorization, the optional document upload, the atomic
// repository write, and compensating blob cleanup when the write fails
// after an upload succeeded.
type RequirementService struct {
	store  RequirementStore
	blobs  storage.BlobStore
	logger zerolog.Logger
}

func NewRequirementService(store RequirementStore, blobs storage.BlobStore) *RequirementService {
	logger := log.With().Str("serviceName", "requirementService").Logger()
	return &RequirementService{
		store:  store,
		blobs:  blobs,
		logger: logger,
	}
}

// SubmitNew registers a new requirement for a (country, crop) pair and
// returns its id. The pair uniqueness is enforced by the repository at
// commit time; a concurrent registration race resolves to one success and
// one duplicate error.
func (s *RequirementService) SubmitNew(ctx context.Context, input RequirementInput, actor models.Profile) (int, error) {
	if !actor.CanCreate() {
		return 0, errs.NewForbiddenError("registering requirements requires the author role")
	}
	if err := validateInput(input); err != nil {
		return 0, err
	}

	var documentURL *string
	var uploadedPath string
	if input.Document != nil {
		path := documentPath(input.Document.Filename)
		url, err := s.blobs.Upload(ctx, path, input.Document.Content, input.Document.ContentType)
		if err != nil {
			return 0, errs.NewUploadFailedError(err)
		}
		documentURL = &url
		uploadedPath = path
	}

	req := models.Requirement{
		CountryID:         input.CountryID,
		CropID:            input.CropID,
		FullRequirements:  strings.TrimSpace(input.FullRequirements),
		PublicationNumber: input.PublicationNumber,
		PublicationYear:   input.PublicationYear,
		DocumentURL:       documentURL,
		Notes:             input.Notes,
		UserID:            actor.ID,
	}

	if err := s.store.CreateWithShorts(ctx, &req, input.ShortRequirementIDs); err != nil {
		s.cleanupUpload(ctx, uploadedPath)
		if errs.IsDuplicateRequirement(err) {
			return 0, err
		}
		return 0, errs.NewWriteFailedError("create requirement", err)
	}

	return req.ID, nil
}

// SubmitEdit updates an existing requirement. Editors only; the (country,
// crop) pair is immutable on edit. An existing document is preserved unless
// the caller uploads a replacement or explicitly signals removal; only a
// newly uploaded replacement is deleted when the write fails.
func (s *RequirementService) SubmitEdit(ctx context.Context, requirementID int, input RequirementInput, actor models.Profile) error {
	if !actor.CanEdit() {
		return errs.NewForbiddenError("editing requirements requires the editor role")
	}
	if strings.TrimSpace(input.FullRequirements) == "" {
		return errs.NewValidationError("full_requirements", "full requirements text is required")
	}
	if input.Document != nil && strings.TrimSpace(input.Document.Filename) == "" {
		return errs.NewValidationError("document", "document filename is required")
	}

	existing, err := s.store.FindByID(requirementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewNotFound("requirement")
		}
		return errs.NewDatabaseError("find", "requirement", err)
	}

	documentURL := existing.DocumentURL
	if input.RemoveDocument {
		documentURL = nil
	}

	var uploadedPath string
	if input.Document != nil {
		path := documentPath(input.Document.Filename)
		url, err := s.blobs.Upload(ctx, path, input.Document.Content, input.Document.ContentType)
		if err != nil {
			return errs.NewUploadFailedError(err)
		}
		documentURL = &url
		uploadedPath = path
	}

	req := models.Requirement{
		ID:                requirementID,
		CountryID:         existing.CountryID,
		CropID:            existing.CropID,
		FullRequirements:  strings.TrimSpace(input.FullRequirements),
		PublicationNumber: input.PublicationNumber,
		PublicationYear:   input.PublicationYear,
		DocumentURL:       documentURL,
		Notes:             input.Notes,
		UserID:            actor.ID,
	}

	if err := s.store.UpdateWithShorts(ctx, &req, input.ShortRequirementIDs); err != nil {
		s.cleanupUpload(ctx, uploadedPath)
		// The row can vanish between the read and the update.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewNotFound("requirement")
		}
		return errs.NewWriteFailedError("update requirement", err)
	}

	return nil
}

// Search returns the requirement registered for the pair, if any.
func (s *RequirementService) Search(ctx context.Context, countryID, cropID int) (*models.Requirement, error) {
	if countryID <= 0 || cropID <= 0 {
		return nil, errs.NewValidationError("country_id", "country and crop are required")
	}

	req, err := s.store.FindByCountryAndCrop(countryID, cropID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFound("requirement")
		}
		return nil, errs.NewDatabaseError("find", "requirement", err)
	}
	return req, nil
}

// cleanupUpload is the compensating action for a write failure after a
// successful upload. A cleanup failure is logged and never replaces the
// write error the caller is about to surface.
func (s *RequirementService) cleanupUpload(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.blobs.Delete(ctx, path); err != nil {
		s.logger.Error().Err(err).Str("path", path).
			Msg("Cleanup of uploaded document failed; blob may be orphaned")
	}
}

func validateInput(input RequirementInput) error {
	if input.CountryID <= 0 {
		return errs.NewValidationError("country_id", "country is required")
	}
	if input.CropID <= 0 {
		return errs.NewValidationError("crop_id", "crop is required")
	}
	if strings.TrimSpace(input.FullRequirements) == "" {
		return errs.NewValidationError("full_requirements", "full requirements text is required")
	}
	if input.Document != nil && strings.TrimSpace(input.Document.Filename) == "" {
		return errs.NewValidationError("document", "document filename is required")
	}
	return nil
}

// documentPath builds a collision-free blob path for an uploaded document,
// keeping the original filename visible for download.
func documentPath(filename string) string {
	base := strings.ReplaceAll(filename, "/", "_")
	base = strings.ReplaceAll(base, "\\", "_")
	base = strings.ReplaceAll(base, " ", "_")
	return fmt.Sprintf("requirements/%s-%s", uuid.New().String(), base)
}
