package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agroreq/export-requirements-backend/database"
	"github.com/agroreq/export-requirements-backend/errs"
	"github.com/agroreq/export-requirements-backend/models"
	"github.com/agroreq/export-requirements-backend/services"
)

// Attached documents are small PDFs or scans.
const maxUploadBytes = 32 << 20

const defaultPageSize = 10

// requirementWorkflow is the slice of the registration/edit workflow the
// handler invokes. Tests substitute a fake.
type requirementWorkflow interface {
	SubmitNew(ctx context.Context, input services.RequirementInput, actor models.Profile) (int, error)
	SubmitEdit(ctx context.Context, requirementID int, input services.RequirementInput, actor models.Profile) error
	Search(ctx context.Context, countryID, cropID int) (*models.Requirement, error)
}

type requirementHandler struct {
	responder       Responder
	logger          zerolog.Logger
	workflow        requirementWorkflow
	requirementRepo *database.RequirementRepo
	editLogRepo     *database.EditLogRepo
}

func newRequirementHandler(workflow requirementWorkflow, requirementRepo *database.RequirementRepo, editLogRepo *database.EditLogRepo) requirementHandler {
	logger := log.With().Str("handlerName", "requirementHandler").Logger()

	return requirementHandler{
		responder:       NewResponder(logger),
		logger:          logger,
		workflow:        workflow,
		requirementRepo: requirementRepo,
		editLogRepo:     editLogRepo,
	}
}

// RequirementPageCollection is one page of the requirement listing
type RequirementPageCollection struct {
	Requirements []database.RequirementPage `json:"requirements"`
	Total        int64                      `json:"total"`
	Page         int                        `json:"page"`
}

// listRequirements returns one page of requirements joined with country and
// crop names and the aggregated short-requirement phrases
// @Summary List requirements
// @Tags Requirements
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Success 200 {object} RequirementPageCollection "Page of requirements"
// @Failure 500 {object} ErrorResponse "Internal Server Error"
// @Router /requirements [get]
func (h requirementHandler) listRequirements() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		if size < 1 {
			size = defaultPageSize
		}

		rows, err := h.requirementRepo.FindPage(page, size)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "requirements", err))
			return
		}

		var total int64
		if len(rows) > 0 {
			total = rows[0].TotalCount
		}

		h.responder.WriteJSON(w, RequirementPageCollection{
			Requirements: rows,
			Total:        total,
			Page:         page,
		})
	}
}

// searchRequirement returns the single requirement registered for a
// (country, crop) pair
// @Summary Search requirement by country and crop
// @Tags Requirements
// @Produce json
// @Param country query int true "Country ID"
// @Param crop query int true "Crop ID"
// @Success 200 {object} models.Requirement "Matching requirement"
// @Failure 404 {object} ErrorResponse "Not Found - no requirement for the pair"
// @Router /requirements/search [get]
func (h requirementHandler) searchRequirement() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		countryID, _ := strconv.Atoi(r.URL.Query().Get("country"))
		cropID, _ := strconv.Atoi(r.URL.Query().Get("crop"))

		req, err := h.workflow.Search(r.Context(), countryID, cropID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, req)
	}
}

// getRequirement returns a requirement by id with its linked short
// requirements
// @Summary Get requirement
// @Tags Requirements
// @Produce json
// @Param requirementID path int true "Requirement ID"
// @Success 200 {object} models.Requirement "Requirement details"
// @Failure 400 {object} ErrorResponse "Bad Request - invalid requirementID"
// @Failure 404 {object} ErrorResponse "Not Found"
// @Router /requirement/{requirementID} [get]
func (h requirementHandler) getRequirement() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requirementID, ok := h.requirementIDFromURL(w, r)
		if !ok {
			return
		}

		req, err := h.requirementRepo.FindByID(requirementID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "requirement", err))
			return
		}

		h.responder.WriteJSON(w, req)
	}
}

// createRequirement registers a new requirement from a multipart form,
// uploading the optional attached document first
// @Summary Register requirement
// @Tags Requirements
// @Accept mpfd
// @Produce json
// @Success 201 {object} map[string]int "New requirement id"
// @Failure 400 {object} ErrorResponse "Bad Request - validation failed"
// @Failure 403 {object} ErrorResponse "Forbidden - viewer role"
// @Failure 409 {object} ErrorResponse "Conflict - pair already registered"
// @Router /requirement [post]
func (h requirementHandler) createRequirement() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := ctxGetProfile(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		input, ok := h.parseSubmission(w, r)
		if !ok {
			return
		}

		id, err := h.workflow.SubmitNew(r.Context(), input, profile)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONCreated(w, map[string]int{"id": id})
	}
}

// updateRequirement edits an existing requirement from a multipart form.
// The (country, crop) pair is immutable; the existing document is kept
// unless replaced or explicitly removed
// @Summary Edit requirement
// @Tags Requirements
// @Accept mpfd
// @Produce json
// @Param requirementID path int true "Requirement ID"
// @Success 200 {object} map[string]string "Success message"
// @Failure 403 {object} ErrorResponse "Forbidden - author or viewer role"
// @Failure 404 {object} ErrorResponse "Not Found"
// @Router /requirement/{requirementID} [put]
func (h requirementHandler) updateRequirement() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := ctxGetProfile(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		requirementID, ok := h.requirementIDFromURL(w, r)
		if !ok {
			return
		}

		input, ok := h.parseSubmission(w, r)
		if !ok {
			return
		}
		input.RemoveDocument = r.FormValue("remove_document") == "true"

		if err := h.workflow.SubmitEdit(r.Context(), requirementID, input, profile); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "requirement updated successfully",
		})
	}
}

// deleteRequirement removes a requirement, its tag links and writes a
// DELETE log entry. Administrative tier only
// @Summary Delete requirement
// @Tags Requirements
// @Produce json
// @Param requirementID path int true "Requirement ID"
// @Success 200 {object} map[string]string "Success message"
// @Failure 403 {object} ErrorResponse "Forbidden - non-admin role"
// @Failure 404 {object} ErrorResponse "Not Found"
// @Router /requirement/{requirementID} [delete]
func (h requirementHandler) deleteRequirement() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := ctxGetProfile(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		if !profile.CanAdmin() {
			h.responder.WriteError(w, errs.NewForbiddenError("deleting requirements requires the admin role"))
			return
		}

		requirementID, ok := h.requirementIDFromURL(w, r)
		if !ok {
			return
		}

		if err := h.requirementRepo.DeleteWithLog(r.Context(), requirementID, profile.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "requirement", err))
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "requirement deleted successfully",
		})
	}
}

// getRequirementHistory returns the edit log of a requirement, newest first
// @Summary Requirement edit history
// @Tags Requirements
// @Produce json
// @Param requirementID path int true "Requirement ID"
// @Success 200 {array} models.EditLog "Edit log entries"
// @Failure 403 {object} ErrorResponse "Forbidden - below editor role"
// @Router /requirement/{requirementID}/history [get]
func (h requirementHandler) getRequirementHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := ctxGetProfile(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		if !profile.CanEdit() {
			h.responder.WriteError(w, errs.NewForbiddenError("viewing edit history requires the editor role"))
			return
		}

		requirementID, ok := h.requirementIDFromURL(w, r)
		if !ok {
			return
		}

		logs, err := h.editLogRepo.FindByRequirement(requirementID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "edit logs", err))
			return
		}

		h.responder.WriteJSON(w, logs)
	}
}

func (h requirementHandler) requirementIDFromURL(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := chi.URLParam(r, "requirementID")
	if idStr == "" {
		h.responder.WriteError(w, errs.NewBadRequestError("missing requirementID"))
		return 0, false
	}

	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		h.responder.WriteError(w, errs.NewBadRequestError("invalid requirementID"))
		return 0, false
	}
	return id, true
}

// parseSubmission reads the multipart registration/edit form into a
// workflow input. The document is streamed from the form file, not
// buffered.
func (h requirementHandler) parseSubmission(w http.ResponseWriter, r *http.Request) (services.RequirementInput, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse multipart form")
		h.responder.WriteError(w, errs.NewBadRequestError("malformed multipart form"))
		return services.RequirementInput{}, false
	}

	countryID, _ := strconv.Atoi(r.FormValue("country_id"))
	cropID, _ := strconv.Atoi(r.FormValue("crop_id"))

	input := services.RequirementInput{
		CountryID:         countryID,
		CropID:            cropID,
		FullRequirements:  r.FormValue("full_requirements"),
		PublicationNumber: optionalString(r.FormValue("publication_number")),
		Notes:             optionalString(r.FormValue("notes")),
	}

	if yearStr := strings.TrimSpace(r.FormValue("publication_year")); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			h.responder.WriteError(w, errs.NewValidationError("publication_year", "publication year must be an integer"))
			return services.RequirementInput{}, false
		}
		input.PublicationYear = &year
	}

	shortIDs, err := parseIDList(r.FormValue("short_requirement_ids"))
	if err != nil {
		h.responder.WriteError(w, errs.NewValidationError("short_requirement_ids", "must be a comma-separated list of ids"))
		return services.RequirementInput{}, false
	}
	input.ShortRequirementIDs = shortIDs

	file, header, err := r.FormFile("document")
	switch err {
	case nil:
		input.Document = &services.DocumentUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     file,
		}
	case http.ErrMissingFile:
		// No attachment; nothing to do.
	default:
		h.responder.WriteError(w, errs.NewBadRequestError("malformed document upload"))
		return services.RequirementInput{}, false
	}

	return input, true
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func parseIDList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
