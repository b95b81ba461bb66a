package api

import (
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

type feedbackHandler struct {
	responder    Responder
	logger       zerolog.Logger
	feedbackRepo *database.FeedbackRepo
	config       map[string]string
}

func newFeedbackHandler(feedbackRepo *database.FeedbackRepo, config map[string]string) feedbackHandler {
	logger := log.With().Str("handlerName", "feedbackHandler").Logger()

	return feedbackHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		feedbackRepo: feedbackRepo,
		config:       config,
	}
}

type feedbackRequest struct {
	RequirementID *int   `json:"requirement_id"`
	CommentText   string `json:"comment_text"`
}

type feedbackResponseRequest struct {
	Response string `json:"response"`
}

// createFeedback records a comment from any authenticated user. Admins
// are notified by email on a best-effort basis.
// @Summary Submit feedback
// @Tags Feedback
// @Accept json
// @Produce json
// @Param feedback body feedbackRequest true "Feedback"
// @Success 201 {object} models.Feedback "Stored feedback"
// @Failure 400 {object} ErrorResponse "Bad Request - empty comment"
// @Router /feedback [post]
func (h feedbackHandler) createFeedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := ctxGetProfile(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		var req feedbackRequest
		if err := decodeJSONBody(r, &req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed feedback payload"))
			return
		}
		if strings.TrimSpace(req.CommentText) == "" {
			h.responder.WriteError(w, errs.NewValidationError("comment_text", "comment text is required"))
			return
		}

		feedback := models.Feedback{
			RequirementID: req.RequirementID,
			UserID:        profile.ID,
			CommentText:   strings.TrimSpace(req.CommentText),
		}
		if err := h.feedbackRepo.Add(&feedback); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("add", "feedback", err))
			return
		}

		// Notification failures must not fail the submission.
		if err := services.NotifyFeedback(h.config, feedback, profile); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to notify admins about new feedback")
		}

		h.responder.WriteJSONCreated(w, feedback)
	}
}

// listFeedback returns feedback entries. Admins see every entry,
// optionally filtered by country and crop; other roles see their own.
// @Summary List feedback
// @Tags Feedback
// @Produce json
// @Param country query int false "Country ID filter (admin only)"
// @Param crop query int false "Crop ID filter (admin only)"
// @Param sort query string false "Sort order: newest (default) or oldest"
// @Success 200 {array} models.Feedback "Feedback entries"
// @Router /feedback [get]
func (h feedbackHandler) listFeedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := ctxGetProfile(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		var entries []*models.Feedback
		if profile.CanAdmin() {
			countryID, _ := strconv.Atoi(r.URL.Query().Get("country"))
			cropID, _ := strconv.Atoi(r.URL.Query().Get("crop"))
			sort := r.URL.Query().Get("sort")
			entries, err = h.feedbackRepo.FindFiltered(countryID, cropID, sort)
		} else {
			entries, err = h.feedbackRepo.FindByUser(profile.ID)
		}
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "feedback", err))
			return
		}

		h.responder.WriteJSON(w, entries)
	}
}

// respondToFeedback appends an admin response to a feedback entry
// @Summary Respond to feedback
// @Tags Feedback
// @Accept json
// @Produce json
// @Param feedbackID path int true "Feedback ID"
// @Param response body feedbackResponseRequest true "Admin response"
// @Success 200 {object} map[string]string "Success message"
// @Failure 403 {object} ErrorResponse "Forbidden - non-admin role"
// @Failure 404 {object} ErrorResponse "Not Found"
// @Router /feedback/{feedbackID}/response [post]
func (h feedbackHandler) respondToFeedback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := ctxGetProfile(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		if !profile.CanAdmin() {
			h.responder.WriteError(w, errs.NewForbiddenError("responding to feedback requires the admin role"))
			return
		}

		feedbackID, err := strconv.Atoi(chi.URLParam(r, "feedbackID"))
		if err != nil || feedbackID <= 0 {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid feedbackID"))
			return
		}

		var req feedbackResponseRequest
		if err := decodeJSONBody(r, &req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed response payload"))
			return
		}
		if strings.TrimSpace(req.Response) == "" {
			h.responder.WriteError(w, errs.NewValidationError("response", "response text is required"))
			return
		}

		if _, err := h.feedbackRepo.FindByID(feedbackID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "feedback", err))
			return
		}

		if err := h.feedbackRepo.AppendResponse(feedbackID, strings.TrimSpace(req.Response)); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "feedback", err))
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "response recorded",
		})
	}
}
