package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agroreq/export-requirements-backend/database"
	"github.com/agroreq/export-requirements-backend/errs"
	"github.com/agroreq/export-requirements-backend/models"
)

type adminHandler struct {
	responder   Responder
	logger      zerolog.Logger
	profileRepo *database.ProfileRepo
}

func newAdminHandler(profileRepo *database.ProfileRepo) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		profileRepo: profileRepo,
	}
}

type roleUpdateRequest struct {
	RoleID   int  `json:"role_id"`
	IsActive bool `json:"is_active"`
}

// listUsers returns every profile with its role, admin only
// @Summary List users
// @Tags Admin
// @Produce json
// @Success 200 {array} models.Profile "Profiles"
// @Failure 403 {object} ErrorResponse "Forbidden - non-admin role"
// @Router /admin/users [get]
func (h adminHandler) listUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.requireAdmin(w, r) {
			return
		}

		profiles, err := h.profileRepo.FindAll()
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "profiles", err))
			return
		}

		h.responder.WriteJSON(w, profiles)
	}
}

// updateUserRole changes a user's role and active flag. The super admin
// role is reserved and can never be assigned through the API
// @Summary Update user role
// @Tags Admin
// @Accept json
// @Produce json
// @Param userID path string true "User ID (UUID)"
// @Param role body roleUpdateRequest true "New role"
// @Success 200 {object} map[string]string "Success message"
// @Failure 400 {object} ErrorResponse "Bad Request - invalid role"
// @Failure 403 {object} ErrorResponse "Forbidden - non-admin role"
// @Router /admin/users/{userID}/role [put]
func (h adminHandler) updateUserRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.requireAdmin(w, r) {
			return
		}

		userID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid userID"))
			return
		}

		var req roleUpdateRequest
		if err := decodeJSONBody(r, &req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed role payload"))
			return
		}
		if req.RoleID < models.RoleViewer || req.RoleID > models.RoleAdmin {
			h.responder.WriteError(w, errs.NewValidationError("role_id", "role must be between viewer and admin"))
			return
		}

		if err := h.profileRepo.UpdateRole(userID, req.RoleID, req.IsActive); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "profile", err))
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "role updated",
		})
	}
}

func (h adminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	profile, err := ctxGetProfile(r.Context())
	if err != nil {
		h.responder.WriteError(w, errs.Unauthorized)
		return false
	}
	if !profile.CanAdmin() {
		h.responder.WriteError(w, errs.NewForbiddenError("managing users requires the admin role"))
		return false
	}
	return true
}
