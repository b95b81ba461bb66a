package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// setupRoutes sets up all routes with authentication
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, startupTime time.Time) {
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		responder := NewResponder(log.Logger)
		responder.WriteJSON(w, map[string]string{
			"status": "ok",
			"uptime": time.Since(startupTime).String(),
		})
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)
		r.Use(ColoredHTTPLoggingMiddleware)

		// Reference catalogs (countries, crops, short requirements)
		r.Get("/reference", handlers.referenceHandler.getReferenceData())

		// Requirement endpoints
		r.Get("/requirements", handlers.requirementHandler.listRequirements())
		r.Get("/requirements/search", handlers.requirementHandler.searchRequirement())
		r.Get("/requirement/{requirementID}", handlers.requirementHandler.getRequirement())
		r.Post("/requirement", handlers.requirementHandler.createRequirement())
		r.Put("/requirement/{requirementID}", handlers.requirementHandler.updateRequirement())
		r.Delete("/requirement/{requirementID}", handlers.requirementHandler.deleteRequirement())
		r.Get("/requirement/{requirementID}/history", handlers.requirementHandler.getRequirementHistory())

		// Feedback endpoints
		r.Post("/feedback", handlers.feedbackHandler.createFeedback())
		r.Get("/feedback", handlers.feedbackHandler.listFeedback())
		r.Post("/feedback/{feedbackID}/response", handlers.feedbackHandler.respondToFeedback())

		// Admin user management
		r.Get("/admin/users", handlers.adminHandler.listUsers())
		r.Put("/admin/users/{userID}/role", handlers.adminHandler.updateUserRole())
	})
}
