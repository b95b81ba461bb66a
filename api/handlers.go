package api

import (
	"github.com/agroreq/export-requirements-backend/database"
	"github.com/agroreq/export-requirements-backend/services"
	"github.com/agroreq/export-requirements-backend/storage"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, blobs storage.BlobStore, cfg map[string]string) *routeHandlers {
	workflow := services.NewRequirementService(database.RequirementRepo(), blobs)

	return &routeHandlers{
		requirementHandler: newRequirementHandler(workflow, database.RequirementRepo(), database.EditLogRepo()),
		referenceHandler:   newReferenceHandler(database.CountryRepo(), database.CropRepo(), database.ShortRequirementRepo()),
		feedbackHandler:    newFeedbackHandler(database.FeedbackRepo(), cfg),
		adminHandler:       newAdminHandler(database.ProfileRepo()),
	}
}
