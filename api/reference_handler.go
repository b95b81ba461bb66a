package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/agroreq/export-requirements-backend/models"
)

// Catalog finders behind the reference endpoint. Tests substitute fakes.
type countryCatalog interface {
	FindAll() ([]models.Country, error)
}

type cropCatalog interface {
	FindAll() ([]models.Crop, error)
}

type shortRequirementCatalog interface {
	FindAll() ([]models.ShortRequirement, error)
}

type referenceHandler struct {
	responder            Responder
	logger               zerolog.Logger
	countryRepo          countryCatalog
	cropRepo             cropCatalog
	shortRequirementRepo shortRequirementCatalog
}

func newReferenceHandler(countryRepo countryCatalog, cropRepo cropCatalog, shortRequirementRepo shortRequirementCatalog) referenceHandler {
	logger := log.With().Str("handlerName", "referenceHandler").Logger()

	return referenceHandler{
		responder:            NewResponder(logger),
		logger:               logger,
		countryRepo:          countryRepo,
		cropRepo:             cropRepo,
		shortRequirementRepo: shortRequirementRepo,
	}
}

// ReferenceData bundles the lookup lists the registration form needs.
type ReferenceData struct {
	Countries         []models.Country          `json:"countries"`
	Crops             []models.Crop             `json:"crops"`
	ShortRequirements []models.ShortRequirement `json:"short_requirements"`
}

// getReferenceData returns countries, crops and short-requirement phrases
// in one response. The three lists are fetched concurrently.
// @Summary Reference data for the registration form
// @Tags Reference
// @Produce json
// @Success 200 {object} ReferenceData "Lookup lists"
// @Failure 500 {object} ErrorResponse "Internal Server Error"
// @Router /reference [get]
func (h referenceHandler) getReferenceData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data ReferenceData

		var group errgroup.Group
		group.Go(func() error {
			countries, err := h.countryRepo.FindAll()
			if err != nil {
				return err
			}
			data.Countries = countries
			return nil
		})
		group.Go(func() error {
			crops, err := h.cropRepo.FindAll()
			if err != nil {
				return err
			}
			data.Crops = crops
			return nil
		})
		group.Go(func() error {
			shorts, err := h.shortRequirementRepo.FindAll()
			if err != nil {
				return err
			}
			data.ShortRequirements = shorts
			return nil
		})

		if err := group.Wait(); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "reference data", err))
			return
		}

		h.responder.WriteJSON(w, data)
	}
}
