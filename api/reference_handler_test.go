package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroreq/export-requirements-backend/models"
)

type fakeCountryCatalog struct {
	countries []models.Country
	err       error
}

func (f *fakeCountryCatalog) FindAll() ([]models.Country, error) {
	return f.countries, f.err
}

type fakeCropCatalog struct {
	crops []models.Crop
	err   error
}

func (f *fakeCropCatalog) FindAll() ([]models.Crop, error) {
	return f.crops, f.err
}

type fakeShortRequirementCatalog struct {
	shorts []models.ShortRequirement
	err    error
}

func (f *fakeShortRequirementCatalog) FindAll() ([]models.ShortRequirement, error) {
	return f.shorts, f.err
}

func TestGetReferenceData(t *testing.T) {
	handler := newReferenceHandler(
		&fakeCountryCatalog{countries: []models.Country{{ID: 1, Name: "Egypt"}}},
		&fakeCropCatalog{crops: []models.Crop{{ID: 2, Name: "Mango"}}},
		&fakeShortRequirementCatalog{shorts: []models.ShortRequirement{{ID: 3, Name: "Cold treatment"}}},
	)

	req := httptest.NewRequest(http.MethodGet, "/reference", nil)
	rec := httptest.NewRecorder()

	handler.getReferenceData()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var data ReferenceData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	require.Len(t, data.Countries, 1)
	assert.Equal(t, "Egypt", data.Countries[0].Name)
	require.Len(t, data.Crops, 1)
	assert.Equal(t, "Mango", data.Crops[0].Name)
	require.Len(t, data.ShortRequirements, 1)
	assert.Equal(t, "Cold treatment", data.ShortRequirements[0].Name)
}

func TestGetReferenceData_CatalogError(t *testing.T) {
	handler := newReferenceHandler(
		&fakeCountryCatalog{err: errors.New("connection refused")},
		&fakeCropCatalog{},
		&fakeShortRequirementCatalog{},
	)

	req := httptest.NewRequest(http.MethodGet, "/reference", nil)
	rec := httptest.NewRecorder()

	handler.getReferenceData()(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
