package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/agroreq/export-requirements-backend/errs"
	"github.com/agroreq/export-requirements-backend/models"
)

// fakeStore records write calls and returns scripted errors.
type fakeStore struct {
	createErr error
	updateErr error
	findErr   error
	existing  *models.Requirement

	createCalls int
	updateCalls int

	lastReq      *models.Requirement
	lastShortIDs []int
}

func (f *fakeStore) FindByID(id int) (*models.Requirement, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.existing != nil {
		return f.existing, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) FindByCountryAndCrop(countryID, cropID int) (*models.Requirement, error) {
	if f.existing != nil && f.existing.CountryID == countryID && f.existing.CropID == cropID {
		return f.existing, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) CreateWithShorts(ctx context.Context, req *models.Requirement, shortIDs []int) error {
	f.createCalls++
	f.lastReq = req
	f.lastShortIDs = shortIDs
	if f.createErr != nil {
		return f.createErr
	}
	req.ID = 42
	return nil
}

func (f *fakeStore) UpdateWithShorts(ctx context.Context, req *models.Requirement, shortIDs []int) error {
	f.updateCalls++
	f.lastReq = req
	f.lastShortIDs = shortIDs
	return f.updateErr
}

// fakeBlobStore records uploads and deletes.
type fakeBlobStore struct {
	uploadErr error
	deleteErr error

	uploadedPaths []string
	deletedPaths  []string
}

func (f *fakeBlobStore) Upload(ctx context.Context, path string, body io.Reader, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploadedPaths = append(f.uploadedPaths, path)
	return "https://blobs.example.com/" + path, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, path string) error {
	f.deletedPaths = append(f.deletedPaths, path)
	return f.deleteErr
}

func author() models.Profile {
	return models.Profile{ID: uuid.New(), RoleID: models.RoleAuthor, IsActive: true}
}

func editor() models.Profile {
	return models.Profile{ID: uuid.New(), RoleID: models.RoleEditor, IsActive: true}
}

func viewer() models.Profile {
	return models.Profile{ID: uuid.New(), RoleID: models.RoleViewer, IsActive: true}
}

func validInput() RequirementInput {
	return RequirementInput{
		CountryID:           1,
		CropID:              2,
		FullRequirements:    "Phytosanitary certificate and cold treatment required.",
		ShortRequirementIDs: []int{3, 5},
	}
}

func TestSubmitNew_Success(t *testing.T) {
	store := &fakeStore{}
	blobs := &fakeBlobStore{}
	svc := NewRequirementService(store, blobs)

	id, err := svc.SubmitNew(context.Background(), validInput(), author())
	require.NoError(t, err)
	assert.Equal(t, 42, id)
	assert.Equal(t, 1, store.createCalls)
	assert.Equal(t, []int{3, 5}, store.lastShortIDs)
	assert.Empty(t, blobs.uploadedPaths)
	assert.Empty(t, blobs.deletedPaths)
}

func TestSubmitNew_ViewerForbidden(t *testing.T) {
	store := &fakeStore{}
	blobs := &fakeBlobStore{}
	svc := NewRequirementService(store, blobs)

	_, err := svc.SubmitNew(context.Background(), validInput(), viewer())
	require.Error(t, err)
	assert.True(t, errs.IsForbidden(err))

	// A rejected actor must not reach any collaborator.
	assert.Zero(t, store.createCalls)
	assert.Empty(t, blobs.uploadedPaths)
}

func TestSubmitNew_ValidationStopsBeforeUpload(t *testing.T) {
	store := &fakeStore{}
	blobs := &fakeBlobStore{}
	svc := NewRequirementService(store, blobs)

	input := validInput()
	input.FullRequirements = "   "
	input.Document = &DocumentUpload{Filename: "cert.pdf", Content: strings.NewReader("x")}

	_, err := svc.SubmitNew(context.Background(), input, author())
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Zero(t, store.createCalls)
	assert.Empty(t, blobs.uploadedPaths)
}

func TestSubmitNew_UploadFailureSkipsWrite(t *testing.T) {
	store := &fakeStore{}
	blobs := &fakeBlobStore{uploadErr: errors.New("bucket unreachable")}
	svc := NewRequirementService(store, blobs)

	input := validInput()
	input.Document = &DocumentUpload{Filename: "cert.pdf", ContentType: "application/pdf", Content: strings.NewReader("x")}

	_, err := svc.SubmitNew(context.Background(), input, author())
	require.Error(t, err)
	assert.True(t, errs.IsUploadFailed(err))

	// Upload happens before the write; a failed upload must leave the
	// database untouched.
	assert.Zero(t, store.createCalls)
	assert.Empty(t, blobs.deletedPaths)
}

func TestSubmitNew_WriteFailureDeletesUploadedBlob(t *testing.T) {
	store := &fakeStore{createErr: errors.New("deadlock detected")}
	blobs := &fakeBlobStore{}
	svc := NewRequirementService(store, blobs)

	input := validInput()
	input.Document = &DocumentUpload{Filename: "cert.pdf", ContentType: "application/pdf", Content: strings.NewReader("x")}

	_, err := svc.SubmitNew(context.Background(), input, author())
	require.Error(t, err)
	assert.True(t, errs.IsWriteFailed(err))

	require.Len(t, blobs.uploadedPaths, 1)
	require.Len(t, blobs.deletedPaths, 1)
	assert.Equal(t, blobs.uploadedPaths[0], blobs.deletedPaths[0])
}

func TestSubmitNew_WriteFailureWithoutUploadDeletesNothing(t *testing.T) {
	store := &fakeStore{createErr: errors.New("deadlock detected")}
	blobs := &fakeBlobStore{}
	svc := NewRequirementService(store, blobs)

	_, err := svc.SubmitNew(context.Background(), validInput(), author())
	require.Error(t, err)
	assert.Empty(t, blobs.deletedPaths)
}

func TestSubmitNew_DuplicatePairPassesThrough(t *testing.T) {
	dup := errs.NewDuplicateRequirementError(1, 2, errors.New("duplicate key value violates unique constraint"))
	store := &fakeStore{createErr: dup}
	blobs := &fakeBlobStore{}
	svc := NewRequirementService(store, blobs)

	_, err := svc.SubmitNew(context.Background(), validInput(), author())
	require.Error(t, err)
	assert.True(t, errs.IsDuplicateRequirement(err))
	assert.False(t, errs.IsWriteFailed(err))
}

func TestSubmitNew_CleanupFailureDoesNotMaskWriteError(t *testing.T) {
	store := &fakeStore{createErr: errors.New("deadlock detected")}
	blobs := &fakeBlobStore{deleteErr: errors.New("delete forbidden")}
	svc := NewRequirementService(store, blobs)

	input := validInput()
	input.Document = &DocumentUpload{Filename: "cert.pdf", ContentType: "application/pdf", Content: strings.NewReader("x")}

	_, err := svc.SubmitNew(context.Background(), input, author())
	require.Error(t, err)
	assert.True(t, errs.IsWriteFailed(err))
}

func TestSubmitEdit_AuthorForbidden(t *testing.T) {
	store := &fakeStore{existing: &models.Requirement{ID: 7, CountryID: 1, CropID: 2}}
	blobs := &fakeBlobStore{}
	svc := NewRequirementService(store, blobs)

	err := svc.SubmitEdit(context.Background(), 7, validInput(), author())
	require.Error(t, err)
	assert.True(t, errs.IsForbidden(err))
	assert.Zero(t, store.updateCalls)
}

func TestSubmitEdit_NotFound(t *testing.T) {
	store := &fakeStore{}
	blobs := &fakeBlobStore{}
	svc := NewRequirementService(store, blobs)

	err := svc.SubmitEdit(context.Background(), 999, validInput(), editor())
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestSubmitEdit_PairImmutable(t *testing.T) {
	store := &fakeStore{existing: &models.Requirement{ID: 7, CountryID: 10, CropID: 20}}
	blobs := &fakeBlobStore{}
	svc := NewRequirementService(store, blobs)

	// The submitted pair differs from the stored one; the stored pair wins.
	input := validInput()
	input.CountryID = 1
	input.CropID = 2

	err := svc.SubmitEdit(context.Background(), 7, input, editor())
	require.NoError(t, err)
	assert.Equal(t, 10, store.lastReq.CountryID)
	assert.Equal(t, 20, store.lastReq.CropID)
}

func TestSubmitEdit_KeepsExistingDocument(t *testing.T) {
	existingURL := "https://blobs.example.com/requirements/old.pdf"
	store := &fakeStore{existing: &models.Requirement{ID: 7, CountryID: 1, CropID: 2, DocumentURL: &existingURL}}
	blobs := &fakeBlobStore{}
	svc := NewRequirementService(store, blobs)

	err := svc.SubmitEdit(context.Background(), 7, validInput(), editor())
	require.NoError(t, err)
	require.NotNil(t, store.lastReq.DocumentURL)
	assert.Equal(t, existingURL, *store.lastReq.DocumentURL)
}

func TestSubmitEdit_RemoveDocument(t *testing.T) {
	existingURL := "https://blobs.example.com/requirements/old.pdf"
	store := &fakeStore{existing: &models.Requirement{ID: 7, CountryID: 1, CropID: 2, DocumentURL: &existingURL}}
	blobs := &fakeBlobStore{}
	svc := NewRequirementService(store, blobs)

	input := validInput()
	input.RemoveDocument = true

	err := svc.SubmitEdit(context.Background(), 7, input, editor())
	require.NoError(t, err)
	assert.Nil(t, store.lastReq.DocumentURL)
}

func TestSubmitEdit_WriteFailureDeletesOnlyNewBlob(t *testing.T) {
	existingURL := "https://blobs.example.com/requirements/old.pdf"
	store := &fakeStore{
		existing:  &models.Requirement{ID: 7, CountryID: 1, CropID: 2, DocumentURL: &existingURL},
		updateErr: errors.New("deadlock detected"),
	}
	blobs := &fakeBlobStore{}
	svc := NewRequirementService(store, blobs)

	input := validInput()
	input.Document = &DocumentUpload{Filename: "new.pdf", ContentType: "application/pdf", Content: strings.NewReader("x")}

	err := svc.SubmitEdit(context.Background(), 7, input, editor())
	require.Error(t, err)
	assert.True(t, errs.IsWriteFailed(err))

	require.Len(t, blobs.uploadedPaths, 1)
	require.Len(t, blobs.deletedPaths, 1)
	assert.Equal(t, blobs.uploadedPaths[0], blobs.deletedPaths[0])
	assert.NotContains(t, blobs.deletedPaths[0], "old.pdf")
}

func TestSubmitEdit_EmptyDocumentFilename(t *testing.T) {
	store := &fakeStore{existing: &models.Requirement{ID: 7, CountryID: 1, CropID: 2}}
	blobs := &fakeBlobStore{}
	svc := NewRequirementService(store, blobs)

	input := validInput()
	input.Document = &DocumentUpload{Filename: "   ", ContentType: "application/pdf", Content: strings.NewReader("x")}

	err := svc.SubmitEdit(context.Background(), 7, input, editor())
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Zero(t, store.updateCalls)
	assert.Empty(t, blobs.uploadedPaths)
}

func TestSubmitEdit_DeletedBetweenReadAndWrite(t *testing.T) {
	store := &fakeStore{
		existing:  &models.Requirement{ID: 7, CountryID: 1, CropID: 2},
		updateErr: gorm.ErrRecordNotFound,
	}
	blobs := &fakeBlobStore{}
	svc := NewRequirementService(store, blobs)

	input := validInput()
	input.Document = &DocumentUpload{Filename: "new.pdf", ContentType: "application/pdf", Content: strings.NewReader("x")}

	err := svc.SubmitEdit(context.Background(), 7, input, editor())
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.False(t, errs.IsWriteFailed(err))

	// The orphaned replacement blob is still cleaned up.
	require.Len(t, blobs.deletedPaths, 1)
	assert.Equal(t, blobs.uploadedPaths[0], blobs.deletedPaths[0])
}

func TestSubmitEdit_ReplacesTagLinks(t *testing.T) {
	store := &fakeStore{existing: &models.Requirement{ID: 7, CountryID: 1, CropID: 2}}
	blobs := &fakeBlobStore{}
	svc := NewRequirementService(store, blobs)

	input := validInput()
	input.ShortRequirementIDs = []int{9}

	err := svc.SubmitEdit(context.Background(), 7, input, editor())
	require.NoError(t, err)
	assert.Equal(t, []int{9}, store.lastShortIDs)
}

func TestSearch(t *testing.T) {
	store := &fakeStore{existing: &models.Requirement{ID: 7, CountryID: 1, CropID: 2}}
	blobs := &fakeBlobStore{}
	svc := NewRequirementService(store, blobs)

	req, err := svc.Search(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 7, req.ID)

	_, err = svc.Search(context.Background(), 1, 3)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	_, err = svc.Search(context.Background(), 0, 0)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

// Full scenario: a registration for Egypt/Mango with a document and tags,
// then a second registration for the same pair failing as a duplicate.
func TestRegistrationScenario(t *testing.T) {
	store := &fakeStore{}
	blobs := &fakeBlobStore{}
	svc := NewRequirementService(store, blobs)

	year := 2024
	input := RequirementInput{
		CountryID:           1, // Egypt
		CropID:              2, // Mango
		FullRequirements:    "Hot water treatment at 46.1C for 75 minutes; phytosanitary certificate.",
		PublicationYear:     &year,
		ShortRequirementIDs: []int{3, 5, 8},
		Document:            &DocumentUpload{Filename: "egypt mango.pdf", ContentType: "application/pdf", Content: strings.NewReader("pdf")},
	}

	id, err := svc.SubmitNew(context.Background(), input, author())
	require.NoError(t, err)
	assert.Equal(t, 42, id)
	require.NotNil(t, store.lastReq.DocumentURL)
	assert.Contains(t, *store.lastReq.DocumentURL, "egypt_mango.pdf")

	store.existing = store.lastReq
	store.createErr = errs.NewDuplicateRequirementError(1, 2, errors.New("duplicate key value"))

	_, err = svc.SubmitNew(context.Background(), validInput(), author())
	require.Error(t, err)
	assert.True(t, errs.IsDuplicateRequirement(err))
}
