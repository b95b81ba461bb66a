package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/agroreq/export-requirements-backend/models"
)

const testSecret = "test-secret"

type fakeProfileFinder struct {
	profiles map[uuid.UUID]*models.Profile
}

func (f *fakeProfileFinder) FindByID(id uuid.UUID) (*models.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func authTestServer(finder profileFinder) http.Handler {
	middleware := newAuthMiddleware(finder, testSecret)
	return middleware.authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, err := ctxGetProfile(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(profile.ID.String()))
	}))
}

func TestAuthenticate_ValidToken(t *testing.T) {
	userID := uuid.New()
	finder := &fakeProfileFinder{profiles: map[uuid.UUID]*models.Profile{
		userID: {ID: userID, RoleID: models.RoleAuthor, IsActive: true},
	}}

	req := httptest.NewRequest(http.MethodGet, "/requirements", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, userID.String()))
	rec := httptest.NewRecorder()

	authTestServer(finder).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID.String(), rec.Body.String())
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	finder := &fakeProfileFinder{}

	req := httptest.NewRequest(http.MethodGet, "/requirements", nil)
	rec := httptest.NewRecorder()

	authTestServer(finder).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_BadSignature(t *testing.T) {
	userID := uuid.New()
	finder := &fakeProfileFinder{profiles: map[uuid.UUID]*models.Profile{
		userID: {ID: userID, RoleID: models.RoleAuthor, IsActive: true},
	}}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/requirements", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	authTestServer(finder).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	userID := uuid.New()
	finder := &fakeProfileFinder{profiles: map[uuid.UUID]*models.Profile{
		userID: {ID: userID, RoleID: models.RoleAuthor, IsActive: true},
	}}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/requirements", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	authTestServer(finder).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	finder := &fakeProfileFinder{}

	req := httptest.NewRequest(http.MethodGet, "/requirements", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New().String()))
	rec := httptest.NewRecorder()

	authTestServer(finder).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_DeactivatedUser(t *testing.T) {
	userID := uuid.New()
	finder := &fakeProfileFinder{profiles: map[uuid.UUID]*models.Profile{
		userID: {ID: userID, RoleID: models.RoleAuthor, IsActive: false},
	}}

	req := httptest.NewRequest(http.MethodGet, "/requirements", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, userID.String()))
	rec := httptest.NewRecorder()

	authTestServer(finder).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
