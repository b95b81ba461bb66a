package api

import (
	"context"
	"errors"

	"github.com/agroreq/export-requirements-backend/models"
)

type keyType string

const (
	profileKey keyType = "profile"
)

// ctxWithProfile adds the authenticated profile to the context
func ctxWithProfile(ctx context.Context, profile models.Profile) context.Context {
	return context.WithValue(ctx, profileKey, profile)
}

// ctxGetProfile retrieves the authenticated profile from the context
func ctxGetProfile(ctx context.Context) (models.Profile, error) {
	ctxValue := ctx.Value(profileKey)
	if ctxValue == nil {
		return models.Profile{}, errors.New("profile not found in context")
	}
	profile, ok := ctxValue.(models.Profile)
	if !ok {
		return models.Profile{}, errors.New("context value is not of type `models.Profile`")
	}
	return profile, nil
}
