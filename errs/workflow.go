package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Registration/edit workflow errors. Each kind maps to a distinct
// user-facing message; CleanupFailed is logged only and never replaces the
// error that triggered the cleanup.
var (
	ErrValidation           = errors.New("validation failed")
	ErrUploadFailed         = errors.New("document upload failed")
	ErrDuplicateRequirement = errors.New("requirement already registered for this country and crop")
	ErrWriteFailed          = errors.New("requirement write failed")
	ErrCleanupFailed        = errors.New("uploaded document cleanup failed")
)

func NewValidationError(field, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrValidation,
		Details:    reason,
		Field:      field,
	}
}

func NewUploadFailedError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrUploadFailed,
		Details:    "The document could not be stored; the requirement was not saved",
		Cause:      cause,
	}
}

// NewDuplicateRequirementError is user-actionable: re-submitting the same
// pair can never succeed, so the message names the conflicting pair.
func NewDuplicateRequirementError(countryID, cropID int, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrDuplicateRequirement,
		Details:    fmt.Sprintf("A requirement for country %d and crop %d already exists; change the country or crop", countryID, cropID),
		Cause:      cause,
	}
}

func NewWriteFailedError(operation string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrWriteFailed,
		Details:    fmt.Sprintf("Failed to %s", operation),
		Cause:      cause,
	}
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsUploadFailed(err error) bool {
	return errors.Is(err, ErrUploadFailed)
}

func IsDuplicateRequirement(err error) bool {
	return errors.Is(err, ErrDuplicateRequirement)
}

func IsWriteFailed(err error) bool {
	return errors.Is(err, ErrWriteFailed)
}
