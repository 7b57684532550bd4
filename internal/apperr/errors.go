// Package apperr defines the error taxonomy shared by the repositories,
// services and HTTP handlers. Lower layers wrap these sentinels with
// fmt.Errorf("...: %w", err); the HTTP layer maps them to status codes.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated marks a missing, malformed or expired bearer token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredential marks an identity assertion the provider rejected.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrForbidden marks an authenticated caller acting on a resource it does not own.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound marks a missing entity.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a unique constraint violation.
	ErrConflict = errors.New("conflict")
	// ErrProviderUnavailable marks a failure to reach the identity provider.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	// ErrStorageUnavailable marks a failure of the database or the asset area.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError describes which input field was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a validation error for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
