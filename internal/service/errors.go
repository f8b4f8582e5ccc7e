package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("access denied")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError carries a client-facing message and optional per-field
// or per-row details. It matches ErrValidation.
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(message string, details ...string) error {
	return &ValidationError{Message: message, Details: details}
}

// validID guards lookups: postgres rejects malformed uuids with a syntax
// error, which callers should see as a missing record.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
