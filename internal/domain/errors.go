package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Domain errors. Callers match them with errors.Is; every layer wraps them
// with context using %w.
var (
	ErrInvalidReference  = errors.New("invalid reference")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
)

// ValidateID rejects ids that are not UUIDs before they reach a lookup.
func ValidateID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s id %q", ErrInvalidIdentifier, kind, id)
	}
	return nil
}
