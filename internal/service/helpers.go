package service

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/arbor/internal/domain"
)

// asInvalidReference turns a miss on a referenced entity into
// ErrInvalidReference. Other errors pass through.
func asInvalidReference(err error, kind, id string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %s %s does not exist", domain.ErrInvalidReference, kind, id)
	}
	return err
}

// normalizeParentKey maps "" to the root sentinel.
func normalizeParentKey(key string) string {
	if key == "" {
		return domain.RootKey
	}
	return key
}

func intPtr(i int) *int    { return &i }
func boolPtr(b bool) *bool { return &b }
