package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var shortIDPattern = regexp.MustCompile(`^[A-Z]{3,6}[0-9]{2,4}$`)

type Project struct {
	ID        string
	ShortID   string // optional human handle, e.g. WEB01
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the fields a project needs before it is stored.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: project name is required", ErrValidation)
	}
	if p.ShortID != "" {
		return p.ValidateShortID()
	}
	return nil
}

// ValidateShortID checks that ShortID matches the required format:
// 3-6 uppercase letters followed by 2-4 digits (e.g. WEB01, OPS0234).
func (p *Project) ValidateShortID() error {
	if !shortIDPattern.MatchString(p.ShortID) {
		return fmt.Errorf("%w: short ID %q must be 3-6 uppercase letters followed by 2-4 digits (e.g. WEB01)", ErrValidation, p.ShortID)
	}
	return nil
}

// DisplayID returns the best short identifier for display.
// It prefers ShortID; if empty it truncates ID to 8 characters.
func (p *Project) DisplayID() string {
	if p.ShortID != "" {
		return p.ShortID
	}
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}
