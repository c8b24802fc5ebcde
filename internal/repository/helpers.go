package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/arbor/internal/domain"
)

// IsEmpty reports whether f places no constraint on the selection.
func (f TaskFilter) IsEmpty() bool {
	return f.ProjectID == "" &&
		f.ParentKey == "" &&
		f.IDs == nil &&
		f.OrderGT == nil && f.OrderGTE == nil &&
		f.OrderLT == nil && f.OrderLTE == nil &&
		f.Completed == nil
}

// IsZero reports whether applying p would change nothing.
func (p TaskPatch) IsZero() bool {
	return p.IncOrder == 0 && p.SetCompleted == nil
}

// nullableString converts a *string to a value suitable for SQLite storage.
// Returns nil (SQL NULL) if the pointer is nil.
func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// stringPtr converts a sql.NullString to a *string, nil when NULL or empty.
func stringPtr(s sql.NullString) *string {
	if !s.Valid || s.String == "" {
		return nil
	}
	v := s.String
	return &v
}

func parseTimestamps(t *domain.Task, createdAt, updatedAt string) error {
	var err error
	t.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return fmt.Errorf("parsing task created_at: %w", err)
	}
	t.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return fmt.Errorf("parsing task updated_at: %w", err)
	}
	return nil
}

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intToBool converts a SQLite integer (0 or 1) to a Go bool.
func intToBool(i int) bool {
	return i != 0
}

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
