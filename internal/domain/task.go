package domain

import (
	"fmt"
	"strings"
	"time"
)

// RootKey is the sibling-group key for tasks without a parent.
const RootKey = "root"

type Task struct {
	ID           string
	ProjectID    string
	ParentTaskID *string // nil = top level of the project
	Title        string
	Order        int
	Completed    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ParentKey returns the sibling-group key of the task: its parent id, or
// RootKey when it sits at the top of the project.
func (t *Task) ParentKey() string {
	return ParentKeyOf(t.ParentTaskID)
}

// IsRoot reports whether the task has no parent.
func (t *Task) IsRoot() bool {
	return t.ParentTaskID == nil
}

// ValidateTitle rejects blank titles.
func (t *Task) ValidateTitle() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	return nil
}

// ParentKeyOf maps a nullable parent id to a sibling-group key.
func ParentKeyOf(parentID *string) string {
	if parentID == nil || *parentID == "" {
		return RootKey
	}
	return *parentID
}

// ParentIDFromKey is the inverse of ParentKeyOf.
func ParentIDFromKey(key string) *string {
	if key == "" || key == RootKey {
		return nil
	}
	id := key
	return &id
}
