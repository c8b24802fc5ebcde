package contract

import (
	"time"

	"github.com/alexanderramin/arbor/internal/tree"
)

type CreateTaskRequest struct {
	Title        string
	ProjectID    string
	ParentTaskID *string // nil creates a top-level task
}

// UpdateTaskRequest carries the fields to change; nil fields are left as
// they are. ParentKey takes a task id, or domain.RootKey to move the task to
// the top level.
type UpdateTaskRequest struct {
	ID        string
	Title     *string
	ParentKey *string
	Order     *int
}

type UpdateStatusRequest struct {
	ID string
	// ParentTaskID is an optional consistency hint. When set it must name the
	// stored parent (domain.RootKey for a top-level task).
	ParentTaskID *string
	Completed    bool
}

type UpdateStatusResult struct {
	UpdatedIDs []string `json:"updatedIds"`
	NewStatus  bool     `json:"newStatus"`
}

type DeleteResult struct {
	DeletedRoot        string   `json:"deletedRoot"`
	DeletedDescendants []string `json:"deletedDescendants"`
}

type ProjectViewRequest struct {
	ProjectID string
	Search    string // blank disables title search
	Completed *bool  // nil keeps both states
}

func NewProjectViewRequest(projectID string) ProjectViewRequest {
	return ProjectViewRequest{ProjectID: projectID}
}

// WithCompleted returns a copy of r that keeps only tasks whose completion
// flag equals completed.
func (r ProjectViewRequest) WithCompleted(completed bool) ProjectViewRequest {
	r.Completed = &completed
	return r
}

// ProjectView is a project with its (possibly filtered) task forest.
type ProjectView struct {
	ID        string          `json:"id"`
	ShortID   string          `json:"shortId,omitempty"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Tasks     tree.Projection `json:"tasks"`
}
