package repository

import (
	"context"

	"github.com/alexanderramin/arbor/internal/domain"
)

// TaskFilter selects tasks for the bulk store operations. Zero-valued fields
// do not constrain the selection.
type TaskFilter struct {
	ProjectID string
	// ParentKey selects a sibling group: "" means any parent, domain.RootKey
	// means top-level tasks, anything else is a parent task id.
	ParentKey string
	// IDs restricts the selection to the given ids when non-nil. An empty
	// non-nil slice selects nothing.
	IDs       []string
	OrderGT   *int
	OrderGTE  *int
	OrderLT   *int
	OrderLTE  *int
	Completed *bool
}

// TaskPatch is the partial update applied by TaskStore.UpdateMany.
type TaskPatch struct {
	IncOrder     int // added to order; negative decrements
	SetCompleted *bool
}

// Descendant is a task reached from a traversal root, with its distance from
// that root. Direct children have Depth 1.
type Descendant struct {
	Task  *domain.Task
	Depth int
}

// TaskStore persists tasks. All bulk operations take a filter and report
// zero matches without error.
type TaskStore interface {
	Create(ctx context.Context, t *domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	// List returns matching tasks ordered by order, then creation time.
	List(ctx context.Context, f TaskFilter) ([]*domain.Task, error)
	Count(ctx context.Context, f TaskFilter) (int, error)
	UpdateMany(ctx context.Context, f TaskFilter, p TaskPatch) (int, error)
	// DeleteMany removes matching tasks and returns their ids.
	DeleteMany(ctx context.Context, f TaskFilter) ([]string, error)
	// Descendants returns every task below rootID, nearest first. A maxDepth
	// of zero or less is unbounded.
	Descendants(ctx context.Context, rootID string, maxDepth int) ([]Descendant, error)
	// TextSearch returns the ids of the project's tasks whose titles match
	// query, best match first.
	TextSearch(ctx context.Context, projectID, query string) ([]string, error)
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByShortID(ctx context.Context, shortID string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	// Delete removes the project and all of its tasks.
	Delete(ctx context.Context, id string) error
}

// Store groups the repositories of one backend and owns its transaction
// boundary. Inside WithinTx, fn receives a Store whose repositories are bound
// to the transaction; calling WithinTx on it again joins the same transaction.
type Store interface {
	Tasks() TaskStore
	Projects() ProjectRepo
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
