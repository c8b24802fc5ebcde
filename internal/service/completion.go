package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/arbor/internal/domain"
	"github.com/alexanderramin/arbor/internal/repository"
)

// CompletionPropagator applies a completion change to a task and keeps the
// rest of its tree consistent:
//
//   - completing a task completes its pending descendants, then walks up
//     flipping each parent whose other children are all complete;
//   - un-completing only touches the task itself.
//
// All flips are written with one bulk update.
type CompletionPropagator struct {
	tasks repository.TaskStore
}

func NewCompletionPropagator(tasks repository.TaskStore) *CompletionPropagator {
	return &CompletionPropagator{tasks: tasks}
}

// Apply sets task's completion flag and returns the ids written, the task
// itself first.
func (p *CompletionPropagator) Apply(ctx context.Context, task *domain.Task, completed bool) ([]string, error) {
	updated := []string{task.ID}

	if completed {
		down, err := p.pendingDescendants(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		updated = append(updated, down...)

		up, err := p.completedAncestors(ctx, task)
		if err != nil {
			return nil, err
		}
		updated = append(updated, up...)
	}

	_, err := p.tasks.UpdateMany(ctx,
		repository.TaskFilter{ProjectID: task.ProjectID, IDs: updated},
		repository.TaskPatch{SetCompleted: boolPtr(completed)})
	if err != nil {
		return nil, fmt.Errorf("writing completion: %w", err)
	}
	return updated, nil
}

func (p *CompletionPropagator) pendingDescendants(ctx context.Context, id string) ([]string, error) {
	desc, err := p.tasks.Descendants(ctx, id, 0)
	if err != nil {
		return nil, fmt.Errorf("resolving subtree: %w", err)
	}
	var ids []string
	for _, d := range desc {
		if !d.Task.Completed {
			ids = append(ids, d.Task.ID)
		}
	}
	return ids, nil
}

// completedAncestors walks from task towards the root. A parent flips when
// every child other than the one just completed is already complete; the walk
// stops at the first parent with another pending child.
func (p *CompletionPropagator) completedAncestors(ctx context.Context, task *domain.Task) ([]string, error) {
	var flipped []string
	current := task
	for !current.IsRoot() {
		parent, err := p.tasks.FindByID(ctx, *current.ParentTaskID)
		if err != nil {
			return nil, fmt.Errorf("loading parent of %s: %w", current.ID, err)
		}

		children, err := p.tasks.Descendants(ctx, parent.ID, 1)
		if err != nil {
			return nil, fmt.Errorf("loading children of %s: %w", parent.ID, err)
		}
		pending := 0
		for _, c := range children {
			if c.Task.ID != current.ID && !c.Task.Completed {
				pending++
			}
		}
		if pending > 0 {
			break
		}

		if !parent.Completed {
			flipped = append(flipped, parent.ID)
		}
		current = parent
	}
	return flipped, nil
}
