package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/arbor/internal/domain"
	"github.com/alexanderramin/arbor/internal/repository"
)

// SiblingGroup identifies the tasks that share a project and a parent key.
type SiblingGroup struct {
	ProjectID string
	ParentKey string // task id or domain.RootKey
}

// GroupOf returns the sibling group t belongs to.
func GroupOf(t *domain.Task) SiblingGroup {
	return SiblingGroup{ProjectID: t.ProjectID, ParentKey: t.ParentKey()}
}

func (g SiblingGroup) filter() repository.TaskFilter {
	return repository.TaskFilter{ProjectID: g.ProjectID, ParentKey: g.ParentKey}
}

// OrderingManager keeps order values dense and 0-based within each sibling
// group. Every shift is a single bulk update on one group.
type OrderingManager struct {
	tasks repository.TaskStore
}

func NewOrderingManager(tasks repository.TaskStore) *OrderingManager {
	return &OrderingManager{tasks: tasks}
}

// Insert opens slot 0 in g. The caller then stores the new task at order 0.
func (m *OrderingManager) Insert(ctx context.Context, g SiblingGroup) error {
	if _, err := m.tasks.UpdateMany(ctx, g.filter(), repository.TaskPatch{IncOrder: 1}); err != nil {
		return fmt.Errorf("opening head slot: %w", err)
	}
	return nil
}

// Remove closes the slot a task at order left behind in g.
func (m *OrderingManager) Remove(ctx context.Context, g SiblingGroup, order int) error {
	f := g.filter()
	f.OrderGT = intPtr(order)
	if _, err := m.tasks.UpdateMany(ctx, f, repository.TaskPatch{IncOrder: -1}); err != nil {
		return fmt.Errorf("closing slot %d: %w", order, err)
	}
	return nil
}

// Move shifts the siblings around a task moving from (from, oldOrder) to
// (to, newOrder). The moved task itself is never touched; the caller writes
// its new parent and order afterwards.
func (m *OrderingManager) Move(ctx context.Context, from SiblingGroup, oldOrder int, to SiblingGroup, newOrder int) error {
	if from != to {
		if err := m.Remove(ctx, from, oldOrder); err != nil {
			return err
		}
		f := to.filter()
		f.OrderGTE = intPtr(newOrder)
		if _, err := m.tasks.UpdateMany(ctx, f, repository.TaskPatch{IncOrder: 1}); err != nil {
			return fmt.Errorf("opening slot %d: %w", newOrder, err)
		}
		return nil
	}

	f := from.filter()
	var patch repository.TaskPatch
	switch {
	case oldOrder < newOrder:
		f.OrderGT, f.OrderLTE = intPtr(oldOrder), intPtr(newOrder)
		patch.IncOrder = -1
	case oldOrder > newOrder:
		f.OrderGTE, f.OrderLT = intPtr(newOrder), intPtr(oldOrder)
		patch.IncOrder = 1
	default:
		return nil
	}
	if _, err := m.tasks.UpdateMany(ctx, f, patch); err != nil {
		return fmt.Errorf("shifting siblings %d->%d: %w", oldOrder, newOrder, err)
	}
	return nil
}

// LastSlot is the highest order a task can take in g. Moving within the
// group leaves one task fewer to sit beside.
func (m *OrderingManager) LastSlot(ctx context.Context, g SiblingGroup, movingWithin bool) (int, error) {
	n, err := m.tasks.Count(ctx, g.filter())
	if err != nil {
		return 0, fmt.Errorf("counting siblings: %w", err)
	}
	if movingWithin {
		n--
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}
