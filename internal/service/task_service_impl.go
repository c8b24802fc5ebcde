package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/arbor/internal/contract"
	"github.com/alexanderramin/arbor/internal/domain"
	"github.com/alexanderramin/arbor/internal/repository"
	"github.com/alexanderramin/arbor/internal/tree"
	"github.com/google/uuid"
)

type taskService struct {
	store    repository.Store
	observer UseCaseObserver
}

func NewTaskService(store repository.Store, observers ...UseCaseObserver) TaskService {
	return &taskService{
		store:    store,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *taskService) Create(ctx context.Context, req contract.CreateTaskRequest) (task *domain.Task, err error) {
	span := startUseCase(s.observer, "create-task", map[string]any{"project_id": req.ProjectID})
	defer func() { span.finish(ctx, err) }()

	task = &domain.Task{
		ID:        uuid.New().String(),
		ProjectID: req.ProjectID,
		Title:     strings.TrimSpace(req.Title),
	}
	if req.ParentTaskID != nil {
		task.ParentTaskID = domain.ParentIDFromKey(*req.ParentTaskID)
	}
	if err = task.ValidateTitle(); err != nil {
		return nil, err
	}
	if err = domain.ValidateID("project", req.ProjectID); err != nil {
		return nil, err
	}
	if task.ParentTaskID != nil {
		if err = domain.ValidateID("parent task", *task.ParentTaskID); err != nil {
			return nil, err
		}
	}
	span.set("task_id", task.ID)

	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Projects().GetByID(ctx, task.ProjectID); err != nil {
			return asInvalidReference(err, "project", task.ProjectID)
		}
		if task.ParentTaskID != nil {
			if _, err := loadParent(ctx, tx.Tasks(), task.ProjectID, *task.ParentTaskID); err != nil {
				return err
			}
		}
		if err := NewOrderingManager(tx.Tasks()).Insert(ctx, GroupOf(task)); err != nil {
			return err
		}
		return tx.Tasks().Create(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if err := domain.ValidateID("task", id); err != nil {
		return nil, err
	}
	return s.store.Tasks().FindByID(ctx, id)
}

func (s *taskService) Descendants(ctx context.Context, id string) ([]repository.Descendant, error) {
	if err := domain.ValidateID("task", id); err != nil {
		return nil, err
	}
	if _, err := s.store.Tasks().FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Tasks().Descendants(ctx, id, 0)
}

func (s *taskService) ProjectView(ctx context.Context, req contract.ProjectViewRequest) (view *contract.ProjectView, err error) {
	span := startUseCase(s.observer, "get-project-view", map[string]any{
		"project_id": req.ProjectID,
		"search":     req.Search != "",
	})
	defer func() { span.finish(ctx, err) }()

	if err = domain.ValidateID("project", req.ProjectID); err != nil {
		return nil, err
	}
	project, err := s.store.Projects().GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	filter := repository.TaskFilter{ProjectID: project.ID, Completed: req.Completed}
	if strings.TrimSpace(req.Search) != "" {
		var matched []string
		matched, err = s.store.Tasks().TextSearch(ctx, project.ID, req.Search)
		if err != nil {
			return nil, err
		}
		filter.IDs = append([]string{}, matched...)
		span.set("search_hits", len(matched))
	}

	tasks, err := s.store.Tasks().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	span.set("task_count", len(tasks))

	return &contract.ProjectView{
		ID:        project.ID,
		ShortID:   project.ShortID,
		Name:      project.Name,
		CreatedAt: project.CreatedAt,
		UpdatedAt: project.UpdatedAt,
		Tasks:     tree.Project(tasks),
	}, nil
}

func (s *taskService) Update(ctx context.Context, req contract.UpdateTaskRequest) (task *domain.Task, err error) {
	span := startUseCase(s.observer, "update-task", map[string]any{"task_id": req.ID})
	defer func() { span.finish(ctx, err) }()

	if err = domain.ValidateID("task", req.ID); err != nil {
		return nil, err
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
	}
	if req.Order != nil && *req.Order < 0 {
		return nil, fmt.Errorf("%w: order must be >= 0, got %d", domain.ErrValidation, *req.Order)
	}
	var newParentKey string
	if req.ParentKey != nil {
		newParentKey = normalizeParentKey(*req.ParentKey)
		if newParentKey != domain.RootKey {
			if err = domain.ValidateID("parent task", newParentKey); err != nil {
				return nil, err
			}
		}
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		tasks := tx.Tasks()
		current, err := tasks.FindByID(ctx, req.ID)
		if err != nil {
			return err
		}

		from := GroupOf(current)
		to := from
		if req.ParentKey != nil && newParentKey != from.ParentKey {
			if newParentKey != domain.RootKey {
				parent, err := loadParent(ctx, tasks, current.ProjectID, newParentKey)
				if err != nil {
					return err
				}
				if err := ensureNoCycle(ctx, tasks, current.ID, parent); err != nil {
					return err
				}
			}
			to = SiblingGroup{ProjectID: current.ProjectID, ParentKey: newParentKey}
		}

		ordering := NewOrderingManager(tasks)
		newOrder := current.Order
		switch {
		case req.Order != nil:
			newOrder = *req.Order
		case to != from:
			newOrder = 0
		}
		last, err := ordering.LastSlot(ctx, to, to == from)
		if err != nil {
			return err
		}
		if newOrder > last {
			newOrder = last
		}

		if err := ordering.Move(ctx, from, current.Order, to, newOrder); err != nil {
			return err
		}

		current.ParentTaskID = domain.ParentIDFromKey(to.ParentKey)
		current.Order = newOrder
		if req.Title != nil {
			current.Title = strings.TrimSpace(*req.Title)
		}
		current.UpdatedAt = time.Now().UTC()
		if err := tasks.Update(ctx, current); err != nil {
			return err
		}
		task = current
		span.set("moved", to != from)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) UpdateStatus(ctx context.Context, req contract.UpdateStatusRequest) (result *contract.UpdateStatusResult, err error) {
	span := startUseCase(s.observer, "update-task-status", map[string]any{
		"task_id":   req.ID,
		"completed": req.Completed,
	})
	defer func() { span.finish(ctx, err) }()

	if err = domain.ValidateID("task", req.ID); err != nil {
		return nil, err
	}

	var updated []string
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		task, err := tx.Tasks().FindByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if req.ParentTaskID != nil {
			if hint := domain.ParentKeyOf(req.ParentTaskID); hint != task.ParentKey() {
				return fmt.Errorf("%w: task %s is not a child of %s", domain.ErrInvalidReference, task.ID, hint)
			}
		}
		updated, err = NewCompletionPropagator(tx.Tasks()).Apply(ctx, task, req.Completed)
		return err
	})
	if err != nil {
		return nil, err
	}
	span.set("updated_count", len(updated))
	return &contract.UpdateStatusResult{UpdatedIDs: updated, NewStatus: req.Completed}, nil
}

func (s *taskService) Delete(ctx context.Context, id string) (result *contract.DeleteResult, err error) {
	span := startUseCase(s.observer, "delete-task", map[string]any{"task_id": id})
	defer func() { span.finish(ctx, err) }()

	if err = domain.ValidateID("task", id); err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		tasks := tx.Tasks()
		root, err := tasks.FindByID(ctx, id)
		if err != nil {
			return err
		}
		desc, err := tasks.Descendants(ctx, root.ID, 0)
		if err != nil {
			return err
		}
		// Callbacks may be retried, so the result is built from scratch here.
		removed := []string{}
		ids := []string{root.ID}
		for _, d := range desc {
			ids = append(ids, d.Task.ID)
			removed = append(removed, d.Task.ID)
		}
		if _, err := tasks.DeleteMany(ctx, repository.TaskFilter{ProjectID: root.ProjectID, IDs: ids}); err != nil {
			return err
		}
		if err := NewOrderingManager(tasks).Remove(ctx, GroupOf(root), root.Order); err != nil {
			return err
		}
		result = &contract.DeleteResult{DeletedRoot: root.ID, DeletedDescendants: removed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	span.set("deleted_descendants", len(result.DeletedDescendants))
	return result, nil
}

// loadParent fetches a would-be parent and checks it lives in projectID.
func loadParent(ctx context.Context, tasks repository.TaskStore, projectID, parentID string) (*domain.Task, error) {
	parent, err := tasks.FindByID(ctx, parentID)
	if err != nil {
		return nil, asInvalidReference(err, "parent task", parentID)
	}
	if parent.ProjectID != projectID {
		return nil, fmt.Errorf("%w: parent task %s belongs to another project", domain.ErrInvalidReference, parentID)
	}
	return parent, nil
}

// ensureNoCycle rejects making newParent the parent of taskID when taskID is
// newParent itself or one of its ancestors.
func ensureNoCycle(ctx context.Context, tasks repository.TaskStore, taskID string, newParent *domain.Task) error {
	seen := map[string]bool{}
	for cur := newParent; ; {
		if cur.ID == taskID {
			return fmt.Errorf("%w: task %s cannot be moved under itself or its own descendant", domain.ErrValidation, taskID)
		}
		if cur.ParentTaskID == nil || seen[cur.ID] {
			return nil
		}
		seen[cur.ID] = true
		next, err := tasks.FindByID(ctx, *cur.ParentTaskID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		cur = next
	}
}
