package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/arbor/internal/contract"
	"github.com/alexanderramin/arbor/internal/domain"
	"github.com/alexanderramin/arbor/internal/repository"
	"github.com/alexanderramin/arbor/internal/testutil"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) repository.Store {
	t.Helper()
	return repository.NewSQLiteStore(testutil.NewTestDB(t))
}

func setupServices(t *testing.T) (repository.Store, ProjectService, TaskService) {
	t.Helper()
	store := setupStore(t)
	return store, NewProjectService(store), NewTaskService(store)
}

func mustProject(t *testing.T, projects ProjectService, name string) *domain.Project {
	t.Helper()
	p := &domain.Project{Name: name}
	require.NoError(t, projects.Create(context.Background(), p))
	return p
}

// mustTask creates a task under parent (nil for top level). New tasks land at
// the head of their group, so callers create siblings last to first.
func mustTask(t *testing.T, tasks TaskService, projectID, title string, parent *domain.Task) *domain.Task {
	t.Helper()
	req := contract.CreateTaskRequest{Title: title, ProjectID: projectID}
	if parent != nil {
		req.ParentTaskID = &parent.ID
	}
	task, err := tasks.Create(context.Background(), req)
	require.NoError(t, err)
	return task
}

// groupTitles lists a sibling group's titles in order.
func groupTitles(t *testing.T, store repository.Store, projectID, parentKey string) []string {
	t.Helper()
	list, err := store.Tasks().List(context.Background(), repository.TaskFilter{ProjectID: projectID, ParentKey: parentKey})
	require.NoError(t, err)
	titles := make([]string, len(list))
	for i, task := range list {
		titles[i] = task.Title
	}
	return titles
}

// requireDense asserts every sibling group of the project has orders 0..n-1.
func requireDense(t *testing.T, store repository.Store, projectID string) {
	t.Helper()
	all, err := store.Tasks().List(context.Background(), repository.TaskFilter{ProjectID: projectID})
	require.NoError(t, err)

	groups := map[string][]int{}
	for _, task := range all {
		groups[task.ParentKey()] = append(groups[task.ParentKey()], task.Order)
	}
	for key, orders := range groups {
		for i, o := range orders {
			require.Equalf(t, i, o, "group %s has orders %v", key, orders)
		}
	}
}

func reload(t *testing.T, store repository.Store, id string) *domain.Task {
	t.Helper()
	task, err := store.Tasks().FindByID(context.Background(), id)
	require.NoError(t, err)
	return task
}

func strPtr(s string) *string { return &s }

var errTransient = errors.New("transient: leader switched")

// retryingStore replays every transaction once, the way a driver retries a
// managed transaction after a transient failure. The first run is rolled back.
type retryingStore struct {
	repository.Store
}

func (s retryingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	attempt := 0
	for {
		attempt++
		err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
			if err := fn(ctx, tx); err != nil {
				return err
			}
			if attempt == 1 {
				return errTransient
			}
			return nil
		})
		if errors.Is(err, errTransient) {
			continue
		}
		return err
	}
}
