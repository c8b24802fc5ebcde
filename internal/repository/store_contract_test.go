package repository

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/alexanderramin/arbor/internal/domain"
	"github.com/alexanderramin/arbor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The contract below runs against every Store backend.

func intp(i int) *int    { return &i }
func boolp(b bool) *bool { return &b }

type storeFactory func(t *testing.T) Store

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// seedTree creates one project holding:
//
//	root: A(0) B(1) C(2)
//	A:    A1(0) A2(1)
//	A1:   A1a(0)
func seedTree(t *testing.T, s Store) (*domain.Project, map[string]*domain.Task) {
	t.Helper()
	ctx := context.Background()

	proj := testutil.NewTestProject("Tree")
	require.NoError(t, s.Projects().Create(ctx, proj))

	tasks := map[string]*domain.Task{}
	add := func(name string, order int, parent string, minute int) {
		opts := []testutil.TaskOption{
			testutil.WithOrder(order),
			testutil.WithCreatedAt(base.Add(time.Duration(minute) * time.Minute)),
		}
		if parent != "" {
			opts = append(opts, testutil.WithParentTaskID(tasks[parent].ID))
		}
		task := testutil.NewTestTask(proj.ID, name, opts...)
		require.NoError(t, s.Tasks().Create(ctx, task))
		tasks[name] = task
	}
	add("A", 0, "", 0)
	add("B", 1, "", 1)
	add("C", 2, "", 2)
	add("A1", 0, "A", 3)
	add("A2", 1, "A", 4)
	add("A1a", 0, "A1", 5)
	return proj, tasks
}

func titles(tasks []*domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func runStoreContract(t *testing.T, newStore storeFactory) {
	ctx := context.Background()

	t.Run("CreateAndFindByID", func(t *testing.T) {
		s := newStore(t)
		_, tasks := seedTree(t, s)

		got, err := s.Tasks().FindByID(ctx, tasks["A1"].ID)
		require.NoError(t, err)
		assert.Equal(t, "A1", got.Title)
		assert.Equal(t, tasks["A1"].ProjectID, got.ProjectID)
		require.NotNil(t, got.ParentTaskID)
		assert.Equal(t, tasks["A"].ID, *got.ParentTaskID)
		assert.Equal(t, 0, got.Order)
		assert.False(t, got.Completed)
		assert.True(t, got.CreatedAt.Equal(base.Add(3*time.Minute)))

		root, err := s.Tasks().FindByID(ctx, tasks["B"].ID)
		require.NoError(t, err)
		assert.Nil(t, root.ParentTaskID)
		assert.Equal(t, 1, root.Order)
	})

	t.Run("FindByID_NotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Tasks().FindByID(ctx, "7d1f0c1e-0000-4000-8000-000000000000")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("Update_FullWriteAndReparent", func(t *testing.T) {
		s := newStore(t)
		_, tasks := seedTree(t, s)

		moved := tasks["A2"]
		moved.ParentTaskID = &tasks["B"].ID
		moved.Title = "A2 moved"
		moved.Order = 0
		moved.Completed = true
		moved.UpdatedAt = base.Add(time.Hour)
		require.NoError(t, s.Tasks().Update(ctx, moved))

		got, err := s.Tasks().FindByID(ctx, moved.ID)
		require.NoError(t, err)
		assert.Equal(t, "A2 moved", got.Title)
		require.NotNil(t, got.ParentTaskID)
		assert.Equal(t, tasks["B"].ID, *got.ParentTaskID)
		assert.True(t, got.Completed)

		under, err := s.Tasks().List(ctx, TaskFilter{ParentKey: tasks["B"].ID})
		require.NoError(t, err)
		assert.Equal(t, []string{"A2 moved"}, titles(under))

		desc, err := s.Tasks().Descendants(ctx, tasks["A"].ID, 0)
		require.NoError(t, err)
		for _, d := range desc {
			assert.NotEqual(t, moved.ID, d.Task.ID, "moved task must leave the old subtree")
		}

		moved.ParentTaskID = nil
		require.NoError(t, s.Tasks().Update(ctx, moved))
		got, err = s.Tasks().FindByID(ctx, moved.ID)
		require.NoError(t, err)
		assert.Nil(t, got.ParentTaskID)
	})

	t.Run("Update_NotFound", func(t *testing.T) {
		s := newStore(t)
		proj := testutil.NewTestProject("Ghost")
		require.NoError(t, s.Projects().Create(ctx, proj))
		ghost := testutil.NewTestTask(proj.ID, "never stored")
		err := s.Tasks().Update(ctx, ghost)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("List_SiblingGroupsInOrder", func(t *testing.T) {
		s := newStore(t)
		proj, tasks := seedTree(t, s)

		roots, err := s.Tasks().List(ctx, TaskFilter{ProjectID: proj.ID, ParentKey: domain.RootKey})
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, titles(roots))

		children, err := s.Tasks().List(ctx, TaskFilter{ProjectID: proj.ID, ParentKey: tasks["A"].ID})
		require.NoError(t, err)
		assert.Equal(t, []string{"A1", "A2"}, titles(children))

		all, err := s.Tasks().List(ctx, TaskFilter{ProjectID: proj.ID})
		require.NoError(t, err)
		assert.Len(t, all, 6)
		for i := 1; i < len(all); i++ {
			assert.LessOrEqual(t, all[i-1].Order, all[i].Order)
		}
	})

	t.Run("List_TiesBreakOnCreation", func(t *testing.T) {
		s := newStore(t)
		proj := testutil.NewTestProject("Ties")
		require.NoError(t, s.Projects().Create(ctx, proj))
		later := testutil.NewTestTask(proj.ID, "later", testutil.WithCreatedAt(base.Add(time.Minute)))
		earlier := testutil.NewTestTask(proj.ID, "earlier", testutil.WithCreatedAt(base))
		require.NoError(t, s.Tasks().Create(ctx, later))
		require.NoError(t, s.Tasks().Create(ctx, earlier))

		got, err := s.Tasks().List(ctx, TaskFilter{ProjectID: proj.ID})
		require.NoError(t, err)
		assert.Equal(t, []string{"earlier", "later"}, titles(got))
	})

	t.Run("List_Filters", func(t *testing.T) {
		s := newStore(t)
		proj, tasks := seedTree(t, s)

		byID, err := s.Tasks().List(ctx, TaskFilter{IDs: []string{tasks["C"].ID, tasks["A1a"].ID}})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"C", "A1a"}, titles(byID))

		none, err := s.Tasks().List(ctx, TaskFilter{ProjectID: proj.ID, IDs: []string{}})
		require.NoError(t, err)
		assert.Empty(t, none)

		window, err := s.Tasks().List(ctx, TaskFilter{
			ProjectID: proj.ID, ParentKey: domain.RootKey, OrderGT: intp(0), OrderLTE: intp(2),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"B", "C"}, titles(window))

		window, err = s.Tasks().List(ctx, TaskFilter{
			ProjectID: proj.ID, ParentKey: domain.RootKey, OrderGTE: intp(1), OrderLT: intp(2),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"B"}, titles(window))

		done := tasks["B"]
		done.Completed = true
		require.NoError(t, s.Tasks().Update(ctx, done))
		completed, err := s.Tasks().List(ctx, TaskFilter{ProjectID: proj.ID, Completed: boolp(true)})
		require.NoError(t, err)
		assert.Equal(t, []string{"B"}, titles(completed))

		pending, err := s.Tasks().Count(ctx, TaskFilter{ProjectID: proj.ID, Completed: boolp(false)})
		require.NoError(t, err)
		assert.Equal(t, 5, pending)
	})

	t.Run("List_ScopedToProject", func(t *testing.T) {
		s := newStore(t)
		proj, _ := seedTree(t, s)
		other := testutil.NewTestProject("Other")
		require.NoError(t, s.Projects().Create(ctx, other))
		require.NoError(t, s.Tasks().Create(ctx, testutil.NewTestTask(other.ID, "elsewhere")))

		roots, err := s.Tasks().Count(ctx, TaskFilter{ProjectID: proj.ID, ParentKey: domain.RootKey})
		require.NoError(t, err)
		assert.Equal(t, 3, roots)

		otherRoots, err := s.Tasks().Count(ctx, TaskFilter{ProjectID: other.ID, ParentKey: domain.RootKey})
		require.NoError(t, err)
		assert.Equal(t, 1, otherRoots)
	})

	t.Run("UpdateMany_ShiftsAndCompletes", func(t *testing.T) {
		s := newStore(t)
		proj, tasks := seedTree(t, s)

		n, err := s.Tasks().UpdateMany(ctx,
			TaskFilter{ProjectID: proj.ID, ParentKey: domain.RootKey, OrderGTE: intp(1)},
			TaskPatch{IncOrder: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		b, err := s.Tasks().FindByID(ctx, tasks["B"].ID)
		require.NoError(t, err)
		assert.Equal(t, 2, b.Order)
		c, err := s.Tasks().FindByID(ctx, tasks["C"].ID)
		require.NoError(t, err)
		assert.Equal(t, 3, c.Order)

		n, err = s.Tasks().UpdateMany(ctx,
			TaskFilter{IDs: []string{tasks["A1"].ID, tasks["A1a"].ID}},
			TaskPatch{SetCompleted: boolp(true)})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		a1a, err := s.Tasks().FindByID(ctx, tasks["A1a"].ID)
		require.NoError(t, err)
		assert.True(t, a1a.Completed)
	})

	t.Run("UpdateMany_ZeroMatchesIsNotAnError", func(t *testing.T) {
		s := newStore(t)
		proj, _ := seedTree(t, s)
		n, err := s.Tasks().UpdateMany(ctx,
			TaskFilter{ProjectID: proj.ID, ParentKey: domain.RootKey, OrderGT: intp(10)},
			TaskPatch{IncOrder: -1})
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("BulkWrites_RefuseEmptyFilter", func(t *testing.T) {
		s := newStore(t)
		seedTree(t, s)

		_, err := s.Tasks().UpdateMany(ctx, TaskFilter{}, TaskPatch{IncOrder: 1})
		assert.ErrorIs(t, err, ErrUnboundedFilter)
		_, err = s.Tasks().DeleteMany(ctx, TaskFilter{})
		assert.ErrorIs(t, err, ErrUnboundedFilter)
	})

	t.Run("DeleteMany_ReturnsIDs", func(t *testing.T) {
		s := newStore(t)
		proj, tasks := seedTree(t, s)

		ids := []string{tasks["A"].ID, tasks["A1"].ID, tasks["A2"].ID, tasks["A1a"].ID}
		deleted, err := s.Tasks().DeleteMany(ctx, TaskFilter{IDs: ids})
		require.NoError(t, err)
		assert.ElementsMatch(t, ids, deleted)

		left, err := s.Tasks().List(ctx, TaskFilter{ProjectID: proj.ID})
		require.NoError(t, err)
		assert.Equal(t, []string{"B", "C"}, titles(left))

		deleted, err = s.Tasks().DeleteMany(ctx, TaskFilter{IDs: ids})
		require.NoError(t, err)
		assert.Empty(t, deleted)
	})

	t.Run("Descendants_DepthAndBound", func(t *testing.T) {
		s := newStore(t)
		_, tasks := seedTree(t, s)

		all, err := s.Tasks().Descendants(ctx, tasks["A"].ID, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		depths := map[string]int{}
		for _, d := range all {
			depths[d.Task.Title] = d.Depth
		}
		assert.Equal(t, map[string]int{"A1": 1, "A2": 1, "A1a": 2}, depths)
		assert.Equal(t, 1, all[0].Depth, "nearest first")

		direct, err := s.Tasks().Descendants(ctx, tasks["A"].ID, 1)
		require.NoError(t, err)
		got := make([]string, 0, len(direct))
		for _, d := range direct {
			got = append(got, d.Task.Title)
		}
		assert.Equal(t, []string{"A1", "A2"}, got)

		leaf, err := s.Tasks().Descendants(ctx, tasks["C"].ID, 0)
		require.NoError(t, err)
		assert.Empty(t, leaf)
	})

	t.Run("TextSearch", func(t *testing.T) {
		s := newStore(t)
		proj := testutil.NewTestProject("Search")
		require.NoError(t, s.Projects().Create(ctx, proj))
		for i, title := range []string{"Deploy service", "Write docs", "Deploy docs"} {
			task := testutil.NewTestTask(proj.ID, title, testutil.WithOrder(i))
			require.NoError(t, s.Tasks().Create(ctx, task))
		}

		ids, err := s.Tasks().TextSearch(ctx, proj.ID, "deploy docs")
		require.NoError(t, err)
		require.Len(t, ids, 3)
		top, err := s.Tasks().FindByID(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, "Deploy docs", top.Title)

		ids, err = s.Tasks().TextSearch(ctx, proj.ID, "deplyo")
		require.NoError(t, err)
		assert.Len(t, ids, 2)

		ids, err = s.Tasks().TextSearch(ctx, proj.ID, "  ")
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("Projects_CRUD", func(t *testing.T) {
		s := newStore(t)
		p1 := testutil.NewTestProject("First", testutil.WithShortID("FST01"))
		p2 := testutil.NewTestProject("Second", testutil.WithoutShortID())
		p2.CreatedAt = p1.CreatedAt.Add(time.Second)
		require.NoError(t, s.Projects().Create(ctx, p1))
		require.NoError(t, s.Projects().Create(ctx, p2))

		got, err := s.Projects().GetByID(ctx, p1.ID)
		require.NoError(t, err)
		assert.Equal(t, "First", got.Name)
		assert.Equal(t, "FST01", got.ShortID)

		got, err = s.Projects().GetByShortID(ctx, "fst01")
		require.NoError(t, err)
		assert.Equal(t, p1.ID, got.ID)

		_, err = s.Projects().GetByShortID(ctx, "")
		assert.ErrorIs(t, err, ErrNotFound)

		list, err := s.Projects().List(ctx)
		require.NoError(t, err)
		names := make([]string, 0, len(list))
		for _, p := range list {
			names = append(names, p.Name)
		}
		sort.Strings(names)
		assert.Equal(t, []string{"First", "Second"}, names)

		_, err = s.Projects().GetByID(ctx, "0a4c5d7e-0000-4000-8000-000000000000")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Projects_DeleteCascadesToTasks", func(t *testing.T) {
		s := newStore(t)
		proj, tasks := seedTree(t, s)

		require.NoError(t, s.Projects().Delete(ctx, proj.ID))

		_, err := s.Tasks().FindByID(ctx, tasks["A1a"].ID)
		assert.ErrorIs(t, err, ErrNotFound)
		n, err := s.Tasks().Count(ctx, TaskFilter{ProjectID: proj.ID})
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		assert.ErrorIs(t, s.Projects().Delete(ctx, proj.ID), ErrNotFound)
	})

	t.Run("WithinTx_RollsBackOnError", func(t *testing.T) {
		s := newStore(t)
		proj, tasks := seedTree(t, s)
		boom := errors.New("boom")

		err := s.WithinTx(ctx, func(ctx context.Context, tx Store) error {
			if _, err := tx.Tasks().UpdateMany(ctx,
				TaskFilter{ProjectID: proj.ID, ParentKey: domain.RootKey},
				TaskPatch{IncOrder: 1}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		a, err := s.Tasks().FindByID(ctx, tasks["A"].ID)
		require.NoError(t, err)
		assert.Equal(t, 0, a.Order, "shift must be rolled back")
	})

	t.Run("WithinTx_CommitsAndNests", func(t *testing.T) {
		s := newStore(t)
		proj := testutil.NewTestProject("Tx")
		require.NoError(t, s.Projects().Create(ctx, proj))

		err := s.WithinTx(ctx, func(ctx context.Context, tx Store) error {
			if err := tx.Tasks().Create(ctx, testutil.NewTestTask(proj.ID, "outer")); err != nil {
				return err
			}
			return tx.WithinTx(ctx, func(ctx context.Context, inner Store) error {
				return inner.Tasks().Create(ctx, testutil.NewTestTask(proj.ID, "inner", testutil.WithOrder(1)))
			})
		})
		require.NoError(t, err)

		n, err := s.Tasks().Count(ctx, TaskFilter{ProjectID: proj.ID})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}
