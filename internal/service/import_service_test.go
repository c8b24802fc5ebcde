package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/arbor/internal/contract"
	"github.com/alexanderramin/arbor/internal/domain"
	"github.com/alexanderramin/arbor/internal/importer"
	"github.com/alexanderramin/arbor/internal/repository"
	"github.com/alexanderramin/arbor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const launchTree = `
project:
  name: Launch
  short_id: LCH01
tasks:
  - title: Write copy
    children:
      - title: Draft
        completed: true
      - title: Edit
        completed: true
  - title: Build site
    children:
      - title: Pages
      - title: Deploy
  - title: Announce
`

func writeImportFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestImportProject_BuildsTreeInFileOrder(t *testing.T) {
	store, projects, tasks := setupServices(t)
	ctx := context.Background()
	svc := NewImportService(store)

	res, err := svc.ImportProject(ctx, writeImportFile(t, "launch.yaml", launchTree))
	require.NoError(t, err)
	assert.Equal(t, "Launch", res.ProjectName)
	assert.Equal(t, 7, res.TaskCount)
	// Draft, Edit and then Write copy through propagation.
	assert.Equal(t, 3, res.CompletedCount)

	proj, err := projects.Resolve(ctx, "LCH01")
	require.NoError(t, err)
	assert.Equal(t, res.ProjectID, proj.ID)

	assert.Equal(t, []string{"Write copy", "Build site", "Announce"}, groupTitles(t, store, proj.ID, domain.RootKey))
	requireDense(t, store, proj.ID)

	view, err := tasks.ProjectView(ctx, contract.NewProjectViewRequest(proj.ID))
	require.NoError(t, err)
	roots := view.Tasks.Hierarchy[domain.RootKey]
	require.Len(t, roots, 3)
	write, build := roots[0], roots[1]
	assert.True(t, view.Tasks.Entities[write].Completed)
	assert.False(t, view.Tasks.Entities[build].Completed)

	var kids []string
	for _, id := range view.Tasks.Hierarchy[build] {
		kids = append(kids, view.Tasks.Entities[id].Title)
	}
	assert.Equal(t, []string{"Pages", "Deploy"}, kids)
}

func TestImportProject_JSON(t *testing.T) {
	store := setupStore(t)
	svc := NewImportService(store)
	body := `{"project":{"name":"Tiny"},"tasks":[{"title":"only","completed":true}]}`

	res, err := svc.ImportProject(context.Background(), writeImportFile(t, "tiny.json", body))
	require.NoError(t, err)
	assert.Equal(t, 1, res.TaskCount)
	assert.Equal(t, 1, res.CompletedCount)
}

func TestImportProject_ValidationWritesNothing(t *testing.T) {
	store, projects, _ := setupServices(t)
	ctx := context.Background()
	svc := NewImportService(store)

	schema := &importer.ImportSchema{
		Project: importer.ProjectImport{Name: ""},
		Tasks:   []importer.TaskImport{{Title: ""}},
	}
	_, err := svc.ImportProjectFromSchema(ctx, schema)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "2 errors")

	list, err := projects.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImportProject_MissingFile(t *testing.T) {
	store := setupStore(t)
	svc := NewImportService(store)

	_, err := svc.ImportProject(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "loading import file")
}

func TestImportProject_FailedTaskWriteRollsBackWholeImport(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	injected := errors.New("disk full")
	failing := repository.NewSQLiteStoreWithUoW(database,
		&testutil.FailOnNthWriteUoW{DB: database, FailOn: 4, Err: injected})

	_, err := NewImportService(failing).ImportProject(ctx, writeImportFile(t, "launch.yaml", launchTree))
	require.ErrorIs(t, err, injected)

	seed := repository.NewSQLiteStore(database)
	list, err := NewProjectService(seed).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	left, err := seed.Tasks().List(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, left)
}
