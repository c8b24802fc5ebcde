package repository

import (
	"context"
	"os"
	"testing"

	"github.com/alexanderramin/arbor/internal/db"
	"github.com/alexanderramin/arbor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set ARBOR_NEO4J_TEST_URI (plus ARBOR_NEO4J_TEST_USER / _PASSWORD) to run
// the store contract against a disposable Neo4j instance. Every test wipes
// the database.
func newNeo4jTestStore(t *testing.T) Store {
	t.Helper()
	uri := os.Getenv("ARBOR_NEO4J_TEST_URI")
	if uri == "" {
		t.Skip("ARBOR_NEO4J_TEST_URI not set")
	}
	ctx := context.Background()
	driver, err := db.OpenNeo4j(ctx, db.Neo4jConfig{
		URI:      uri,
		User:     envOr("ARBOR_NEO4J_TEST_USER", "neo4j"),
		Password: envOr("ARBOR_NEO4J_TEST_PASSWORD", "password"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { driver.Close(ctx) })

	store := NewNeo4jStore(driver, "")
	require.NoError(t, store.EnsureSchema(ctx))
	_, err = store.runner.run(ctx, true, `MATCH (n) WHERE n:Task OR n:Project DETACH DELETE n`, nil)
	require.NoError(t, err)
	return store
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func TestNeo4jStore_Contract(t *testing.T) {
	runStoreContract(t, newNeo4jTestStore)
}

func TestCypherTaskWhere(t *testing.T) {
	where, params := cypherTaskWhere(TaskFilter{})
	assert.Equal(t, "true", where)
	assert.Empty(t, params)

	where, params = cypherTaskWhere(TaskFilter{
		ProjectID: "p", ParentKey: domain.RootKey, OrderGTE: intp(1), OrderLT: intp(4),
	})
	assert.Equal(t, "t.projectId = $projectId AND t.parentTaskId IS NULL AND t.order >= $orderGTE AND t.order < $orderLT", where)
	assert.Equal(t, map[string]any{"projectId": "p", "orderGTE": 1, "orderLT": 4}, params)

	where, params = cypherTaskWhere(TaskFilter{ParentKey: "x", IDs: []string{}, Completed: boolp(false)})
	assert.Equal(t, "t.parentTaskId = $parentTaskId AND t.id IN $ids AND t.completed = $completed", where)
	assert.Equal(t, []string{}, params["ids"])
	assert.Equal(t, false, params["completed"])
}

func TestTaskFromProps(t *testing.T) {
	task, err := taskFromProps(map[string]any{
		"id":           "t1",
		"projectId":    "p1",
		"parentTaskId": "t0",
		"title":        "Write",
		"order":        int64(3),
		"completed":    true,
		"createdAt":    "2025-03-01T09:00:00Z",
		"updatedAt":    "2025-03-01T10:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, task.Order)
	require.NotNil(t, task.ParentTaskID)
	assert.Equal(t, "t0", *task.ParentTaskID)
	assert.True(t, task.Completed)
	assert.True(t, base.Equal(task.CreatedAt))

	root, err := taskFromProps(map[string]any{
		"id": "t2", "projectId": "p1", "title": "Root", "order": int64(0), "completed": false,
		"createdAt": "2025-03-01T09:00:00Z", "updatedAt": "2025-03-01T09:00:00Z",
	})
	require.NoError(t, err)
	assert.Nil(t, root.ParentTaskID)

	_, err = taskFromProps(map[string]any{"id": "bad", "createdAt": "yesterday"})
	assert.Error(t, err)
}
