package repository

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// cypherRunner executes one Cypher statement and returns its records fully
// consumed, so callers never hold a live result.
type cypherRunner interface {
	run(ctx context.Context, write bool, cypher string, params map[string]any) ([]*neo4j.Record, error)
}

// sessionRunner opens a session per statement and runs it in a managed
// transaction.
type sessionRunner struct {
	driver   neo4j.DriverWithContext
	database string
}

func (r sessionRunner) run(ctx context.Context, write bool, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	mode := neo4j.AccessModeRead
	if write {
		mode = neo4j.AccessModeWrite
	}
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: r.database})
	defer session.Close(ctx)

	work := func(tx neo4j.ManagedTransaction) (any, error) {
		return collect(ctx, tx, cypher, params)
	}
	var out any
	var err error
	if write {
		out, err = session.ExecuteWrite(ctx, work)
	} else {
		out, err = session.ExecuteRead(ctx, work)
	}
	if err != nil {
		return nil, err
	}
	return out.([]*neo4j.Record), nil
}

// txRunner runs every statement inside one caller-owned transaction.
type txRunner struct {
	tx neo4j.ManagedTransaction
}

func (r txRunner) run(ctx context.Context, _ bool, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	return collect(ctx, r.tx, cypher, params)
}

func collect(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return res.Collect(ctx)
}

// Neo4jStore keeps tasks as (:Task) nodes linked to their parent by
// (:Task)-[:HAS_PARENT]->(:Task), and projects as (:Project) nodes.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	runner   cypherRunner
	inTx     bool
}

// NewNeo4jStore creates a Store on driver. database "" is the server default.
func NewNeo4jStore(driver neo4j.DriverWithContext, database string) *Neo4jStore {
	return &Neo4jStore{
		driver:   driver,
		database: database,
		runner:   sessionRunner{driver: driver, database: database},
	}
}

var neo4jSchema = []string{
	`CREATE CONSTRAINT task_id IF NOT EXISTS FOR (t:Task) REQUIRE t.id IS UNIQUE`,
	`CREATE CONSTRAINT project_id IF NOT EXISTS FOR (p:Project) REQUIRE p.id IS UNIQUE`,
	`CREATE INDEX task_group IF NOT EXISTS FOR (t:Task) ON (t.projectId, t.parentTaskId)`,
}

// EnsureSchema creates the uniqueness constraints and the sibling-group index.
func (s *Neo4jStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range neo4jSchema {
		if _, err := s.runner.run(ctx, true, stmt, nil); err != nil {
			return fmt.Errorf("neo4j schema: %w", err)
		}
	}
	return nil
}

func (s *Neo4jStore) Tasks() TaskStore {
	return &Neo4jTaskRepo{runner: s.runner}
}

func (s *Neo4jStore) Projects() ProjectRepo {
	return &Neo4jProjectRepo{runner: s.runner}
}

func (s *Neo4jStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: s.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, fn(ctx, &Neo4jStore{
			driver:   s.driver,
			database: s.database,
			runner:   txRunner{tx: tx},
			inTx:     true,
		})
	})
	return err
}

// recordValue reads key from rec as a T.
func recordValue[T any](rec *neo4j.Record, key string) (T, error) {
	var zero T
	v, ok := rec.Get(key)
	if !ok {
		return zero, fmt.Errorf("neo4j record has no %q", key)
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("neo4j record %q is %T", key, v)
	}
	return out, nil
}

var (
	_ Store       = (*Neo4jStore)(nil)
	_ TaskStore   = (*Neo4jTaskRepo)(nil)
	_ ProjectRepo = (*Neo4jProjectRepo)(nil)
)
