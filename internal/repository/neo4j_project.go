package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/arbor/internal/domain"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jProjectRepo implements ProjectRepo on a Neo4j graph.
type Neo4jProjectRepo struct {
	runner cypherRunner
}

func (r *Neo4jProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	cypher := `CREATE (p:Project {id: $id, shortId: $shortId, name: $name, createdAt: $createdAt, updatedAt: $updatedAt})`
	_, err := r.runner.run(ctx, true, cypher, map[string]any{
		"id":        p.ID,
		"shortId":   p.ShortID,
		"name":      p.Name,
		"createdAt": p.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt": p.UpdatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *Neo4jProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return r.getOne(ctx, `MATCH (p:Project {id: $key}) RETURN properties(p) AS p`, id)
}

func (r *Neo4jProjectRepo) GetByShortID(ctx context.Context, shortID string) (*domain.Project, error) {
	return r.getOne(ctx,
		`MATCH (p:Project) WHERE p.shortId <> '' AND toUpper(p.shortId) = toUpper($key) RETURN properties(p) AS p`,
		shortID)
}

func (r *Neo4jProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	recs, err := r.runner.run(ctx, false,
		`MATCH (p:Project) RETURN properties(p) AS p ORDER BY p.createdAt, p.name`, nil)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	projects := make([]*domain.Project, 0, len(recs))
	for _, rec := range recs {
		p, err := projectFromRecord(rec)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// Delete removes the project node together with every task of the project.
func (r *Neo4jProjectRepo) Delete(ctx context.Context, id string) error {
	cypher := `MATCH (p:Project {id: $id})
		OPTIONAL MATCH (t:Task {projectId: $id})
		DETACH DELETE t
		WITH DISTINCT p
		DETACH DELETE p
		RETURN count(p) AS n`
	recs, err := r.runner.run(ctx, true, cypher, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	n, err := singleCount(recs)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *Neo4jProjectRepo) getOne(ctx context.Context, cypher, key string) (*domain.Project, error) {
	recs, err := r.runner.run(ctx, false, cypher, map[string]any{"key": key})
	if err != nil {
		return nil, fmt.Errorf("finding project: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("project %s: %w", key, ErrNotFound)
	}
	return projectFromRecord(recs[0])
}

func projectFromRecord(rec *neo4j.Record) (*domain.Project, error) {
	props, err := recordValue[map[string]any](rec, "p")
	if err != nil {
		return nil, err
	}
	var p domain.Project
	p.ID, _ = props["id"].(string)
	p.ShortID, _ = props["shortId"].(string)
	p.Name, _ = props["name"].(string)
	createdAt, _ := props["createdAt"].(string)
	updatedAt, _ := props["updatedAt"].(string)
	if p.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing project createdAt: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing project updatedAt: %w", err)
	}
	return &p, nil
}
