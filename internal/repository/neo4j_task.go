package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/arbor/internal/domain"
	"github.com/alexanderramin/arbor/internal/search"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jTaskRepo implements TaskStore on a Neo4j graph.
type Neo4jTaskRepo struct {
	runner cypherRunner
}

const cypherTaskOrderBy = `ORDER BY t.order, t.createdAt, t.id`

// linkParent (re)creates the HAS_PARENT edge of t from its parentTaskId.
const linkParent = `
	WITH DISTINCT t
	OPTIONAL MATCH (p:Task {id: t.parentTaskId})
	FOREACH (_ IN CASE WHEN p IS NULL THEN [] ELSE [1] END | CREATE (t)-[:HAS_PARENT]->(p))`

func (r *Neo4jTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	props := map[string]any{
		"id":        t.ID,
		"projectId": t.ProjectID,
		"title":     t.Title,
		"order":     t.Order,
		"completed": t.Completed,
		"createdAt": t.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt": t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if t.ParentTaskID != nil {
		props["parentTaskId"] = *t.ParentTaskID
	}
	cypher := `CREATE (t:Task $props)` + linkParent
	if _, err := r.runner.run(ctx, true, cypher, map[string]any{"props": props}); err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *Neo4jTaskRepo) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	recs, err := r.runner.run(ctx, false,
		`MATCH (t:Task {id: $id}) RETURN properties(t) AS t`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("finding task: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	props, err := recordValue[map[string]any](recs[0], "t")
	if err != nil {
		return nil, err
	}
	return taskFromProps(props)
}

func (r *Neo4jTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	cypher := `MATCH (t:Task {id: $id})
		SET t.parentTaskId = $parentTaskId, t.title = $title, t.order = $order,
		    t.completed = $completed, t.updatedAt = $updatedAt
		WITH t
		OPTIONAL MATCH (t)-[old:HAS_PARENT]->()
		DELETE old` + linkParent + `
		RETURN t.id AS id`
	recs, err := r.runner.run(ctx, true, cypher, map[string]any{
		"id":           t.ID,
		"parentTaskId": nullableString(t.ParentTaskID),
		"title":        t.Title,
		"order":        t.Order,
		"completed":    t.Completed,
		"updatedAt":    t.UpdatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	if len(recs) == 0 {
		return fmt.Errorf("task %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

func (r *Neo4jTaskRepo) List(ctx context.Context, f TaskFilter) ([]*domain.Task, error) {
	where, params := cypherTaskWhere(f)
	recs, err := r.runner.run(ctx, false,
		`MATCH (t:Task) WHERE `+where+` RETURN properties(t) AS t `+cypherTaskOrderBy, params)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	tasks := make([]*domain.Task, 0, len(recs))
	for _, rec := range recs {
		props, err := recordValue[map[string]any](rec, "t")
		if err != nil {
			return nil, err
		}
		t, err := taskFromProps(props)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (r *Neo4jTaskRepo) Count(ctx context.Context, f TaskFilter) (int, error) {
	where, params := cypherTaskWhere(f)
	recs, err := r.runner.run(ctx, false, `MATCH (t:Task) WHERE `+where+` RETURN count(t) AS n`, params)
	if err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	return singleCount(recs)
}

func (r *Neo4jTaskRepo) UpdateMany(ctx context.Context, f TaskFilter, p TaskPatch) (int, error) {
	if f.IsEmpty() {
		return 0, ErrUnboundedFilter
	}
	if p.IsZero() {
		return 0, nil
	}

	where, params := cypherTaskWhere(f)
	sets := []string{"t.updatedAt = $now"}
	params["now"] = nowUTC()
	if p.IncOrder != 0 {
		sets = append(sets, "t.order = t.order + $inc")
		params["inc"] = p.IncOrder
	}
	if p.SetCompleted != nil {
		sets = append(sets, "t.completed = $setCompleted")
		params["setCompleted"] = *p.SetCompleted
	}

	cypher := `MATCH (t:Task) WHERE ` + where + ` SET ` + strings.Join(sets, ", ") + ` RETURN count(t) AS n`
	recs, err := r.runner.run(ctx, true, cypher, params)
	if err != nil {
		return 0, fmt.Errorf("bulk updating tasks: %w", err)
	}
	return singleCount(recs)
}

func (r *Neo4jTaskRepo) DeleteMany(ctx context.Context, f TaskFilter) ([]string, error) {
	if f.IsEmpty() {
		return nil, ErrUnboundedFilter
	}
	where, params := cypherTaskWhere(f)
	recs, err := r.runner.run(ctx, true,
		`MATCH (t:Task) WHERE `+where+` WITH t, t.id AS id DETACH DELETE t RETURN id`, params)
	if err != nil {
		return nil, fmt.Errorf("bulk deleting tasks: %w", err)
	}
	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		id, err := recordValue[string](rec, "id")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Descendants follows HAS_PARENT edges backwards from rootID. The path length
// is the depth.
func (r *Neo4jTaskRepo) Descendants(ctx context.Context, rootID string, maxDepth int) ([]Descendant, error) {
	hops := "1.."
	if maxDepth > 0 {
		hops = fmt.Sprintf("1..%d", maxDepth)
	}
	cypher := fmt.Sprintf(`MATCH path = (t:Task)-[:HAS_PARENT*%s]->(:Task {id: $id})
		RETURN properties(t) AS t, length(path) AS depth
		ORDER BY depth, t.order, t.createdAt, t.id`, hops)
	recs, err := r.runner.run(ctx, false, cypher, map[string]any{"id": rootID})
	if err != nil {
		return nil, fmt.Errorf("listing descendants: %w", err)
	}

	out := make([]Descendant, 0, len(recs))
	for _, rec := range recs {
		props, err := recordValue[map[string]any](rec, "t")
		if err != nil {
			return nil, err
		}
		depth, err := recordValue[int64](rec, "depth")
		if err != nil {
			return nil, err
		}
		t, err := taskFromProps(props)
		if err != nil {
			return nil, err
		}
		out = append(out, Descendant{Task: t, Depth: int(depth)})
	}
	return out, nil
}

func (r *Neo4jTaskRepo) TextSearch(ctx context.Context, projectID, query string) ([]string, error) {
	if len(search.Terms(query)) == 0 {
		return nil, nil
	}
	recs, err := r.runner.run(ctx, false,
		`MATCH (t:Task {projectId: $projectId}) RETURN t.id AS id, t.title AS title `+cypherTaskOrderBy,
		map[string]any{"projectId": projectID})
	if err != nil {
		return nil, fmt.Errorf("searching tasks: %w", err)
	}

	cands := make([]search.Candidate, 0, len(recs))
	for _, rec := range recs {
		id, err := recordValue[string](rec, "id")
		if err != nil {
			return nil, err
		}
		title, err := recordValue[string](rec, "title")
		if err != nil {
			return nil, err
		}
		cands = append(cands, search.Candidate{ID: id, Title: title})
	}
	return search.IDs(search.Rank(query, cands)), nil
}

func singleCount(recs []*neo4j.Record) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	n, err := recordValue[int64](recs[0], "n")
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func taskFromProps(props map[string]any) (*domain.Task, error) {
	var t domain.Task
	t.ID, _ = props["id"].(string)
	t.ProjectID, _ = props["projectId"].(string)
	t.Title, _ = props["title"].(string)
	t.Completed, _ = props["completed"].(bool)
	if order, ok := props["order"].(int64); ok {
		t.Order = int(order)
	}
	if parent, ok := props["parentTaskId"].(string); ok && parent != "" {
		t.ParentTaskID = &parent
	}
	createdAt, _ := props["createdAt"].(string)
	updatedAt, _ := props["updatedAt"].(string)
	if err := parseTimestamps(&t, createdAt, updatedAt); err != nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}
	return &t, nil
}

// cypherTaskWhere renders f as a WHERE clause over the variable t.
func cypherTaskWhere(f TaskFilter) (string, map[string]any) {
	var conds []string
	params := map[string]any{}

	if f.ProjectID != "" {
		conds = append(conds, "t.projectId = $projectId")
		params["projectId"] = f.ProjectID
	}
	switch f.ParentKey {
	case "":
	case domain.RootKey:
		conds = append(conds, "t.parentTaskId IS NULL")
	default:
		conds = append(conds, "t.parentTaskId = $parentTaskId")
		params["parentTaskId"] = f.ParentKey
	}
	if f.IDs != nil {
		conds = append(conds, "t.id IN $ids")
		params["ids"] = f.IDs
	}
	for _, c := range []struct {
		op, name string
		v        *int
	}{{">", "orderGT", f.OrderGT}, {">=", "orderGTE", f.OrderGTE}, {"<", "orderLT", f.OrderLT}, {"<=", "orderLTE", f.OrderLTE}} {
		if c.v != nil {
			conds = append(conds, "t.order "+c.op+" $"+c.name)
			params[c.name] = *c.v
		}
	}
	if f.Completed != nil {
		conds = append(conds, "t.completed = $completed")
		params["completed"] = *f.Completed
	}

	if len(conds) == 0 {
		return "true", params
	}
	return strings.Join(conds, " AND "), params
}
