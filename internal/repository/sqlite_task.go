package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/arbor/internal/db"
	"github.com/alexanderramin/arbor/internal/domain"
	"github.com/alexanderramin/arbor/internal/search"
)

// SQLiteTaskRepo implements TaskStore using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

const taskColumns = `id, project_id, parent_task_id, title, sort_order, completed, created_at, updated_at`

const taskColumnsT = `t.id, t.project_id, t.parent_task_id, t.title, t.sort_order, t.completed, t.created_at, t.updated_at`

const taskOrderBy = `ORDER BY sort_order, created_at, id`

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.ProjectID,
		nullableString(t.ParentTaskID),
		t.Title,
		t.Order,
		boolToInt(t.Completed),
		t.CreatedAt.UTC().Format(time.RFC3339),
		t.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	return t, nil
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET parent_task_id = ?, title = ?, sort_order = ?, completed = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableString(t.ParentTaskID),
		t.Title,
		t.Order,
		boolToInt(t.Completed),
		t.UpdatedAt.UTC().Format(time.RFC3339),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteTaskRepo) List(ctx context.Context, f TaskFilter) ([]*domain.Task, error) {
	where, args := sqlTaskWhere(f)
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where + ` ` + taskOrderBy
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLiteTaskRepo) Count(ctx context.Context, f TaskFilter) (int, error) {
	where, args := sqlTaskWhere(f)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	return n, nil
}

func (r *SQLiteTaskRepo) UpdateMany(ctx context.Context, f TaskFilter, p TaskPatch) (int, error) {
	if f.IsEmpty() {
		return 0, ErrUnboundedFilter
	}
	if p.IsZero() {
		return 0, nil
	}

	sets := []string{"updated_at = ?"}
	setArgs := []any{nowUTC()}
	if p.IncOrder != 0 {
		sets = append(sets, "sort_order = sort_order + ?")
		setArgs = append(setArgs, p.IncOrder)
	}
	if p.SetCompleted != nil {
		sets = append(sets, "completed = ?")
		setArgs = append(setArgs, boolToInt(*p.SetCompleted))
	}

	where, whereArgs := sqlTaskWhere(f)
	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE ` + where
	res, err := r.db.ExecContext(ctx, query, append(setArgs, whereArgs...)...)
	if err != nil {
		return 0, fmt.Errorf("bulk updating tasks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bulk updating tasks: %w", err)
	}
	return int(n), nil
}

// DeleteMany selects the matching ids before deleting. Rows removed by the
// parent_task_id cascade would otherwise be missing from the result.
func (r *SQLiteTaskRepo) DeleteMany(ctx context.Context, f TaskFilter) ([]string, error) {
	if f.IsEmpty() {
		return nil, ErrUnboundedFilter
	}
	where, args := sqlTaskWhere(f)
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM tasks WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting tasks to delete: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning task id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE `+where, args...); err != nil {
		return nil, fmt.Errorf("bulk deleting tasks: %w", err)
	}
	return ids, nil
}

// Descendants walks parent_task_id links downward with a recursive CTE.
func (r *SQLiteTaskRepo) Descendants(ctx context.Context, rootID string, maxDepth int) ([]Descendant, error) {
	query := `WITH RECURSIVE sub(id, depth) AS (
			SELECT id, 1 FROM tasks WHERE parent_task_id = ?
			UNION ALL
			SELECT c.id, sub.depth + 1 FROM tasks c
			JOIN sub ON c.parent_task_id = sub.id
			WHERE ? <= 0 OR sub.depth < ?
		)
		SELECT ` + taskColumnsT + `, sub.depth
		FROM sub JOIN tasks t ON t.id = sub.id
		ORDER BY sub.depth, t.sort_order, t.created_at, t.id`
	rows, err := r.db.QueryContext(ctx, query, rootID, maxDepth, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("listing descendants: %w", err)
	}
	defer rows.Close()

	var out []Descendant
	for rows.Next() {
		var d Descendant
		t, err := scanTask(rows, &d.Depth)
		if err != nil {
			return nil, fmt.Errorf("scanning descendant: %w", err)
		}
		d.Task = t
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating descendants: %w", err)
	}
	return out, nil
}

func (r *SQLiteTaskRepo) TextSearch(ctx context.Context, projectID, query string) ([]string, error) {
	if len(search.Terms(query)) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title FROM tasks WHERE project_id = ? `+taskOrderBy, projectID)
	if err != nil {
		return nil, fmt.Errorf("searching tasks: %w", err)
	}
	defer rows.Close()

	var cands []search.Candidate
	for rows.Next() {
		var c search.Candidate
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			return nil, fmt.Errorf("scanning task title: %w", err)
		}
		cands = append(cands, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task titles: %w", err)
	}
	return search.IDs(search.Rank(query, cands)), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads the taskColumns from one row. extra receives any columns
// selected after them.
func scanTask(row rowScanner, extra ...any) (*domain.Task, error) {
	var t domain.Task
	var parentID sql.NullString
	var completed int
	var createdAt, updatedAt string

	dest := []any{&t.ID, &t.ProjectID, &parentID, &t.Title, &t.Order, &completed, &createdAt, &updatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	t.ParentTaskID = stringPtr(parentID)
	t.Completed = intToBool(completed)
	if err := parseTimestamps(&t, createdAt, updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// sqlTaskWhere renders f as a WHERE clause body and its arguments.
func sqlTaskWhere(f TaskFilter) (string, []any) {
	var conds []string
	var args []any

	if f.ProjectID != "" {
		conds = append(conds, "project_id = ?")
		args = append(args, f.ProjectID)
	}
	switch f.ParentKey {
	case "":
	case domain.RootKey:
		conds = append(conds, "parent_task_id IS NULL")
	default:
		conds = append(conds, "parent_task_id = ?")
		args = append(args, f.ParentKey)
	}
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			conds = append(conds, "0")
		} else {
			conds = append(conds, "id IN (?"+strings.Repeat(", ?", len(f.IDs)-1)+")")
			for _, id := range f.IDs {
				args = append(args, id)
			}
		}
	}
	for _, c := range []struct {
		op string
		v  *int
	}{{">", f.OrderGT}, {">=", f.OrderGTE}, {"<", f.OrderLT}, {"<=", f.OrderLTE}} {
		if c.v != nil {
			conds = append(conds, "sort_order "+c.op+" ?")
			args = append(args, *c.v)
		}
	}
	if f.Completed != nil {
		conds = append(conds, "completed = ?")
		args = append(args, boolToInt(*f.Completed))
	}

	if len(conds) == 0 {
		return "1", nil
	}
	return strings.Join(conds, " AND "), args
}
