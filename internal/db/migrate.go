package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateRepackTaskOrder(db); err != nil {
		return fmt.Errorf("repacking task order: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id             TEXT PRIMARY KEY,
		project_id     TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		parent_task_id TEXT REFERENCES tasks(id) ON DELETE CASCADE,
		title          TEXT NOT NULL CHECK(length(trim(title)) > 0),
		sort_order     INTEGER NOT NULL DEFAULT 0 CHECK(sort_order >= 0),
		completed      INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_group ON tasks(project_id, parent_task_id, sort_order)`,

	// Add short_id column to projects
	`ALTER TABLE projects ADD COLUMN short_id TEXT NOT NULL DEFAULT ''`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_short_id ON projects(short_id) WHERE short_id != ''`,
}

// migrateRepackTaskOrder rewrites sort_order so every sibling group is dense
// and 0-based. Databases written before deletes re-packed their sibling group
// can hold gaps. Groups that are already dense are left untouched.
func migrateRepackTaskOrder(db *sql.DB) error {
	ctx := context.Background()

	query := `UPDATE tasks SET sort_order = ranked.rn
		FROM (
			SELECT id, ROW_NUMBER() OVER (
				PARTITION BY project_id, COALESCE(parent_task_id, '')
				ORDER BY sort_order, created_at, id
			) - 1 AS rn
			FROM tasks
		) AS ranked
		WHERE tasks.id = ranked.id AND tasks.sort_order != ranked.rn`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("rewriting sort_order: %w", err)
	}
	return nil
}
