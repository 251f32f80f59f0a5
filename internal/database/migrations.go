package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order on every start; each statement is idempotent.
//
// tasks has no UNIQUE(project_id, status, position): SQLite checks
// uniqueness per row during a multi-row UPDATE, so shifting a lane by one would
// collide with itself. Lane density is kept by the lane engine instead.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS project_members (
		project_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('owner', 'member')),
		joined_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (project_id, user_id),
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		project_id INTEGER NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('todo', 'in_progress', 'done')),
		position INTEGER NOT NULL CHECK (position >= 0),
		priority TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
		assigned_to INTEGER,
		created_by INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
		FOREIGN KEY (assigned_to) REFERENCES users(id) ON DELETE SET NULL,
		FOREIGN KEY (created_by) REFERENCES users(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_lane ON tasks(project_id, status, position)`,
	`CREATE INDEX IF NOT EXISTS idx_members_user ON project_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_id)`,
}

// runMigrations creates the database schema if needed
func runMigrations(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
