package database

import (
	"context"
	"database/sql"
)

// runMigrations creates the database schema. Records carry client-generated
// UUID primary keys and explicit prev_id/next_id links; positions are never
// stored. Link targets are not foreign keys on purpose: a transaction's op
// list may reference records upserted later in the same batch.
func runMigrations(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			nickname TEXT NOT NULL,
			last_project_id TEXT,
			avatar TEXT,
			language TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			prev_id TEXT,
			next_id TEXT,
			user_id TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS statuses (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			color TEXT,
			project_id TEXT NOT NULL,
			prev_id TEXT,
			next_id TEXT,
			user_id TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			due_date DATETIME,
			status TEXT NOT NULL,
			prev_status TEXT,
			prev_id TEXT,
			next_id TEXT,
			user_id TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS committed_txns (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			committed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_statuses_project ON statuses(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
