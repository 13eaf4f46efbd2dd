// Package migrations applies the registry schema. Statements are idempotent
// so Apply can run on every boot.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS picasso_apps (
		id UUID PRIMARY KEY,
		project_id TEXT NOT NULL,
		name VARCHAR(30) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS picasso_apps_project_name_idx
		ON picasso_apps (project_id, name)`,
	`CREATE INDEX IF NOT EXISTS picasso_apps_project_idx
		ON picasso_apps (project_id)`,
}

// Apply executes all schema statements in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
