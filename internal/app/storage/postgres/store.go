package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cmdhema/picasso/internal/app/domain/app"
	"github.com/cmdhema/picasso/internal/app/storage"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Store implements the app store backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.AppStore = (*Store)(nil)

// uniqueViolation is the postgres error code raised by the
// (project_id, name) unique constraint.
const uniqueViolation = "23505"

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListApps(ctx context.Context, projectID string) ([]app.App, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, name, description, created_at, updated_at
		FROM picasso_apps
		WHERE $1 = '' OR project_id = $1
		ORDER BY created_at
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []app.App
	for rows.Next() {
		var record app.App
		if err := rows.Scan(&record.ID, &record.ProjectID, &record.Name, &record.Description, &record.CreatedAt, &record.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func (s *Store) GetApp(ctx context.Context, projectID, name string) (app.App, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, name, description, created_at, updated_at
		FROM picasso_apps
		WHERE project_id = $1 AND name = $2
	`, projectID, name)

	var record app.App
	if err := row.Scan(&record.ID, &record.ProjectID, &record.Name, &record.Description, &record.CreatedAt, &record.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return app.App{}, storage.ErrNotFound
		}
		return app.App{}, err
	}
	return record, nil
}

func (s *Store) AppExists(ctx context.Context, projectID, name string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM picasso_apps WHERE project_id = $1 AND name = $2
		)
	`, projectID, name)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) CreateApp(ctx context.Context, record app.App) (app.App, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO picasso_apps (id, project_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, record.ID, record.ProjectID, record.Name, record.Description, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return app.App{}, storage.ErrAppExists
		}
		return app.App{}, err
	}
	return record, nil
}

func (s *Store) DeleteApp(ctx context.Context, projectID, name string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM picasso_apps WHERE project_id = $1 AND name = $2
	`, projectID, name)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}
