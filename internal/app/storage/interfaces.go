package storage

import (
	"context"
	"errors"

	"github.com/cmdhema/picasso/internal/app/domain/app"
)

// ErrNotFound is returned when no registry record matches the lookup.
var ErrNotFound = errors.New("not found")

// ErrAppExists is returned by CreateApp when a record with the same
// (project_id, name) already exists. Stores report it from a single atomic
// conditional write, so concurrent creates cannot both succeed.
var ErrAppExists = errors.New("already exists")

// AppStore persists project-scoped app records.
type AppStore interface {
	// ListApps returns the records for a project in stored order. An empty
	// projectID lists every record.
	ListApps(ctx context.Context, projectID string) ([]app.App, error)
	// GetApp returns the record for (projectID, name) or ErrNotFound.
	GetApp(ctx context.Context, projectID, name string) (app.App, error)
	// AppExists reports whether a record for (projectID, name) exists.
	AppExists(ctx context.Context, projectID, name string) (bool, error)
	// CreateApp inserts the record, returning ErrAppExists on a duplicate
	// (project_id, name).
	CreateApp(ctx context.Context, record app.App) (app.App, error)
	// DeleteApp removes the record for (projectID, name) or returns
	// ErrNotFound.
	DeleteApp(ctx context.Context, projectID, name string) error
}
