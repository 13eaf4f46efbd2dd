package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmdhema/picasso/internal/app/domain/app"
	"github.com/cmdhema/picasso/internal/app/storage"
	"github.com/google/uuid"
)

// Store is an in-memory implementation of the app store. It is safe for
// concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu   sync.RWMutex
	apps map[string]app.App // keyed by projectID + "/" + name
	// insertion order, so listings are deterministic like the SQL store's
	// ORDER BY created_at
	order []string
}

var _ storage.AppStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{apps: make(map[string]app.App)}
}

func key(projectID, name string) string {
	return projectID + "/" + name
}

func (s *Store) ListApps(_ context.Context, projectID string) ([]app.App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]app.App, 0, len(s.order))
	for _, k := range s.order {
		record, ok := s.apps[k]
		if !ok {
			continue
		}
		if projectID == "" || record.ProjectID == projectID {
			result = append(result, record)
		}
	}
	return result, nil
}

func (s *Store) GetApp(_ context.Context, projectID, name string) (app.App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.apps[key(projectID, name)]
	if !ok {
		return app.App{}, storage.ErrNotFound
	}
	return record, nil
}

func (s *Store) AppExists(_ context.Context, projectID, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.apps[key(projectID, name)]
	return ok, nil
}

func (s *Store) CreateApp(_ context.Context, record app.App) (app.App, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(record.ProjectID, record.Name)
	if _, exists := s.apps[k]; exists {
		return app.App{}, storage.ErrAppExists
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	s.apps[k] = record
	s.order = append(s.order, k)
	return record, nil
}

func (s *Store) DeleteApp(_ context.Context, projectID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(projectID, name)
	if _, ok := s.apps[k]; !ok {
		return storage.ErrNotFound
	}
	delete(s.apps, k)
	for i, existing := range s.order {
		if existing == k {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
