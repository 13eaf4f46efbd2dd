// Package apps implements the lifecycle of project-scoped applications,
// reconciling the local registry with the remote functions platform.
package apps

import (
	"context"
	"errors"
	"fmt"

	appdom "github.com/cmdhema/picasso/internal/app/domain/app"
	"github.com/cmdhema/picasso/internal/app/metrics"
	"github.com/cmdhema/picasso/internal/app/storage"
	"github.com/cmdhema/picasso/pkg/logger"
)

// ErrAppExists signals a duplicate (project_id, name) on create.
var ErrAppExists = storage.ErrAppExists

// ErrAppNotFound signals that no registry record matches the request.
var ErrAppNotFound = storage.ErrNotFound

// ErrAppHasRoutes blocks deletion of an app with attached routes.
var ErrAppHasRoutes = errors.New("with routes")

// Platform is the remote functions platform surface the service consumes.
type Platform interface {
	ShowApp(ctx context.Context, name string) (appdom.RemoteApp, error)
	ListApps(ctx context.Context) ([]appdom.RemoteApp, error)
	CreateApp(ctx context.Context, name string) (appdom.RemoteApp, error)
	UpdateApp(ctx context.Context, name string, params map[string]any) (appdom.RemoteApp, error)
	DeleteApp(ctx context.Context, name string) error
	ListRoutes(ctx context.Context, name string) ([]appdom.Route, error)
}

// Service manages project-scoped apps across the registry and the platform.
type Service struct {
	store    storage.AppStore
	platform Platform
	log      *logger.Logger
}

// New constructs an app lifecycle service.
func New(store storage.AppStore, platform Platform, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("apps")
	}
	return &Service{store: store, platform: platform, log: log}
}

// List returns the merged views of every app in the project, in registry
// order. A remote lookup failure aborts the listing and surfaces the
// platform's error.
func (s *Service) List(ctx context.Context, projectID string) (views []appdom.View, err error) {
	defer func() { metrics.RecordAppOperation("list", err) }()

	s.log.Infof("[%s] listing apps", projectID)
	records, err := s.store.ListApps(ctx, projectID)
	if err != nil {
		return nil, err
	}

	views = make([]appdom.View, 0, len(records))
	for _, record := range records {
		remote, err := s.platform.ShowApp(ctx, record.Name)
		if err != nil {
			s.log.WithError(err).Warnf("[%s] remote lookup failed for app %s", projectID, record.Name)
			return nil, err
		}
		views = append(views, appdom.NewView(record, remote))
	}
	return views, nil
}

// Create provisions a new app: the platform resource first, then the
// registry record, so a record is only written once the remote resource is
// confirmed to exist. If the registry write fails afterwards the platform
// resource is deleted again to close the partial-state window, except on a
// duplicate-key conflict where the resource is already referenced by the
// concurrent winner's record.
func (s *Service) Create(ctx context.Context, projectID, requestedName, description string) (view appdom.View, err error) {
	defer func() { metrics.RecordAppOperation("create", err) }()

	name := appdom.DeriveName(requestedName, projectID)
	if description == "" {
		description = appdom.DefaultDescription(projectID)
	}
	s.log.Infof("[%s] creating app %s", projectID, name)

	exists, err := s.store.AppExists(ctx, projectID, name)
	if err != nil {
		return appdom.View{}, err
	}
	if exists {
		s.log.Infof("[%s] app %s already present, aborting", projectID, name)
		return appdom.View{}, fmt.Errorf("App %s %w", name, ErrAppExists)
	}

	remote, err := s.platform.CreateApp(ctx, name)
	if err != nil {
		return appdom.View{}, err
	}
	s.log.Debugf("[%s] platform app %s created", projectID, name)

	record, err := s.store.CreateApp(ctx, appdom.App{
		Name:        name,
		ProjectID:   projectID,
		Description: description,
	})
	if err != nil {
		// A constraint conflict here means a concurrent create won the race
		// after our pre-check. The platform app now belongs to the winner's
		// registry record, so it must stay.
		if errors.Is(err, storage.ErrAppExists) {
			s.log.Infof("[%s] app %s was created concurrently, keeping platform app", projectID, name)
			return appdom.View{}, fmt.Errorf("App %s %w", name, ErrAppExists)
		}
		// Compensate: the platform resource exists but the registry write
		// failed. Remove the resource so neither store keeps a half-created
		// app.
		if delErr := s.platform.DeleteApp(ctx, name); delErr != nil {
			s.log.WithError(delErr).Warnf("[%s] failed to remove platform app %s after registry failure; resource is orphaned", projectID, name)
		}
		return appdom.View{}, err
	}
	s.log.Debugf("[%s] app %s recorded", projectID, name)

	return appdom.NewView(record, remote), nil
}

// Get returns the merged view of one app. The registry record must exist;
// remote failures carry the platform's status and reason.
func (s *Service) Get(ctx context.Context, projectID, name string) (view appdom.View, err error) {
	defer func() { metrics.RecordAppOperation("get", err) }()

	s.log.Infof("[%s] searching for app %s", projectID, name)
	record, err := s.store.GetApp(ctx, projectID, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Infof("[%s] app %s not found, aborting", projectID, name)
			return appdom.View{}, fmt.Errorf("App %s %w", name, ErrAppNotFound)
		}
		return appdom.View{}, err
	}

	remote, err := s.platform.ShowApp(ctx, record.Name)
	if err != nil {
		s.log.WithError(err).Warnf("[%s] platform app %s lookup failed", projectID, name)
		return appdom.View{}, err
	}
	return appdom.NewView(record, remote), nil
}

// Update forwards the caller's parameters to the platform and re-reads the
// registry record. The record itself is never mutated; only the platform
// resource changes.
func (s *Service) Update(ctx context.Context, projectID, name string, params map[string]any) (view appdom.View, err error) {
	defer func() { metrics.RecordAppOperation("update", err) }()

	s.log.Infof("[%s] updating app %s", projectID, name)
	exists, err := s.store.AppExists(ctx, projectID, name)
	if err != nil {
		return appdom.View{}, err
	}
	if !exists {
		s.log.Infof("[%s] app %s not found, aborting", projectID, name)
		return appdom.View{}, fmt.Errorf("App %s %w", name, ErrAppNotFound)
	}

	remote, err := s.platform.UpdateApp(ctx, name, params)
	if err != nil {
		s.log.WithError(err).Warnf("[%s] unable to update platform app %s", projectID, name)
		return appdom.View{}, err
	}

	record, err := s.store.GetApp(ctx, projectID, name)
	if err != nil {
		return appdom.View{}, err
	}
	return appdom.NewView(record, remote), nil
}

// Delete removes the app from both stores. Apps with attached routes cannot
// be deleted. The registry record goes first; a platform deletion failure
// afterwards is logged as an orphan and left to the reconciler rather than
// surfaced, since the caller's view of the app is already gone.
func (s *Service) Delete(ctx context.Context, projectID, name string) (err error) {
	defer func() { metrics.RecordAppOperation("delete", err) }()

	s.log.Infof("[%s] deleting app %s", projectID, name)
	exists, err := s.store.AppExists(ctx, projectID, name)
	if err != nil {
		return err
	}
	if !exists {
		s.log.Infof("[%s] app %s not found, aborting", projectID, name)
		return fmt.Errorf("App %s %w", name, ErrAppNotFound)
	}

	if _, err := s.platform.ShowApp(ctx, name); err != nil {
		s.log.WithError(err).Warnf("[%s] unable to fetch platform app %s, aborting", projectID, name)
		return err
	}
	routes, err := s.platform.ListRoutes(ctx, name)
	if err != nil {
		s.log.WithError(err).Warnf("[%s] unable to list routes of app %s, aborting", projectID, name)
		return err
	}
	if len(routes) > 0 {
		s.log.Infof("[%s] app %s has %d routes, refusing to delete", projectID, name, len(routes))
		return fmt.Errorf("Unable to delete app %s %w", name, ErrAppHasRoutes)
	}

	if err := s.store.DeleteApp(ctx, projectID, name); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("App %s %w", name, ErrAppNotFound)
		}
		return err
	}
	s.log.Debugf("[%s] registry record for %s gone", projectID, name)

	if err := s.platform.DeleteApp(ctx, name); err != nil {
		s.log.WithError(err).Warnf("[%s] platform app %s not deleted; resource is orphaned", projectID, name)
		return nil
	}
	s.log.Debugf("[%s] platform app %s deleted", projectID, name)
	return nil
}
