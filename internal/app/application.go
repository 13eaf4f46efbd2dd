// Package app assembles the domain services and manages their lifecycle.
package app

import (
	"context"

	"github.com/cmdhema/picasso/internal/app/services/apps"
	"github.com/cmdhema/picasso/internal/app/storage"
	"github.com/cmdhema/picasso/internal/app/storage/memory"
	"github.com/cmdhema/picasso/internal/app/system"
	"github.com/cmdhema/picasso/pkg/logger"
)

// Stores encapsulates persistence dependencies.
type Stores struct {
	// Apps is the registry store. Nil falls back to the in-memory store.
	Apps storage.AppStore
}

// Application ties the domain services together and manages the lifecycle of
// attached background services.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Apps *apps.Service
}

// New builds a fully initialised application.
func New(stores Stores, platform apps.Platform, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}
	store := stores.Apps
	if store == nil {
		log.Warn("no registry store configured; using in-memory store")
		store = memory.New()
	}

	return &Application{
		manager: system.NewManager(),
		log:     log,
		Apps:    apps.New(store, platform, log.WithField("component", "apps")),
	}
}

// Attach registers an additional lifecycle-managed service. Call before
// Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all attached services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all attached services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
