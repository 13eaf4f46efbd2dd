// Package runtime wires configuration, storage, the platform client and the
// HTTP server into a runnable process.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"github.com/cmdhema/picasso/internal/api/httpserver"
	"github.com/cmdhema/picasso/internal/app"
	"github.com/cmdhema/picasso/internal/app/httpapi"
	"github.com/cmdhema/picasso/internal/app/metrics"
	"github.com/cmdhema/picasso/internal/app/services/reconciler"
	"github.com/cmdhema/picasso/internal/app/storage"
	"github.com/cmdhema/picasso/internal/app/storage/memory"
	"github.com/cmdhema/picasso/internal/app/storage/postgres"
	"github.com/cmdhema/picasso/internal/config"
	"github.com/cmdhema/picasso/internal/fnclient"
	"github.com/cmdhema/picasso/internal/middleware"
	"github.com/cmdhema/picasso/internal/platform/migrations"
	"github.com/cmdhema/picasso/pkg/logger"
)

// Application wires core dependencies and manages the process lifecycle.
type Application struct {
	cfg         *config.Config
	log         *logger.Logger
	app         *app.Application
	httpServer  *httpserver.Server
	db          *sql.DB
	limiterStop chan struct{}
}

// NewApplication constructs the application from loaded configuration.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return newApplication(cfg)
}

func newApplication(cfg *config.Config) (*Application, error) {
	log := logger.New(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePrefix: cfg.Logging.FilePrefix,
	})

	store, db, err := buildStore(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("configure store: %w", err)
	}
	if store == nil {
		log.Warn("no database configured; registry records will not survive restarts")
		store = memory.New()
	}

	platform := fnclient.New(fnclient.Config{
		BaseURL: cfg.Functions.BaseURL,
		Timeout: time.Duration(cfg.Functions.TimeoutSec) * time.Second,
	})

	application := app.New(app.Stores{Apps: store}, platform, log)

	if cfg.Reconciler.Enabled {
		sweep := reconciler.New(store, platform, reconciler.Config{
			Schedule: cfg.Reconciler.Schedule,
			Prune:    cfg.Reconciler.Prune,
		}, log.WithField("component", "reconciler"))
		if err := application.Attach(sweep); err != nil {
			return nil, fmt.Errorf("attach reconciler: %w", err)
		}
	}

	var handler http.Handler = httpapi.New(application.Apps, log.WithField("component", "httpapi"))
	var limiterStop chan struct{}
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
		limiterStop = make(chan struct{})
		limiter.StartCleanup(10*time.Minute, limiterStop)
		handler = limiter.Handler(handler)
	}
	handler = metrics.InstrumentHandler(handler)

	return &Application{
		cfg:         cfg,
		log:         log,
		app:         application,
		httpServer:  httpserver.New(cfg.Server, log, handler),
		db:          db,
		limiterStop: limiterStop,
	}, nil
}

// Run starts the services and the HTTP server, blocking until the context is
// cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("HTTP server listening on %s", a.httpServer.Addr())
		if err := a.httpServer.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown drains the HTTP server, stops background services and closes the
// database.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := a.app.Stop(shutdownCtx); err != nil {
		a.log.WithError(err).Warn("error stopping services")
	}
	if a.limiterStop != nil {
		close(a.limiterStop)
		a.limiterStop = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}
	return nil
}

// buildStore opens the configured registry store. Without a driver the
// in-memory store is used and nothing persists across restarts.
func buildStore(cfg *config.Config, log *logger.Logger) (storage.AppStore, *sql.DB, error) {
	if cfg.Database.Driver == "" {
		return nil, nil, nil
	}
	if cfg.Database.DSN == "" {
		return nil, nil, fmt.Errorf("database dsn not configured")
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrations.Apply(migrateCtx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}
	log.Info("database migrations applied")

	return postgres.New(db), db, nil
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeSec > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeSec) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
