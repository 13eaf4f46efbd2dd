// Package reconciler periodically compares the registry with the functions
// platform and cleans up remote apps that lost their registry record.
package reconciler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/cmdhema/picasso/internal/app/metrics"
	"github.com/cmdhema/picasso/internal/app/services/apps"
	"github.com/cmdhema/picasso/internal/app/storage"
	"github.com/cmdhema/picasso/pkg/logger"
)

// Config controls the sweep schedule and whether orphans are removed.
type Config struct {
	// Schedule is a cron expression, for example "*/5 * * * *".
	Schedule string
	// Prune removes orphaned platform apps instead of only reporting them.
	Prune bool
}

// Service sweeps the platform for apps without a registry record. Deletion
// removes the registry record first, so a crash or platform outage between
// the two deletes leaves an orphaned remote app behind; the sweep is what
// eventually removes it.
type Service struct {
	store    storage.AppStore
	platform apps.Platform
	log      *logger.Logger
	schedule string
	prune    bool

	cron *cron.Cron
}

// New constructs a reconciler. An empty schedule falls back to every five
// minutes.
func New(store storage.AppStore, platform apps.Platform, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("reconciler")
	}
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = "*/5 * * * *"
	}
	return &Service{
		store:    store,
		platform: platform,
		log:      log,
		schedule: schedule,
		prune:    cfg.Prune,
	}
}

// Name implements system.Service.
func (s *Service) Name() string { return "reconciler" }

// Start validates the schedule and begins periodic sweeps.
func (s *Service) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			s.log.WithError(err).Warn("reconciliation sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", s.schedule, err)
	}
	s.cron = c
	c.Start()
	s.log.Infof("reconciler started, schedule %q, prune=%t", s.schedule, s.prune)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Service) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	s.cron = nil
	s.log.Info("reconciler stopped")
	return nil
}

// Sweep runs one reconciliation pass and returns the number of orphaned
// platform apps it found. Registry records whose platform app is missing are
// only reported; recreating remote state is the owner's call, not ours.
func (s *Service) Sweep(ctx context.Context) (orphans int, err error) {
	defer func() { metrics.RecordReconcilerSweep(orphans, err) }()

	records, err := s.store.ListApps(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("list registry apps: %w", err)
	}
	known := make(map[string]struct{}, len(records))
	for _, record := range records {
		known[record.Name] = struct{}{}
	}

	remotes, err := s.platform.ListApps(ctx)
	if err != nil {
		return 0, fmt.Errorf("list platform apps: %w", err)
	}
	present := make(map[string]struct{}, len(remotes))

	for _, remote := range remotes {
		present[remote.Name] = struct{}{}
		if _, ok := known[remote.Name]; ok {
			continue
		}
		orphans++
		if !s.prune {
			s.log.Warnf("platform app %s has no registry record", remote.Name)
			continue
		}
		if err := s.platform.DeleteApp(ctx, remote.Name); err != nil {
			s.log.WithError(err).Warnf("failed to prune orphaned platform app %s", remote.Name)
			continue
		}
		s.log.Infof("pruned orphaned platform app %s", remote.Name)
	}

	for _, record := range records {
		if _, ok := present[record.Name]; !ok {
			s.log.Warnf("[%s] registry app %s is missing on the platform", record.ProjectID, record.Name)
		}
	}

	s.log.Debugf("sweep finished: %d registry, %d platform, %d orphans", len(records), len(remotes), orphans)
	return orphans, nil
}
