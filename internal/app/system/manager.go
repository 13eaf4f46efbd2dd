package system

import (
	"context"
	"fmt"
)

// Manager registers services and drives their lifecycle in registration
// order. Stop runs in reverse order so dependents shut down before their
// dependencies.
type Manager struct {
	services []Service
	names    map[string]struct{}
	started  bool
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{names: make(map[string]struct{})}
}

// Register adds a service. Names must be unique and registration must happen
// before Start.
func (m *Manager) Register(service Service) error {
	if service == nil {
		return fmt.Errorf("cannot register nil service")
	}
	if m.started {
		return fmt.Errorf("cannot register %s: manager already started", service.Name())
	}
	name := service.Name()
	if name == "" {
		return fmt.Errorf("cannot register service with empty name")
	}
	if _, dup := m.names[name]; dup {
		return fmt.Errorf("service %s already registered", name)
	}
	m.names[name] = struct{}{}
	m.services = append(m.services, service)
	return nil
}

// Start starts every registered service. If one fails, the services started
// so far are stopped again and the failure is returned.
func (m *Manager) Start(ctx context.Context) error {
	if m.started {
		return fmt.Errorf("manager already started")
	}
	for i, service := range m.services {
		if err := service.Start(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = m.services[j].Stop(ctx)
			}
			return fmt.Errorf("start %s: %w", service.Name(), err)
		}
	}
	m.started = true
	return nil
}

// Stop stops every service in reverse registration order. All services are
// attempted; the first error is returned.
func (m *Manager) Stop(ctx context.Context) error {
	if !m.started {
		return nil
	}
	var firstErr error
	for i := len(m.services) - 1; i >= 0; i-- {
		if err := m.services[i].Stop(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop %s: %w", m.services[i].Name(), err)
		}
	}
	m.started = false
	return firstErr
}
