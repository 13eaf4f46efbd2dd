// Package system defines the lifecycle contract shared by long-running
// components and a manager that starts and stops them as a group.
package system

import "context"

// Service is a long-running component with an explicit lifecycle.
type Service interface {
	// Name identifies the service in logs and registration errors.
	Name() string
	// Start begins the service. It must return promptly; long-running work
	// happens on goroutines owned by the service.
	Start(ctx context.Context) error
	// Stop shuts the service down and waits for its work to finish.
	Stop(ctx context.Context) error
}
