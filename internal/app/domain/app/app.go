// Package app holds the domain types for project-scoped applications. An
// application exists in two places at once: a record in the local registry
// and a resource on the remote functions platform. API responses merge the
// two into a single view.
package app

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxNameLength bounds derived app names. Longer names are truncated, not
// rejected, so the platform never sees a name it cannot store.
const MaxNameLength = 30

// App is the registry record for an application.
type App struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ProjectID   string    `json:"project_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RemoteApp is the platform's representation of an application.
type RemoteApp struct {
	Name      string            `json:"name"`
	Config    map[string]string `json:"config,omitempty"`
	CreatedAt string            `json:"created_at,omitempty"`
	UpdatedAt string            `json:"updated_at,omitempty"`
}

// Route is an HTTP trigger attached to a platform app. An app with routes
// cannot be deleted.
type Route struct {
	Path   string `json:"path"`
	Image  string `json:"image,omitempty"`
	Type   string `json:"type,omitempty"`
	Memory int    `json:"memory,omitempty"`
}

// View is the merged representation returned by the API: identity and
// description from the registry, runtime configuration from the platform.
type View struct {
	Name        string            `json:"name"`
	ProjectID   string            `json:"project_id"`
	Description string            `json:"description"`
	Config      map[string]string `json:"config,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewView merges a registry record with its platform resource.
func NewView(record App, remote RemoteApp) View {
	return View{
		Name:        record.Name,
		ProjectID:   record.ProjectID,
		Description: record.Description,
		Config:      remote.Config,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

// DeriveName builds the platform-wide app name from the requested name and
// the owning project, truncated to MaxNameLength characters. Truncation
// counts runes, not bytes, so a multi-byte name is never cut mid-character.
func DeriveName(requested, projectID string) string {
	name := fmt.Sprintf("%s-%s", requested, projectID)
	if utf8.RuneCountInString(name) > MaxNameLength {
		runes := []rune(name)
		name = string(runes[:MaxNameLength])
	}
	return name
}

// DefaultDescription is used when a create request carries no description.
func DefaultDescription(projectID string) string {
	return fmt.Sprintf("App for project %s", projectID)
}
