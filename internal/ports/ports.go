package ports

import (
	"context"
	"errors"
	"time"

	"toggl-assistant/internal/config"
	"toggl-assistant/internal/domain"
)

// ErrCancelled is returned by forms when the user backs out.
var ErrCancelled = errors.New("cancelled by user")

// TogglClient defines the remote operations against Toggl.
type TogglClient interface {
	StartEntry(ctx context.Context, description string, projectID *int64) (domain.TimeEntry, error)
	CurrentEntry(ctx context.Context) (domain.TimeEntry, bool, error)
	StopEntry(ctx context.Context, id int64) (domain.TimeEntry, error)
	StopRunningEntry(ctx context.Context) (domain.TimeEntry, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
	ListProjectMemberships(ctx context.Context) ([]domain.ProjectMembership, error)
	ListTimeEntries(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error)
}

// ClientFactory builds a TogglClient from credentials.
type ClientFactory func(apiKey, workspaceID string) (TogglClient, error)

// Sink receives entries and persists them to a target system.
type Sink interface {
	SyncEntries(ctx context.Context, entries []domain.TimeEntry) error
	SyncProjects(ctx context.Context, projects []domain.Project) error
}

// StartForm collects a project and a description from the user. Fields set
// in preset are shown as the initial values.
type StartForm interface {
	Run(ctx context.Context, choices []domain.ProjectChoice, preset domain.StartInput) (domain.StartInput, error)
}

// ConfigForm lets the user edit credentials and the project allow-list.
type ConfigForm interface {
	Run(ctx context.Context, current config.Config, projectNames []string) (config.Config, error)
}

// ConfigStore persists the config document.
type ConfigStore interface {
	Save(cfg config.Config) error
}
