package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"toggl-assistant/internal/domain"
	"toggl-assistant/internal/ports"
)

// StartUseCase starts a time entry against a project picked by the user.
type StartUseCase struct {
	Log   *slog.Logger
	Toggl ports.TogglClient
	Form  ports.StartForm
	// Allow filters project names; nil offers every active project.
	Allow func(name string) bool
}

// Run lists projects, asks the form for a project and description unless
// preset carries both, and starts the entry. A preset project must be one
// of the offered choices.
func (uc *StartUseCase) Run(ctx context.Context, preset domain.StartInput) (domain.TimeEntry, error) {
	if uc.Toggl == nil {
		return domain.TimeEntry{}, errors.New("usecase not initialized: missing dependencies")
	}
	projects, err := uc.Toggl.ListProjects(ctx)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	choices, err := ProjectChoices(projects, uc.Allow)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if len(choices) == 0 {
		return domain.TimeEntry{}, ErrNoProjects
	}
	uc.Log.Debug("project choices", slog.Int("count", len(choices)))

	input := preset
	if strings.TrimSpace(input.ProjectName) != "" {
		if _, err := ResolveProject(choices, input.ProjectName); err != nil {
			return domain.TimeEntry{}, err
		}
	}
	if strings.TrimSpace(input.ProjectName) == "" || strings.TrimSpace(input.Description) == "" {
		if uc.Form == nil {
			return domain.TimeEntry{}, errors.New("project and description are required")
		}
		// A half-filled preset seeds the form.
		input, err = uc.Form.Run(ctx, choices, preset)
		if err != nil {
			return domain.TimeEntry{}, err
		}
	}

	project, err := ResolveProject(choices, input.ProjectName)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	entry, err := uc.Toggl.StartEntry(ctx, input.Description, &project.ID)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	uc.Log.Info("started time entry",
		slog.Int64("id", entry.ID),
		slog.Int64("project_id", project.ID),
		slog.String("project", project.Name),
		slog.String("description", input.Description),
	)
	return entry, nil
}
