package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"toggl-assistant/internal/config"
	"toggl-assistant/internal/ports"
)

// ConfigUseCase edits the config through a form and saves it once the new
// credentials are proven to work.
type ConfigUseCase struct {
	Log       *slog.Logger
	Form      ports.ConfigForm
	Store     ports.ConfigStore
	NewClient ports.ClientFactory
}

// Run opens the form on current. With setup set, or when current has no
// usable credentials, the project list is left empty.
func (uc *ConfigUseCase) Run(ctx context.Context, current config.Config, setup bool) (config.Config, error) {
	if uc.Form == nil || uc.Store == nil || uc.NewClient == nil {
		return config.Config{}, errors.New("usecase not initialized: missing dependencies")
	}
	var names []string
	if !setup && current.Validate() == nil {
		names = uc.projectNames(ctx, current)
	}

	edited, err := uc.Form.Run(ctx, current, names)
	if err != nil {
		return config.Config{}, err
	}

	client, err := uc.NewClient(edited.Toggl.APIKey, edited.Toggl.WorkspaceID)
	if err != nil {
		return config.Config{}, err
	}
	if _, err := client.ListProjects(ctx); err != nil {
		return config.Config{}, fmt.Errorf("can't access toggl service, configuration not saved: %w", err)
	}
	if err := uc.Store.Save(edited); err != nil {
		return config.Config{}, err
	}
	uc.Log.Info("configuration saved",
		slog.String("workspace", edited.Toggl.WorkspaceID),
		slog.Int("projects", len(edited.Projects)),
	)
	return edited, nil
}

// projectNames is best effort: a failure just leaves the list empty.
func (uc *ConfigUseCase) projectNames(ctx context.Context, cfg config.Config) []string {
	client, err := uc.NewClient(cfg.Toggl.APIKey, cfg.Toggl.WorkspaceID)
	if err != nil {
		uc.Log.Debug("skipping project list", slog.String("error", err.Error()))
		return nil
	}
	projects, err := client.ListProjects(ctx)
	if err != nil {
		uc.Log.Debug("skipping project list", slog.String("error", err.Error()))
		return nil
	}
	return ProjectNames(projects)
}
