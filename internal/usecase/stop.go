package usecase

import (
	"context"
	"errors"
	"log/slog"

	"toggl-assistant/internal/domain"
	"toggl-assistant/internal/ports"
)

// StopUseCase stops the running time entry.
type StopUseCase struct {
	Log   *slog.Logger
	Toggl ports.TogglClient
}

func (uc *StopUseCase) Run(ctx context.Context) (domain.TimeEntry, error) {
	if uc.Toggl == nil {
		return domain.TimeEntry{}, errors.New("usecase not initialized: missing dependencies")
	}
	entry, err := uc.Toggl.StopRunningEntry(ctx)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	uc.Log.Info("stopped time entry",
		slog.Int64("id", entry.ID),
		slog.Int64("duration_sec", entry.DurationSec),
	)
	return entry, nil
}
