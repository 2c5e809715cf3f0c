package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"toggl-assistant/internal/ports"
)

// ErrSyncRunning is returned when a sync is requested while one is in flight.
var ErrSyncRunning = errors.New("sync already running")

// SyncUseCase mirrors Toggl projects and time entries into a Sink.
type SyncUseCase struct {
	Log   *slog.Logger
	Toggl ports.TogglClient
	Sink  ports.Sink

	mu sync.Mutex
}

func (uc *SyncUseCase) Run(ctx context.Context, from, to time.Time) error {
	if uc.Toggl == nil || uc.Sink == nil {
		return errors.New("usecase not initialized: missing dependencies")
	}
	if !uc.mu.TryLock() {
		return ErrSyncRunning
	}
	defer uc.mu.Unlock()

	projects, err := uc.Toggl.ListProjects(ctx)
	if err != nil {
		return err
	}
	if err := uc.Sink.SyncProjects(ctx, projects); err != nil {
		return err
	}
	uc.Log.Info("synced projects", slog.Int("count", len(projects)))

	uc.Log.Info("fetching time entries", slog.Time("from", from), slog.Time("to", to))
	entries, err := uc.Toggl.ListTimeEntries(ctx, from, to)
	if err != nil {
		return err
	}
	uc.Log.Info("fetched time entries", slog.Int("count", len(entries)))

	if len(entries) == 0 {
		uc.Log.Info("no entries to sync")
		return nil
	}

	if err := uc.Sink.SyncEntries(ctx, entries); err != nil {
		return err
	}
	uc.Log.Info("sync completed", slog.Int("count", len(entries)))
	return nil
}
