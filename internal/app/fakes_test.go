package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	tg "toggl-assistant/internal/adapter/toggl"
	"toggl-assistant/internal/config"
	"toggl-assistant/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeToggl struct {
	mu       sync.Mutex
	projects []domain.Project
	entries  []domain.TimeEntry
	running  *domain.TimeEntry
	err      error
	stops    int
}

func (f *fakeToggl) StartEntry(ctx context.Context, description string, projectID *int64) (domain.TimeEntry, error) {
	return domain.TimeEntry{ID: 1, Description: &description, ProjectID: projectID, DurationSec: -1}, f.err
}

func (f *fakeToggl) CurrentEntry(ctx context.Context) (domain.TimeEntry, bool, error) {
	if f.err != nil {
		return domain.TimeEntry{}, false, f.err
	}
	if f.running == nil {
		return domain.TimeEntry{}, false, nil
	}
	return *f.running, true, nil
}

func (f *fakeToggl) StopEntry(ctx context.Context, id int64) (domain.TimeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	stop := f.running.Start.Add(90 * time.Second)
	return domain.TimeEntry{ID: id, Start: f.running.Start, Stop: &stop, DurationSec: 90}, nil
}

func (f *fakeToggl) StopRunningEntry(ctx context.Context) (domain.TimeEntry, error) {
	if f.err != nil {
		return domain.TimeEntry{}, f.err
	}
	if f.running == nil {
		return domain.TimeEntry{}, tg.ErrNoRunningEntry
	}
	return f.StopEntry(ctx, f.running.ID)
}

func (f *fakeToggl) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return f.projects, f.err
}

func (f *fakeToggl) ListProjectMemberships(ctx context.Context) ([]domain.ProjectMembership, error) {
	return []domain.ProjectMembership{{ID: 1, ProjectID: 10, UserID: 7, WorkspaceID: 456}}, f.err
}

func (f *fakeToggl) ListTimeEntries(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error) {
	return f.entries, f.err
}

type fakeSink struct {
	mu       sync.Mutex
	entries  []domain.TimeEntry
	projects []domain.Project
	closed   bool
	err      error
}

func (s *fakeSink) SyncEntries(ctx context.Context, entries []domain.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return s.err
}

func (s *fakeSink) SyncProjects(ctx context.Context, projects []domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append(s.projects, projects...)
	return s.err
}

func (s *fakeSink) Close() error {
	s.closed = true
	return nil
}

func testConfig() config.Config {
	var cfg config.Config
	cfg.Toggl.WorkspaceID = "456"
	cfg.Toggl.APIKey = "key"
	cfg.Projects = []string{"dev"}
	cfg.Sync.Timezone = "UTC"
	return cfg
}

// newTestApp wires fakes; opens counts how often the sink was opened.
func newTestApp(client *fakeToggl, sink *fakeSink, openErr error) (*App, *int) {
	opens := 0
	lazy := &lazySink{
		open: func(ctx context.Context) (sinkCloser, error) {
			opens++
			if openErr != nil {
				return nil, openErr
			}
			return sink, nil
		},
	}
	metrics := NewMetrics()
	lazy.metrics = metrics
	a := newApp(discardLogger(), testConfig(), metrics, client, lazy)
	a.now = func() time.Time { return time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC) }
	return a, &opens
}

var errBoom = errors.New("boom")
