package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"toggl-assistant/internal/config"
	"toggl-assistant/internal/domain"
	"toggl-assistant/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type startCall struct {
	description string
	projectID   *int64
}

type fakeToggl struct {
	projects    []domain.Project
	projectsErr error
	entries     []domain.TimeEntry
	running     domain.TimeEntry
	stopErr     error

	starts      []startCall
	stops       int
	entryCalls  int
	projectCall int
}

func (f *fakeToggl) StartEntry(ctx context.Context, description string, projectID *int64) (domain.TimeEntry, error) {
	f.starts = append(f.starts, startCall{description: description, projectID: projectID})
	d := description
	return domain.TimeEntry{ID: 1000, Description: &d, ProjectID: projectID, DurationSec: -1, Start: time.Now().UTC()}, nil
}

func (f *fakeToggl) CurrentEntry(ctx context.Context) (domain.TimeEntry, bool, error) {
	return f.running, f.running.ID != 0, nil
}

func (f *fakeToggl) StopEntry(ctx context.Context, id int64) (domain.TimeEntry, error) {
	f.stops++
	return domain.TimeEntry{ID: id, DurationSec: 60}, nil
}

func (f *fakeToggl) StopRunningEntry(ctx context.Context) (domain.TimeEntry, error) {
	if f.stopErr != nil {
		return domain.TimeEntry{}, f.stopErr
	}
	return f.StopEntry(ctx, f.running.ID)
}

func (f *fakeToggl) ListProjects(ctx context.Context) ([]domain.Project, error) {
	f.projectCall++
	return f.projects, f.projectsErr
}

func (f *fakeToggl) ListProjectMemberships(ctx context.Context) ([]domain.ProjectMembership, error) {
	return nil, nil
}

func (f *fakeToggl) ListTimeEntries(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error) {
	f.entryCalls++
	return f.entries, nil
}

type fakeStartForm struct {
	input   domain.StartInput
	err     error
	choices []domain.ProjectChoice
	preset  domain.StartInput
	calls   int
}

func (f *fakeStartForm) Run(ctx context.Context, choices []domain.ProjectChoice, preset domain.StartInput) (domain.StartInput, error) {
	f.calls++
	f.choices = choices
	f.preset = preset
	return f.input, f.err
}

type fakeConfigForm struct {
	edit  func(config.Config) config.Config
	err   error
	names []string
}

func (f *fakeConfigForm) Run(ctx context.Context, current config.Config, names []string) (config.Config, error) {
	f.names = names
	if f.err != nil {
		return config.Config{}, f.err
	}
	return f.edit(current), nil
}

type fakeStore struct {
	saved []config.Config
}

func (s *fakeStore) Save(cfg config.Config) error {
	s.saved = append(s.saved, cfg)
	return nil
}

type fakeSink struct {
	entries  []domain.TimeEntry
	projects []domain.Project
	entered  chan struct{}
	block    chan struct{}
}

func (s *fakeSink) SyncEntries(ctx context.Context, entries []domain.TimeEntry) error {
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *fakeSink) SyncProjects(ctx context.Context, projects []domain.Project) error {
	if s.block != nil {
		close(s.entered)
		<-s.block
		s.block = nil
	}
	s.projects = append(s.projects, projects...)
	return nil
}

var (
	_ ports.TogglClient = (*fakeToggl)(nil)
	_ ports.Sink        = (*fakeSink)(nil)
)
