package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	msql "toggl-assistant/internal/adapter/mysql"
	tg "toggl-assistant/internal/adapter/toggl"
	"toggl-assistant/internal/config"
	"toggl-assistant/internal/domain"
	"toggl-assistant/internal/ports"
	"toggl-assistant/internal/usecase"
)

const togglTimeout = 30 * time.Second

// App wires adapters and use cases.
type App struct {
	log     *slog.Logger
	cfg     config.Config
	metrics *Metrics
	toggl   ports.TogglClient
	sink    *lazySink
	sync    *usecase.SyncUseCase
	now     func() time.Time
}

// New builds an App for cfg. The MySQL sink is opened on the first sync, so
// commands that never sync work without MYSQL_DSN.
func New(log *slog.Logger, cfg config.Config, metrics *Metrics) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	client, err := ClientFactory(metrics)(cfg.Toggl.APIKey, cfg.Toggl.WorkspaceID)
	if err != nil {
		return nil, err
	}
	sink := &lazySink{
		metrics: metrics,
		open: func(ctx context.Context) (sinkCloser, error) {
			return msql.Open(ctx, cfg.MySQL.DSN, log)
		},
	}
	return newApp(log, cfg, metrics, client, sink), nil
}

func newApp(log *slog.Logger, cfg config.Config, metrics *Metrics, client ports.TogglClient, sink *lazySink) *App {
	return &App{
		log:     log,
		cfg:     cfg,
		metrics: metrics,
		toggl:   client,
		sink:    sink,
		sync:    &usecase.SyncUseCase{Log: log, Toggl: client, Sink: sink},
		now:     time.Now,
	}
}

// ClientFactory builds Toggl clients whose calls are recorded in metrics.
func ClientFactory(metrics *Metrics) ports.ClientFactory {
	return func(apiKey, workspaceID string) (ports.TogglClient, error) {
		opts := []tg.Option{}
		if metrics != nil {
			opts = append(opts, tg.WithHTTPClient(metrics.HTTPClient(togglTimeout)))
		}
		c, err := tg.NewClient(apiKey, workspaceID, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Start starts an entry. form is consulted when preset is incomplete.
func (a *App) Start(ctx context.Context, form ports.StartForm, preset domain.StartInput) (domain.TimeEntry, error) {
	uc := &usecase.StartUseCase{
		Log:   a.log,
		Toggl: a.toggl,
		Form:  form,
		Allow: a.cfg.AllowsProject,
	}
	return uc.Run(ctx, preset)
}

func (a *App) Stop(ctx context.Context) (domain.TimeEntry, error) {
	uc := &usecase.StopUseCase{Log: a.log, Toggl: a.toggl}
	return uc.Run(ctx)
}

// Current returns the running entry; ok is false when nothing runs.
func (a *App) Current(ctx context.Context) (domain.TimeEntry, bool, error) {
	return a.toggl.CurrentEntry(ctx)
}

// Projects lists workspace projects. Unless all is set, only active projects
// on the configured allow-list are returned.
func (a *App) Projects(ctx context.Context, all bool) ([]domain.Project, error) {
	projects, err := a.toggl.ListProjects(ctx)
	if err != nil || all {
		return projects, err
	}
	out := make([]domain.Project, 0, len(projects))
	for _, p := range projects {
		if p.Active && a.cfg.AllowsProject(p.Name) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (a *App) Members(ctx context.Context) ([]domain.ProjectMembership, error) {
	return a.toggl.ListProjectMemberships(ctx)
}

// RunOnce mirrors the [from, to) window into MySQL.
func (a *App) RunOnce(ctx context.Context, from, to time.Time) error {
	err := a.sync.Run(ctx, from, to)
	a.metrics.recordSync(err)
	return err
}

// Close releases the sink if it was opened.
func (a *App) Close() error {
	return a.sink.Close()
}

type sinkCloser interface {
	ports.Sink
	Close() error
}

// lazySink opens the real sink on first use and retries on later calls if
// opening failed.
type lazySink struct {
	metrics *Metrics
	open    func(ctx context.Context) (sinkCloser, error)

	mu   sync.Mutex
	sink sinkCloser
}

func (s *lazySink) get(ctx context.Context) (sinkCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sink != nil {
		return s.sink, nil
	}
	if s.open == nil {
		return nil, errors.New("sink not configured")
	}
	sink, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	s.sink = sink
	return sink, nil
}

func (s *lazySink) SyncEntries(ctx context.Context, entries []domain.TimeEntry) error {
	sink, err := s.get(ctx)
	if err != nil {
		return err
	}
	if err := sink.SyncEntries(ctx, entries); err != nil {
		return err
	}
	s.metrics.syncedEntries.Add(float64(len(entries)))
	return nil
}

func (s *lazySink) SyncProjects(ctx context.Context, projects []domain.Project) error {
	sink, err := s.get(ctx)
	if err != nil {
		return err
	}
	return sink.SyncProjects(ctx, projects)
}

func (s *lazySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sink == nil {
		return nil
	}
	err := s.sink.Close()
	s.sink = nil
	return err
}
