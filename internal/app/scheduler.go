package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs a sync at local midnight.
const DefaultSchedule = "0 0 * * *"

// Schedule runs a sync on every tick of the standard cron expression expr,
// evaluated in the SYNC_TZ location, until ctx is cancelled. Each run covers
// the 24 hours ending at its tick.
func (a *App) Schedule(ctx context.Context, expr string) error {
	loc, err := time.LoadLocation(a.cfg.Sync.Timezone)
	if err != nil {
		return fmt.Errorf("invalid SYNC_TZ %q: %w", a.cfg.Sync.Timezone, err)
	}
	logger := cronLogger{log: a.log}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(expr, func() { a.runScheduled(ctx, loc) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}

	c.Start()
	for _, e := range c.Entries() {
		a.log.Info("sync scheduled", slog.String("schedule", expr), slog.String("tz", loc.String()), slog.Time("next", e.Next))
	}
	<-ctx.Done()
	a.log.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}

func (a *App) runScheduled(ctx context.Context, loc *time.Location) {
	from, to := syncWindow(a.now().In(loc))
	if err := a.RunOnce(ctx, from, to); err != nil {
		a.log.Error("scheduled sync failed", slog.String("error", err.Error()))
		return
	}
	a.log.Info("scheduled sync completed", slog.Time("from", from), slog.Time("to", to))
}

// syncWindow returns [at-24h, at) in UTC with at truncated to the minute, so
// a tick that fires a little late still covers whole days.
func syncWindow(at time.Time) (time.Time, time.Time) {
	end := at.Truncate(time.Minute).UTC()
	return end.Add(-24 * time.Hour), end
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append([]any{slog.String("error", err.Error())}, keysAndValues...)...)
}
