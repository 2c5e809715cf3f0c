package app

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toggl-assistant/internal/domain"
)

func TestSyncWindow(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	// Midnight in Paris during summer time is 22:00 UTC the previous day.
	at := time.Date(2025, 8, 2, 0, 0, 3, 0, loc)
	from, to := syncWindow(at)
	assert.Equal(t, time.Date(2025, 8, 1, 22, 0, 0, 0, time.UTC), to)
	assert.Equal(t, time.Date(2025, 7, 31, 22, 0, 0, 0, time.UTC), from)
}

func TestDefaultSchedule_FiresAtLocalMidnight(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	sched, err := cron.ParseStandard(DefaultSchedule)
	require.NoError(t, err)
	next := sched.Next(time.Date(2025, 8, 1, 15, 4, 0, 0, loc))
	assert.Equal(t, time.Date(2025, 8, 2, 0, 0, 0, 0, loc), next)
}

func TestSchedule_RejectsBadInput(t *testing.T) {
	a, _ := newTestApp(&fakeToggl{}, &fakeSink{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.Schedule(ctx, "every day")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")

	a.cfg.Sync.Timezone = "Mars/Olympus"
	err = a.Schedule(ctx, DefaultSchedule)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SYNC_TZ")
}

func TestSchedule_StopsWithContext(t *testing.T) {
	a, _ := newTestApp(&fakeToggl{}, &fakeSink{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Schedule(ctx, DefaultSchedule) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestRunScheduled_SyncsWindowEndingAtTick(t *testing.T) {
	client := &fakeToggl{
		projects: []domain.Project{{ID: 1, Name: "Dev", Active: true}},
		entries:  []domain.TimeEntry{{ID: 1}},
	}
	sink := &fakeSink{}
	a, _ := newTestApp(client, sink, nil)

	a.runScheduled(context.Background(), time.UTC)
	assert.Len(t, sink.entries, 1)
	assert.Len(t, sink.projects, 1)
}
