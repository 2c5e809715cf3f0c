package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toggl-assistant/internal/adapter/toggl"
	"toggl-assistant/internal/config"
	"toggl-assistant/internal/ports"
)

func currentConfig() config.Config {
	var cfg config.Config
	cfg.Toggl.WorkspaceID = "123456"
	cfg.Toggl.APIKey = "old-key"
	cfg.Projects = []string{"internal"}
	cfg.MySQL.DSN = "dsn"
	return cfg
}

func TestConfigUseCase_SavesVerifiedConfig(t *testing.T) {
	fake := &fakeToggl{projects: sampleProjects()}
	var keys []string
	store := &fakeStore{}
	form := &fakeConfigForm{edit: func(c config.Config) config.Config {
		c.Toggl.APIKey = "new-key"
		c.Projects = []string{"client work"}
		return c
	}}
	uc := &ConfigUseCase{
		Log:   discardLogger(),
		Form:  form,
		Store: store,
		NewClient: func(apiKey, workspaceID string) (ports.TogglClient, error) {
			keys = append(keys, apiKey)
			return fake, nil
		},
	}

	got, err := uc.Run(context.Background(), currentConfig(), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"Client Work", "Internal", "Archived", "Side Project"}, form.names)
	assert.Equal(t, []string{"old-key", "new-key"}, keys)
	require.Len(t, store.saved, 1)
	assert.Equal(t, got, store.saved[0])
	assert.Equal(t, "dsn", got.MySQL.DSN)
}

func TestConfigUseCase_SetupSkipsProjectFetch(t *testing.T) {
	fake := &fakeToggl{}
	form := &fakeConfigForm{edit: func(c config.Config) config.Config {
		c.Toggl.WorkspaceID = "1"
		c.Toggl.APIKey = "k"
		return c
	}}
	uc := &ConfigUseCase{
		Log:   discardLogger(),
		Form:  form,
		Store: &fakeStore{},
		NewClient: func(string, string) (ports.TogglClient, error) {
			return fake, nil
		},
	}

	_, err := uc.Run(context.Background(), config.Config{}, true)
	require.NoError(t, err)
	assert.Nil(t, form.names)
	assert.Equal(t, 1, fake.projectCall)
}

func TestConfigUseCase_RejectsUnreachableCredentials(t *testing.T) {
	store := &fakeStore{}
	denied := &toggl.TransportError{Op: "list projects", StatusCode: 403, Body: "Incorrect username and/or password"}
	fake := &fakeToggl{projectsErr: denied}
	uc := &ConfigUseCase{
		Log:   discardLogger(),
		Form:  &fakeConfigForm{edit: func(c config.Config) config.Config { return c }},
		Store: store,
		NewClient: func(string, string) (ports.TogglClient, error) {
			return fake, nil
		},
	}

	_, err := uc.Run(context.Background(), currentConfig(), false)
	var te *toggl.TransportError
	require.True(t, errors.As(err, &te))
	assert.Contains(t, err.Error(), "configuration not saved")
	assert.Empty(t, store.saved)
}

func TestConfigUseCase_Cancelled(t *testing.T) {
	store := &fakeStore{}
	uc := &ConfigUseCase{
		Log:   discardLogger(),
		Form:  &fakeConfigForm{err: ports.ErrCancelled},
		Store: store,
		NewClient: func(string, string) (ports.TogglClient, error) {
			return &fakeToggl{}, nil
		},
	}
	_, err := uc.Run(context.Background(), config.Config{}, true)
	assert.ErrorIs(t, err, ports.ErrCancelled)
	assert.Empty(t, store.saved)
}
