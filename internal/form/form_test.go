package form

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toggl-assistant/internal/config"
	"toggl-assistant/internal/domain"
	"toggl-assistant/internal/ports"
)

func keyPress(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func typeText(m tea.Model, s string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func send(m tea.Model, keys ...tea.KeyType) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(keyPress(k))
	}
	return m
}

var choices = []domain.ProjectChoice{
	{ID: 1, Name: "Client Work"},
	{ID: 2, Name: "Internal"},
	{ID: 3, Name: "Side Project"},
}

func TestStartModel_SelectAndDescribe(t *testing.T) {
	var m tea.Model = newStartModel(choices, domain.StartInput{})
	m = send(m, tea.KeyDown, tea.KeyDown, tea.KeyDown, tea.KeyUp)
	m = send(m, tea.KeyEnter)
	m = typeText(m, "Write design doc ")
	_, cmd := m.Update(keyPress(tea.KeyEnter))
	require.NotNil(t, cmd)

	got, err := m.(*startModel).result()
	require.NoError(t, err)
	assert.Equal(t, domain.StartInput{ProjectName: "Internal", Description: "Write design doc"}, got)
}

func TestStartModel_ListKeysDoNotLeakIntoDescription(t *testing.T) {
	var m tea.Model = newStartModel(choices, domain.StartInput{})
	m = typeText(m, "j")
	assert.Equal(t, 1, m.(*startModel).cursor)
	assert.Empty(t, m.(*startModel).description.Value())

	m = send(m, tea.KeyTab)
	m = typeText(m, "jk")
	assert.Equal(t, 1, m.(*startModel).cursor)
	assert.Equal(t, "jk", m.(*startModel).description.Value())
}

func TestStartModel_Preset(t *testing.T) {
	t.Run("project and partial description", func(t *testing.T) {
		var m tea.Model = newStartModel(choices, domain.StartInput{ProjectName: "side project", Description: "Write"})
		sm := m.(*startModel)
		assert.Equal(t, 2, sm.cursor)
		assert.Equal(t, startFocusDescription, sm.focus)

		m = typeText(m, " docs")
		m = send(m, tea.KeyEnter)
		got, err := m.(*startModel).result()
		require.NoError(t, err)
		assert.Equal(t, domain.StartInput{ProjectName: "Side Project", Description: "Write docs"}, got)
	})

	t.Run("description only", func(t *testing.T) {
		var m tea.Model = newStartModel(choices, domain.StartInput{Description: "standup"})
		assert.Equal(t, startFocusProject, m.(*startModel).focus)

		m = send(m, tea.KeyDown, tea.KeyEnter, tea.KeyEnter)
		got, err := m.(*startModel).result()
		require.NoError(t, err)
		assert.Equal(t, domain.StartInput{ProjectName: "Internal", Description: "standup"}, got)
	})
}

func TestStartModel_Cancel(t *testing.T) {
	var m tea.Model = newStartModel(choices, domain.StartInput{})
	m = send(m, tea.KeyEsc)
	_, err := m.(*startModel).result()
	assert.ErrorIs(t, err, ports.ErrCancelled)
}

func TestStartModel_View(t *testing.T) {
	v := newStartModel(choices, domain.StartInput{}).View()
	assert.Contains(t, v, "Client Work")
	assert.Contains(t, v, "Description")
}

func configWith(projects ...string) config.Config {
	var cfg config.Config
	cfg.Toggl.WorkspaceID = "123456"
	cfg.Toggl.APIKey = "secret"
	cfg.Projects = projects
	cfg.MySQL.DSN = "keep-me"
	return cfg
}

func TestConfigModel_EditAndSave(t *testing.T) {
	var m tea.Model = newConfigModel(configWith("internal"), []string{"Client Work", "Internal"})
	cm := m.(*configModel)
	assert.Equal(t, []string{"client work", "internal"}, cm.projects)

	m = send(m, tea.KeyTab, tea.KeyTab)
	m = typeText(m, " ")
	_, cmd := m.Update(keyPress(tea.KeyEnter))
	require.NotNil(t, cmd)

	got, err := m.(*configModel).result()
	require.NoError(t, err)
	assert.Equal(t, []string{"client work", "internal"}, got.Projects)
	assert.Equal(t, "123456", got.Toggl.WorkspaceID)
	assert.Equal(t, "secret", got.Toggl.APIKey)
	assert.Equal(t, "keep-me", got.MySQL.DSN)
}

func TestConfigModel_Validation(t *testing.T) {
	t.Run("no project selected", func(t *testing.T) {
		var m tea.Model = newConfigModel(configWith(), []string{"Alpha"})
		m = send(m, tea.KeyCtrlS)
		cm := m.(*configModel)
		assert.Equal(t, "Please select at least one project.", cm.message)
		_, err := cm.result()
		assert.ErrorIs(t, err, ports.ErrCancelled)
	})
	t.Run("non numeric workspace", func(t *testing.T) {
		var m tea.Model = newConfigModel(configWith("alpha"), []string{"Alpha"})
		m = typeText(m, "x")
		m = send(m, tea.KeyCtrlS)
		assert.Equal(t, "Workspace ID must be a number.", m.(*configModel).message)
	})
	t.Run("missing api key", func(t *testing.T) {
		cfg := configWith("alpha")
		cfg.Toggl.APIKey = ""
		var m tea.Model = newConfigModel(cfg, nil)
		m = send(m, tea.KeyCtrlS)
		assert.Equal(t, "Please enter an API key.", m.(*configModel).message)
	})
}

func TestConfigModel_SetupWithoutProjects(t *testing.T) {
	var m tea.Model = newConfigModel(config.Config{}, nil)
	m = typeText(m, "42")
	m = send(m, tea.KeyTab)
	m = typeText(m, "key")
	m = send(m, tea.KeyCtrlS)

	got, err := m.(*configModel).result()
	require.NoError(t, err)
	assert.Equal(t, "42", got.Toggl.WorkspaceID)
	assert.Equal(t, "key", got.Toggl.APIKey)
	assert.Empty(t, got.Projects)
}
