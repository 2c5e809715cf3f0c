package form

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"toggl-assistant/internal/config"
	"toggl-assistant/internal/ports"
)

// ConfigForm edits the workspace, API key and project allow-list.
type ConfigForm struct {
	In  io.Reader
	Out io.Writer
}

// NewConfigForm returns a form bound to stdin and stderr.
func NewConfigForm() *ConfigForm {
	return &ConfigForm{In: os.Stdin, Out: os.Stderr}
}

// Run shows the form and blocks until the user saves or cancels.
func (f *ConfigForm) Run(ctx context.Context, current config.Config, projectNames []string) (config.Config, error) {
	m := newConfigModel(current, projectNames)
	final, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(f.In), tea.WithOutput(f.Out)).Run()
	if err != nil {
		return config.Config{}, err
	}
	return final.(*configModel).result()
}

const (
	configFocusWorkspace = iota
	configFocusAPIKey
	configFocusProjects
	configFieldCount
)

type configModel struct {
	current   config.Config
	workspace textinput.Model
	apiKey    textinput.Model
	projects  []string
	selected  map[string]bool
	cursor    int
	focus     int
	keys      keyMap
	help      help.Model
	message   string

	done      bool
	cancelled bool
}

func newConfigModel(current config.Config, projectNames []string) *configModel {
	ws := textinput.New()
	ws.Placeholder = "Workspace ID"
	ws.CharLimit = 20
	ws.Width = 30
	ws.SetValue(current.Toggl.WorkspaceID)

	api := textinput.New()
	api.Placeholder = "API key"
	api.CharLimit = 64
	api.Width = 30
	api.EchoMode = textinput.EchoPassword
	api.EchoCharacter = '*'
	api.SetValue(current.Toggl.APIKey)

	// Names are kept lowercased; configured names the service no longer
	// returns stay listed so they can be deselected.
	var names []string
	seen := make(map[string]bool)
	for _, n := range append(append([]string{}, projectNames...), current.Projects...) {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	selected := make(map[string]bool)
	for _, p := range current.Projects {
		selected[strings.ToLower(p)] = true
	}

	m := &configModel{
		current:   current,
		workspace: ws,
		apiKey:    api,
		projects:  names,
		selected:  selected,
		keys:      newKeyMap(),
		help:      help.New(),
	}
	m.setFocus(configFocusWorkspace)
	return m
}

func (m *configModel) Init() tea.Cmd { return textinput.Blink }

func (m *configModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Save):
			return m, m.submit()
		case key.Matches(msg, m.keys.Next):
			return m, m.setFocus((m.focus + 1) % configFieldCount)
		case key.Matches(msg, m.keys.Prev):
			return m, m.setFocus((m.focus + configFieldCount - 1) % configFieldCount)
		case key.Matches(msg, m.keys.Submit):
			if m.focus == configFocusProjects {
				return m, m.submit()
			}
			return m, m.setFocus(m.focus + 1)
		}
		if m.focus == configFocusProjects {
			switch {
			case key.Matches(msg, m.keys.Up):
				if m.cursor > 0 {
					m.cursor--
				}
			case key.Matches(msg, m.keys.Down):
				if m.cursor < len(m.projects)-1 {
					m.cursor++
				}
			case key.Matches(msg, m.keys.Toggle):
				if len(m.projects) > 0 {
					name := m.projects[m.cursor]
					m.selected[name] = !m.selected[name]
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case configFocusWorkspace:
		m.workspace, cmd = m.workspace.Update(msg)
	case configFocusAPIKey:
		m.apiKey, cmd = m.apiKey.Update(msg)
	}
	return m, cmd
}

func (m *configModel) setFocus(f int) tea.Cmd {
	m.focus = f
	m.workspace.Blur()
	m.apiKey.Blur()
	switch f {
	case configFocusWorkspace:
		return m.workspace.Focus()
	case configFocusAPIKey:
		return m.apiKey.Focus()
	}
	return nil
}

// submit validates the fields; on success the program quits.
func (m *configModel) submit() tea.Cmd {
	ws := strings.TrimSpace(m.workspace.Value())
	switch {
	case len(m.projects) > 0 && len(m.selectedProjects()) == 0:
		m.message = "Please select at least one project."
	case ws == "":
		m.message = "Please enter a workspace ID."
	case !isInteger(ws):
		m.message = "Workspace ID must be a number."
	case strings.TrimSpace(m.apiKey.Value()) == "":
		m.message = "Please enter an API key."
	default:
		m.message = ""
		m.done = true
		return tea.Quit
	}
	return nil
}

func (m *configModel) selectedProjects() []string {
	var out []string
	for _, p := range m.projects {
		if m.selected[p] {
			out = append(out, p)
		}
	}
	return out
}

func (m *configModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Toggl assistant configuration"))
	b.WriteString("\n")

	b.WriteString(label("Workspace ID", m.focus == configFocusWorkspace))
	b.WriteString("\n")
	b.WriteString(m.workspace.View())
	b.WriteString("\n\n")
	b.WriteString(label("API key", m.focus == configFocusAPIKey))
	b.WriteString("\n")
	b.WriteString(m.apiKey.View())
	b.WriteString("\n\n")

	b.WriteString(label("Projects", m.focus == configFocusProjects))
	b.WriteString("\n")
	if len(m.projects) == 0 {
		b.WriteString(dimStyle.Render("  (no projects loaded yet)"))
		b.WriteString("\n")
	}
	for i, p := range m.projects {
		box := "[ ]"
		if m.selected[p] {
			box = "[x]"
		}
		line := box + " " + p
		if m.focus == configFocusProjects && i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString(dimStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.message))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.Next, m.keys.Toggle, m.keys.Save, m.keys.Cancel}))
	return boxStyle.Render(b.String())
}

func (m *configModel) result() (config.Config, error) {
	if m.cancelled || !m.done {
		return config.Config{}, ports.ErrCancelled
	}
	cfg := m.current
	cfg.Toggl.WorkspaceID = strings.TrimSpace(m.workspace.Value())
	cfg.Toggl.APIKey = strings.TrimSpace(m.apiKey.Value())
	if len(m.projects) > 0 {
		cfg.Projects = m.selectedProjects()
	}
	return cfg, nil
}

func isInteger(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}
