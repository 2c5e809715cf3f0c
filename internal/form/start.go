package form

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"toggl-assistant/internal/domain"
	"toggl-assistant/internal/ports"
)

// StartForm asks for a project and a description in the terminal.
type StartForm struct {
	In  io.Reader
	Out io.Writer
}

// NewStartForm returns a form bound to stdin and stderr.
func NewStartForm() *StartForm {
	return &StartForm{In: os.Stdin, Out: os.Stderr}
}

// Run shows the form and blocks until the user confirms or cancels.
func (f *StartForm) Run(ctx context.Context, choices []domain.ProjectChoice, preset domain.StartInput) (domain.StartInput, error) {
	if len(choices) == 0 {
		return domain.StartInput{}, fmt.Errorf("start form: no projects to choose from")
	}
	m := newStartModel(choices, preset)
	final, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(f.In), tea.WithOutput(f.Out)).Run()
	if err != nil {
		return domain.StartInput{}, err
	}
	return final.(*startModel).result()
}

type startFocus int

const (
	startFocusProject startFocus = iota
	startFocusDescription
)

type startModel struct {
	choices     []domain.ProjectChoice
	cursor      int
	description textinput.Model
	focus       startFocus
	keys        keyMap
	help        help.Model

	done      bool
	cancelled bool
}

// newStartModel preselects preset.ProjectName and fills in the description.
// With a known project the description field starts focused.
func newStartModel(choices []domain.ProjectChoice, preset domain.StartInput) *startModel {
	ti := textinput.New()
	ti.Placeholder = "What are you working on?"
	ti.CharLimit = 200
	ti.Width = 40
	ti.SetValue(preset.Description)

	m := &startModel{
		choices:     choices,
		description: ti,
		keys:        newKeyMap(),
		help:        help.New(),
	}
	if name := strings.TrimSpace(preset.ProjectName); name != "" {
		for i, c := range choices {
			if strings.EqualFold(c.Name, name) {
				m.cursor = i
				m.setFocus(startFocusDescription)
				break
			}
		}
	}
	return m
}

func (m *startModel) Init() tea.Cmd { return nil }

func (m *startModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Prev):
			return m, m.setFocus(1 - m.focus)
		case key.Matches(msg, m.keys.Submit):
			if m.focus == startFocusProject {
				return m, m.setFocus(startFocusDescription)
			}
			m.done = true
			return m, tea.Quit
		}
		if m.focus == startFocusProject {
			switch {
			case key.Matches(msg, m.keys.Up):
				if m.cursor > 0 {
					m.cursor--
				}
			case key.Matches(msg, m.keys.Down):
				if m.cursor < len(m.choices)-1 {
					m.cursor++
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.description, cmd = m.description.Update(msg)
	return m, cmd
}

func (m *startModel) setFocus(f startFocus) tea.Cmd {
	m.focus = f
	if f == startFocusDescription {
		return m.description.Focus()
	}
	m.description.Blur()
	return nil
}

func (m *startModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Start time entry"))
	b.WriteString("\n")
	b.WriteString(label("Project", m.focus == startFocusProject))
	b.WriteString("\n")
	for i, c := range m.choices {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + c.Name))
		} else {
			b.WriteString(dimStyle.Render("  " + c.Name))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(label("Description", m.focus == startFocusDescription))
	b.WriteString("\n")
	b.WriteString(m.description.View())
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.Up, m.keys.Down, m.keys.Next, m.keys.Submit, m.keys.Cancel}))
	return boxStyle.Render(b.String())
}

func (m *startModel) result() (domain.StartInput, error) {
	if m.cancelled || !m.done {
		return domain.StartInput{}, ports.ErrCancelled
	}
	return domain.StartInput{
		ProjectName: m.choices[m.cursor].Name,
		Description: strings.TrimSpace(m.description.Value()),
	}, nil
}
