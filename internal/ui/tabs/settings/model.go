// Package settings provides the project configuration tab for the
// AgentCost TUI.
package settings

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentcost/agentcost-tui/internal/app"
	"github.com/agentcost/agentcost-tui/internal/config"
)

// mode selects which layer of the tab has input focus.
type mode int

const (
	modeForm mode = iota
	modeCreateProject
	modeConfirmDelete
)

// Settings form focus order.
const (
	focusAPIKey = iota
	focusProjectID
	focusAutoRefresh
	focusInterval
	focusSave
	focusCount
)

// keyMap defines the key bindings specific to the settings tab.
type keyMap struct {
	NextField  key.Binding
	PrevField  key.Binding
	Toggle     key.Binding
	Save       key.Binding
	NewProject key.Binding
	Delete     key.Binding
	Cancel     key.Binding
	ConfirmYes key.Binding
	ConfirmNo  key.Binding
}

// defaultKeyMap returns the default key bindings for the settings tab.
func defaultKeyMap() keyMap {
	return keyMap{
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		Save: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		NewProject: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new project"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "delete project"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		ConfirmYes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		ConfirmNo: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}

// Model represents the settings tab state.
type Model struct {
	state *app.State
	keys  keyMap
	mode  mode

	apiKey      textinput.Model
	projectID   textinput.Model
	interval    textinput.Model
	autoRefresh bool
	focus       int
	formError   string
	loaded      bool

	projectName textinput.Model

	width  int
	height int
}

// New creates a new settings model.
func New(state *app.State) *Model {
	apiKey := textinput.New()
	apiKey.Placeholder = "ak_..."
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.EchoCharacter = '•'
	apiKey.CharLimit = 128
	apiKey.Width = 44
	apiKey.Focus()

	projectID := textinput.New()
	projectID.Placeholder = "project id (optional)"
	projectID.CharLimit = 64
	projectID.Width = 44

	interval := textinput.New()
	interval.Placeholder = "30"
	interval.CharLimit = 5
	interval.Width = 8

	projectName := textinput.New()
	projectName.Placeholder = "demo"
	projectName.CharLimit = 64
	projectName.Width = 32

	return &Model{
		state:       state,
		keys:        defaultKeyMap(),
		apiKey:      apiKey,
		projectID:   projectID,
		interval:    interval,
		projectName: projectName,
	}
}

// Init initializes the settings tab.
func (m *Model) Init() tea.Cmd {
	m.syncFromConfig(m.state.ProjectConfig())
	return nil
}

// Update handles messages for the settings tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeCreateProject:
			return m.updateCreateProject(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateForm(msg)
		}

	case app.ConfigChangedMsg:
		m.syncFromConfig(msg.Config)

	case app.ProjectCreatedMsg:
		if msg.Err == nil {
			m.mode = modeForm
			m.syncFromConfig(m.state.ProjectConfig())
		}

	case app.ProjectDeletedMsg:
		if msg.Err == nil {
			m.syncFromConfig(m.state.ProjectConfig())
		}
	}

	return m, nil
}

// syncFromConfig resets the form inputs to the persisted config.
func (m *Model) syncFromConfig(cfg config.ProjectConfig) {
	m.apiKey.SetValue(cfg.APIKey)
	m.projectID.SetValue(cfg.ProjectID)
	m.autoRefresh = cfg.AutoRefresh
	if cfg.RefreshInterval > 0 {
		m.interval.SetValue(strconv.Itoa(cfg.RefreshInterval))
	} else {
		m.interval.SetValue("")
	}
	m.loaded = true
}

// updateForm handles key input for the settings form.
func (m *Model) updateForm(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NewProject):
		m.mode = modeCreateProject
		m.projectName.SetValue("")
		return m, m.projectName.Focus()

	case key.Matches(msg, m.keys.Delete):
		if m.state.ProjectConfig().ProjectID != "" {
			m.mode = modeConfirmDelete
		}
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil

	case key.Matches(msg, m.keys.PrevField):
		m.setFocus((m.focus - 1 + focusCount) % focusCount)
		return m, nil

	case key.Matches(msg, m.keys.Toggle) && m.focus == focusAutoRefresh:
		m.autoRefresh = !m.autoRefresh
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		// Blur text fields so global navigation works again.
		m.setFocus(focusSave)
		return m, nil

	case key.Matches(msg, m.keys.Save):
		if m.focus != focusSave {
			m.setFocus(m.focus + 1)
			return m, nil
		}
		return m, m.submit()
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusAPIKey:
		m.apiKey, cmd = m.apiKey.Update(msg)
	case focusProjectID:
		m.projectID, cmd = m.projectID.Update(msg)
	case focusInterval:
		m.interval, cmd = m.interval.Update(msg)
	}
	return m, cmd
}

// submit validates the form and emits a config update.
func (m *Model) submit() tea.Cmd {
	apiKey := strings.TrimSpace(m.apiKey.Value())
	if apiKey == "" {
		m.formError = "An API key is required."
		m.setFocus(focusAPIKey)
		return nil
	}

	interval := 0
	if raw := strings.TrimSpace(m.interval.Value()); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 5 {
			m.formError = "Refresh interval must be at least 5 seconds."
			m.setFocus(focusInterval)
			return nil
		}
		interval = n
	}

	m.formError = ""
	cfg := config.ProjectConfig{
		APIKey:          apiKey,
		ProjectID:       strings.TrimSpace(m.projectID.Value()),
		AutoRefresh:     m.autoRefresh,
		RefreshInterval: interval,
	}
	return func() tea.Msg {
		return app.UpdateConfigRequestMsg{Config: cfg}
	}
}

// updateCreateProject handles the new-project name prompt.
func (m *Model) updateCreateProject(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeForm
		m.projectName.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Save):
		name := strings.TrimSpace(m.projectName.Value())
		if name == "" {
			name = "demo"
		}
		m.mode = modeForm
		m.projectName.Blur()
		return m, func() tea.Msg {
			return app.CreateProjectRequestMsg{Name: name}
		}
	}

	var cmd tea.Cmd
	m.projectName, cmd = m.projectName.Update(msg)
	return m, cmd
}

// updateConfirmDelete handles the delete-project confirmation prompt.
func (m *Model) updateConfirmDelete(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ConfirmYes):
		projectID := m.state.ProjectConfig().ProjectID
		m.mode = modeForm
		return m, func() tea.Msg {
			return app.DeleteProjectRequestMsg{ProjectID: projectID}
		}

	case key.Matches(msg, m.keys.ConfirmNo):
		m.mode = modeForm
	}
	return m, nil
}

// setFocus moves form focus and syncs the inputs.
func (m *Model) setFocus(focus int) {
	m.focus = focus
	m.apiKey.Blur()
	m.projectID.Blur()
	m.interval.Blur()
	switch focus {
	case focusAPIKey:
		m.apiKey.Focus()
	case focusProjectID:
		m.projectID.Focus()
	case focusInterval:
		m.interval.Focus()
	}
}

// CapturingInput reports whether a form text field has focus.
func (m *Model) CapturingInput() bool {
	return m.apiKey.Focused() || m.projectID.Focused() ||
		m.interval.Focused() || m.projectName.Focused()
}

// SetSize sets the available size for the settings tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	w := min(width-20, 50)
	m.apiKey.Width = w
	m.projectID.Width = w
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	switch m.mode {
	case modeCreateProject:
		return []key.Binding{m.keys.Save, m.keys.Cancel}
	case modeConfirmDelete:
		return []key.Binding{m.keys.ConfirmYes, m.keys.ConfirmNo}
	}
	return []key.Binding{m.keys.NextField, m.keys.Save, m.keys.NewProject}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextField, m.keys.PrevField, m.keys.Save},
		{m.keys.Toggle, m.keys.NewProject, m.keys.Delete},
	}
}
