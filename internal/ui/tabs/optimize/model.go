// Package optimize provides the cost-optimization tab for the AgentCost TUI.
package optimize

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentcost/agentcost-tui/internal/app"
	"github.com/agentcost/agentcost-tui/internal/models"
	"github.com/agentcost/agentcost-tui/internal/ui/components"
)

// mode selects which layer of the tab has input focus.
type mode int

const (
	modeList mode = iota
	modeFeedback
	modeGuidance
)

// keyMap defines the key bindings specific to the optimize tab.
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Implement key.Binding
	Dismiss   key.Binding
	Refresh   key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
}

// defaultKeyMap returns the default key bindings for the optimize tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Implement: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "implement"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "dismiss"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the optimize tab state.
type Model struct {
	state   *app.State
	spinner components.LoadingSpinner
	keys    keyMap
	mode    mode
	cursor  int

	// Dismiss feedback prompt.
	feedback   textinput.Model
	dismissing string

	// Implementation guidance returned for the last implemented item.
	guidanceTitle string
	guidanceSteps []string

	width  int
	height int
}

// New creates a new optimize model.
func New(state *app.State) *Model {
	feedback := textinput.New()
	feedback.Placeholder = "Optional feedback (why is this not useful?)"
	feedback.CharLimit = 200
	feedback.Width = 50

	return &Model{
		state:    state,
		spinner:  components.NewSpinner("Analyzing cost data..."),
		keys:     defaultKeyMap(),
		feedback: feedback,
	}
}

// Init initializes the optimize tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the optimize tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeFeedback:
			return m.updateFeedback(msg)
		case modeGuidance:
			if key.Matches(msg, m.keys.Cancel) || key.Matches(msg, m.keys.Confirm) {
				m.mode = modeList
				m.guidanceSteps = nil
				m.guidanceTitle = ""
				return m, func() tea.Msg { return app.GuidanceClosedMsg{} }
			}
			return m, nil
		default:
			return m.updateList(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case app.OptimizationsLoadedMsg:
		if m.cursor >= len(msg.Suggestions) {
			m.cursor = max(len(msg.Suggestions)-1, 0)
		}

	case app.ImplementResultMsg:
		if msg.Err == nil && len(msg.Steps) > 0 {
			m.guidanceSteps = msg.Steps
			m.mode = modeGuidance
		}

	case app.DismissResultMsg:
		// List refresh arrives separately; nothing to do here.
	}

	return m, nil
}

// updateList handles key input while the suggestion list has focus.
func (m *Model) updateList(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	suggestions := m.state.Suggestions()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(suggestions)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Implement):
		if rec, ok := m.selectedRecommendation(); ok {
			m.guidanceTitle = rec.Title
			id := rec.ID
			return m, func() tea.Msg {
				return app.ImplementRequestMsg{ID: id}
			}
		}

	case key.Matches(msg, m.keys.Dismiss):
		if rec, ok := m.selectedRecommendation(); ok {
			m.dismissing = rec.ID
			m.feedback.SetValue("")
			m.mode = modeFeedback
			return m, m.feedback.Focus()
		}
	}

	return m, nil
}

// updateFeedback handles key input while the dismiss prompt has focus.
func (m *Model) updateFeedback(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeList
		m.dismissing = ""
		m.feedback.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		id := m.dismissing
		feedback := m.feedback.Value()
		m.mode = modeList
		m.dismissing = ""
		m.feedback.Blur()
		return m, func() tea.Msg {
			return app.DismissRequestMsg{ID: id, Feedback: feedback}
		}
	}

	var cmd tea.Cmd
	m.feedback, cmd = m.feedback.Update(msg)
	return m, cmd
}

// selectedRecommendation resolves the suggestion under the cursor to its
// pending recommendation. Suggestions without a pending match are
// display-only and cannot be actioned.
func (m *Model) selectedRecommendation() (models.Recommendation, bool) {
	suggestions := m.state.Suggestions()
	if m.cursor < 0 || m.cursor >= len(suggestions) {
		return models.Recommendation{}, false
	}
	return matchRecommendation(suggestions[m.cursor], m.state.PendingRecommendations())
}

// matchRecommendation finds the first pending recommendation describing the
// same optimization as the suggestion.
func matchRecommendation(s models.OptimizationSuggestion, pending []models.Recommendation) (models.Recommendation, bool) {
	for _, r := range pending {
		if r.Status == models.RecommendationPending && s.Matches(r) {
			return r, true
		}
	}
	return models.Recommendation{}, false
}

// CapturingInput reports whether the dismiss feedback field has focus.
func (m *Model) CapturingInput() bool {
	return m.mode == modeFeedback
}

// SetSize sets the available size for the optimize tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.feedback.Width = min(width-20, 60)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.mode == modeFeedback {
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return []key.Binding{
		m.keys.Up,
		m.keys.Down,
		m.keys.Implement,
		m.keys.Dismiss,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.Implement, m.keys.Dismiss},
		{m.keys.Refresh, m.keys.Cancel},
	}
}
