// Package account provides the session and profile tab for the AgentCost TUI.
package account

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentcost/agentcost-tui/internal/app"
	"github.com/agentcost/agentcost-tui/internal/services/session"
	"github.com/agentcost/agentcost-tui/internal/ui/components"
)

// Login form focus order.
const (
	focusEmail = iota
	focusPassword
	focusRemember
	focusSubmit
	focusCount
)

// keyMap defines the key bindings specific to the account tab.
type keyMap struct {
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
	Toggle    key.Binding
	Logout    key.Binding
	Up        key.Binding
	Down      key.Binding
	Accept    key.Binding
}

// defaultKeyMap returns the default key bindings for the account tab.
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
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "sign in"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		Logout: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sign out"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Accept: key.NewBinding(
			key.WithKeys("a", "enter"),
			key.WithHelp("a", "accept"),
		),
	}
}

// Model represents the account tab state.
type Model struct {
	state   *app.State
	spinner components.LoadingSpinner
	keys    keyMap

	// Login form.
	email      textinput.Model
	password   textinput.Model
	rememberMe bool
	focus      int
	formError  string

	// Policy interstitial cursor.
	policyCursor int

	width  int
	height int
}

// New creates a new account model.
func New(state *app.State) *Model {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 120
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 120
	password.Width = 40

	return &Model{
		state:      state,
		spinner:    components.NewSpinner("Signing in..."),
		keys:       defaultKeyMap(),
		email:      email,
		password:   password,
		rememberMe: true,
	}
}

// Init initializes the account tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the account tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state.SessionState() {
		case session.StateAnonymous:
			return m.updateLoginForm(msg)
		case session.StatePolicyGate:
			return m.updatePolicyGate(msg)
		default:
			return m.updateProfile(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case app.LoginResultMsg:
		if msg.Err != nil {
			m.formError = "Sign-in failed. Check your email and password."
			m.password.SetValue("")
		} else {
			m.formError = ""
			m.password.SetValue("")
		}

	case app.SessionChangedMsg:
		if msg.State != session.StatePolicyGate {
			m.policyCursor = 0
		}
	}

	return m, nil
}

// updateLoginForm handles key input for the sign-in form.
func (m *Model) updateLoginForm(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextField):
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil

	case key.Matches(msg, m.keys.PrevField):
		m.setFocus((m.focus - 1 + focusCount) % focusCount)
		return m, nil

	case key.Matches(msg, m.keys.Toggle) && m.focus == focusRemember:
		m.rememberMe = !m.rememberMe
		return m, nil

	case msg.Type == tea.KeyEsc:
		// Blur text fields so global navigation works again.
		m.setFocus(focusSubmit)
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.focus == focusEmail || m.focus == focusPassword {
			m.setFocus(m.focus + 1)
			return m, nil
		}
		return m, m.submitLogin()
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusEmail:
		m.email, cmd = m.email.Update(msg)
	case focusPassword:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// submitLogin validates the form and emits a login request.
func (m *Model) submitLogin() tea.Cmd {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()

	if email == "" || !strings.Contains(email, "@") {
		m.formError = "Enter a valid email address."
		m.setFocus(focusEmail)
		return nil
	}
	if password == "" {
		m.formError = "Enter your password."
		m.setFocus(focusPassword)
		return nil
	}

	m.formError = ""
	remember := m.rememberMe
	return func() tea.Msg {
		return app.LoginRequestMsg{Email: email, Password: password, RememberMe: remember}
	}
}

// setFocus moves form focus and syncs the inputs.
func (m *Model) setFocus(focus int) {
	m.focus = focus
	m.email.Blur()
	m.password.Blur()
	switch focus {
	case focusEmail:
		m.email.Focus()
	case focusPassword:
		m.password.Focus()
	}
}

// updatePolicyGate handles key input for the policy interstitial.
func (m *Model) updatePolicyGate(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	policies := m.state.Policies()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.policyCursor > 0 {
			m.policyCursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.policyCursor < len(policies)-1 {
			m.policyCursor++
		}

	case key.Matches(msg, m.keys.Accept):
		if m.policyCursor >= 0 && m.policyCursor < len(policies) {
			policy := policies[m.policyCursor]
			return m, func() tea.Msg {
				return app.AcceptPolicyRequestMsg{Policy: policy}
			}
		}
	}

	return m, nil
}

// updateProfile handles key input for the signed-in profile card.
func (m *Model) updateProfile(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	if key.Matches(msg, m.keys.Logout) {
		return m, func() tea.Msg {
			return app.LogoutRequestMsg{}
		}
	}
	return m, nil
}

// CapturingInput reports whether a login form text field has focus.
func (m *Model) CapturingInput() bool {
	return m.state.SessionState() == session.StateAnonymous &&
		(m.email.Focused() || m.password.Focused())
}

// SetSize sets the available size for the account tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	w := min(width-20, 50)
	m.email.Width = w
	m.password.Width = w
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	switch m.state.SessionState() {
	case session.StateAnonymous:
		return []key.Binding{m.keys.NextField, m.keys.Submit}
	case session.StatePolicyGate:
		return []key.Binding{m.keys.Up, m.keys.Down, m.keys.Accept}
	}
	return []key.Binding{m.keys.Logout}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextField, m.keys.PrevField, m.keys.Submit},
		{m.keys.Accept, m.keys.Logout},
	}
}
