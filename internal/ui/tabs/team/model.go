// Package team provides the project membership tab for the AgentCost TUI.
package team

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentcost/agentcost-tui/internal/app"
	"github.com/agentcost/agentcost-tui/internal/models"
	"github.com/agentcost/agentcost-tui/internal/services/session"
	"github.com/agentcost/agentcost-tui/internal/ui/components"
)

// mode selects which layer of the tab has input focus.
type mode int

const (
	modeList mode = iota
	modeInvite
	modeConfirmRemove
	modeConfirmLeave
)

// inviteRoles is the role cycle order for the invite form.
var inviteRoles = []models.Role{models.RoleMember, models.RoleViewer, models.RoleAdmin}

// keyMap defines the key bindings specific to the team tab.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Invite     key.Binding
	Remove     key.Binding
	CycleRole  key.Binding
	CancelInv  key.Binding
	Leave      key.Binding
	Refresh    key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
	ConfirmYes key.Binding
	ConfirmNo  key.Binding
}

// defaultKeyMap returns the default key bindings for the team tab.
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
		Invite: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "invite"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove"),
		),
		CycleRole: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "change role"),
		),
		CancelInv: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cancel invite"),
		),
		Leave: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "leave project"),
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

// Model represents the team tab state.
type Model struct {
	state   *app.State
	spinner components.LoadingSpinner
	keys    keyMap
	mode    mode
	cursor  int

	// Invite form.
	inviteEmail textinput.Model
	inviteRole  int

	// Removal confirmation target.
	removing models.ProjectMember

	width  int
	height int
}

// New creates a new team model.
func New(state *app.State) *Model {
	email := textinput.New()
	email.Placeholder = "teammate@example.com"
	email.CharLimit = 120
	email.Width = 40

	return &Model{
		state:       state,
		spinner:     components.NewSpinner("Loading team..."),
		keys:        defaultKeyMap(),
		inviteEmail: email,
	}
}

// Init initializes the team tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the team tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeInvite:
			return m.updateInvite(msg)
		case modeConfirmRemove:
			return m.updateConfirmRemove(msg)
		case modeConfirmLeave:
			return m.updateConfirmLeave(msg)
		default:
			return m.updateList(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case app.TeamLoadedMsg:
		roster := msg.Roster
		if m.cursor >= m.rowCount(roster) {
			m.cursor = max(m.rowCount(roster)-1, 0)
		}

	case app.TeamActionResultMsg:
		// The roster reload arrives as a TeamLoadedMsg.
	}

	return m, nil
}

// updateList handles key input while the roster list has focus.
func (m *Model) updateList(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	roster, loaded := m.state.Roster()
	if !loaded {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.rowCount(roster)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Invite):
		if m.currentMember().Role.CanManageMembers() || m.currentMember().IsOwner {
			m.mode = modeInvite
			m.inviteEmail.SetValue("")
			m.inviteRole = 0
			return m, m.inviteEmail.Focus()
		}

	case key.Matches(msg, m.keys.Remove):
		if member, ok := m.selectedMember(roster); ok {
			if member.CanBeRemovedBy(m.currentMember()) {
				m.removing = member
				m.mode = modeConfirmRemove
			}
		}

	case key.Matches(msg, m.keys.CycleRole):
		if member, ok := m.selectedMember(roster); ok {
			if m.canChangeRole(member) {
				return m, m.emitAction(app.TeamActionMsg{
					Action: app.TeamUpdateRole,
					UserID: member.UserID,
					Role:   nextRole(member.Role),
				})
			}
		}

	case key.Matches(msg, m.keys.CancelInv):
		if inv, ok := m.selectedInvitation(roster); ok {
			if m.currentMember().Role.CanManageMembers() || m.currentMember().IsOwner {
				return m, m.emitAction(app.TeamActionMsg{
					Action:   app.TeamCancelInvite,
					InviteID: inv.ID,
				})
			}
		}

	case key.Matches(msg, m.keys.Leave):
		if !m.currentMember().IsOwner {
			m.mode = modeConfirmLeave
		}
	}

	return m, nil
}

// updateInvite handles key input while the invite form has focus.
func (m *Model) updateInvite(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeList
		m.inviteEmail.Blur()
		return m, nil

	case msg.Type == tea.KeyTab:
		m.inviteRole = (m.inviteRole + 1) % len(inviteRoles)
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		email := strings.TrimSpace(m.inviteEmail.Value())
		if email == "" || !strings.Contains(email, "@") {
			return m, nil
		}
		role := inviteRoles[m.inviteRole]
		m.mode = modeList
		m.inviteEmail.Blur()
		return m, m.emitAction(app.TeamActionMsg{
			Action: app.TeamInvite,
			Email:  email,
			Role:   role,
		})
	}

	var cmd tea.Cmd
	m.inviteEmail, cmd = m.inviteEmail.Update(msg)
	return m, cmd
}

// updateConfirmRemove handles the removal confirmation prompt.
func (m *Model) updateConfirmRemove(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ConfirmYes):
		target := m.removing
		m.mode = modeList
		m.removing = models.ProjectMember{}
		return m, m.emitAction(app.TeamActionMsg{
			Action: app.TeamRemoveMember,
			UserID: target.UserID,
		})

	case key.Matches(msg, m.keys.ConfirmNo):
		m.mode = modeList
		m.removing = models.ProjectMember{}
	}
	return m, nil
}

// updateConfirmLeave handles the leave-project confirmation prompt.
func (m *Model) updateConfirmLeave(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ConfirmYes):
		m.mode = modeList
		return m, m.emitAction(app.TeamActionMsg{Action: app.TeamLeave})

	case key.Matches(msg, m.keys.ConfirmNo):
		m.mode = modeList
	}
	return m, nil
}

// emitAction stamps the project ID onto the action and wraps it in a command.
func (m *Model) emitAction(action app.TeamActionMsg) tea.Cmd {
	action.ProjectID = m.state.ProjectConfig().ProjectID
	return func() tea.Msg {
		return action
	}
}

// currentMember returns the signed-in user's own membership record, or a
// zero record when it cannot be resolved.
func (m *Model) currentMember() models.ProjectMember {
	user := m.state.User()
	if user == nil {
		return models.ProjectMember{}
	}
	roster, loaded := m.state.Roster()
	if !loaded {
		return models.ProjectMember{}
	}
	for _, member := range roster.Members {
		if member.UserID == user.ID {
			return member
		}
	}
	return models.ProjectMember{}
}

// rowCount returns the number of selectable rows (members then invitations).
func (m *Model) rowCount(roster models.TeamRoster) int {
	return len(roster.Members) + len(roster.Invitations)
}

// selectedMember returns the member under the cursor, if the cursor is in
// the member section.
func (m *Model) selectedMember(roster models.TeamRoster) (models.ProjectMember, bool) {
	if m.cursor < 0 || m.cursor >= len(roster.Members) {
		return models.ProjectMember{}, false
	}
	return roster.Members[m.cursor], true
}

// selectedInvitation returns the invitation under the cursor, if the cursor
// is in the invitation section.
func (m *Model) selectedInvitation(roster models.TeamRoster) (models.PendingInvitation, bool) {
	idx := m.cursor - len(roster.Members)
	if idx < 0 || idx >= len(roster.Invitations) {
		return models.PendingInvitation{}, false
	}
	return roster.Invitations[idx], true
}

// canChangeRole reports whether the signed-in user may change the target
// member's role. Owners keep the admin role permanently.
func (m *Model) canChangeRole(target models.ProjectMember) bool {
	actor := m.currentMember()
	if target.IsOwner || target.UserID == actor.UserID {
		return false
	}
	return actor.IsOwner || actor.Role.CanManageMembers()
}

// nextRole cycles member -> viewer -> admin -> member.
func nextRole(r models.Role) models.Role {
	for i, role := range inviteRoles {
		if role == r {
			return inviteRoles[(i+1)%len(inviteRoles)]
		}
	}
	return models.RoleMember
}

// sessionReady reports whether the tab can show the roster at all.
func (m *Model) sessionReady() bool {
	return m.state.SessionState() == session.StateAuthenticated
}

// CapturingInput reports whether the invite email field has focus.
func (m *Model) CapturingInput() bool {
	return m.mode == modeInvite && m.inviteEmail.Focused()
}

// SetSize sets the available size for the team tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.inviteEmail.Width = min(width-20, 50)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	switch m.mode {
	case modeInvite:
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	case modeConfirmRemove, modeConfirmLeave:
		return []key.Binding{m.keys.ConfirmYes, m.keys.ConfirmNo}
	}
	return []key.Binding{
		m.keys.Up,
		m.keys.Down,
		m.keys.Invite,
		m.keys.Remove,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.Invite, m.keys.Remove, m.keys.CycleRole},
		{m.keys.CancelInv, m.keys.Leave, m.keys.Refresh},
	}
}
