package team

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentcost/agentcost-tui/internal/app"
	"github.com/agentcost/agentcost-tui/internal/config"
	"github.com/agentcost/agentcost-tui/internal/models"
	"github.com/agentcost/agentcost-tui/internal/services/session"
)

func teamState() *app.State {
	state := app.NewState()
	state.SetProjectConfig(config.ProjectConfig{APIKey: "ak_test", ProjectID: "proj-1"})
	state.SetSession(session.StateAuthenticated, &models.User{ID: "user-1", Email: "admin@example.com"}, nil)
	state.SetRoster(models.TeamRoster{
		Members: []models.ProjectMember{
			{UserID: "user-1", Email: "admin@example.com", Role: models.RoleAdmin, IsOwner: true},
			{UserID: "user-2", Email: "dev@example.com", Name: "Dev One", Role: models.RoleMember},
		},
		Invitations: []models.PendingInvitation{
			{ID: "inv-1", Email: "new@example.com", Role: models.RoleViewer},
		},
	})
	return state
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestView_RequiresSession(t *testing.T) {
	state := app.NewState()
	state.SetProjectConfig(config.ProjectConfig{APIKey: "ak_test", ProjectID: "proj-1"})

	m := New(state)
	m.SetSize(100, 30)
	if !strings.Contains(m.View(), "Sign in") {
		t.Error("anonymous view should prompt for sign-in")
	}
}

func TestView_RequiresProject(t *testing.T) {
	state := app.NewState()
	state.SetSession(session.StateAuthenticated, &models.User{ID: "u"}, nil)

	m := New(state)
	m.SetSize(100, 30)
	if !strings.Contains(m.View(), "Link a project") {
		t.Error("view without a project should hint at settings")
	}
}

func TestView_Roster(t *testing.T) {
	m := New(teamState())
	m.SetSize(120, 40)

	view := m.View()
	if !strings.Contains(view, "Members (2)") {
		t.Error("view missing member count")
	}
	if !strings.Contains(view, "Dev One") {
		t.Error("view missing member name")
	}
	if !strings.Contains(view, "Pending invitations (1)") {
		t.Error("view missing invitations section")
	}
}

func TestInviteFlow(t *testing.T) {
	m := New(teamState())

	m.Update(keyMsg('i'))
	if m.mode != modeInvite {
		t.Fatal("'i' should open the invite form for an admin")
	}

	// Cycle role member -> viewer.
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.inviteEmail.SetValue("new2@example.com")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter with a valid email should emit an invite")
	}
	action, ok := cmd().(app.TeamActionMsg)
	if !ok {
		t.Fatalf("msg = %T, want TeamActionMsg", cmd())
	}
	if action.Action != app.TeamInvite || action.Email != "new2@example.com" ||
		action.Role != models.RoleViewer || action.ProjectID != "proj-1" {
		t.Errorf("action = %+v", action)
	}
}

func TestInvite_RejectsInvalidEmail(t *testing.T) {
	m := New(teamState())
	m.Update(keyMsg('i'))
	m.inviteEmail.SetValue("not-an-email")

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("invalid email should not emit an invite")
	}
	if m.mode != modeInvite {
		t.Error("form should stay open on invalid input")
	}
}

func TestRemoveMember(t *testing.T) {
	m := New(teamState())
	m.cursor = 1 // dev@example.com

	m.Update(keyMsg('x'))
	if m.mode != modeConfirmRemove {
		t.Fatal("'x' on a removable member should prompt for confirmation")
	}

	_, cmd := m.Update(keyMsg('y'))
	if cmd == nil {
		t.Fatal("'y' should emit the removal")
	}
	action := cmd().(app.TeamActionMsg)
	if action.Action != app.TeamRemoveMember || action.UserID != "user-2" {
		t.Errorf("action = %+v", action)
	}
}

func TestRemove_OwnerIsProtected(t *testing.T) {
	m := New(teamState())
	m.cursor = 0 // the owner

	m.Update(keyMsg('x'))
	if m.mode != modeList {
		t.Error("the owner must not be removable")
	}
}

func TestCycleRole(t *testing.T) {
	m := New(teamState())
	m.cursor = 1

	_, cmd := m.Update(keyMsg('u'))
	if cmd == nil {
		t.Fatal("'u' should emit a role change")
	}
	action := cmd().(app.TeamActionMsg)
	if action.Action != app.TeamUpdateRole || action.UserID != "user-2" || action.Role != models.RoleViewer {
		t.Errorf("action = %+v", action)
	}
}

func TestCancelInvitation(t *testing.T) {
	m := New(teamState())
	m.cursor = 2 // first invitation row

	_, cmd := m.Update(keyMsg('c'))
	if cmd == nil {
		t.Fatal("'c' on an invitation should emit a cancellation")
	}
	action := cmd().(app.TeamActionMsg)
	if action.Action != app.TeamCancelInvite || action.InviteID != "inv-1" {
		t.Errorf("action = %+v", action)
	}
}

func TestLeave_OwnerCannotLeave(t *testing.T) {
	m := New(teamState())

	m.Update(keyMsg('L'))
	if m.mode != modeList {
		t.Error("the owner must not be offered the leave prompt")
	}
}

func TestNextRole(t *testing.T) {
	if got := nextRole(models.RoleMember); got != models.RoleViewer {
		t.Errorf("nextRole(member) = %v", got)
	}
	if got := nextRole(models.RoleAdmin); got != models.RoleMember {
		t.Errorf("nextRole(admin) = %v", got)
	}
}
