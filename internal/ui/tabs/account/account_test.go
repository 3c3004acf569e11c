package account

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentcost/agentcost-tui/internal/app"
	"github.com/agentcost/agentcost-tui/internal/models"
	"github.com/agentcost/agentcost-tui/internal/services/session"
)

func TestLoginForm_Submit(t *testing.T) {
	m := New(app.NewState())
	m.email.SetValue("you@example.com")
	m.password.SetValue("hunter2")
	m.focus = focusSubmit

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("submit should emit a login request")
	}
	req, ok := cmd().(app.LoginRequestMsg)
	if !ok {
		t.Fatalf("msg = %T, want LoginRequestMsg", cmd())
	}
	if req.Email != "you@example.com" || req.Password != "hunter2" || !req.RememberMe {
		t.Errorf("request = %+v", req)
	}
}

func TestLoginForm_ValidatesEmail(t *testing.T) {
	m := New(app.NewState())
	m.email.SetValue("not-an-email")
	m.password.SetValue("hunter2")
	m.focus = focusSubmit

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("invalid email should not emit a login request")
	}
	if m.formError == "" {
		t.Error("invalid email should set a form error")
	}
	if m.focus != focusEmail {
		t.Error("focus should return to the email field")
	}
}

func TestLoginForm_RequiresPassword(t *testing.T) {
	m := New(app.NewState())
	m.email.SetValue("you@example.com")
	m.focus = focusSubmit

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("empty password should not emit a login request")
	}
	if m.focus != focusPassword {
		t.Error("focus should move to the password field")
	}
}

func TestLoginForm_FocusCycle(t *testing.T) {
	m := New(app.NewState())

	for i := 0; i < focusCount; i++ {
		if m.focus != i {
			t.Fatalf("focus = %d, want %d", m.focus, i)
		}
		m.Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	if m.focus != focusEmail {
		t.Error("tab should wrap back to the email field")
	}
}

func TestLoginForm_RememberToggle(t *testing.T) {
	m := New(app.NewState())
	m.setFocus(focusRemember)

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	if m.rememberMe {
		t.Error("space should toggle remember-me off")
	}
}

func TestLoginResult_ErrorClearsPassword(t *testing.T) {
	m := New(app.NewState())
	m.password.SetValue("hunter2")

	m.Update(app.LoginResultMsg{Err: errSentinel{}})
	if m.password.Value() != "" {
		t.Error("failed login should clear the password field")
	}
	if m.formError == "" {
		t.Error("failed login should show a form error")
	}
}

type errSentinel struct{}

func (errSentinel) Error() string { return "boom" }

func TestPolicyGate_Accept(t *testing.T) {
	state := app.NewState()
	state.SetSession(session.StatePolicyGate, &models.User{ID: "u1"}, []models.PolicyStatus{
		{PolicyType: "terms_of_service", Version: "2.0", Required: true},
		{PolicyType: "privacy_policy", Version: "1.1", Required: true},
	})

	m := New(state)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	if cmd == nil {
		t.Fatal("'a' should emit an accept request")
	}
	req, ok := cmd().(app.AcceptPolicyRequestMsg)
	if !ok || req.Policy.PolicyType != "privacy_policy" {
		t.Errorf("msg = %+v, want privacy_policy accept", req)
	}
}

func TestProfile_Logout(t *testing.T) {
	state := app.NewState()
	state.SetSession(session.StateAuthenticated, &models.User{ID: "u1", Email: "you@example.com"}, nil)

	m := New(state)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'o'}})
	if cmd == nil {
		t.Fatal("'o' should emit a logout request")
	}
	if _, ok := cmd().(app.LogoutRequestMsg); !ok {
		t.Errorf("msg = %T, want LogoutRequestMsg", cmd())
	}
}

func TestView_Variants(t *testing.T) {
	anon := New(app.NewState())
	anon.SetSize(100, 40)
	if !strings.Contains(anon.View(), "Sign in to AgentCost") {
		t.Error("anonymous view should show the login form")
	}

	gated := app.NewState()
	gated.SetSession(session.StatePolicyGate, &models.User{ID: "u1"}, []models.PolicyStatus{
		{PolicyType: "terms_of_service", Version: "2.0", Required: true},
	})
	gate := New(gated)
	gate.SetSize(100, 40)
	if !strings.Contains(gate.View(), "Terms of Service") {
		t.Error("policy gate view should list outstanding policies")
	}

	authed := app.NewState()
	authed.SetSession(session.StateAuthenticated, &models.User{
		ID:            "u1",
		Email:         "you@example.com",
		Name:          "Casey",
		EmailVerified: true,
		CreatedAt:     time.Now().Add(-48 * time.Hour),
	}, nil)
	profile := New(authed)
	profile.SetSize(100, 40)
	view := profile.View()
	if !strings.Contains(view, "Casey") || !strings.Contains(view, "verified") {
		t.Error("profile view should show the account details")
	}
}
