package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentcost/agentcost-tui/internal/api"
	"github.com/agentcost/agentcost-tui/internal/events"
	"github.com/agentcost/agentcost-tui/internal/models"
)

// fakeBackend is a scripted Backend implementation.
type fakeBackend struct {
	loginPair    models.TokenPair
	loginErr     error
	meUser       models.User
	meErr        error
	policies     []models.PolicyStatus
	policyErr    error
	acceptErr    error
	logoutErr    error
	logoutCalls  int
	acceptCalls  int
	refreshCalls int
}

func (f *fakeBackend) Login(_ context.Context, _, _ string, _ bool) (models.TokenPair, error) {
	return f.loginPair, f.loginErr
}

func (f *fakeBackend) Logout(context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeBackend) Me(context.Context) (models.User, error) {
	return f.meUser, f.meErr
}

func (f *fakeBackend) PolicyStatus(context.Context) ([]models.PolicyStatus, error) {
	return f.policies, f.policyErr
}

func (f *fakeBackend) AcceptPolicy(_ context.Context, policyType, _ string) error {
	f.acceptCalls++
	if f.acceptErr != nil {
		return f.acceptErr
	}
	for i := range f.policies {
		if f.policies[i].PolicyType == policyType {
			f.policies[i].Accepted = true
		}
	}
	return nil
}

func (f *fakeBackend) RefreshTokens(context.Context) error {
	f.refreshCalls++
	return nil
}

func newTestService(t *testing.T, backend Backend, bus *events.Bus) (*Service, *Store) {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatal(err)
	}
	svc := New(store, backend, bus, DefaultConfig())
	t.Cleanup(func() { _ = svc.Close() })
	return svc, store
}

func TestService_InitializeWithoutSession(t *testing.T) {
	svc, _ := newTestService(t, &fakeBackend{}, nil)

	if got := svc.Initialize(context.Background()); got != StateAnonymous {
		t.Errorf("Initialize() = %v, want anonymous", got)
	}
}

func TestService_InitializeRestoresSession(t *testing.T) {
	backend := &fakeBackend{meUser: models.User{ID: "u1", Email: "a@b.c"}}
	svc, store := newTestService(t, backend, nil)
	_ = store.SetTokens("tok", "ref")

	if got := svc.Initialize(context.Background()); got != StateAuthenticated {
		t.Errorf("Initialize() = %v, want authenticated", got)
	}
	if u := svc.User(); u == nil || u.ID != "u1" {
		t.Errorf("User() = %+v, want restored user", u)
	}
}

func TestService_InitializeDiscardsStaleSession(t *testing.T) {
	backend := &fakeBackend{
		meErr: &api.APIError{Status: 401, StatusText: "Unauthorized"},
	}
	svc, store := newTestService(t, backend, nil)
	_ = store.SetTokens("stale", "dead")

	if got := svc.Initialize(context.Background()); got != StateAnonymous {
		t.Errorf("Initialize() = %v, want anonymous", got)
	}
	if store.AccessToken() != "" {
		t.Errorf("stale tokens should be cleared")
	}
}

func TestService_InitializeKeepsTokensOnNetworkError(t *testing.T) {
	backend := &fakeBackend{meErr: errors.New("connection refused")}
	svc, store := newTestService(t, backend, nil)
	_ = store.SetTokens("tok", "ref")

	if got := svc.Initialize(context.Background()); got != StateAnonymous {
		t.Errorf("Initialize() = %v, want anonymous", got)
	}
	// Tokens survive a transient failure for the next startup.
	if store.AccessToken() != "tok" {
		t.Errorf("tokens should be kept on network error")
	}
}

func TestService_LoginPersistsAndAuthenticates(t *testing.T) {
	backend := &fakeBackend{
		loginPair: models.TokenPair{
			AccessToken:  "tok",
			RefreshToken: "ref",
			User:         &models.User{ID: "u1", Email: "a@b.c"},
		},
	}
	svc, store := newTestService(t, backend, nil)

	state, err := svc.Login(context.Background(), "a@b.c", "secret", true)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if state != StateAuthenticated {
		t.Errorf("Login() state = %v, want authenticated", state)
	}
	if store.AccessToken() != "tok" || store.RefreshToken() != "ref" {
		t.Errorf("tokens not persisted: %q/%q", store.AccessToken(), store.RefreshToken())
	}
}

func TestService_LoginFailureStaysAnonymous(t *testing.T) {
	backend := &fakeBackend{
		loginErr: &api.APIError{Status: 401, Body: `{"detail":"Invalid email or password"}`},
	}
	svc, store := newTestService(t, backend, nil)
	svc.Initialize(context.Background())

	if _, err := svc.Login(context.Background(), "a@b.c", "wrong", false); err == nil {
		t.Fatal("Login() should fail")
	}
	if svc.State() != StateAnonymous {
		t.Errorf("state = %v, want anonymous", svc.State())
	}
	if store.AccessToken() != "" {
		t.Errorf("no tokens should be stored on failed login")
	}
}

func TestService_PolicyGate(t *testing.T) {
	backend := &fakeBackend{
		loginPair: models.TokenPair{
			AccessToken: "tok",
			User:        &models.User{ID: "u1"},
		},
		policies: []models.PolicyStatus{
			{PolicyType: "terms", Version: "2.0", Required: true, Accepted: false},
			{PolicyType: "marketing", Version: "1.0", Required: false, Accepted: false},
		},
	}
	svc, _ := newTestService(t, backend, nil)

	state, err := svc.Login(context.Background(), "a@b.c", "secret", false)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if state != StatePolicyGate {
		t.Fatalf("Login() state = %v, want policy-gate", state)
	}

	outstanding := svc.OutstandingPolicies()
	if len(outstanding) != 1 || outstanding[0].PolicyType != "terms" {
		t.Fatalf("OutstandingPolicies() = %+v, want only required terms", outstanding)
	}

	// Accepting the blocking policy opens the gate.
	state, err = svc.AcceptPolicy(context.Background(), outstanding[0])
	if err != nil {
		t.Fatalf("AcceptPolicy() error = %v", err)
	}
	if state != StateAuthenticated {
		t.Errorf("state after accept = %v, want authenticated", state)
	}
	if backend.acceptCalls != 1 {
		t.Errorf("acceptCalls = %d, want 1", backend.acceptCalls)
	}
}

func TestService_PolicyCheckFailsOpen(t *testing.T) {
	backend := &fakeBackend{
		loginPair: models.TokenPair{AccessToken: "tok", User: &models.User{ID: "u1"}},
		policyErr: errors.New("boom"),
	}
	svc, _ := newTestService(t, backend, nil)

	state, err := svc.Login(context.Background(), "a@b.c", "secret", false)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if state != StateAuthenticated {
		t.Errorf("state = %v, want authenticated when policy check fails", state)
	}
}

func TestService_LogoutClearsEvenWhenServerFails(t *testing.T) {
	backend := &fakeBackend{
		loginPair: models.TokenPair{AccessToken: "tok", User: &models.User{ID: "u1"}},
		logoutErr: errors.New("server unreachable"),
	}
	svc, store := newTestService(t, backend, nil)
	if _, err := svc.Login(context.Background(), "a@b.c", "secret", false); err != nil {
		t.Fatal(err)
	}

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if backend.logoutCalls != 1 {
		t.Errorf("logoutCalls = %d, want 1", backend.logoutCalls)
	}
	if svc.State() != StateAnonymous {
		t.Errorf("state = %v, want anonymous", svc.State())
	}
	if store.AccessToken() != "" {
		t.Errorf("tokens should be cleared on logout")
	}
}

func TestService_RefreshFailureSignsOut(t *testing.T) {
	backend := &fakeBackend{
		loginPair: models.TokenPair{AccessToken: "tok", User: &models.User{ID: "u1"}},
	}
	bus := events.NewBus()
	svc, store := newTestService(t, backend, bus)
	if _, err := svc.Login(context.Background(), "a@b.c", "secret", false); err != nil {
		t.Fatal(err)
	}

	bus.Publish(events.RefreshFailed{Err: errors.New("refresh token revoked")})

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-svc.Events():
			if ev.Type == EventSessionExpired {
				if svc.State() != StateAnonymous {
					t.Errorf("state = %v, want anonymous", svc.State())
				}
				if store.AccessToken() != "" {
					t.Errorf("tokens should be cleared on refresh failure")
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for session-expired event")
		}
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUninitialized, "uninitialized"},
		{StateAnonymous, "anonymous"},
		{StatePolicyGate, "policy-gate"},
		{StateAuthenticated, "authenticated"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
