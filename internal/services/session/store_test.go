package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentcost/agentcost-tui/internal/models"
)

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if s.AccessToken() != "" {
		t.Errorf("fresh store should have no access token")
	}

	sess := models.Session{
		AccessToken:  "tok",
		RefreshToken: "ref",
		User:         &models.User{ID: "u1", Email: "a@b.c"},
	}
	if err := s.SetSession(sess); err != nil {
		t.Fatalf("SetSession() error = %v", err)
	}

	// A second store reading the same file sees the persisted session.
	s2, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() reload error = %v", err)
	}
	got := s2.Session()
	if got.AccessToken != "tok" || got.RefreshToken != "ref" {
		t.Errorf("reloaded tokens = %q/%q", got.AccessToken, got.RefreshToken)
	}
	if got.User == nil || got.User.Email != "a@b.c" {
		t.Errorf("reloaded user = %+v", got.User)
	}
}

func TestStore_SetTokensPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	if err := s.SetTokens("a1", "r1"); err != nil {
		t.Fatalf("SetTokens() error = %v", err)
	}

	s2, _ := NewStore(path)
	if s2.AccessToken() != "a1" || s2.RefreshToken() != "r1" {
		t.Errorf("persisted tokens = %q/%q", s2.AccessToken(), s2.RefreshToken())
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("session file mode = %o, want 600", perm)
	}
}

func TestStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s, _ := NewStore(path)
	_ = s.SetTokens("a1", "r1")

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if s.AccessToken() != "" {
		t.Errorf("access token should be empty after Clear")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("session file should be removed, stat err = %v", err)
	}

	// Clearing an already-clear store is not an error.
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

func TestStore_CorruptFileTreatedAsSignedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if s.AccessToken() != "" {
		t.Errorf("corrupt file should yield empty session")
	}
}
