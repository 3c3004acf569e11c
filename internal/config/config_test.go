package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AGENTCOST_API_URL", "")
	t.Setenv("AGENTCOST_CONFIG_PATH", filepath.Join(t.TempDir(), "cfg.json"))
	t.Setenv("AGENTCOST_SESSION_PATH", filepath.Join(t.TempDir(), "session.json"))
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "cache.db"))
	t.Setenv("AGENTCOST_REFRESH_INTERVAL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Errorf("APIURL = %q, want default %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.RefreshInterval != defaultRefreshInterval {
		t.Errorf("RefreshInterval = %v, want %v", cfg.RefreshInterval, defaultRefreshInterval)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AGENTCOST_API_URL", "http://localhost:8000")
	t.Setenv("AGENTCOST_CONFIG_PATH", filepath.Join(dir, "cfg.json"))
	t.Setenv("AGENTCOST_SESSION_PATH", filepath.Join(dir, "session.json"))
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "cache.db"))
	t.Setenv("AGENTCOST_REFRESH_INTERVAL", "1m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIURL != "http://localhost:8000" {
		t.Errorf("APIURL = %q, want http://localhost:8000", cfg.APIURL)
	}
	if cfg.RefreshInterval != time.Minute {
		t.Errorf("RefreshInterval = %v, want 1m", cfg.RefreshInterval)
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"WithUnit", "45s", 45 * time.Second},
		{"BareSeconds", "90", 90 * time.Second},
		{"Invalid", "xyz", defaultRefreshInterval},
		{"Empty", "", defaultRefreshInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			if got := getEnvDuration("TEST_DURATION", defaultRefreshInterval); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "agentcost_config.json"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Defaults(t *testing.T) {
	s := newTestStore(t)

	cfg := s.Get()
	if !cfg.AutoRefresh {
		t.Error("AutoRefresh should default to true")
	}
	if cfg.RefreshInterval != 30 {
		t.Errorf("RefreshInterval = %d, want 30", cfg.RefreshInterval)
	}
}

func TestStore_IsConfigured(t *testing.T) {
	t.Setenv("AGENTCOST_API_KEY", "")
	s := newTestStore(t)

	if s.IsConfigured() {
		t.Error("fresh store should not be configured")
	}

	if err := s.SetAPIKey("ak_test_123", "proj_1"); err != nil {
		t.Fatalf("SetAPIKey() error = %v", err)
	}
	if !s.IsConfigured() {
		t.Error("store should be configured after SetAPIKey")
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if s.IsConfigured() {
		t.Error("store should not be configured after Clear")
	}
}

func TestStore_EnvFallback(t *testing.T) {
	t.Setenv("AGENTCOST_API_KEY", "ak_env")
	s := newTestStore(t)

	if got := s.APIKey(); got != "ak_env" {
		t.Errorf("APIKey() = %q, want env fallback ak_env", got)
	}
	if !s.IsConfigured() {
		t.Error("env API key should count as configured")
	}
}

func TestStore_PersistAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentcost_config.json")

	s1, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if err := s1.SetAPIKey("ak_demo", "proj_demo"); err != nil {
		t.Fatalf("SetAPIKey() error = %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// A subsequent load must report configured (project-creation flow).
	t.Setenv("AGENTCOST_API_KEY", "")
	s2, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() reload error = %v", err)
	}
	defer func() { _ = s2.Close() }()

	if !s2.IsConfigured() {
		t.Error("IsConfigured() should be true after reload")
	}
	if got := s2.Get().ProjectID; got != "proj_demo" {
		t.Errorf("ProjectID = %q, want proj_demo", got)
	}
}

func TestStore_ExternalChangeDetected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentcost_config.json")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	defer func() { _ = s.Close() }()

	// Drain the initial loaded event.
	select {
	case <-s.Events():
	case <-time.After(time.Second):
		t.Fatal("no initial event")
	}

	// Simulate another process rewriting the file.
	external := `{"apiKey":"ak_external","projectId":"p2","autoRefresh":false,"refreshInterval":60}`
	if err := os.WriteFile(path, []byte(external), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			if ev.Type == EventConfigChanged && s.Get().APIKey == "ak_external" {
				return
			}
		case <-deadline:
			t.Fatalf("external change not detected, config = %+v", s.Get())
		}
	}
}
