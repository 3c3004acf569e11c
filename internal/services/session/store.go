// Package session manages the authenticated user lifecycle: the persisted
// credential pair, login and logout, policy gating, and background token
// rotation.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/agentcost/agentcost-tui/internal/models"
)

// Store persists the session to a JSON file. It implements api.TokenStore,
// so the API client reads and writes credentials through it without knowing
// about the file.
type Store struct {
	mu      sync.RWMutex
	path    string
	session models.Session
}

// NewStore creates a store backed by the given file path, loading any
// existing session. A missing or corrupt file yields an empty session.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// A corrupt session file is treated as signed out.
		return s, nil
	}
	s.session = sess
	return s, nil
}

// AccessToken returns the stored access token, or "" when signed out.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.AccessToken
}

// RefreshToken returns the stored refresh token, or "" when signed out.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.RefreshToken
}

// SetTokens replaces the credential pair and persists the session.
func (s *Store) SetTokens(accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.AccessToken = accessToken
	s.session.RefreshToken = refreshToken
	return s.save()
}

// Session returns a copy of the current session.
func (s *Store) Session() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// SetSession replaces the whole session and persists it.
func (s *Store) SetSession(sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = sess
	return s.save()
}

// SetUser replaces the denormalized user copy and persists the session.
func (s *Store) SetUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.User = user
	return s.save()
}

// Clear wipes the session and removes the file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = models.Session{}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// save writes the session atomically. Caller must hold the lock.
func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(s.session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
