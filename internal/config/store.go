package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/agentcost/agentcost-tui/internal/logger"
)

// ProjectConfig is the persisted key/value project settings mutated by the
// Settings tab and read by the API client. API-key auth is orthogonal to the
// JWT session; the two credential types serve different endpoint classes.
type ProjectConfig struct {
	APIKey          string `json:"apiKey"`
	ProjectID       string `json:"projectId"`
	AutoRefresh     bool   `json:"autoRefresh"`
	RefreshInterval int    `json:"refreshInterval"` // seconds
}

// EventType defines the type of config store event.
type EventType int

const (
	// EventConfigLoaded is sent once after the initial load.
	EventConfigLoaded EventType = iota
	// EventConfigChanged is sent when the config file changes, either from
	// this process or an external one.
	EventConfigChanged
	// EventError signals a watcher or reload failure.
	EventError
)

// Event represents a config store event.
type Event struct {
	Type  EventType
	Error error
}

// Store manages the persisted project configuration with file watching, so
// edits from another running instance are picked up automatically.
type Store struct {
	mu            sync.RWMutex
	cfg           ProjectConfig
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// NewStore loads (or creates) the config file at filePath and starts
// watching it for external changes.
func NewStore(filePath string) (*Store, error) {
	s := &Store{
		filePath:  filePath,
		eventChan: make(chan Event, 16),
		stopChan:  make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.load(); err != nil {
		if os.IsNotExist(err) {
			s.cfg = ProjectConfig{AutoRefresh: true, RefreshInterval: 30}
			if err := s.save(); err != nil {
				return nil, fmt.Errorf("failed to create config file: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start config watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventConfigLoaded})
	return s, nil
}

// Events returns the event channel for subscribing to config changes.
func (s *Store) Events() <-chan Event {
	return s.eventChan
}

// Get returns a copy of the current project configuration.
func (s *Store) Get() ProjectConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// APIKey returns the configured API key, falling back to the
// AGENTCOST_API_KEY environment variable.
func (s *Store) APIKey() string {
	s.mu.RLock()
	key := s.cfg.APIKey
	s.mu.RUnlock()

	if key == "" {
		key = os.Getenv("AGENTCOST_API_KEY")
	}
	return key
}

// IsConfigured reports whether a non-empty API key is present in the
// persisted config or the environment default.
func (s *Store) IsConfigured() bool {
	return s.APIKey() != ""
}

// Set replaces the project configuration and persists it.
func (s *Store) Set(cfg ProjectConfig) error {
	s.mu.Lock()
	s.cfg = cfg
	err := s.save()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.sendEvent(Event{Type: EventConfigChanged})
	return nil
}

// SetAPIKey updates only the API key and project id, used after project
// creation to silently persist the new credential.
func (s *Store) SetAPIKey(apiKey, projectID string) error {
	s.mu.Lock()
	s.cfg.APIKey = apiKey
	s.cfg.ProjectID = projectID
	err := s.save()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.sendEvent(Event{Type: EventConfigChanged})
	return nil
}

// Clear removes the stored credential, returning the app to onboarding.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.cfg.APIKey = ""
	s.cfg.ProjectID = ""
	err := s.save()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.sendEvent(Event{Type: EventConfigChanged})
	return nil
}

// load reads the config file. Caller must not hold the lock.
func (s *Store) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var cfg ProjectConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 30
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// save writes the config atomically via temp file + rename. Must hold lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// startWatcher starts the file system watcher.
func (s *Store) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory to catch file creation after deletion
	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Store) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, func() {
					s.handleFileChange()
				})
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads the config after an external write.
func (s *Store) handleFileChange() {
	if err := s.load(); err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}
	s.sendEvent(Event{Type: EventConfigChanged})
}

func (s *Store) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop
	}
}

// Close stops the watcher and closes the event channel.
func (s *Store) Close() error {
	close(s.stopChan)

	var err error
	if s.watcher != nil {
		err = s.watcher.Close()
	}
	close(s.eventChan)
	return err
}
