package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/agentcost/agentcost-tui/internal/api"
	"github.com/agentcost/agentcost-tui/internal/events"
	"github.com/agentcost/agentcost-tui/internal/logger"
	"github.com/agentcost/agentcost-tui/internal/models"
)

// State is the session lifecycle state.
type State int

const (
	// StateUninitialized means the persisted session has not been checked yet.
	StateUninitialized State = iota
	// StateAnonymous means no valid credentials are present.
	StateAnonymous
	// StatePolicyGate means the user is signed in but must accept one or
	// more required policies before proceeding.
	StatePolicyGate
	// StateAuthenticated means the user is fully signed in.
	StateAuthenticated
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAnonymous:
		return "anonymous"
	case StatePolicyGate:
		return "policy-gate"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Backend is the slice of the API client the session service needs.
type Backend interface {
	Login(ctx context.Context, email, password string, rememberMe bool) (models.TokenPair, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (models.User, error)
	PolicyStatus(ctx context.Context) ([]models.PolicyStatus, error)
	AcceptPolicy(ctx context.Context, policyType, version string) error
	RefreshTokens(ctx context.Context) error
}

// Event represents a session service event.
type Event struct {
	Error    error
	User     *models.User
	Policies []models.PolicyStatus
	State    State
	Type     EventType
}

// EventType defines the type of session event.
type EventType int

const (
	// EventStateChanged indicates the lifecycle state moved.
	EventStateChanged EventType = iota
	// EventSessionExpired indicates the credentials stopped working and the
	// user was signed out locally.
	EventSessionExpired
	// EventError indicates a session operation failed.
	EventError
)

// Config holds configuration for the session service.
type Config struct {
	// RefreshInterval is how often a live session proactively rotates its
	// token pair.
	RefreshInterval time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: 45 * time.Minute,
	}
}

// Service owns the session lifecycle. State only ever moves through the
// exported operations and the background watcher; pages read it, they never
// set it.
type Service struct {
	mu       sync.RWMutex
	store    *Store
	backend  Backend
	bus      *events.Bus
	busSub   <-chan events.Event
	config   Config
	state    State
	policies []models.PolicyStatus

	eventChan chan Event
	stopChan  chan struct{}
	stopOnce  sync.Once
}

// New creates a session service. bus may be nil; without it the service
// cannot observe refresh failures from the API client.
func New(store *Store, backend Backend, bus *events.Bus, config Config) *Service {
	if config.RefreshInterval == 0 {
		config = DefaultConfig()
	}

	s := &Service{
		store:     store,
		backend:   backend,
		bus:       bus,
		config:    config,
		state:     StateUninitialized,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if bus != nil {
		s.busSub = bus.Subscribe()
	}
	go s.watch()

	return s
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the signed-in user, or nil.
func (s *Service) User() *models.User {
	sess := s.store.Session()
	return sess.User
}

// OutstandingPolicies returns the policies blocking the policy gate.
func (s *Service) OutstandingPolicies() []models.PolicyStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policies
}

// Initialize validates any persisted session against the backend and settles
// into Anonymous, PolicyGate, or Authenticated. It is called once at
// startup.
func (s *Service) Initialize(ctx context.Context) State {
	sess := s.store.Session()
	if sess.AccessToken == "" {
		s.setState(StateAnonymous, nil)
		return StateAnonymous
	}

	user, err := s.backend.Me(ctx)
	if err != nil {
		// Stale credentials are discarded; any other failure keeps them
		// for the next attempt but the user is treated as signed out.
		if isUnauthorized(err) {
			if clearErr := s.store.Clear(); clearErr != nil {
				logger.Error("failed to clear session", "error", clearErr)
			}
		}
		s.setState(StateAnonymous, nil)
		return StateAnonymous
	}

	if err := s.store.SetUser(&user); err != nil {
		logger.Error("failed to persist user", "error", err)
	}

	return s.settleAuthenticated(ctx, &user)
}

// Login authenticates and persists the session. On success the state is
// Authenticated or PolicyGate depending on outstanding required policies.
func (s *Service) Login(ctx context.Context, email, password string, rememberMe bool) (State, error) {
	pair, err := s.backend.Login(ctx, email, password, rememberMe)
	if err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return s.State(), err
	}

	sess := models.Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         pair.User,
	}
	if err := s.store.SetSession(sess); err != nil {
		return s.State(), err
	}

	user := pair.User
	if user == nil {
		me, err := s.backend.Me(ctx)
		if err == nil {
			user = &me
			if err := s.store.SetUser(user); err != nil {
				logger.Error("failed to persist user", "error", err)
			}
		}
	}

	return s.settleAuthenticated(ctx, user), nil
}

// AcceptPolicy accepts a single policy version and re-checks the gate. When
// no required policies remain the state moves to Authenticated.
func (s *Service) AcceptPolicy(ctx context.Context, policy models.PolicyStatus) (State, error) {
	if err := s.backend.AcceptPolicy(ctx, policy.PolicyType, policy.Version); err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return s.State(), err
	}
	return s.settleAuthenticated(ctx, s.User()), nil
}

// Logout invalidates the session server-side on a best-effort basis and
// always clears local state.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.backend.Logout(ctx); err != nil {
		logger.Warn("server-side logout failed", "error", err)
	}

	if err := s.store.Clear(); err != nil {
		return err
	}
	s.setState(StateAnonymous, nil)
	return nil
}

// settleAuthenticated decides between Authenticated and PolicyGate for a
// user with working credentials.
func (s *Service) settleAuthenticated(ctx context.Context, user *models.User) State {
	statuses, err := s.backend.PolicyStatus(ctx)
	if err != nil {
		// The gate fails open; the backend enforces policies regardless.
		logger.Warn("policy status check failed", "error", err)
		s.setState(StateAuthenticated, nil)
		return StateAuthenticated
	}

	outstanding := models.OutstandingPolicies(statuses)
	if len(outstanding) > 0 {
		s.mu.Lock()
		s.policies = outstanding
		s.mu.Unlock()
		s.setState(StatePolicyGate, user)
		return StatePolicyGate
	}

	s.mu.Lock()
	s.policies = nil
	s.mu.Unlock()
	s.setState(StateAuthenticated, user)
	return StateAuthenticated
}

// watch reacts to token lifecycle broadcasts and drives the proactive
// refresh timer.
func (s *Service) watch() {
	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	sub := s.busSub
	for {
		select {
		case ev, ok := <-sub:
			if !ok {
				sub = nil
				continue
			}
			s.handleBusEvent(ev)

		case <-ticker.C:
			if s.State() != StateAuthenticated {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := s.backend.RefreshTokens(ctx); err != nil {
				logger.Warn("scheduled token refresh failed", "error", err)
			}
			cancel()

		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) handleBusEvent(ev events.Event) {
	switch ev.(type) {
	case events.RefreshFailed:
		// The refresh token is dead. Sign out locally so the UI can drop
		// to the login screen instead of looping on 401s.
		if s.State() == StateAnonymous {
			return
		}
		if err := s.store.Clear(); err != nil {
			logger.Error("failed to clear session", "error", err)
		}
		s.mu.Lock()
		s.state = StateAnonymous
		s.policies = nil
		s.mu.Unlock()
		s.sendEvent(Event{Type: EventSessionExpired, State: StateAnonymous})

	case events.TokensRefreshed:
		// The client already persisted the new pair through the store.
	}
}

// setState records a new state and broadcasts the transition.
func (s *Service) setState(state State, user *models.User) {
	s.mu.Lock()
	changed := s.state != state
	s.state = state
	s.mu.Unlock()

	if changed {
		s.sendEvent(Event{Type: EventStateChanged, State: state, User: user})
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
	}
}

// Close stops the background watcher.
func (s *Service) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		if s.bus != nil && s.busSub != nil {
			s.bus.Unsubscribe(s.busSub)
		}
	})
	return nil
}

// isUnauthorized reports whether err is a 401 from the backend.
func isUnauthorized(err error) bool {
	var apiErr *api.APIError
	return errors.As(err, &apiErr) && apiErr.Status == 401
}
