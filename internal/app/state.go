package app

import (
	"sync"
	"time"

	"github.com/agentcost/agentcost-tui/internal/config"
	"github.com/agentcost/agentcost-tui/internal/models"
	"github.com/agentcost/agentcost-tui/internal/services/session"
)

// NotificationType defines the severity of a notification.
type NotificationType int

const (
	NotificationInfo NotificationType = iota
	NotificationSuccess
	NotificationWarning
	NotificationError
)

// LoadingNotificationID is the reserved ID for the global loading toast.
const LoadingNotificationID = "__loading__"

// maxNotifications caps the toast stack; oldest entries are dropped first.
const maxNotifications = 10

// Notification is a transient message shown as a toast overlay.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired reports whether the notification should be removed.
func (n Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// State is the shared application state read by every tab. All access is
// guarded; tabs read it during View and the root model writes it when
// service events arrive.
type State struct {
	mu sync.RWMutex

	// Session
	sessionState session.State
	user         *models.User
	policies     []models.PolicyStatus

	// Project configuration
	projectConfig config.ProjectConfig
	configured    bool

	// Analytics
	timeRange        models.TimeRange
	analytics        models.AnalyticsFull
	analyticsLoaded  bool
	analyticsUpdated time.Time
	dailySpend       []models.DailySpendPoint

	// Event log
	eventPage       models.EventPage
	eventsFromCache bool
	eventsLoaded    bool

	// Optimizations
	suggestions []models.OptimizationSuggestion
	pending     []models.Recommendation
	optSummary  models.OptimizationSummary
	emptyReason models.EmptyReason
	optLoaded   bool

	// Team
	roster       models.TeamRoster
	rosterLoaded bool

	// UI
	notifications []Notification
	loading       map[string]bool
	lastError     error
}

// NewState creates an empty application state.
func NewState() *State {
	return &State{
		sessionState: session.StateUninitialized,
		timeRange:    models.TimeRange7Days,
		loading:      make(map[string]bool),
	}
}

// SetSession stores the current session state, user, and outstanding
// policies.
func (s *State) SetSession(state session.State, user *models.User, policies []models.PolicyStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionState = state
	s.user = user
	s.policies = policies
}

// SessionState returns the current session lifecycle state.
func (s *State) SessionState() session.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionState
}

// User returns the signed-in user, or nil.
func (s *State) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Policies returns the policies blocking the session, if any.
func (s *State) Policies() []models.PolicyStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policies
}

// SetProjectConfig stores the persisted project configuration.
func (s *State) SetProjectConfig(cfg config.ProjectConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projectConfig = cfg
	s.configured = cfg.APIKey != ""
}

// ProjectConfig returns the persisted project configuration.
func (s *State) ProjectConfig() config.ProjectConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projectConfig
}

// IsConfigured reports whether a project API key is set.
func (s *State) IsConfigured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.configured
}

// SetTimeRange stores the selected reporting window.
func (s *State) SetTimeRange(tr models.TimeRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeRange = tr
}

// TimeRange returns the selected reporting window.
func (s *State) TimeRange() models.TimeRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeRange
}

// SetAnalytics stores a joined analytics snapshot for tr.
func (s *State) SetAnalytics(tr models.TimeRange, a models.AnalyticsFull) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeRange = tr
	s.analytics = a
	s.analyticsLoaded = true
	s.analyticsUpdated = time.Now()
}

// Analytics returns the last loaded analytics snapshot.
func (s *State) Analytics() models.AnalyticsFull {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analytics
}

// AnalyticsLoaded reports whether analytics have been fetched at least once.
func (s *State) AnalyticsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analyticsLoaded
}

// AnalyticsUpdated returns when analytics were last refreshed.
func (s *State) AnalyticsUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analyticsUpdated
}

// SetDailySpend stores the locally cached spend trend.
func (s *State) SetDailySpend(points []models.DailySpendPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailySpend = points
}

// DailySpend returns the locally cached spend trend.
func (s *State) DailySpend() []models.DailySpendPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dailySpend
}

// SetEvents stores one page of the event log.
func (s *State) SetEvents(page models.EventPage, fromCache bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventPage = page
	s.eventsFromCache = fromCache
	s.eventsLoaded = true
}

// Events returns the current event page and whether it came from the local
// cache rather than the API.
func (s *State) Events() (models.EventPage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventPage, s.eventsFromCache
}

// EventsLoaded reports whether the event log has been fetched at least once.
func (s *State) EventsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventsLoaded
}

// SetOptimizations stores the optimization surface.
func (s *State) SetOptimizations(suggestions []models.OptimizationSuggestion, pending []models.Recommendation, summary models.OptimizationSummary, reason models.EmptyReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions = suggestions
	s.pending = pending
	s.optSummary = summary
	s.emptyReason = reason
	s.optLoaded = true
}

// Suggestions returns the current display suggestions.
func (s *State) Suggestions() []models.OptimizationSuggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.suggestions
}

// PendingRecommendations returns the actionable recommendations.
func (s *State) PendingRecommendations() []models.Recommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// RemovePendingRecommendation drops one recommendation from the pending
// list so the UI reflects an implement or dismiss before the refetch lands.
func (s *State) RemovePendingRecommendation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]models.Recommendation, 0, len(s.pending))
	for _, r := range s.pending {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.pending = kept
}

// OptimizationSummary returns the aggregate optimization counters.
func (s *State) OptimizationSummary() models.OptimizationSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.optSummary
}

// EmptyReason returns why the suggestion list is empty, if it is.
func (s *State) EmptyReason() models.EmptyReason {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emptyReason
}

// OptimizationsLoaded reports whether optimizations have been fetched.
func (s *State) OptimizationsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.optLoaded
}

// SetRoster stores the team roster for the current project.
func (s *State) SetRoster(roster models.TeamRoster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster = roster
	s.rosterLoaded = true
}

// Roster returns the team roster and whether it has been loaded.
func (s *State) Roster() (models.TeamRoster, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster, s.rosterLoaded
}

// AddNotification appends a notification and returns its ID. The loading
// toast keeps a fixed ID so it can be replaced and removed.
func (s *State) AddNotification(nType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := time.Now().Format("20060102150405.000000000")
	n := Notification{
		ID:        id,
		Type:      nType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, n)
	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}
	return id
}

// SetLoadingNotification replaces the loading toast message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID == LoadingNotificationID {
			s.notifications[i].Message = message
			s.notifications[i].CreatedAt = time.Now()
			return
		}
	}
	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationInfo,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// RemoveNotification removes the notification with the given ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications drops notifications past their duration.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if !n.IsExpired() {
			kept = append(kept, n)
		}
	}
	s.notifications = kept
}

// Notifications returns a copy of the active notifications.
func (s *State) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// SetLoading marks a named resource as loading or done.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loading {
		s.loading[resource] = true
	} else {
		delete(s.loading, resource)
	}
}

// IsLoading reports whether the named resource is loading.
func (s *State) IsLoading(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading[resource]
}

// IsAnyLoading reports whether any resource is loading.
func (s *State) IsAnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.loading) > 0
}

// SetLastError records the most recent error for display.
func (s *State) SetLastError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err
}

// LastError returns the most recent error, or nil.
func (s *State) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}
