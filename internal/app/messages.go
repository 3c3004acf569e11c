package app

import (
	"time"

	"github.com/agentcost/agentcost-tui/internal/config"
	"github.com/agentcost/agentcost-tui/internal/models"
	"github.com/agentcost/agentcost-tui/internal/services"
	"github.com/agentcost/agentcost-tui/internal/services/session"
)

// TickMsg drives periodic UI updates (toast expiry, relative timestamps).
type TickMsg struct {
	Time time.Time
}

// TabSwitchMsg switches the active tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the full help overlay.
type ToggleHelpMsg struct{}

// StartLoadingMsg marks a named resource as loading.
type StartLoadingMsg struct {
	Resource string
	Message  string
}

// StopLoadingMsg marks a named resource as done.
type StopLoadingMsg struct {
	Resource string
}

// AddNotificationMsg shows a toast notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg removes a toast by ID.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg prunes expired toasts.
type ClearExpiredNotificationsMsg struct{}

// ErrorMsg reports a failure from a command.
type ErrorMsg struct {
	Err     error
	Context string
}

// SubscriptionEventMsg delivers the channel created by subscribing to the
// service manager.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ServiceEventMsg wraps a service manager event delivered on the main
// subscription channel.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SessionChangedMsg reflects a session lifecycle transition.
type SessionChangedMsg struct {
	State    session.State
	User     *models.User
	Policies []models.PolicyStatus
}

// SessionInitializedMsg carries the result of the startup session restore.
type SessionInitializedMsg struct {
	State session.State
}

// LoginRequestMsg asks for a sign-in attempt with the given credentials.
type LoginRequestMsg struct {
	Email      string
	Password   string
	RememberMe bool
}

// LogoutRequestMsg asks for the current session to be signed out.
type LogoutRequestMsg struct{}

// AcceptPolicyRequestMsg asks for an outstanding policy to be accepted.
type AcceptPolicyRequestMsg struct {
	Policy models.PolicyStatus
}

// LoginResultMsg carries the outcome of a sign-in attempt.
type LoginResultMsg struct {
	State session.State
	Err   error
}

// LogoutResultMsg carries the outcome of signing out.
type LogoutResultMsg struct {
	Err error
}

// PolicyAcceptResultMsg carries the outcome of accepting a policy.
type PolicyAcceptResultMsg struct {
	State session.State
	Err   error
}

// ConfigChangedMsg reflects a change to the persisted project config.
type ConfigChangedMsg struct {
	Config config.ProjectConfig
}

// AnalyticsLoadedMsg carries a joined analytics snapshot.
type AnalyticsLoadedMsg struct {
	Range     models.TimeRange
	Analytics models.AnalyticsFull
}

// TimeRangeChangedMsg selects a new reporting window.
type TimeRangeChangedMsg struct {
	Range models.TimeRange
}

// EventsLoadedMsg carries one page of the event log. FromCache is set when
// the API was unreachable and the page came from the local database.
type EventsLoadedMsg struct {
	Page      models.EventPage
	FromCache bool
}

// EventsPageRequestMsg asks for a different page of the event log.
type EventsPageRequestMsg struct {
	Limit  int
	Offset int
}

// OptimizationsLoadedMsg carries the optimization surface.
type OptimizationsLoadedMsg struct {
	Suggestions []models.OptimizationSuggestion
	Pending     []models.Recommendation
	Summary     models.OptimizationSummary
	EmptyReason models.EmptyReason
}

// ImplementRequestMsg asks to mark a recommendation as implemented.
type ImplementRequestMsg struct {
	ID string
}

// ImplementResultMsg carries the outcome of implementing a recommendation,
// including the guidance steps to display on success.
type ImplementResultMsg struct {
	ID    string
	Steps []string
	Err   error
}

// GuidanceClosedMsg signals that the implementation guidance modal was
// closed, which triggers the deferred optimization refetch.
type GuidanceClosedMsg struct{}

// DismissRequestMsg asks to dismiss a recommendation.
type DismissRequestMsg struct {
	ID       string
	Feedback string
}

// DismissResultMsg carries the outcome of dismissing a recommendation.
type DismissResultMsg struct {
	ID  string
	Err error
}

// TeamLoadedMsg carries the member and invitation lists for a project.
type TeamLoadedMsg struct {
	Roster models.TeamRoster
	Err    error
}

// TeamActionMsg asks for a membership mutation.
type TeamActionMsg struct {
	Action    TeamAction
	ProjectID string
	UserID    string
	Email     string
	Role      models.Role
	InviteID  string
}

// TeamAction identifies a membership mutation.
type TeamAction int

const (
	TeamInvite TeamAction = iota
	TeamRemoveMember
	TeamUpdateRole
	TeamCancelInvite
	TeamLeave
)

// TeamActionResultMsg carries the outcome of a membership mutation.
type TeamActionResultMsg struct {
	Action TeamAction
	Err    error
}

// CreateProjectRequestMsg asks to create a project and persist its API key.
type CreateProjectRequestMsg struct {
	Name string
}

// ProjectCreatedMsg carries the outcome of creating a project.
type ProjectCreatedMsg struct {
	Project models.Project
	Err     error
}

// DeleteProjectRequestMsg asks to delete the current project.
type DeleteProjectRequestMsg struct {
	ProjectID string
}

// ProjectDeletedMsg carries the outcome of deleting a project.
type ProjectDeletedMsg struct {
	Err error
}

// UpdateConfigRequestMsg asks to persist new project settings.
type UpdateConfigRequestMsg struct {
	Config config.ProjectConfig
}

// RefreshMsg triggers a manual refresh of the active tab's data.
type RefreshMsg struct{}

// DailySpendLoadedMsg carries the locally cached spend trend.
type DailySpendLoadedMsg struct {
	Points []models.DailySpendPoint
}
