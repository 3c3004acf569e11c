package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentcost/agentcost-tui/internal/models"
	"github.com/agentcost/agentcost-tui/internal/services"
)

// DefaultTickInterval is how often the UI tick fires.
const DefaultTickInterval = 2 * time.Second

// Notification durations.
const (
	DefaultNotificationDuration = 5 * time.Second
	QuickNotificationDuration   = 3 * time.Second
	LongNotificationDuration    = 10 * time.Second
)

// commandTimeout bounds every user-initiated API call.
const commandTimeout = 30 * time.Second

// tickCmd returns a command that sends a TickMsg after the interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a tick command with the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// subscribeToServicesCmd subscribes to the service manager's event stream
// and hands the channel back to the model.
func subscribeToServicesCmd(manager *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ch, _ := manager.Subscribe()
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd waits for the next event on the subscription.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// initializeSessionCmd restores the persisted session at startup.
func initializeSessionCmd(manager *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return SessionInitializedMsg{State: manager.Initialize(ctx)}
	}
}

// loginCmd signs in with email and password.
func loginCmd(manager *services.Manager, email, password string, rememberMe bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		state, err := manager.Session().Login(ctx, email, password, rememberMe)
		return LoginResultMsg{State: state, Err: err}
	}
}

// logoutCmd signs out and clears the persisted session.
func logoutCmd(manager *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return LogoutResultMsg{Err: manager.Session().Logout(ctx)}
	}
}

// acceptPolicyCmd records acceptance of an outstanding policy.
func acceptPolicyCmd(manager *services.Manager, policy models.PolicyStatus) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		state, err := manager.Session().AcceptPolicy(ctx, policy)
		return PolicyAcceptResultMsg{State: state, Err: err}
	}
}

// refreshAnalyticsCmd triggers the joined analytics fetch. The result
// arrives as a service event on the subscription channel.
func refreshAnalyticsCmd(manager *services.Manager, tr models.TimeRange) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		manager.RefreshAnalytics(ctx, tr)
		return nil
	}
}

// refreshEventsCmd fetches one page of the event log.
func refreshEventsCmd(manager *services.Manager, limit, offset int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		manager.RefreshEvents(ctx, limit, offset)
		return nil
	}
}

// refreshOptimizationsCmd refreshes the optimization surface.
func refreshOptimizationsCmd(manager *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		manager.RefreshOptimizations(ctx)
		return nil
	}
}

// implementCmd marks a recommendation as implemented and returns guidance.
func implementCmd(manager *services.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		steps, err := manager.Optimizer().Implement(ctx, id)
		return ImplementResultMsg{ID: id, Steps: steps, Err: err}
	}
}

// dismissCmd dismisses a recommendation with optional feedback.
func dismissCmd(manager *services.Manager, id, feedback string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		err := manager.Optimizer().Dismiss(ctx, id, feedback)
		return DismissResultMsg{ID: id, Err: err}
	}
}

// loadTeamCmd fetches the member and invitation lists for a project.
func loadTeamCmd(manager *services.Manager, projectID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		roster, err := manager.Client().Members(ctx, projectID)
		return TeamLoadedMsg{Roster: roster, Err: err}
	}
}

// teamActionCmd performs a membership mutation.
func teamActionCmd(manager *services.Manager, msg TeamActionMsg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		client := manager.Client()
		var err error
		switch msg.Action {
		case TeamInvite:
			// The roster reload after the action picks up the new invitation.
			_, err = client.Invite(ctx, msg.ProjectID, msg.Email, msg.Role)
		case TeamRemoveMember:
			err = client.RemoveMember(ctx, msg.ProjectID, msg.UserID)
		case TeamUpdateRole:
			err = client.UpdateMemberRole(ctx, msg.ProjectID, msg.UserID, msg.Role)
		case TeamCancelInvite:
			err = client.CancelInvitation(ctx, msg.ProjectID, msg.InviteID)
		case TeamLeave:
			err = client.LeaveProject(ctx, msg.ProjectID)
		}
		return TeamActionResultMsg{Action: msg.Action, Err: err}
	}
}

// createProjectCmd creates a project and persists its API key so the
// dashboard starts reporting immediately.
func createProjectCmd(manager *services.Manager, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		project, err := manager.Client().CreateProject(ctx, name)
		if err != nil {
			return ProjectCreatedMsg{Err: err}
		}
		if project.APIKey != "" {
			if err := manager.ConfigStore().SetAPIKey(project.APIKey, project.ID); err != nil {
				return ProjectCreatedMsg{Project: project, Err: err}
			}
		}
		return ProjectCreatedMsg{Project: project}
	}
}

// deleteProjectCmd deletes a project and clears the stored credential.
func deleteProjectCmd(manager *services.Manager, projectID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		if err := manager.Client().DeleteProject(ctx, projectID); err != nil {
			return ProjectDeletedMsg{Err: err}
		}
		return ProjectDeletedMsg{Err: manager.ConfigStore().Clear()}
	}
}

// loadDailySpendCmd reads the locally cached spend trend.
func loadDailySpendCmd(manager *services.Manager, tr models.TimeRange) tea.Cmd {
	return func() tea.Msg {
		points, err := manager.DailySpend(tr)
		if err != nil {
			return nil
		}
		return DailySpendLoadedMsg{Points: points}
	}
}

// clearNotificationCmd removes a toast after the delay.
func clearNotificationCmd(id string, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd shows a success toast.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: NotificationSuccess, Message: message, Duration: QuickNotificationDuration}
	}
}

// notifyErrorCmd shows an error toast.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: NotificationError, Message: message, Duration: LongNotificationDuration}
	}
}

// notifyWarningCmd shows a warning toast.
func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: NotificationWarning, Message: message, Duration: DefaultNotificationDuration}
	}
}

// notifyInfoCmd shows an info toast.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: NotificationInfo, Message: message, Duration: DefaultNotificationDuration}
	}
}

// Commands exposes the command constructors to tab packages.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a Commands wrapper around the service manager.
func NewCommands(manager *services.Manager) *Commands {
	return &Commands{manager: manager}
}

// RefreshAnalytics triggers the joined analytics fetch for tr.
func (c *Commands) RefreshAnalytics(tr models.TimeRange) tea.Cmd {
	return refreshAnalyticsCmd(c.manager, tr)
}

// RefreshEvents fetches one page of the event log.
func (c *Commands) RefreshEvents(limit, offset int) tea.Cmd {
	return refreshEventsCmd(c.manager, limit, offset)
}

// RefreshOptimizations refreshes the optimization surface.
func (c *Commands) RefreshOptimizations() tea.Cmd {
	return refreshOptimizationsCmd(c.manager)
}

// Login signs in with email and password.
func (c *Commands) Login(email, password string, rememberMe bool) tea.Cmd {
	return loginCmd(c.manager, email, password, rememberMe)
}

// Logout signs out.
func (c *Commands) Logout() tea.Cmd {
	return logoutCmd(c.manager)
}

// AcceptPolicy records acceptance of an outstanding policy.
func (c *Commands) AcceptPolicy(policy models.PolicyStatus) tea.Cmd {
	return acceptPolicyCmd(c.manager, policy)
}

// LoadTeam fetches the member and invitation lists.
func (c *Commands) LoadTeam(projectID string) tea.Cmd {
	return loadTeamCmd(c.manager, projectID)
}

// LoadDailySpend reads the locally cached spend trend.
func (c *Commands) LoadDailySpend(tr models.TimeRange) tea.Cmd {
	return loadDailySpendCmd(c.manager, tr)
}

// NotifySuccess shows a success toast.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError shows an error toast.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning shows a warning toast.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo shows an info toast.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}
