// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/agentcost/agentcost-tui/internal/api"
	"github.com/agentcost/agentcost-tui/internal/format"
	"github.com/agentcost/agentcost-tui/internal/services"
	"github.com/agentcost/agentcost-tui/internal/services/session"
	"github.com/agentcost/agentcost-tui/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabDashboard is the ID for the dashboard tab.
	TabDashboard TabID = iota
	// TabEvents is the ID for the event log tab.
	TabEvents
	// TabOptimize is the ID for the optimizations tab.
	TabOptimize
	// TabTeam is the ID for the team tab.
	TabTeam
	// TabAccount is the ID for the account tab.
	TabAccount
	// TabSettings is the ID for the settings tab.
	TabSettings
)

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabDashboard:
		return "Dashboard"
	case TabEvents:
		return "Events"
	case TabOptimize:
		return "Optimize"
	case TabTeam:
		return "Team"
	case TabAccount:
		return "Account"
	case TabSettings:
		return "Settings"
	default:
		return "Unknown"
	}
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1        key.Binding
	Tab2        key.Binding
	Tab3        key.Binding
	Tab4        key.Binding
	Tab5        key.Binding
	Tab6        key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	Refresh     key.Binding
	TimeRange   key.Binding
	Help        key.Binding
	Quit        key.Binding
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Enter       key.Binding
	Escape      key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Home        key.Binding
	End         key.Binding
	SwitchFocus key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setTabKeys(km)
	km = setActionKeys(km)
	km = setNavigationKeys(km)
	km = setListKeys(km)
	return km
}

func setTabKeys(k KeyMap) KeyMap {
	k.Tab1 = key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard"))
	k.Tab2 = key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "events"))
	k.Tab3 = key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "optimize"))
	k.Tab4 = key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "team"))
	k.Tab5 = key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "account"))
	k.Tab6 = key.NewBinding(key.WithKeys("6"), key.WithHelp("6", "settings"))
	k.NextTab = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab"))
	k.PrevTab = key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab"))
	return k
}

func setActionKeys(k KeyMap) KeyMap {
	k.Refresh = key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh"))
	k.TimeRange = key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "time range"))
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
	return k
}

func setNavigationKeys(k KeyMap) KeyMap {
	k.Up = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	k.Down = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	k.Left = key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left"))
	k.Right = key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right"))
	k.Enter = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select"))
	k.Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	k.SwitchFocus = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch focus"))
	return k
}

func setListKeys(k KeyMap) KeyMap {
	k.PageUp = key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up"))
	k.PageDown = key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down"))
	k.Home = key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "go to top"))
	k.End = key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "go to bottom"))
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4, k.Tab5, k.Tab6},
		{k.NextTab, k.PrevTab},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Refresh, k.TimeRange, k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	// Tab bar styles
	TabBar       lipgloss.Style
	ActiveTab    lipgloss.Style
	InactiveTab  lipgloss.Style
	TabSeparator lipgloss.Style

	// Notification styles
	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	// Content styles
	Content lipgloss.Style
	Help    lipgloss.Style
	Spinner lipgloss.Style
	Toast   lipgloss.Style

	// Common styles
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(subtle).Padding(0, 2)
	s.TabSeparator = lipgloss.NewStyle().Foreground(subtle).SetString(" | ")

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Help = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)
	s.Spinner = lipgloss.NewStyle().Foreground(highlight)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)
	s.Error = lipgloss.NewStyle().Foreground(errorColor)
	s.Success = lipgloss.NewStyle().Foreground(success)
	s.Warning = lipgloss.NewStyle().Foreground(warning)

	return s
}

// Model is the main application model.
type Model struct {
	// Tab management
	activeTab TabID
	tabs      []Tab
	tabNames  []string

	// Shared state
	state    *State
	services *services.Manager
	commands *Commands
	keymap   KeyMap
	styles   Styles

	// UI components
	spinner spinner.Model

	// Window dimensions
	width  int
	height int

	// UI state
	showHelp bool
	ready    bool

	// Service subscription
	eventChannel chan services.ServiceEvent
}

// NewModel initializes a new application model.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := &Model{
		activeTab: TabDashboard,
		tabNames:  []string{"Dashboard", "Events", "Optimize", "Team", "Account", "Settings"},
		tabs:      make([]Tab, 6),
		state:     NewState(),
		services:  mgr,
		commands:  NewCommands(mgr),
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}

	return m
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetServices returns the service manager.
func (m *Model) GetServices() *services.Manager {
	return m.services
}

// GetCommands returns the commands helper.
func (m *Model) GetCommands() *Commands {
	return m.commands
}

// GetKeyMap returns the key bindings.
func (m *Model) GetKeyMap() KeyMap {
	return m.keymap
}

// GetStyles returns the application styles.
func (m *Model) GetStyles() Styles {
	return m.styles
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading...")

	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		m.state.SetProjectConfig(m.services.ConfigStore().Get())
		m.state.SetLoading("session", true)
		cmds = append(cmds, subscribeToServicesCmd(m.services))
		cmds = append(cmds, initializeSessionCmd(m.services))
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd, handled := m.handleKeyMsg(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		// Keys consumed by a global binding are not forwarded to the tab.
		if handled {
			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg, spinner.TickMsg:
		if cmd := m.handleTeaMsg(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	default:
		if appCmds := m.handleAppMsg(msg); len(appCmds) > 0 {
			cmds = append(cmds, appCmds...)
		}
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleTeaMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)
	case spinner.TickMsg:
		return m.handleSpinnerTick(msg)
	}
	return nil
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		cmds = append(cmds, m.handleTick())
	case SubscriptionEventMsg:
		cmds = append(cmds, m.handleSubscriptionEvent(msg)...)
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEventMsg(msg)...)
	case SessionInitializedMsg:
		cmds = append(cmds, m.handleSessionInitialized(msg)...)
	case LoginRequestMsg:
		m.state.SetLoading("session", true)
		cmds = append(cmds, loginCmd(m.services, msg.Email, msg.Password, msg.RememberMe))
	case LogoutRequestMsg:
		cmds = append(cmds, logoutCmd(m.services))
	case AcceptPolicyRequestMsg:
		cmds = append(cmds, acceptPolicyCmd(m.services, msg.Policy))
	case LoginResultMsg:
		cmds = append(cmds, m.handleLoginResult(msg)...)
	case LogoutResultMsg:
		cmds = append(cmds, m.handleLogoutResult(msg)...)
	case PolicyAcceptResultMsg:
		cmds = append(cmds, m.handlePolicyAcceptResult(msg)...)
	case TimeRangeChangedMsg:
		cmds = append(cmds, m.handleTimeRangeChanged(msg)...)
	case EventsPageRequestMsg:
		m.state.SetLoading("events", true)
		cmds = append(cmds, refreshEventsCmd(m.services, msg.Limit, msg.Offset))
	case ImplementRequestMsg:
		cmds = append(cmds, implementCmd(m.services, msg.ID))
	case ImplementResultMsg:
		cmds = append(cmds, m.handleImplementResult(msg)...)
	case GuidanceClosedMsg:
		if m.services != nil {
			m.state.SetLoading("optimizations", true)
			cmds = append(cmds, refreshOptimizationsCmd(m.services))
		}
	case DismissRequestMsg:
		cmds = append(cmds, dismissCmd(m.services, msg.ID, msg.Feedback))
	case DismissResultMsg:
		cmds = append(cmds, m.handleDismissResult(msg)...)
	case TeamLoadedMsg:
		cmds = append(cmds, m.handleTeamLoaded(msg)...)
	case TeamActionMsg:
		cmds = append(cmds, teamActionCmd(m.services, msg))
	case TeamActionResultMsg:
		cmds = append(cmds, m.handleTeamActionResult(msg)...)
	case CreateProjectRequestMsg:
		cmds = append(cmds, createProjectCmd(m.services, msg.Name))
	case ProjectCreatedMsg:
		cmds = append(cmds, m.handleProjectCreated(msg)...)
	case DeleteProjectRequestMsg:
		cmds = append(cmds, deleteProjectCmd(m.services, msg.ProjectID))
	case ProjectDeletedMsg:
		cmds = append(cmds, m.handleProjectDeleted(msg)...)
	case DailySpendLoadedMsg:
		m.state.SetDailySpend(msg.Points)
	case UpdateConfigRequestMsg:
		cmds = append(cmds, m.handleUpdateConfig(msg)...)
	case AddNotificationMsg:
		cmds = append(cmds, m.handleAddNotification(msg)...)
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()
	case StartLoadingMsg:
		m.handleStartLoading(msg)
	case StopLoadingMsg:
		m.handleStopLoading(msg)
	case ErrorMsg:
		cmds = append(cmds, notifyErrorCmd(api.FriendlyMessage(msg.Err)))
	case RefreshMsg:
		cmds = append(cmds, m.handleRefresh()...)
	case TabSwitchMsg:
		m.activeTab = msg.Tab
		m.updateTabSizes()
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return cmds
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.updateTabSizes()
}

func (m *Model) handleSpinnerTick(msg spinner.TickMsg) tea.Cmd {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return cmd
}

func (m *Model) handleTick() tea.Cmd {
	m.state.ClearExpiredNotifications()
	return defaultTickCmd()
}

func (m *Model) handleSubscriptionEvent(msg SubscriptionEventMsg) []tea.Cmd {
	m.eventChannel = msg.Channel
	return []tea.Cmd{waitForServiceEventCmd(m.eventChannel)}
}

func (m *Model) handleServiceEventMsg(msg ServiceEventMsg) []tea.Cmd {
	var cmds []tea.Cmd
	if cmd := m.handleServiceEvent(msg.Event); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.eventChannel != nil {
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	}
	return cmds
}

func (m *Model) handleSessionInitialized(msg SessionInitializedMsg) []tea.Cmd {
	var cmds []tea.Cmd
	m.state.SetLoading("session", false)

	svc := m.services.Session()
	m.state.SetSession(msg.State, svc.User(), svc.OutstandingPolicies())

	if m.state.IsConfigured() {
		cmds = append(cmds, m.refreshAllCmds()...)
	} else {
		m.state.RemoveNotification(LoadingNotificationID)
	}

	if msg.State == session.StatePolicyGate {
		cmds = append(cmds, func() tea.Msg { return TabSwitchMsg{Tab: TabAccount} })
	}
	return cmds
}

func (m *Model) handleLoginResult(msg LoginResultMsg) []tea.Cmd {
	var cmds []tea.Cmd
	m.state.SetLoading("session", false)
	if msg.Err != nil {
		return append(cmds, notifyErrorCmd(api.FriendlyMessage(msg.Err)))
	}

	svc := m.services.Session()
	m.state.SetSession(msg.State, svc.User(), svc.OutstandingPolicies())

	if msg.State == session.StateAuthenticated {
		cmds = append(cmds, notifySuccessCmd("Signed in"))
	}
	return cmds
}

func (m *Model) handleLogoutResult(msg LogoutResultMsg) []tea.Cmd {
	if msg.Err != nil {
		return []tea.Cmd{notifyErrorCmd(api.FriendlyMessage(msg.Err))}
	}
	return []tea.Cmd{notifyInfoCmd("Signed out")}
}

func (m *Model) handlePolicyAcceptResult(msg PolicyAcceptResultMsg) []tea.Cmd {
	var cmds []tea.Cmd
	if msg.Err != nil {
		return append(cmds, notifyErrorCmd(api.FriendlyMessage(msg.Err)))
	}

	svc := m.services.Session()
	m.state.SetSession(msg.State, svc.User(), svc.OutstandingPolicies())

	if msg.State == session.StateAuthenticated {
		cmds = append(cmds, notifySuccessCmd("Policies accepted"))
	}
	return cmds
}

func (m *Model) handleTimeRangeChanged(msg TimeRangeChangedMsg) []tea.Cmd {
	m.state.SetTimeRange(msg.Range)
	if !m.state.IsConfigured() {
		return nil
	}
	m.state.SetLoading("analytics", true)
	m.state.SetLoadingNotification("Refreshing...")
	return []tea.Cmd{refreshAnalyticsCmd(m.services, msg.Range)}
}

func (m *Model) handleImplementResult(msg ImplementResultMsg) []tea.Cmd {
	if msg.Err != nil {
		return []tea.Cmd{notifyErrorCmd(api.FriendlyMessage(msg.Err))}
	}

	toast := "Recommendation marked as implemented"
	for _, r := range m.state.PendingRecommendations() {
		if r.ID == msg.ID {
			toast = fmt.Sprintf("Recommendation implemented, saving %s/mo",
				format.Currency(r.EstimatedMonthlySavings))
			break
		}
	}
	m.state.RemovePendingRecommendation(msg.ID)

	// The full refetch waits until the guidance modal is closed.
	return []tea.Cmd{notifySuccessCmd(toast)}
}

func (m *Model) handleDismissResult(msg DismissResultMsg) []tea.Cmd {
	if msg.Err != nil {
		return []tea.Cmd{notifyErrorCmd(api.FriendlyMessage(msg.Err))}
	}
	return []tea.Cmd{
		notifyInfoCmd("Recommendation dismissed"),
		refreshOptimizationsCmd(m.services),
	}
}

func (m *Model) handleTeamLoaded(msg TeamLoadedMsg) []tea.Cmd {
	m.state.SetLoading("team", false)
	if msg.Err != nil {
		return []tea.Cmd{notifyErrorCmd(api.FriendlyMessage(msg.Err))}
	}
	m.state.SetRoster(msg.Roster)
	return nil
}

func (m *Model) handleTeamActionResult(msg TeamActionResultMsg) []tea.Cmd {
	if msg.Err != nil {
		return []tea.Cmd{notifyErrorCmd(api.FriendlyMessage(msg.Err))}
	}

	var cmds []tea.Cmd
	switch msg.Action {
	case TeamInvite:
		cmds = append(cmds, notifySuccessCmd("Invitation sent"))
	case TeamRemoveMember:
		cmds = append(cmds, notifySuccessCmd("Member removed"))
	case TeamUpdateRole:
		cmds = append(cmds, notifySuccessCmd("Role updated"))
	case TeamCancelInvite:
		cmds = append(cmds, notifyInfoCmd("Invitation cancelled"))
	case TeamLeave:
		cmds = append(cmds, notifyInfoCmd("Left project"))
	}

	if projectID := m.state.ProjectConfig().ProjectID; projectID != "" {
		m.state.SetLoading("team", true)
		cmds = append(cmds, loadTeamCmd(m.services, projectID))
	}
	return cmds
}

func (m *Model) handleProjectCreated(msg ProjectCreatedMsg) []tea.Cmd {
	if msg.Err != nil {
		return []tea.Cmd{notifyErrorCmd(api.FriendlyMessage(msg.Err))}
	}
	return append(
		[]tea.Cmd{notifySuccessCmd(fmt.Sprintf("Project %q created", msg.Project.Name))},
		m.refreshAllCmds()...,
	)
}

func (m *Model) handleProjectDeleted(msg ProjectDeletedMsg) []tea.Cmd {
	if msg.Err != nil {
		return []tea.Cmd{notifyErrorCmd(api.FriendlyMessage(msg.Err))}
	}
	return []tea.Cmd{notifyInfoCmd("Project deleted")}
}

func (m *Model) handleUpdateConfig(msg UpdateConfigRequestMsg) []tea.Cmd {
	if m.services == nil {
		return nil
	}
	if err := m.services.ConfigStore().Set(msg.Config); err != nil {
		return []tea.Cmd{notifyErrorCmd(fmt.Sprintf("Failed to save settings: %v", err))}
	}
	m.state.SetProjectConfig(msg.Config)
	return []tea.Cmd{notifySuccessCmd("Settings saved")}
}

func (m *Model) handleAddNotification(msg AddNotificationMsg) []tea.Cmd {
	var cmds []tea.Cmd
	id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
	if msg.Duration > 0 {
		cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
	}
	return cmds
}

func (m *Model) handleStartLoading(msg StartLoadingMsg) {
	m.state.SetLoading(msg.Resource, true)
	message := msg.Message
	if message == "" {
		message = "Refreshing..."
	}
	m.state.SetLoadingNotification(message)
}

func (m *Model) handleStopLoading(msg StopLoadingMsg) {
	m.state.SetLoading(msg.Resource, false)
	if !m.state.IsAnyLoading() {
		m.state.RemoveNotification(LoadingNotificationID)
	}
}

// refreshAllCmds reloads every dashboard surface.
func (m *Model) refreshAllCmds() []tea.Cmd {
	if m.services == nil {
		return nil
	}
	tr := m.state.TimeRange()
	m.state.SetLoading("analytics", true)
	m.state.SetLoading("events", true)
	m.state.SetLoading("optimizations", true)
	return []tea.Cmd{
		refreshAnalyticsCmd(m.services, tr),
		refreshEventsCmd(m.services, 50, 0),
		refreshOptimizationsCmd(m.services),
	}
}

func (m *Model) handleRefresh() []tea.Cmd {
	if m.services == nil {
		return nil
	}

	switch m.activeTab {
	case TabEvents:
		m.state.SetLoading("events", true)
		return []tea.Cmd{refreshEventsCmd(m.services, 50, 0)}
	case TabOptimize:
		m.state.SetLoading("optimizations", true)
		return []tea.Cmd{refreshOptimizationsCmd(m.services)}
	case TabTeam:
		if projectID := m.state.ProjectConfig().ProjectID; projectID != "" {
			m.state.SetLoading("team", true)
			return []tea.Cmd{loadTeamCmd(m.services, projectID)}
		}
		return nil
	default:
		m.state.SetLoading("analytics", true)
		return []tea.Cmd{refreshAnalyticsCmd(m.services, m.state.TimeRange())}
	}
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateTabSizes() {
	contentHeight := m.height - 5
	contentHeight = max(0, contentHeight)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

// inputCapturer is implemented by tabs whose current mode consumes free
// typing. While capturing, only ctrl+c keeps its global meaning.
type inputCapturer interface {
	CapturingInput() bool
}

func (m *Model) tabCapturesInput() bool {
	if int(m.activeTab) >= len(m.tabs) || m.tabs[m.activeTab] == nil {
		return false
	}
	c, ok := m.tabs[m.activeTab].(inputCapturer)
	return ok && c.CapturingInput()
}

// handleKeyMsg resolves global keybindings. The second return value reports
// whether the key was consumed globally; consumed keys are not forwarded to
// the active tab.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.tabCapturesInput() {
		if msg.Type == tea.KeyCtrlC {
			return tea.Quit, true
		}
		return nil, false
	}

	// Global keybindings (work regardless of tab)
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit, true

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return nil, true

	case key.Matches(msg, m.keymap.Tab1):
		return m.switchTab(TabDashboard), true

	case key.Matches(msg, m.keymap.Tab2):
		return m.switchTab(TabEvents), true

	case key.Matches(msg, m.keymap.Tab3):
		return m.switchTab(TabOptimize), true

	case key.Matches(msg, m.keymap.Tab4):
		return m.switchTab(TabTeam), true

	case key.Matches(msg, m.keymap.Tab5):
		return m.switchTab(TabAccount), true

	case key.Matches(msg, m.keymap.Tab6):
		return m.switchTab(TabSettings), true

	case key.Matches(msg, m.keymap.NextTab):
		if !m.showHelp {
			return m.switchTab(TabID((int(m.activeTab) + 1) % len(m.tabs))), true
		}
		return nil, true

	case key.Matches(msg, m.keymap.PrevTab):
		if !m.showHelp {
			return m.switchTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs))), true
		}
		return nil, true

	case key.Matches(msg, m.keymap.Refresh):
		return tea.Batch(m.handleRefresh()...), true

	case key.Matches(msg, m.keymap.Escape):
		if m.showHelp {
			m.showHelp = false
			return nil, true
		}
	}

	// Let the tab handle other keys
	return nil, false
}

func (m *Model) switchTab(tab TabID) tea.Cmd {
	m.activeTab = tab
	m.updateTabSizes()

	// Team data is fetched lazily; everything else arrives via service events.
	if tab == TabTeam && m.services != nil {
		if _, loaded := m.state.Roster(); !loaded {
			if projectID := m.state.ProjectConfig().ProjectID; projectID != "" && m.state.SessionState() == session.StateAuthenticated {
				m.state.SetLoading("team", true)
				return loadTeamCmd(m.services, projectID)
			}
		}
	}
	return nil
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.SessionChangedEvent:
		m.state.SetSession(e.State, e.User, e.Policies)
		return func() tea.Msg {
			return SessionChangedMsg{State: e.State, User: e.User, Policies: e.Policies}
		}

	case services.ConfigChangedEvent:
		wasConfigured := m.state.IsConfigured()
		m.state.SetProjectConfig(e.Config)
		if !wasConfigured && m.state.IsConfigured() {
			return tea.Batch(m.refreshAllCmds()...)
		}
		return func() tea.Msg {
			return ConfigChangedMsg{Config: e.Config}
		}

	case services.AnalyticsUpdatedEvent:
		m.state.SetAnalytics(e.Range, e.Analytics)
		m.state.SetLoading("analytics", false)
		if !m.state.IsAnyLoading() {
			m.state.RemoveNotification(LoadingNotificationID)
		}
		return tea.Batch(
			func() tea.Msg {
				return AnalyticsLoadedMsg{Range: e.Range, Analytics: e.Analytics}
			},
			loadDailySpendCmd(m.services, e.Range),
		)

	case services.EventsUpdatedEvent:
		m.state.SetEvents(e.Page, e.FromCache)
		m.state.SetLoading("events", false)
		if !m.state.IsAnyLoading() {
			m.state.RemoveNotification(LoadingNotificationID)
		}
		var cmds []tea.Cmd
		if e.FromCache {
			cmds = append(cmds, notifyWarningCmd("API unreachable, showing cached events"))
		}
		cmds = append(cmds, func() tea.Msg {
			return EventsLoadedMsg{Page: e.Page, FromCache: e.FromCache}
		})
		return tea.Batch(cmds...)

	case services.OptimizationsUpdatedEvent:
		m.state.SetOptimizations(e.Suggestions, e.Pending, e.Summary, e.EmptyReason)
		m.state.SetLoading("optimizations", false)
		if !m.state.IsAnyLoading() {
			m.state.RemoveNotification(LoadingNotificationID)
		}
		return func() tea.Msg {
			return OptimizationsLoadedMsg{
				Suggestions: e.Suggestions,
				Pending:     e.Pending,
				Summary:     e.Summary,
				EmptyReason: e.EmptyReason,
			}
		}

	case services.ErrorEvent:
		m.state.SetLoading(e.Service, false)
		m.state.SetLastError(e.Error)
		if !m.state.IsAnyLoading() {
			m.state.RemoveNotification(LoadingNotificationID)
		}
		return notifyErrorCmd(api.FriendlyMessage(e.Error))
	}

	return nil
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	mainView := b.String()

	if m.showHelp {
		helpView := m.renderHelp()
		mainView = m.overlayCentered(mainView, helpView)
	}

	notifications := m.renderNotifications()

	if len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayHeight := len(overlayLines)
	overlayWidth := lipgloss.Width(overlay)

	// Calculate center position
	y := (m.height - overlayHeight) / 2
	x := (m.width - overlayWidth) / 2

	if y < 0 {
		y = 0
	}
	if x < 0 {
		x = 0
	}

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]

		// Truncate main line to the start of the overlay
		left := ansi.Truncate(mainLine, x, "")

		// Skip 'x + overlayWidth' visual cells for the right part
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		// If the line was shorter than the overlay start, pad it
		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	var tabs []string

	for i, name := range m.tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.Notifications()
	if len(notifications) == 0 {
		return nil
	}

	var toasts []string
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		}

		if n.ID == LoadingNotificationID {
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toast := m.styles.Toast.Render(content)
		toasts = append(toasts, toast)
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	if len(toasts) == 0 {
		return mainView
	}

	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	toastWidth := lipgloss.Width(toastStack)
	startX := max(m.width-toastWidth-2, 0)

	startY := 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		mainLineWidth := lipgloss.Width(mainLine)

		if mainLineWidth < startX {
			padding := strings.Repeat(" ", startX-mainLineWidth)
			mainLines[lineIdx] = mainLine + padding + toastLine
		} else {
			truncated := ansi.Truncate(mainLine, startX, "")
			mainLines[lineIdx] = truncated + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	var lines []string

	lines = append(lines, m.styles.Title.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Navigation"))
	lines = append(lines, "  1-6        Switch tabs")
	lines = append(lines, "  Tab        Next tab")
	lines = append(lines, "  Shift+Tab  Previous tab")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Actions"))
	lines = append(lines, "  r          Refresh data")
	lines = append(lines, "  t          Cycle time range")
	lines = append(lines, "  ?          Toggle help")
	lines = append(lines, "  q/Ctrl+C   Quit")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Lists"))
	lines = append(lines, "  j/k, ↑/↓   Move up/down")
	lines = append(lines, "  Enter      Select item")
	lines = append(lines, "")

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		tabHelp := m.tabs[m.activeTab].ShortHelp()
		if len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tab", m.tabNames[m.activeTab])))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
		}
	}

	lines = append(lines, "")
	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		m.activeTab+1,
		m.tabNames[m.activeTab],
		m.styles.Subtle.Render("This tab is not yet implemented."),
	)
	return m.styles.Content.Render(content)
}
