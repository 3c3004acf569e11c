// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/agentcost/agentcost-tui/internal/api"
	"github.com/agentcost/agentcost-tui/internal/config"
	"github.com/agentcost/agentcost-tui/internal/db"
	"github.com/agentcost/agentcost-tui/internal/events"
	"github.com/agentcost/agentcost-tui/internal/format"
	"github.com/agentcost/agentcost-tui/internal/logger"
	"github.com/agentcost/agentcost-tui/internal/models"
	"github.com/agentcost/agentcost-tui/internal/services/optimize"
	"github.com/agentcost/agentcost-tui/internal/services/session"
)

const cacheRetentionDays = 90

type (
	// SessionChangedEvent is emitted when the session lifecycle state moves.
	SessionChangedEvent struct {
		State    session.State
		User     *models.User
		Policies []models.PolicyStatus
	}

	// ConfigChangedEvent is emitted when the persisted project settings
	// change, from this process or an external one.
	ConfigChangedEvent struct {
		Config config.ProjectConfig
	}

	// AnalyticsUpdatedEvent is emitted when a joined analytics fetch lands.
	AnalyticsUpdatedEvent struct {
		Range     models.TimeRange
		Analytics models.AnalyticsFull
	}

	// EventsUpdatedEvent is emitted when an event-log page is fetched.
	// FromCache marks pages served from the local database while the
	// backend is unreachable.
	EventsUpdatedEvent struct {
		Page      models.EventPage
		FromCache bool
	}

	// OptimizationsUpdatedEvent is emitted when the optimization surface
	// is refetched.
	OptimizationsUpdatedEvent struct {
		Suggestions []models.OptimizationSuggestion
		Pending     []models.Recommendation
		Summary     models.OptimizationSummary
		EmptyReason models.EmptyReason
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SessionChangedEvent) isServiceEvent()       {}
func (ConfigChangedEvent) isServiceEvent()        {}
func (AnalyticsUpdatedEvent) isServiceEvent()     {}
func (EventsUpdatedEvent) isServiceEvent()        {}
func (OptimizationsUpdatedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()                {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	configStore *config.Store
	sessionSvc  *session.Service
	client      *api.Client
	optimizer   *optimize.Service
	database    *db.DB
	bus         *events.Bus

	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	stopOnce    sync.Once
	subscribers []chan<- ServiceEvent

	refreshReset chan time.Duration
	anomalySeen  map[string]bool
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		cfg:          cfg,
		bus:          events.NewBus(),
		eventChan:    make(chan ServiceEvent, 100),
		stopChan:     make(chan struct{}),
		refreshReset: make(chan time.Duration, 1),
		anomalySeen:  make(map[string]bool),
	}

	var err error
	m.configStore, err = config.NewStore(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config store: %w", err)
	}

	sessionStore, err := session.NewStore(cfg.SessionPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}

	m.client = api.New(cfg.APIURL, m.configStore, sessionStore, m.bus, nil)
	m.sessionSvc = session.New(sessionStore, m.client, m.bus, session.DefaultConfig())
	m.optimizer = optimize.New(m.client)

	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := m.database.Prune(cacheRetentionDays); err != nil {
		logger.Warn("cache prune failed", "error", err)
	}

	go m.routeEvents()
	go m.autoRefresh()

	return m, nil
}

// Initialize settles the persisted session against the backend. Called once
// at startup before the first frame.
func (m *Manager) Initialize(ctx context.Context) session.State {
	return m.sessionSvc.Initialize(ctx)
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.configStore.Events():
			m.handleConfigEvent(event)

		case event := <-m.sessionSvc.Events():
			m.handleSessionEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleConfigEvent(event config.Event) {
	switch event.Type {
	case config.EventConfigLoaded, config.EventConfigChanged:
		cfg := m.configStore.Get()
		m.broadcast(ConfigChangedEvent{Config: cfg})
		m.applyRefreshSettings(cfg)

	case config.EventError:
		m.broadcast(ErrorEvent{Service: "config", Error: event.Error})
	}
}

func (m *Manager) handleSessionEvent(event session.Event) {
	switch event.Type {
	case session.EventStateChanged, session.EventSessionExpired:
		m.broadcast(SessionChangedEvent{
			State:    event.State,
			User:     event.User,
			Policies: m.sessionSvc.OutstandingPolicies(),
		})

	case session.EventError:
		m.broadcast(ErrorEvent{Service: "session", Error: event.Error})
	}
}

// applyRefreshSettings restarts the auto-refresh ticker from the persisted
// project settings. An interval of zero disables it.
func (m *Manager) applyRefreshSettings(cfg config.ProjectConfig) {
	interval := time.Duration(cfg.RefreshInterval) * time.Second
	if interval <= 0 {
		interval = m.cfg.RefreshInterval
	}
	if !cfg.AutoRefresh {
		interval = 0
	}

	select {
	case m.refreshReset <- interval:
	default:
	}
}

// autoRefresh periodically refetches analytics when enabled in settings.
func (m *Manager) autoRefresh() {
	interval := m.cfg.RefreshInterval
	if cfg := m.configStore.Get(); !cfg.AutoRefresh {
		interval = 0
	}

	timer := time.NewTimer(nextTick(interval))
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			if m.client.IsConfigured() {
				m.RefreshAnalytics(context.Background(), models.TimeRange7Days)
			}
			timer.Reset(nextTick(interval))

		case interval = <-m.refreshReset:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(nextTick(interval))

		case <-m.stopChan:
			return
		}
	}
}

// nextTick maps a disabled interval to a long idle sleep so the loop keeps
// draining reset requests.
func nextTick(interval time.Duration) time.Duration {
	if interval <= 0 {
		return 24 * time.Hour
	}
	return interval
}

// RefreshAnalytics fetches overview, agents, models, and timeseries in
// parallel and joins them: any failure aborts the whole refresh with one
// error so pages never render half-updated data.
func (m *Manager) RefreshAnalytics(ctx context.Context, tr models.TimeRange) {
	var (
		wg       sync.WaitGroup
		full     models.AnalyticsFull
		firstErr error
		errMu    sync.Mutex
	)

	record := func(err error) {
		if err == nil {
			return
		}
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		var err error
		full.Overview, err = m.client.AnalyticsOverview(ctx, tr)
		record(err)
	}()
	go func() {
		defer wg.Done()
		var err error
		full.Agents, err = m.client.AnalyticsAgents(ctx, tr)
		record(err)
	}()
	go func() {
		defer wg.Done()
		var err error
		full.Models, err = m.client.AnalyticsModels(ctx, tr)
		record(err)
	}()
	go func() {
		defer wg.Done()
		var err error
		full.TimeSeries, err = m.client.AnalyticsTimeseries(ctx, tr)
		record(err)
	}()
	wg.Wait()

	if firstErr != nil {
		m.broadcast(ErrorEvent{Service: "analytics", Error: firstErr})
		return
	}

	m.recordSnapshot(tr, full.Overview)
	m.broadcast(AnalyticsUpdatedEvent{Range: tr, Analytics: full})
}

// recordSnapshot caches the overview reading and raises a desktop
// notification on a sharp spend increase.
func (m *Manager) recordSnapshot(tr models.TimeRange, overview models.AnalyticsOverview) {
	previous, err := m.database.LatestSnapshot(tr)
	if err != nil {
		logger.Warn("failed to read latest snapshot", "error", err)
	}

	snap := &models.SpendSnapshot{
		TimeRange:    tr,
		TotalCost:    overview.TotalCost,
		TotalCalls:   overview.TotalCalls,
		TotalTokens:  overview.TotalTokens,
		AvgLatencyMS: overview.AvgLatencyMS,
		ErrorRate:    overview.ErrorRate,
	}
	if err := m.database.InsertSnapshot(snap); err != nil {
		logger.Warn("failed to record snapshot", "error", err)
	}

	if previous != nil && previous.TotalCost > 0 && overview.TotalCost > previous.TotalCost*1.5 {
		title := "Spend spike detected"
		body := fmt.Sprintf("Spend for the last %s jumped from %s to %s",
			tr, format.Currency(previous.TotalCost), format.Currency(overview.TotalCost))
		_ = beeep.Notify(title, body, "")
	}
}

// RefreshEvents fetches one event-log page, falling back to the local cache
// when the backend is unreachable.
func (m *Manager) RefreshEvents(ctx context.Context, limit, offset int) {
	page, err := m.client.Events(ctx, limit, offset)
	if err != nil {
		cached, cacheErr := m.database.CachedEvents(limit)
		if cacheErr != nil || len(cached) == 0 {
			m.broadcast(ErrorEvent{Service: "events", Error: err})
			return
		}
		m.broadcast(EventsUpdatedEvent{
			Page:      models.EventPage{Events: cached, Total: int64(len(cached)), Limit: limit},
			FromCache: true,
		})
		return
	}

	if err := m.database.CacheEvents(page.Events); err != nil {
		logger.Warn("failed to cache events", "error", err)
	}
	m.broadcast(EventsUpdatedEvent{Page: page})
}

// RefreshOptimizations refetches the optimization surface and notifies on
// newly appeared anomaly alerts.
func (m *Manager) RefreshOptimizations(ctx context.Context) {
	if err := m.optimizer.Refresh(ctx); err != nil {
		m.broadcast(ErrorEvent{Service: "optimize", Error: err})
		return
	}

	pending := m.optimizer.Pending()
	m.notifyNewAnomalies(pending)

	m.broadcast(OptimizationsUpdatedEvent{
		Suggestions: m.optimizer.Suggestions(),
		Pending:     pending,
		Summary:     m.optimizer.Summary(),
		EmptyReason: m.optimizer.EmptyReason(),
	})
}

func (m *Manager) notifyNewAnomalies(pending []models.Recommendation) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range pending {
		if rec.Type != models.RecommendationAnomalyAlert || m.anomalySeen[rec.ID] {
			continue
		}
		m.anomalySeen[rec.ID] = true
		_ = beeep.Notify("Cost anomaly detected", rec.Title, "")
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Client returns the API client.
func (m *Manager) Client() *api.Client {
	return m.client
}

// Session returns the session service.
func (m *Manager) Session() *session.Service {
	return m.sessionSvc
}

// Optimizer returns the optimization workflow service.
func (m *Manager) Optimizer() *optimize.Service {
	return m.optimizer
}

// ConfigStore returns the persisted project settings store.
func (m *Manager) ConfigStore() *config.Store {
	return m.configStore
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// DailySpend returns the locally cached daily spend series.
func (m *Manager) DailySpend(tr models.TimeRange) ([]models.DailySpendPoint, error) {
	return m.database.DailySpend(tr)
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.sessionSvc.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := m.configStore.Close(); err != nil {
		errs = append(errs, err)
	}

	m.bus.Close()

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
