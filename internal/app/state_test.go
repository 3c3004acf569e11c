package app

import (
	"testing"
	"time"

	"github.com/agentcost/agentcost-tui/internal/config"
	"github.com/agentcost/agentcost-tui/internal/models"
	"github.com/agentcost/agentcost-tui/internal/services/session"
)

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if s.SessionState() != session.StateUninitialized {
		t.Errorf("SessionState() = %v, want uninitialized", s.SessionState())
	}
	if s.TimeRange() != models.TimeRange7Days {
		t.Errorf("TimeRange() = %v, want 7d", s.TimeRange())
	}
	if s.AnalyticsLoaded() {
		t.Error("AnalyticsLoaded should be false")
	}
}

func TestState_Session(t *testing.T) {
	s := NewState()

	user := &models.User{ID: "u1", Email: "dev@example.com"}
	policies := []models.PolicyStatus{{PolicyType: "terms", Required: true}}
	s.SetSession(session.StatePolicyGate, user, policies)

	if s.SessionState() != session.StatePolicyGate {
		t.Errorf("SessionState() = %v, want policy-gate", s.SessionState())
	}
	if got := s.User(); got == nil || got.Email != "dev@example.com" {
		t.Errorf("User() = %+v", got)
	}
	if len(s.Policies()) != 1 {
		t.Errorf("Policies() = %v", s.Policies())
	}
}

func TestState_ProjectConfig(t *testing.T) {
	s := NewState()

	if s.IsConfigured() {
		t.Error("IsConfigured should be false before a key is set")
	}

	s.SetProjectConfig(config.ProjectConfig{APIKey: "ak_test", ProjectID: "proj-1"})
	if !s.IsConfigured() {
		t.Error("IsConfigured should be true")
	}
	if s.ProjectConfig().ProjectID != "proj-1" {
		t.Errorf("ProjectConfig().ProjectID = %q", s.ProjectConfig().ProjectID)
	}

	s.SetProjectConfig(config.ProjectConfig{})
	if s.IsConfigured() {
		t.Error("IsConfigured should be false after clearing")
	}
}

func TestState_Analytics(t *testing.T) {
	s := NewState()

	full := models.AnalyticsFull{
		Overview: models.AnalyticsOverview{TotalCost: 12.5, TotalCalls: 30},
	}
	s.SetAnalytics(models.TimeRange30Days, full)

	if !s.AnalyticsLoaded() {
		t.Error("AnalyticsLoaded should be true")
	}
	if s.TimeRange() != models.TimeRange30Days {
		t.Errorf("TimeRange() = %v, want 30d", s.TimeRange())
	}
	if s.Analytics().Overview.TotalCost != 12.5 {
		t.Errorf("TotalCost = %v", s.Analytics().Overview.TotalCost)
	}
	if s.AnalyticsUpdated().IsZero() {
		t.Error("AnalyticsUpdated should be set")
	}
}

func TestState_Events(t *testing.T) {
	s := NewState()

	page := models.EventPage{
		Events: []models.Event{{ID: "evt-1"}},
		Total:  1,
		Limit:  50,
	}
	s.SetEvents(page, true)

	got, fromCache := s.Events()
	if !fromCache {
		t.Error("fromCache should be true")
	}
	if len(got.Events) != 1 || got.Events[0].ID != "evt-1" {
		t.Errorf("Events() = %+v", got)
	}
	if !s.EventsLoaded() {
		t.Error("EventsLoaded should be true")
	}
}

func TestState_Optimizations(t *testing.T) {
	s := NewState()

	suggestions := []models.OptimizationSuggestion{{Type: models.RecommendationCaching}}
	pending := []models.Recommendation{{ID: "r1", Status: models.RecommendationPending}}
	summary := models.OptimizationSummary{PendingCount: 1}
	s.SetOptimizations(suggestions, pending, summary, models.EmptyReasonNone)

	if !s.OptimizationsLoaded() {
		t.Error("OptimizationsLoaded should be true")
	}
	if len(s.Suggestions()) != 1 {
		t.Errorf("Suggestions() = %v", s.Suggestions())
	}
	if len(s.PendingRecommendations()) != 1 {
		t.Errorf("PendingRecommendations() = %v", s.PendingRecommendations())
	}
	if s.OptimizationSummary().PendingCount != 1 {
		t.Errorf("Summary = %+v", s.OptimizationSummary())
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationSuccess, "done", time.Minute)
	if id == "" {
		t.Fatal("AddNotification returned empty ID")
	}
	if len(s.Notifications()) != 1 {
		t.Fatalf("Notifications() = %v", s.Notifications())
	}

	s.RemoveNotification(id)
	if len(s.Notifications()) != 0 {
		t.Error("notification should be removed")
	}
}

func TestState_NotificationCap(t *testing.T) {
	s := NewState()

	for i := 0; i < maxNotifications+5; i++ {
		s.AddNotification(NotificationInfo, "msg", time.Minute)
	}
	if got := len(s.Notifications()); got != maxNotifications {
		t.Errorf("len(Notifications()) = %d, want %d", got, maxNotifications)
	}
}

func TestState_ClearExpiredNotifications(t *testing.T) {
	s := NewState()

	s.AddNotification(NotificationInfo, "expired", time.Nanosecond)
	s.AddNotification(NotificationInfo, "persistent", 0)
	time.Sleep(5 * time.Millisecond)

	s.ClearExpiredNotifications()

	got := s.Notifications()
	if len(got) != 1 || got[0].Message != "persistent" {
		t.Errorf("Notifications() = %+v, want only persistent", got)
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("Loading...")
	if len(s.Notifications()) != 1 {
		t.Fatal("loading notification not added")
	}

	// Replaces in place rather than appending
	s.SetLoadingNotification("Refreshing...")
	got := s.Notifications()
	if len(got) != 1 || got[0].Message != "Refreshing..." {
		t.Errorf("Notifications() = %+v", got)
	}
	if got[0].ID != LoadingNotificationID {
		t.Errorf("ID = %q, want %q", got[0].ID, LoadingNotificationID)
	}

	s.RemoveNotification(LoadingNotificationID)
	if len(s.Notifications()) != 0 {
		t.Error("loading notification should be removed")
	}
}

func TestState_Loading(t *testing.T) {
	s := NewState()

	s.SetLoading("analytics", true)
	if !s.IsLoading("analytics") {
		t.Error("analytics should be loading")
	}
	if !s.IsAnyLoading() {
		t.Error("IsAnyLoading should be true")
	}

	s.SetLoading("analytics", false)
	if s.IsAnyLoading() {
		t.Error("IsAnyLoading should be false")
	}
}

func TestNotification_IsExpired(t *testing.T) {
	n := Notification{CreatedAt: time.Now().Add(-time.Hour), Duration: time.Minute}
	if !n.IsExpired() {
		t.Error("old notification should be expired")
	}

	persistent := Notification{CreatedAt: time.Now().Add(-time.Hour), Duration: 0}
	if persistent.IsExpired() {
		t.Error("zero-duration notification never expires")
	}
}
