package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/agentcost/agentcost-tui/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestDB_SnapshotRoundTrip(t *testing.T) {
	database := newTestDB(t)

	snap := &models.SpendSnapshot{
		TimeRange:    models.TimeRange7Days,
		TotalCost:    12.34,
		TotalCalls:   1500,
		TotalTokens:  250000,
		AvgLatencyMS: 840,
		ErrorRate:    0.02,
	}
	if err := database.InsertSnapshot(snap); err != nil {
		t.Fatalf("InsertSnapshot() error = %v", err)
	}
	if snap.ID == 0 {
		t.Errorf("InsertSnapshot() did not assign an id")
	}

	got, err := database.LatestSnapshot(models.TimeRange7Days)
	if err != nil {
		t.Fatalf("LatestSnapshot() error = %v", err)
	}
	if got == nil {
		t.Fatal("LatestSnapshot() = nil, want snapshot")
	}
	if got.TotalCost != 12.34 || got.TotalCalls != 1500 {
		t.Errorf("LatestSnapshot() = %+v", got)
	}
}

func TestDB_LatestSnapshotScopedToRange(t *testing.T) {
	database := newTestDB(t)

	_ = database.InsertSnapshot(&models.SpendSnapshot{
		TimeRange: models.TimeRange7Days,
		TotalCost: 10,
	})

	got, err := database.LatestSnapshot(models.TimeRange30Days)
	if err != nil {
		t.Fatalf("LatestSnapshot() error = %v", err)
	}
	if got != nil {
		t.Errorf("LatestSnapshot(30d) = %+v, want nil for unrecorded range", got)
	}
}

func TestDB_LatestSnapshotPicksNewest(t *testing.T) {
	database := newTestDB(t)

	old := &models.SpendSnapshot{
		Timestamp: time.Now().Add(-2 * time.Hour),
		TimeRange: models.TimeRange24Hours,
		TotalCost: 1,
	}
	recent := &models.SpendSnapshot{
		Timestamp: time.Now(),
		TimeRange: models.TimeRange24Hours,
		TotalCost: 2,
	}
	_ = database.InsertSnapshot(old)
	_ = database.InsertSnapshot(recent)

	got, err := database.LatestSnapshot(models.TimeRange24Hours)
	if err != nil {
		t.Fatalf("LatestSnapshot() error = %v", err)
	}
	if got == nil || got.TotalCost != 2 {
		t.Errorf("LatestSnapshot() = %+v, want the newer reading", got)
	}
}

func TestDB_DailySpend(t *testing.T) {
	database := newTestDB(t)

	now := time.Now().UTC()
	for _, snap := range []models.SpendSnapshot{
		{Timestamp: now.Add(-48 * time.Hour), TimeRange: models.TimeRange7Days, TotalCost: 4, TotalCalls: 100},
		{Timestamp: now.Add(-24 * time.Hour), TimeRange: models.TimeRange7Days, TotalCost: 6, TotalCalls: 200},
		{Timestamp: now.Add(-23 * time.Hour), TimeRange: models.TimeRange7Days, TotalCost: 8, TotalCalls: 250},
	} {
		s := snap
		if err := database.InsertSnapshot(&s); err != nil {
			t.Fatal(err)
		}
	}

	points, err := database.DailySpend(models.TimeRange7Days)
	if err != nil {
		t.Fatalf("DailySpend() error = %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("DailySpend() returned %d points, want 2", len(points))
	}

	// Oldest first; same-day snapshots are averaged.
	if points[0].TotalCost != 4 {
		t.Errorf("points[0].TotalCost = %v, want 4", points[0].TotalCost)
	}
	if points[1].TotalCost != 7 {
		t.Errorf("points[1].TotalCost = %v, want avg 7", points[1].TotalCost)
	}
	if points[1].Snapshots != 2 {
		t.Errorf("points[1].Snapshots = %d, want 2", points[1].Snapshots)
	}
}

func TestDB_EventCacheRoundTrip(t *testing.T) {
	database := newTestDB(t)

	events := []models.Event{
		{
			ID:           "e1",
			Timestamp:    time.Now().Add(-time.Minute),
			AgentName:    "support-bot",
			Model:        "gpt-4o",
			Provider:     "openai",
			InputTokens:  1200,
			OutputTokens: 300,
			Cost:         0.015,
			LatencyMS:    840,
			Status:       "success",
		},
		{
			ID:           "e2",
			Timestamp:    time.Now(),
			AgentName:    "indexer",
			Model:        "claude-sonnet",
			Cost:         0.002,
			Status:       "error",
			ErrorMessage: "rate limited",
		},
	}
	if err := database.CacheEvents(events); err != nil {
		t.Fatalf("CacheEvents() error = %v", err)
	}

	got, err := database.CachedEvents(10)
	if err != nil {
		t.Fatalf("CachedEvents() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("CachedEvents() returned %d events, want 2", len(got))
	}
	// Newest first.
	if got[0].ID != "e2" {
		t.Errorf("got[0].ID = %q, want e2", got[0].ID)
	}
	if got[1].AgentName != "support-bot" || got[1].Provider != "openai" {
		t.Errorf("got[1] = %+v", got[1])
	}

	// Re-caching the same page is an upsert, not a duplicate.
	events[1].Status = "success"
	events[1].ErrorMessage = ""
	if err := database.CacheEvents(events); err != nil {
		t.Fatalf("CacheEvents() upsert error = %v", err)
	}
	got, _ = database.CachedEvents(10)
	if len(got) != 2 {
		t.Errorf("upsert created duplicates: %d events", len(got))
	}
	if got[0].Status != "success" {
		t.Errorf("upsert did not update status: %q", got[0].Status)
	}
}

func TestDB_Prune(t *testing.T) {
	database := newTestDB(t)

	_ = database.InsertSnapshot(&models.SpendSnapshot{
		Timestamp: time.Now().Add(-100 * 24 * time.Hour),
		TimeRange: models.TimeRange90Days,
		TotalCost: 1,
	})
	_ = database.InsertSnapshot(&models.SpendSnapshot{
		Timestamp: time.Now(),
		TimeRange: models.TimeRange90Days,
		TotalCost: 2,
	})

	if err := database.Prune(90); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	got, err := database.LatestSnapshot(models.TimeRange90Days)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.TotalCost != 2 {
		t.Errorf("recent snapshot should survive prune: %+v", got)
	}

	points, err := database.DailySpend(models.TimeRange90Days)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range points {
		if p.TotalCost == 1 {
			t.Errorf("pruned snapshot still present: %+v", p)
		}
	}
}
