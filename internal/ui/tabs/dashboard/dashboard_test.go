package dashboard

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentcost/agentcost-tui/internal/app"
	"github.com/agentcost/agentcost-tui/internal/config"
	"github.com/agentcost/agentcost-tui/internal/models"
)

func configuredState() *app.State {
	state := app.NewState()
	state.SetProjectConfig(config.ProjectConfig{APIKey: "ak_test", ProjectID: "proj-1"})
	return state
}

func TestView_Onboarding(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(100, 30)

	view := m.View()
	if !strings.Contains(view, "No project is configured") {
		t.Error("unconfigured state should show onboarding")
	}
	if !strings.Contains(view, "Settings") {
		t.Error("onboarding should point at the settings tab")
	}
}

func TestView_Analytics(t *testing.T) {
	state := configuredState()
	state.SetAnalytics(models.TimeRange7Days, models.AnalyticsFull{
		Overview: models.AnalyticsOverview{
			TotalCost:    123.45,
			TotalCalls:   4200,
			ErrorRate:    2.5,
			AvgLatencyMS: 850,
		},
		Agents: []models.AgentStats{
			{AgentName: "researcher", TotalCost: 80, TotalCalls: 2000},
		},
		Models: []models.ModelStats{
			{Model: "gpt-4o", Provider: "openai", TotalCost: 100},
		},
		TimeSeries: []models.TimeSeriesPoint{
			{Cost: 10, Calls: 100},
			{Cost: 20, Calls: 200},
		},
	})

	m := New(state)
	m.SetSize(120, 40)

	view := m.View()
	for _, want := range []string{"Spend Overview", "$123.45", "researcher", "gpt-4o"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestView_CostShareMeters(t *testing.T) {
	state := configuredState()
	state.SetAnalytics(models.TimeRange7Days, models.AnalyticsFull{
		Models: []models.ModelStats{
			{Model: "gpt-4o", Provider: "openai", TotalCost: 75},
			{Model: "claude-sonnet", Provider: "anthropic", TotalCost: 25},
		},
		TimeSeries: []models.TimeSeriesPoint{{Cost: 10, Calls: 100}},
	})

	m := New(state)
	m.SetSize(120, 100)

	view := m.View()
	if !strings.Contains(view, "Cost share") {
		t.Error("models card should include cost share meters")
	}
	for _, want := range []string{"75%", "25%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing cost share %q", want)
		}
	}
}

func TestView_SpendTrend(t *testing.T) {
	state := configuredState()
	state.SetAnalytics(models.TimeRange7Days, models.AnalyticsFull{
		TimeSeries: []models.TimeSeriesPoint{
			{Cost: 10, Calls: 100},
			{Cost: 20, Calls: 200},
		},
	})
	state.SetDailySpend([]models.DailySpendPoint{
		{TotalCost: 10, Calls: 100},
		{TotalCost: 20, Calls: 150},
	})

	m := New(state)
	m.SetSize(120, 100)

	view := m.View()
	if !strings.Contains(view, "cost vs calls") {
		t.Error("spend chart should plot cost against calls when there is call activity")
	}
	for _, want := range []string{"Local trend:", "Call volume:"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestView_SpendChartWithoutCalls(t *testing.T) {
	state := configuredState()
	state.SetAnalytics(models.TimeRange7Days, models.AnalyticsFull{
		TimeSeries: []models.TimeSeriesPoint{
			{Cost: 10},
			{Cost: 20},
		},
	})

	m := New(state)
	m.SetSize(120, 100)

	if strings.Contains(m.View(), "cost vs calls") {
		t.Error("spend chart should fall back to a single series without call activity")
	}
}

func TestUpdate_TimeRangeKey(t *testing.T) {
	m := New(configuredState())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if cmd == nil {
		t.Fatal("t should emit a time range change")
	}
	msg := cmd()
	changed, ok := msg.(app.TimeRangeChangedMsg)
	if !ok {
		t.Fatalf("msg = %T, want TimeRangeChangedMsg", msg)
	}
	if changed.Range != models.TimeRange7Days.Next() {
		t.Errorf("Range = %v, want %v", changed.Range, models.TimeRange7Days.Next())
	}
}

func TestHelp(t *testing.T) {
	m := New(app.NewState())
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp should not be empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp should not be empty")
	}
}
