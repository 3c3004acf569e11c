package optimize

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentcost/agentcost-tui/internal/app"
	"github.com/agentcost/agentcost-tui/internal/config"
	"github.com/agentcost/agentcost-tui/internal/models"
)

func stateWithSuggestions() *app.State {
	state := app.NewState()
	state.SetProjectConfig(config.ProjectConfig{APIKey: "ak_test"})
	state.SetOptimizations(
		[]models.OptimizationSuggestion{
			{
				Type:             models.RecommendationModelDowngrade,
				Title:            "Switch researcher to gpt-4o-mini",
				AgentName:        "researcher",
				Model:            "gpt-4o",
				AlternativeModel: "gpt-4o-mini",
				EstimatedSavings: 42.50,
				SavingsPercent:   35,
			},
			{
				Type:      models.RecommendationCaching,
				Title:     "Cache repeated prompts",
				AgentName: "support-bot",
				Model:     "claude-sonnet",
			},
		},
		[]models.Recommendation{
			{
				ID:        "rec-1",
				Type:      models.RecommendationModelDowngrade,
				Status:    models.RecommendationPending,
				AgentName: "researcher",
				Model:     "gpt-4o",
			},
		},
		models.OptimizationSummary{PendingCount: 1, EstimatedMonthlySavings: 42.50},
		models.EmptyReasonNone,
	)
	return state
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestMatchRecommendation(t *testing.T) {
	s := models.OptimizationSuggestion{
		Type:      models.RecommendationModelDowngrade,
		AgentName: "researcher",
		Model:     "gpt-4o",
	}
	pending := []models.Recommendation{
		{ID: "rec-0", Type: models.RecommendationCaching, Status: models.RecommendationPending},
		{ID: "rec-1", Type: models.RecommendationModelDowngrade, Status: models.RecommendationPending,
			AgentName: "researcher", Model: "gpt-4o"},
	}

	rec, ok := matchRecommendation(s, pending)
	if !ok || rec.ID != "rec-1" {
		t.Errorf("match = %v, %v; want rec-1, true", rec.ID, ok)
	}

	if _, ok := matchRecommendation(s, nil); ok {
		t.Error("empty pending list should not match")
	}
}

func TestImplement_EmitsRequest(t *testing.T) {
	m := New(stateWithSuggestions())

	_, cmd := m.Update(keyMsg('i'))
	if cmd == nil {
		t.Fatal("implement on a matched suggestion should emit a request")
	}
	req, ok := cmd().(app.ImplementRequestMsg)
	if !ok || req.ID != "rec-1" {
		t.Errorf("msg = %+v, want ImplementRequestMsg{rec-1}", req)
	}
}

func TestImplement_UnmatchedSuggestionIsInert(t *testing.T) {
	m := New(stateWithSuggestions())
	m.cursor = 1 // caching suggestion has no pending recommendation

	if _, cmd := m.Update(keyMsg('i')); cmd != nil {
		t.Error("unmatched suggestion should not emit a request")
	}
}

func TestDismiss_FeedbackFlow(t *testing.T) {
	m := New(stateWithSuggestions())

	m.Update(keyMsg('d'))
	if m.mode != modeFeedback {
		t.Fatalf("mode = %v, want modeFeedback", m.mode)
	}

	m.feedback.SetValue("not relevant")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("confirm should emit a dismiss request")
	}
	req, ok := cmd().(app.DismissRequestMsg)
	if !ok || req.ID != "rec-1" || req.Feedback != "not relevant" {
		t.Errorf("msg = %+v", req)
	}
	if m.mode != modeList {
		t.Error("confirm should return to the list")
	}
}

func TestDismiss_Cancel(t *testing.T) {
	m := New(stateWithSuggestions())

	m.Update(keyMsg('d'))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeList || m.dismissing != "" {
		t.Error("esc should cancel the dismiss prompt")
	}
}

func TestGuidanceModal(t *testing.T) {
	m := New(stateWithSuggestions())
	m.SetSize(100, 40)

	m.Update(app.ImplementResultMsg{ID: "rec-1", Steps: []string{"Update the model name", "Deploy"}})
	if m.mode != modeGuidance {
		t.Fatal("implement result with steps should open the guidance modal")
	}
	view := m.View()
	if !strings.Contains(view, "Update the model name") {
		t.Error("guidance view missing step text")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeList {
		t.Error("esc should close the guidance modal")
	}
	if cmd == nil {
		t.Fatal("closing the guidance modal should emit a command")
	}
	if _, ok := cmd().(app.GuidanceClosedMsg); !ok {
		t.Error("closing the guidance modal should request the deferred refetch")
	}
}

func TestCursorMovement(t *testing.T) {
	m := New(stateWithSuggestions())

	m.Update(keyMsg('j'))
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
	m.Update(keyMsg('j'))
	if m.cursor != 1 {
		t.Error("cursor should clamp at the last suggestion")
	}
	m.Update(keyMsg('k'))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestView_EmptyReasons(t *testing.T) {
	tests := []struct {
		reason models.EmptyReason
		want   string
	}{
		{models.EmptyReasonNoData, "No usage data yet"},
		{models.EmptyReasonInsufficientData, "Not enough usage history"},
		{models.EmptyReasonNoBaselines, "Baselines are still being computed"},
		{models.EmptyReasonOptimized, "looks optimized"},
	}

	for _, tt := range tests {
		state := app.NewState()
		state.SetProjectConfig(config.ProjectConfig{APIKey: "ak_test"})
		state.SetOptimizations(nil, nil, models.OptimizationSummary{EmptyReason: tt.reason}, tt.reason)

		m := New(state)
		m.SetSize(100, 40)
		if !strings.Contains(m.View(), tt.want) {
			t.Errorf("reason %q: view missing %q", tt.reason, tt.want)
		}
	}
}

func TestView_Summary(t *testing.T) {
	m := New(stateWithSuggestions())
	m.SetSize(100, 40)

	view := m.View()
	if !strings.Contains(view, "$42.50") {
		t.Error("view missing estimated savings")
	}
	if !strings.Contains(view, "Switch researcher") {
		t.Error("view missing suggestion title")
	}
}
