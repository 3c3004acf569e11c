package optimize

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agentcost/agentcost-tui/internal/format"
	"github.com/agentcost/agentcost-tui/internal/models"
	"github.com/agentcost/agentcost-tui/internal/ui/components"
	"github.com/agentcost/agentcost-tui/internal/ui/styles"
)

// View renders the optimize tab.
func (m *Model) View() string {
	if !m.state.IsConfigured() {
		hint := styles.HelpStyle.Render("Configure a project in Settings to see optimization suggestions.")
		return styles.CenterBoth(hint, m.width, m.height)
	}

	if m.state.IsLoading("optimizations") && !m.state.OptimizationsLoaded() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	if m.mode == modeGuidance {
		return m.renderGuidance()
	}

	var sections []string
	sections = append(sections, styles.TitleStyle.Render("Optimize"))
	sections = append(sections, m.renderSummary())

	suggestions := m.state.Suggestions()
	if len(suggestions) == 0 {
		sections = append(sections, "")
		sections = append(sections, styles.HelpStyle.Render(emptyMessage(m.state.EmptyReason())))
	} else {
		sections = append(sections, m.renderSuggestions(suggestions))
	}

	if m.mode == modeFeedback {
		sections = append(sections, m.renderFeedbackPrompt())
	}

	return styles.DocStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

// renderSummary renders the pending-count and savings header card.
func (m *Model) renderSummary() string {
	summary := m.state.OptimizationSummary()

	parts := []string{
		fmt.Sprintf("%s pending", format.Count(int64(summary.PendingCount))),
		fmt.Sprintf("%s implemented", format.Count(int64(summary.ImplementedCount))),
	}
	line := styles.SubTitleStyle.Render(strings.Join(parts, "  ·  "))

	savings := styles.SavingsStyle.Render(
		fmt.Sprintf("Est. %s/mo if all pending are implemented", format.Currency(summary.EstimatedMonthlySavings)))

	body := lipgloss.JoinVertical(lipgloss.Left, line, savings)
	if summary.RealizedMonthlySavings > 0 {
		realized := styles.SuccessTextStyle.Render(
			fmt.Sprintf("Saving %s/mo from implemented changes", format.Currency(summary.RealizedMonthlySavings)))
		body = lipgloss.JoinVertical(lipgloss.Left, body, realized)
	}

	return styles.CardStyle.Width(max(m.width-6, 40)).Render(body)
}

// renderSuggestions renders the suggestion list with the cursor row
// highlighted.
func (m *Model) renderSuggestions(suggestions []models.OptimizationSuggestion) string {
	pending := m.state.PendingRecommendations()

	var rows []string
	for i, s := range suggestions {
		rows = append(rows, m.renderSuggestion(s, pending, i == m.cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderSuggestion renders a single suggestion card.
func (m *Model) renderSuggestion(s models.OptimizationSuggestion, pending []models.Recommendation, selected bool) string {
	title := s.Title
	if selected {
		title = "› " + title
	} else {
		title = "  " + title
	}

	titleStyle := styles.CardTitleStyle
	if selected {
		titleStyle = titleStyle.Foreground(styles.Primary)
	}

	savings := styles.SavingsStyle.Render(
		fmt.Sprintf("%s/mo (%s)", format.Currency(s.EstimatedSavings), format.Percentage(s.SavingsPercent)))

	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, titleStyle.Render(title), "  ", typeBadge(s.Type), "  ", savings),
		styles.HelpStyle.Render("  " + s.Description),
	}

	if _, ok := matchRecommendation(s, pending); ok {
		if selected {
			lines = append(lines, styles.HelpStyle.Render("  i implement · d dismiss"))
		}
	} else {
		lines = append(lines, styles.HelpStyle.Render("  (informational, no pending action)"))
	}

	card := styles.CardStyle.Width(max(m.width-6, 40))
	if selected {
		card = card.BorderForeground(styles.Primary)
	}
	return card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderFeedbackPrompt renders the dismiss-with-feedback input.
func (m *Model) renderFeedbackPrompt() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Dismiss recommendation"),
		m.feedback.View(),
		styles.HelpStyle.Render("enter confirm · esc cancel"),
	)
	return styles.FocusedBorderStyle.Width(max(m.width-6, 40)).Render(body)
}

// renderGuidance renders the implementation steps modal.
func (m *Model) renderGuidance() string {
	title := m.guidanceTitle
	if title == "" {
		title = "Implementation steps"
	}

	lines := []string{styles.CardTitleStyle.Render(title), ""}
	for i, step := range m.guidanceSteps {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, step))
	}
	lines = append(lines, "", styles.HelpStyle.Render("enter/esc close"))

	modal := styles.ModalContentStyle.Width(min(max(m.width-10, 40), 80)).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
	return styles.CenterBoth(modal, m.width, m.height)
}

// typeBadge renders a short colored label for the recommendation type.
func typeBadge(t models.RecommendationType) string {
	switch t {
	case models.RecommendationModelDowngrade:
		return styles.SeverityLowStyle.Render("[model]")
	case models.RecommendationCaching:
		return styles.SeverityLowStyle.Render("[caching]")
	case models.RecommendationErrorReduction:
		return styles.SeverityMediumStyle.Render("[errors]")
	case models.RecommendationAnomalyAlert:
		return styles.SeverityHighStyle.Render("[anomaly]")
	case models.RecommendationLatency:
		return styles.SeverityMediumStyle.Render("[latency]")
	default:
		return styles.HelpStyle.Render("[" + string(t) + "]")
	}
}

// emptyMessage maps an empty-list reason to user guidance.
func emptyMessage(reason models.EmptyReason) string {
	switch reason {
	case models.EmptyReasonNoData:
		return "No usage data yet. Send some events and check back."
	case models.EmptyReasonInsufficientData:
		return "Not enough usage history to analyze yet. Check back in a few days."
	case models.EmptyReasonNoBaselines:
		return "Baselines are still being computed. Check back soon."
	case models.EmptyReasonOptimized:
		return "Your spend looks optimized. Nothing to suggest right now."
	default:
		return "No suggestions available."
	}
}
