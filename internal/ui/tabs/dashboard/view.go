package dashboard

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/agentcost/agentcost-tui/internal/format"
	"github.com/agentcost/agentcost-tui/internal/ui/components"
	"github.com/agentcost/agentcost-tui/internal/ui/styles"
)

// View renders the dashboard component.
func (m *Model) View() string {
	if !m.state.IsConfigured() {
		return m.renderOnboarding()
	}

	if m.state.IsLoading("analytics") && !m.state.AnalyticsLoaded() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	var sections []string
	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderOverviewCards())
	sections = append(sections, m.renderSpendChart())
	sections = append(sections, m.renderAgentsCard())
	sections = append(sections, m.renderModelsCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderOnboarding renders the empty state shown before a project exists.
func (m *Model) renderOnboarding() string {
	var rows []string
	rows = append(rows, styles.TitleStyle.Render("Welcome to AgentCost"))
	rows = append(rows, "")
	rows = append(rows, styles.HelpStyle.Render("No project is configured yet."))
	rows = append(rows, "")
	rows = append(rows, "To start tracking LLM spend:")
	rows = append(rows, styles.InfoTextStyle.Render("  1. Open Settings (press 6) and create a project"))
	rows = append(rows, styles.InfoTextStyle.Render("  2. Point your agents at the project API key"))
	rows = append(rows, styles.InfoTextStyle.Render("  3. Come back here and press r"))

	card := styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.CenterBoth(card, m.width, m.height)
}

// renderTitle renders the dashboard title with the active time range.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Spend Overview")
	rangeLabel := styles.HelpStyle.Render(fmt.Sprintf("Range: %s (press t to cycle)", m.state.TimeRange()))

	var cacheNote string
	if updated := m.state.AnalyticsUpdated(); !updated.IsZero() {
		cacheNote = styles.HelpStyle.Render("  updated " + format.RelativeTime(updated))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, rangeLabel+cacheNote, "")
}

// renderOverviewCards renders the headline metric cards.
func (m *Model) renderOverviewCards() string {
	overview := m.state.Analytics().Overview

	changeStyle := styles.GetCostChangeStyle(overview.CostChangePct)
	changeStr := changeStyle.Render(fmt.Sprintf("%+.1f%%", overview.CostChangePct))

	cards := []string{
		m.renderStatCard("Total Spend", format.Currency(overview.TotalCost), changeStr),
		m.renderStatCard("API Calls", format.Count(overview.TotalCalls), ""),
		m.renderStatCard("Tokens", format.Count(overview.TotalTokens), ""),
		m.renderStatCard("Avg Latency", format.Latency(overview.AvgLatencyMS), ""),
		m.renderStatCard("Error Rate",
			styles.GetErrorRateStyle(overview.ErrorRate).Render(format.Percentage(overview.ErrorRate)),
			m.meter.ViewCompact(overview.ErrorRate, 22)),
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m *Model) renderStatCard(title, value, footnote string) string {
	lines := []string{
		styles.CardTitleStyle.Render(title),
		lipgloss.NewStyle().Bold(true).Render(value),
	}
	if footnote != "" {
		lines = append(lines, footnote)
	}
	return styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderSpendChart renders the cost time series with a local trend sparkline.
func (m *Model) renderSpendChart() string {
	series := m.state.Analytics().TimeSeries

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Spend Over Time"))

	cost := make([]float64, 0, len(series))
	calls := make([]float64, 0, len(series))
	for _, p := range series {
		cost = append(cost, p.Cost)
		calls = append(calls, float64(p.Calls))
	}

	chartWidth := max(m.width-16, 30)
	if hasActivity(calls) {
		rows = append(rows, components.RenderDualLineChart(cost, calls, chartWidth, 8, "cost vs calls"))
		rows = append(rows, "")
		rows = append(rows, components.RenderLegend([]components.LegendItem{
			{Label: "Cost", Color: components.ChartCostColor},
			{Label: "Calls", Color: components.ChartCallsColor},
		}))
	} else {
		rows = append(rows, components.RenderLineChart(cost, chartWidth, 8, "cost"))
	}

	if daily := m.state.DailySpend(); len(daily) > 1 {
		trend := make([]float64, 0, len(daily))
		volume := make([]float64, 0, len(daily))
		for _, d := range daily {
			trend = append(trend, d.TotalCost)
			volume = append(volume, float64(d.Calls))
		}
		rows = append(rows, "")
		rows = append(rows, styles.HelpStyle.Render("Local trend: ")+
			components.RenderColoredSparkline(trend, min(len(trend), 30)))
		rows = append(rows, styles.HelpStyle.Render("Call volume: ")+
			components.RenderSparkline(volume, min(len(volume), 30)))
	}

	return styles.CardStyle.Width(max(m.width-6, 40)).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderAgentsCard renders the per-agent cost breakdown.
func (m *Model) renderAgentsCard() string {
	agents := m.state.Analytics().Agents

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Top Agents"))

	if len(agents) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No agent activity in this range"))
		return styles.CardStyle.Width(max(m.width-6, 40)).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		)
	}

	values := make([]float64, 0, len(agents))
	labels := make([]string, 0, len(agents))
	for i, a := range agents {
		if i >= 8 {
			break
		}
		values = append(values, a.TotalCost)
		labels = append(labels, a.AgentName)
	}
	rows = append(rows, components.RenderBarChart(values, labels, max(m.width-14, 30)))
	rows = append(rows, "")

	header := fmt.Sprintf("%-20s %12s %10s %10s %8s", "Agent", "Cost", "Calls", "Latency", "Errors")
	rows = append(rows, styles.TableHeaderStyle.Render(header))
	for i, a := range agents {
		if i >= 8 {
			break
		}
		line := fmt.Sprintf("%-20s %12s %10s %10s %8s",
			truncate(a.AgentName, 20),
			format.Currency(a.TotalCost),
			format.Count(a.TotalCalls),
			format.Latency(a.AvgLatencyMS),
			styles.GetErrorRateStyle(a.ErrorRate).Render(format.Percentage(a.ErrorRate)),
		)
		rows = append(rows, line)
	}

	return styles.CardStyle.Width(max(m.width-6, 40)).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderModelsCard renders the per-model cost breakdown.
func (m *Model) renderModelsCard() string {
	modelStats := m.state.Analytics().Models

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Models"))

	if len(modelStats) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No model activity in this range"))
		return styles.CardStyle.Width(max(m.width-6, 40)).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		)
	}

	header := fmt.Sprintf("%-28s %-12s %12s %10s %12s", "Model", "Provider", "Cost", "Calls", "Tokens")
	rows = append(rows, styles.TableHeaderStyle.Render(header))
	var totalCost float64
	for _, s := range modelStats {
		totalCost += s.TotalCost
	}
	for i, s := range modelStats {
		if i >= 8 {
			break
		}
		line := fmt.Sprintf("%-28s %-12s %12s %10s %12s",
			truncate(s.Model, 28),
			truncate(s.Provider, 12),
			format.Currency(s.TotalCost),
			format.Count(s.TotalCalls),
			format.Count(s.TotalTokens),
		)
		rows = append(rows, line)
	}

	if totalCost > 0 {
		rows = append(rows, "")
		rows = append(rows, styles.TableHeaderStyle.Render("Cost share"))
		for i, s := range modelStats {
			if i >= 5 {
				break
			}
			share := s.TotalCost / totalCost * 100
			rows = append(rows, components.SimpleMeterBar(share, truncate(s.Model, 24), max(m.width-14, 40)))
		}
	}

	return styles.CardStyle.Width(max(m.width-6, 40)).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func hasActivity(series []float64) bool {
	for _, v := range series {
		if v > 0 {
			return true
		}
	}
	return false
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 1 {
		return s[:width]
	}
	return s[:width-1] + "…"
}
