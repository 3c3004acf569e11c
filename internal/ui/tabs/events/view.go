package events

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/agentcost/agentcost-tui/internal/ui/components"
	"github.com/agentcost/agentcost-tui/internal/ui/styles"
)

// View renders the events tab.
func (m *Model) View() string {
	if !m.state.IsConfigured() {
		hint := styles.HelpStyle.Render("Configure a project in Settings to see the event log.")
		return styles.CenterBoth(hint, m.width, m.height)
	}

	if m.state.IsLoading("events") && !m.state.EventsLoaded() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	page, fromCache := m.state.Events()

	var sections []string
	sections = append(sections, styles.TitleStyle.Render("Event Log"))

	if fromCache {
		sections = append(sections, styles.WarningTextStyle.Render(
			"⚠ API unreachable, showing locally cached events"))
	}

	if len(page.Events) == 0 {
		sections = append(sections, "")
		sections = append(sections, styles.HelpStyle.Render("No events recorded yet."))
		return styles.DocStyle.Width(m.width).Height(m.height).Render(
			lipgloss.JoinVertical(lipgloss.Left, sections...),
		)
	}

	sections = append(sections, m.table.View())
	sections = append(sections, m.renderPager(page.Total))

	return styles.DocStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

// renderPager renders the page indicator line.
func (m *Model) renderPager(total int64) string {
	if total <= 0 {
		return ""
	}

	pageNum := m.offset/pageSize + 1
	pageCount := int((total + pageSize - 1) / pageSize)

	return styles.HelpStyle.Render(fmt.Sprintf(
		"Page %d of %d (%d events)  n/p to change page", pageNum, pageCount, total))
}
