package settings

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/agentcost/agentcost-tui/internal/ui/styles"
)

// View renders the settings tab.
func (m *Model) View() string {
	switch m.mode {
	case modeCreateProject:
		return m.renderCreateProject()
	case modeConfirmDelete:
		return m.renderConfirmDelete()
	}
	return m.renderForm()
}

// renderForm renders the project configuration form.
func (m *Model) renderForm() string {
	autoRefresh := "[ ]"
	if m.autoRefresh {
		autoRefresh = "[x]"
	}
	autoRefreshLine := autoRefresh + " Auto-refresh"
	if m.focus == focusAutoRefresh {
		autoRefreshLine = styles.FocusedStyle.Render("› " + autoRefreshLine)
	} else {
		autoRefreshLine = "  " + autoRefreshLine
	}

	save := styles.ButtonInactiveStyle.Render("Save")
	if m.focus == focusSave {
		save = styles.ButtonActiveStyle.Render("Save")
	}

	lines := []string{
		styles.CardTitleStyle.Render("Project settings"),
		"",
		"API key",
		m.apiKey.View(),
		"",
		"Project ID",
		m.projectID.View(),
		"",
		autoRefreshLine,
		"",
		"Refresh interval (seconds)",
		m.interval.View(),
		"",
		save,
	}

	if m.formError != "" {
		lines = append(lines, "", styles.ErrorTextStyle.Render(m.formError))
	}
	lines = append(lines, "",
		styles.HelpStyle.Render("tab next field · enter save"),
		styles.HelpStyle.Render("ctrl+n create a demo project · ctrl+d delete the project"),
	)

	card := styles.CardStyle.Width(min(max(m.width-10, 48), 70)).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
	return styles.CenterBoth(card, m.width, m.height)
}

// renderCreateProject renders the new-project name prompt.
func (m *Model) renderCreateProject() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Create a project"),
		styles.HelpStyle.Render("A fresh project with its own API key. The key is stored locally."),
		"",
		"Name",
		m.projectName.View(),
		"",
		styles.HelpStyle.Render("enter create · esc cancel"),
	)
	card := styles.FocusedBorderStyle.Width(min(max(m.width-10, 44), 60)).Render(body)
	return styles.CenterBoth(card, m.width, m.height)
}

// renderConfirmDelete renders the delete-project confirmation.
func (m *Model) renderConfirmDelete() string {
	projectID := m.state.ProjectConfig().ProjectID
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.WarningTextStyle.Render(fmt.Sprintf("Delete project %s?", projectID)),
		styles.HelpStyle.Render("This removes the project and clears the local configuration."),
		"",
		styles.DangerButtonStyle.Render("y delete")+"  "+styles.ButtonInactiveStyle.Render("n cancel"),
	)
	card := styles.FocusedBorderStyle.Width(min(max(m.width-10, 44), 60)).Render(body)
	return styles.CenterBoth(card, m.width, m.height)
}
