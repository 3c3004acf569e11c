package team

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/agentcost/agentcost-tui/internal/format"
	"github.com/agentcost/agentcost-tui/internal/models"
	"github.com/agentcost/agentcost-tui/internal/ui/components"
	"github.com/agentcost/agentcost-tui/internal/ui/styles"
)

// View renders the team tab.
func (m *Model) View() string {
	if !m.sessionReady() {
		hint := styles.HelpStyle.Render("Sign in on the Account tab to manage your team.")
		return styles.CenterBoth(hint, m.width, m.height)
	}

	if m.state.ProjectConfig().ProjectID == "" {
		hint := styles.HelpStyle.Render("Link a project in Settings to manage its members.")
		return styles.CenterBoth(hint, m.width, m.height)
	}

	roster, loaded := m.state.Roster()
	if !loaded {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	var sections []string
	sections = append(sections, styles.TitleStyle.Render("Team"))
	sections = append(sections, m.renderMembers(roster))

	if len(roster.Invitations) > 0 {
		sections = append(sections, m.renderInvitations(roster))
	}

	switch m.mode {
	case modeInvite:
		sections = append(sections, m.renderInviteForm())
	case modeConfirmRemove:
		sections = append(sections, m.renderConfirm(
			fmt.Sprintf("Remove %s from the project?", memberLabel(m.removing))))
	case modeConfirmLeave:
		sections = append(sections, m.renderConfirm("Leave this project? You will lose access to its data."))
	}

	return styles.DocStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

// renderMembers renders the member list card.
func (m *Model) renderMembers(roster models.TeamRoster) string {
	header := styles.TableHeaderStyle.Render(
		fmt.Sprintf("  %-30s %-10s %-8s %s", "Member", "Role", "Owner", "Joined"))

	lines := []string{styles.CardTitleStyle.Render(fmt.Sprintf("Members (%d)", len(roster.Members))), header}

	for i, member := range roster.Members {
		cursor := "  "
		if m.mode == modeList && i == m.cursor {
			cursor = "› "
		}

		owner := ""
		if member.IsOwner {
			owner = "✓"
		}

		row := fmt.Sprintf("%s%-30s %-10s %-8s %s",
			cursor,
			truncate(memberLabel(member), 30),
			styles.GetRoleStyle(string(member.Role)).Render(member.Role.String()),
			owner,
			format.RelativeTime(member.JoinedAt),
		)
		if m.mode == modeList && i == m.cursor {
			row = styles.FocusedStyle.Render(row)
		}
		lines = append(lines, row)
	}

	return styles.CardStyle.Width(max(m.width-6, 40)).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
}

// renderInvitations renders the pending invitation card.
func (m *Model) renderInvitations(roster models.TeamRoster) string {
	lines := []string{styles.CardTitleStyle.Render(fmt.Sprintf("Pending invitations (%d)", len(roster.Invitations)))}

	for i, inv := range roster.Invitations {
		cursor := "  "
		idx := len(roster.Members) + i
		if m.mode == modeList && idx == m.cursor {
			cursor = "› "
		}

		row := fmt.Sprintf("%s%-30s %-10s invited %s",
			cursor,
			truncate(inv.Email, 30),
			styles.GetRoleStyle(string(inv.Role)).Render(inv.Role.String()),
			format.RelativeTime(inv.CreatedAt),
		)
		if m.mode == modeList && idx == m.cursor {
			row = styles.FocusedStyle.Render(row)
		}
		lines = append(lines, row)
	}

	return styles.CardStyle.Width(max(m.width-6, 40)).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
}

// renderInviteForm renders the invite email and role picker.
func (m *Model) renderInviteForm() string {
	role := inviteRoles[m.inviteRole]

	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Invite a teammate"),
		m.inviteEmail.View(),
		"Role: "+styles.GetRoleStyle(string(role)).Render(role.String()),
		styles.HelpStyle.Render("tab cycle role · enter send · esc cancel"),
	)
	return styles.FocusedBorderStyle.Width(max(m.width-6, 40)).Render(body)
}

// renderConfirm renders a yes/no confirmation card.
func (m *Model) renderConfirm(question string) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.WarningTextStyle.Render(question),
		styles.HelpStyle.Render("y confirm · n cancel"),
	)
	return styles.FocusedBorderStyle.Width(max(m.width-6, 40)).Render(body)
}

// memberLabel prefers the display name, falling back to the email.
func memberLabel(m models.ProjectMember) string {
	if m.Name != "" {
		return m.Name
	}
	return m.Email
}

// truncate shortens s to width runes with an ellipsis.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
