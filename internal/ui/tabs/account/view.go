package account

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/agentcost/agentcost-tui/internal/format"
	"github.com/agentcost/agentcost-tui/internal/services/session"
	"github.com/agentcost/agentcost-tui/internal/ui/components"
	"github.com/agentcost/agentcost-tui/internal/ui/styles"
)

// View renders the account tab.
func (m *Model) View() string {
	if m.state.IsLoading("session") {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	switch m.state.SessionState() {
	case session.StateAnonymous:
		return m.renderLoginForm()
	case session.StatePolicyGate:
		return m.renderPolicyGate()
	default:
		return m.renderProfile()
	}
}

// renderLoginForm renders the email and password sign-in form.
func (m *Model) renderLoginForm() string {
	remember := "[ ]"
	if m.rememberMe {
		remember = "[x]"
	}
	rememberLine := remember + " Remember me"
	if m.focus == focusRemember {
		rememberLine = styles.FocusedStyle.Render("› " + rememberLine)
	} else {
		rememberLine = "  " + rememberLine
	}

	submit := styles.ButtonInactiveStyle.Render("Sign in")
	if m.focus == focusSubmit {
		submit = styles.ButtonActiveStyle.Render("Sign in")
	}

	lines := []string{
		styles.CardTitleStyle.Render("Sign in to AgentCost"),
		"",
		"Email",
		m.email.View(),
		"",
		"Password",
		m.password.View(),
		"",
		rememberLine,
		"",
		submit,
	}

	if m.formError != "" {
		lines = append(lines, "", styles.ErrorTextStyle.Render(m.formError))
	}
	lines = append(lines, "", styles.HelpStyle.Render("tab next field · enter sign in"))

	card := styles.CardStyle.Width(min(max(m.width-10, 44), 64)).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
	return styles.CenterBoth(card, m.width, m.height)
}

// renderPolicyGate renders the outstanding-policy interstitial.
func (m *Model) renderPolicyGate() string {
	policies := m.state.Policies()

	lines := []string{
		styles.CardTitleStyle.Render("Review required policies"),
		styles.HelpStyle.Render("Accept each policy below to finish signing in."),
		"",
	}

	for i, p := range policies {
		cursor := "  "
		if i == m.policyCursor {
			cursor = "› "
		}
		row := fmt.Sprintf("%s%s (version %s)", cursor, policyLabel(p.PolicyType), p.Version)
		if i == m.policyCursor {
			row = styles.FocusedStyle.Render(row)
		}
		lines = append(lines, row)
	}

	lines = append(lines, "", styles.HelpStyle.Render("↑/↓ select · a accept"))

	card := styles.CardStyle.Width(min(max(m.width-10, 44), 70)).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
	return styles.CenterBoth(card, m.width, m.height)
}

// renderProfile renders the signed-in account card.
func (m *Model) renderProfile() string {
	user := m.state.User()
	if user == nil {
		return styles.CenterBoth(styles.HelpStyle.Render("No account details available."), m.width, m.height)
	}

	name := user.Name
	if name == "" {
		name = user.Email
	}

	verified := styles.WarningTextStyle.Render("unverified")
	if user.EmailVerified {
		verified = styles.SuccessTextStyle.Render("verified")
	}

	lines := []string{
		styles.CardTitleStyle.Render(name),
		"",
		fmt.Sprintf("Email    %s (%s)", user.Email, verified),
		fmt.Sprintf("Joined   %s", format.RelativeTime(user.CreatedAt)),
		fmt.Sprintf("User ID  %s", user.ID),
		"",
		styles.HelpStyle.Render("o sign out"),
	}

	card := styles.CardStyle.Width(min(max(m.width-10, 44), 70)).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
	return styles.CenterBoth(card, m.width, m.height)
}

// policyLabel maps a policy type to a display name.
func policyLabel(policyType string) string {
	switch policyType {
	case "terms_of_service":
		return "Terms of Service"
	case "privacy_policy":
		return "Privacy Policy"
	default:
		return policyType
	}
}
