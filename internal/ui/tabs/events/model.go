// Package events provides the event log tab for the AgentCost TUI.
package events

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agentcost/agentcost-tui/internal/app"
	"github.com/agentcost/agentcost-tui/internal/format"
	"github.com/agentcost/agentcost-tui/internal/models"
	"github.com/agentcost/agentcost-tui/internal/ui/components"
	"github.com/agentcost/agentcost-tui/internal/ui/styles"
)

// pageSize is how many events one page requests.
const pageSize = 50

// keyMap defines the key bindings specific to the events tab.
type keyMap struct {
	NextPage key.Binding
	PrevPage key.Binding
	Refresh  key.Binding
}

// defaultKeyMap returns the default key bindings for the events tab.
func defaultKeyMap() keyMap {
	return keyMap{
		NextPage: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n/→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p/←", "prev page"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// Model represents the events tab state.
type Model struct {
	state   *app.State
	table   table.Model
	spinner components.LoadingSpinner
	keys    keyMap
	width   int
	height  int
	offset  int
}

// New creates a new events model.
func New(state *app.State) *Model {
	columns := []table.Column{
		{Title: "Time", Width: 12},
		{Title: "Agent", Width: 18},
		{Title: "Model", Width: 24},
		{Title: "Tokens", Width: 12},
		{Title: "Cost", Width: 12},
		{Title: "Latency", Width: 9},
		{Title: "Status", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:   state,
		table:   t,
		spinner: components.NewSpinner("Loading events..."),
		keys:    defaultKeyMap(),
	}
}

// Init initializes the events tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the events tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.NextPage):
			if cmd := m.requestPage(m.offset + pageSize); cmd != nil {
				return m, cmd
			}

		case key.Matches(msg, m.keys.PrevPage):
			if cmd := m.requestPage(m.offset - pageSize); cmd != nil {
				return m, cmd
			}

		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			cmds = append(cmds, cmd)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case app.EventsLoadedMsg:
		m.offset = msg.Page.Offset
		m.updateTableData(msg.Page)
	}

	return m, tea.Batch(cmds...)
}

// requestPage emits a page request, clamped to the known total.
func (m *Model) requestPage(offset int) tea.Cmd {
	if offset < 0 {
		return nil
	}
	page, _ := m.state.Events()
	if int64(offset) >= page.Total {
		return nil
	}
	return func() tea.Msg {
		return app.EventsPageRequestMsg{Limit: pageSize, Offset: offset}
	}
}

// updateTableData rebuilds the table rows from an event page.
func (m *Model) updateTableData(page models.EventPage) {
	rows := make([]table.Row, 0, len(page.Events))
	for _, e := range page.Events {
		status := e.Status
		if e.ErrorMessage != "" {
			status = "error"
		}

		rows = append(rows, table.Row{
			e.Timestamp.Format("Jan 2 15:04"),
			e.AgentName,
			e.Model,
			format.Count(e.InputTokens + e.OutputTokens),
			format.Currency(e.Cost),
			format.Latency(e.LatencyMS),
			status,
		})
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// SetSize sets the available size for the events tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-8, 5))

	agentWidth := max(min(width-85, 28), 12)
	columns := []table.Column{
		{Title: "Time", Width: 12},
		{Title: "Agent", Width: agentWidth},
		{Title: "Model", Width: 24},
		{Title: "Tokens", Width: 12},
		{Title: "Cost", Width: 12},
		{Title: "Latency", Width: 9},
		{Title: "Status", Width: 10},
	}
	m.table.SetColumns(columns)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.NextPage,
		m.keys.PrevPage,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextPage, m.keys.PrevPage},
		{m.keys.Refresh},
	}
}
