// Package components provides reusable UI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agentcost/agentcost-tui/internal/logger"
	"github.com/agentcost/agentcost-tui/internal/ui/styles"
)

type AnimationTickMsg time.Time

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*50, func(t time.Time) tea.Msg {
		return AnimationTickMsg(t)
	})
}

// MeterBar renders a percentage bar with label, used for cost share and
// error-rate displays.
type MeterBar struct {
	progress       progress.Model
	label          string
	targetPercent  float64
	currentPercent float64
	isAnimating    bool
}

// NewMeterBar creates a meter bar with gradient colors.
func NewMeterBar() MeterBar {
	return NewMeterBarWithWidth(30)
}

// NewMeterBarWithWidth creates a meter bar with a specific width.
func NewMeterBarWithWidth(width int) MeterBar {
	p := progress.New(
		progress.WithScaledGradient("#51cf66", "#ff6b6b"),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)

	return MeterBar{progress: p}
}

// Init initializes the progress bar model.
func (m MeterBar) Init() tea.Cmd {
	return nil
}

// Update handles progress bar animation messages.
func (m MeterBar) Update(msg tea.Msg) (MeterBar, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.(type) {
	case AnimationTickMsg:
		if m.isAnimating {
			if m.currentPercent < m.targetPercent {
				step := (m.targetPercent - m.currentPercent) / 10
				if step < 0.5 {
					step = 0.5
				}
				m.currentPercent += step
				if m.currentPercent > m.targetPercent {
					m.currentPercent = m.targetPercent
				}
				cmds = append(cmds, animationTick())
			} else if m.currentPercent > m.targetPercent {
				step := (m.currentPercent - m.targetPercent) / 10
				if step < 0.5 {
					step = 0.5
				}
				m.currentPercent -= step
				if m.currentPercent < m.targetPercent {
					m.currentPercent = m.targetPercent
				}
				cmds = append(cmds, animationTick())
			} else {
				m.isAnimating = false
			}
		}
	}

	var cmd tea.Cmd
	model, cmd := m.progress.Update(msg)
	m.progress = model.(progress.Model)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// SetPercent sets the target percentage and starts the animation.
func (m *MeterBar) SetPercent(percent float64) tea.Cmd {
	m.targetPercent = percent

	if !m.isAnimating {
		m.isAnimating = true
		return tea.Batch(
			m.progress.SetPercent(percent/100),
			animationTick(),
		)
	}

	return m.progress.SetPercent(percent / 100)
}

// SetLabel sets the bar label.
func (m *MeterBar) SetLabel(label string) {
	m.label = label
}

// SetWidth sets the progress bar width.
func (m *MeterBar) SetWidth(width int) {
	m.progress.Width = width
}

// View renders the meter bar with percentage and label.
func (m MeterBar) View(percent float64, label string, width int) string {
	barWidth := width - 30 // Reserve space for label and percentage
	if barWidth < 10 {
		barWidth = 10
	}
	m.progress.Width = barWidth

	bar := m.progress.ViewAs(percent / 100)

	percentStyle := styles.GetErrorRateStyle(percent)
	percentStr := percentStyle.Width(6).Align(lipgloss.Right).Render(fmt.Sprintf("%.0f%%", percent))

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(15).
		Render(label)

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		labelStr,
		bar,
		" ",
		percentStr,
	)
}

// ViewCompact renders a compact version without label.
func (m MeterBar) ViewCompact(percent float64, width int) string {
	barWidth := width - 8
	if barWidth < 5 {
		barWidth = 5
	}
	m.progress.Width = barWidth

	bar := m.progress.ViewAs(percent / 100)
	percentStyle := styles.GetErrorRateStyle(percent)
	percentStr := percentStyle.Render(fmt.Sprintf("%.0f%%", percent))

	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", percentStr)
}

// RenderGradientBar renders just the bar part with gradient colors.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barChars []string
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor("#51cf66", "#ff6b6b", t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			barChars = append(barChars, style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(styles.Subtle)
			barChars = append(barChars, style.Render("░"))
		}
	}

	return strings.Join(barChars, "")
}

// SimpleMeterBar renders a simple ASCII percentage bar with gradient colors.
func SimpleMeterBar(percent float64, label string, width int) string {
	labelWidth := len(label) + 1
	percentWidth := 6
	barWidth := width - labelWidth - percentWidth - 4

	if barWidth < 5 {
		barWidth = 5
	}

	bar := RenderGradientBar(percent, barWidth)

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(label)

	percentStr := styles.GetErrorRateStyle(percent).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", percent))

	return fmt.Sprintf("%s [%s] %s", labelStr, bar, percentStr)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
