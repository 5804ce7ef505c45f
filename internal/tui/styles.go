package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/myway/internal/store"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#3B82F6")
	colorWork      = lipgloss.Color("#EF4444")
	colorBreak     = lipgloss.Color("#10B981")
	colorLongBreak = lipgloss.Color("#8B5CF6")
	colorMuted     = lipgloss.Color("#6B7280")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorError     = lipgloss.Color("#DC2626")
	colorFg        = lipgloss.Color("#E5E7EB")
	colorSubtle    = lipgloss.Color("#374151")
	colorHighlight = lipgloss.Color("#60A5FA")
)

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 2).
			Align(lipgloss.Center)

	timerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Align(lipgloss.Center)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	successStyle = lipgloss.NewStyle().
			Foreground(colorBreak)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)
)

// phaseStyle colors the countdown by timer phase.
func phaseStyle(sessionType string) lipgloss.Style {
	switch sessionType {
	case store.SessionShortBreak:
		return lipgloss.NewStyle().Foreground(colorBreak).Bold(true)
	case store.SessionLongBreak:
		return lipgloss.NewStyle().Foreground(colorLongBreak).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(colorWork).Bold(true)
}

func priorityStyle(p string) lipgloss.Style {
	switch p {
	case store.PriorityHigh:
		return errorStyle
	case store.PriorityLow:
		return mutedStyle
	}
	return warningStyle
}

func colorDot(hex string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("●")
}
