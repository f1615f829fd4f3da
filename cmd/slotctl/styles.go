package main

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	primaryColor = lipgloss.Color("#7D56F4")
	screenColor  = lipgloss.Color("#9BBC0F")
	mutedColor   = lipgloss.Color("#666666")

	screenStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Foreground(screenColor).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// plain strips colors when --no-color is set.
func plain(s lipgloss.Style) lipgloss.Style {
	if !noColor {
		return s
	}
	return s.UnsetForeground().UnsetBackground().UnsetBorderForeground().UnsetBold()
}
