package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Header styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#00ADD8")).
			Padding(0, 1)

	// Table header styles
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Underline(true).
				Foreground(lipgloss.Color("#FFFFFF"))

	// Selected row style
	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#FFA500")).
				Foreground(lipgloss.Color("#000000"))

	// Status color styles
	statusOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	statusPartialStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF0000"))

	statusActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFF00"))

	// Footer style
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080"))

	// Error style
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)
)

// getStatusStyle returns the style for a category state
func getStatusStyle(c CategoryInfo) lipgloss.Style {
	switch {
	case !c.Complete:
		return statusActiveStyle
	case c.Status == "partial":
		return statusPartialStyle
	default:
		return statusOKStyle
	}
}

// getStatusIndicator returns the status indicator symbol
func getStatusIndicator(c CategoryInfo) string {
	switch {
	case !c.Complete:
		return "●"
	case c.Status == "partial":
		return "✗"
	default:
		return "✓"
	}
}

// statusText returns the status word of a category
func statusText(c CategoryInfo) string {
	if !c.Complete {
		return "active"
	}
	return string(c.Status)
}
