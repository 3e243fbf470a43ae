package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/docker/go-units"
)

const (
	nameWidth      = 10
	statusWidth    = 9
	barWidth       = 20
	sparklineWidth = 20
	maxFailedShown = 8
)

// View renders the TUI
func (m Model) View() string {
	if m.quitting && !m.done {
		return "Validation cancelled.\n"
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderPhase())
	b.WriteString("\n")

	if len(m.categories) == 0 {
		if m.pipelineDone {
			b.WriteString("\nEverything is up to date.\n")
		} else {
			b.WriteString("\nNothing downloaded yet.\n")
		}
	} else {
		b.WriteString("\n")
		b.WriteString(m.renderTable())
		b.WriteString(m.renderThroughputLine())
		b.WriteString("\n")
		if failed := m.renderFailed(); failed != "" {
			b.WriteString(failed)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	if m.err != nil && time.Since(m.errorTime) < 3*time.Second {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %s", m.err)))
	}

	return b.String()
}

// renderHeader renders the header with the elapsed time
func (m Model) renderHeader() string {
	title := "assetguard"
	elapsed := fmt.Sprintf("Elapsed: %s", m.lastUpdate.Sub(m.started).Truncate(time.Second))

	totalWidth := 80
	if m.width > 0 {
		totalWidth = m.width
	}

	spacing := totalWidth - len(title) - len(elapsed) - 4 // 4 for padding
	if spacing < 1 {
		spacing = 1
	}

	var b strings.Builder
	b.WriteString("╭")
	b.WriteString(strings.Repeat("─", totalWidth-2))
	b.WriteString("╮\n")

	headerText := fmt.Sprintf(" %s%s%s ", title, strings.Repeat(" ", spacing), elapsed)
	b.WriteString("│")
	b.WriteString(headerStyle.Render(headerText))
	b.WriteString("│\n")

	b.WriteString("╰")
	b.WriteString(strings.Repeat("─", totalWidth-2))
	b.WriteString("╯")

	return b.String()
}

// renderPhase renders the current phase and, while validating, the number
// of checked items
func (m Model) renderPhase() string {
	switch {
	case m.done && m.runErr != nil:
		return errorStyle.Render("Failed: " + m.runErr.Error())
	case m.done:
		return statusOKStyle.Render("Done")
	case m.phase == "":
		return "Starting..."
	case !m.downloading && m.validated.Total > 0:
		return fmt.Sprintf("Validating %s  %d/%d", m.validated.Name, m.validated.Done, m.validated.Total)
	case m.downloading:
		return "Downloading"
	default:
		return "Validating " + m.phase
	}
}

// formatSize renders processed and expected bytes
func formatSize(c CategoryInfo) string {
	return fmt.Sprintf("%s / %s", units.HumanSize(float64(c.Done)), units.HumanSize(float64(c.Total)))
}

// renderTable renders one row per download category
func (m Model) renderTable() string {
	var b strings.Builder

	headerRow := fmt.Sprintf("  %-*s  %-*s  %-*s  %s",
		nameWidth, "CATEGORY",
		statusWidth, "STATUS",
		barWidth+5, "PROGRESS",
		"SIZE",
	)
	b.WriteString(tableHeaderStyle.Render(headerRow))
	b.WriteString("\n")

	for i, c := range m.categories {
		status := fmt.Sprintf("%-*s", statusWidth, getStatusIndicator(c)+" "+statusText(c))
		bar := renderCategoryBar(c, barWidth)
		size := formatSize(c)

		if i == m.selectedIdx {
			b.WriteString(selectedRowStyle.Render(fmt.Sprintf("> %-*s", nameWidth, c.Name)))
			b.WriteString("  ")
			b.WriteString(getStatusStyle(c).Background(lipgloss.Color("#FFA500")).Foreground(lipgloss.Color("#000000")).Render(status))
		} else {
			b.WriteString(fmt.Sprintf("  %-*s", nameWidth, c.Name))
			b.WriteString("  ")
			b.WriteString(getStatusStyle(c).Render(status))
		}
		b.WriteString("  ")
		b.WriteString(bar)
		b.WriteString("  ")
		b.WriteString(size)
		b.WriteString("\n")
	}

	return b.String()
}

// renderThroughputLine renders the throughput trend and the latest rate
func (m Model) renderThroughputLine() string {
	rate := "-"
	if n := len(m.throughput); n > 0 {
		rate = units.HumanSize(m.throughput[n-1]) + "/s"
	}
	return fmt.Sprintf("  %-*s  %s %s", nameWidth, "SPEED", renderThroughput(m.throughput, sparklineWidth), rate)
}

// renderFailed renders the failed items of the selected category
func (m Model) renderFailed() string {
	if m.selectedIdx >= len(m.categories) {
		return ""
	}
	c := m.categories[m.selectedIdx]
	if len(c.Failed) == 0 {
		return ""
	}

	shown := c.Failed
	if len(shown) > maxFailedShown {
		shown = shown[:maxFailedShown]
	}
	content := strings.Join(shown, "\n")
	if extra := len(c.Failed) - len(shown); extra > 0 {
		content += fmt.Sprintf("\n... and %d more", extra)
	}

	width := 60
	if m.width > 0 && m.width < width {
		width = m.width
	}
	return renderBox(fmt.Sprintf("Failed %s (%d)", c.Name, len(c.Failed)), content, width)
}

// renderFooter renders the key help
func (m Model) renderFooter() string {
	actions := "[↑/↓] select category  [q]uit"
	if m.warnings > 0 {
		actions += fmt.Sprintf("  %d error(s)", m.warnings)
	}
	return footerStyle.Render(actions)
}
