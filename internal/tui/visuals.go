package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/steviee/assetguard/internal/events"
)

// Sparkline characters from low to high
var sparklineChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// renderSparkline draws the last width samples scaled against the largest
// one. Missing samples at the start are drawn as zero.
func renderSparkline(samples []float64, width int) string {
	if len(samples) > width {
		samples = samples[len(samples)-width:]
	}

	peak := 0.0
	for _, v := range samples {
		peak = math.Max(peak, v)
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(string(sparklineChars[0]), width-len(samples)))
	top := len(sparklineChars) - 1
	for _, v := range samples {
		idx := 0
		if peak > 0 && v > 0 {
			idx = int(math.Round(v / peak * float64(top)))
		}
		b.WriteRune(sparklineChars[min(max(idx, 0), top)])
	}
	return b.String()
}

// barColor picks the bar color of a category: red once it finished with
// failures, green once it finished cleanly, and by completion while active.
func barColor(c CategoryInfo) lipgloss.Color {
	switch {
	case c.Complete && c.Status == events.StatusPartial:
		return lipgloss.Color("#FF0000")
	case c.Complete:
		return lipgloss.Color("#00FF00")
	case c.Percent() >= 70:
		return lipgloss.Color("#90EE90") // Light Green
	case c.Percent() >= 30:
		return lipgloss.Color("#FFFF00") // Yellow
	default:
		return lipgloss.Color("#FFA500") // Orange
	}
}

// renderCategoryBar renders the byte progress of a category followed by its
// percentage.
func renderCategoryBar(c CategoryInfo, width int) string {
	pct := math.Min(math.Max(c.Percent(), 0), 100)
	filled := int(math.Round(pct / 100 * float64(width)))

	bar := lipgloss.NewStyle().
		Foreground(barColor(c)).
		Render(strings.Repeat("█", filled) + strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3.0f%%", bar, pct)
}

// renderThroughput renders the per-second throughput samples as a sparkline,
// dimmed while nothing is flowing.
func renderThroughput(samples []float64, width int) string {
	line := renderSparkline(samples, width)
	if len(samples) == 0 || samples[len(samples)-1] == 0 {
		return footerStyle.Render(line)
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00ADD8")).
		Render(line)
}

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#FF0000")).
	Padding(0, 1)

// renderBox renders content in a rounded box headed by a bold title.
func renderBox(title, content string, width int) string {
	body := content
	if title != "" {
		body = lipgloss.NewStyle().Bold(true).Render(title) + "\n" + content
	}
	// Width excludes the border.
	return boxStyle.Width(max(width-2, 4)).Render(body)
}
