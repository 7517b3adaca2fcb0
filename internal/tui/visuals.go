package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	units "github.com/docker/go-units"
)

// renderProgressBar draws value (0-100, clamped) as a bar of width cells.
func renderProgressBar(value float64, width int) string {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}

	filledWidth := int(math.Round(value / 100.0 * float64(width)))
	emptyWidth := width - filledWidth

	filled := strings.Repeat("█", filledWidth)
	empty := strings.Repeat("░", emptyWidth)

	return lipgloss.NewStyle().
		Foreground(progressColor(value)).
		Render(filled + empty)
}

// renderDownloadBar renders a bar with the percentage and byte counts, or
// just the bytes received when the total is unknown.
func renderDownloadBar(done, total int64, width int) string {
	received := units.HumanSize(float64(done))
	p := percent(done, total)
	if p < 0 {
		return received
	}
	return fmt.Sprintf("%s % 3.0f%% %s / %s", renderProgressBar(p, width), p, received, units.HumanSize(float64(total)))
}

// progressColor shifts from orange to green as the download completes.
func progressColor(percentage float64) lipgloss.Color {
	switch {
	case percentage >= 100:
		return lipgloss.Color("#00FF00")
	case percentage >= 50:
		return lipgloss.Color("#90EE90")
	default:
		return lipgloss.Color("#FFA500")
	}
}

// percent returns done/total as a percentage, or -1 when total is unknown.
func percent(done, total int64) float64 {
	if total <= 0 {
		return -1
	}
	return float64(done) / float64(total) * 100
}

// renderSeparator draws a rule of width cells, titled when title is set.
func renderSeparator(width int, title string) string {
	if title == "" {
		return strings.Repeat("─", width)
	}
	rule := "─ " + title + " "
	if rest := width - len(title) - 4; rest > 0 {
		rule += strings.Repeat("─", rest)
	}
	return rule
}
