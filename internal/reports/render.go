package reports

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as a single row of block characters scaled to the
// series maximum. Negative values render as the lowest tick.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	maxV := 0.0
	for _, v := range values {
		maxV = math.Max(maxV, v)
	}
	var b strings.Builder
	for _, v := range values {
		idx := 0
		if maxV > 0 && v > 0 {
			idx = int(math.Round(v / maxV * float64(len(sparkTicks)-1)))
		}
		b.WriteRune(sparkTicks[idx])
	}
	return b.String()
}

// FormatNumber trims a trailing ".0" so whole values print as integers.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// BurndownTable renders the burndown series as a table.
func BurndownTable(b Burndown, border lipgloss.Style) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(border).
		Headers("Day", "Remaining", "Ideal")
	for i, label := range b.Labels {
		ideal := ""
		if i < len(b.Ideal) {
			ideal = FormatNumber(b.Ideal[i])
		}
		t.Row(label, FormatNumber(b.WorkRemaining[i]), ideal)
	}
	return t.String()
}

// VelocityTable renders completed work per sprint as a table.
func VelocityTable(v Velocity, border lipgloss.Style) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(border).
		Headers("Sprint", "Completed")
	for i, label := range v.Labels {
		t.Row(label, FormatNumber(v.Completed[i]))
	}
	return t.String()
}

// StatsLines renders the stats panel as label/value lines.
func StatsLines(s Stats) []string {
	blocker := s.CommonBlocker
	if strings.TrimSpace(blocker) == "" {
		blocker = "None"
	}
	return []string{
		fmt.Sprintf("Total standups: %d", s.TotalIssues),
		fmt.Sprintf("Done: %d", s.Done),
		fmt.Sprintf("Average age: %s days", FormatNumber(s.AvgAge)),
		fmt.Sprintf("Common blocker: %s", blocker),
	}
}
