package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"scrummaster/internal/domain"
	"scrummaster/internal/viewsync"
)

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	summaryDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
	summaryTextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F8F8F2"))
)

// ExitSummary is printed after the TUI leaves the alt screen.
type ExitSummary struct {
	Version  string
	Duration time.Duration
	Board    viewsync.Snapshot
}

func printExitSummary(w io.Writer, summary ExitSummary) {
	header := summaryTitleStyle.Render("Scrum Master")
	if summary.Version != "" {
		header += summaryDimStyle.Render(" v" + strings.TrimPrefix(summary.Version, "v"))
	}
	header += summaryDimStyle.Render(fmt.Sprintf(" • %s session", formatDuration(summary.Duration)))
	_, _ = fmt.Fprintln(w, header)

	if summary.Board.LoadedAt.IsZero() {
		return
	}
	parts := make([]string, 0, len(domain.Statuses))
	for _, status := range domain.Statuses {
		if n := len(summary.Board.Buckets[status]); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status.WireName()))
		}
	}
	line := fmt.Sprintf("%d sprint issue%s", len(summary.Board.Issues), pluralS(len(summary.Board.Issues)))
	if len(parts) > 0 {
		line += ": " + strings.Join(parts, ", ")
	}
	_, _ = fmt.Fprintln(w, summaryTextStyle.Render(line))
}

func pluralS(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		if secs == 0 {
			return fmt.Sprintf("%dm", mins)
		}
		return fmt.Sprintf("%dm %ds", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}
