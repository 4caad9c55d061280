package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"scrummaster/internal/domain"
	"scrummaster/internal/ui/theme"
)

func styleAppHeader() lipgloss.Style {
	p := theme.Current()
	return lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Primary).
		Bold(true).
		Padding(0, 1)
}

func styleTab(active bool) lipgloss.Style {
	p := theme.Current()
	if active {
		return lipgloss.NewStyle().Foreground(p.Primary).Bold(true).Underline(true).Padding(0, 1)
	}
	return lipgloss.NewStyle().Foreground(p.TextMuted).Padding(0, 1)
}

func styleKey() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Accent).Bold(true)
}

func styleText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Text)
}

func styleMuted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().TextMuted)
}

func styleLabel() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Secondary).Bold(true)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Error)
}

func styleSelected() lipgloss.Style {
	p := theme.Current()
	return lipgloss.NewStyle().Background(p.Selected).Foreground(p.Text).Bold(true)
}

func stylePane(focused bool) lipgloss.Style {
	p := theme.Current()
	if focused {
		return lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(p.BorderFocused).Padding(0, 1)
	}
	return lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(p.Border).Padding(0, 1)
}

func styleOverlay() lipgloss.Style {
	p := theme.Current()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.BorderFocused).
		Padding(1, 2)
}

func styleBorder() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Current().Border)
}

func styleColumnHeader(status domain.Status) lipgloss.Style {
	p := theme.Current()
	color := p.ToDo
	switch status {
	case domain.StatusInProgress:
		color = p.InProgress
	case domain.StatusDone:
		color = p.Done
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}

func styleSuccessToast() lipgloss.Style {
	p := theme.Current()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Success).
		Foreground(p.Success).
		Padding(0, 1)
}

func styleErrorToast() lipgloss.Style {
	p := theme.Current()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Error).
		Foreground(p.Error).
		Padding(0, 1)
}

func styleInfoToast() lipgloss.Style {
	p := theme.Current()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Info).
		Foreground(p.Info).
		Padding(0, 1)
}

// buildMarkdownRenderer returns a renderer for issue descriptions and AI
// text. "plain" output, and any renderer failure, falls back to word wrap.
func buildMarkdownRenderer(format string, width int) func(string) string {
	if width < 10 {
		width = 10
	}
	fallback := func(input string) string {
		return wordwrap.String(input, width)
	}

	style := strings.ToLower(strings.TrimSpace(format))
	switch style {
	case "", "rich", "dark":
		style = "dark"
	case "plain":
		return fallback
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}
	return func(input string) string {
		out, err := renderer.Render(input)
		if err != nil {
			return fallback(input)
		}
		return strings.TrimSpace(out)
	}
}
