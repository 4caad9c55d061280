package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const overlayWidth = 64

// modal is an overlay that captures all keys while open.
type modal interface {
	Update(msg tea.Msg) tea.Cmd
	View() string
}

// overlayClosedMsg is sent when an overlay is dismissed.
type overlayClosedMsg struct{}

func closeOverlay() tea.Msg { return overlayClosedMsg{} }

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func newTextarea(width, lines int) textarea.Model {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.SetWidth(width)
	ta.SetHeight(lines)
	return ta
}

func footerHints(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, styleKey().Render(pairs[i])+" "+styleMuted().Render(pairs[i+1]))
	}
	return strings.Join(parts, styleMuted().Render("  •  "))
}

// placeOverlay centers content over a blank area of the given size.
func placeOverlay(width, height int, content string) string {
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
