package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"scrummaster/internal/viewsync"
)

// View renders the header, active tab, footer and any overlay.
func (m *App) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()

	var body string
	switch m.tab {
	case TabBoard:
		body = m.renderCollection(m.boardSnap, m.renderBoard)
	case TabBacklog:
		body = m.renderCollection(m.backlogSnap, m.renderBacklog)
	case TabStandup:
		body = m.renderStandup()
	case TabReports:
		body = m.renderReports()
	}

	parts := []string{header, body}
	if t := m.renderToast(); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, footer)
	screen := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.modal != nil {
		return placeOverlay(m.width, m.height, m.modal.View())
	}
	return screen
}

func (m *App) renderHeader() string {
	title := styleAppHeader().Render("Scrum Master")
	if m.cfg.Version != "" {
		title += styleMuted().Render(" " + m.cfg.Version)
	}
	tabs := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		tabs = append(tabs, styleTab(Tab(i) == m.tab).Render(name))
	}
	line := title + "  " + strings.Join(tabs, "")
	if m.busy > 0 {
		line += " " + m.spinner.View()
	}
	return line
}

// renderCollection wraps a collection view with its load state.
func (m *App) renderCollection(snap viewsync.Snapshot, render func() string) string {
	var status string
	switch {
	case snap.State == viewsync.StateIdle || (snap.Loading() && snap.LoadedAt.IsZero()):
		return styleMuted().Render(m.spinner.View() + " Loading " + snap.Name + "…")
	case snap.Err != nil:
		status = styleError().Render("⚠ " + snap.Err.Error())
	case snap.Loading():
		status = styleMuted().Render(m.spinner.View() + " Refreshing…")
	case !snap.LoadedAt.IsZero():
		status = styleMuted().Render(fmt.Sprintf("%d issue%s · updated %s",
			len(snap.Issues), plural(len(snap.Issues)), snap.LoadedAt.Format(time.Kitchen)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, render(), status)
}

func (m *App) renderFooter() string {
	switch m.tab {
	case TabBoard:
		return footerHints("←→↑↓", "navigate", "[ ]", "move", "n", "new", "e", "edit", "c", "comment", "x", "archive", "?", "help", "q", "quit")
	case TabBacklog:
		return footerHints("↑↓", "navigate", "s", "suggest", "S", "groom all", "a", "apply", "d", "duplicates", "m", "to sprint", "?", "help")
	case TabStandup:
		if m.standup != nil && m.standup.editing {
			return footerHints("tab", "next field", "^S", "submit", "^F", "auto-fill", "esc", "done")
		}
		return footerHints("⏎", "edit", "^F", "auto-fill", "^S", "submit", "^L", "clear", "^D", "delete", "X", "clear history")
	}
	return footerHints("r", "refresh", "⇥", "next view", "?", "help", "q", "quit")
}
