package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"scrummaster/internal/ui/theme"
)

// confirmedMsg is sent when the user approves a ConfirmOverlay.
type confirmedMsg struct {
	action confirmAction
}

type confirmAction struct {
	kind       string
	collection string
	key        string
	id         int
}

// ConfirmOverlay asks a yes/no question before a destructive action.
type ConfirmOverlay struct {
	title  string
	body   string
	action confirmAction
}

// NewConfirmOverlay returns a confirmation for action.
func NewConfirmOverlay(title, body string, action confirmAction) *ConfirmOverlay {
	return &ConfirmOverlay{title: title, body: body, action: action}
}

// Update handles y/n keys.
func (m *ConfirmOverlay) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("y", "enter"))):
		return emit(confirmedMsg{action: m.action})
	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("n", "esc"))):
		return closeOverlay
	}
	return nil
}

// View renders the confirmation.
func (m *ConfirmOverlay) View() string {
	var b strings.Builder
	b.WriteString(styleError().Bold(true).Render(m.title) + "\n\n")
	b.WriteString(styleText().Render(m.body) + "\n\n")
	b.WriteString(footerHints("y", "Confirm", "n/esc", "Cancel"))
	return styleOverlay().
		BorderForeground(theme.Current().Error).
		Width(overlayWidth).
		Render(b.String())
}
