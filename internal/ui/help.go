package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// HelpOverlay lists the key bindings by section.
type HelpOverlay struct {
	sections []helpSection
}

type helpSection struct {
	title    string
	bindings []key.Binding
}

func newHelpOverlay(k KeyMap) *HelpOverlay {
	return &HelpOverlay{sections: []helpSection{
		{"Navigation", []key.Binding{k.Up, k.Left, k.NextTab, k.Detail}},
		{"Board", []key.Binding{k.MovePrev, k.MoveNext, k.MoveToDo, k.MoveDoing, k.MoveDone}},
		{"Issues", []key.Binding{k.New, k.Edit, k.Archive, k.Comment, k.Copy}},
		{"Backlog", []key.Binding{k.Suggest, k.GroomAll, k.Duplicates, k.Apply, k.ToSprint}},
		{"Standup", []key.Binding{k.AutoFill, k.Submit, k.ClearForm, k.DeleteEntry, k.ClearHistory}},
		{"General", []key.Binding{k.Refresh, k.Theme, k.Help, k.Quit}},
	}}
}

// Update closes the overlay on esc, ? or q.
func (m *HelpOverlay) Update(msg tea.Msg) tea.Cmd {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc", "?", "q", "enter":
			return closeOverlay
		}
	}
	return nil
}

// View renders the overlay.
func (m *HelpOverlay) View() string {
	var b strings.Builder
	b.WriteString(styleAppHeader().Render("Keyboard shortcuts") + "\n\n")
	for _, sec := range m.sections {
		b.WriteString(styleLabel().Render(sec.title) + "\n")
		for _, binding := range sec.bindings {
			h := binding.Help()
			b.WriteString("  " + styleKey().Width(14).Render(h.Key) + styleText().Render(h.Desc) + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(footerHints("esc", "close"))
	return styleOverlay().Width(overlayWidth).Render(b.String())
}
