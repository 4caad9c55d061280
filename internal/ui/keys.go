package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts for the application.
// Each binding includes the actual keys and help text for display.
type KeyMap struct {
	// Navigation
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	NextTab key.Binding
	PrevTab key.Binding

	// Issue actions
	MovePrev     key.Binding
	MoveNext     key.Binding
	MoveToDo     key.Binding
	MoveDoing    key.Binding
	MoveDone     key.Binding
	New          key.Binding
	Edit         key.Binding
	Archive      key.Binding
	Comment      key.Binding
	Copy         key.Binding
	Detail       key.Binding
	Suggest      key.Binding
	GroomAll     key.Binding
	Duplicates   key.Binding
	Apply        key.Binding
	ToSprint     key.Binding
	AutoFill     key.Binding
	Submit       key.Binding
	ClearForm    key.Binding
	DeleteEntry  key.Binding
	ClearHistory key.Binding

	// Global
	Refresh key.Binding
	Theme   key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/↓  j/k", "Move up/down"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↑/↓  j/k", "Move up/down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/→  h/l", "Switch column"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("←/→  h/l", "Switch column"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("⇥ (Tab)", "Next view"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("⇧⇥", "Previous view"),
		),

		MovePrev: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[ ]", "Move to previous/next column"),
		),
		MoveNext: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("[ ]", "Move to previous/next column"),
		),
		MoveToDo: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1 2 3", "Move to To Do/In Progress/Done"),
		),
		MoveDoing: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("1 2 3", "Move to To Do/In Progress/Done"),
		),
		MoveDone: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("1 2 3", "Move to To Do/In Progress/Done"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New issue"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Edit issue"),
		),
		Archive: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Archive issue"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Comment"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Copy key"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("⏎ (Enter)", "Toggle detail"),
		),
		Suggest: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "AI suggestion"),
		),
		GroomAll: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Auto-groom all"),
		),
		Duplicates: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Find duplicates"),
		),
		Apply: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Apply suggestion"),
		),
		ToSprint: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Move to sprint"),
		),
		AutoFill: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("^F", "Auto-fill from sprint"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("^S", "Submit"),
		),
		ClearForm: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("^L", "Clear form"),
		),
		DeleteEntry: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("^D", "Delete selected standup"),
		),
		ClearHistory: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "Clear server history"),
		),

		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Cycle theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "Close/cancel"),
		),
	}
}
