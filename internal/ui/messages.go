package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"scrummaster/internal/reports"
	"scrummaster/internal/standup"
	"scrummaster/internal/suggest"
)

type tickMsg struct{}

func scheduleTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg { return tickMsg{} })
}

// collectionChangedMsg reports that a collection published a new snapshot.
type collectionChangedMsg struct {
	name string
}

func waitForChange(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return collectionChangedMsg{name: <-ch}
	}
}

// mountedMsg is sent once a collection's initial load finishes.
type mountedMsg struct {
	name string
	err  error
}

// mutationDoneMsg reports a finished write against a collection.
type mutationDoneMsg struct {
	op      string
	key     string
	success string
	err     error
}

type suggestionMsg struct {
	key        string
	suggestion suggest.Suggestion
	err        error
}

type groomResultMsg struct {
	result suggest.Result
}

func waitForGroomResult(ch <-chan suggest.Result) tea.Cmd {
	return func() tea.Msg {
		return groomResultMsg{result: <-ch}
	}
}

type duplicatesMsg struct {
	key        string
	duplicates []suggest.Duplicate
	err        error
}

type standupFilledMsg struct {
	fill standup.AutoFill
	err  error
}

type standupSubmittedMsg struct {
	summary string
	err     error
}

type standupHistoryMsg struct {
	records []standup.Record
	err     error
}

type standupSavedMsg struct {
	err error
}

type reportsLoadedMsg struct {
	dashboard reports.Dashboard
}

type toastExpiredMsg struct {
	id int
}

func scheduleToastExpiry(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}
