package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"scrummaster/internal/debug"
	"scrummaster/internal/standup"
)

const (
	standupFieldLines = 3
	standupFieldWidth = 60
)

const (
	fieldYesterday = iota
	fieldToday
	fieldBlockers
	standupFieldCount
)

var standupFieldLabels = [standupFieldCount]string{"Yesterday", "Today", "Blockers"}

// standupModel holds the form editor and the server-side history list.
type standupModel struct {
	fields   [standupFieldCount]textarea.Model
	focus    int
	editing  bool
	summary  string
	upcoming string

	records        []standup.Record
	cursor         int
	historyLoaded  bool
	loadingHistory bool
}

func newStandupModel(form standup.Form) *standupModel {
	s := &standupModel{}
	placeholders := [standupFieldCount]string{
		"What did you finish?",
		"What are you working on?",
		"Anything in your way?",
	}
	for i := range s.fields {
		ta := newTextarea(standupFieldWidth, standupFieldLines)
		ta.Placeholder = placeholders[i]
		s.fields[i] = ta
	}
	s.setForm(form)
	return s
}

func (s *standupModel) form() standup.Form {
	return standup.Form{
		Yesterday: s.fields[fieldYesterday].Value(),
		Today:     s.fields[fieldToday].Value(),
		Blockers:  s.fields[fieldBlockers].Value(),
	}
}

func (s *standupModel) setForm(f standup.Form) {
	s.fields[fieldYesterday].SetValue(f.Yesterday)
	s.fields[fieldToday].SetValue(f.Today)
	s.fields[fieldBlockers].SetValue(f.Blockers)
}

func (s *standupModel) setFocus(idx int) tea.Cmd {
	s.focus = (idx + standupFieldCount) % standupFieldCount
	for i := range s.fields {
		s.fields[i].Blur()
	}
	return s.fields[s.focus].Focus()
}

func (s *standupModel) stopEditing() {
	s.editing = false
	for i := range s.fields {
		s.fields[i].Blur()
	}
}

// updateFields forwards non-key messages such as cursor blinks.
func (s *standupModel) updateFields(msg tea.Msg) tea.Cmd {
	if !s.editing {
		return nil
	}
	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return cmd
}

func (m *App) handleStandupKey(msg tea.KeyMsg) tea.Cmd {
	s := m.standup
	if s == nil {
		return nil
	}
	switch {
	case keyMatches(msg, m.keys.Detail), keyMatches(msg, m.keys.Edit):
		s.editing = true
		return s.setFocus(s.focus)
	case keyMatches(msg, m.keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case keyMatches(msg, m.keys.Down):
		if s.cursor < len(s.records)-1 {
			s.cursor++
		}
	case keyMatches(msg, m.keys.AutoFill):
		return m.autoFillStandup()
	case keyMatches(msg, m.keys.Submit):
		return m.submitStandup()
	case keyMatches(msg, m.keys.ClearForm):
		return m.clearStandupForm()
	case keyMatches(msg, m.keys.Copy):
		if s.summary != "" {
			if err := m.cfg.CopyToClipboard(s.summary); err != nil {
				return m.showError("Copy", err)
			}
			return m.showToast(toastSuccess, "Copied summary to clipboard.")
		}
	case keyMatches(msg, m.keys.DeleteEntry):
		if len(s.records) == 0 {
			return nil
		}
		rec := s.records[s.cursor]
		m.modal = NewConfirmOverlay(
			fmt.Sprintf("Delete standup #%d?", rec.ID),
			"This removes the standup from the server history.",
			confirmAction{kind: actionDeleteStandup, id: rec.ID},
		)
	case keyMatches(msg, m.keys.ClearHistory):
		if len(s.records) == 0 {
			return nil
		}
		m.modal = NewConfirmOverlay(
			"Clear all standup history?",
			"This removes every standup stored on the server.",
			confirmAction{kind: actionClearStandups},
		)
	}
	return nil
}

// handleStandupEditingKey routes keys to the focused field. Only ctrl+c
// quits while typing.
func (m *App) handleStandupEditingKey(msg tea.KeyMsg) tea.Cmd {
	s := m.standup
	switch msg.String() {
	case "ctrl+c":
		m.shutdown()
		return tea.Quit
	case "esc":
		s.stopEditing()
		return nil
	case "tab":
		return s.setFocus(s.focus + 1)
	case "shift+tab":
		return s.setFocus(s.focus - 1)
	}
	switch {
	case keyMatches(msg, m.keys.Submit):
		return m.submitStandup()
	case keyMatches(msg, m.keys.AutoFill):
		return m.autoFillStandup()
	}

	before := s.fields[s.focus].Value()
	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	if s.fields[s.focus].Value() == before {
		return cmd
	}
	return tea.Batch(cmd, m.saveStandupForm(s.form()))
}

// saveStandupForm stamps form with the next revision so an older autosave
// finishing late cannot replace it.
func (m *App) saveStandupForm(form standup.Form) tea.Cmd {
	journal, ctx, rev := m.cfg.Standup.Journal, m.ctx, m.nextRevision()
	return func() tea.Msg {
		_, err := journal.SetFormAt(ctx, form, rev)
		return standupSavedMsg{err: err}
	}
}

func (m *App) autoFillStandup() tea.Cmd {
	svc, ctx := m.cfg.Standup, m.ctx
	m.busy++
	return func() tea.Msg {
		fill, err := svc.AutoFill(ctx)
		return standupFilledMsg{fill: fill, err: err}
	}
}

func (m *App) submitStandup() tea.Cmd {
	svc, ctx := m.cfg.Standup, m.ctx
	form := m.standup.form()
	m.busy++
	return func() tea.Msg {
		summary, err := svc.Submit(ctx, form)
		return standupSubmittedMsg{summary: summary, err: err}
	}
}

func (m *App) clearStandupForm() tea.Cmd {
	m.standup.setForm(standup.Form{})
	m.standup.summary = ""
	m.standup.upcoming = ""
	journal, ctx, rev := m.cfg.Standup.Journal, m.ctx, m.nextRevision()
	return func() tea.Msg {
		return standupSavedMsg{err: journal.ClearForm(ctx, rev)}
	}
}

func (m *App) loadStandupHistory() tea.Cmd {
	if m.cfg.Standup == nil || m.standup == nil {
		return nil
	}
	m.standup.loadingHistory = true
	client, ctx := m.cfg.Standup.Client, m.ctx
	return func() tea.Msg {
		records, err := client.History(ctx)
		return standupHistoryMsg{records: records, err: err}
	}
}

func (m *App) deleteStandup(id int) tea.Cmd {
	client := m.cfg.Standup.Client
	return tea.Sequence(
		m.mutate("Delete standup", "", fmt.Sprintf("Standup #%d deleted", id), func(ctx context.Context) error {
			return client.DeleteHistory(ctx, id)
		}),
		m.loadStandupHistory(),
	)
}

func (m *App) clearStandups() tea.Cmd {
	client := m.cfg.Standup.Client
	return tea.Sequence(
		m.mutate("Clear history", "", "Standup history cleared", func(ctx context.Context) error {
			return client.ClearHistory(ctx)
		}),
		m.loadStandupHistory(),
	)
}

// updateStandup applies replies from the standup service.
func (m *App) updateStandup(msg tea.Msg) tea.Cmd {
	s := m.standup
	if s == nil {
		return nil
	}
	switch msg := msg.(type) {
	case standupFilledMsg:
		m.doneBusy()
		if msg.err != nil {
			return m.showError("Auto-fill", msg.err)
		}
		s.setForm(msg.fill.Form())
		s.upcoming = msg.fill.UpcomingBacklog
		return tea.Batch(
			m.showToast(toastSuccess, "Standup auto-filled from the sprint"),
			m.saveStandupForm(s.form()),
		)

	case standupSubmittedMsg:
		m.doneBusy()
		if msg.summary != "" {
			s.summary = msg.summary
			s.stopEditing()
		}
		if msg.err != nil {
			return m.showError("Submit standup", msg.err)
		}
		return tea.Batch(m.showToast(toastSuccess, "Standup summary generated"), m.loadStandupHistory())

	case standupHistoryMsg:
		s.loadingHistory = false
		if msg.err != nil {
			return m.showError("Standup history", msg.err)
		}
		s.records = msg.records
		s.historyLoaded = true
		if s.cursor >= len(s.records) {
			s.cursor = max(len(s.records)-1, 0)
		}
		return nil

	case standupSavedMsg:
		if msg.err != nil {
			debug.Logger().Debug("standup autosave failed", "error", msg.err)
			return m.showError("Save standup", msg.err)
		}
		return nil
	}
	return nil
}

func (m *App) doneBusy() {
	if m.busy > 0 {
		m.busy--
	}
}

func (m *App) renderStandup() string {
	s := m.standup
	if s == nil {
		return styleMuted().Render("Standup is not configured")
	}
	width := m.detailWidth()

	var form strings.Builder
	for i := range s.fields {
		label := standupFieldLabels[i]
		if s.editing && i == s.focus {
			label = styleKey().Render("▸ " + label)
		} else {
			label = styleLabel().Render("  " + label)
		}
		form.WriteString(label + "\n")
		form.WriteString(s.fields[i].View() + "\n")
	}
	if s.upcoming != "" {
		form.WriteString(styleLabel().Render("Upcoming backlog: ") + styleText().Render(s.upcoming) + "\n")
	}
	parts := []string{stylePane(s.editing).Width(width + 2).Render(strings.TrimRight(form.String(), "\n"))}

	if s.summary != "" {
		parts = append(parts, stylePane(false).Width(width+2).Render(
			styleLabel().Render("Summary")+"\n"+m.markdown(s.summary)))
	}
	parts = append(parts, m.renderStandupHistory(width))
	return strings.Join(parts, "\n")
}

func (m *App) renderStandupHistory(width int) string {
	s := m.standup
	var b strings.Builder
	b.WriteString(styleLabel().Render("History") + "\n")
	switch {
	case s.loadingHistory && !s.historyLoaded:
		b.WriteString(styleMuted().Render("Loading history…"))
	case len(s.records) == 0:
		b.WriteString(styleMuted().Render("No standups yet"))
	}
	for i, rec := range s.records {
		line := fmt.Sprintf("#%d  %s", rec.ID, firstLine(rec.Summary, rec.Today))
		line = styleText().Render(line)
		if i == s.cursor {
			line = styleSelected().Width(width).Render(line)
		}
		b.WriteString(line + "\n")
	}
	return stylePane(false).Width(width + 2).Render(strings.TrimRight(b.String(), "\n"))
}

func firstLine(candidates ...string) string {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			line, _, _ := strings.Cut(c, "\n")
			return line
		}
	}
	return ""
}
