package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"scrummaster/internal/domain"
	"scrummaster/internal/suggest"
	"scrummaster/internal/viewsync"
)

// backlogState tracks the cursor and everything the suggestion service has
// said about backlog issues in this session.
type backlogState struct {
	cursor      int
	suggestions map[string]suggest.Result
	pending     map[string]bool
	duplicates  map[string][]suggest.Duplicate
	grooming    int
	runs        []*suggest.Run
	showDetail  bool
}

func newBacklogState() backlogState {
	return backlogState{
		suggestions: make(map[string]suggest.Result),
		pending:     make(map[string]bool),
		duplicates:  make(map[string][]suggest.Duplicate),
	}
}

func (b *backlogState) clamp(n int) {
	switch {
	case n == 0:
		b.cursor = 0
	case b.cursor >= n:
		b.cursor = n - 1
	}
}

func (b *backlogState) selected(snap viewsync.Snapshot) (viewsync.View, bool) {
	if len(snap.Issues) == 0 {
		return viewsync.View{}, false
	}
	return snap.Issues[b.cursor], true
}

func (m *App) handleBacklogKey(msg tea.KeyMsg) tea.Cmd {
	snap := m.backlogSnap
	item, ok := m.backlog.selected(snap)

	switch {
	case keyMatches(msg, m.keys.Up):
		if m.backlog.cursor > 0 {
			m.backlog.cursor--
		}
	case keyMatches(msg, m.keys.Down):
		if m.backlog.cursor < len(snap.Issues)-1 {
			m.backlog.cursor++
		}
	case keyMatches(msg, m.keys.Detail):
		m.backlog.showDetail = !m.backlog.showDetail
	case keyMatches(msg, m.keys.New):
		m.modal = NewCreateOverlay(viewsync.NameBacklog)
	case keyMatches(msg, m.keys.GroomAll):
		return m.groomAll(snap)
	case !ok:
		return nil
	case keyMatches(msg, m.keys.Suggest):
		return m.requestSuggestion(item.Issue)
	case keyMatches(msg, m.keys.Duplicates):
		return m.requestDuplicates(item.Issue)
	case keyMatches(msg, m.keys.Apply):
		return m.applySuggestion(item.Key)
	case keyMatches(msg, m.keys.ToSprint):
		return m.moveToSprint(item.Key)
	case keyMatches(msg, m.keys.Edit):
		m.modal = NewEditOverlay(viewsync.NameBacklog, item.Issue, false)
	case keyMatches(msg, m.keys.Comment):
		m.openComments(viewsync.NameBacklog, item)
	case keyMatches(msg, m.keys.Copy):
		return m.copyKey(item.Key)
	case keyMatches(msg, m.keys.Archive):
		if item.Status == domain.StatusDone {
			return m.showToast(toastInfo, "Done issues cannot be archived")
		}
		m.modal = archiveConfirm(viewsync.NameBacklog, item.Issue)
	}
	return nil
}

func (m *App) requestSuggestion(issue domain.Issue) tea.Cmd {
	if m.cfg.Suggest == nil {
		return m.showToast(toastInfo, "Suggestions are not configured")
	}
	if m.backlog.pending[issue.Key] {
		return nil
	}
	m.backlog.pending[issue.Key] = true
	client, ctx := m.cfg.Suggest, m.ctx
	return func() tea.Msg {
		s, err := client.Suggest(ctx, issue.Key, issue.Summary, issue.Description)
		return suggestionMsg{key: issue.Key, suggestion: s, err: err}
	}
}

// groomAll requests suggestions for every backlog issue. Results arrive one
// at a time through the groomer's OnResult hook.
func (m *App) groomAll(snap viewsync.Snapshot) tea.Cmd {
	if m.cfg.Groomer == nil {
		return m.showToast(toastInfo, "Suggestions are not configured")
	}
	issues := make([]domain.Issue, 0, len(snap.Issues))
	for _, v := range snap.Issues {
		if m.backlog.pending[v.Key] {
			continue
		}
		m.backlog.pending[v.Key] = true
		issues = append(issues, v.Issue)
	}
	if len(issues) == 0 {
		return m.showToast(toastInfo, "Nothing to groom")
	}
	m.backlog.grooming += len(issues)
	m.backlog.runs = append(m.backlog.runs, m.cfg.Groomer.GroomAll(m.ctx, issues))
	return m.showToast(toastInfo, fmt.Sprintf("Grooming %d issue%s…", len(issues), plural(len(issues))))
}

func (m *App) requestDuplicates(issue domain.Issue) tea.Cmd {
	if m.cfg.Suggest == nil {
		return m.showToast(toastInfo, "Suggestions are not configured")
	}
	client, ctx := m.cfg.Suggest, m.ctx
	m.busy++
	return func() tea.Msg {
		dups, err := client.Duplicates(ctx, issue.Key, issue.Summary)
		return duplicatesMsg{key: issue.Key, duplicates: dups, err: err}
	}
}

func (m *App) applySuggestion(key string) tea.Cmd {
	res, ok := m.backlog.suggestions[key]
	if !ok || res.Err != nil || res.Suggestion.IsEmpty() {
		return m.showToast(toastInfo, "No suggestion to apply for "+key)
	}
	c := m.cfg.Backlog
	delete(m.backlog.suggestions, key)
	return m.mutate("Apply suggestion", key, "Suggestion applied to "+key, func(ctx context.Context) error {
		return c.ApplySuggestion(ctx, key, res.Suggestion)
	})
}

func (m *App) moveToSprint(key string) tea.Cmd {
	c := m.cfg.Backlog
	m.busy++
	ctx := m.ctx
	return func() tea.Msg {
		text, err := c.MoveToSprint(ctx, key)
		if text == "" {
			text = key + " moved to sprint"
		}
		return mutationDoneMsg{op: "Move to sprint", key: key, success: text, err: err}
	}
}

// updateBacklog records suggestion and duplicate replies.
func (m *App) updateBacklog(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case suggestionMsg:
		delete(m.backlog.pending, msg.key)
		m.backlog.suggestions[msg.key] = suggest.Result{Key: msg.key, Suggestion: msg.suggestion, Err: msg.err}
		if msg.err != nil {
			return m.showError("Suggest "+msg.key, msg.err)
		}
		return nil

	case groomResultMsg:
		r := msg.result
		delete(m.backlog.pending, r.Key)
		m.backlog.suggestions[r.Key] = r
		if m.backlog.grooming > 0 {
			m.backlog.grooming--
		}
		cmds := []tea.Cmd{waitForGroomResult(m.groomResults)}
		if m.backlog.grooming == 0 {
			m.backlog.runs = nil
			cmds = append(cmds, m.showToast(toastSuccess, "Grooming finished"))
		}
		return tea.Batch(cmds...)

	case duplicatesMsg:
		if m.busy > 0 {
			m.busy--
		}
		if msg.err != nil {
			return m.showError("Duplicates "+msg.key, msg.err)
		}
		m.backlog.duplicates[msg.key] = msg.duplicates
		if len(msg.duplicates) == 0 {
			return m.showToast(toastInfo, "No duplicates found for "+msg.key)
		}
		return nil
	}
	return nil
}

// outstanding counts groom requests still waiting on the service.
func (b backlogState) outstanding() int {
	n := 0
	for _, run := range b.runs {
		n += run.Pending()
	}
	return n
}

func (m *App) renderBacklog() string {
	snap := m.backlogSnap
	if len(snap.Issues) == 0 {
		if snap.Loading() {
			return styleMuted().Render("Loading backlog…")
		}
		return styleMuted().Render("Backlog is empty")
	}
	width := m.detailWidth()

	var b strings.Builder
	for i, item := range snap.Issues {
		marker := "  "
		if m.backlog.pending[item.Key] {
			marker = m.spinner.View() + " "
		} else if res, ok := m.backlog.suggestions[item.Key]; ok && res.Err == nil && !res.Suggestion.IsEmpty() {
			marker = styleKey().Render("✦ ")
		}
		line := marker + styleKey().Render(item.Key) + " " + styleText().Render(item.Summary)
		if n := len(item.Comments); n > 0 {
			line += styleMuted().Render(fmt.Sprintf(" (%d)", n))
		}
		line = ansi.Truncate(line, width, "…")
		if i == m.backlog.cursor {
			line = styleSelected().Width(width).Render(line)
		}
		b.WriteString(line + "\n")
	}
	list := stylePane(true).Width(width + 2).Render(strings.TrimRight(b.String(), "\n"))

	item, _ := m.backlog.selected(snap)
	parts := []string{list}
	if len(m.backlog.runs) > 0 {
		n := m.backlog.outstanding()
		parts = append(parts, styleMuted().Render(fmt.Sprintf("Grooming: %d request%s outstanding", n, plural(n))))
	}
	if m.backlog.showDetail {
		parts = append(parts, m.renderDetail(item))
	}
	if panel := m.renderSuggestionPanel(item.Key); panel != "" {
		parts = append(parts, panel)
	}
	return strings.Join(parts, "\n")
}

func (m *App) renderSuggestionPanel(key string) string {
	var b strings.Builder
	if res, ok := m.backlog.suggestions[key]; ok {
		switch {
		case res.Err != nil:
			b.WriteString(styleError().Render("Suggestion failed: "+res.Err.Error()) + "\n")
		case res.Suggestion.IsEmpty():
			b.WriteString(styleMuted().Render("No suggestion returned") + "\n")
		default:
			s := res.Suggestion
			b.WriteString(styleLabel().Render("Suggestion") + "\n")
			for _, row := range [][2]string{
				{"Clarification", s.Clarification},
				{"Acceptance criteria", s.AcceptanceCriteria},
				{"Effort", s.Effort},
				{"Type", s.Type},
				{"Priority", s.Priority},
				{"Status", s.Status},
			} {
				if strings.TrimSpace(row[1]) == "" {
					continue
				}
				b.WriteString(styleLabel().Render(row[0]+": ") + styleText().Render(row[1]) + "\n")
			}
			b.WriteString(styleMuted().Render("press a to apply") + "\n")
		}
	}
	if dups := m.backlog.duplicates[key]; len(dups) > 0 {
		b.WriteString(styleLabel().Render("Possible duplicates") + "\n")
		for _, d := range dups {
			b.WriteString(fmt.Sprintf("%s %s %s\n",
				styleKey().Render(d.Key), styleText().Render(d.Summary), styleMuted().Render(fmt.Sprintf("%d%%", d.Percent()))))
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return stylePane(false).Width(m.detailWidth()).Render(strings.TrimRight(b.String(), "\n"))
}
