package ui

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"scrummaster/internal/domain"
	"scrummaster/internal/jira"
	"scrummaster/internal/overlay"
	"scrummaster/internal/reports"
	"scrummaster/internal/standup"
	"scrummaster/internal/suggest"
	"scrummaster/internal/viewsync"
)

// testEnv is an App over in-memory fakes.
type testEnv struct {
	app     *App
	jira    *jira.MockClient
	suggest *suggest.MockClient
	standup *standup.MockClient
	reports *reports.MockClient
	journal *standup.Journal
	copied  []string

	mu      sync.Mutex
	sprint  []domain.Issue
	backlog []domain.Issue
}

func newTestEnv(t *testing.T, sprint, backlog []domain.Issue) *testEnv {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)

	env := &testEnv{
		jira:    jira.NewMockClient(),
		suggest: suggest.NewMockClient(),
		standup: standup.NewMockClient(),
		reports: reports.NewMockClient(),
		sprint:  sprint,
		backlog: backlog,
	}
	env.jira.ListFn = func(context.Context) ([]domain.Issue, error) {
		env.mu.Lock()
		defer env.mu.Unlock()
		return append([]domain.Issue(nil), env.sprint...), nil
	}
	env.jira.BacklogFn = func(context.Context) ([]domain.Issue, error) {
		env.mu.Lock()
		defer env.mu.Unlock()
		return append([]domain.Issue(nil), env.backlog...), nil
	}
	env.jira.UpdateFn = func(_ context.Context, key string, fields jira.UpdateFields) error {
		env.mu.Lock()
		defer env.mu.Unlock()
		for _, list := range [][]domain.Issue{env.sprint, env.backlog} {
			for i := range list {
				if list[i].Key != key {
					continue
				}
				if fields.Status != nil {
					list[i].Status = *fields.Status
					list[i].RawStatus = fields.Status.WireName()
				}
				if fields.Summary != nil {
					list[i].Summary = *fields.Summary
				}
				return nil
			}
		}
		return fmt.Errorf("no issue %s", key)
	}
	env.jira.ApplySuggestionFn = env.jira.UpdateFn
	env.jira.DeleteFn = func(_ context.Context, key string) error {
		env.mu.Lock()
		defer env.mu.Unlock()
		env.sprint = without(env.sprint, key)
		env.backlog = without(env.backlog, key)
		return nil
	}
	env.jira.MoveToSprintFn = func(_ context.Context, key string) (string, error) {
		env.mu.Lock()
		defer env.mu.Unlock()
		for _, issue := range env.backlog {
			if issue.Key == key {
				env.backlog = without(env.backlog, key)
				env.sprint = append(env.sprint, issue)
				return fmt.Sprintf("Issue %s moved to sprint!", key), nil
			}
		}
		return "", fmt.Errorf("no backlog issue %s", key)
	}

	ctx := context.Background()
	store, err := overlay.Open(ctx, overlay.NewMemoryBackend())
	if err != nil {
		t.Fatalf("overlay.Open: %v", err)
	}
	journal, err := standup.OpenJournal(ctx, store)
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	env.journal = journal

	bus := viewsync.NewBus()
	app, err := NewApp(Config{
		Board:        viewsync.NewBoard(env.jira, store, bus),
		Backlog:      viewsync.NewBacklog(env.jira, store, bus),
		Suggest:      env.suggest,
		Groomer:      suggest.NewGroomer(env.suggest, 2),
		Standup:      &standup.Service{Client: env.standup, Journal: journal},
		Reports:      env.reports,
		OutputFormat: "plain",
		CopyToClipboard: func(s string) error {
			env.copied = append(env.copied, s)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	app.width, app.height = 140, 40
	t.Cleanup(app.shutdown)
	env.app = app
	return env
}

func without(list []domain.Issue, key string) []domain.Issue {
	out := list[:0:0]
	for _, issue := range list {
		if issue.Key != key {
			out = append(out, issue)
		}
	}
	return out
}

func testIssue(key, status string) domain.Issue {
	return domain.Issue{Key: key, Summary: "summary " + key, Status: domain.Classify(status), RawStatus: status}
}

// mount loads the collection for tab and delivers the result.
func (env *testEnv) mount(t *testing.T, tab Tab) {
	t.Helper()
	c := env.app.collectionFor(tab)
	env.app.tab = tab
	msg := env.app.mountCmd(c)()
	mounted, ok := msg.(mountedMsg)
	if !ok {
		t.Fatalf("expected mountedMsg, got %T", msg)
	}
	if mounted.err != nil {
		t.Fatalf("mount %s: %v", mounted.name, mounted.err)
	}
	env.app.Update(msg)
}

// press sends a key to the app and delivers the returned command.
func (env *testEnv) press(t *testing.T, k string) tea.Msg {
	t.Helper()
	_, cmd := env.app.Update(keyMsg(k))
	return env.deliver(cmd)
}

// deliver runs cmd, feeds its message back to the app and follows the
// resulting commands a few levels deep. It returns the first message.
// Commands that do not return promptly (ticks, channel waits) are
// abandoned.
func (env *testEnv) deliver(cmd tea.Cmd) tea.Msg {
	return env.deliverDepth(cmd, 4)
}

func (env *testEnv) deliverDepth(cmd tea.Cmd, depth int) tea.Msg {
	if cmd == nil || depth == 0 {
		return nil
	}
	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-out:
	case <-time.After(100 * time.Millisecond):
		return nil
	}
	switch msg.(type) {
	case nil, tea.BatchMsg, toastExpiredMsg:
		return msg
	}
	_, next := env.app.Update(msg)
	env.deliverDepth(next, depth-1)
	return msg
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+f":
		return tea.KeyMsg{Type: tea.KeyCtrlF}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}
