package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"scrummaster/internal/config"
	"scrummaster/internal/domain"
	appErrors "scrummaster/internal/errors"
	"scrummaster/internal/jira"
	"scrummaster/internal/overlay"
	"scrummaster/internal/reports"
	"scrummaster/internal/standup"
	"scrummaster/internal/suggest"
	"scrummaster/internal/ui"
	"scrummaster/internal/viewsync"
)

type fakeEnv struct {
	jira    *jira.MockClient
	suggest *suggest.MockClient
	standup *standup.MockClient
	svc     *services
}

func newFakeEnv(t *testing.T) *fakeEnv {
	t.Helper()
	t.Cleanup(config.ResetForTesting(t))

	store, err := overlay.Open(context.Background(), overlay.NewMemoryBackend())
	if err != nil {
		t.Fatalf("overlay.Open: %v", err)
	}
	journal, err := standup.OpenJournal(context.Background(), store)
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	tracker := jira.NewMockClient()
	tracker.ListFn = func(context.Context) ([]domain.Issue, error) {
		return []domain.Issue{{Key: "SM-1", Summary: "Login page", Status: domain.StatusToDo, RawStatus: "To Do"}}, nil
	}
	tracker.DeleteFn = func(context.Context, string) error { return nil }
	standupClient := standup.NewMockClient()
	suggester := suggest.NewMockClient()
	bus := viewsync.NewBus()

	return &fakeEnv{
		jira:    tracker,
		suggest: suggester,
		standup: standupClient,
		svc: &services{
			jira:    tracker,
			suggest: suggester,
			standup: &standup.Service{Client: standupClient, Journal: journal},
			reports: reports.NewMockClient(),
			groomer: suggest.NewGroomer(suggester, 1),
			board:   viewsync.NewBoard(tracker, store, bus),
			backlog: viewsync.NewBacklog(tracker, store, bus),
			store:   store,
		},
	}
}

func (e *fakeEnv) deps() deps {
	return deps{
		open:        func(context.Context) (*services, error) { return e.svc, nil },
		newProgram:  func(*ui.App) programRunner { return noopProgram{} },
		interactive: func() bool { return false },
		confirm: func(context.Context, domain.Issue) (bool, error) {
			return false, errors.New("unexpected prompt")
		},
		now: time.Now,
	}
}

func execute(t *testing.T, d deps, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(d)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

type noopProgram struct{}

func (noopProgram) Run() (tea.Model, error) { return nil, nil }

type errorProgram struct{ err error }

func (p errorProgram) Run() (tea.Model, error) { return nil, p.err }

func TestRunProgram(t *testing.T) {
	app := &ui.App{}
	okBuilder := func(ui.Config) (*ui.App, error) { return app, nil }

	t.Run("missingCollectionsPassThrough", func(t *testing.T) {
		err := runProgram(ui.Config{}, ui.NewApp, func(*ui.App) programRunner { return noopProgram{} })
		if !errors.Is(err, ui.ErrMissingCollections) {
			t.Fatalf("expected ErrMissingCollections, got %v", err)
		}
	})

	t.Run("builderErrorWrapped", func(t *testing.T) {
		err := runProgram(ui.Config{}, func(ui.Config) (*ui.App, error) { return nil, errors.New("boom") }, nil)
		if err == nil || !strings.Contains(err.Error(), "initialize UI: boom") {
			t.Fatalf("expected wrapped builder error, got %v", err)
		}
	})

	t.Run("nilFactory", func(t *testing.T) {
		if err := runProgram(ui.Config{}, okBuilder, nil); err == nil {
			t.Fatal("expected error for nil factory")
		}
	})

	t.Run("runError", func(t *testing.T) {
		err := runProgram(ui.Config{}, okBuilder, func(*ui.App) programRunner {
			return errorProgram{err: errors.New("tty lost")}
		})
		if err == nil || !strings.Contains(err.Error(), "run UI: tty lost") {
			t.Fatalf("expected wrapped run error, got %v", err)
		}
	})
}

func TestParseTab(t *testing.T) {
	cases := map[string]ui.Tab{"": ui.TabBoard, "Backlog": ui.TabBacklog, " standup ": ui.TabStandup, "reports": ui.TabReports}
	for raw, want := range cases {
		got, err := parseTab(raw)
		if err != nil || got != want {
			t.Fatalf("parseTab(%q) = %v, %v; want %v", raw, got, err, want)
		}
	}
	if _, err := parseTab("sprint"); err == nil {
		t.Fatal("expected error for unknown tab")
	}
}

func TestLoadConfigAppliesOnlyChangedFlags(t *testing.T) {
	env := newFakeEnv(t)
	root := newRootCmd(env.deps())
	flags := root.PersistentFlags()
	if err := flags.Parse([]string{"--server", "https://jira.example:9000", "--groom-concurrency", "3", "--timeout", "2s"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if err := loadConfig(flags); err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	if got := config.GetString(config.KeyServerURL); got != "https://jira.example:9000" {
		t.Fatalf("expected server override, got %q", got)
	}
	if got := config.GroomConcurrency(); got != 3 {
		t.Fatalf("expected groom concurrency 3, got %d", got)
	}
	if got := config.HTTPTimeout(); got != 2*time.Second {
		t.Fatalf("expected timeout 2s, got %s", got)
	}
	if got := config.GetString(config.KeyOverlayBackend); got != config.OverlayBackendSQLite {
		t.Fatalf("expected untouched overlay backend, got %q", got)
	}
}

func TestRunTUIPrintsExitSummary(t *testing.T) {
	env := newFakeEnv(t)
	d := env.deps()
	var built bool
	d.newProgram = func(app *ui.App) programRunner {
		built = app != nil
		return noopProgram{}
	}
	out, err := execute(t, d, "--tab", "backlog")
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if !built {
		t.Fatal("expected program factory to receive the app")
	}
	if !strings.Contains(out, "Scrum Master") || !strings.Contains(out, "session") {
		t.Fatalf("expected exit summary, got %q", out)
	}
}

func TestRootRejectsUnknownTab(t *testing.T) {
	env := newFakeEnv(t)
	if _, err := execute(t, env.deps(), "--tab", "nope"); err == nil {
		t.Fatal("expected error for unknown tab")
	}
}

func TestExport(t *testing.T) {
	t.Run("writesFileAtomically", func(t *testing.T) {
		env := newFakeEnv(t)
		env.jira.ExportCSVFn = func(_ context.Context, kind jira.ExportKind) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("key,summary\nSM-1,Login\n")), nil
		}
		path := filepath.Join(t.TempDir(), "backlog.csv")
		if _, err := execute(t, env.deps(), "export", "backlog", "-o", path); err != nil {
			t.Fatalf("export returned error: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read export: %v", err)
		}
		if string(data) != "key,summary\nSM-1,Login\n" {
			t.Fatalf("unexpected export contents %q", data)
		}
		if len(env.jira.ExportCSVCallArgs) != 1 || env.jira.ExportCSVCallArgs[0] != jira.ExportBacklog {
			t.Fatalf("expected backlog export, got %v", env.jira.ExportCSVCallArgs)
		}
	})

	t.Run("stdout", func(t *testing.T) {
		env := newFakeEnv(t)
		env.jira.ExportCSVFn = func(context.Context, jira.ExportKind) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("id\n1\n")), nil
		}
		out, err := execute(t, env.deps(), "export", "history")
		if err != nil {
			t.Fatalf("export returned error: %v", err)
		}
		if out != "id\n1\n" {
			t.Fatalf("unexpected stdout %q", out)
		}
	})

	t.Run("unknownKind", func(t *testing.T) {
		env := newFakeEnv(t)
		if _, err := execute(t, env.deps(), "export", "sprints"); err == nil {
			t.Fatal("expected error for unknown export kind")
		}
		if env.jira.ExportCSVCallCount != 0 {
			t.Fatalf("expected no request, got %d", env.jira.ExportCSVCallCount)
		}
	})
}

func TestArchive(t *testing.T) {
	t.Run("refusesWithoutTerminal", func(t *testing.T) {
		env := newFakeEnv(t)
		_, err := execute(t, env.deps(), "archive", "SM-1")
		if !appErrors.IsCode(err, appErrors.CodeValidationSkipped) {
			t.Fatalf("expected validation_skipped, got %v", err)
		}
		if env.jira.DeleteCallCount != 0 {
			t.Fatalf("expected no delete, got %d", env.jira.DeleteCallCount)
		}
	})

	t.Run("declinedPrompt", func(t *testing.T) {
		env := newFakeEnv(t)
		d := env.deps()
		d.interactive = func() bool { return true }
		var prompted domain.Issue
		d.confirm = func(_ context.Context, issue domain.Issue) (bool, error) {
			prompted = issue
			return false, nil
		}
		out, err := execute(t, d, "archive", "SM-1")
		if err != nil {
			t.Fatalf("archive returned error: %v", err)
		}
		if prompted.Summary != "Login page" {
			t.Fatalf("expected prompt to show the loaded issue, got %+v", prompted)
		}
		if !strings.Contains(out, "Cancelled.") || env.jira.DeleteCallCount != 0 {
			t.Fatalf("expected cancel without delete, got %q and %d deletes", out, env.jira.DeleteCallCount)
		}
	})

	t.Run("yesSkipsPrompt", func(t *testing.T) {
		env := newFakeEnv(t)
		out, err := execute(t, env.deps(), "archive", "SM-1", "--yes")
		if err != nil {
			t.Fatalf("archive returned error: %v", err)
		}
		if len(env.jira.DeleteCallArgs) != 1 || env.jira.DeleteCallArgs[0] != "SM-1" {
			t.Fatalf("expected SM-1 deleted, got %v", env.jira.DeleteCallArgs)
		}
		if !strings.Contains(out, "Archived SM-1.") {
			t.Fatalf("unexpected output %q", out)
		}
	})
}

func TestStandupSearchAndAsk(t *testing.T) {
	env := newFakeEnv(t)
	env.standup.SearchFn = func(_ context.Context, q string) ([]standup.Match, error) {
		return []standup.Match{{Document: "Fixed login", Metadata: map[string]any{"id": float64(4)}}}, nil
	}
	env.standup.AskFn = func(_ context.Context, q string) (standup.Answer, error) {
		return standup.Answer{Question: q, Answer: "Login was blocked by SSO.", ContextUsed: []string{"Blocked on SSO"}}, nil
	}

	out, err := execute(t, env.deps(), "standup", "search", "login", "bugs")
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}
	if !strings.Contains(out, "1. #4 Fixed login") {
		t.Fatalf("unexpected search output %q", out)
	}
	if got := env.standup.SearchCallArgs; len(got) != 1 || got[0] != "login bugs" {
		t.Fatalf("expected joined query, got %v", got)
	}

	out, err = execute(t, env.deps(), "standup", "ask", "why", "slow?", "--json")
	if err != nil {
		t.Fatalf("ask returned error: %v", err)
	}
	if !strings.Contains(out, `"answer": "Login was blocked by SSO."`) {
		t.Fatalf("unexpected ask output %q", out)
	}
}

func TestGroom(t *testing.T) {
	env := newFakeEnv(t)
	env.jira.BacklogFn = func(context.Context) ([]domain.Issue, error) {
		return []domain.Issue{
			{Key: "SM-7", Summary: "Export button"},
			{Key: "SM-8", Summary: "Dark mode"},
		}, nil
	}
	env.suggest.SuggestFn = func(_ context.Context, key, _, _ string) (suggest.Suggestion, error) {
		if key == "SM-8" {
			return suggest.Suggestion{}, errors.New("model unavailable")
		}
		return suggest.Suggestion{Clarification: "Add CSV export to the report page", Effort: "3"}, nil
	}

	out, err := execute(t, env.deps(), "groom")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 suggestions failed") {
		t.Fatalf("expected partial failure error, got %v", err)
	}
	if !strings.Contains(out, "SM-7  Export button\n    Add CSV export to the report page\n    effort 3, priority -") {
		t.Fatalf("unexpected groom output %q", out)
	}
	if !strings.Contains(out, "SM-8  Dark mode\n    failed: model unavailable") {
		t.Fatalf("expected failed slot in output, got %q", out)
	}
	if strings.Index(out, "SM-7") > strings.Index(out, "SM-8") {
		t.Fatalf("expected backlog order, got %q", out)
	}

	env.suggest.SuggestFn = func(context.Context, string, string, string) (suggest.Suggestion, error) {
		return suggest.Suggestion{Clarification: "ok"}, nil
	}
	out, err = execute(t, env.deps(), "groom", "--json")
	if err != nil {
		t.Fatalf("groom --json returned error: %v", err)
	}
	if !strings.Contains(out, `"clarification": "ok"`) {
		t.Fatalf("unexpected json output %q", out)
	}
}

func TestPrintExitSummary(t *testing.T) {
	snap := viewsync.Snapshot{
		Issues: make([]viewsync.View, 3),
		Buckets: map[domain.Status][]viewsync.View{
			domain.StatusToDo: make([]viewsync.View, 2),
			domain.StatusDone: make([]viewsync.View, 1),
		},
		LoadedAt: time.Now(),
	}
	var buf bytes.Buffer
	printExitSummary(&buf, ExitSummary{Version: "0.2.0", Duration: 90 * time.Second, Board: snap})
	out := buf.String()
	for _, want := range []string{"Scrum Master", "v0.2.0", "1m 30s session", "3 sprint issues: 2 To Do, 1 Done"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary:\n%s", want, out)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		42 * time.Second:               "42s",
		5 * time.Minute:                "5m",
		2*time.Hour + 15*time.Minute:   "2h 15m",
		3 * time.Hour:                  "3h",
		10*time.Minute + 5*time.Second: "10m 5s",
	}
	for d, want := range cases {
		if got := formatDuration(d); got != want {
			t.Fatalf("formatDuration(%s) = %q, want %q", d, got, want)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf)
	if !strings.HasPrefix(buf.String(), "scrummaster version ") {
		t.Fatalf("unexpected version output %q", buf.String())
	}
}
