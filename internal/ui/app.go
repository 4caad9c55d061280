package ui

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"scrummaster/internal/debug"
	"scrummaster/internal/domain"
	"scrummaster/internal/overlay"
	"scrummaster/internal/reports"
	"scrummaster/internal/standup"
	"scrummaster/internal/suggest"
	"scrummaster/internal/ui/theme"
	"scrummaster/internal/viewsync"
)

const (
	minWidth          = 40
	changeBufferSize  = 16
	groomBufferSize   = 64
	defaultDetailWrap = 60
)

// Tab identifies one top-level view.
type Tab int

const (
	TabBoard Tab = iota
	TabBacklog
	TabStandup
	TabReports
)

var tabNames = [...]string{"Board", "Backlog", "Standup", "Reports"}

func (t Tab) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return "Unknown"
	}
	return tabNames[t]
}

// Config configures the UI application.
type Config struct {
	Board   *viewsync.Collection
	Backlog *viewsync.Collection
	Suggest suggest.Client
	Groomer *suggest.Groomer
	Standup *standup.Service
	Reports reports.Client

	// AutoRefresh reloads the mounted collection on this interval. Zero
	// disables polling.
	AutoRefresh  time.Duration
	OutputFormat string
	Version      string
	InitialTab   Tab

	// CopyToClipboard defaults to the system clipboard.
	CopyToClipboard func(string) error
	// SaveTheme persists the chosen theme; nil skips persistence.
	SaveTheme func(string) error
}

// App implements the Bubble Tea model for the dashboard.
type App struct {
	cfg     Config
	keys    KeyMap
	ctx     context.Context
	cancel  context.CancelFunc
	tab     Tab
	width   int
	height  int
	spinner spinner.Model

	boardSnap   viewsync.Snapshot
	backlogSnap viewsync.Snapshot
	lastLoadErr map[string]error

	board   boardState
	backlog backlogState
	standup *standupModel
	reports reportsState

	modal    modal
	toast    toast
	busy     int
	markdown func(string) string

	changes      chan string
	groomResults chan suggest.Result

	// revision orders overlay autosaves. It only advances inside Update.
	revision overlay.Revision
}

// ErrMissingCollections is returned by NewApp without both collections.
var ErrMissingCollections = errors.New("ui: board and backlog collections are required")

// NewApp wires the UI to its collections and clients.
func NewApp(cfg Config) (*App, error) {
	if cfg.Board == nil || cfg.Backlog == nil {
		return nil, ErrMissingCollections
	}
	if cfg.CopyToClipboard == nil {
		cfg.CopyToClipboard = clipboard.WriteAll
	}
	ctx, cancel := context.WithCancel(context.Background())

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := &App{
		cfg:          cfg,
		keys:         DefaultKeyMap(),
		ctx:          ctx,
		cancel:       cancel,
		tab:          cfg.InitialTab,
		spinner:      sp,
		lastLoadErr:  make(map[string]error),
		backlog:      newBacklogState(),
		changes:      make(chan string, changeBufferSize),
		groomResults: make(chan suggest.Result, groomBufferSize),
		markdown:     buildMarkdownRenderer(cfg.OutputFormat, defaultDetailWrap),
	}
	if cfg.Standup != nil {
		m.standup = newStandupModel(cfg.Standup.Journal.Form())
	}

	notify := func(s viewsync.Snapshot) {
		select {
		case m.changes <- s.Name:
		default:
			// A pending signal already makes the UI re-read the snapshot.
		}
	}
	cfg.Board.SetOnChange(notify)
	cfg.Backlog.SetOnChange(notify)
	if cfg.Groomer != nil {
		cfg.Groomer.OnResult = func(r suggest.Result) {
			select {
			case m.groomResults <- r:
			case <-ctx.Done():
			}
		}
	}
	m.boardSnap = cfg.Board.Snapshot()
	m.backlogSnap = cfg.Backlog.Snapshot()
	return m, nil
}

// Init mounts the initial view and starts the background listeners.
func (m *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForChange(m.changes),
		waitForGroomResult(m.groomResults),
		m.spinner.Tick,
		m.enterTab(m.tab),
	}
	if m.cfg.AutoRefresh > 0 {
		cmds = append(cmds, scheduleTick(m.cfg.AutoRefresh))
	}
	return tea.Batch(cmds...)
}

// Update routes messages to the active view and overlays.
func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.markdown = buildMarkdownRenderer(m.cfg.OutputFormat, m.detailWidth())
		return m, nil

	case tea.KeyMsg:
		if m.modal != nil {
			return m, m.modal.Update(msg)
		}
		return m.handleKey(msg)

	case overlayClosedMsg:
		m.modal = nil
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		if m.cfg.AutoRefresh <= 0 {
			return m, nil
		}
		return m, tea.Batch(m.reloadActive(), scheduleTick(m.cfg.AutoRefresh))

	case toastExpiredMsg:
		m.expireToast(msg.id)
		return m, nil

	case collectionChangedMsg:
		return m, tea.Batch(m.syncSnapshot(msg.name), waitForChange(m.changes))

	case mountedMsg:
		if msg.err != nil && !errors.Is(msg.err, viewsync.ErrNotMounted) {
			debug.Logger().Debug("mount failed", "collection", msg.name, "error", msg.err)
		}
		return m, m.syncSnapshot(msg.name)

	case mutationDoneMsg:
		return m, m.finishMutation(msg)

	case boardMovedMsg:
		if msg.err == nil {
			m.reloadBoardFocus(msg.key)
		}
		return m, m.finishMutation(msg.mutationDoneMsg)

	case commentSubmitMsg:
		m.modal = nil
		return m, m.submitComment(msg)

	case draftChangedMsg:
		return m, m.saveDraft(msg)

	case issueFormSubmitMsg:
		m.modal = nil
		return m, m.submitIssueForm(msg)

	case confirmedMsg:
		m.modal = nil
		return m, m.runConfirmed(msg.action)

	case suggestionMsg, groomResultMsg, duplicatesMsg:
		return m, m.updateBacklog(msg)

	case standupFilledMsg, standupSubmittedMsg, standupHistoryMsg, standupSavedMsg:
		return m, m.updateStandup(msg)

	case reportsLoadedMsg:
		m.reports.loading = false
		m.reports.loaded = true
		m.reports.dashboard = msg.dashboard
		return m, nil
	}

	if m.modal != nil {
		return m, m.modal.Update(msg)
	}
	if m.tab == TabStandup && m.standup != nil {
		return m, m.standup.updateFields(msg)
	}
	return m, nil
}

func (m *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.tab == TabStandup && m.standup != nil && m.standup.editing {
		return m, m.handleStandupEditingKey(msg)
	}
	switch {
	case keyMatches(msg, m.keys.Quit):
		m.shutdown()
		return m, tea.Quit
	case keyMatches(msg, m.keys.NextTab):
		return m, m.switchTab(Tab((int(m.tab) + 1) % len(tabNames)))
	case keyMatches(msg, m.keys.PrevTab):
		return m, m.switchTab(Tab((int(m.tab) + len(tabNames) - 1) % len(tabNames)))
	case keyMatches(msg, m.keys.Help):
		m.modal = newHelpOverlay(m.keys)
		return m, nil
	case keyMatches(msg, m.keys.Theme):
		return m, m.cycleTheme()
	case keyMatches(msg, m.keys.Refresh):
		return m, m.reloadActive()
	}

	switch m.tab {
	case TabBoard:
		return m, m.handleBoardKey(msg)
	case TabBacklog:
		return m, m.handleBacklogKey(msg)
	case TabStandup:
		return m, m.handleStandupKey(msg)
	case TabReports:
		return m, nil
	}
	return m, nil
}

// switchTab unmounts the collection being left and mounts the new one.
func (m *App) switchTab(next Tab) tea.Cmd {
	if next == m.tab {
		return nil
	}
	if c := m.collectionFor(m.tab); c != nil {
		c.Unmount()
	}
	m.tab = next
	return m.enterTab(next)
}

func (m *App) enterTab(t Tab) tea.Cmd {
	switch t {
	case TabBoard, TabBacklog:
		return m.mountCmd(m.collectionFor(t))
	case TabStandup:
		return m.loadStandupHistory()
	case TabReports:
		return m.loadReports()
	}
	return nil
}

func (m *App) collectionFor(t Tab) *viewsync.Collection {
	switch t {
	case TabBoard:
		return m.cfg.Board
	case TabBacklog:
		return m.cfg.Backlog
	}
	return nil
}

func (m *App) collectionByName(name string) *viewsync.Collection {
	switch name {
	case viewsync.NameBoard:
		return m.cfg.Board
	case viewsync.NameBacklog:
		return m.cfg.Backlog
	}
	return nil
}

func (m *App) mountCmd(c *viewsync.Collection) tea.Cmd {
	if c == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return mountedMsg{name: c.Name(), err: c.Mount(ctx)}
	}
}

func (m *App) reloadActive() tea.Cmd {
	switch m.tab {
	case TabBoard, TabBacklog:
		c := m.collectionFor(m.tab)
		ctx := m.ctx
		return func() tea.Msg {
			return mountedMsg{name: c.Name(), err: c.Load(ctx)}
		}
	case TabStandup:
		return m.loadStandupHistory()
	case TabReports:
		return m.loadReports()
	}
	return nil
}

// syncSnapshot re-reads a collection and reports a new load failure once.
func (m *App) syncSnapshot(name string) tea.Cmd {
	c := m.collectionByName(name)
	if c == nil {
		return nil
	}
	snap := c.Snapshot()
	switch name {
	case viewsync.NameBoard:
		m.boardSnap = snap
		m.board.clamp(snap)
	case viewsync.NameBacklog:
		m.backlogSnap = snap
		m.backlog.clamp(len(snap.Issues))
	}

	prev := m.lastLoadErr[name]
	m.lastLoadErr[name] = snap.Err
	if snap.Err != nil && (prev == nil || prev.Error() != snap.Err.Error()) {
		return m.showError("Load "+name, snap.Err)
	}
	return nil
}

// mutate runs write in the background and reports through mutationDoneMsg.
func (m *App) mutate(op, key, success string, write func(ctx context.Context) error) tea.Cmd {
	m.busy++
	ctx := m.ctx
	return func() tea.Msg {
		return mutationDoneMsg{op: op, key: key, success: success, err: write(ctx)}
	}
}

func (m *App) finishMutation(msg mutationDoneMsg) tea.Cmd {
	if m.busy > 0 {
		m.busy--
	}
	if msg.err != nil {
		debug.Logger().Debug("mutation failed", "op", msg.op, "key", msg.key, "error", msg.err)
		return m.showError(msg.op, msg.err)
	}
	if msg.success != "" {
		return m.showToast(toastSuccess, msg.success)
	}
	return nil
}

func (m *App) submitComment(msg commentSubmitMsg) tea.Cmd {
	c := m.collectionByName(msg.collection)
	if c == nil {
		return nil
	}
	return m.mutate("Comment", msg.key, "Comment added", func(ctx context.Context) error {
		return c.SubmitComment(ctx, msg.key, msg.text, msg.rev)
	})
}

func (m *App) saveDraft(msg draftChangedMsg) tea.Cmd {
	c := m.collectionByName(msg.collection)
	if c == nil {
		return nil
	}
	return m.mutate("Save draft", msg.key, "", func(ctx context.Context) error {
		return c.SaveDraft(ctx, msg.key, msg.text, msg.rev)
	})
}

func (m *App) nextRevision() overlay.Revision {
	m.revision++
	return m.revision
}

func (m *App) openComments(collection string, v viewsync.View) {
	ov := NewCommentOverlay(collection, v.Key, v.Summary, v.Comments, v.Draft)
	ov.revision = m.nextRevision
	m.modal = ov
}

func (m *App) submitIssueForm(msg issueFormSubmitMsg) tea.Cmd {
	c := m.collectionByName(msg.collection)
	if c == nil {
		return nil
	}
	if msg.mode == issueFormCreate {
		return m.mutate("Create", "", "Issue created", func(ctx context.Context) error {
			_, err := c.Create(ctx, msg.summary, msg.desc)
			return err
		})
	}
	return m.mutate("Update "+msg.key, msg.key, "Issue updated", func(ctx context.Context) error {
		return c.Edit(ctx, msg.key, msg.fields)
	})
}

func (m *App) runConfirmed(action confirmAction) tea.Cmd {
	switch action.kind {
	case actionArchive:
		c := m.collectionByName(action.collection)
		if c == nil {
			return nil
		}
		approve := viewsync.ConfirmFunc(func(context.Context, domain.Issue) (bool, error) { return true, nil })
		return m.mutate("Archive "+action.key, action.key, "Issue archived", func(ctx context.Context) error {
			_, err := c.Archive(ctx, action.key, approve)
			return err
		})
	case actionDeleteStandup:
		return m.deleteStandup(action.id)
	case actionClearStandups:
		return m.clearStandups()
	}
	return nil
}

const (
	actionArchive       = "archive"
	actionDeleteStandup = "delete-standup"
	actionClearStandups = "clear-standups"
)

func keyMatches(msg tea.KeyMsg, b key.Binding) bool {
	return key.Matches(msg, b)
}

func (m *App) cycleTheme() tea.Cmd {
	name := theme.Cycle()
	cmds := []tea.Cmd{m.showToast(toastInfo, "Theme: "+name)}
	if save := m.cfg.SaveTheme; save != nil {
		cmds = append(cmds, func() tea.Msg {
			if err := save(name); err != nil {
				debug.Logger().Debug("save theme failed", "theme", name, "error", err)
			}
			return nil
		})
	}
	return tea.Batch(cmds...)
}

func (m *App) copyKey(key string) tea.Cmd {
	if key == "" {
		return nil
	}
	if err := m.cfg.CopyToClipboard(key); err != nil {
		return m.showError("Copy", err)
	}
	return m.showToast(toastSuccess, "Copied '"+key+"' to clipboard.")
}

func (m *App) shutdown() {
	m.cfg.Board.Unmount()
	m.cfg.Backlog.Unmount()
	m.cancel()
}

func (m *App) detailWidth() int {
	w := m.width - 6
	if w < minWidth {
		return minWidth
	}
	return w
}
