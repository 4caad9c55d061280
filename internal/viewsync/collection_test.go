package viewsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"scrummaster/internal/domain"
	appErrors "scrummaster/internal/errors"
	"scrummaster/internal/jira"
	"scrummaster/internal/suggest"
)

func TestMountLoadsAndPartitions(t *testing.T) {
	ft := newFakeTracker([]domain.Issue{
		issue("SM-1", "To Do"),
		issue("SM-2", " in progress "),
		issue("SM-3", "Done"),
		issue("SM-4", "Blocked"),
	}, nil)
	board := NewBoard(ft.mock, newStore(t), NewBus())

	if got := board.Snapshot().State; got != StateIdle {
		t.Fatalf("expected idle before mount, got %s", got)
	}
	mustMount(t, board)

	snap := board.Snapshot()
	if snap.State != StateReady || snap.Err != nil {
		t.Fatalf("expected ready snapshot, got %s (err=%v)", snap.State, snap.Err)
	}
	want := map[domain.Status][]string{
		domain.StatusToDo:       {"SM-1", "SM-4"},
		domain.StatusInProgress: {"SM-2"},
		domain.StatusDone:       {"SM-3"},
	}
	for status, keys := range want {
		if diff := cmp.Diff(keys, keysOf(snap.Buckets[status])); diff != "" {
			t.Fatalf("bucket %s mismatch (-want +got):\n%s", status, diff)
		}
	}
	if snap.LoadedAt.IsZero() {
		t.Fatalf("expected LoadedAt to be set")
	}
}

func TestLoadBeforeMountIsRejected(t *testing.T) {
	ft := newFakeTracker(nil, nil)
	board := NewBoard(ft.mock, newStore(t), NewBus())
	if err := board.Load(context.Background()); !errors.Is(err, ErrNotMounted) {
		t.Fatalf("expected ErrNotMounted, got %v", err)
	}
	if ft.mock.ListCallCount != 0 {
		t.Fatalf("expected no fetch before mount")
	}
}

func TestFailedRefetchKeepsPreviousIssues(t *testing.T) {
	ft := newFakeTracker([]domain.Issue{issue("SM-1", "To Do"), issue("SM-2", "Done"), issue("SM-3", "Done")}, nil)
	board := NewBoard(ft.mock, newStore(t), NewBus())
	mustMount(t, board)

	unreachable := appErrors.New(appErrors.CodeUnreachable, "server unreachable", nil)
	ft.mock.ListFn = func(context.Context) ([]domain.Issue, error) {
		return nil, unreachable
	}
	err := board.Load(context.Background())
	if !appErrors.IsCode(err, appErrors.CodeUnreachable) {
		t.Fatalf("expected unreachable from Load, got %v", err)
	}

	snap := board.Snapshot()
	if snap.State != StateError {
		t.Fatalf("expected error state, got %s", snap.State)
	}
	if !appErrors.IsCode(snap.Err, appErrors.CodeUnreachable) {
		t.Fatalf("expected snapshot to surface the error, got %v", snap.Err)
	}
	if len(snap.Issues) != 3 {
		t.Fatalf("expected 3 retained issues, got %d", len(snap.Issues))
	}
}

func TestRecoveryClearsError(t *testing.T) {
	ft := newFakeTracker([]domain.Issue{issue("SM-1", "To Do")}, nil)
	list := ft.mock.ListFn
	board := NewBoard(ft.mock, newStore(t), NewBus())
	mustMount(t, board)

	ft.mock.ListFn = func(context.Context) ([]domain.Issue, error) {
		return nil, appErrors.New(appErrors.CodeInvalidResponse, "bad json", nil)
	}
	_ = board.Load(context.Background())
	ft.mock.ListFn = list
	if err := board.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if snap := board.Snapshot(); snap.State != StateReady || snap.Err != nil {
		t.Fatalf("expected recovery to ready, got %s (err=%v)", snap.State, snap.Err)
	}
}

func TestDeclinedArchiveMakesNoRequests(t *testing.T) {
	ft := newFakeTracker([]domain.Issue{issue("SM-1", "In Progress")}, nil)
	board := NewBoard(ft.mock, newStore(t), NewBus())
	mustMount(t, board)
	before := ft.mock.TotalCalls()

	var asked domain.Issue
	decline := ConfirmFunc(func(_ context.Context, is domain.Issue) (bool, error) {
		asked = is
		return false, nil
	})
	archived, err := board.Archive(context.Background(), "SM-1", decline)
	if err != nil || archived {
		t.Fatalf("expected declined archive to return (false, nil), got (%v, %v)", archived, err)
	}
	if got := ft.mock.TotalCalls() - before; got != 0 {
		t.Fatalf("expected zero client calls after decline, got %d", got)
	}
	if asked.Key != "SM-1" || asked.Summary != "summary SM-1" {
		t.Fatalf("expected confirmer to see the issue, got %+v", asked)
	}
	if status, ok := board.Snapshot().BucketOf("SM-1"); !ok || status != domain.StatusInProgress {
		t.Fatalf("expected SM-1 to stay in In Progress, got %s (found=%v)", status, ok)
	}
}

func TestConfirmedArchiveRemovesIssue(t *testing.T) {
	ft := newFakeTracker([]domain.Issue{issue("SM-1", "To Do"), issue("SM-2", "To Do")}, nil)
	store := newStore(t)
	board := NewBoard(ft.mock, store, NewBus())
	mustMount(t, board)
	if err := board.SubmitComment(context.Background(), "SM-1", "keep me", 0); err != nil {
		t.Fatalf("SubmitComment: %v", err)
	}

	approve := ConfirmFunc(func(context.Context, domain.Issue) (bool, error) { return true, nil })
	archived, err := board.Archive(context.Background(), "SM-1", approve)
	if err != nil || !archived {
		t.Fatalf("expected archive, got (%v, %v)", archived, err)
	}
	if _, ok := board.Snapshot().Find("SM-1"); ok {
		t.Fatalf("expected SM-1 gone after refetch")
	}
	if got := store.Comments("SM-1"); len(got) != 1 {
		t.Fatalf("expected orphaned overlay to be preserved, got %v", got)
	}
}

func TestCreateAppearsInToDoWithServerKey(t *testing.T) {
	ft := newFakeTracker([]domain.Issue{issue("SM-1", "Done")}, nil)
	board := NewBoard(ft.mock, newStore(t), NewBus())
	mustMount(t, board)

	created, err := board.Create(context.Background(), "Fix login bug", "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Key != "SM-101" {
		t.Fatalf("expected server-assigned key SM-101, got %q", created.Key)
	}
	snap := board.Snapshot()
	status, ok := snap.BucketOf("SM-101")
	if !ok || status != domain.StatusToDo {
		t.Fatalf("expected new issue in ToDo, got %s (found=%v)", status, ok)
	}
	if view, _ := snap.Find("SM-101"); view.Summary != "Fix login bug" {
		t.Fatalf("unexpected summary %q", view.Summary)
	}
}

func TestCreateBlankSummarySkipsClient(t *testing.T) {
	ft := newFakeTracker(nil, nil)
	board := NewBoard(ft.mock, newStore(t), NewBus())
	mustMount(t, board)

	_, err := board.Create(context.Background(), "  ", "desc")
	if !appErrors.IsCode(err, appErrors.CodeValidationSkipped) {
		t.Fatalf("expected validation skip, got %v", err)
	}
	if ft.mock.CreateCallCount != 0 {
		t.Fatalf("expected no create request")
	}
}

func TestMoveToDoneAppearsOnlyInDone(t *testing.T) {
	ft := newFakeTracker([]domain.Issue{issue("SM-1", "In Progress"), issue("SM-2", "To Do")}, nil)
	board := NewBoard(ft.mock, newStore(t), NewBus())
	mustMount(t, board)

	if err := board.Move(context.Background(), "SM-1", domain.StatusDone); err != nil {
		t.Fatalf("Move returned error: %v", err)
	}
	snap := board.Snapshot()
	for _, status := range domain.Statuses {
		found := false
		for _, v := range snap.Buckets[status] {
			if v.Key == "SM-1" {
				found = true
			}
		}
		if found != (status == domain.StatusDone) {
			t.Fatalf("SM-1 presence in %s = %v", status, found)
		}
	}
	if ft.mock.ListCallCount != 2 {
		t.Fatalf("expected mount load plus one refetch, got %d list calls", ft.mock.ListCallCount)
	}
}

func TestFailedWriteSkipsRefetch(t *testing.T) {
	ft := newFakeTracker([]domain.Issue{issue("SM-1", "To Do")}, nil)
	board := NewBoard(ft.mock, newStore(t), NewBus())
	mustMount(t, board)
	ft.mock.UpdateFn = func(context.Context, string, jira.UpdateFields) error {
		return appErrors.New(appErrors.CodeNotFound, "gone", nil)
	}

	err := board.Move(context.Background(), "SM-1", domain.StatusDone)
	if !appErrors.IsCode(err, appErrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if ft.mock.ListCallCount != 1 {
		t.Fatalf("expected no refetch after failed write, got %d list calls", ft.mock.ListCallCount)
	}
}

func TestEditFillsStatus(t *testing.T) {
	ft := newFakeTracker([]domain.Issue{issue("SM-1", "In Progress")}, []domain.Issue{issue("SM-9", "")})
	bus := NewBus()
	board := NewBoard(ft.mock, newStore(t), bus)
	backlog := NewBacklog(ft.mock, newStore(t), bus)
	mustMount(t, board)
	mustMount(t, backlog)

	if err := board.Edit(context.Background(), "SM-1", jira.UpdateFields{Summary: jira.String("renamed")}); err != nil {
		t.Fatalf("board Edit: %v", err)
	}
	if err := backlog.Edit(context.Background(), "SM-9", jira.UpdateFields{Description: jira.String("more")}); err != nil {
		t.Fatalf("backlog Edit: %v", err)
	}

	calls := ft.mock.UpdateCallArgs
	if len(calls) != 2 {
		t.Fatalf("expected 2 update calls, got %d", len(calls))
	}
	if s := calls[0].Fields.Status; s == nil || *s != domain.StatusInProgress {
		t.Fatalf("expected board edit to carry current status, got %v", s)
	}
	if s := calls[1].Fields.Status; s == nil || *s != domain.StatusToDo {
		t.Fatalf("expected backlog edit to force To Do, got %v", s)
	}
	if view, _ := board.Snapshot().Find("SM-1"); view.Summary != "renamed" {
		t.Fatalf("expected refetched summary, got %q", view.Summary)
	}
}

func TestApplySuggestionSendsOnlyMappedFields(t *testing.T) {
	ft := newFakeTracker(nil, []domain.Issue{issue("SM-9", "")})
	backlog := NewBacklog(ft.mock, newStore(t), NewBus())
	mustMount(t, backlog)

	s := suggest.Suggestion{
		Clarification:      "Clear summary",
		AcceptanceCriteria: "- done when done",
		Effort:             "3",
		Type:               "Chore",
		Priority:           "Low",
		Status:             "In Progress",
	}
	if err := backlog.ApplySuggestion(context.Background(), "SM-9", s); err != nil {
		t.Fatalf("ApplySuggestion: %v", err)
	}
	if ft.mock.ApplySuggestionCallCount != 1 {
		t.Fatalf("expected one apply call, got %d", ft.mock.ApplySuggestionCallCount)
	}
	want := jira.UpdateFields{
		Summary:     jira.String("Clear summary"),
		Description: jira.String("- done when done"),
		Status:      jira.StatusPtr(domain.StatusInProgress),
	}
	if diff := cmp.Diff(want, ft.mock.ApplySuggestionCallArgs[0].Fields); diff != "" {
		t.Fatalf("apply fields mismatch (-want +got):\n%s", diff)
	}
}

func TestOverlayIsMergedIntoSnapshot(t *testing.T) {
	ft := newFakeTracker([]domain.Issue{issue("SM-1", "To Do")}, nil)
	board := NewBoard(ft.mock, newStore(t), NewBus())
	mustMount(t, board)
	before := ft.mock.TotalCalls()

	ctx := context.Background()
	if err := board.SaveDraft(ctx, "SM-1", "draft text", 1); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if view, _ := board.Snapshot().Find("SM-1"); view.Draft != "draft text" {
		t.Fatalf("expected draft in snapshot, got %q", view.Draft)
	}
	if err := board.SubmitComment(ctx, "SM-1", "draft text", 2); err != nil {
		t.Fatalf("SubmitComment: %v", err)
	}
	view, _ := board.Snapshot().Find("SM-1")
	if view.Draft != "" || len(view.Comments) != 1 || view.Comments[0] != "draft text" {
		t.Fatalf("unexpected view after submit %+v", view)
	}
	if err := board.SaveDraft(ctx, "SM-1", "draft tex", 1); err != nil {
		t.Fatalf("stale SaveDraft: %v", err)
	}
	if view, _ := board.Snapshot().Find("SM-1"); view.Draft != "" {
		t.Fatalf("expected stale draft dropped after submit, got %q", view.Draft)
	}
	if err := board.SubmitComment(ctx, "SM-1", " ", 3); !appErrors.IsCode(err, appErrors.CodeValidationSkipped) {
		t.Fatalf("expected blank comment to be skipped, got %v", err)
	}
	if got := ft.mock.TotalCalls() - before; got != 0 {
		t.Fatalf("overlay edits must not reach the tracker, saw %d calls", got)
	}
}

func TestUnmountDropsInFlightResult(t *testing.T) {
	ft := newFakeTracker([]domain.Issue{issue("SM-1", "To Do")}, nil)
	board := NewBoard(ft.mock, newStore(t), NewBus())
	mustMount(t, board)

	started := make(chan struct{})
	release := make(chan struct{})
	ft.mock.ListFn = func(context.Context) ([]domain.Issue, error) {
		close(started)
		<-release
		return []domain.Issue{issue("SM-1", "Done"), issue("SM-2", "Done")}, nil
	}

	done := make(chan error, 1)
	go func() { done <- board.Load(context.Background()) }()
	<-started
	board.Unmount()
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("expected dropped load to return nil, got %v", err)
	}

	snap := board.Snapshot()
	if len(snap.Issues) != 1 || snap.Issues[0].Status != domain.StatusToDo {
		t.Fatalf("expected result after unmount to be discarded, got %+v", snap.Issues)
	}
}

func TestLoadsAndMutationsAreSerialized(t *testing.T) {
	ft := newFakeTracker([]domain.Issue{issue("SM-1", "To Do")}, nil)
	list := ft.mock.ListFn
	board := NewBoard(ft.mock, newStore(t), NewBus())
	mustMount(t, board)

	var mu sync.Mutex
	inFlight, peak := 0, 0
	enter := func() {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
	}
	ft.mock.ListFn = func(ctx context.Context) ([]domain.Issue, error) {
		enter()
		return list(ctx)
	}
	update := ft.mock.UpdateFn
	ft.mock.UpdateFn = func(ctx context.Context, key string, f jira.UpdateFields) error {
		enter()
		return update(ctx, key, f)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); _ = board.Load(context.Background()) }()
		go func() { defer wg.Done(); _ = board.Move(context.Background(), "SM-1", domain.StatusDone) }()
	}
	wg.Wait()
	if peak != 1 {
		t.Fatalf("expected serialized requests, saw %d concurrent", peak)
	}
}

func TestOnChangeSeesLoadingThenReady(t *testing.T) {
	ft := newFakeTracker([]domain.Issue{issue("SM-1", "To Do")}, nil)
	board := NewBoard(ft.mock, newStore(t), nil)

	var mu sync.Mutex
	var states []State
	board.SetOnChange(func(s Snapshot) {
		mu.Lock()
		states = append(states, s.State)
		mu.Unlock()
	})
	mustMount(t, board)

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]State{StateLoading, StateReady}, states); diff != "" {
		t.Fatalf("state transitions mismatch (-want +got):\n%s", diff)
	}
}
