package viewsync

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"scrummaster/internal/domain"
	"scrummaster/internal/jira"
	"scrummaster/internal/overlay"
)

// fakeTracker is an in-memory tracker behind a jira.MockClient.
type fakeTracker struct {
	mu      sync.Mutex
	sprint  []domain.Issue
	backlog []domain.Issue
	nextKey int
	mock    *jira.MockClient
}

func newFakeTracker(sprint, backlog []domain.Issue) *fakeTracker {
	ft := &fakeTracker{sprint: sprint, backlog: backlog, nextKey: 100, mock: jira.NewMockClient()}
	ft.mock.ListFn = func(context.Context) ([]domain.Issue, error) {
		ft.mu.Lock()
		defer ft.mu.Unlock()
		return append([]domain.Issue(nil), ft.sprint...), nil
	}
	ft.mock.BacklogFn = func(context.Context) ([]domain.Issue, error) {
		ft.mu.Lock()
		defer ft.mu.Unlock()
		return append([]domain.Issue(nil), ft.backlog...), nil
	}
	ft.mock.UpdateFn = func(_ context.Context, key string, fields jira.UpdateFields) error {
		ft.mu.Lock()
		defer ft.mu.Unlock()
		for _, list := range [][]domain.Issue{ft.sprint, ft.backlog} {
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
				if fields.Description != nil {
					list[i].Description = *fields.Description
				}
				if fields.Assignee != nil {
					list[i].Assignee = *fields.Assignee
				}
				return nil
			}
		}
		return fmt.Errorf("no issue %s", key)
	}
	ft.mock.ApplySuggestionFn = ft.mock.UpdateFn
	ft.mock.CreateFn = func(_ context.Context, summary, description string) (domain.Issue, error) {
		ft.mu.Lock()
		defer ft.mu.Unlock()
		ft.nextKey++
		issue := domain.Issue{
			Key:         fmt.Sprintf("SM-%d", ft.nextKey),
			Summary:     summary,
			Description: description,
			Status:      domain.StatusToDo,
			RawStatus:   "To Do",
		}
		ft.sprint = append(ft.sprint, issue)
		return issue, nil
	}
	ft.mock.DeleteFn = func(_ context.Context, key string) error {
		ft.mu.Lock()
		defer ft.mu.Unlock()
		ft.sprint = removeKey(ft.sprint, key)
		ft.backlog = removeKey(ft.backlog, key)
		return nil
	}
	ft.mock.MoveToSprintFn = func(_ context.Context, key string) (string, error) {
		ft.mu.Lock()
		defer ft.mu.Unlock()
		for _, issue := range ft.backlog {
			if issue.Key == key {
				ft.backlog = removeKey(ft.backlog, key)
				ft.sprint = append(ft.sprint, issue)
				return fmt.Sprintf("Issue %s moved to sprint!", key), nil
			}
		}
		return "", fmt.Errorf("no backlog issue %s", key)
	}
	return ft
}

func removeKey(list []domain.Issue, key string) []domain.Issue {
	out := list[:0:0]
	for _, issue := range list {
		if issue.Key != key {
			out = append(out, issue)
		}
	}
	return out
}

func issue(key, status string) domain.Issue {
	return domain.Issue{Key: key, Summary: "summary " + key, Status: domain.Classify(status), RawStatus: status}
}

func newStore(t *testing.T) *overlay.Store {
	t.Helper()
	store, err := overlay.Open(context.Background(), overlay.NewMemoryBackend())
	if err != nil {
		t.Fatalf("overlay.Open: %v", err)
	}
	return store
}

func mustMount(t *testing.T, c *Collection) {
	t.Helper()
	if err := c.Mount(context.Background()); err != nil {
		t.Fatalf("Mount(%s) returned error: %v", c.Name(), err)
	}
	t.Cleanup(c.Unmount)
}

func keysOf(views []View) []string {
	keys := make([]string, 0, len(views))
	for _, v := range views {
		keys = append(keys, v.Key)
	}
	return keys
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
