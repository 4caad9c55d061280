package domain

import (
	"testing"

	appErrors "scrummaster/internal/errors"
)

func TestNewIssueNormalizesStatus(t *testing.T) {
	issue, err := NewIssue(" SM-1 ", "Fix login", "", "  in PROGRESS ", " ada ")
	if err != nil {
		t.Fatalf("NewIssue returned error: %v", err)
	}
	if issue.Key != "SM-1" || issue.Status != StatusInProgress || issue.RawStatus != "  in PROGRESS " {
		t.Fatalf("unexpected issue %+v", issue)
	}
	if !issue.IsAssigned() || issue.Assignee != "ada" {
		t.Fatalf("expected trimmed assignee, got %q", issue.Assignee)
	}
}

func TestNewIssueRequiresKey(t *testing.T) {
	_, err := NewIssue("  ", "x", "", "To Do", "")
	if !appErrors.IsCode(err, appErrors.CodeInvalidResponse) {
		t.Fatalf("expected invalid response error, got %v", err)
	}
}

func TestPartitionPlacesEachIssueOnce(t *testing.T) {
	issues := []Issue{
		{Key: "A", Status: StatusDone},
		{Key: "B", Status: StatusToDo},
		{Key: "C", Status: StatusInProgress},
		{Key: "D", Status: StatusDone},
		{Key: "E", Status: "", RawStatus: "Review"},
	}
	buckets := Partition(issues)

	total := 0
	for _, list := range buckets {
		total += len(list)
	}
	if total != len(issues) {
		t.Fatalf("expected %d issues across buckets, got %d", len(issues), total)
	}
	done := buckets[StatusDone]
	if len(done) != 2 || done[0].Key != "A" || done[1].Key != "D" {
		t.Fatalf("expected Done bucket [A D] in input order, got %+v", done)
	}
	todo := buckets[StatusToDo]
	if len(todo) != 2 || todo[1].Key != "E" {
		t.Fatalf("expected unknown status to land in ToDo, got %+v", todo)
	}
}

func TestPartitionEmptyHasAllBuckets(t *testing.T) {
	buckets := Partition(nil)
	for _, s := range Statuses {
		if got, ok := buckets[s]; !ok || len(got) != 0 {
			t.Fatalf("expected empty bucket for %s, got %v (present=%v)", s, got, ok)
		}
	}
}
