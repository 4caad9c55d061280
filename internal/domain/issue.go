package domain

import (
	"strings"

	appErrors "scrummaster/internal/errors"
)

// Issue is the server-owned record shown on the board and backlog.
type Issue struct {
	Key         string
	Summary     string
	Description string
	// Status is the normalized bucket. RawStatus keeps what the server sent
	// and is for display only.
	Status    Status
	RawStatus string
	Assignee  string
}

// NewIssue builds an Issue from wire fields, normalizing the status.
func NewIssue(key, summary, description, rawStatus, assignee string) (Issue, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Issue{}, appErrors.New(appErrors.CodeInvalidResponse, "issue key is required", nil)
	}
	return Issue{
		Key:         key,
		Summary:     summary,
		Description: description,
		Status:      Classify(rawStatus),
		RawStatus:   rawStatus,
		Assignee:    strings.TrimSpace(assignee),
	}, nil
}

// IsAssigned reports whether the issue has an assignee.
func (i Issue) IsAssigned() bool {
	return i.Assignee != ""
}

// Buckets partitions issues by normalized status.
type Buckets map[Status][]Issue

// Partition classifies issues into buckets. Every status has an entry, each
// issue appears in exactly one bucket, and input order is kept per bucket.
func Partition(issues []Issue) Buckets {
	buckets := make(Buckets, len(Statuses))
	for _, s := range Statuses {
		buckets[s] = []Issue{}
	}
	for _, issue := range issues {
		status := issue.Status
		if _, ok := buckets[status]; !ok {
			status = Classify(issue.RawStatus)
		}
		buckets[status] = append(buckets[status], issue)
	}
	return buckets
}
