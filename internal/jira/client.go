// Package jira talks to the tracker backend: the active sprint board, the
// backlog, and the write endpoints that mutate them.
package jira

import (
	"context"
	"io"
	"strings"

	"scrummaster/internal/domain"
)

// Client defines the tracker operations the synchronizer and CLI rely on.
type Client interface {
	List(ctx context.Context) ([]domain.Issue, error)
	Backlog(ctx context.Context) ([]domain.Issue, error)
	Create(ctx context.Context, summary, description string) (domain.Issue, error)
	Update(ctx context.Context, key string, fields UpdateFields) error
	Delete(ctx context.Context, key string) error
	ApplySuggestion(ctx context.Context, key string, fields UpdateFields) error
	MoveToSprint(ctx context.Context, key string) (string, error)
	ExportCSV(ctx context.Context, kind ExportKind) (io.ReadCloser, error)
}

// UpdateFields is a partial update. Only non-nil fields are sent.
type UpdateFields struct {
	Summary     *string
	Description *string
	Status      *domain.Status
	Assignee    *string
}

// IsEmpty reports whether no field is set.
func (f UpdateFields) IsEmpty() bool {
	return f.Summary == nil && f.Description == nil && f.Status == nil && f.Assignee == nil
}

// WithStatus returns a copy of f with Status set.
func (f UpdateFields) WithStatus(status domain.Status) UpdateFields {
	f.Status = &status
	return f
}

// String returns a pointer to s, for building UpdateFields literals.
func String(s string) *string {
	return &s
}

// StatusPtr returns a pointer to s, for building UpdateFields literals.
func StatusPtr(s domain.Status) *domain.Status {
	return &s
}

// ExportKind selects one of the CSV exports.
type ExportKind string

const (
	ExportIssues  ExportKind = "issues"
	ExportBacklog ExportKind = "backlog"
	ExportHistory ExportKind = "history"
)

// ExportKinds lists the accepted export kinds.
var ExportKinds = []ExportKind{ExportIssues, ExportBacklog, ExportHistory}

// ParseExportKind validates a user-supplied export kind.
func ParseExportKind(raw string) (ExportKind, bool) {
	kind := ExportKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range ExportKinds {
		if kind == candidate {
			return kind, true
		}
	}
	return "", false
}
