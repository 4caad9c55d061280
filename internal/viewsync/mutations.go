package viewsync

import (
	"context"
	"strings"

	"scrummaster/internal/domain"
	appErrors "scrummaster/internal/errors"
	"scrummaster/internal/jira"
	"scrummaster/internal/overlay"
	"scrummaster/internal/suggest"
)

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, issue domain.Issue) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, issue domain.Issue) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, issue domain.Issue) (bool, error) {
	return f(ctx, issue)
}

// Every mutation writes, waits for the acknowledgment, then refetches. The
// returned error is the write's; a failed refetch leaves the collection in
// StateError with its previous issues and is visible through Snapshot.Err.

// Move transitions key to status.
func (c *Collection) Move(ctx context.Context, key string, status domain.Status) error {
	return c.mutate(ctx, func() error {
		return c.cfg.Client.Update(ctx, key, jira.UpdateFields{Status: jira.StatusPtr(status)})
	})
}

// Edit updates key's fields. A missing status is filled from EditStatus or
// from the issue's current status, since the tracker expects one.
func (c *Collection) Edit(ctx context.Context, key string, fields jira.UpdateFields) error {
	return c.mutate(ctx, func() error {
		if fields.Status == nil {
			switch {
			case c.cfg.EditStatus != nil:
				fields = fields.WithStatus(*c.cfg.EditStatus)
			default:
				if current, ok := c.currentIssue(key); ok {
					fields = fields.WithStatus(current.Status)
				}
			}
		}
		return c.cfg.Client.Update(ctx, key, fields)
	})
}

// Archive asks confirmer first and archives key only on approval. It
// reports whether the archive was performed. A decline makes no request.
func (c *Collection) Archive(ctx context.Context, key string, confirmer Confirmer) (bool, error) {
	issue, ok := c.currentIssue(key)
	if !ok {
		issue = domain.Issue{Key: key}
	}
	approved, err := confirmer.Confirm(ctx, issue)
	if err != nil || !approved {
		return false, err
	}
	if err := c.mutate(ctx, func() error {
		return c.cfg.Client.Delete(ctx, key)
	}); err != nil {
		return false, err
	}
	return true, nil
}

// Create files a new issue. A blank summary is rejected before any request.
func (c *Collection) Create(ctx context.Context, summary, description string) (domain.Issue, error) {
	if strings.TrimSpace(summary) == "" {
		return domain.Issue{}, appErrors.New(appErrors.CodeValidationSkipped, "summary is required", nil)
	}
	var created domain.Issue
	err := c.mutate(ctx, func() error {
		issue, err := c.cfg.Client.Create(ctx, summary, description)
		created = issue
		return err
	})
	return created, err
}

// ApplySuggestion writes the suggestion's summary, description and status.
func (c *Collection) ApplySuggestion(ctx context.Context, key string, s suggest.Suggestion) error {
	fields := suggest.ApplyFields(s)
	return c.mutate(ctx, func() error {
		return c.cfg.Client.ApplySuggestion(ctx, key, fields)
	})
}

// MoveToSprint schedules key into the active sprint. On success it
// refetches and then advances the Bus exactly once, even if that refetch
// failed, so other mounted collections reload. A rejected move leaves the
// Bus alone.
func (c *Collection) MoveToSprint(ctx context.Context, key string) (string, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	msg, err := c.cfg.Client.MoveToSprint(ctx, key)
	if err != nil {
		return "", err
	}
	c.refetchLocked(ctx)
	if c.cfg.Bus != nil {
		token := c.cfg.Bus.Advance()
		c.mu.Lock()
		if token > c.seenToken {
			c.seenToken = token
		}
		c.mu.Unlock()
	}
	return msg, nil
}

func (c *Collection) mutate(ctx context.Context, write func() error) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	if err := write(); err != nil {
		return err
	}
	c.refetchLocked(ctx)
	return nil
}

func (c *Collection) refetchLocked(ctx context.Context) {
	_ = c.loadLocked(ctx)
}

func (c *Collection) currentIssue(key string) (domain.Issue, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, issue := range c.issues {
		if issue.Key == key {
			return issue, true
		}
	}
	return domain.Issue{}, false
}

// SaveDraft stores key's unsent comment. A draft tagged older than the
// last one written for key, or than a submit of key, is dropped.
func (c *Collection) SaveDraft(ctx context.Context, key, text string, rev overlay.Revision) error {
	applied, err := c.cfg.Overlay.SetDraftAt(ctx, key, text, rev)
	if err != nil {
		return err
	}
	if applied {
		c.Touch()
	}
	return nil
}

// SubmitComment records text as a local comment for key and clears its
// draft.
func (c *Collection) SubmitComment(ctx context.Context, key, text string, rev overlay.Revision) error {
	if err := c.cfg.Overlay.SubmitCommentAt(ctx, key, text, rev); err != nil {
		return err
	}
	c.Touch()
	return nil
}
