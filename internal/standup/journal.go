package standup

import (
	"context"
	"errors"
	"strings"
	"sync"

	"scrummaster/internal/debug"
	appErrors "scrummaster/internal/errors"
	"scrummaster/internal/overlay"
)

// Local document names.
const (
	FormDocument    = "standup-form-v1"
	HistoryDocument = "standup-history-v1"
)

// Journal is the locally persisted form and the local history of submitted
// forms, newest first.
type Journal struct {
	store *overlay.Store

	mu      sync.RWMutex
	form    Form
	formRev overlay.Revision
	history []Form
}

// OpenJournal loads the form and history from store.
func OpenJournal(ctx context.Context, store *overlay.Store) (*Journal, error) {
	j := &Journal{store: store}
	if err := loadOrReset(ctx, store, FormDocument, &j.form); err != nil {
		return nil, err
	}
	if err := loadOrReset(ctx, store, HistoryDocument, &j.history); err != nil {
		return nil, err
	}
	if j.history == nil {
		j.history = []Form{}
	}
	return j, nil
}

// loadOrReset decodes name into v, zeroing v when the stored document is
// unreadable.
func loadOrReset[T any](ctx context.Context, store *overlay.Store, name string, v *T) error {
	_, err := store.LoadDocument(ctx, name, v)
	if appErrors.IsCode(err, appErrors.CodeInvalidResponse) {
		debug.Logger().Warn("discarding unreadable standup document", "name", name, "error", err)
		var zero T
		*v = zero
		return nil
	}
	return err
}

// Form returns the autosaved form.
func (j *Journal) Form() Form {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.form
}

// SetForm autosaves form.
func (j *Journal) SetForm(ctx context.Context, form Form) error {
	_, err := j.SetFormAt(ctx, form, 0)
	return err
}

// SetFormAt autosaves form tagged with rev. It reports false when a newer
// revision has already been saved.
func (j *Journal) SetFormAt(ctx context.Context, form Form, rev overlay.Revision) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if rev != 0 && rev <= j.formRev {
		debug.Logger().Debug("dropping stale standup form", "revision", rev)
		return false, nil
	}
	if err := j.store.SaveDocument(ctx, FormDocument, form); err != nil {
		return false, err
	}
	j.form = form
	if rev != 0 {
		j.formRev = rev
	}
	return true, nil
}

// ClearForm resets the form to blank answers at rev.
func (j *Journal) ClearForm(ctx context.Context, rev overlay.Revision) error {
	_, err := j.SetFormAt(ctx, Form{}, rev)
	return err
}

// History returns submitted forms, newest first.
func (j *Journal) History() []Form {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return append([]Form{}, j.history...)
}

// Record prepends form to the local history.
func (j *Journal) Record(ctx context.Context, form Form) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	next := append([]Form{form}, j.history...)
	if err := j.store.SaveDocument(ctx, HistoryDocument, next); err != nil {
		return err
	}
	j.history = next
	return nil
}

// ErrIncomplete is wrapped by Submit when a required answer is blank.
var ErrIncomplete = errors.New("standup: yesterday and today are required")

// Service combines the client and the journal.
type Service struct {
	Client  Client
	Journal *Journal
}

// AutoFill replaces the form with sprint-derived answers and returns the
// proposal, including the upcoming backlog line.
func (s *Service) AutoFill(ctx context.Context) (AutoFill, error) {
	fill, err := s.Client.Suggest(ctx)
	if err != nil {
		return AutoFill{}, err
	}
	if err := s.Journal.SetForm(ctx, fill.Form()); err != nil {
		return AutoFill{}, err
	}
	return fill, nil
}

// Submit generates a summary for form and records form locally once the
// server has answered.
func (s *Service) Submit(ctx context.Context, form Form) (string, error) {
	if strings.TrimSpace(form.Yesterday) == "" || strings.TrimSpace(form.Today) == "" {
		return "", appErrors.New(appErrors.CodeValidationSkipped, ErrIncomplete.Error(), ErrIncomplete)
	}
	summary, err := s.Client.GenerateSummary(ctx, form)
	if err != nil {
		return "", err
	}
	if err := s.Journal.Record(ctx, form); err != nil {
		return summary, err
	}
	return summary, nil
}
