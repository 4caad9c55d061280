// Package overlay persists data the tracker does not know about: free-text
// comments and in-progress comment drafts keyed by issue, plus other small
// named documents. Every mutation is written through before it returns.
package overlay

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"scrummaster/internal/debug"
	appErrors "scrummaster/internal/errors"
)

// Namespaces persisted by the Store.
const (
	NamespaceComments = "comments"
	NamespaceDrafts   = "commentDrafts"
)

// Revision orders writes to one key's draft. A tagged write no newer than
// the last tagged write applied to that key is dropped. Zero is untagged
// and always applies.
type Revision uint64

// Entry is the overlay data held for one issue.
type Entry struct {
	Comments []string
	Draft    string
}

// Store is the in-memory view of the overlay namespaces, written through
// to a Backend on every change. Orphaned keys (issues that no longer exist
// remotely) are kept.
type Store struct {
	backend Backend

	mu       sync.RWMutex
	comments map[string][]string
	drafts   map[string]string
	// revs holds the newest draft revision applied per key. It is not
	// persisted.
	revs map[string]Revision
}

// Open loads the overlay namespaces from backend. Missing namespaces start
// empty. A namespace that fails to decode is logged and starts empty; its
// stored value is replaced on the next write.
func Open(ctx context.Context, backend Backend) (*Store, error) {
	s := &Store{
		backend:  backend,
		comments: map[string][]string{},
		drafts:   map[string]string{},
		revs:     map[string]Revision{},
	}
	if err := s.loadNamespace(ctx, NamespaceComments, &s.comments); err != nil {
		return nil, err
	}
	if err := s.loadNamespace(ctx, NamespaceDrafts, &s.drafts); err != nil {
		return nil, err
	}
	if s.comments == nil {
		s.comments = map[string][]string{}
	}
	if s.drafts == nil {
		s.drafts = map[string]string{}
	}
	return s, nil
}

func (s *Store) loadNamespace(ctx context.Context, name string, into any) error {
	found, err := s.LoadDocument(ctx, name, into)
	if err == nil || !found {
		return err
	}
	if appErrors.IsCode(err, appErrors.CodeInvalidResponse) {
		debug.Logger().Warn("discarding unreadable overlay namespace", "name", name, "error", err)
		switch m := into.(type) {
		case *map[string][]string:
			*m = map[string][]string{}
		case *map[string]string:
			*m = map[string]string{}
		}
		return nil
	}
	return err
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Comments returns the comments for key in insertion order. The slice is
// a copy and is empty, never nil, when there are none.
func (s *Store) Comments(key string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.comments[key]...)
}

// Draft returns the unsent comment for key.
func (s *Store) Draft(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drafts[key]
}

// Entry returns everything stored for key.
func (s *Store) Entry(key string) Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Entry{
		Comments: append([]string{}, s.comments[key]...),
		Draft:    s.drafts[key],
	}
}

// Keys lists every issue key with overlay data, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool, len(s.comments)+len(s.drafts))
	for k, v := range s.comments {
		if len(v) > 0 {
			seen[k] = true
		}
	}
	for k, v := range s.drafts {
		if v != "" {
			seen[k] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AppendComment adds text to the end of key's comments and persists the
// namespace. Blank text is rejected with a ValidationSkipped error and
// leaves the store untouched.
func (s *Store) AppendComment(ctx context.Context, key, text string) error {
	if err := validate(key, text); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.comments[key]
	s.comments[key] = append(append([]string{}, prev...), text)
	if err := s.saveLocked(ctx, NamespaceComments, s.comments); err != nil {
		restoreComments(s.comments, key, prev, had)
		return err
	}
	return nil
}

// SetDraft replaces key's draft. An empty text clears it.
func (s *Store) SetDraft(ctx context.Context, key, text string) error {
	_, err := s.SetDraftAt(ctx, key, text, 0)
	return err
}

// SetDraftAt is SetDraft tagged with rev. It reports false, without error,
// when a newer revision for key has already been applied.
func (s *Store) SetDraftAt(ctx context.Context, key, text string, rev Revision) (bool, error) {
	if strings.TrimSpace(key) == "" {
		return false, appErrors.New(appErrors.CodeValidationSkipped, "issue key is required", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if rev != 0 && rev <= s.revs[key] {
		debug.Logger().Debug("dropping stale draft", "key", key, "revision", rev)
		return false, nil
	}
	prev, had := s.drafts[key]
	prevRev, hadRev := s.revs[key]
	if text == "" {
		delete(s.drafts, key)
	} else {
		s.drafts[key] = text
	}
	if rev != 0 {
		s.revs[key] = rev
	}
	if err := s.saveLocked(ctx, NamespaceDrafts, s.drafts); err != nil {
		restoreString(s.drafts, key, prev, had)
		restoreRevision(s.revs, key, prevRev, hadRev)
		return false, err
	}
	return true, nil
}

// SubmitDraft appends key's draft as a comment and clears the draft. A
// blank draft is rejected like a blank comment.
func (s *Store) SubmitDraft(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitLocked(ctx, key, s.drafts[key], 0)
}

// SubmitCommentAt appends text as a comment and clears key's draft, tagged
// with rev. Drafts tagged before rev are dropped afterwards. The comment
// is always appended; a draft written after rev is kept.
func (s *Store) SubmitCommentAt(ctx context.Context, key, text string, rev Revision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitLocked(ctx, key, text, rev)
}

// submitLocked commits the comment and the draft removal together. When
// the draft namespace cannot be written the appended comment is written
// back out, so a failed submit leaves both namespaces as they were.
func (s *Store) submitLocked(ctx context.Context, key, text string, rev Revision) error {
	if err := validate(key, text); err != nil {
		return err
	}
	prevComments, hadComments := s.comments[key]
	prevDraft, hadDraft := s.drafts[key]
	prevRev, hadRev := s.revs[key]

	s.comments[key] = append(append([]string{}, prevComments...), text)
	if err := s.saveLocked(ctx, NamespaceComments, s.comments); err != nil {
		restoreComments(s.comments, key, prevComments, hadComments)
		return err
	}

	if rev == 0 || rev > prevRev {
		delete(s.drafts, key)
		if rev != 0 {
			s.revs[key] = rev
		}
		if err := s.saveLocked(ctx, NamespaceDrafts, s.drafts); err != nil {
			restoreString(s.drafts, key, prevDraft, hadDraft)
			restoreRevision(s.revs, key, prevRev, hadRev)
			restoreComments(s.comments, key, prevComments, hadComments)
			if rbErr := s.saveLocked(ctx, NamespaceComments, s.comments); rbErr != nil {
				debug.Logger().Warn("comment kept after failed draft clear",
					"key", key, "error", err, "rollback_error", rbErr)
				s.comments[key] = append(append([]string{}, prevComments...), text)
				delete(s.drafts, key)
				if rev != 0 {
					s.revs[key] = rev
				}
				return nil
			}
			return err
		}
	}
	return nil
}

func restoreComments(m map[string][]string, key string, prev []string, had bool) {
	if had {
		m[key] = prev
	} else {
		delete(m, key)
	}
}

func restoreString(m map[string]string, key, prev string, had bool) {
	if had {
		m[key] = prev
	} else {
		delete(m, key)
	}
}

func restoreRevision(m map[string]Revision, key string, prev Revision, had bool) {
	if had {
		m[key] = prev
	} else {
		delete(m, key)
	}
}

// LoadDocument decodes the named document into v. It reports false when
// nothing is stored under name.
func (s *Store) LoadDocument(ctx context.Context, name string, v any) (bool, error) {
	data, found, err := s.backend.Load(ctx, name)
	if err != nil {
		return false, appErrors.New(appErrors.CodeStorageFailed, fmt.Sprintf("load %s", name), err)
	}
	if !found || len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, appErrors.New(appErrors.CodeInvalidResponse, fmt.Sprintf("decode %s", name), err)
	}
	return true, nil
}

// SaveDocument encodes v and stores it under name.
func (s *Store) SaveDocument(ctx context.Context, name string, v any) error {
	return s.saveLocked(ctx, name, v)
}

// saveLocked encodes and writes v. Callers mutating the overlay maps hold
// s.mu; SaveDocument callers own their value.
func (s *Store) saveLocked(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return appErrors.New(appErrors.CodeStorageFailed, fmt.Sprintf("encode %s", name), err)
	}
	if err := s.backend.Save(ctx, name, data); err != nil {
		return appErrors.New(appErrors.CodeStorageFailed, fmt.Sprintf("save %s", name), err)
	}
	return nil
}

func validate(key, text string) error {
	if strings.TrimSpace(key) == "" {
		return appErrors.New(appErrors.CodeValidationSkipped, "issue key is required", nil)
	}
	if strings.TrimSpace(text) == "" {
		return appErrors.New(appErrors.CodeValidationSkipped, "comment is empty", nil)
	}
	return nil
}
