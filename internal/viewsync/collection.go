// Package viewsync keeps mounted views consistent with the tracker. Each
// Collection owns one remote list (the sprint board or the backlog), merges
// it with the local overlay, serializes loads and mutations against it, and
// reloads when another collection advances the shared Bus.
package viewsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"scrummaster/internal/debug"
	"scrummaster/internal/domain"
	"scrummaster/internal/jira"
	"scrummaster/internal/overlay"
)

// Collection names.
const (
	NameBoard   = "board"
	NameBacklog = "backlog"
)

// ErrNotMounted is returned by Load on a collection that is not mounted.
var ErrNotMounted = errors.New("viewsync: collection is not mounted")

// FetchFunc loads the remote list backing a collection.
type FetchFunc func(ctx context.Context) ([]domain.Issue, error)

// Config wires a Collection.
type Config struct {
	Name    string
	Fetch   FetchFunc
	Client  jira.Client
	Overlay *overlay.Store
	Bus     *Bus
	// EditStatus, when set, is sent as the status of every Edit that does
	// not name one. When nil the issue's current status is sent.
	EditStatus *domain.Status
	// OnChange is called after every state transition. It may be called
	// from any goroutine and must not block.
	OnChange func(Snapshot)
	// Now defaults to time.Now.
	Now func() time.Time
}

// Collection is the synchronized state of one remote list.
type Collection struct {
	cfg Config

	// opMu serializes loads and mutations.
	opMu sync.Mutex

	mu        sync.RWMutex
	state     State
	issues    []domain.Issue
	err       error
	token     uint64
	seenToken uint64
	loadedAt  time.Time
	mounted   bool
	mountGen  uint64
	issued    uint64
	applied   uint64
	cancel    context.CancelFunc
}

// New returns an idle, unmounted Collection.
func New(cfg Config) *Collection {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Collection{cfg: cfg}
}

// NewBoard returns the active sprint collection.
func NewBoard(client jira.Client, store *overlay.Store, bus *Bus) *Collection {
	return New(Config{
		Name:    NameBoard,
		Fetch:   client.List,
		Client:  client,
		Overlay: store,
		Bus:     bus,
	})
}

// NewBacklog returns the backlog collection. Backlog edits always keep the
// issue in To Do.
func NewBacklog(client jira.Client, store *overlay.Store, bus *Bus) *Collection {
	todo := domain.StatusToDo
	return New(Config{
		Name:       NameBacklog,
		Fetch:      client.Backlog,
		Client:     client,
		Overlay:    store,
		Bus:        bus,
		EditStatus: &todo,
	})
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.cfg.Name
}

// SetOnChange replaces the change callback.
func (c *Collection) SetOnChange(fn func(Snapshot)) {
	c.mu.Lock()
	c.cfg.OnChange = fn
	c.mu.Unlock()
}

// Mount marks the collection visible, starts following the Bus and loads.
// Mounting an already mounted collection just reloads.
func (c *Collection) Mount(ctx context.Context) error {
	c.mu.Lock()
	if !c.mounted {
		c.mounted = true
		c.mountGen++
		followCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		c.cancel = cancel
		if c.cfg.Bus != nil {
			c.startFollowing(followCtx)
		}
	}
	c.mu.Unlock()
	return c.Load(ctx)
}

// Unmount stops following the Bus. Requests still in flight complete but
// their results are dropped.
func (c *Collection) Unmount() {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	c.mounted = false
	c.mountGen++
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Mounted reports whether the collection is mounted.
func (c *Collection) Mounted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mounted
}

func (c *Collection) startFollowing(ctx context.Context) {
	tokens, unsubscribe := c.cfg.Bus.Subscribe()
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case token, ok := <-tokens:
				if !ok {
					return
				}
				if err := c.reloadIfStale(ctx, token); err != nil && !errors.Is(err, context.Canceled) {
					debug.Logger().Debug("follow reload failed", "collection", c.cfg.Name, "token", token, "error", err)
				}
			}
		}
	}()
}

// reloadIfStale reloads unless a load or own mutation already covered token.
func (c *Collection) reloadIfStale(ctx context.Context, token uint64) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.mu.RLock()
	covered := token <= c.seenToken
	c.mu.RUnlock()
	if covered {
		return nil
	}
	return c.loadLocked(ctx)
}

// Load fetches the remote list and replaces the collection's issues. On
// failure the previous issues are kept and the error is exposed through
// Snapshot.Err as well as returned.
func (c *Collection) Load(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.loadLocked(ctx)
}

func (c *Collection) loadLocked(ctx context.Context) error {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return ErrNotMounted
	}
	c.issued++
	seq := c.issued
	gen := c.mountGen
	var startToken uint64
	if c.cfg.Bus != nil {
		startToken = c.cfg.Bus.Token()
	}
	if startToken > c.seenToken {
		c.seenToken = startToken
	}
	c.state = StateLoading
	c.mu.Unlock()
	c.notify()

	issues, err := c.cfg.Fetch(ctx)

	c.mu.Lock()
	if !c.mounted || gen != c.mountGen || seq <= c.applied {
		c.mu.Unlock()
		debug.Logger().Debug("dropping stale load", "collection", c.cfg.Name, "seq", seq)
		return nil
	}
	c.applied = seq
	if err != nil {
		c.state = StateError
		c.err = err
	} else {
		c.state = StateReady
		c.err = nil
		c.issues = issues
		c.token = startToken
		c.loadedAt = c.cfg.Now()
	}
	c.mu.Unlock()
	c.notify()

	if err != nil {
		debug.Logger().Debug("load failed", "collection", c.cfg.Name, "error", err)
	}
	return err
}

// Snapshot returns the current state merged with the overlay.
func (c *Collection) Snapshot() Snapshot {
	c.mu.RLock()
	snap := Snapshot{
		Name:     c.cfg.Name,
		State:    c.state,
		Err:      c.err,
		Token:    c.token,
		LoadedAt: c.loadedAt,
	}
	issues := c.issues
	c.mu.RUnlock()

	snap.Issues = make([]View, 0, len(issues))
	for _, issue := range issues {
		snap.Issues = append(snap.Issues, c.view(issue))
	}
	buckets := domain.Partition(issues)
	snap.Buckets = make(map[domain.Status][]View, len(buckets))
	for status, list := range buckets {
		views := make([]View, 0, len(list))
		for _, issue := range list {
			views = append(views, c.view(issue))
		}
		snap.Buckets[status] = views
	}
	return snap
}

func (c *Collection) view(issue domain.Issue) View {
	v := View{Issue: issue, Comments: []string{}}
	if c.cfg.Overlay != nil {
		entry := c.cfg.Overlay.Entry(issue.Key)
		v.Comments = entry.Comments
		v.Draft = entry.Draft
	}
	return v
}

func (c *Collection) notify() {
	c.mu.RLock()
	fn := c.cfg.OnChange
	c.mu.RUnlock()
	if fn != nil {
		fn(c.Snapshot())
	}
}

// Touch reports an overlay-only change to OnChange without refetching.
func (c *Collection) Touch() {
	c.notify()
}
