package viewsync

import (
	"time"

	"scrummaster/internal/domain"
)

// State is the load state of a collection.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// View is an issue merged with its local overlay.
type View struct {
	domain.Issue
	Comments []string
	Draft    string
}

// Snapshot is a consistent read of a collection. Issues keeps the server
// order; Buckets holds the same views partitioned by status.
type Snapshot struct {
	Name     string
	State    State
	Issues   []View
	Buckets  map[domain.Status][]View
	Err      error
	Token    uint64
	LoadedAt time.Time
}

// Find returns the view for key.
func (s Snapshot) Find(key string) (View, bool) {
	for _, v := range s.Issues {
		if v.Key == key {
			return v, true
		}
	}
	return View{}, false
}

// BucketOf reports which bucket holds key.
func (s Snapshot) BucketOf(key string) (domain.Status, bool) {
	for _, status := range domain.Statuses {
		for _, v := range s.Buckets[status] {
			if v.Key == key {
				return status, true
			}
		}
	}
	return "", false
}

// Loading reports whether a fetch is in flight.
func (s Snapshot) Loading() bool {
	return s.State == StateLoading
}
