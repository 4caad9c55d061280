package suggest

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"scrummaster/internal/debug"
	"scrummaster/internal/domain"
)

// DefaultConcurrency bounds GroomAll when no limit is configured.
const DefaultConcurrency = 4

// Result is the outcome of grooming one issue.
type Result struct {
	Key        string
	Suggestion Suggestion
	Err        error
}

// Groomer fans suggestion requests out across many issues.
type Groomer struct {
	client Client
	limit  int
	// OnResult, when set, is called once per issue as its result lands.
	// Calls may be concurrent and arrive in any order.
	OnResult func(Result)
}

// NewGroomer returns a Groomer issuing at most limit requests at a time.
func NewGroomer(client Client, limit int) *Groomer {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &Groomer{client: client, limit: limit}
}

// Run tracks one GroomAll invocation. Each issue owns one result slot;
// failures stay in their slot and do not affect the others.
type Run struct {
	mu      sync.Mutex
	results map[string]Result
	total   int
	done    chan struct{}
}

// GroomAll requests a suggestion for every issue and returns immediately.
// Results arrive in completion order; nothing is rolled back on failure.
func (g *Groomer) GroomAll(ctx context.Context, issues []domain.Issue) *Run {
	issues = uniqueByKey(issues)
	run := &Run{
		results: make(map[string]Result, len(issues)),
		total:   len(issues),
		done:    make(chan struct{}),
	}

	var eg errgroup.Group
	eg.SetLimit(g.limit)
	go func() {
		defer close(run.done)
		for _, issue := range issues {
			eg.Go(func() error {
				s, err := g.client.Suggest(ctx, issue.Key, issue.Summary, issue.Description)
				if err != nil {
					debug.Logger().Debug("groom failed", "key", issue.Key, "error", err)
				}
				res := Result{Key: issue.Key, Suggestion: s, Err: err}
				run.store(res)
				if g.OnResult != nil {
					g.OnResult(res)
				}
				return nil
			})
		}
		_ = eg.Wait()
	}()
	return run
}

func uniqueByKey(issues []domain.Issue) []domain.Issue {
	seen := make(map[string]bool, len(issues))
	out := make([]domain.Issue, 0, len(issues))
	for _, issue := range issues {
		if seen[issue.Key] {
			continue
		}
		seen[issue.Key] = true
		out = append(out, issue)
	}
	return out
}

func (r *Run) store(res Result) {
	r.mu.Lock()
	r.results[res.Key] = res
	r.mu.Unlock()
}

// Result returns the slot for key if it has landed.
func (r *Run) Result(key string) (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[key]
	return res, ok
}

// Results returns a copy of every slot that has landed so far.
func (r *Run) Results() map[string]Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Result, len(r.results))
	for k, v := range r.results {
		out[k] = v
	}
	return out
}

// Pending returns how many issues have not reported yet.
func (r *Run) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total - len(r.results)
}

// Done is closed once every issue has reported.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until every issue has reported or ctx ends, then returns the
// results collected so far.
func (r *Run) Wait(ctx context.Context) (map[string]Result, error) {
	select {
	case <-r.done:
		return r.Results(), nil
	case <-ctx.Done():
		return r.Results(), ctx.Err()
	}
}
