// Package reports fetches the read-only dashboard data: sprint stats,
// burndown and velocity.
package reports

import (
	"context"

	"golang.org/x/sync/errgroup"

	appErrors "scrummaster/internal/errors"
	"scrummaster/internal/httpapi"
)

// Stats summarizes the standup history.
type Stats struct {
	TotalIssues   int     `json:"total_issues"`
	Done          int     `json:"done"`
	AvgAge        float64 `json:"avg_age"`
	CommonBlocker string  `json:"common_blocker"`
	AISummary     string  `json:"ai_summary"`
}

// Burndown is the remaining-work series for the active sprint.
type Burndown struct {
	Labels        []string  `json:"labels"`
	WorkRemaining []float64 `json:"work_remaining"`
	Ideal         []float64 `json:"ideal"`
}

// Velocity is completed work per closed sprint.
type Velocity struct {
	Labels    []string  `json:"labels"`
	Completed []float64 `json:"completed"`
}

// Client fetches report data.
type Client interface {
	Stats(ctx context.Context) (Stats, error)
	Burndown(ctx context.Context) (Burndown, error)
	Velocity(ctx context.Context) (Velocity, error)
}

// HTTPClient implements Client over the backend's JSON API.
type HTTPClient struct {
	api *httpapi.Client
}

// NewHTTPClient returns a Client backed by api.
func NewHTTPClient(api *httpapi.Client) *HTTPClient {
	return &HTTPClient{api: api}
}

// Stats fetches the history summary.
func (c *HTTPClient) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := c.api.Get(ctx, "/stats", &s); err != nil {
		return Stats{}, err
	}
	return s, nil
}

type burndownResponse struct {
	Burndown
	Error string `json:"error"`
}

// Burndown fetches the active sprint's burndown. A server-reported problem,
// such as no active sprint, is a CodeServerError.
func (c *HTTPClient) Burndown(ctx context.Context) (Burndown, error) {
	var resp burndownResponse
	if err := c.api.Get(ctx, "/api/burndown", &resp); err != nil {
		return Burndown{}, err
	}
	if resp.Error != "" {
		return Burndown{}, appErrors.New(appErrors.CodeServerError, resp.Error, nil)
	}
	if len(resp.WorkRemaining) != len(resp.Labels) {
		return Burndown{}, appErrors.New(appErrors.CodeInvalidResponse, "burndown series length mismatch", nil)
	}
	return resp.Burndown, nil
}

// Velocity fetches completed work for recent sprints.
func (c *HTTPClient) Velocity(ctx context.Context) (Velocity, error) {
	var v Velocity
	if err := c.api.Get(ctx, "/api/velocity", &v); err != nil {
		return Velocity{}, err
	}
	if len(v.Completed) != len(v.Labels) {
		return Velocity{}, appErrors.New(appErrors.CodeInvalidResponse, "velocity series length mismatch", nil)
	}
	return v, nil
}

var _ Client = (*HTTPClient)(nil)

// Dashboard is every panel's data with per-panel failures.
type Dashboard struct {
	Stats    Stats
	Burndown Burndown
	Velocity Velocity

	StatsErr    error
	BurndownErr error
	VelocityErr error
}

// Load fetches all panels concurrently. One panel failing does not affect
// the others.
func Load(ctx context.Context, client Client) Dashboard {
	var d Dashboard
	var g errgroup.Group
	g.Go(func() error {
		d.Stats, d.StatsErr = client.Stats(ctx)
		return nil
	})
	g.Go(func() error {
		d.Burndown, d.BurndownErr = client.Burndown(ctx)
		return nil
	})
	g.Go(func() error {
		d.Velocity, d.VelocityErr = client.Velocity(ctx)
		return nil
	})
	_ = g.Wait()
	return d
}
