package standup

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	appErrors "scrummaster/internal/errors"
	"scrummaster/internal/httpapi"
)

// Client talks to the standup endpoints.
type Client interface {
	Suggest(ctx context.Context) (AutoFill, error)
	GenerateSummary(ctx context.Context, form Form) (string, error)
	History(ctx context.Context) ([]Record, error)
	ClearHistory(ctx context.Context) error
	DeleteHistory(ctx context.Context, id int) error
	Search(ctx context.Context, query string) ([]Match, error)
	Ask(ctx context.Context, question string) (Answer, error)
}

// HTTPClient implements Client over the backend's JSON API.
type HTTPClient struct {
	api *httpapi.Client
}

// NewHTTPClient returns a Client backed by api.
func NewHTTPClient(api *httpapi.Client) *HTTPClient {
	return &HTTPClient{api: api}
}

// Suggest derives answers from the active sprint.
func (c *HTTPClient) Suggest(ctx context.Context) (AutoFill, error) {
	var fill AutoFill
	if err := c.api.Get(ctx, "/standup/suggest", &fill); err != nil {
		return AutoFill{}, err
	}
	return fill, nil
}

type summaryResponse struct {
	Summary *string `json:"summary"`
}

// GenerateSummary asks for a short summary of form. The server also stores
// the standup in its history.
func (c *HTTPClient) GenerateSummary(ctx context.Context, form Form) (string, error) {
	var resp summaryResponse
	if err := c.api.Post(ctx, "/generate-summary", form, &resp); err != nil {
		return "", err
	}
	if resp.Summary == nil {
		return "", appErrors.New(appErrors.CodeInvalidResponse, "summary response missing summary", nil)
	}
	return strings.TrimSpace(*resp.Summary), nil
}

// History lists server-side standups, newest first.
func (c *HTTPClient) History(ctx context.Context) ([]Record, error) {
	var records []Record
	if err := c.api.Get(ctx, "/history", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ClearHistory deletes every server-side standup.
func (c *HTTPClient) ClearHistory(ctx context.Context) error {
	var ack map[string]any
	return c.api.Delete(ctx, "/history", &ack)
}

// DeleteHistory deletes one server-side standup.
func (c *HTTPClient) DeleteHistory(ctx context.Context, id int) error {
	var ack map[string]any
	return c.api.Delete(ctx, fmt.Sprintf("/history/%d", id), &ack)
}

type searchResponse struct {
	Matches *[]Match `json:"matches"`
}

// Search finds past standups similar to query.
func (c *HTTPClient) Search(ctx context.Context, query string) ([]Match, error) {
	if err := requireQuery(query); err != nil {
		return nil, err
	}
	var resp searchResponse
	if err := c.api.Get(ctx, "/search/standups?q="+url.QueryEscape(query), &resp); err != nil {
		return nil, err
	}
	if resp.Matches == nil {
		return nil, appErrors.New(appErrors.CodeInvalidResponse, "search response missing matches", nil)
	}
	return *resp.Matches, nil
}

// Ask answers question from the most similar past standups.
func (c *HTTPClient) Ask(ctx context.Context, question string) (Answer, error) {
	if err := requireQuery(question); err != nil {
		return Answer{}, err
	}
	var ans Answer
	if err := c.api.Get(ctx, "/rag/standup?q="+url.QueryEscape(question), &ans); err != nil {
		return Answer{}, err
	}
	return ans, nil
}

func requireQuery(q string) error {
	if strings.TrimSpace(q) == "" {
		return appErrors.New(appErrors.CodeValidationSkipped, "query is empty", nil)
	}
	return nil
}

var _ Client = (*HTTPClient)(nil)
