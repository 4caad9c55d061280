package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	appErrors "scrummaster/internal/errors"
	"scrummaster/internal/httpapi"
)

// Client requests suggestions from the grooming service.
type Client interface {
	Suggest(ctx context.Context, key, summary, description string) (Suggestion, error)
	Duplicates(ctx context.Context, key, summary string) ([]Duplicate, error)
}

// HTTPClient implements Client over the backend's JSON API.
type HTTPClient struct {
	api *httpapi.Client
}

// NewHTTPClient returns a Client backed by api.
func NewHTTPClient(api *httpapi.Client) *HTTPClient {
	return &HTTPClient{api: api}
}

type suggestRequest struct {
	Key         string `json:"key"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

type duplicatesRequest struct {
	Key     string `json:"key"`
	Summary string `json:"summary"`
}

type duplicatesResponse struct {
	Duplicates *[]Duplicate `json:"duplicates"`
}

// Suggest asks for a grooming suggestion. A reply that is a bare JSON
// string is taken as the clarification.
func (c *HTTPClient) Suggest(ctx context.Context, key, summary, description string) (Suggestion, error) {
	if strings.TrimSpace(key) == "" {
		return Suggestion{}, appErrors.New(appErrors.CodeValidationSkipped, "issue key is required", nil)
	}
	body, err := c.api.Do(ctx, http.MethodPost, "/backlog/ai_suggestion",
		suggestRequest{Key: key, Summary: summary, Description: description})
	if err != nil {
		return Suggestion{}, err
	}

	var wire wireSuggestion
	if err := httpapi.Decode(body, &wire); err == nil {
		return wire.toSuggestion(), nil
	}
	var text string
	if json.Unmarshal(body, &text) == nil {
		return Suggestion{Clarification: strings.TrimSpace(text)}, nil
	}
	return Suggestion{}, appErrors.New(appErrors.CodeInvalidResponse, "suggestion reply is not an object", nil)
}

// Duplicates returns backlog issues whose summaries resemble summary.
func (c *HTTPClient) Duplicates(ctx context.Context, key, summary string) ([]Duplicate, error) {
	if strings.TrimSpace(key) == "" {
		return nil, appErrors.New(appErrors.CodeValidationSkipped, "issue key is required", nil)
	}
	var resp duplicatesResponse
	if err := c.api.Post(ctx, "/backlog/duplicates", duplicatesRequest{Key: key, Summary: summary}, &resp); err != nil {
		return nil, err
	}
	if resp.Duplicates == nil {
		return nil, appErrors.New(appErrors.CodeInvalidResponse, "duplicates reply missing list", nil)
	}
	return *resp.Duplicates, nil
}

var _ Client = (*HTTPClient)(nil)
