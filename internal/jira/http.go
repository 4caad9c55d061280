package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"scrummaster/internal/domain"
	appErrors "scrummaster/internal/errors"
	"scrummaster/internal/httpapi"
)

var exportPaths = map[ExportKind]string{
	ExportIssues:  "/jira/issues_csv",
	ExportBacklog: "/backlog_csv",
	ExportHistory: "/history_csv",
}

// HTTPClient implements Client over the backend's JSON API.
type HTTPClient struct {
	api *httpapi.Client
}

// NewHTTPClient returns a Client backed by api.
func NewHTTPClient(api *httpapi.Client) *HTTPClient {
	return &HTTPClient{api: api}
}

// List returns the issues of the active sprint.
func (c *HTTPClient) List(ctx context.Context) ([]domain.Issue, error) {
	return c.listIssues(ctx, "/jira/issues")
}

// Backlog returns unscheduled To Do issues.
func (c *HTTPClient) Backlog(ctx context.Context) ([]domain.Issue, error) {
	return c.listIssues(ctx, "/backlog")
}

func (c *HTTPClient) listIssues(ctx context.Context, path string) ([]domain.Issue, error) {
	var wire []wireIssue
	if err := c.api.Get(ctx, path, &wire); err != nil {
		return nil, err
	}
	issues := make([]domain.Issue, 0, len(wire))
	for _, w := range wire {
		issue, err := w.toDomain()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// Create files a new To Do issue. The server assigns the key.
func (c *HTTPClient) Create(ctx context.Context, summary, description string) (domain.Issue, error) {
	if strings.TrimSpace(summary) == "" {
		return domain.Issue{}, appErrors.New(appErrors.CodeValidationSkipped, "summary is required", nil)
	}
	req := createRequest{
		Summary:     summary,
		Description: description,
		Status:      domain.StatusToDo.WireName(),
	}
	var resp createResponse
	if err := c.api.Post(ctx, "/jira/create", req, &resp); err != nil {
		return domain.Issue{}, err
	}
	if strings.TrimSpace(resp.Key) == "" {
		return domain.Issue{}, appErrors.New(appErrors.CodeInvalidResponse, "create response missing issue key", nil)
	}
	return domain.NewIssue(resp.Key, summary, description, domain.StatusToDo.WireName(), "")
}

// Update sends a partial update for key.
func (c *HTTPClient) Update(ctx context.Context, key string, fields UpdateFields) error {
	if err := requireKey(key); err != nil {
		return err
	}
	if fields.IsEmpty() {
		return appErrors.New(appErrors.CodeValidationSkipped, "no fields to update", nil)
	}
	req := updateRequest{
		Key:         key,
		Summary:     fields.Summary,
		Description: fields.Description,
		Status:      wireStatus(fields.Status),
		Assignee:    fields.Assignee,
	}
	return c.postAck(ctx, "/jira/update", req)
}

// Delete archives key. The tracker has no hard delete; an issue with no
// archive transition left is reported as NotFound.
func (c *HTTPClient) Delete(ctx context.Context, key string) error {
	if err := requireKey(key); err != nil {
		return err
	}
	var resp deleteResponse
	if err := c.api.Post(ctx, "/jira/delete", keyRequest{Key: key}, &resp); err != nil {
		return err
	}
	switch {
	case resp.Error != "":
		return appErrors.New(appErrors.CodeNotFound, fmt.Sprintf("archive %s: %s", key, resp.Error), nil)
	case resp.Archived == "":
		return appErrors.New(appErrors.CodeInvalidResponse, "archive response missing acknowledgment", nil)
	}
	return nil
}

// ApplySuggestion writes suggestion-derived fields through the backlog
// endpoint. Assignee is not part of that endpoint and is ignored.
func (c *HTTPClient) ApplySuggestion(ctx context.Context, key string, fields UpdateFields) error {
	if err := requireKey(key); err != nil {
		return err
	}
	if fields.Summary == nil && fields.Description == nil && fields.Status == nil {
		return appErrors.New(appErrors.CodeValidationSkipped, "suggestion has nothing to apply", nil)
	}
	req := applySuggestionRequest{
		Key:            key,
		NewSummary:     fields.Summary,
		NewDescription: fields.Description,
		Status:         wireStatus(fields.Status),
	}
	return c.postAck(ctx, "/backlog/apply_suggestion", req)
}

// MoveToSprint adds key to the active sprint and returns the server's
// confirmation message.
func (c *HTTPClient) MoveToSprint(ctx context.Context, key string) (string, error) {
	if err := requireKey(key); err != nil {
		return "", err
	}
	var resp moveResponse
	if err := c.api.Post(ctx, "/backlog/move_to_sprint", keyRequest{Key: key}, &resp); err != nil {
		return "", err
	}
	switch {
	case resp.Error != "":
		return "", appErrors.New(appErrors.CodeMoveRejected, resp.Error, nil)
	case resp.Result == "":
		return "", appErrors.New(appErrors.CodeInvalidResponse, "move response missing result", nil)
	}
	return resp.Result, nil
}

// ExportCSV streams one of the CSV exports. The caller closes the reader.
func (c *HTTPClient) ExportCSV(ctx context.Context, kind ExportKind) (io.ReadCloser, error) {
	path, ok := exportPaths[kind]
	if !ok {
		return nil, appErrors.New(appErrors.CodeValidationSkipped, fmt.Sprintf("unknown export %q", kind), nil)
	}
	return c.api.Stream(ctx, path)
}

// postAck posts req and requires a JSON object acknowledgment.
func (c *HTTPClient) postAck(ctx context.Context, path string, req any) error {
	body, err := c.api.Do(ctx, http.MethodPost, path, req)
	if err != nil {
		return err
	}
	var ack map[string]json.RawMessage
	if err := httpapi.Decode(body, &ack); err != nil {
		return err
	}
	if ack == nil {
		return appErrors.New(appErrors.CodeInvalidResponse, path+": missing acknowledgment", nil)
	}
	return nil
}

func requireKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return appErrors.New(appErrors.CodeValidationSkipped, "issue key is required", nil)
	}
	return nil
}

var _ Client = (*HTTPClient)(nil)
