// Package httpapi is the JSON-over-HTTP transport shared by the tracker,
// suggestion, standup and report clients. It owns the base URL, the
// per-request timeout, request ids and the mapping of transport failures
// onto structured error codes.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"scrummaster/internal/debug"
	appErrors "scrummaster/internal/errors"
)

// MaxResponseSize bounds JSON response reads.
const MaxResponseSize int64 = 32 << 20

// RequestIDHeader carries a per-request id so server logs can be matched
// against the debug log.
const RequestIDHeader = "X-Request-ID"

// Config holds the settings for a Client.
type Config struct {
	// BaseURL is the root of the backend, e.g. "http://127.0.0.1:8000".
	BaseURL string
	// Timeout bounds every request, including reading the body. Zero means
	// no timeout beyond the caller's context.
	Timeout time.Duration
	// HTTPClient defaults to a fresh http.Client.
	HTTPClient *http.Client
	// Logger defaults to debug.Logger().
	Logger *slog.Logger
}

// Client performs JSON requests against one backend.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, appErrors.New(appErrors.CodeConfigurationError,
			fmt.Sprintf("server url %q must start with http:// or https://", cfg.BaseURL), nil)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = debug.Logger()
	}
	return &Client{
		baseURL:    baseURL,
		timeout:    cfg.Timeout,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the normalized backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	body, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return Decode(body, out)
}

// Post issues a POST with a JSON body and decodes the response into out.
// A nil out only checks that the server acknowledged the request.
func (c *Client) Post(ctx context.Context, path string, payload any, out any) error {
	body, err := c.Do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return requireBody(body)
	}
	return Decode(body, out)
}

// Delete issues a DELETE and decodes the response into out when non-nil.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	body, err := c.Do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return Decode(body, out)
}

// Do executes a request and returns the raw body of a 2xx response.
func (c *Client) Do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	resp, cancel, err := c.send(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, classifyTransport(method, path, err)
	}
	if err := statusError(method, path, resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

// Stream executes a GET and hands back the body unread. The timeout keeps
// running until the caller closes the returned reader.
func (c *Client) Stream(ctx context.Context, path string) (io.ReadCloser, error) {
	resp, cancel, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer cancel()
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, statusError(http.MethodGet, path, resp.StatusCode, body)
	}
	return &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload any) (*http.Response, context.CancelFunc, error) {
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		c.logger.Debug("request failed",
			"method", method, "path", path, "request_id", requestID,
			"duration", time.Since(start), "error", err)
		return nil, nil, classifyTransport(method, path, err)
	}
	c.logger.Debug("request",
		"method", method, "path", path, "request_id", requestID,
		"status", resp.StatusCode, "duration", time.Since(start))
	return resp, cancel, nil
}

// Decode unmarshals a JSON body, mapping failures to InvalidResponse.
func Decode(body []byte, out any) error {
	if err := requireBody(body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return appErrors.New(appErrors.CodeInvalidResponse, "invalid response from server: "+err.Error(), err)
	}
	return nil
}

func requireBody(body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return appErrors.New(appErrors.CodeInvalidResponse, "server returned an empty response", nil)
	}
	return nil
}

func statusError(method, path string, status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	msg := fmt.Sprintf("%s %s: server returned %d", method, path, status)
	if detail := errorDetail(body); detail != "" {
		msg += ": " + detail
	}
	if status == http.StatusNotFound {
		return appErrors.New(appErrors.CodeNotFound, msg, nil)
	}
	return appErrors.New(appErrors.CodeServerError, msg, nil)
}

// errorDetail extracts the server's message from {"error": ...} or
// {"detail": ...} bodies, falling back to the raw text.
func errorDetail(body []byte) string {
	var wire struct {
		Error  string `json:"error"`
		Detail any    `json:"detail"`
	}
	if json.Unmarshal(body, &wire) == nil {
		if wire.Error != "" {
			return wire.Error
		}
		if s, ok := wire.Detail.(string); ok && s != "" {
			return s
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func classifyTransport(method, path string, err error) error {
	msg := fmt.Sprintf("%s %s: server unreachable", method, path)
	if errors.Is(err, context.DeadlineExceeded) {
		msg = fmt.Sprintf("%s %s: request timed out", method, path)
	}
	return appErrors.New(appErrors.CodeUnreachable, msg, err)
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *cancelOnClose) Close() error {
	err := r.ReadCloser.Close()
	r.cancel()
	return err
}
