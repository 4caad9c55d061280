package jira

import (
	"context"
	"errors"
	"io"
	"sync"

	"scrummaster/internal/domain"
)

// ErrMockNotImplemented is returned when a MockClient method lacks an override.
var ErrMockNotImplemented = errors.New("jira.MockClient: method not implemented")

// MockClient is a test double for Client.
type MockClient struct {
	ListFn            func(context.Context) ([]domain.Issue, error)
	BacklogFn         func(context.Context) ([]domain.Issue, error)
	CreateFn          func(context.Context, string, string) (domain.Issue, error)
	UpdateFn          func(context.Context, string, UpdateFields) error
	DeleteFn          func(context.Context, string) error
	ApplySuggestionFn func(context.Context, string, UpdateFields) error
	MoveToSprintFn    func(context.Context, string) (string, error)
	ExportCSVFn       func(context.Context, ExportKind) (io.ReadCloser, error)

	mu                       sync.Mutex
	ListCallCount            int
	BacklogCallCount         int
	CreateCallCount          int
	UpdateCallCount          int
	DeleteCallCount          int
	ApplySuggestionCallCount int
	MoveToSprintCallCount    int
	ExportCSVCallCount       int
	CreateCallArgs           []CreateCallArg
	UpdateCallArgs           []UpdateCallArg
	DeleteCallArgs           []string
	ApplySuggestionCallArgs  []UpdateCallArg
	MoveToSprintCallArgs     []string
	ExportCSVCallArgs        []ExportKind
}

// CreateCallArg captures arguments passed to Create.
type CreateCallArg struct {
	Summary     string
	Description string
}

// UpdateCallArg captures arguments passed to Update and ApplySuggestion.
type UpdateCallArg struct {
	Key    string
	Fields UpdateFields
}

// NewMockClient returns a MockClient with zeroed handlers.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// List invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) List(ctx context.Context) ([]domain.Issue, error) {
	m.mu.Lock()
	m.ListCallCount++
	m.mu.Unlock()
	if m.ListFn == nil {
		return nil, ErrMockNotImplemented
	}
	return m.ListFn(ctx)
}

// Backlog invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) Backlog(ctx context.Context) ([]domain.Issue, error) {
	m.mu.Lock()
	m.BacklogCallCount++
	m.mu.Unlock()
	if m.BacklogFn == nil {
		return nil, ErrMockNotImplemented
	}
	return m.BacklogFn(ctx)
}

// Create invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) Create(ctx context.Context, summary, description string) (domain.Issue, error) {
	m.mu.Lock()
	m.CreateCallCount++
	m.CreateCallArgs = append(m.CreateCallArgs, CreateCallArg{Summary: summary, Description: description})
	m.mu.Unlock()
	if m.CreateFn == nil {
		return domain.Issue{}, ErrMockNotImplemented
	}
	return m.CreateFn(ctx, summary, description)
}

// Update invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) Update(ctx context.Context, key string, fields UpdateFields) error {
	m.mu.Lock()
	m.UpdateCallCount++
	m.UpdateCallArgs = append(m.UpdateCallArgs, UpdateCallArg{Key: key, Fields: fields})
	m.mu.Unlock()
	if m.UpdateFn == nil {
		return ErrMockNotImplemented
	}
	return m.UpdateFn(ctx, key, fields)
}

// Delete invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	m.DeleteCallCount++
	m.DeleteCallArgs = append(m.DeleteCallArgs, key)
	m.mu.Unlock()
	if m.DeleteFn == nil {
		return ErrMockNotImplemented
	}
	return m.DeleteFn(ctx, key)
}

// ApplySuggestion invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) ApplySuggestion(ctx context.Context, key string, fields UpdateFields) error {
	m.mu.Lock()
	m.ApplySuggestionCallCount++
	m.ApplySuggestionCallArgs = append(m.ApplySuggestionCallArgs, UpdateCallArg{Key: key, Fields: fields})
	m.mu.Unlock()
	if m.ApplySuggestionFn == nil {
		return ErrMockNotImplemented
	}
	return m.ApplySuggestionFn(ctx, key, fields)
}

// MoveToSprint invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) MoveToSprint(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	m.MoveToSprintCallCount++
	m.MoveToSprintCallArgs = append(m.MoveToSprintCallArgs, key)
	m.mu.Unlock()
	if m.MoveToSprintFn == nil {
		return "", ErrMockNotImplemented
	}
	return m.MoveToSprintFn(ctx, key)
}

// ExportCSV invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) ExportCSV(ctx context.Context, kind ExportKind) (io.ReadCloser, error) {
	m.mu.Lock()
	m.ExportCSVCallCount++
	m.ExportCSVCallArgs = append(m.ExportCSVCallArgs, kind)
	m.mu.Unlock()
	if m.ExportCSVFn == nil {
		return nil, ErrMockNotImplemented
	}
	return m.ExportCSVFn(ctx, kind)
}

// TotalCalls returns the number of calls across all methods.
func (m *MockClient) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ListCallCount + m.BacklogCallCount + m.CreateCallCount + m.UpdateCallCount +
		m.DeleteCallCount + m.ApplySuggestionCallCount + m.MoveToSprintCallCount + m.ExportCSVCallCount
}

// WriteCalls returns the number of calls to mutating methods.
func (m *MockClient) WriteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CreateCallCount + m.UpdateCallCount + m.DeleteCallCount +
		m.ApplySuggestionCallCount + m.MoveToSprintCallCount
}

var _ Client = (*MockClient)(nil)
