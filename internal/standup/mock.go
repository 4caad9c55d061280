package standup

import (
	"context"
	"errors"
	"sync"
)

// ErrMockNotImplemented is returned when a MockClient method lacks an override.
var ErrMockNotImplemented = errors.New("standup.MockClient: method not implemented")

// MockClient is a test double for Client.
type MockClient struct {
	SuggestFn         func(context.Context) (AutoFill, error)
	GenerateSummaryFn func(context.Context, Form) (string, error)
	HistoryFn         func(context.Context) ([]Record, error)
	ClearHistoryFn    func(context.Context) error
	DeleteHistoryFn   func(context.Context, int) error
	SearchFn          func(context.Context, string) ([]Match, error)
	AskFn             func(context.Context, string) (Answer, error)

	mu                       sync.Mutex
	SuggestCallCount         int
	GenerateSummaryCallCount int
	HistoryCallCount         int
	ClearHistoryCallCount    int
	DeleteHistoryCallArgs    []int
	GenerateSummaryCallArgs  []Form
	SearchCallArgs           []string
	AskCallArgs              []string
}

// NewMockClient returns a MockClient with zeroed handlers.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Suggest invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) Suggest(ctx context.Context) (AutoFill, error) {
	m.mu.Lock()
	m.SuggestCallCount++
	m.mu.Unlock()
	if m.SuggestFn == nil {
		return AutoFill{}, ErrMockNotImplemented
	}
	return m.SuggestFn(ctx)
}

// GenerateSummary invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) GenerateSummary(ctx context.Context, form Form) (string, error) {
	m.mu.Lock()
	m.GenerateSummaryCallCount++
	m.GenerateSummaryCallArgs = append(m.GenerateSummaryCallArgs, form)
	m.mu.Unlock()
	if m.GenerateSummaryFn == nil {
		return "", ErrMockNotImplemented
	}
	return m.GenerateSummaryFn(ctx, form)
}

// History invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) History(ctx context.Context) ([]Record, error) {
	m.mu.Lock()
	m.HistoryCallCount++
	m.mu.Unlock()
	if m.HistoryFn == nil {
		return nil, ErrMockNotImplemented
	}
	return m.HistoryFn(ctx)
}

// ClearHistory invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) ClearHistory(ctx context.Context) error {
	m.mu.Lock()
	m.ClearHistoryCallCount++
	m.mu.Unlock()
	if m.ClearHistoryFn == nil {
		return ErrMockNotImplemented
	}
	return m.ClearHistoryFn(ctx)
}

// DeleteHistory invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) DeleteHistory(ctx context.Context, id int) error {
	m.mu.Lock()
	m.DeleteHistoryCallArgs = append(m.DeleteHistoryCallArgs, id)
	m.mu.Unlock()
	if m.DeleteHistoryFn == nil {
		return ErrMockNotImplemented
	}
	return m.DeleteHistoryFn(ctx, id)
}

// Search invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) Search(ctx context.Context, query string) ([]Match, error) {
	m.mu.Lock()
	m.SearchCallArgs = append(m.SearchCallArgs, query)
	m.mu.Unlock()
	if m.SearchFn == nil {
		return nil, ErrMockNotImplemented
	}
	return m.SearchFn(ctx, query)
}

// Ask invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) Ask(ctx context.Context, question string) (Answer, error) {
	m.mu.Lock()
	m.AskCallArgs = append(m.AskCallArgs, question)
	m.mu.Unlock()
	if m.AskFn == nil {
		return Answer{}, ErrMockNotImplemented
	}
	return m.AskFn(ctx, question)
}

var _ Client = (*MockClient)(nil)
