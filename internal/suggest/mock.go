package suggest

import (
	"context"
	"errors"
	"sync"
)

// ErrMockNotImplemented is returned when a MockClient method lacks an override.
var ErrMockNotImplemented = errors.New("suggest.MockClient: method not implemented")

// MockClient is a test double for Client.
type MockClient struct {
	SuggestFn    func(context.Context, string, string, string) (Suggestion, error)
	DuplicatesFn func(context.Context, string, string) ([]Duplicate, error)

	mu                  sync.Mutex
	SuggestCallCount    int
	DuplicatesCallCount int
	SuggestCallArgs     []string
	DuplicatesCallArgs  []string
}

// NewMockClient returns a MockClient with zeroed handlers.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Suggest invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) Suggest(ctx context.Context, key, summary, description string) (Suggestion, error) {
	m.mu.Lock()
	m.SuggestCallCount++
	m.SuggestCallArgs = append(m.SuggestCallArgs, key)
	m.mu.Unlock()
	if m.SuggestFn == nil {
		return Suggestion{}, ErrMockNotImplemented
	}
	return m.SuggestFn(ctx, key, summary, description)
}

// Duplicates invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) Duplicates(ctx context.Context, key, summary string) ([]Duplicate, error) {
	m.mu.Lock()
	m.DuplicatesCallCount++
	m.DuplicatesCallArgs = append(m.DuplicatesCallArgs, key)
	m.mu.Unlock()
	if m.DuplicatesFn == nil {
		return nil, ErrMockNotImplemented
	}
	return m.DuplicatesFn(ctx, key, summary)
}

var _ Client = (*MockClient)(nil)
