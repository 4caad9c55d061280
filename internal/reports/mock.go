package reports

import (
	"context"
	"errors"
	"sync"
)

// ErrMockNotImplemented is returned when a MockClient method lacks an override.
var ErrMockNotImplemented = errors.New("reports.MockClient: method not implemented")

// MockClient is a test double for Client.
type MockClient struct {
	StatsFn    func(context.Context) (Stats, error)
	BurndownFn func(context.Context) (Burndown, error)
	VelocityFn func(context.Context) (Velocity, error)

	mu            sync.Mutex
	StatsCalls    int
	BurndownCalls int
	VelocityCalls int
}

// NewMockClient returns a MockClient with zeroed handlers.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Stats invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) Stats(ctx context.Context) (Stats, error) {
	m.mu.Lock()
	m.StatsCalls++
	m.mu.Unlock()
	if m.StatsFn == nil {
		return Stats{}, ErrMockNotImplemented
	}
	return m.StatsFn(ctx)
}

// Burndown invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) Burndown(ctx context.Context) (Burndown, error) {
	m.mu.Lock()
	m.BurndownCalls++
	m.mu.Unlock()
	if m.BurndownFn == nil {
		return Burndown{}, ErrMockNotImplemented
	}
	return m.BurndownFn(ctx)
}

// Velocity invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockClient) Velocity(ctx context.Context) (Velocity, error) {
	m.mu.Lock()
	m.VelocityCalls++
	m.mu.Unlock()
	if m.VelocityFn == nil {
		return Velocity{}, ErrMockNotImplemented
	}
	return m.VelocityFn(ctx)
}

var _ Client = (*MockClient)(nil)
