package overlay

import (
	"context"
	"sync"
)

// Backend persists named JSON documents. Each name holds one whole
// namespace; Save replaces it.
type Backend interface {
	Load(ctx context.Context, name string) ([]byte, bool, error)
	Save(ctx context.Context, name string, data []byte) error
	Close() error
}

// MemoryBackend keeps documents in process memory. Reopening a Store over
// the same MemoryBackend behaves like a restart.
type MemoryBackend struct {
	mu   sync.Mutex
	docs map[string][]byte
	// SaveErr, when set, is returned by every Save.
	SaveErr error
	// failNames makes Save fail only for the listed names.
	failNames map[string]error
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

// Load returns a copy of the stored document.
func (m *MemoryBackend) Load(_ context.Context, name string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[name]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// Save stores a copy of data under name.
func (m *MemoryBackend) Save(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if err := m.failNames[name]; err != nil {
		return err
	}
	m.docs[name] = append([]byte(nil), data...)
	return nil
}

// FailSaves makes every later Save of name return err. A nil err clears it.
func (m *MemoryBackend) FailSaves(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNames == nil {
		m.failNames = make(map[string]error)
	}
	if err == nil {
		delete(m.failNames, name)
		return
	}
	m.failNames[name] = err
}

// Close is a no-op.
func (m *MemoryBackend) Close() error {
	return nil
}
