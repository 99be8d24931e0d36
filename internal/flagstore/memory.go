package flagstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps flags in a map. Flags are lost when the process exits.
type MemoryStore struct {
	mu    sync.RWMutex
	flags map[string]struct{}
}

// Ensure MemoryStore implements Store interface.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{flags: make(map[string]struct{})}
}

// Set flags path.
func (m *MemoryStore) Set(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[path] = struct{}{}
	return nil
}

// Clear removes the flag from path.
func (m *MemoryStore) Clear(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flags, path)
	return nil
}

// Query reports whether path is flagged.
func (m *MemoryStore) Query(_ context.Context, path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.flags[path]
	return ok, nil
}

// Paths returns the flagged paths in sorted order.
func (m *MemoryStore) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.flags))
	for p := range m.flags {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
