// Package slot provides durable key/value slots that outlive the process.
// The school store keeps its snapshot and the cached reconstruction script
// in slots.
package slot

import (
	"context"
	"sync"
)

// Store is a durable keyed byte store
type Store interface {
	// Get returns the value under key. ok is false when the key was never set.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set replaces the value under key
	Set(ctx context.Context, key string, value []byte) error
}

// Memory is a Store that lives only as long as the process. Used in tests
// and when no storage path is configured.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores a copy of value
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)
	return nil
}
