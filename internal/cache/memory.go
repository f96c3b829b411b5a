package cache

import (
	"context"
	"sync"
)

// MemoryBackend keeps entries in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]Entry)}
}

func (m *MemoryBackend) Load(_ context.Context, key string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok {
		return Entry{}, ErrMiss
	}
	return e, nil
}

func (m *MemoryBackend) Store(_ context.Context, key string, e Entry) error {
	data := make([]byte, len(e.Data))
	copy(data, e.Data)
	e.Data = data

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	return nil
}
