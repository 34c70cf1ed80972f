package cache

import (
	"context"
	"sync"

	"github.com/raysh454/go2web/internal/model"
)

// MemoryStore is a process-local Store. Nothing survives a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]model.CacheEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]model.CacheEntry)}
}

func (m *MemoryStore) Lookup(_ context.Context, url string) (*model.CacheEntry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[Key(url)]
	if !ok {
		return nil, false, nil
	}
	return &e, true, nil
}

func (m *MemoryStore) Store(_ context.Context, url string, entry model.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[Key(url)] = entry
	return nil
}

// Len reports the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryStore) Close() error { return nil }
