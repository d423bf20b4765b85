package streak

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counts: make(map[string]int)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key], nil
}

func (m *MemoryStore) Record(_ context.Context, key string, win bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if win {
		m.counts[key] = 0
	} else {
		m.counts[key]++
	}
	return m.counts[key], nil
}

func (m *MemoryStore) Close() error { return nil }
