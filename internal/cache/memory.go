package cache

import (
	"context"
	"sync"
)

// Memory is an in-process Cache for development and testing.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string

	// Gets counts successful lookups plus misses, for cache-behavior tests.
	gets int
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	val, ok := m.data[key]
	return val, ok
}

func (m *Memory) Set(ctx context.Context, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *Memory) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) FlushAll(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
}

func (m *Memory) Close() error { return nil }

// Len reports the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
