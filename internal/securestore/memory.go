package securestore

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in process memory. Used by tests and as a
// fallback when no store path is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string

	// FailAll makes every operation behave like a broken medium. Tests use
	// it to check that callers survive storage failures.
	FailAll bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]string{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailAll {
		return ""
	}
	return s.entries[key]
}

func (s *MemoryStore) Set(_ context.Context, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return
	}
	s.entries[key] = value
}

func (s *MemoryStore) Delete(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return
	}
	delete(s.entries, key)
}
