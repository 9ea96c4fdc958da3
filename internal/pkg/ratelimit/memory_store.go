package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps timestamp sequences in process memory. Best effort: no
// persistence, no cross-process sharing.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]time.Time)}
}

func (s *MemoryStore) PruneAndCount(ctx context.Context, key string, cutoff time.Time) (int, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	stamps := s.entries[key]
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(s.entries, key)
		return 0, nil
	}
	s.entries[key] = kept
	return len(kept), nil
}

func (s *MemoryStore) Append(ctx context.Context, key string, at time.Time) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = append(s.entries[key], at)
	return nil
}
