package favorites

import (
	"context"
	"sync"
)

// MemStore keeps per-visitor sets in memory. Used in tests and as a
// throwaway dev backend.
type MemStore struct {
	mu sync.RWMutex
	m  map[string][]int
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[string][]int{}}
}

func (s *MemStore) Load(_ context.Context, visitor string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.m[visitor]
	out := make([]int, len(ids))
	copy(out, ids)
	return out, nil
}

func (s *MemStore) Toggle(_ context.Context, visitor string, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]int, 0, len(s.m[visitor])+1)
	removed := false
	for _, v := range s.m[visitor] {
		if v == id {
			removed = true
			continue
		}
		next = append(next, v)
	}
	if !removed {
		next = append(next, id)
	}

	s.m[visitor] = next
	return !removed, nil
}

func (s *MemStore) IsFavorite(_ context.Context, visitor string, id int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.m[visitor] {
		if v == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemStore) Ping(_ context.Context) error { return nil }
