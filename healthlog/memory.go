package healthlog

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory health log for tests and ephemeral runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[logKey][]Entry // oldest first per key
}

type logKey struct {
	projectKey  string
	endpointKey string
}

// NewMemoryStore creates a new in-memory health log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[logKey][]Entry)}
}

// Append records one probe outcome.
func (s *MemoryStore) Append(_ context.Context, entry Entry) error {
	if entry.ProjectKey == "" || entry.EndpointKey == "" {
		return ErrMissingKey
	}

	key := logKey{entry.ProjectKey, entry.EndpointKey}
	s.mu.Lock()
	s.entries[key] = append(s.entries[key], entry)
	s.mu.Unlock()
	return nil
}

// Recent returns up to limit entries for the pair, newest first.
func (s *MemoryStore) Recent(_ context.Context, projectKey, endpointKey string, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.entries[logKey{projectKey, endpointKey}]
	if len(all) == 0 {
		return nil, nil
	}

	n := limit
	if n > len(all) {
		n = len(all)
	}

	out := make([]Entry, 0, n)
	for i := len(all) - 1; i >= len(all)-n; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
