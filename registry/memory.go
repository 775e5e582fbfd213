package registry

import (
	"context"
	"sync"
	"time"
)

// MemoryRegistry is an in-memory endpoint registry for tests and ephemeral
// runs. List preserves insertion order.
type MemoryRegistry struct {
	mu        sync.RWMutex
	endpoints map[string]Endpoint
	order     []string
	now       func() time.Time
}

// NewMemoryRegistry creates a new in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		endpoints: make(map[string]Endpoint),
		now:       time.Now,
	}
}

// List returns all endpoints in insertion order.
func (r *MemoryRegistry) List(_ context.Context) ([]Endpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Endpoint, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.endpoints[key])
	}
	return out, nil
}

// Get returns the endpoint with the given key.
func (r *MemoryRegistry) Get(_ context.Context, key string) (*Endpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ep, ok := r.endpoints[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &ep, nil
}

// Create adds a new endpoint, generating a key when none is set.
func (r *MemoryRegistry) Create(_ context.Context, endpoint Endpoint) (*Endpoint, error) {
	if err := endpoint.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if endpoint.Key == "" {
		endpoint.Key = NewKey(r.now())
	}
	if _, exists := r.endpoints[endpoint.Key]; exists {
		return nil, ErrDuplicateKey
	}

	r.endpoints[endpoint.Key] = endpoint
	r.order = append(r.order, endpoint.Key)
	return &endpoint, nil
}

// Update replaces the definition for an existing key.
func (r *MemoryRegistry) Update(_ context.Context, endpoint Endpoint) error {
	if err := endpoint.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.endpoints[endpoint.Key]; !ok {
		return ErrNotFound
	}
	r.endpoints[endpoint.Key] = endpoint
	return nil
}

// Delete removes the endpoint with the given key.
func (r *MemoryRegistry) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.endpoints[key]; !ok {
		return ErrNotFound
	}
	delete(r.endpoints, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ensure MemoryRegistry implements Registry
var _ Registry = (*MemoryRegistry)(nil)
