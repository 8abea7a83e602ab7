package statestore

import (
	"context"
	"fmt"
	"sync"

	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/persistence"
)

// MemoryStore keeps state in a plain map. It is the fallback when no durable
// store is configured; state lives exactly as long as the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() persistence.StateStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Get returns the value under key, or ErrStateNotFound
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrStateNotFound, key)
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set writes the value under key, overwriting any previous value
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	s.values[key] = stored
	s.mu.Unlock()
	return nil
}

// Delete removes the key; deleting a missing key is not an error
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

// Close releases the underlying resources
func (s *MemoryStore) Close() error {
	return nil
}
