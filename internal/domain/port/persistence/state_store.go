package persistence

import "context"

// StateStore is a small key-value store for ledger snapshots. Implementations
// range from an in-memory map to badger or redis; the ledger never sees which
// one is behind the port.
type StateStore interface {
	// Get returns the value under key, or ErrStateNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes the value under key, overwriting any previous value
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
	// Close releases the underlying resources
	Close() error
}
