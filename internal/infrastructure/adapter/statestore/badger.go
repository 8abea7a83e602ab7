package statestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/persistence"
)

// BadgerStore is a durable StateStore on a local badger database
type BadgerStore struct {
	db     *badger.DB
	logger core.Logger
}

// NewBadgerStore opens the badger database at path. An empty path opens an
// in-memory database, which is what tests use.
func NewBadgerStore(path string, logger core.Logger) (persistence.StateStore, error) {
	var opt badger.Options
	if path == "" {
		opt = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opt = badger.DefaultOptions(path)
	}
	opt = opt.WithLogger(nil)

	db, err := badger.Open(opt)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger at %q: %v", errs.ErrStateStore, path, err)
	}
	logger.Info("badger state store opened", map[string]any{"path": path, "in_memory": path == ""})
	return &BadgerStore{db: db, logger: logger}, nil
}

// Get returns the value under key, or ErrStateNotFound
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, fmt.Errorf("%w: %s", errs.ErrStateNotFound, key)
	default:
		return nil, fmt.Errorf("%w: get %s: %v", errs.ErrStateStore, key, err)
	}
}

// Set writes the value under key, overwriting any previous value
func (s *BadgerStore) Set(ctx context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("%w: set %s: %v", errs.ErrStateStore, key, err)
	}
	return nil
}

// Delete removes the key; deleting a missing key is not an error
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", errs.ErrStateStore, key, err)
	}
	return nil
}

// Close releases the underlying resources
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
