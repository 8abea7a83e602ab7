package statestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/persistence"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/logger"
)

func TestStateStoreContract(t *testing.T) {
	stores := []struct {
		name string
		open func(t *testing.T) persistence.StateStore
	}{
		{
			name: "memory",
			open: func(t *testing.T) persistence.StateStore {
				return NewMemoryStore()
			},
		},
		{
			name: "badger in-memory",
			open: func(t *testing.T) persistence.StateStore {
				store, err := NewBadgerStore("", logger.NewNoopLogger())
				require.NoError(t, err)
				return store
			},
		},
	}

	for _, tt := range stores {
		t.Run(tt.name, func(t *testing.T) {
			store := tt.open(t)
			t.Cleanup(func() { _ = store.Close() })
			ctx := context.Background()

			_, err := store.Get(ctx, "ledger")
			assert.ErrorIs(t, err, errs.ErrStateNotFound)

			require.NoError(t, store.Set(ctx, "ledger", []byte("v1")))
			got, err := store.Get(ctx, "ledger")
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), got)

			require.NoError(t, store.Set(ctx, "ledger", []byte("v2")), "overwrite must succeed")
			got, err = store.Get(ctx, "ledger")
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), got)

			require.NoError(t, store.Delete(ctx, "ledger"))
			_, err = store.Get(ctx, "ledger")
			assert.ErrorIs(t, err, errs.ErrStateNotFound)

			assert.NoError(t, store.Delete(ctx, "never-set"), "deleting a missing key is not an error")
		})
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	buf := []byte("original")
	require.NoError(t, store.Set(ctx, "k", buf))
	buf[0] = 'X'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got, "store must not alias the caller's slice")

	got[0] = 'Y'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again, "returned slices must not alias the stored value")
}
