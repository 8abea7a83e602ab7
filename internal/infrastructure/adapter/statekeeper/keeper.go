package statekeeper

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/persistence"
	uport "github.com/LukeFost/defivalley-sub000/internal/domain/port/usecase"
)

// DefaultStateKey is where the ledger snapshot lives in the state store
const DefaultStateKey = "valley/ledger"

// Keeper wraps a RecordLedger with write-through persistence. Every applied
// mutation is followed by a snapshot save, and terminal records are forwarded
// to the archive when one is configured. Saving is best effort: the in-memory
// ledger stays authoritative and a failed save only earns a warning.
type Keeper struct {
	inner   uport.RecordLedger
	store   persistence.StateStore
	archive persistence.ArchiveRepository
	logger  core.Logger
	key     string

	ctx context.Context
	mu  sync.Mutex // pairs Snapshot with Set so saves cannot interleave
}

// NewKeeper wraps inner. archive may be nil when no archive is configured;
// ctx bounds every store and archive call the keeper makes.
func NewKeeper(
	ctx context.Context,
	inner uport.RecordLedger,
	store persistence.StateStore,
	archive persistence.ArchiveRepository,
	key string,
	logger core.Logger,
) *Keeper {
	if key == "" {
		key = DefaultStateKey
	}
	return &Keeper{
		inner:   inner,
		store:   store,
		archive: archive,
		logger:  logger,
		key:     key,
		ctx:     ctx,
	}
}

// Load restores the ledger from the last saved snapshot. A missing snapshot
// is a clean first start, not an error.
func (k *Keeper) Load() error {
	data, err := k.store.Get(k.ctx, k.key)
	if errors.Is(err, errs.ErrStateNotFound) {
		k.logger.Info("no saved ledger state, starting fresh", map[string]any{"key": k.key})
		return nil
	}
	if err != nil {
		return err
	}
	if err := k.inner.Restore(data); err != nil {
		return err
	}

	active, history := k.inner.Counts()
	k.logger.Info("ledger state restored", map[string]any{
		"key":     k.key,
		"active":  active,
		"history": history,
	})
	return nil
}

func (k *Keeper) save() {
	k.mu.Lock()
	defer k.mu.Unlock()

	data, err := k.inner.Snapshot()
	if err != nil {
		k.logger.Warn("ledger snapshot failed", map[string]any{"error": err.Error()})
		return
	}
	if err := k.store.Set(k.ctx, k.key, data); err != nil {
		k.logger.Warn("ledger snapshot save failed", map[string]any{
			"key":   k.key,
			"error": err.Error(),
		})
	}
}

func (k *Keeper) archiveRecord(rec *entity.TransactionRecord) {
	if k.archive == nil || rec == nil {
		return
	}
	if err := k.archive.SaveRecord(k.ctx, rec); err != nil {
		k.logger.Warn("record archive failed", map[string]any{
			"record_id": rec.ID,
			"error":     err.Error(),
		})
	}
}

// Add creates a record in the preparing phase and returns a copy of it
func (k *Keeper) Add(kind entity.TransactionKind, initiator common.Address, payload entity.Payload) (*entity.TransactionRecord, error) {
	rec, err := k.inner.Add(kind, initiator, payload)
	if err == nil {
		k.save()
	}
	return rec, err
}

// Update merges a patch into an active record
func (k *Keeper) Update(id string, patch uport.RecordPatch) bool {
	applied := k.inner.Update(id, patch)
	if applied {
		k.save()
	}
	return applied
}

// AppendChainRef adds an observed transaction hash for the given attempt
func (k *Keeper) AppendChainRef(id string, attempt int, chain entity.ChainName, txHash common.Hash) bool {
	applied := k.inner.AppendChainRef(id, attempt, chain, txHash)
	if applied {
		k.save()
	}
	return applied
}

// Complete finishes an active record, archives it and persists the move
func (k *Keeper) Complete(id string, attempt int) (*entity.TransactionRecord, bool) {
	rec, ok := k.inner.Complete(id, attempt)
	if ok {
		k.archiveRecord(rec)
		k.save()
	}
	return rec, ok
}

// Fail marks an active record failed. Failed records stay retryable and are
// archived only when they are eventually swept.
func (k *Keeper) Fail(id string, attempt int, reason string) (*entity.TransactionRecord, bool) {
	rec, ok := k.inner.Fail(id, attempt, reason)
	if ok {
		k.save()
	}
	return rec, ok
}

// Retry rewinds a failed record to preparing with a bumped attempt
func (k *Keeper) Retry(id string) (*entity.TransactionRecord, error) {
	rec, err := k.inner.Retry(id)
	if err == nil {
		k.save()
	}
	return rec, err
}

// ClearCompleted sweeps terminal records, archiving everything swept
func (k *Keeper) ClearCompleted() []*entity.TransactionRecord {
	swept := k.inner.ClearCompleted()
	for _, rec := range swept {
		k.archiveRecord(rec)
	}
	if len(swept) > 0 {
		k.save()
	}
	return swept
}

// Active returns copies of active records, newest first
func (k *Keeper) Active() []*entity.TransactionRecord {
	return k.inner.Active()
}

// History returns copies of completed records, newest first
func (k *Keeper) History() []*entity.TransactionRecord {
	return k.inner.History()
}

// Get returns a copy of a record from either partition
func (k *Keeper) Get(id string) (*entity.TransactionRecord, error) {
	return k.inner.Get(id)
}

// Counts returns the sizes of both partitions
func (k *Keeper) Counts() (int, int) {
	return k.inner.Counts()
}

// Snapshot serializes the full ledger state
func (k *Keeper) Snapshot() ([]byte, error) {
	return k.inner.Snapshot()
}

// Restore replaces the ledger state and persists the replacement
func (k *Keeper) Restore(data []byte) error {
	if err := k.inner.Restore(data); err != nil {
		return err
	}
	k.save()
	return nil
}
