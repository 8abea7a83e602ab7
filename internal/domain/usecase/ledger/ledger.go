package ledger

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
	uport "github.com/LukeFost/defivalley-sub000/internal/domain/port/usecase"
)

// HistoryCap bounds the in-memory history partition. Older completions fall
// off the end; the archive adapter keeps them if one is configured.
const HistoryCap = 50

// Ledger is the in-memory record store. Records live in exactly one of two
// partitions: active (still moving, or failed awaiting retry) and history
// (completed, newest first, capped). All methods are safe for concurrent use.
type Ledger struct {
	mu          sync.RWMutex
	active      map[string]*entity.TransactionRecord
	activeOrder []string // newest first
	history     []*entity.TransactionRecord

	ids          core.IDProvider
	timeProvider core.TimeProvider
	logger       core.Logger
}

// NewLedger creates an empty ledger
func NewLedger(ids core.IDProvider, timeProvider core.TimeProvider, logger core.Logger) *Ledger {
	return &Ledger{
		active:       make(map[string]*entity.TransactionRecord),
		ids:          ids,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Add creates a record in the preparing phase and returns a copy of it
func (l *Ledger) Add(kind entity.TransactionKind, initiator common.Address, payload entity.Payload) (*entity.TransactionRecord, error) {
	id := l.ids.NewID()
	rec, err := entity.NewTransactionRecord(id, kind, initiator, payload, l.timeProvider)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.active[rec.ID] = rec
	l.activeOrder = append([]string{rec.ID}, l.activeOrder...)
	l.mu.Unlock()

	l.logger.Debug("record added", map[string]any{
		"record_id": rec.ID,
		"kind":      string(rec.Kind),
	})
	return rec.Clone(), nil
}

// Update merges a patch into an active record. Stale, terminal, unknown and
// regressing updates are dropped without touching anything; late async
// callbacks are expected and harmless.
func (l *Ledger) Update(id string, patch uport.RecordPatch) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.active[id]
	if !ok {
		return false
	}
	if patch.Attempt != rec.RetryCount {
		l.logger.Debug("dropping stale patch", map[string]any{
			"record_id":     id,
			"patch_attempt": patch.Attempt,
			"attempt":       rec.RetryCount,
		})
		return false
	}
	if rec.Status.IsTerminal() {
		return false
	}

	if patch.Status != nil {
		route, err := entity.RouteFor(rec.Kind)
		if err != nil || !route.CanAdvance(rec.Status, *patch.Status) {
			return false
		}
		rec.Status = *patch.Status
	}
	if patch.Note != nil {
		rec.Note = *patch.Note
	}
	if patch.EstimatedCompletionAt != nil {
		eta := *patch.EstimatedCompletionAt
		rec.EstimatedCompletionAt = &eta
	}
	rec.UpdatedAt = l.timeProvider.Now()
	return true
}

// AppendChainRef adds an observed transaction hash for the given attempt
func (l *Ledger) AppendChainRef(id string, attempt int, chain entity.ChainName, txHash common.Hash) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.active[id]
	if !ok || attempt != rec.RetryCount || rec.Status.IsTerminal() {
		return false
	}
	rec.AppendChainRef(l.timeProvider, chain, txHash)
	return true
}

// Complete finishes an active record and moves it to the head of history,
// evicting the oldest completion beyond the cap
func (l *Ledger) Complete(id string, attempt int) (*entity.TransactionRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.active[id]
	if !ok || attempt != rec.RetryCount || rec.Status.IsTerminal() {
		return nil, false
	}

	rec.MarkCompleted(l.timeProvider)
	l.removeFromActiveLocked(id)
	l.history = append([]*entity.TransactionRecord{rec}, l.history...)
	if len(l.history) > HistoryCap {
		l.history = l.history[:HistoryCap]
	}
	return rec.Clone(), true
}

// Fail marks an active record failed. It stays active so the player can
// inspect and retry it.
func (l *Ledger) Fail(id string, attempt int, reason string) (*entity.TransactionRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.active[id]
	if !ok || attempt != rec.RetryCount || rec.Status.IsTerminal() {
		return nil, false
	}
	rec.MarkFailed(l.timeProvider, reason)
	return rec.Clone(), true
}

// Retry rewinds a failed record to preparing with a bumped attempt counter.
// Completed records are known but not retryable; only unknown ids are
// reported as missing.
func (l *Ledger) Retry(id string) (*entity.TransactionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.active[id]
	if !ok {
		for _, done := range l.history {
			if done.ID == id {
				return nil, errs.ErrRecordNotRetryable
			}
		}
		return nil, errs.NewRecordNotFoundError(id)
	}
	if !rec.IsRetryable() {
		return nil, errs.ErrRecordNotRetryable
	}
	rec.ResetForRetry(l.timeProvider)
	return rec.Clone(), nil
}

// ClearCompleted empties history and drops terminal records from the active
// set, returning everything swept
func (l *Ledger) ClearCompleted() []*entity.TransactionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	swept := make([]*entity.TransactionRecord, 0, len(l.history))
	for _, rec := range l.history {
		swept = append(swept, rec)
	}
	l.history = nil

	for _, id := range append([]string(nil), l.activeOrder...) {
		rec := l.active[id]
		if rec != nil && rec.Status.IsTerminal() {
			swept = append(swept, rec)
			l.removeFromActiveLocked(id)
		}
	}
	return swept
}

// Active returns copies of active records, newest first
func (l *Ledger) Active() []*entity.TransactionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*entity.TransactionRecord, 0, len(l.activeOrder))
	for _, id := range l.activeOrder {
		if rec, ok := l.active[id]; ok {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// History returns copies of completed records, newest first
func (l *Ledger) History() []*entity.TransactionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*entity.TransactionRecord, 0, len(l.history))
	for _, rec := range l.history {
		out = append(out, rec.Clone())
	}
	return out
}

// Get returns a copy of a record from either partition
func (l *Ledger) Get(id string) (*entity.TransactionRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if rec, ok := l.active[id]; ok {
		return rec.Clone(), nil
	}
	for _, rec := range l.history {
		if rec.ID == id {
			return rec.Clone(), nil
		}
	}
	return nil, errs.NewRecordNotFoundError(id)
}

// Counts returns the sizes of both partitions
func (l *Ledger) Counts() (int, int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.active), len(l.history)
}

// removeFromActiveLocked drops a record from the active partition. Callers
// must hold the write lock.
func (l *Ledger) removeFromActiveLocked(id string) {
	delete(l.active, id)
	for i, candidate := range l.activeOrder {
		if candidate == id {
			l.activeOrder = append(l.activeOrder[:i], l.activeOrder[i+1:]...)
			break
		}
	}
}
