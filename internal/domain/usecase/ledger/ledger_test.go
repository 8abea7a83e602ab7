package ledger

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	uport "github.com/LukeFost/defivalley-sub000/internal/domain/port/usecase"
	"github.com/LukeFost/defivalley-sub000/internal/testutil"
)

var farmer = common.HexToAddress("0x2222222222222222222222222222222222222222")

func newTestLedger(t *testing.T) (*Ledger, *testutil.FakeClock) {
	t.Helper()
	clock := testutil.NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewLedger(testutil.NewSeqIDs("rec"), clock, testutil.NewCapturingLogger()), clock
}

func plantPayload() entity.Payload {
	return entity.PlantPayload("lettuce", decimal.NewFromInt(10_000_000), 210_000)
}

func statusPtr(s entity.TransactionStatus) *entity.TransactionStatus { return &s }
func strPtr(s string) *string                                        { return &s }

func TestLedgerAdd(t *testing.T) {
	l, clock := newTestLedger(t)

	rec, err := l.Add(entity.KindPlantSeed, farmer, plantPayload())
	require.NoError(t, err)

	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, entity.StatusPreparing, rec.Status)
	assert.Equal(t, 0, rec.RetryCount)
	assert.Equal(t, clock.Now(), rec.CreatedAt)

	active, history := l.Counts()
	assert.Equal(t, 1, active)
	assert.Equal(t, 0, history)

	t.Run("invalid payload creates nothing", func(t *testing.T) {
		_, err := l.Add(entity.KindPlantSeed, farmer, entity.Payload{SeedTypeID: "lettuce"})
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)

		active, _ := l.Counts()
		assert.Equal(t, 1, active)
	})

	t.Run("newest first", func(t *testing.T) {
		rec2, err := l.Add(entity.KindClaimYield, farmer, entity.ClaimPayload(100_000))
		require.NoError(t, err)

		activeRecs := l.Active()
		require.Len(t, activeRecs, 2)
		assert.Equal(t, rec2.ID, activeRecs[0].ID)
		assert.Equal(t, rec.ID, activeRecs[1].ID)
	})
}

func TestLedgerUpdate(t *testing.T) {
	t.Run("advances status and bumps UpdatedAt", func(t *testing.T) {
		l, clock := newTestLedger(t)
		rec, err := l.Add(entity.KindPlantSeed, farmer, plantPayload())
		require.NoError(t, err)

		clock.Advance(2 * time.Second)
		ok := l.Update(rec.ID, uport.RecordPatch{Attempt: 0, Status: statusPtr(entity.StatusWalletConfirm)})
		require.True(t, ok)

		got, err := l.Get(rec.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusWalletConfirm, got.Status)
		assert.Equal(t, clock.Now(), got.UpdatedAt)
		assert.True(t, got.UpdatedAt.After(got.CreatedAt))
	})

	t.Run("unknown id is a silent no-op", func(t *testing.T) {
		l, _ := newTestLedger(t)
		ok := l.Update("missing", uport.RecordPatch{Attempt: 0, Status: statusPtr(entity.StatusWalletConfirm)})
		assert.False(t, ok)
	})

	t.Run("stale attempt is dropped", func(t *testing.T) {
		l, _ := newTestLedger(t)
		rec, err := l.Add(entity.KindPlantSeed, farmer, plantPayload())
		require.NoError(t, err)

		_, failed := l.Fail(rec.ID, 0, "network_error")
		require.True(t, failed)
		_, err = l.Retry(rec.ID)
		require.NoError(t, err)

		// A callback from attempt 0 arrives after the retry moved to attempt 1.
		ok := l.Update(rec.ID, uport.RecordPatch{Attempt: 0, Status: statusPtr(entity.StatusSagaPending)})
		assert.False(t, ok)

		got, err := l.Get(rec.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusPreparing, got.Status)
		assert.Equal(t, 1, got.RetryCount)
	})

	t.Run("terminal records reject patches", func(t *testing.T) {
		l, _ := newTestLedger(t)
		rec, err := l.Add(entity.KindPlantSeed, farmer, plantPayload())
		require.NoError(t, err)

		_, failed := l.Fail(rec.ID, 0, "reverted")
		require.True(t, failed)

		ok := l.Update(rec.ID, uport.RecordPatch{Attempt: 0, Status: statusPtr(entity.StatusArbitrumPending)})
		assert.False(t, ok)
	})

	t.Run("regressions are dropped", func(t *testing.T) {
		l, _ := newTestLedger(t)
		rec, err := l.Add(entity.KindPlantSeed, farmer, plantPayload())
		require.NoError(t, err)

		require.True(t, l.Update(rec.ID, uport.RecordPatch{Attempt: 0, Status: statusPtr(entity.StatusAxelarProcessing)}))
		ok := l.Update(rec.ID, uport.RecordPatch{Attempt: 0, Status: statusPtr(entity.StatusSagaPending)})
		assert.False(t, ok)

		got, err := l.Get(rec.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusAxelarProcessing, got.Status)
	})

	t.Run("note and eta merge without a status", func(t *testing.T) {
		l, clock := newTestLedger(t)
		rec, err := l.Add(entity.KindPlantSeed, farmer, plantPayload())
		require.NoError(t, err)

		eta := clock.Now().Add(90 * time.Second)
		ok := l.Update(rec.ID, uport.RecordPatch{
			Attempt:               0,
			Note:                  strPtr("confirmation pending"),
			EstimatedCompletionAt: &eta,
		})
		require.True(t, ok)

		got, err := l.Get(rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "confirmation pending", got.Note)
		require.NotNil(t, got.EstimatedCompletionAt)
		assert.Equal(t, eta, *got.EstimatedCompletionAt)
		assert.Equal(t, entity.StatusPreparing, got.Status)
	})
}

func TestLedgerAppendChainRef(t *testing.T) {
	l, _ := newTestLedger(t)
	rec, err := l.Add(entity.KindHarvestSeed, farmer, entity.HarvestPayload("seed-1", 180_000))
	require.NoError(t, err)

	hash := common.HexToHash("0xdead")
	require.True(t, l.AppendChainRef(rec.ID, 0, entity.ChainSaga, hash))
	assert.False(t, l.AppendChainRef(rec.ID, 3, entity.ChainSaga, hash), "stale attempt")
	assert.False(t, l.AppendChainRef("missing", 0, entity.ChainSaga, hash))

	got, err := l.Get(rec.ID)
	require.NoError(t, err)
	require.Len(t, got.ChainRefs, 1)
	assert.Equal(t, hash, got.ChainRefs[0].TxHash)

	_, failed := l.Fail(rec.ID, 0, "network_error")
	require.True(t, failed)
	assert.False(t, l.AppendChainRef(rec.ID, 0, entity.ChainSaga, hash), "terminal record")
}

func TestLedgerComplete(t *testing.T) {
	l, _ := newTestLedger(t)
	rec, err := l.Add(entity.KindPlantSeed, farmer, plantPayload())
	require.NoError(t, err)

	done, ok := l.Complete(rec.ID, 0)
	require.True(t, ok)
	assert.Equal(t, entity.StatusCompleted, done.Status)

	active, history := l.Counts()
	assert.Equal(t, 0, active)
	assert.Equal(t, 1, history)

	recs := l.History()
	require.Len(t, recs, 1)
	assert.Equal(t, rec.ID, recs[0].ID)

	_, ok = l.Complete(rec.ID, 0)
	assert.False(t, ok, "double completion is a no-op")

	t.Run("stale attempt cannot complete", func(t *testing.T) {
		rec2, err := l.Add(entity.KindPlantSeed, farmer, plantPayload())
		require.NoError(t, err)

		_, ok := l.Complete(rec2.ID, 7)
		assert.False(t, ok)

		got, err := l.Get(rec2.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusPreparing, got.Status)
	})
}

func TestLedgerHistoryCap(t *testing.T) {
	l, _ := newTestLedger(t)

	var ids []string
	for i := 0; i < HistoryCap+1; i++ {
		rec, err := l.Add(entity.KindPlantSeed, farmer, plantPayload())
		require.NoError(t, err)
		ids = append(ids, rec.ID)
		_, ok := l.Complete(rec.ID, 0)
		require.True(t, ok)
	}

	history := l.History()
	require.Len(t, history, HistoryCap)

	// Newest completion is at the head, the very first completion fell off.
	assert.Equal(t, ids[len(ids)-1], history[0].ID)
	assert.Equal(t, ids[1], history[len(history)-1].ID)
	_, err := l.Get(ids[0])
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)
}

func TestLedgerFailAndRetry(t *testing.T) {
	l, _ := newTestLedger(t)
	rec, err := l.Add(entity.KindPlantSeed, farmer, plantPayload())
	require.NoError(t, err)

	hash := common.HexToHash("0xbeef")
	require.True(t, l.AppendChainRef(rec.ID, 0, entity.ChainSaga, hash))

	failed, ok := l.Fail(rec.ID, 0, "network_error")
	require.True(t, ok)
	assert.Equal(t, entity.StatusFailed, failed.Status)
	assert.Equal(t, "network_error", failed.FailureReason)

	active, history := l.Counts()
	assert.Equal(t, 1, active, "failed records stay active")
	assert.Equal(t, 0, history)

	retried, err := l.Retry(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, retried.ID, "retry reuses the record, no new id")
	assert.Equal(t, entity.StatusPreparing, retried.Status)
	assert.Equal(t, 1, retried.RetryCount)
	assert.Empty(t, retried.FailureReason)
	require.Len(t, retried.ChainRefs, 1, "refs from the failed attempt survive")
	assert.Equal(t, 0, retried.ChainRefs[0].Attempt)

	t.Run("only failed records retry", func(t *testing.T) {
		_, err := l.Retry(rec.ID)
		assert.ErrorIs(t, err, errs.ErrRecordNotRetryable)
	})

	t.Run("completed records refuse retry", func(t *testing.T) {
		done, err := l.Add(entity.KindClaimYield, farmer, entity.ClaimPayload(0))
		require.NoError(t, err)
		_, ok := l.Complete(done.ID, 0)
		require.True(t, ok)

		_, err = l.Retry(done.ID)
		assert.ErrorIs(t, err, errs.ErrRecordNotRetryable)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := l.Retry("missing")
		assert.ErrorIs(t, err, errs.ErrRecordNotFound)
	})
}

func TestLedgerClearCompleted(t *testing.T) {
	l, _ := newTestLedger(t)

	// One completed, one failed, one still moving.
	done, err := l.Add(entity.KindPlantSeed, farmer, plantPayload())
	require.NoError(t, err)
	_, ok := l.Complete(done.ID, 0)
	require.True(t, ok)

	broken, err := l.Add(entity.KindHarvestSeed, farmer, entity.HarvestPayload("seed-9", 0))
	require.NoError(t, err)
	_, ok = l.Fail(broken.ID, 0, "reverted")
	require.True(t, ok)

	moving, err := l.Add(entity.KindClaimYield, farmer, entity.ClaimPayload(0))
	require.NoError(t, err)

	swept := l.ClearCompleted()
	require.Len(t, swept, 2)

	sweptIDs := map[string]bool{}
	for _, rec := range swept {
		sweptIDs[rec.ID] = true
	}
	assert.True(t, sweptIDs[done.ID])
	assert.True(t, sweptIDs[broken.ID])

	active, history := l.Counts()
	assert.Equal(t, 1, active)
	assert.Equal(t, 0, history)

	got, err := l.Get(moving.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPreparing, got.Status)
}

func TestLedgerGetReturnsCopies(t *testing.T) {
	l, _ := newTestLedger(t)
	rec, err := l.Add(entity.KindPlantSeed, farmer, plantPayload())
	require.NoError(t, err)

	got, err := l.Get(rec.ID)
	require.NoError(t, err)
	got.Status = entity.StatusFailed
	got.FailureReason = "mutated from outside"

	again, err := l.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPreparing, again.Status)
	assert.Empty(t, again.FailureReason)
}

func TestLedgerConcurrentRecordsAreIndependent(t *testing.T) {
	l, _ := newTestLedger(t)

	const workers = 8
	ids := make([]string, workers)
	for i := range ids {
		rec, err := l.Add(entity.KindHarvestSeed, farmer, entity.HarvestPayload(fmt.Sprintf("seed-%d", i), 0))
		require.NoError(t, err)
		ids[i] = rec.ID
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			l.Update(id, uport.RecordPatch{Attempt: 0, Status: statusPtr(entity.StatusWalletConfirm)})
			l.AppendChainRef(id, 0, entity.ChainSaga, common.BytesToHash([]byte{byte(i)}))
			l.Update(id, uport.RecordPatch{Attempt: 0, Status: statusPtr(entity.StatusSagaPending)})
			if i%2 == 0 {
				l.Complete(id, 0)
			} else {
				l.Fail(id, 0, "network_error")
			}
		}(i, id)
	}
	wg.Wait()

	active, history := l.Counts()
	assert.Equal(t, workers/2, active)
	assert.Equal(t, workers/2, history)

	for i, id := range ids {
		rec, err := l.Get(id)
		require.NoError(t, err)
		if i%2 == 0 {
			assert.Equal(t, entity.StatusCompleted, rec.Status)
		} else {
			assert.Equal(t, entity.StatusFailed, rec.Status)
		}
		assert.Len(t, rec.ChainRefs, 1)
	}
}
