package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
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

func TestSnapshotRoundTrip(t *testing.T) {
	l, clock := newTestLedger(t)

	// An amount far beyond 64-bit range must survive untouched.
	hugeAmount := decimal.RequireFromString(strings.Repeat("9", 79))
	big, err := l.Add(entity.KindPlantSeed, farmer, entity.PlantPayload("pumpkin", hugeAmount, 300_000))
	require.NoError(t, err)
	require.True(t, l.AppendChainRef(big.ID, 0, entity.ChainSaga,
		common.HexToHash("0xaaaa000000000000000000000000000000000000000000000000000000000001")))

	eta := clock.Now().Add(90 * time.Second)
	require.True(t, l.Update(big.ID, uport.RecordPatch{
		Attempt:               0,
		Status:                statusPtr(entity.StatusSagaPending),
		Note:                  strPtr("confirmation pending"),
		EstimatedCompletionAt: &eta,
	}))

	failedRec, err := l.Add(entity.KindHarvestSeed, farmer, entity.HarvestPayload("seed-3", 150_000))
	require.NoError(t, err)
	_, ok := l.Fail(failedRec.ID, 0, "user_rejected")
	require.True(t, ok)
	_, err = l.Retry(failedRec.ID)
	require.NoError(t, err)

	doneRec, err := l.Add(entity.KindClaimYield, farmer, entity.ClaimPayload(120_000))
	require.NoError(t, err)
	_, ok = l.Complete(doneRec.ID, 0)
	require.True(t, ok)

	data, err := l.Snapshot()
	require.NoError(t, err)

	restored := NewLedger(testutil.NewSeqIDs("other"), clock, testutil.NewCapturingLogger())
	require.NoError(t, restored.Restore(data))

	activeBefore, historyBefore := l.Counts()
	activeAfter, historyAfter := restored.Counts()
	assert.Equal(t, activeBefore, activeAfter)
	assert.Equal(t, historyBefore, historyAfter)

	gotBig, err := restored.Get(big.ID)
	require.NoError(t, err)
	assert.True(t, hugeAmount.Equal(gotBig.Payload.Amount),
		"expected %s, got %s", hugeAmount.String(), gotBig.Payload.Amount.String())
	assert.Equal(t, entity.StatusSagaPending, gotBig.Status)
	assert.Equal(t, "confirmation pending", gotBig.Note)
	require.NotNil(t, gotBig.EstimatedCompletionAt)
	assert.True(t, eta.Equal(*gotBig.EstimatedCompletionAt))
	require.Len(t, gotBig.ChainRefs, 1)
	assert.Equal(t, entity.ChainSaga, gotBig.ChainRefs[0].Chain)
	assert.Equal(t, farmer, gotBig.Initiator)

	gotRetried, err := restored.Get(failedRec.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotRetried.RetryCount)
	assert.Equal(t, entity.StatusPreparing, gotRetried.Status)

	gotDone, err := restored.Get(doneRec.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, gotDone.Status)

	// Ordering survives: active newest first.
	activeRecs := restored.Active()
	require.Len(t, activeRecs, 2)
	assert.Equal(t, failedRec.ID, activeRecs[0].ID)
	assert.Equal(t, big.ID, activeRecs[1].ID)
}

func TestSnapshotOfEmptyLedger(t *testing.T) {
	l, clock := newTestLedger(t)

	data, err := l.Snapshot()
	require.NoError(t, err)

	restored := NewLedger(testutil.NewSeqIDs("other"), clock, testutil.NewCapturingLogger())
	require.NoError(t, restored.Restore(data))

	active, history := restored.Counts()
	assert.Equal(t, 0, active)
	assert.Equal(t, 0, history)
}

func TestRestoreRejectsGarbage(t *testing.T) {
	l, _ := newTestLedger(t)

	err := l.Restore([]byte("not json"))
	assert.ErrorIs(t, err, errs.ErrStateStore)
}

func TestRestoreRejectsUnknownVersion(t *testing.T) {
	l, _ := newTestLedger(t)

	err := l.Restore([]byte(`{"version":99,"active":[],"history":[]}`))
	assert.ErrorIs(t, err, errs.ErrStateStore)
}

func TestRestoreRejectsUnknownStatus(t *testing.T) {
	l, _ := newTestLedger(t)

	payload := `{"version":1,"active":[{"id":"x","kind":"plant_seed","status":"germinating","initiator":"0x0","payload":{"amount":"1"},"createdAt":"2025-03-01T12:00:00Z","updatedAt":"2025-03-01T12:00:00Z","retryCount":0}],"history":[]}`
	err := l.Restore([]byte(payload))
	assert.ErrorIs(t, err, errs.ErrStateStore)
}

func TestRestoreTruncatesOversizedHistory(t *testing.T) {
	// A live ledger never exceeds the cap, but a snapshot written by a build
	// with a larger cap could. Restore must clamp instead of carrying the
	// excess forward.
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	state := snapshotState{Version: snapshotVersion}
	for i := 0; i < HistoryCap+5; i++ {
		state.History = append(state.History, snapshotRecord{
			ID:        fmt.Sprintf("old-%d", i),
			Kind:      string(entity.KindClaimYield),
			Status:    string(entity.StatusCompleted),
			Initiator: farmer.Hex(),
			Payload:   snapshotPayload{Amount: decimal.Zero},
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	data, err := json.Marshal(state)
	require.NoError(t, err)

	clock := testutil.NewFakeClock(now)
	restored := NewLedger(testutil.NewSeqIDs("other"), clock, testutil.NewCapturingLogger())
	require.NoError(t, restored.Restore(data))

	_, history := restored.Counts()
	assert.Equal(t, HistoryCap, history)

	// History is newest first, so the head survives and the tail is dropped.
	recs := restored.History()
	assert.Equal(t, "old-0", recs[0].ID)
	assert.Equal(t, fmt.Sprintf("old-%d", HistoryCap-1), recs[len(recs)-1].ID)
}
