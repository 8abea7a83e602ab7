package field

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	"github.com/LukeFost/defivalley-sub000/internal/testutil"
)

var owner = common.HexToAddress("0x3333333333333333333333333333333333333333")

func newTestField(t *testing.T) *Field {
	t.Helper()
	clock := testutil.NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewField(testutil.NewSeqIDs("pos"), clock, testutil.NewCapturingLogger())
}

func TestFieldPlantAndLifecycle(t *testing.T) {
	f := newTestField(t)

	pos := f.Plant("rec-1", owner, "corn", decimal.NewFromInt(50_000_000))
	assert.Equal(t, "pos-1", pos.ID)
	assert.Equal(t, entity.PositionPending, pos.State)

	require.True(t, f.Confirm("rec-1"))
	got, ok := f.PositionFor("rec-1")
	require.True(t, ok)
	assert.Equal(t, entity.PositionConfirmed, got.State)

	require.True(t, f.MarkStale("rec-1"))
	got, _ = f.PositionFor("rec-1")
	assert.Equal(t, entity.PositionStale, got.State)

	require.True(t, f.Reinstate("rec-1"))
	got, _ = f.PositionFor("rec-1")
	assert.Equal(t, entity.PositionPending, got.State)
}

func TestFieldUnknownRecord(t *testing.T) {
	f := newTestField(t)

	assert.False(t, f.Confirm("missing"))
	assert.False(t, f.MarkStale("missing"))
	assert.False(t, f.Reinstate("missing"))

	_, ok := f.PositionFor("missing")
	assert.False(t, ok)
}

func TestFieldPositionsNewestFirst(t *testing.T) {
	f := newTestField(t)

	f.Plant("rec-1", owner, "lettuce", decimal.NewFromInt(10_000_000))
	f.Plant("rec-2", owner, "corn", decimal.NewFromInt(50_000_000))

	positions := f.Positions()
	require.Len(t, positions, 2)
	assert.Equal(t, "rec-2", positions[0].RecordID)
	assert.Equal(t, "rec-1", positions[1].RecordID)
}

func TestFieldReturnsCopies(t *testing.T) {
	f := newTestField(t)
	f.Plant("rec-1", owner, "lettuce", decimal.NewFromInt(10_000_000))

	got, ok := f.PositionFor("rec-1")
	require.True(t, ok)
	got.State = entity.PositionStale

	again, _ := f.PositionFor("rec-1")
	assert.Equal(t, entity.PositionPending, again.State)
}
