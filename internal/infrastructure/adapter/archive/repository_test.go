package archive

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

func TestArchiveRowRoundTrip(t *testing.T) {
	repo := NewRepository(nil, testutil.NewCapturingLogger())

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	eta := created.Add(20 * time.Minute)
	record := &entity.TransactionRecord{
		ID:        "rec-1",
		Kind:      entity.KindPlantSeed,
		Status:    entity.StatusCompleted,
		Initiator: common.HexToAddress("0x5555555555555555555555555555555555555555"),
		Payload: entity.Payload{
			SeedTypeID:  "pumpkin",
			Amount:      decimal.RequireFromString("340282366920938463463374607431768211456"), // 2^128
			GasEstimate: 250_000,
		},
		ChainRefs: []entity.ChainReference{
			{
				Chain:      entity.ChainSaga,
				TxHash:     common.HexToHash("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
				Attempt:    1,
				ObservedAt: created.Add(time.Second),
			},
			{
				Chain:      entity.ChainArbitrum,
				TxHash:     common.HexToHash("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
				Attempt:    1,
				ObservedAt: created.Add(25 * time.Minute),
			},
		},
		CreatedAt:             created,
		UpdatedAt:             created.Add(26 * time.Minute),
		EstimatedCompletionAt: &eta,
		Note:                  "slow bridge day",
		RetryCount:            1,
	}

	row, err := repo.entityToModel(record)
	require.NoError(t, err)
	assert.Equal(t, "rec-1", row.RecordID)
	assert.Equal(t, "plant_seed", row.Kind)
	assert.Equal(t, "340282366920938463463374607431768211456", row.Amount)

	back, err := repo.modelToEntity(&row)
	require.NoError(t, err)

	assert.Equal(t, record.ID, back.ID)
	assert.Equal(t, record.Kind, back.Kind)
	assert.Equal(t, record.Status, back.Status)
	assert.Equal(t, record.Initiator, back.Initiator)
	assert.Equal(t, record.Payload.SeedTypeID, back.Payload.SeedTypeID)
	assert.Equal(t, record.Payload.Amount.String(), back.Payload.Amount.String(),
		"amounts above 64 bits must survive the archive")
	assert.Equal(t, record.Payload.GasEstimate, back.Payload.GasEstimate)
	assert.Equal(t, record.ChainRefs, back.ChainRefs)
	assert.Equal(t, record.Note, back.Note)
	assert.Equal(t, record.RetryCount, back.RetryCount)
	require.NotNil(t, back.EstimatedCompletionAt)
	assert.True(t, eta.Equal(*back.EstimatedCompletionAt))
}

func TestArchiveRowWithoutRefs(t *testing.T) {
	repo := NewRepository(nil, testutil.NewCapturingLogger())

	back, err := repo.modelToEntity(&ArchivedRecord{
		RecordID:  "rec-2",
		Kind:      "claim_yield",
		Status:    "completed",
		Initiator: "0x5555555555555555555555555555555555555555",
		Amount:    "0",
	})
	require.NoError(t, err)
	assert.Empty(t, back.ChainRefs)
}

func TestArchiveRowRejectsUnknownEnums(t *testing.T) {
	repo := NewRepository(nil, testutil.NewCapturingLogger())

	tests := []struct {
		name string
		row  ArchivedRecord
	}{
		{
			name: "unknown kind",
			row:  ArchivedRecord{RecordID: "r", Kind: "mystery", Status: "completed", Amount: "0"},
		},
		{
			name: "unknown status",
			row:  ArchivedRecord{RecordID: "r", Kind: "plant_seed", Status: "done", Amount: "0"},
		},
		{
			name: "garbage amount",
			row:  ArchivedRecord{RecordID: "r", Kind: "plant_seed", Status: "completed", Amount: "lots"},
		},
		{
			name: "garbage refs",
			row:  ArchivedRecord{RecordID: "r", Kind: "plant_seed", Status: "completed", Amount: "0", ChainRefs: "{"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.modelToEntity(&tt.row)
			assert.Error(t, err)
		})
	}
}
