package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
)

func TestNewSeedCatalog(t *testing.T) {
	valid := SeedType{
		ID:             "lettuce",
		Name:           "Lettuce",
		MinDeposit:     decimal.NewFromInt(10_000_000),
		GrowthDuration: 6 * time.Hour,
		YieldRateBps:   300,
	}

	t.Run("valid catalog", func(t *testing.T) {
		catalog, err := NewSeedCatalog([]SeedType{valid})
		require.NoError(t, err)

		st, ok := catalog.Lookup("lettuce")
		require.True(t, ok)
		assert.Equal(t, "Lettuce", st.Name)

		_, ok = catalog.Lookup("kale")
		assert.False(t, ok)
	})

	t.Run("empty catalog", func(t *testing.T) {
		_, err := NewSeedCatalog(nil)
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := NewSeedCatalog([]SeedType{valid, valid})
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("non-positive minimum", func(t *testing.T) {
		bad := valid
		bad.MinDeposit = decimal.Zero
		_, err := NewSeedCatalog([]SeedType{bad})
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("fractional minimum", func(t *testing.T) {
		bad := valid
		bad.MinDeposit = decimal.RequireFromString("10.5")
		_, err := NewSeedCatalog([]SeedType{bad})
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("zero growth duration", func(t *testing.T) {
		bad := valid
		bad.ID = "instant"
		bad.GrowthDuration = 0
		_, err := NewSeedCatalog([]SeedType{bad})
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestDefaultSeedCatalog(t *testing.T) {
	catalog := DefaultSeedCatalog()
	list := catalog.List()
	require.Len(t, list, 3)

	// Registration order is stable for the UI.
	assert.Equal(t, "lettuce", list[0].ID)
	assert.Equal(t, "corn", list[1].ID)
	assert.Equal(t, "pumpkin", list[2].ID)

	lettuce, ok := catalog.Lookup("lettuce")
	require.True(t, ok)
	assert.Equal(t, "10000000", lettuce.MinDeposit.String())
}

func TestOptimisticSeedPosition(t *testing.T) {
	clock := testClock()
	pos := NewOptimisticSeedPosition("pos-1", "rec-1", testFarmer, "corn", decimal.NewFromInt(50_000_000), clock)

	assert.Equal(t, PositionPending, pos.State)
	assert.Equal(t, "rec-1", pos.RecordID)
	assert.Equal(t, clock.now, pos.PlantedAt)

	pos.Confirm(clock)
	assert.Equal(t, PositionConfirmed, pos.State)

	pos.MarkStale(clock)
	assert.Equal(t, PositionStale, pos.State)

	pos.Reinstate(clock)
	assert.Equal(t, PositionPending, pos.State)
}

func TestNotificationExpired(t *testing.T) {
	clock := testClock()
	created := clock.Now()

	toast := Notification{
		ID:        "n-1",
		Level:     NotificationInfo,
		CreatedAt: created,
		ExpiresAt: created.Add(DefaultNotificationTTL),
	}
	assert.False(t, toast.Expired(created))
	assert.False(t, toast.Expired(created.Add(4*time.Second)))
	assert.True(t, toast.Expired(created.Add(5*time.Second)))

	sticky := Notification{ID: "n-2", Level: NotificationError, Persistent: true, CreatedAt: created}
	assert.False(t, sticky.Expired(created.Add(24*time.Hour)))
}
