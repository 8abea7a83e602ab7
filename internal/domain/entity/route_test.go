package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
)

func TestRouteFor(t *testing.T) {
	t.Run("Plant crosses the bridge", func(t *testing.T) {
		route, err := RouteFor(KindPlantSeed)
		require.NoError(t, err)

		assert.Equal(t, ChainSaga, route.SourceChain)
		assert.Equal(t, ChainArbitrum, route.DestChain)
		assert.True(t, route.Bridged)
		assert.Equal(t, []TransactionStatus{
			StatusPreparing,
			StatusWalletConfirm,
			StatusSagaPending,
			StatusAxelarProcessing,
			StatusArbitrumPending,
			StatusCompleted,
		}, route.Phases)
	})

	t.Run("Claim skips the bridge", func(t *testing.T) {
		route, err := RouteFor(KindClaimYield)
		require.NoError(t, err)

		assert.Equal(t, ChainArbitrum, route.SourceChain)
		assert.False(t, route.Bridged)
		assert.Equal(t, []TransactionStatus{
			StatusPreparing,
			StatusWalletConfirm,
			StatusArbitrumPending,
			StatusCompleted,
		}, route.Phases)
	})

	t.Run("Unknown kind", func(t *testing.T) {
		_, err := RouteFor(TransactionKind("fertilize"))
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestRouteNextPhase(t *testing.T) {
	route, err := RouteFor(KindHarvestSeed)
	require.NoError(t, err)

	next, ok := route.NextPhase(StatusPreparing)
	require.True(t, ok)
	assert.Equal(t, StatusWalletConfirm, next)

	next, ok = route.NextPhase(StatusSagaPending)
	require.True(t, ok)
	assert.Equal(t, StatusAxelarProcessing, next)

	_, ok = route.NextPhase(StatusCompleted)
	assert.False(t, ok, "completed has no successor")

	_, ok = route.NextPhase(StatusFailed)
	assert.False(t, ok, "failed is outside the ordered path")
}

func TestRouteCanAdvance(t *testing.T) {
	plantRoute, err := RouteFor(KindPlantSeed)
	require.NoError(t, err)
	claimRoute, err := RouteFor(KindClaimYield)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		route    Route
		from     TransactionStatus
		to       TransactionStatus
		expected bool
	}{
		{"forward single step", plantRoute, StatusPreparing, StatusWalletConfirm, true},
		{"forward multiple steps", plantRoute, StatusWalletConfirm, StatusArbitrumPending, true},
		{"regression", plantRoute, StatusAxelarProcessing, StatusSagaPending, false},
		{"same phase", plantRoute, StatusSagaPending, StatusSagaPending, false},
		{"fail from early phase", plantRoute, StatusPreparing, StatusFailed, true},
		{"fail from late phase", plantRoute, StatusArbitrumPending, StatusFailed, true},
		{"fail from completed", plantRoute, StatusCompleted, StatusFailed, false},
		{"advance from failed", plantRoute, StatusFailed, StatusSagaPending, false},
		{"advance from completed", plantRoute, StatusCompleted, StatusArbitrumPending, false},
		{"claim has no saga phase", claimRoute, StatusWalletConfirm, StatusSagaPending, false},
		{"claim direct to arbitrum", claimRoute, StatusWalletConfirm, StatusArbitrumPending, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.route.CanAdvance(tc.from, tc.to))
		})
	}
}
