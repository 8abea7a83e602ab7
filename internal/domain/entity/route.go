package entity

import (
	"fmt"

	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
)

// Route is the closed description of how one transaction kind moves through
// the pipeline: which chain receives the submitted call, whether the deposit
// crosses the bridge, and the exact phase order. The set of routes is fixed;
// adding a kind means adding a route here.
type Route struct {
	Kind        TransactionKind
	SourceChain ChainName
	DestChain   ChainName
	Bridged     bool
	Phases      []TransactionStatus
}

var routes = map[TransactionKind]Route{
	KindPlantSeed: {
		Kind:        KindPlantSeed,
		SourceChain: ChainSaga,
		DestChain:   ChainArbitrum,
		Bridged:     true,
		Phases: []TransactionStatus{
			StatusPreparing,
			StatusWalletConfirm,
			StatusSagaPending,
			StatusAxelarProcessing,
			StatusArbitrumPending,
			StatusCompleted,
		},
	},
	KindHarvestSeed: {
		Kind:        KindHarvestSeed,
		SourceChain: ChainSaga,
		DestChain:   ChainArbitrum,
		Bridged:     true,
		Phases: []TransactionStatus{
			StatusPreparing,
			StatusWalletConfirm,
			StatusSagaPending,
			StatusAxelarProcessing,
			StatusArbitrumPending,
			StatusCompleted,
		},
	},
	KindClaimYield: {
		Kind:        KindClaimYield,
		SourceChain: ChainArbitrum,
		DestChain:   ChainArbitrum,
		Bridged:     false,
		Phases: []TransactionStatus{
			StatusPreparing,
			StatusWalletConfirm,
			StatusArbitrumPending,
			StatusCompleted,
		},
	},
}

// RouteFor returns the route for a transaction kind
func RouteFor(kind TransactionKind) (Route, error) {
	route, ok := routes[kind]
	if !ok {
		return Route{}, fmt.Errorf("%w: unknown transaction kind %q", errs.ErrValidation, kind)
	}
	return route, nil
}

// PhaseIndex returns the position of a status in the route's phase order, or
// -1 when the status is not part of the route (failed is never part of the
// ordered path).
func (r Route) PhaseIndex(status TransactionStatus) int {
	for i, phase := range r.Phases {
		if phase == status {
			return i
		}
	}
	return -1
}

// NextPhase returns the phase after the current one. The second return is
// false when the current phase is the last, unknown, or failed.
func (r Route) NextPhase(current TransactionStatus) (TransactionStatus, bool) {
	idx := r.PhaseIndex(current)
	if idx < 0 || idx+1 >= len(r.Phases) {
		return "", false
	}
	return r.Phases[idx+1], true
}

// CanAdvance reports whether a status change moves strictly forward along the
// route. Failing is allowed from any non-terminal phase; everything else must
// progress through the ordered path. Regressions only happen through an
// explicit retry, which is not a transition this check covers.
func (r Route) CanAdvance(from, to TransactionStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusFailed {
		return true
	}
	fromIdx := r.PhaseIndex(from)
	toIdx := r.PhaseIndex(to)
	if fromIdx < 0 || toIdx < 0 {
		return false
	}
	return toIdx > fromIdx
}
