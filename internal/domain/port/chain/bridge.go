package chain

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
)

// BridgePhase marks a milestone of a cross-chain leg
type BridgePhase string

// Bridge phases
const (
	// PhaseSourceObserved means the bridge picked up the source transaction
	PhaseSourceObserved BridgePhase = "source_observed"
	// PhaseDelivered means the destination call executed
	PhaseDelivered BridgePhase = "delivered"
)

// Signal is one bridge milestone for a followed leg. A non-nil Err ends the
// leg; DeliveryHash is set only with PhaseDelivered.
type Signal struct {
	Phase        BridgePhase
	DeliveryHash common.Hash
	Err          error
}

// Leg identifies one cross-chain transfer to follow
type Leg struct {
	RecordID     string
	SourceChain  entity.ChainName
	DestChain    entity.ChainName
	SourceTxHash common.Hash
}

// BridgeTracker follows a transfer across the bridge. The returned channel
// emits signals as milestones land and is closed after delivery or a terminal
// error. Implementations must honor ctx cancellation and must not block on a
// slow receiver beyond the channel's buffer.
type BridgeTracker interface {
	Follow(ctx context.Context, leg Leg) (<-chan Signal, error)
	// EstimateTransit reports the expected bridge transit time, used for the
	// player-facing completion estimate
	EstimateTransit(leg Leg) time.Duration
}
