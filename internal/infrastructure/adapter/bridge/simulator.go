package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	chainport "github.com/LukeFost/defivalley-sub000/internal/domain/port/chain"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
)

// SimulatorConfig tunes the simulated bridge timings
type SimulatorConfig struct {
	// ObserveDelay is how long the bridge takes to notice the source
	// transaction
	ObserveDelay core.Duration
	// DeliverDelay is how long the transit to the destination takes after
	// that
	DeliverDelay core.Duration
}

// DefaultSimulatorConfig returns timings quick enough for local sessions
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		ObserveDelay: 2 * core.Second,
		DeliverDelay: 8 * core.Second,
	}
}

// Simulator implements the BridgeTracker port with timers instead of a real
// bridge. It reproduces the exact channel contract of the production tracker,
// so the rest of the pipeline runs unchanged under the simulate command and
// in local development.
type Simulator struct {
	cfg          SimulatorConfig
	timeProvider core.TimeProvider
	logger       core.Logger
}

// NewSimulator creates a simulated bridge tracker
func NewSimulator(cfg SimulatorConfig, timeProvider core.TimeProvider, logger core.Logger) *Simulator {
	if cfg.ObserveDelay <= 0 {
		cfg.ObserveDelay = DefaultSimulatorConfig().ObserveDelay
	}
	if cfg.DeliverDelay <= 0 {
		cfg.DeliverDelay = DefaultSimulatorConfig().DeliverDelay
	}
	return &Simulator{cfg: cfg, timeProvider: timeProvider, logger: logger}
}

// Follow emits source_observed and delivered on a schedule. The channel
// buffer covers every signal the simulator can send, so a departed receiver
// never blocks the goroutine.
func (s *Simulator) Follow(ctx context.Context, leg chainport.Leg) (<-chan chainport.Signal, error) {
	if leg.SourceTxHash == (common.Hash{}) {
		return nil, fmt.Errorf("%w: bridge leg has no source transaction", errs.ErrValidation)
	}
	ch := make(chan chainport.Signal, 2)
	go s.run(ctx, leg, ch)
	return ch, nil
}

// EstimateTransit reports the expected bridge transit time
func (s *Simulator) EstimateTransit(leg chainport.Leg) time.Duration {
	return (s.cfg.ObserveDelay + s.cfg.DeliverDelay).Std()
}

func (s *Simulator) run(ctx context.Context, leg chainport.Leg, ch chan<- chainport.Signal) {
	defer close(ch)

	s.timeProvider.Sleep(s.cfg.ObserveDelay)
	if ctx.Err() != nil {
		return
	}
	ch <- chainport.Signal{Phase: chainport.PhaseSourceObserved}
	s.logger.Debug("simulated bridge observed source transaction", map[string]any{
		"record_id": leg.RecordID,
		"tx_hash":   leg.SourceTxHash.Hex(),
	})

	s.timeProvider.Sleep(s.cfg.DeliverDelay)
	if ctx.Err() != nil {
		return
	}
	delivery := DeliveryHash(leg)
	ch <- chainport.Signal{Phase: chainport.PhaseDelivered, DeliveryHash: delivery}
	s.logger.Debug("simulated bridge delivered to destination", map[string]any{
		"record_id":     leg.RecordID,
		"dest_chain":    string(leg.DestChain),
		"delivery_hash": delivery.Hex(),
	})
}

// DeliveryHash derives the deterministic destination hash the simulator
// reports for a leg
func DeliveryHash(leg chainport.Leg) common.Hash {
	return crypto.Keccak256Hash(leg.SourceTxHash.Bytes(), []byte(leg.DestChain))
}
