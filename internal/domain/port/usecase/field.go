package usecase

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
)

// SeedField tracks the speculative seed positions shown on the farm before
// the chain confirms them. Positions are keyed by their owning record id.
type SeedField interface {
	// Plant registers a pending position for a new plant record
	Plant(recordID string, owner common.Address, seedTypeID string, amount decimal.Decimal) *entity.OptimisticSeedPosition
	// Confirm upgrades the position once the deposit is final
	Confirm(recordID string) bool
	// MarkStale retracts the position after its record failed
	MarkStale(recordID string) bool
	// Reinstate returns a stale position to pending on retry
	Reinstate(recordID string) bool
	// Positions returns copies of all positions, newest first
	Positions() []*entity.OptimisticSeedPosition
	// PositionFor returns a copy of one record's position
	PositionFor(recordID string) (*entity.OptimisticSeedPosition, bool)
}
