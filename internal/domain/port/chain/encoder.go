package chain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// CallEncoder packs farm operations into contract calldata. Only the call
// shape is known here; contract internals stay out of scope.
type CallEncoder interface {
	// PlantSeed encodes the deposit call submitted on the chainlet
	PlantSeed(seedTypeID string, amount decimal.Decimal) ([]byte, error)
	// HarvestSeed encodes the withdrawal call for one grown seed
	HarvestSeed(seedID string) ([]byte, error)
	// ClaimYield encodes the yield claim on the DeFi chain
	ClaimYield(farmer common.Address) ([]byte, error)
	// ClaimableYield encodes the read-only claimable lookup
	ClaimableYield(farmer common.Address) ([]byte, error)
	// DecodeAmount unpacks a uint256 result into minor units
	DecodeAmount(data []byte) (decimal.Decimal, error)
}
