package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// farmABI is the call surface of the farm contracts. The chainlet and DeFi
// chain deployments share it; only the addresses differ.
const farmABI = `[
	{"type":"function","name":"plantSeed","stateMutability":"nonpayable","inputs":[{"name":"seedType","type":"string"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"harvestSeed","stateMutability":"nonpayable","inputs":[{"name":"seedId","type":"string"}],"outputs":[]},
	{"type":"function","name":"claimYield","stateMutability":"nonpayable","inputs":[{"name":"farmer","type":"address"}],"outputs":[]},
	{"type":"function","name":"claimableYield","stateMutability":"view","inputs":[{"name":"farmer","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// FarmEncoder implements the CallEncoder port with go-ethereum ABI packing
type FarmEncoder struct {
	abi abi.ABI
}

// NewFarmEncoder parses the farm ABI and returns the encoder
func NewFarmEncoder() (*FarmEncoder, error) {
	parsed, err := abi.JSON(strings.NewReader(farmABI))
	if err != nil {
		return nil, fmt.Errorf("parse farm abi: %w", err)
	}
	return &FarmEncoder{abi: parsed}, nil
}

// PlantSeed encodes the deposit call submitted on the chainlet
func (e *FarmEncoder) PlantSeed(seedTypeID string, amount decimal.Decimal) ([]byte, error) {
	return e.abi.Pack("plantSeed", seedTypeID, amount.BigInt())
}

// HarvestSeed encodes the withdrawal call for one grown seed
func (e *FarmEncoder) HarvestSeed(seedID string) ([]byte, error) {
	return e.abi.Pack("harvestSeed", seedID)
}

// ClaimYield encodes the yield claim on the DeFi chain
func (e *FarmEncoder) ClaimYield(farmer common.Address) ([]byte, error) {
	return e.abi.Pack("claimYield", farmer)
}

// ClaimableYield encodes the read-only claimable lookup
func (e *FarmEncoder) ClaimableYield(farmer common.Address) ([]byte, error) {
	return e.abi.Pack("claimableYield", farmer)
}

// DecodeAmount unpacks a uint256 result into minor units
func (e *FarmEncoder) DecodeAmount(data []byte) (decimal.Decimal, error) {
	vals, err := e.abi.Unpack("claimableYield", data)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unpack claimable yield: %w", err)
	}
	amount, ok := vals[0].(*big.Int)
	if !ok {
		return decimal.Zero, fmt.Errorf("unexpected claimable yield output type %T", vals[0])
	}
	return decimal.NewFromBigInt(amount, 0), nil
}
