package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
)

// USDCDecimals is the minor-unit scale of the deposit token
const USDCDecimals = 6

// Payload carries the kind-specific parameters of a record. The field set is
// closed; only the fields relevant to the record's kind are populated.
type Payload struct {
	SeedTypeID  string          // plant: catalog entry being planted
	SeedID      string          // harvest: on-chain seed being pulled
	Amount      decimal.Decimal // plant: deposit in minor units
	GasEstimate uint64          // submitter's gas estimate for the source call
}

// PlantPayload builds the payload for planting a seed
func PlantPayload(seedTypeID string, amount decimal.Decimal, gasEstimate uint64) Payload {
	return Payload{
		SeedTypeID:  seedTypeID,
		Amount:      amount,
		GasEstimate: gasEstimate,
	}
}

// HarvestPayload builds the payload for harvesting one seed
func HarvestPayload(seedID string, gasEstimate uint64) Payload {
	return Payload{
		SeedID:      seedID,
		GasEstimate: gasEstimate,
	}
}

// ClaimPayload builds the payload for claiming accrued yield
func ClaimPayload(gasEstimate uint64) Payload {
	return Payload{GasEstimate: gasEstimate}
}

// Validate checks the payload against the requirements of a kind
func (p Payload) Validate(kind TransactionKind) error {
	switch kind {
	case KindPlantSeed:
		if p.SeedTypeID == "" {
			return fmt.Errorf("%w: missing seed type", errs.ErrInvalidSeedType)
		}
		if !p.Amount.IsPositive() {
			return fmt.Errorf("%w: amount must be positive", errs.ErrInvalidAmount)
		}
		if !p.Amount.IsInteger() {
			return fmt.Errorf("%w: amount must be an integer in minor units", errs.ErrInvalidAmount)
		}
	case KindHarvestSeed:
		if p.SeedID == "" {
			return fmt.Errorf("%w: missing seed id", errs.ErrValidation)
		}
	case KindClaimYield:
		// No parameters beyond the gas estimate.
	default:
		return fmt.Errorf("%w: unknown transaction kind %q", errs.ErrValidation, kind)
	}
	return nil
}

func (p Payload) clone() Payload {
	// Decimal values are immutable; the struct copies cleanly.
	return p
}

// ParseAmount validates and converts a user-supplied amount string into a
// minor-unit decimal. Amounts arrive already scaled to minor units, so any
// fractional part is rejected rather than rounded.
func ParseAmount(amount string) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if len(amount) == 0 {
		return decimal.Zero, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, amount)
	}
	if value.IsNegative() || value.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", errs.ErrInvalidAmount)
	}
	if !value.IsInteger() {
		return decimal.Zero, fmt.Errorf("%w: amount must be an integer in minor units", errs.ErrInvalidAmount)
	}
	return value, nil
}

// FormatUSDC renders a minor-unit amount as a whole-token string for player
// facing messages. For example 10500000 becomes "10.5 USDC".
func FormatUSDC(amount decimal.Decimal) string {
	return amount.Shift(-USDCDecimals).String() + " USDC"
}
