package entity

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	tport "github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
)

// SeedType describes one plantable crop: how much USDC it takes, how long it
// grows, and which vault its deposit works in while it grows.
type SeedType struct {
	ID             string
	Name           string
	MinDeposit     decimal.Decimal // minor units
	GrowthDuration time.Duration
	YieldRateBps   uint32
	Vault          common.Address
}

// SeedCatalog is the closed set of seed types the farm accepts. Lookups by
// unknown id are an input validation failure, never a silent default.
type SeedCatalog struct {
	types map[string]SeedType
	order []string
}

// NewSeedCatalog builds a catalog, validating every entry
func NewSeedCatalog(types []SeedType) (*SeedCatalog, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("%w: seed catalog cannot be empty", errs.ErrValidation)
	}

	catalog := &SeedCatalog{types: make(map[string]SeedType, len(types))}
	for _, st := range types {
		if st.ID == "" {
			return nil, fmt.Errorf("%w: seed type with empty id", errs.ErrValidation)
		}
		if _, exists := catalog.types[st.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate seed type %q", errs.ErrValidation, st.ID)
		}
		if !st.MinDeposit.IsPositive() || !st.MinDeposit.IsInteger() {
			return nil, fmt.Errorf("%w: seed type %q minimum must be a positive integer", errs.ErrValidation, st.ID)
		}
		if st.GrowthDuration <= 0 {
			return nil, fmt.Errorf("%w: seed type %q growth duration must be positive", errs.ErrValidation, st.ID)
		}
		catalog.types[st.ID] = st
		catalog.order = append(catalog.order, st.ID)
	}
	return catalog, nil
}

// Lookup returns the seed type for an id
func (c *SeedCatalog) Lookup(id string) (SeedType, bool) {
	st, ok := c.types[id]
	return st, ok
}

// List returns the seed types in registration order
func (c *SeedCatalog) List() []SeedType {
	out := make([]SeedType, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.types[id])
	}
	return out
}

// DefaultSeedCatalog returns the farm's built-in crops. Deployments override
// these through configuration.
func DefaultSeedCatalog() *SeedCatalog {
	catalog, err := NewSeedCatalog([]SeedType{
		{
			ID:             "lettuce",
			Name:           "Lettuce",
			MinDeposit:     decimal.NewFromInt(10_000_000), // 10 USDC
			GrowthDuration: 6 * time.Hour,
			YieldRateBps:   300,
		},
		{
			ID:             "corn",
			Name:           "Corn",
			MinDeposit:     decimal.NewFromInt(50_000_000), // 50 USDC
			GrowthDuration: 24 * time.Hour,
			YieldRateBps:   500,
		},
		{
			ID:             "pumpkin",
			Name:           "Pumpkin",
			MinDeposit:     decimal.NewFromInt(250_000_000), // 250 USDC
			GrowthDuration: 72 * time.Hour,
			YieldRateBps:   800,
		},
	})
	if err != nil {
		// The built-in catalog is static; a failure here is a programming error.
		panic(err)
	}
	return catalog
}

// PositionState tags the believability of a speculative seed position
type PositionState string

// Position states. A position starts pending, becomes confirmed when its
// deposit lands, and is marked stale when its transaction fails so the UI can
// visibly retract it instead of leaving a ghost seed on the field.
const (
	PositionPending   PositionState = "pending"
	PositionConfirmed PositionState = "confirmed"
	PositionStale     PositionState = "stale"
)

// OptimisticSeedPosition is the speculative field entity shown the moment a
// plant is requested, before any chain has confirmed it
type OptimisticSeedPosition struct {
	ID         string
	RecordID   string // owning transaction record
	Owner      common.Address
	SeedTypeID string
	Amount     decimal.Decimal
	State      PositionState
	PlantedAt  time.Time
	UpdatedAt  time.Time
}

// NewOptimisticSeedPosition creates a pending position owned by a record
func NewOptimisticSeedPosition(
	id string,
	recordID string,
	owner common.Address,
	seedTypeID string,
	amount decimal.Decimal,
	timeProvider tport.TimeProvider,
) *OptimisticSeedPosition {
	now := timeProvider.Now()
	return &OptimisticSeedPosition{
		ID:         id,
		RecordID:   recordID,
		Owner:      owner,
		SeedTypeID: seedTypeID,
		Amount:     amount,
		State:      PositionPending,
		PlantedAt:  now,
		UpdatedAt:  now,
	}
}

// Confirm upgrades the position once the deposit is final
func (p *OptimisticSeedPosition) Confirm(timeProvider tport.TimeProvider) {
	p.State = PositionConfirmed
	p.UpdatedAt = timeProvider.Now()
}

// MarkStale retracts the position after its transaction failed
func (p *OptimisticSeedPosition) MarkStale(timeProvider tport.TimeProvider) {
	p.State = PositionStale
	p.UpdatedAt = timeProvider.Now()
}

// Reinstate returns a stale position to pending when its record is retried
func (p *OptimisticSeedPosition) Reinstate(timeProvider tport.TimeProvider) {
	p.State = PositionPending
	p.UpdatedAt = timeProvider.Now()
}
