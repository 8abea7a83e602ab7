package field

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
)

// Field tracks speculative seed positions keyed by their owning record id.
// A position appears the moment a plant is requested and is explicitly
// retracted (marked stale) if the record fails, so the farm never shows a
// ghost seed without an audit trail.
type Field struct {
	mu        sync.RWMutex
	positions map[string]*entity.OptimisticSeedPosition
	order     []string // newest first

	ids          core.IDProvider
	timeProvider core.TimeProvider
	logger       core.Logger
}

// NewField creates an empty field
func NewField(ids core.IDProvider, timeProvider core.TimeProvider, logger core.Logger) *Field {
	return &Field{
		positions:    make(map[string]*entity.OptimisticSeedPosition),
		ids:          ids,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Plant registers a pending position for a new plant record
func (f *Field) Plant(recordID string, owner common.Address, seedTypeID string, amount decimal.Decimal) *entity.OptimisticSeedPosition {
	pos := entity.NewOptimisticSeedPosition(f.ids.NewID(), recordID, owner, seedTypeID, amount, f.timeProvider)

	f.mu.Lock()
	if _, exists := f.positions[recordID]; !exists {
		f.order = append([]string{recordID}, f.order...)
	}
	f.positions[recordID] = pos
	f.mu.Unlock()

	f.logger.Debug("optimistic position planted", map[string]any{
		"position_id": pos.ID,
		"record_id":   recordID,
		"seed_type":   seedTypeID,
	})
	return clonePosition(pos)
}

// Confirm upgrades the position once the deposit is final
func (f *Field) Confirm(recordID string) bool {
	return f.mutate(recordID, func(pos *entity.OptimisticSeedPosition) {
		pos.Confirm(f.timeProvider)
	})
}

// MarkStale retracts the position after its record failed
func (f *Field) MarkStale(recordID string) bool {
	return f.mutate(recordID, func(pos *entity.OptimisticSeedPosition) {
		pos.MarkStale(f.timeProvider)
	})
}

// Reinstate returns a stale position to pending on retry
func (f *Field) Reinstate(recordID string) bool {
	return f.mutate(recordID, func(pos *entity.OptimisticSeedPosition) {
		pos.Reinstate(f.timeProvider)
	})
}

// Positions returns copies of all positions, newest first
func (f *Field) Positions() []*entity.OptimisticSeedPosition {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]*entity.OptimisticSeedPosition, 0, len(f.order))
	for _, recordID := range f.order {
		if pos, ok := f.positions[recordID]; ok {
			out = append(out, clonePosition(pos))
		}
	}
	return out
}

// PositionFor returns a copy of one record's position
func (f *Field) PositionFor(recordID string) (*entity.OptimisticSeedPosition, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	pos, ok := f.positions[recordID]
	if !ok {
		return nil, false
	}
	return clonePosition(pos), true
}

func (f *Field) mutate(recordID string, apply func(*entity.OptimisticSeedPosition)) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	pos, ok := f.positions[recordID]
	if !ok {
		return false
	}
	apply(pos)
	return true
}

func clonePosition(pos *entity.OptimisticSeedPosition) *entity.OptimisticSeedPosition {
	cp := *pos
	return &cp
}
