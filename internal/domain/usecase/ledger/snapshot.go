package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
)

// snapshotVersion guards the on-disk format. Bump it when the shape changes
// and teach Restore the migration.
const snapshotVersion = 1

type snapshotState struct {
	Version int              `json:"version"`
	Active  []snapshotRecord `json:"active"`
	History []snapshotRecord `json:"history"`
}

// snapshotRecord is the serialized form of a record. Amounts ride as decimal
// strings and hashes as hex strings, so token values wider than 64 bits
// survive the round trip bit for bit.
type snapshotRecord struct {
	ID                    string             `json:"id"`
	Kind                  string             `json:"kind"`
	Status                string             `json:"status"`
	Initiator             string             `json:"initiator"`
	Payload               snapshotPayload    `json:"payload"`
	ChainRefs             []snapshotChainRef `json:"chainRefs,omitempty"`
	CreatedAt             time.Time          `json:"createdAt"`
	UpdatedAt             time.Time          `json:"updatedAt"`
	EstimatedCompletionAt *time.Time         `json:"estimatedCompletionAt,omitempty"`
	Note                  string             `json:"note,omitempty"`
	FailureReason         string             `json:"failureReason,omitempty"`
	RetryCount            int                `json:"retryCount"`
	OptimisticRefID       string             `json:"optimisticRefId,omitempty"`
}

type snapshotPayload struct {
	SeedTypeID  string          `json:"seedTypeId,omitempty"`
	SeedID      string          `json:"seedId,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	GasEstimate uint64          `json:"gasEstimate,omitempty"`
}

type snapshotChainRef struct {
	Chain      string    `json:"chain"`
	TxHash     string    `json:"txHash"`
	Attempt    int       `json:"attempt"`
	ObservedAt time.Time `json:"observedAt"`
}

// Snapshot serializes the full ledger state
func (l *Ledger) Snapshot() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	state := snapshotState{Version: snapshotVersion}
	for _, id := range l.activeOrder {
		if rec, ok := l.active[id]; ok {
			state.Active = append(state.Active, toSnapshotRecord(rec))
		}
	}
	for _, rec := range l.history {
		state.History = append(state.History, toSnapshotRecord(rec))
	}

	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStateStore, err)
	}
	return data, nil
}

// Restore replaces the ledger state from a snapshot
func (l *Ledger) Restore(data []byte) error {
	var state snapshotState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStateStore, err)
	}
	if state.Version != snapshotVersion {
		return fmt.Errorf("%w: unsupported snapshot version %d", errs.ErrStateStore, state.Version)
	}

	active := make(map[string]*entity.TransactionRecord, len(state.Active))
	activeOrder := make([]string, 0, len(state.Active))
	for _, sr := range state.Active {
		rec, err := fromSnapshotRecord(sr)
		if err != nil {
			return err
		}
		active[rec.ID] = rec
		activeOrder = append(activeOrder, rec.ID)
	}

	history := make([]*entity.TransactionRecord, 0, len(state.History))
	for _, sr := range state.History {
		rec, err := fromSnapshotRecord(sr)
		if err != nil {
			return err
		}
		history = append(history, rec)
	}
	if len(history) > HistoryCap {
		history = history[:HistoryCap]
	}

	l.mu.Lock()
	l.active = active
	l.activeOrder = activeOrder
	l.history = history
	l.mu.Unlock()
	return nil
}

func toSnapshotRecord(rec *entity.TransactionRecord) snapshotRecord {
	sr := snapshotRecord{
		ID:        rec.ID,
		Kind:      string(rec.Kind),
		Status:    string(rec.Status),
		Initiator: rec.Initiator.Hex(),
		Payload: snapshotPayload{
			SeedTypeID:  rec.Payload.SeedTypeID,
			SeedID:      rec.Payload.SeedID,
			Amount:      rec.Payload.Amount,
			GasEstimate: rec.Payload.GasEstimate,
		},
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
		Note:            rec.Note,
		FailureReason:   rec.FailureReason,
		RetryCount:      rec.RetryCount,
		OptimisticRefID: rec.OptimisticRefID,
	}
	if rec.EstimatedCompletionAt != nil {
		eta := *rec.EstimatedCompletionAt
		sr.EstimatedCompletionAt = &eta
	}
	for _, ref := range rec.ChainRefs {
		sr.ChainRefs = append(sr.ChainRefs, snapshotChainRef{
			Chain:      string(ref.Chain),
			TxHash:     ref.TxHash.Hex(),
			Attempt:    ref.Attempt,
			ObservedAt: ref.ObservedAt,
		})
	}
	return sr
}

func fromSnapshotRecord(sr snapshotRecord) (*entity.TransactionRecord, error) {
	kind, err := entity.ParseKind(sr.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: record %s: %v", errs.ErrStateStore, sr.ID, err)
	}
	status, err := entity.ParseStatus(sr.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: record %s: %v", errs.ErrStateStore, sr.ID, err)
	}

	rec := &entity.TransactionRecord{
		ID:        sr.ID,
		Kind:      kind,
		Status:    status,
		Initiator: common.HexToAddress(sr.Initiator),
		Payload: entity.Payload{
			SeedTypeID:  sr.Payload.SeedTypeID,
			SeedID:      sr.Payload.SeedID,
			Amount:      sr.Payload.Amount,
			GasEstimate: sr.Payload.GasEstimate,
		},
		CreatedAt:       sr.CreatedAt,
		UpdatedAt:       sr.UpdatedAt,
		Note:            sr.Note,
		FailureReason:   sr.FailureReason,
		RetryCount:      sr.RetryCount,
		OptimisticRefID: sr.OptimisticRefID,
	}
	if sr.EstimatedCompletionAt != nil {
		eta := *sr.EstimatedCompletionAt
		rec.EstimatedCompletionAt = &eta
	}
	for _, ref := range sr.ChainRefs {
		rec.ChainRefs = append(rec.ChainRefs, entity.ChainReference{
			Chain:      entity.ChainName(ref.Chain),
			TxHash:     common.HexToHash(ref.TxHash),
			Attempt:    ref.Attempt,
			ObservedAt: ref.ObservedAt,
		})
	}
	return rec, nil
}
