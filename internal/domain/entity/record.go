package entity

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	errs "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	tport "github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
)

// ChainName identifies a logical chain in the deposit pipeline
type ChainName string

// Chains involved in the farm pipeline
const (
	ChainSaga     ChainName = "saga"
	ChainAxelar   ChainName = "axelar"
	ChainArbitrum ChainName = "arbitrum"
)

// TransactionKind represents the player action behind a record
type TransactionKind string

// Transaction kinds
const (
	KindPlantSeed   TransactionKind = "plant_seed"
	KindHarvestSeed TransactionKind = "harvest_seed"
	KindClaimYield  TransactionKind = "claim_yield"
)

// TransactionStatus defines the lifecycle phases of a record
type TransactionStatus string

// TransactionStatus constants, ordered along the cross-chain pipeline
const (
	StatusPreparing        TransactionStatus = "preparing"
	StatusWalletConfirm    TransactionStatus = "wallet_confirm"
	StatusSagaPending      TransactionStatus = "saga_pending"
	StatusAxelarProcessing TransactionStatus = "axelar_processing"
	StatusArbitrumPending  TransactionStatus = "arbitrum_pending"
	StatusCompleted        TransactionStatus = "completed"
	StatusFailed           TransactionStatus = "failed"
)

// IsTerminal reports whether the status ends an attempt. A failed record can
// still be revived through an explicit retry.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ChainReference records one on-chain footprint of a record. References are
// append-only: once observed, a hash is never rewritten or removed. Attempt
// ties the reference to the retry generation that produced it, so traces from
// superseded attempts stay distinguishable.
type ChainReference struct {
	Chain      ChainName
	TxHash     common.Hash
	Attempt    int
	ObservedAt time.Time
}

// TransactionRecord tracks one logical player action across its whole
// cross-chain lifecycle
type TransactionRecord struct {
	ID                    string            // Unique identifier, assigned at creation, never reused
	Kind                  TransactionKind   // Player action this record tracks
	Status                TransactionStatus // Current lifecycle phase
	Initiator             common.Address    // Wallet that started the action
	Payload               Payload           // Kind-specific parameters
	ChainRefs             []ChainReference  // Accumulated on-chain footprints
	CreatedAt             time.Time         // When the record was created
	UpdatedAt             time.Time         // Last mutation time
	EstimatedCompletionAt *time.Time        // Set when the bridge leg starts (nullable)
	Note                  string            // Non-fatal annotation, e.g. a pending confirmation
	FailureReason         string            // Classification, set only while failed
	RetryCount            int               // Number of attempts beyond the first
	OptimisticRefID       string            // Speculative seed position owned by this record
}

// NewTransactionRecord creates a record in the preparing phase with basic
// validation. The id comes from the caller so that id allocation stays with
// the ledger.
func NewTransactionRecord(
	id string,
	kind TransactionKind,
	initiator common.Address,
	payload Payload,
	timeProvider tport.TimeProvider,
) (*TransactionRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty record id", errs.ErrValidation)
	}
	if _, err := RouteFor(kind); err != nil {
		return nil, err
	}
	if err := payload.Validate(kind); err != nil {
		return nil, err
	}

	now := timeProvider.Now()
	return &TransactionRecord{
		ID:        id,
		Kind:      kind,
		Status:    StatusPreparing,
		Initiator: initiator,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// MarkFailed moves the record to failed with a short reason. The record keeps
// whatever chain references it accumulated before the failure.
func (r *TransactionRecord) MarkFailed(timeProvider tport.TimeProvider, reason string) {
	r.Status = StatusFailed
	r.FailureReason = reason
	r.UpdatedAt = timeProvider.Now()
}

// MarkCompleted finishes the record
func (r *TransactionRecord) MarkCompleted(timeProvider tport.TimeProvider) {
	r.Status = StatusCompleted
	r.FailureReason = ""
	r.UpdatedAt = timeProvider.Now()
}

// ResetForRetry rewinds a failed record for a fresh attempt. The attempt
// counter increments, the failure classification and notes clear, and the
// accumulated chain references stay in place.
func (r *TransactionRecord) ResetForRetry(timeProvider tport.TimeProvider) {
	r.Status = StatusPreparing
	r.FailureReason = ""
	r.Note = ""
	r.EstimatedCompletionAt = nil
	r.RetryCount++
	r.UpdatedAt = timeProvider.Now()
}

// AppendChainRef records a newly observed transaction hash for the current
// attempt
func (r *TransactionRecord) AppendChainRef(timeProvider tport.TimeProvider, chain ChainName, txHash common.Hash) {
	now := timeProvider.Now()
	r.ChainRefs = append(r.ChainRefs, ChainReference{
		Chain:      chain,
		TxHash:     txHash,
		Attempt:    r.RetryCount,
		ObservedAt: now,
	})
	r.UpdatedAt = now
}

// RefsForAttempt returns the chain references produced by one attempt
func (r *TransactionRecord) RefsForAttempt(attempt int) []ChainReference {
	var refs []ChainReference
	for _, ref := range r.ChainRefs {
		if ref.Attempt == attempt {
			refs = append(refs, ref)
		}
	}
	return refs
}

// RefForChain returns the most recent reference on the given chain, if any
func (r *TransactionRecord) RefForChain(chain ChainName) (ChainReference, bool) {
	for i := len(r.ChainRefs) - 1; i >= 0; i-- {
		if r.ChainRefs[i].Chain == chain {
			return r.ChainRefs[i], true
		}
	}
	return ChainReference{}, false
}

// Clone returns a deep copy so callers can hand records out without sharing
// mutable state
func (r *TransactionRecord) Clone() *TransactionRecord {
	cp := *r
	if r.ChainRefs != nil {
		cp.ChainRefs = make([]ChainReference, len(r.ChainRefs))
		copy(cp.ChainRefs, r.ChainRefs)
	}
	if r.EstimatedCompletionAt != nil {
		eta := *r.EstimatedCompletionAt
		cp.EstimatedCompletionAt = &eta
	}
	cp.Payload = r.Payload.clone()
	return &cp
}

// IsRetryable reports whether an explicit retry may rewind this record
func (r *TransactionRecord) IsRetryable() bool {
	return r.Status == StatusFailed
}

// Helper functions

// ParseKind validates and converts an externally supplied kind string
func ParseKind(s string) (TransactionKind, error) {
	kind := TransactionKind(s)
	if kind == KindPlantSeed || kind == KindHarvestSeed || kind == KindClaimYield {
		return kind, nil
	}
	return "", fmt.Errorf("%w: unknown transaction kind %q", errs.ErrValidation, s)
}

// ParseStatus validates and converts an externally supplied status string
func ParseStatus(s string) (TransactionStatus, error) {
	status := TransactionStatus(s)
	switch status {
	case StatusPreparing, StatusWalletConfirm, StatusSagaPending,
		StatusAxelarProcessing, StatusArbitrumPending, StatusCompleted, StatusFailed:
		return status, nil
	}
	return "", fmt.Errorf("%w: unknown transaction status %q", errs.ErrValidation, s)
}
