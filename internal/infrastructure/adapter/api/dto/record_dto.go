package dto

import (
	"time"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
)

// ChainRefResponse is one observed on-chain footprint of a record
type ChainRefResponse struct {
	Chain      string    `json:"chain"`
	TxHash     string    `json:"txHash"`
	Attempt    int       `json:"attempt"`
	ObservedAt time.Time `json:"observedAt"`
}

// RecordResponse is the API view of a transaction record. Amounts are
// strings in token minor units so values above 64 bits survive intact.
type RecordResponse struct {
	ID                    string             `json:"id"`
	Kind                  string             `json:"kind"`
	Status                string             `json:"status"`
	Initiator             string             `json:"initiator"`
	SeedTypeID            string             `json:"seedTypeId,omitempty"`
	SeedID                string             `json:"seedId,omitempty"`
	Amount                string             `json:"amount,omitempty"`
	GasEstimate           uint64             `json:"gasEstimate,omitempty"`
	ChainRefs             []ChainRefResponse `json:"chainRefs"`
	CreatedAt             time.Time          `json:"createdAt"`
	UpdatedAt             time.Time          `json:"updatedAt"`
	EstimatedCompletionAt *time.Time         `json:"estimatedCompletionAt,omitempty"`
	Note                  string             `json:"note,omitempty"`
	FailureReason         string             `json:"failureReason,omitempty"`
	RetryCount            int                `json:"retryCount"`
}

// RecordListResponse wraps a record collection
type RecordListResponse struct {
	Records []RecordResponse `json:"records"`
	Count   int              `json:"count"`
}

// ClearCompletedResponse reports how many records a sweep removed
type ClearCompletedResponse struct {
	Cleared int `json:"cleared"`
}

// FromRecord maps a domain record to its API view
func FromRecord(rec *entity.TransactionRecord) RecordResponse {
	refs := make([]ChainRefResponse, 0, len(rec.ChainRefs))
	for _, ref := range rec.ChainRefs {
		refs = append(refs, ChainRefResponse{
			Chain:      string(ref.Chain),
			TxHash:     ref.TxHash.Hex(),
			Attempt:    ref.Attempt,
			ObservedAt: ref.ObservedAt,
		})
	}

	resp := RecordResponse{
		ID:                    rec.ID,
		Kind:                  string(rec.Kind),
		Status:                string(rec.Status),
		Initiator:             rec.Initiator.Hex(),
		SeedTypeID:            rec.Payload.SeedTypeID,
		SeedID:                rec.Payload.SeedID,
		GasEstimate:           rec.Payload.GasEstimate,
		ChainRefs:             refs,
		CreatedAt:             rec.CreatedAt,
		UpdatedAt:             rec.UpdatedAt,
		EstimatedCompletionAt: rec.EstimatedCompletionAt,
		Note:                  rec.Note,
		FailureReason:         rec.FailureReason,
		RetryCount:            rec.RetryCount,
	}
	if !rec.Payload.Amount.IsZero() {
		resp.Amount = rec.Payload.Amount.String()
	}
	return resp
}

// FromRecords maps a record collection to its API view
func FromRecords(records []*entity.TransactionRecord) RecordListResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, FromRecord(rec))
	}
	return RecordListResponse{Records: out, Count: len(out)}
}
