package dto

import (
	uport "github.com/LukeFost/defivalley-sub000/internal/domain/port/usecase"
)

// PlantRequest asks to plant one seed. Amount is the USDC deposit in minor
// units, transported as a string.
type PlantRequest struct {
	SeedTypeID  string `json:"seedTypeId" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	GasEstimate uint64 `json:"gasEstimate"`
}

// HarvestRequest asks to harvest one grown seed
type HarvestRequest struct {
	SeedID      string `json:"seedId" binding:"required"`
	GasEstimate uint64 `json:"gasEstimate"`
}

// BatchHarvestRequest asks to harvest a set of seeds. Emptiness is judged by
// the domain so the response carries the proper error code.
type BatchHarvestRequest struct {
	SeedIDs     []string `json:"seedIds"`
	GasEstimate uint64   `json:"gasEstimate"`
}

// ClaimRequest asks to claim accrued yield. The body is optional.
type ClaimRequest struct {
	GasEstimate uint64 `json:"gasEstimate"`
}

// ActionResponse reports the synchronous outcome of a lifecycle action. The
// record keeps advancing in the background after a successful response.
type ActionResponse struct {
	RecordID      string `json:"recordId,omitempty"`
	Success       bool   `json:"success"`
	FailureReason string `json:"failureReason,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
	ErrorCode     int    `json:"errorCode,omitempty"`
}

// BatchActionResponse carries per-seed outcomes of a batch harvest
type BatchActionResponse struct {
	Results []ActionResponse `json:"results"`
}

// FromActionResult maps a domain action result to its API view
func FromActionResult(result *uport.ActionResult) ActionResponse {
	return ActionResponse{
		RecordID:      result.RecordID,
		Success:       result.Success,
		FailureReason: result.FailureReason,
		ErrorMessage:  result.ErrorMessage,
		ErrorCode:     result.ErrorCode,
	}
}

// FromActionResults maps batch outcomes to their API view
func FromActionResults(results []*uport.ActionResult) BatchActionResponse {
	out := make([]ActionResponse, 0, len(results))
	for _, result := range results {
		out = append(out, FromActionResult(result))
	}
	return BatchActionResponse{Results: out}
}
