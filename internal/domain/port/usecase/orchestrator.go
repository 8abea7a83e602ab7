package usecase

import (
	"context"
)

// ActionResult reports the synchronous outcome of a lifecycle action. The
// record keeps advancing in the background after a successful return.
type ActionResult struct {
	Success       bool
	RecordID      string
	FailureReason string
	ErrorMessage  string
	ErrorCode     int
}

// PlantRequest asks to plant one seed. Amount is the deposit in token minor
// units, transported as a string so values above 64 bits survive intact.
type PlantRequest struct {
	SeedTypeID  string `json:"seedTypeId"`
	Amount      string `json:"amount"`
	GasEstimate uint64 `json:"gasEstimate,omitempty"`
}

// HarvestRequest asks to harvest one grown seed
type HarvestRequest struct {
	SeedID      string `json:"seedId"`
	GasEstimate uint64 `json:"gasEstimate,omitempty"`
}

// BatchHarvestRequest asks to harvest a set of seeds. Each seed gets its own
// record and its own isolated outcome.
type BatchHarvestRequest struct {
	SeedIDs     []string `json:"seedIds"`
	GasEstimate uint64   `json:"gasEstimate,omitempty"`
}

// ClaimRequest asks to claim accrued yield on the DeFi chain
type ClaimRequest struct {
	GasEstimate uint64 `json:"gasEstimate,omitempty"`
}

// Orchestrator drives transaction records through their cross-chain
// lifecycle. Every method returns a result object; errors carry the domain
// classification for transport mapping and never indicate a crash.
type Orchestrator interface {
	PlantSeed(ctx context.Context, req PlantRequest) (*ActionResult, error)
	HarvestSeed(ctx context.Context, req HarvestRequest) (*ActionResult, error)
	BatchHarvest(ctx context.Context, req BatchHarvestRequest) ([]*ActionResult, error)
	ClaimYield(ctx context.Context, req ClaimRequest) (*ActionResult, error)
	// Retry rewinds a failed record and replays its submission
	Retry(ctx context.Context, recordID string) (*ActionResult, error)
	// Shutdown stops accepting work and waits for in-flight followers
	Shutdown(ctx context.Context) error
}
