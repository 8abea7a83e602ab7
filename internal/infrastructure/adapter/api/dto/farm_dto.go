package dto

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
)

// PositionResponse is the API view of a speculative seed position
type PositionResponse struct {
	ID         string    `json:"id"`
	RecordID   string    `json:"recordId"`
	Owner      string    `json:"owner"`
	SeedTypeID string    `json:"seedTypeId"`
	Amount     string    `json:"amount"`
	State      string    `json:"state"`
	PlantedAt  time.Time `json:"plantedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PositionListResponse wraps the field view
type PositionListResponse struct {
	Positions []PositionResponse `json:"positions"`
	Count     int                `json:"count"`
}

// WalletResponse describes the wallet session the tracker acts for
type WalletResponse struct {
	Connected   bool   `json:"connected"`
	Address     string `json:"address,omitempty"`
	ActiveChain string `json:"activeChain,omitempty"`
}

// SeedTypeResponse is one plantable crop from the catalog
type SeedTypeResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	MinDeposit    string `json:"minDeposit"`
	GrowthSeconds int64  `json:"growthSeconds"`
	YieldRateBps  uint32 `json:"yieldRateBps"`
	Vault         string `json:"vault,omitempty"`
}

// SeedCatalogResponse wraps the crop catalog
type SeedCatalogResponse struct {
	Seeds []SeedTypeResponse `json:"seeds"`
}

// FromPositions maps field positions to their API view
func FromPositions(positions []*entity.OptimisticSeedPosition) PositionListResponse {
	out := make([]PositionResponse, 0, len(positions))
	for _, pos := range positions {
		out = append(out, PositionResponse{
			ID:         pos.ID,
			RecordID:   pos.RecordID,
			Owner:      pos.Owner.Hex(),
			SeedTypeID: pos.SeedTypeID,
			Amount:     pos.Amount.String(),
			State:      string(pos.State),
			PlantedAt:  pos.PlantedAt,
			UpdatedAt:  pos.UpdatedAt,
		})
	}
	return PositionListResponse{Positions: out, Count: len(out)}
}

// FromSeedTypes maps catalog entries to their API view
func FromSeedTypes(types []entity.SeedType) SeedCatalogResponse {
	out := make([]SeedTypeResponse, 0, len(types))
	for _, st := range types {
		resp := SeedTypeResponse{
			ID:            st.ID,
			Name:          st.Name,
			MinDeposit:    st.MinDeposit.String(),
			GrowthSeconds: int64(st.GrowthDuration / time.Second),
			YieldRateBps:  st.YieldRateBps,
		}
		if st.Vault != (common.Address{}) {
			resp.Vault = st.Vault.Hex()
		}
		out = append(out, resp)
	}
	return SeedCatalogResponse{Seeds: out}
}
