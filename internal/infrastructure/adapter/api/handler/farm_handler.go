package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	chainport "github.com/LukeFost/defivalley-sub000/internal/domain/port/chain"
	uport "github.com/LukeFost/defivalley-sub000/internal/domain/port/usecase"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/api/dto"
)

// FarmHandler serves the farm views: speculative positions, the wallet
// session and the crop catalog
type FarmHandler struct {
	field   uport.SeedField
	wallet  chainport.WalletProvider
	catalog *entity.SeedCatalog
}

// NewFarmHandler creates a new farm handler instance
func NewFarmHandler(field uport.SeedField, wallet chainport.WalletProvider, catalog *entity.SeedCatalog) *FarmHandler {
	return &FarmHandler{
		field:   field,
		wallet:  wallet,
		catalog: catalog,
	}
}

// Positions handles the GET /api/v1/field/positions endpoint
func (h *FarmHandler) Positions(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FromPositions(h.field.Positions()))
}

// Wallet handles the GET /api/v1/wallet endpoint
func (h *FarmHandler) Wallet(c *gin.Context) {
	resp := dto.WalletResponse{Connected: h.wallet.Connected()}
	if resp.Connected {
		if addr, err := h.wallet.Address(); err == nil {
			resp.Address = addr.Hex()
		}
		resp.ActiveChain = string(h.wallet.ActiveChain())
	}
	c.JSON(http.StatusOK, resp)
}

// Seeds handles the GET /api/v1/catalog/seeds endpoint
func (h *FarmHandler) Seeds(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FromSeedTypes(h.catalog.List()))
}
