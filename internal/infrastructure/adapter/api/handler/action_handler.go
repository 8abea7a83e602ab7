package handler

import (
	"net/http"

	coreport "github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
	uport "github.com/LukeFost/defivalley-sub000/internal/domain/port/usecase"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// ActionHandler handles the player action endpoints. Every action returns the
// synchronous outcome only; the record keeps advancing in the background.
type ActionHandler struct {
	orchestrator uport.Orchestrator
	logger       coreport.Logger
}

// NewActionHandler creates a new action handler instance
func NewActionHandler(orchestrator uport.Orchestrator, logger coreport.Logger) *ActionHandler {
	return &ActionHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Plant handles the POST /api/v1/actions/plant endpoint
func (h *ActionHandler) Plant(c *gin.Context) {
	var req dto.PlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	result, err := h.orchestrator.PlantSeed(c.Request.Context(), uport.PlantRequest{
		SeedTypeID:  req.SeedTypeID,
		Amount:      req.Amount,
		GasEstimate: req.GasEstimate,
	})
	respondAction(c, result, err)
}

// Harvest handles the POST /api/v1/actions/harvest endpoint
func (h *ActionHandler) Harvest(c *gin.Context) {
	var req dto.HarvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	result, err := h.orchestrator.HarvestSeed(c.Request.Context(), uport.HarvestRequest{
		SeedID:      req.SeedID,
		GasEstimate: req.GasEstimate,
	})
	respondAction(c, result, err)
}

// HarvestBatch handles the POST /api/v1/actions/harvest-batch endpoint. Each
// seed gets its own record and its own isolated outcome in the response.
func (h *ActionHandler) HarvestBatch(c *gin.Context) {
	var req dto.BatchHarvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	results, err := h.orchestrator.BatchHarvest(c.Request.Context(), uport.BatchHarvestRequest{
		SeedIDs:     req.SeedIDs,
		GasEstimate: req.GasEstimate,
	})
	if err != nil {
		respondAction(c, nil, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.FromActionResults(results))
}

// Claim handles the POST /api/v1/actions/claim endpoint. The request body is
// optional; an absent body claims with no gas estimate.
func (h *ActionHandler) Claim(c *gin.Context) {
	var req dto.ClaimRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, h.logger, err)
			return
		}
	}

	result, err := h.orchestrator.ClaimYield(c.Request.Context(), uport.ClaimRequest{
		GasEstimate: req.GasEstimate,
	})
	respondAction(c, result, err)
}

// Retry handles the POST /api/v1/transactions/:id/retry endpoint
func (h *ActionHandler) Retry(c *gin.Context) {
	result, err := h.orchestrator.Retry(c.Request.Context(), c.Param("id"))
	respondAction(c, result, err)
}
