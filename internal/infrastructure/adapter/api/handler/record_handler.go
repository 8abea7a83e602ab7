package handler

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	domainerr "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	coreport "github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/persistence"
	uport "github.com/LukeFost/defivalley-sub000/internal/domain/port/usecase"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/api/dto"
)

// RecordHandler serves the transaction record views
type RecordHandler struct {
	ledger  uport.RecordLedger
	archive persistence.ArchiveRepository // nil when no archive is configured
	logger  coreport.Logger
}

// NewRecordHandler creates a new record handler instance. archive may be nil;
// the archive route is then not registered.
func NewRecordHandler(ledger uport.RecordLedger, archive persistence.ArchiveRepository, logger coreport.Logger) *RecordHandler {
	return &RecordHandler{
		ledger:  ledger,
		archive: archive,
		logger:  logger,
	}
}

// HasArchive reports whether the archive lookup route can be served
func (h *RecordHandler) HasArchive() bool {
	return h.archive != nil
}

// Active handles the GET /api/v1/transactions/active endpoint
func (h *RecordHandler) Active(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FromRecords(h.ledger.Active()))
}

// History handles the GET /api/v1/transactions/history endpoint
func (h *RecordHandler) History(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FromRecords(h.ledger.History()))
}

// Get handles the GET /api/v1/transactions/:id endpoint
func (h *RecordHandler) Get(c *gin.Context) {
	rec, err := h.ledger.Get(c.Param("id"))
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromRecord(rec))
}

// ClearCompleted handles the DELETE /api/v1/transactions/completed endpoint
func (h *RecordHandler) ClearCompleted(c *gin.Context) {
	swept := h.ledger.ClearCompleted()
	h.logger.Info("completed records cleared", map[string]any{
		"count": len(swept),
	})
	c.JSON(http.StatusOK, dto.ClearCompletedResponse{Cleared: len(swept)})
}

// Archive handles the GET /api/v1/transactions/archive endpoint. Lookups are
// scoped to one wallet; limit defaults to the repository's cap.
func (h *RecordHandler) Archive(c *gin.Context) {
	initiator := c.Query("initiator")
	if !common.IsHexAddress(initiator) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.CodeValidation,
			Message: "initiator must be a hex wallet address",
		})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Code:    domainerr.CodeValidation,
				Message: "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	records, err := h.archive.RecentByInitiator(c.Request.Context(), common.HexToAddress(initiator), limit)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromRecords(records))
}
