package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerr "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	coreport "github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
	uport "github.com/LukeFost/defivalley-sub000/internal/domain/port/usecase"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/api/dto"
)

// statusFor maps the domain error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case domainerr.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, domainerr.ErrRecordNotRetryable),
		errors.Is(err, domainerr.ErrUserRejected):
		return http.StatusConflict
	case domainerr.IsValidationError(err),
		errors.Is(err, domainerr.ErrNoWalletConnected),
		errors.Is(err, domainerr.ErrChainUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, domainerr.ErrNetwork):
		return http.StatusBadGateway
	case domainerr.IsConfirmationTimeoutError(err):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondDomainError logs a failure and writes the standard error body
func respondDomainError(c *gin.Context, logger coreport.Logger, err error) {
	fields := map[string]any{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	}
	if logged, ok := err.(interface{ LogFields() map[string]any }); ok {
		for k, v := range logged.LogFields() {
			fields[k] = v
		}
	}
	logger.Warn("request rejected", fields)

	c.JSON(statusFor(err), dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Message: err.Error(),
	})
}

// respondAction writes an action outcome. Failed actions keep the full
// result body so the UI still sees the record id and failure reason; the
// orchestrator already logged the rejection.
func respondAction(c *gin.Context, result *uport.ActionResult, err error) {
	if err != nil {
		if result != nil {
			c.JSON(statusFor(err), dto.FromActionResult(result))
			return
		}
		c.JSON(statusFor(err), dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusAccepted, dto.FromActionResult(result))
}

// respondBindError reports a malformed request body
func respondBindError(c *gin.Context, logger coreport.Logger, err error) {
	logger.Warn("malformed request body", map[string]any{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	})
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    domainerr.CodeValidation,
		Message: "Invalid request format: " + err.Error(),
	})
}
