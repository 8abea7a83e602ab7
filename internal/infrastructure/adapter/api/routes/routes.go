package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/api/handler"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/api/middleware"
)

// SetupRoutes configures all the routes for the gateway. metricsHandler may
// be nil when metrics are disabled.
func SetupRoutes(
	router *gin.Engine,
	actionHandler *handler.ActionHandler,
	recordHandler *handler.RecordHandler,
	farmHandler *handler.FarmHandler,
	notificationHandler *handler.NotificationHandler,
	metricsHandler http.Handler,
) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := router.Group("/api/v1")
	{
		transactions := v1.Group("/transactions")
		{
			// GET /api/v1/transactions/active
			transactions.GET("/active", recordHandler.Active)

			// GET /api/v1/transactions/history
			transactions.GET("/history", recordHandler.History)

			// GET /api/v1/transactions/archive
			if recordHandler.HasArchive() {
				transactions.GET("/archive", recordHandler.Archive)
			}

			// GET /api/v1/transactions/:id
			transactions.GET("/:id", recordHandler.Get)

			// POST /api/v1/transactions/:id/retry
			transactions.POST("/:id/retry", actionHandler.Retry)

			// DELETE /api/v1/transactions/completed
			transactions.DELETE("/completed", recordHandler.ClearCompleted)
		}

		actions := v1.Group("/actions")
		{
			// POST /api/v1/actions/plant
			actions.POST("/plant", actionHandler.Plant)

			// POST /api/v1/actions/harvest
			actions.POST("/harvest", actionHandler.Harvest)

			// POST /api/v1/actions/harvest-batch
			actions.POST("/harvest-batch", actionHandler.HarvestBatch)

			// POST /api/v1/actions/claim
			actions.POST("/claim", actionHandler.Claim)
		}

		// GET /api/v1/field/positions
		v1.GET("/field/positions", farmHandler.Positions)

		// GET /api/v1/wallet
		v1.GET("/wallet", farmHandler.Wallet)

		// GET /api/v1/catalog/seeds
		v1.GET("/catalog/seeds", farmHandler.Seeds)

		notifications := v1.Group("/notifications")
		{
			// GET /api/v1/notifications
			notifications.GET("", notificationHandler.Feed)

			// DELETE /api/v1/notifications/:id
			notifications.DELETE("/:id", notificationHandler.Dismiss)

			// GET /api/v1/notifications/stream
			notifications.GET("/stream", notificationHandler.Stream)
		}
	}
}

// SetupMiddlewares configures global middlewares for the gateway
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	// Apply middlewares in the correct order
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
}
