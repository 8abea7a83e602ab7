package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	domainerr "github.com/LukeFost/defivalley-sub000/internal/domain/error"
	coreport "github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
	uport "github.com/LukeFost/defivalley-sub000/internal/domain/port/usecase"
	"github.com/LukeFost/defivalley-sub000/internal/infrastructure/adapter/api/dto"
)

// streamBuffer is the per-subscriber event buffer. The notifier drops events
// rather than block when the buffer is full.
const streamBuffer = 16

// NotificationHandler serves the notification feed and its live stream
type NotificationHandler struct {
	notifier uport.Notifier
	upgrader websocket.Upgrader
	logger   coreport.Logger
}

// NewNotificationHandler creates a new notification handler instance
func NewNotificationHandler(notifier uport.Notifier, logger coreport.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifier: notifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				// the gateway is already open to any origin
				return true
			},
		},
		logger: logger,
	}
}

// Feed handles the GET /api/v1/notifications endpoint
func (h *NotificationHandler) Feed(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FromNotifications(h.notifier.Feed()))
}

// Dismiss handles the DELETE /api/v1/notifications/:id endpoint
func (h *NotificationHandler) Dismiss(c *gin.Context) {
	if !h.notifier.Dismiss(c.Param("id")) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Code:    domainerr.CodeRecordNotFound,
			Message: "notification not found",
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// Stream handles the GET /api/v1/notifications/stream endpoint. Feed changes
// are pushed as JSON frames until the client disconnects or the notifier
// shuts down.
func (h *NotificationHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the failure response
		h.logger.Warn("notification stream upgrade failed", map[string]any{
			"error": err.Error(),
		})
		return
	}
	defer conn.Close()

	subID, events := h.notifier.Subscribe(streamBuffer)
	defer h.notifier.Unsubscribe(subID)

	h.logger.Debug("notification stream opened", map[string]any{
		"subscriber_id": subID,
	})

	// The client never sends application data; reading is still the only way
	// to observe the peer closing.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}
			if err := conn.WriteJSON(dto.FromNotificationEvent(event)); err != nil {
				h.logger.Debug("notification stream write failed", map[string]any{
					"subscriber_id": subID,
					"error":         err.Error(),
				})
				return
			}
		case <-gone:
			h.logger.Debug("notification stream closed by client", map[string]any{
				"subscriber_id": subID,
			})
			return
		}
	}
}
