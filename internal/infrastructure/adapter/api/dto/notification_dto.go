package dto

import (
	"time"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	uport "github.com/LukeFost/defivalley-sub000/internal/domain/port/usecase"
)

// NotificationResponse is the API view of a player-facing toast
type NotificationResponse struct {
	ID         string     `json:"id"`
	Level      string     `json:"level"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Persistent bool       `json:"persistent"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// NotificationListResponse wraps the visible feed
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Count         int                    `json:"count"`
}

// NotificationEventFrame is one feed change pushed over the stream
type NotificationEventFrame struct {
	Type         string               `json:"type"`
	Notification NotificationResponse `json:"notification"`
}

// FromNotification maps a toast to its API view
func FromNotification(n entity.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:         n.ID,
		Level:      string(n.Level),
		Title:      n.Title,
		Message:    n.Message,
		Persistent: n.Persistent,
		CreatedAt:  n.CreatedAt,
	}
	if !n.ExpiresAt.IsZero() {
		expires := n.ExpiresAt
		resp.ExpiresAt = &expires
	}
	return resp
}

// FromNotifications maps the feed to its API view
func FromNotifications(feed []entity.Notification) NotificationListResponse {
	out := make([]NotificationResponse, 0, len(feed))
	for _, n := range feed {
		out = append(out, FromNotification(n))
	}
	return NotificationListResponse{Notifications: out, Count: len(out)}
}

// FromNotificationEvent maps a stream event to its wire frame
func FromNotificationEvent(event uport.NotificationEvent) NotificationEventFrame {
	return NotificationEventFrame{
		Type:         string(event.Type),
		Notification: FromNotification(event.Notification),
	}
}
