package entity

import (
	"time"
)

// NotificationLevel represents the severity of a player-facing toast
type NotificationLevel string

// Notification levels
const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
	NotificationInfo    NotificationLevel = "info"
	NotificationWarning NotificationLevel = "warning"
)

// DefaultNotificationTTL is how long a non-persistent toast stays visible
const DefaultNotificationTTL = 5 * time.Second

// Notification is an ephemeral player-facing message. Notifications are
// advisory only; they carry no authority over transaction state and are never
// persisted.
type Notification struct {
	ID         string
	Level      NotificationLevel
	Title      string
	Message    string
	Persistent bool
	CreatedAt  time.Time
	ExpiresAt  time.Time // zero for persistent notifications
}

// Expired reports whether the notification should be dropped from the feed
func (n Notification) Expired(now time.Time) bool {
	if n.Persistent {
		return false
	}
	return !now.Before(n.ExpiresAt)
}
