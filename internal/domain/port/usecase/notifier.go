package usecase

import (
	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
)

// NotificationEventType distinguishes feed changes on the live stream
type NotificationEventType string

// Notification event types
const (
	NotificationPosted    NotificationEventType = "posted"
	NotificationDismissed NotificationEventType = "dismissed"
)

// NotificationEvent is one change to the notification feed
type NotificationEvent struct {
	Type         NotificationEventType
	Notification entity.Notification
}

// Notifier emits fire-and-forget player notifications. Nothing here carries
// authority over transaction state; a dropped notification is never an error.
type Notifier interface {
	// Push emits a notification and returns its id. Non-persistent
	// notifications dismiss themselves after the configured TTL.
	Push(level entity.NotificationLevel, title, message string, persistent bool) string
	// Dismiss removes a notification early. Dismissing twice is harmless.
	Dismiss(id string) bool
	// Feed returns the currently visible notifications, newest first
	Feed() []entity.Notification
	// Subscribe registers a live event stream. The returned channel drops
	// events rather than block a slow consumer.
	Subscribe(buffer int) (id string, events <-chan NotificationEvent)
	// Unsubscribe cancels a stream and closes its channel
	Unsubscribe(id string)
	// Shutdown stops the dismiss timers and closes all streams
	Shutdown()
}
