package notify

import (
	"sync"
	"time"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
	uport "github.com/LukeFost/defivalley-sub000/internal/domain/port/usecase"
)

// Publisher mirrors notifications to an out-of-process sink. Delivery is
// best effort; a publish failure only earns a log line.
type Publisher interface {
	PublishNotification(n entity.Notification) error
}

// Config tunes the notifier
type Config struct {
	// TTL is how long non-persistent notifications stay visible
	TTL time.Duration
	// SweepInterval is how often expired notifications are pruned and
	// announced as dismissed. Zero disables the background sweeper; expiry
	// then only takes effect through Feed filtering and explicit Prune calls.
	SweepInterval time.Duration
}

// DefaultConfig returns the standard toast behaviour
func DefaultConfig() Config {
	return Config{
		TTL:           entity.DefaultNotificationTTL,
		SweepInterval: time.Second,
	}
}

// Notifier is the fire-and-forget notification emitter. It owns the visible
// feed, auto-dismisses non-persistent entries, and fans events out to
// subscribers over buffered channels that drop rather than block.
type Notifier struct {
	mu          sync.Mutex
	feed        []entity.Notification // newest first, may contain expired entries between sweeps
	subscribers map[string]chan uport.NotificationEvent
	closed      bool

	cfg          Config
	ids          core.IDProvider
	timeProvider core.TimeProvider
	logger       core.Logger
	telemetry    core.Telemetry
	mirror       Publisher

	done chan struct{}
	wg   sync.WaitGroup
}

// NewNotifier creates a notifier. mirror may be nil when no out-of-process
// sink is configured.
func NewNotifier(
	cfg Config,
	ids core.IDProvider,
	timeProvider core.TimeProvider,
	logger core.Logger,
	telemetry core.Telemetry,
	mirror Publisher,
) *Notifier {
	if cfg.TTL <= 0 {
		cfg.TTL = entity.DefaultNotificationTTL
	}
	n := &Notifier{
		subscribers:  make(map[string]chan uport.NotificationEvent),
		cfg:          cfg,
		ids:          ids,
		timeProvider: timeProvider,
		logger:       logger,
		telemetry:    telemetry,
		mirror:       mirror,
		done:         make(chan struct{}),
	}
	if cfg.SweepInterval > 0 {
		n.wg.Add(1)
		go n.sweepLoop()
	}
	return n
}

// Push emits a notification and returns its id
func (n *Notifier) Push(level entity.NotificationLevel, title, message string, persistent bool) string {
	now := n.timeProvider.Now()
	toast := entity.Notification{
		ID:         n.ids.NewID(),
		Level:      level,
		Title:      title,
		Message:    message,
		Persistent: persistent,
		CreatedAt:  now,
	}
	if !persistent {
		toast.ExpiresAt = now.Add(n.cfg.TTL)
	}

	n.mu.Lock()
	n.feed = append([]entity.Notification{toast}, n.feed...)
	n.mu.Unlock()

	n.broadcast(uport.NotificationEvent{Type: uport.NotificationPosted, Notification: toast})
	n.telemetry.NotificationPushed(string(level))

	if n.mirror != nil {
		if err := n.mirror.PublishNotification(toast); err != nil {
			n.logger.Warn("notification mirror publish failed", map[string]any{
				"notification_id": toast.ID,
				"error":           err.Error(),
			})
		}
	}
	return toast.ID
}

// Dismiss removes a notification early. Unknown or already dismissed ids are
// harmless.
func (n *Notifier) Dismiss(id string) bool {
	n.mu.Lock()
	var dismissed *entity.Notification
	for i, toast := range n.feed {
		if toast.ID == id {
			d := toast
			dismissed = &d
			n.feed = append(n.feed[:i], n.feed[i+1:]...)
			break
		}
	}
	n.mu.Unlock()

	if dismissed == nil {
		return false
	}
	n.broadcast(uport.NotificationEvent{Type: uport.NotificationDismissed, Notification: *dismissed})
	return true
}

// Feed returns the currently visible notifications, newest first. Entries
// past their TTL are filtered out even if the sweeper has not removed them
// yet.
func (n *Notifier) Feed() []entity.Notification {
	now := n.timeProvider.Now()

	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]entity.Notification, 0, len(n.feed))
	for _, toast := range n.feed {
		if !toast.Expired(now) {
			out = append(out, toast)
		}
	}
	return out
}

// Prune removes expired notifications and announces their dismissal
func (n *Notifier) Prune() {
	now := n.timeProvider.Now()

	n.mu.Lock()
	var kept []entity.Notification
	var expired []entity.Notification
	for _, toast := range n.feed {
		if toast.Expired(now) {
			expired = append(expired, toast)
		} else {
			kept = append(kept, toast)
		}
	}
	n.feed = kept
	n.mu.Unlock()

	for _, toast := range expired {
		n.broadcast(uport.NotificationEvent{Type: uport.NotificationDismissed, Notification: toast})
	}
}

// Subscribe registers a live event stream
func (n *Notifier) Subscribe(buffer int) (string, <-chan uport.NotificationEvent) {
	if buffer < 1 {
		buffer = 1
	}
	id := n.ids.NewID()
	ch := make(chan uport.NotificationEvent, buffer)

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		close(ch)
		return id, ch
	}
	n.subscribers[id] = ch
	n.mu.Unlock()
	return id, ch
}

// Unsubscribe cancels a stream and closes its channel. The close happens
// under the same lock broadcast sends under, so an in-flight event can never
// hit a closed channel.
func (n *Notifier) Unsubscribe(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if ch, ok := n.subscribers[id]; ok {
		delete(n.subscribers, id)
		close(ch)
	}
}

// Shutdown stops the sweeper and closes all streams
func (n *Notifier) Shutdown() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	for id, ch := range n.subscribers {
		delete(n.subscribers, id)
		close(ch)
	}
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

// broadcast delivers an event to every subscriber without ever blocking.
// A full buffer means the consumer loses the event; the feed remains the
// canonical view. Sends happen under the lock so Unsubscribe cannot close a
// channel mid-send; the non-blocking send keeps the critical section short.
func (n *Notifier) broadcast(event uport.NotificationEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subscribers {
		select {
		case ch <- event:
		default:
			n.logger.Debug("notification event dropped", map[string]any{
				"notification_id": event.Notification.ID,
				"event_type":      string(event.Type),
			})
		}
	}
}

func (n *Notifier) sweepLoop() {
	defer n.wg.Done()
	for {
		select {
		case <-n.done:
			return
		default:
		}
		n.timeProvider.Sleep(core.Duration(n.cfg.SweepInterval))
		select {
		case <-n.done:
			return
		default:
			n.Prune()
		}
	}
}
