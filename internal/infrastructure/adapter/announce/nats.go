package announce

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/LukeFost/defivalley-sub000/internal/domain/entity"
	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
)

// SubjectNotifications carries every posted player notification
const SubjectNotifications = "valley.notifications"

// Config contains the arguments required to connect to the nats service
type Config struct {
	Address string
	Name    string
	Token   string
}

// NatsAnnouncer mirrors notifications onto a nats subject so out-of-process
// listeners (overlays, bots, dashboards) can react without polling the
// gateway. Delivery is fire and forget, matching the notifier's contract.
type NatsAnnouncer struct {
	conn   *nats.Conn
	logger core.Logger
}

// Connect establishes the nats connection for the announcer
func Connect(cfg Config, logger core.Logger) (*NatsAnnouncer, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("nats address is required")
	}
	var opts []nats.Option
	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	conn, err := nats.Connect(cfg.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats at %s: %w", cfg.Address, err)
	}
	logger.Info("notification announcer connected", map[string]any{"address": cfg.Address})
	return &NatsAnnouncer{conn: conn, logger: logger}, nil
}

// announcedNotification is the wire shape of a mirrored notification
type announcedNotification struct {
	ID         string    `json:"id"`
	Level      string    `json:"level"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Persistent bool      `json:"persistent"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PublishNotification pushes one notification to the subject
func (a *NatsAnnouncer) PublishNotification(n entity.Notification) error {
	msg, err := json.Marshal(announcedNotification{
		ID:         n.ID,
		Level:      string(n.Level),
		Title:      n.Title,
		Message:    n.Message,
		Persistent: n.Persistent,
		CreatedAt:  n.CreatedAt,
	})
	if err != nil {
		return err
	}
	return a.conn.Publish(SubjectNotifications, msg)
}

// Disconnect drains the queue and disconnects from the pub/sub
func (a *NatsAnnouncer) Disconnect() error {
	return a.conn.Drain()
}
