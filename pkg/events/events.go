package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/diaperpal/diaperpal-api/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	// Venue events
	VenueCreated      = "venue.created"
	VenueHoursRefresh = "venue.hours.refreshed"

	// Station events
	StationCreated  = "station.created"
	StationVerified = "station.verified"

	// Report events
	ReportCreated = "report.created"

	// Photo events
	PhotoUploaded = "photo.uploaded"

	// Notification events
	NotifySend = "notify.send"
)

// Event payloads
type VenueCreatedEvent struct {
	VenueID   string    `json:"venue_id"`
	Name      string    `json:"name"`
	VenueType string    `json:"venue_type"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	CreatedAt time.Time `json:"created_at"`
}

type VenueHoursRefreshedEvent struct {
	VenueID     string    `json:"venue_id"`
	DaysParsed  int       `json:"days_parsed"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

type StationVerifiedEvent struct {
	StationID  string    `json:"station_id"`
	VenueID    string    `json:"venue_id"`
	Status     string    `json:"status"`
	VerifiedAt time.Time `json:"verified_at"`
}

type ReportCreatedEvent struct {
	ReportID  string    `json:"report_id"`
	StationID string    `json:"station_id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

type PhotoUploadedEvent struct {
	PhotoID   string    `json:"photo_id"`
	StationID string    `json:"station_id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationEvent struct {
	Type      string                 `json:"type"`
	Recipient string                 `json:"recipient"`
	Subject   string                 `json:"subject"`
	Template  string                 `json:"template"`
	Data      map[string]interface{} `json:"data"`
}
