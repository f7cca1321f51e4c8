package messaging

import "context"

// Broker carries outbox events to downstream consumers. The worker publishes
// to a single channel; subscribers receive raw payloads and decode Message
// themselves.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Message is the wire envelope for published events.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
