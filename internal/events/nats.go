package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Publisher sends raw payloads to a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Forwarder relays dispatched events to a message bus under prefix.<type>.
type Forwarder struct {
	publisher Publisher
	prefix    string
}

// NewForwarder builds a forwarder. An empty prefix publishes bare event types.
func NewForwarder(publisher Publisher, prefix string) *Forwarder {
	return &Forwarder{publisher: publisher, prefix: prefix}
}

// Subject returns the subject an event type is published on.
func (f *Forwarder) Subject(eventType EventType) string {
	if f.prefix == "" {
		return string(eventType)
	}
	return f.prefix + "." + string(eventType)
}

// Forward is an EventHandler publishing the JSON encoded event.
func (f *Forwarder) Forward(_ context.Context, event Event) error {
	if f == nil || f.publisher == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}
	if err := f.publisher.Publish(f.Subject(event.Type), payload); err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	return nil
}

// ConnectNATS dials the bus used by the forwarder.
func ConnectNATS(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url, nats.Name(name), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}
