package pubsub

import (
	"context"
	"encoding/json"
)

// Event represents a pub/sub event.
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "hoist_status", "hoist_trace")
	Type    string          `json:"type"`    // Event type (e.g., "verdict", "hoisted", "done")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic.
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing.
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// HoistStatus reports overall progress of one hoist invocation.
type HoistStatus struct {
	State   string `json:"state"`   // importing, analyzing, hoisting, done, error
	Message string `json:"message"`
	Step    int    `json:"step"`
	Total   int    `json:"total"`
}

// HoistTraceEntry mirrors a single pkg/hoist.Sink callback, published on the
// "hoist_trace" topic so a web client can render the dump live over SSE.
type HoistTraceEntry struct {
	Kind   string `json:"kind"` // "verdict" or "hoisted"
	Path   string `json:"path"` // dot-joined ancestor chain, root first
	Name   string `json:"name"`
	Detail string `json:"detail"`
}
