package infrastructure

import (
	"casino/economy-bot/domain/events"
)

// NoopEventPublisher is an event publisher that does nothing.
// It is selected when NATS is disabled and by admin tooling.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish does nothing with the event
func (n *NoopEventPublisher) Publish(event events.Event) error {
	return nil
}
