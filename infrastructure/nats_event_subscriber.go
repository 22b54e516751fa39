package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"casino/economy-bot/domain/events"
	"casino/economy-bot/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// SubscriptionClient is the part of the NATS client the subscriber needs
type SubscriptionClient interface {
	Subscribe(subject string, handler func([]byte) error) error
}

// NATSEventSubscriber subscribes to NATS subjects and deserializes events for application handlers
type NATSEventSubscriber struct {
	natsClient    SubscriptionClient
	subjectMapper *EventSubjectMapper
	handlers      map[string][]func(context.Context, events.Event) error
}

// NewNATSEventSubscriber creates a new NATS event subscriber
func NewNATSEventSubscriber(natsClient SubscriptionClient, subjectMapper *EventSubjectMapper) *NATSEventSubscriber {
	return &NATSEventSubscriber{
		natsClient:    natsClient,
		subjectMapper: subjectMapper,
		handlers:      make(map[string][]func(context.Context, events.Event) error),
	}
}

// Subscribe registers a handler for a specific event type.
// Handlers of one subject share a single durable consumer and run in registration order.
func (s *NATSEventSubscriber) Subscribe(eventType events.EventType, handler func(context.Context, events.Event) error) error {
	subject := s.subjectMapper.MapEventTypeToSubject(eventType)
	s.handlers[subject] = append(s.handlers[subject], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"subject":      subject,
		"handlerCount": len(s.handlers[subject]),
	}).Info("Registering event handler for subject")

	if len(s.handlers[subject]) > 1 {
		return nil
	}
	return s.natsClient.Subscribe(subject, func(data []byte) error {
		return s.handleMessage(subject, data)
	})
}

// handleMessage deserializes a NATS message and routes it to the appropriate handler
func (s *NATSEventSubscriber) handleMessage(subject string, data []byte) error {
	var envelope EventEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		log.WithFields(log.Fields{
			"subject": subject,
			"error":   err,
		}).Error("Failed to unmarshal event envelope")
		return fmt.Errorf("failed to unmarshal event envelope: %w", err)
	}

	eventType := events.EventType(envelope.EventType)
	observability.GetMetrics().RecordNATSMessageReceived(envelope.EventType)

	event, err := DecodeEvent(eventType, envelope.Payload)
	if err != nil {
		log.WithFields(log.Fields{
			"subject":     subject,
			"eventType":   eventType,
			"eventId":     envelope.EventID,
			"error":       err,
			"payloadSize": len(envelope.Payload),
		}).Error("Failed to deserialize event payload")
		return fmt.Errorf("failed to deserialize event payload: %w", err)
	}

	handlers := s.handlers[subject]
	if len(handlers) == 0 {
		log.WithFields(log.Fields{
			"subject":   subject,
			"eventType": eventType,
		}).Warn("No handler registered for subject")
		return fmt.Errorf("no handler registered for subject %s", subject)
	}

	// A failing handler gets the message redelivered, so the others must tolerate repeats
	var failed []error
	for _, handler := range handlers {
		if err := handler(context.Background(), event); err != nil {
			log.WithFields(log.Fields{
				"subject":   subject,
				"eventType": eventType,
				"eventId":   envelope.EventID,
				"error":     err,
			}).Error("Event handler failed")
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		return errors.Join(failed...)
	}

	log.WithFields(log.Fields{
		"subject":   subject,
		"eventType": eventType,
		"eventId":   envelope.EventID,
	}).Debug("Successfully processed NATS event")

	return nil
}
