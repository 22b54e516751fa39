package infrastructure

import (
	"fmt"

	"casino/economy-bot/domain/events"
)

// EconomyStreamName is the JetStream stream every economy event is stored in
const EconomyStreamName = "ECONOMY"

var eventSubjects = map[events.EventType]string{
	events.EventTypeBalanceChange:    "economy.balance.changed",
	events.EventTypeCrateOpened:      "economy.crate.opened",
	events.EventTypeBlackjackSettled: "economy.blackjack.settled",
	events.EventTypeRouletteResolved: "economy.roulette.resolved",
	events.EventTypeTempRoleExpired:  "economy.temprole.expired",
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	return m.MapEventTypeToSubject(event.Type())
}

// MapEventTypeToSubject converts an event type to its NATS subject
func (m *EventSubjectMapper) MapEventTypeToSubject(eventType events.EventType) string {
	if subject, ok := eventSubjects[eventType]; ok {
		return subject
	}
	// Fallback for unknown event types
	return fmt.Sprintf("economy.unknown.%s", eventType)
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range eventSubjects {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"economy.balance.changed",
		"economy.crate.opened",
		"economy.blackjack.settled",
		"economy.roulette.resolved",
		"economy.temprole.expired",
	}
}
