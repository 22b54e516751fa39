package infrastructure

import (
	"encoding/json"
	"fmt"
	"time"

	"casino/economy-bot/domain/events"

	"github.com/google/uuid"
)

// EventEnvelope is the JSON wrapper every event travels in
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEventEnvelope wraps an event with a fresh id
func NewEventEnvelope(event events.Event) (*EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: "economy-bot",
		Payload:       payload,
	}, nil
}

// DecodeEvent turns an envelope payload back into its concrete event
func DecodeEvent(eventType events.EventType, payload []byte) (events.Event, error) {
	var event events.Event

	switch eventType {
	case events.EventTypeBalanceChange:
		event = &events.BalanceChangeEvent{}
	case events.EventTypeCrateOpened:
		event = &events.CrateOpenedEvent{}
	case events.EventTypeBlackjackSettled:
		event = &events.BlackjackSettledEvent{}
	case events.EventTypeRouletteResolved:
		event = &events.RouletteResolvedEvent{}
	case events.EventTypeTempRoleExpired:
		event = &events.TempRoleExpiredEvent{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	if err := json.Unmarshal(payload, event); err != nil {
		return nil, err
	}

	return event, nil
}
