package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	subject string
	msgID   string
	data    []byte
}

type fakeMessageBus struct {
	published  []publishedMessage
	publishErr error
	handlers   map[string]func([]byte) error
}

func newFakeMessageBus() *fakeMessageBus {
	return &fakeMessageBus{handlers: make(map[string]func([]byte) error)}
}

func (b *fakeMessageBus) Publish(ctx context.Context, subject, msgID string, data []byte) error {
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, publishedMessage{subject: subject, msgID: msgID, data: data})
	return nil
}

func (b *fakeMessageBus) Subscribe(subject string, handler func([]byte) error) error {
	b.handlers[subject] = handler
	return nil
}

func TestEventSubjectMapper(t *testing.T) {
	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.BalanceChangeEvent{}, "economy.balance.changed"},
		{events.CrateOpenedEvent{}, "economy.crate.opened"},
		{events.BlackjackSettledEvent{}, "economy.blackjack.settled"},
		{events.RouletteResolvedEvent{}, "economy.roulette.resolved"},
		{events.TempRoleExpiredEvent{}, "economy.temprole.expired"},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.subject, mapper.MapEventToSubject(tt.event))
			assert.Equal(t, tt.event.Type(), mapper.MapSubjectToEventType(tt.subject))
			assert.Contains(t, mapper.GetAllSubjects(), tt.subject)
		})
	}

	assert.Equal(t, "economy.unknown.mystery", mapper.MapEventTypeToSubject("mystery"))
}

func TestNATSEventPublisher_PublishesEnvelope(t *testing.T) {
	bus := newFakeMessageBus()
	publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())

	event := events.BlackjackSettledEvent{
		SessionID: 4,
		UserID:    11,
		GuildID:   22,
		Bet:       100,
		Result:    entities.BlackjackResultPlayer,
		Payout:    200,
	}
	require.NoError(t, publisher.Publish(event))

	require.Len(t, bus.published, 1)
	assert.Equal(t, "economy.blackjack.settled", bus.published[0].subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(bus.published[0].data, &envelope))
	assert.Equal(t, "blackjack_settled", envelope.EventType)
	assert.Equal(t, "economy-bot", envelope.SourceService)
	_, err := uuid.Parse(envelope.EventID)
	assert.NoError(t, err)
	assert.Equal(t, envelope.EventID, bus.published[0].msgID, "the envelope id deduplicates replays")

	decoded, err := DecodeEvent(events.EventType(envelope.EventType), envelope.Payload)
	require.NoError(t, err)
	assert.Equal(t, &event, decoded)
}

func TestNATSEventPublisher_LocalHandlersRunFirst(t *testing.T) {
	bus := newFakeMessageBus()
	publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())

	var seen []events.Event
	publisher.RegisterLocalHandler(events.EventTypeTempRoleExpired, func(ctx context.Context, event events.Event) error {
		seen = append(seen, event)
		return errors.New("handler failure is only logged")
	})

	require.NoError(t, publisher.Publish(events.TempRoleExpiredEvent{UserID: 1, RoleID: 2}))
	require.NoError(t, publisher.Publish(events.CrateOpenedEvent{UserID: 1}))

	assert.Len(t, seen, 1)
	assert.Len(t, bus.published, 2)
}

func TestNATSEventPublisher_NoStreamIsNotAnError(t *testing.T) {
	bus := newFakeMessageBus()
	bus.publishErr = errors.New("nats: no response from stream")
	publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper())

	assert.NoError(t, publisher.Publish(events.CrateOpenedEvent{}))

	bus.publishErr = errors.New("nats: connection closed")
	assert.Error(t, publisher.Publish(events.CrateOpenedEvent{}))
}

func TestNATSEventSubscriber_RoutesDecodedEvents(t *testing.T) {
	bus := newFakeMessageBus()
	mapper := NewEventSubjectMapper()
	publisher := NewNATSEventPublisher(bus, mapper)
	subscriber := NewNATSEventSubscriber(bus, mapper)

	var received events.Event
	require.NoError(t, subscriber.Subscribe(events.EventTypeRouletteResolved, func(ctx context.Context, event events.Event) error {
		received = event
		return nil
	}))

	require.NoError(t, publisher.Publish(events.RouletteResolvedEvent{RoundID: 8, Result: 17, Bets: 2}))
	require.Len(t, bus.published, 1)

	handler := bus.handlers["economy.roulette.resolved"]
	require.NotNil(t, handler)
	require.NoError(t, handler(bus.published[0].data))

	resolved, ok := received.(*events.RouletteResolvedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(8), resolved.RoundID)
	assert.Equal(t, 17, resolved.Result)
}

func TestNATSEventSubscriber_RejectsGarbage(t *testing.T) {
	bus := newFakeMessageBus()
	subscriber := NewNATSEventSubscriber(bus, NewEventSubjectMapper())
	require.NoError(t, subscriber.Subscribe(events.EventTypeCrateOpened, func(ctx context.Context, event events.Event) error {
		return nil
	}))

	handler := bus.handlers["economy.crate.opened"]
	assert.Error(t, handler([]byte("not json")))

	unknown, err := json.Marshal(EventEnvelope{EventType: "mystery", Payload: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.Error(t, handler(unknown))
}

func TestNATSEventSubscriber_FansOutToEveryHandler(t *testing.T) {
	bus := newFakeMessageBus()
	mapper := NewEventSubjectMapper()
	publisher := NewNATSEventPublisher(bus, mapper)
	subscriber := NewNATSEventSubscriber(bus, mapper)

	var calls []string
	require.NoError(t, subscriber.Subscribe(events.EventTypeTempRoleExpired, func(ctx context.Context, event events.Event) error {
		calls = append(calls, "audit")
		return errors.New("audit sink down")
	}))
	require.NoError(t, subscriber.Subscribe(events.EventTypeTempRoleExpired, func(ctx context.Context, event events.Event) error {
		calls = append(calls, "notify")
		return nil
	}))

	require.NoError(t, publisher.Publish(events.TempRoleExpiredEvent{UserID: 1, GuildID: 2, RoleID: 3}))
	handler := bus.handlers["economy.temprole.expired"]
	require.NotNil(t, handler)

	err := handler(bus.published[0].data)
	assert.ErrorContains(t, err, "audit sink down")
	assert.Equal(t, []string{"audit", "notify"}, calls)
}
