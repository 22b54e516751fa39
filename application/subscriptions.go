package application

import (
	"context"

	"casino/economy-bot/domain"
	"casino/economy-bot/domain/events"

	log "github.com/sirupsen/logrus"
)

const defaultLargeChangeThreshold = 1_000_000

// EventAuditor writes an audit trail of committed economy events received from the bus
type EventAuditor struct {
	largeChangeThreshold int64
}

// NewEventAuditor creates an auditor. Balance changes of at least threshold are flagged.
func NewEventAuditor(threshold int64) *EventAuditor {
	if threshold <= 0 {
		threshold = defaultLargeChangeThreshold
	}
	return &EventAuditor{largeChangeThreshold: threshold}
}

// RegisterApplicationSubscriptions subscribes the auditor to the economy events
func RegisterApplicationSubscriptions(subscriber domain.EventSubscriber, auditor *EventAuditor) error {
	handlers := map[events.EventType]func(context.Context, events.Event) error{
		events.EventTypeBalanceChange:    auditor.HandleBalanceChange,
		events.EventTypeBlackjackSettled: auditor.HandleBlackjackSettled,
		events.EventTypeTempRoleExpired:  auditor.HandleTempRoleExpired,
	}
	for eventType, handler := range handlers {
		if err := subscriber.Subscribe(eventType, handler); err != nil {
			return err
		}
	}
	return nil
}

// HandleBalanceChange flags unusually large balance movements
func (a *EventAuditor) HandleBalanceChange(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[*events.BalanceChangeEvent](event, "*events.BalanceChangeEvent")
	if err != nil {
		return err
	}
	change := e.ChangeAmount
	if change < 0 {
		change = -change
	}
	if change < a.largeChangeThreshold {
		return nil
	}
	log.WithFields(log.Fields{
		"guildID":         e.GuildID,
		"userID":          e.UserID,
		"kind":            e.Kind,
		"change":          e.ChangeAmount,
		"newBalance":      e.NewBalance,
		"transactionType": e.TransactionType,
	}).Warn("Large balance change")
	return nil
}

// HandleBlackjackSettled records games that ended by timeout
func (a *EventAuditor) HandleBlackjackSettled(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[*events.BlackjackSettledEvent](event, "*events.BlackjackSettledEvent")
	if err != nil {
		return err
	}
	if !e.TimedOut {
		return nil
	}
	log.WithFields(log.Fields{
		"guildID":   e.GuildID,
		"userID":    e.UserID,
		"sessionID": e.SessionID,
		"result":    e.Result,
		"payout":    e.Payout,
	}).Info("Blackjack game settled by timeout")
	return nil
}

// HandleTempRoleExpired records revoked temporary roles
func (a *EventAuditor) HandleTempRoleExpired(ctx context.Context, event events.Event) error {
	e, err := AssertEventType[*events.TempRoleExpiredEvent](event, "*events.TempRoleExpiredEvent")
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"guildID":   e.GuildID,
		"userID":    e.UserID,
		"roleID":    e.RoleID,
		"expiredAt": e.ExpiredAt,
	}).Info("Temporary role revoked")
	return nil
}
