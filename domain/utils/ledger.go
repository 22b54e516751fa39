package utils

import (
	"context"
	"fmt"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/events"
	"casino/economy-bot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RecordBalanceChange records a ledger entry and emits a balance change event.
// This is the single entry point for all balance changes in the system.
func RecordBalanceChange(ctx context.Context, ledgerRepo interfaces.LedgerRepository, eventPublisher interfaces.EventPublisher, entry *entities.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid ledger entry for user %d: %w", entry.UserID, err)
	}

	if err := ledgerRepo.Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	event := events.BalanceChangeEvent{
		UserID:          entry.UserID,
		GuildID:         entry.GuildID,
		Kind:            entry.Kind,
		OldBalance:      entry.BalanceBefore,
		NewBalance:      entry.BalanceAfter,
		ChangeAmount:    entry.Amount,
		TransactionType: entry.TransactionType,
	}
	log.WithFields(log.Fields{
		"userID":          event.UserID,
		"guildID":         event.GuildID,
		"kind":            event.Kind,
		"oldBalance":      event.OldBalance,
		"newBalance":      event.NewBalance,
		"transactionType": event.TransactionType,
	}).Debug("Publishing BalanceChangeEvent")

	// The ledger row is the source of truth, a lost event must not undo the change
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	return nil
}
