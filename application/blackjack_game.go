package application

import (
	"context"
	"fmt"
	"time"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// BlackjackTable runs blackjack games. Each step commits before the responder
// sees it, and one member never has two steps in flight.
type BlackjackTable struct {
	tx    *Transactor
	rng   interfaces.RandomSource
	roles interfaces.RoleManager
	locks *keyedMutex
}

// NewBlackjackTable creates a blackjack table
func NewBlackjackTable(tx *Transactor, rng interfaces.RandomSource, roles interfaces.RoleManager) *BlackjackTable {
	return &BlackjackTable{
		tx:    tx,
		rng:   rng,
		roles: roles,
		locks: newKeyedMutex(),
	}
}

// Start deals a new game and reports it through responder
func (b *BlackjackTable) Start(ctx context.Context, guildID, channelID, userID int64, bet int64, responder interfaces.Responder) (*entities.BlackjackOutcome, error) {
	return b.step(ctx, guildID, userID, responder, func(svc interfaces.BlackjackService) (*entities.BlackjackOutcome, error) {
		return svc.StartGame(ctx, userID, channelID, bet)
	})
}

// Act applies a player action to the running game
func (b *BlackjackTable) Act(ctx context.Context, guildID, userID int64, action entities.BlackjackAction, responder interfaces.Responder) (*entities.BlackjackOutcome, error) {
	return b.step(ctx, guildID, userID, responder, func(svc interfaces.BlackjackService) (*entities.BlackjackOutcome, error) {
		return svc.ApplyAction(ctx, userID, action)
	})
}

// Expire settles a game untouched since idleSince as a stand
func (b *BlackjackTable) Expire(ctx context.Context, guildID, userID int64, idleSince time.Time, responder interfaces.Responder) (*entities.BlackjackOutcome, error) {
	return b.step(ctx, guildID, userID, responder, func(svc interfaces.BlackjackService) (*entities.BlackjackOutcome, error) {
		return svc.ExpireGame(ctx, userID, idleSince)
	})
}

// Active returns the running game of a member
func (b *BlackjackTable) Active(ctx context.Context, guildID, userID int64) (*entities.BlackjackOutcome, error) {
	var outcome *entities.BlackjackOutcome
	err := b.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		outcome, err = newGuildServices(uow, guildID, b.rng, b.roles).Blackjack().GetActiveGame(ctx, userID)
		return err
	})
	return outcome, err
}

// AttachMessage records which message shows the game so timeouts can edit it
func (b *BlackjackTable) AttachMessage(ctx context.Context, guildID, userID, channelID, messageID int64) error {
	return b.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		return newGuildServices(uow, guildID, b.rng, b.roles).Blackjack().AttachMessage(ctx, userID, channelID, messageID)
	})
}

func (b *BlackjackTable) step(
	ctx context.Context,
	guildID, userID int64,
	responder interfaces.Responder,
	apply func(svc interfaces.BlackjackService) (*entities.BlackjackOutcome, error),
) (*entities.BlackjackOutcome, error) {
	unlock := b.locks.Lock(userID)
	defer unlock()

	var outcome *entities.BlackjackOutcome
	err := b.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		outcome, err = apply(newGuildServices(uow, guildID, b.rng, b.roles).Blackjack())
		return err
	})
	if err != nil {
		return nil, err
	}

	if responder != nil {
		if err := responder.RespondWith(ctx, outcome); err != nil {
			// The step is committed, only its presentation failed
			log.WithFields(log.Fields{
				"guildID": guildID,
				"userID":  userID,
				"error":   err,
			}).Warn("Failed to present blackjack outcome")
			return outcome, fmt.Errorf("game saved but response failed: %w", err)
		}
	}
	return outcome, nil
}
