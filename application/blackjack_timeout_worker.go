package application

import (
	"context"
	"errors"
	"time"

	"casino/economy-bot/config"
	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const defaultTimeoutSweepInterval = 15 * time.Second

// BlackjackTimeoutWorker settles games nobody touched within the configured timeout
type BlackjackTimeoutWorker struct {
	tx        *Transactor
	table     *BlackjackTable
	responses ResponderFactory
	interval  time.Duration
}

// NewBlackjackTimeoutWorker creates a timeout worker. responses may be nil.
func NewBlackjackTimeoutWorker(tx *Transactor, table *BlackjackTable, responses ResponderFactory) *BlackjackTimeoutWorker {
	return &BlackjackTimeoutWorker{
		tx:        tx,
		table:     table,
		responses: responses,
		interval:  defaultTimeoutSweepInterval,
	}
}

// Start runs the sweep loop and returns its stop function
func (w *BlackjackTimeoutWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Info("Blackjack timeout worker started")
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			if n, err := w.Sweep(ctx); err != nil {
				log.Errorf("Error expiring idle blackjack games: %v", err)
			} else if n > 0 {
				log.Infof("Expired %d idle blackjack games", n)
			}

			select {
			case <-ctx.Done():
				log.Info("Blackjack timeout worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Blackjack timeout worker shutting down (stop requested)...")
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// Sweep expires every idle game and returns how many were settled
func (w *BlackjackTimeoutWorker) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-config.Get().Blackjack.Timeout)

	var idle []*entities.BlackjackSession
	err := w.tx.Do(ctx, 0, func(uow interfaces.UnitOfWork) error {
		var err error
		idle, err = uow.BlackjackRepository().GetIdleSince(ctx, cutoff)
		return err
	})
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, session := range idle {
		var responder interfaces.Responder
		if w.responses != nil {
			responder = w.responses.ForSession(session)
		}

		outcome, err := w.table.Expire(ctx, session.GuildID, session.UserID, cutoff, responder)
		if errors.Is(err, entities.ErrNoActiveSession) || errors.Is(err, entities.ErrGameNotIdle) {
			// The player finished or moved in the meantime
			continue
		}
		if outcome == nil {
			log.WithFields(log.Fields{
				"guildID":   session.GuildID,
				"userID":    session.UserID,
				"sessionID": session.ID,
				"error":     err,
			}).Error("Failed to expire blackjack game")
			continue
		}
		expired++

		if responder != nil {
			if err := responder.Notify(ctx, "Your blackjack game timed out and was settled as a stand."); err != nil {
				log.WithError(err).Debug("Failed to notify timed out player")
			}
		}
	}
	return expired, nil
}
