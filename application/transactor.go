package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"
	"casino/economy-bot/infrastructure/observability"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const (
	defaultTxAttempts = 3
	defaultTxInterval = 100 * time.Millisecond

	defaultRetryInterval = time.Second
	maxRetryInterval     = 5 * time.Minute
)

// Transactor runs work inside a unit of work and replays it from scratch when
// the database aborts it with a deadlock or serialization failure
type Transactor struct {
	uowFactory      interfaces.UnitOfWorkFactory
	maxAttempts     uint64
	initialInterval time.Duration
}

// NewTransactor creates a transactor with the default retry policy
func NewTransactor(uowFactory interfaces.UnitOfWorkFactory) *Transactor {
	return NewTransactorWithPolicy(uowFactory, defaultTxAttempts, defaultTxInterval)
}

// NewTransactorWithPolicy creates a transactor with a custom attempt bound and first backoff
func NewTransactorWithPolicy(uowFactory interfaces.UnitOfWorkFactory, maxAttempts uint64, initialInterval time.Duration) *Transactor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Transactor{
		uowFactory:      uowFactory,
		maxAttempts:     maxAttempts,
		initialInterval: initialInterval,
	}
}

// Do runs fn in a fresh unit of work of the guild and commits it.
// fn may run more than once, so it must not have side effects outside the unit of work.
func (t *Transactor) Do(ctx context.Context, guildID int64, fn func(uow interfaces.UnitOfWork) error) error {
	operation := func() error {
		err := t.runOnce(ctx, guildID, fn)
		if err == nil || errors.Is(err, entities.ErrConcurrencyConflict) {
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, t.maxAttempts-1), ctx)

	return backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		observability.GetMetrics().RecordConflictRetry()
		log.WithFields(log.Fields{
			"guildID": guildID,
			"wait":    wait,
			"error":   err,
		}).Warn("Transaction conflict, retrying")
	})
}

func (t *Transactor) runOnce(ctx context.Context, guildID int64, fn func(uow interfaces.UnitOfWork) error) error {
	uow := t.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}

	return uow.Commit()
}

// newRetryBackOff paces timer work that failed. It never gives up; callers stop
// retrying when their own state says the work is gone.
func newRetryBackOff(initial time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.MaxInterval = maxRetryInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
