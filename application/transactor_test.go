package application

import (
	"context"
	"errors"
	"testing"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactor_Do(t *testing.T) {
	ctx := context.Background()

	t.Run("commits successful work once", func(t *testing.T) {
		factory := newFakeUnitOfWorkFactory()
		tx := newTestTransactor(factory)

		calls := 0
		err := tx.Do(ctx, testGuildID, func(uow interfaces.UnitOfWork) error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		created := factory.Created()
		require.Len(t, created, 1)
		assert.Equal(t, testGuildID, created[0].guildID)
		assert.True(t, created[0].committed)
		assert.False(t, created[0].rolledBack)
	})

	t.Run("replays work after a conflict", func(t *testing.T) {
		factory := newFakeUnitOfWorkFactory()
		factory.commitErrs = []error{entities.ErrConcurrencyConflict}
		tx := newTestTransactor(factory)

		calls := 0
		err := tx.Do(ctx, testGuildID, func(uow interfaces.UnitOfWork) error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		created := factory.Created()
		require.Len(t, created, 2)
		assert.True(t, created[0].rolledBack)
		assert.True(t, created[1].committed)
	})

	t.Run("gives up after the attempt bound", func(t *testing.T) {
		factory := newFakeUnitOfWorkFactory()
		factory.commitErrs = []error{
			entities.ErrConcurrencyConflict,
			entities.ErrConcurrencyConflict,
			entities.ErrConcurrencyConflict,
			entities.ErrConcurrencyConflict,
		}
		tx := newTestTransactor(factory)

		calls := 0
		err := tx.Do(ctx, testGuildID, func(uow interfaces.UnitOfWork) error {
			calls++
			return nil
		})

		assert.ErrorIs(t, err, entities.ErrConcurrencyConflict)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry domain errors", func(t *testing.T) {
		factory := newFakeUnitOfWorkFactory()
		tx := newTestTransactor(factory)

		calls := 0
		err := tx.Do(ctx, testGuildID, func(uow interfaces.UnitOfWork) error {
			calls++
			return entities.NewInsufficientFunds(100, 10)
		})

		assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
		var funds *entities.InsufficientFundsError
		assert.True(t, errors.As(err, &funds))
		assert.Equal(t, 1, calls)
		created := factory.Created()
		require.Len(t, created, 1)
		assert.True(t, created[0].rolledBack)
		assert.False(t, created[0].committed)
	})

	t.Run("reports begin failures", func(t *testing.T) {
		factory := newFakeUnitOfWorkFactory()
		factory.beginErr = errors.New("connection refused")
		tx := newTestTransactor(factory)

		err := tx.Do(ctx, testGuildID, func(uow interfaces.UnitOfWork) error {
			t.Fatal("work must not run without a transaction")
			return nil
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		factory := newFakeUnitOfWorkFactory()
		factory.commitErrs = []error{entities.ErrConcurrencyConflict, entities.ErrConcurrencyConflict}
		tx := newTestTransactor(factory)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := tx.Do(cancelled, testGuildID, func(uow interfaces.UnitOfWork) error {
			return nil
		})

		require.Error(t, err)
		assert.LessOrEqual(t, len(factory.Created()), 1)
	})
}
