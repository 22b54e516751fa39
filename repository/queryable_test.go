package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"casino/economy-bot/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockGuildID = int64(555555555)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, pool.ExpectationsWereMet())
		pool.Close()
	})
	return pool
}

func TestMapPgError(t *testing.T) {
	onUnique := errors.New("duplicate")

	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantRaw bool
	}{
		{name: "deadlock", err: &pgconn.PgError{Code: pgDeadlockDetected}, wantIs: entities.ErrConcurrencyConflict},
		{name: "serialization failure", err: &pgconn.PgError{Code: pgSerializationFailure}, wantIs: entities.ErrConcurrencyConflict},
		{name: "unique violation", err: &pgconn.PgError{Code: pgUniqueViolation}, wantIs: onUnique},
		{name: "check violation passes through", err: &pgconn.PgError{Code: "23514"}, wantRaw: true},
		{name: "plain error passes through", err: errors.New("broken pipe"), wantRaw: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapPgError(tt.err, onUnique)
			if tt.wantRaw {
				assert.Equal(t, tt.err, got)
				return
			}
			assert.ErrorIs(t, got, tt.wantIs)
		})
	}

	t.Run("unique violation without mapping passes through", func(t *testing.T) {
		err := &pgconn.PgError{Code: pgUniqueViolation}
		assert.Equal(t, error(err), mapPgError(err, nil))
	})
}

func TestAccountRepository_Mock(t *testing.T) {
	ctx := context.Background()

	t.Run("missing account returns nil", func(t *testing.T) {
		pool := newMockPool(t)
		repo := NewAccountRepositoryScoped(pool, mockGuildID)

		pool.ExpectQuery(regexp.QuoteMeta("FROM accounts")).
			WithArgs(int64(7), mockGuildID).
			WillReturnError(pgx.ErrNoRows)

		account, err := repo.Get(ctx, 7)

		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("locked read scans the row", func(t *testing.T) {
		pool := newMockPool(t)
		repo := NewAccountRepositoryScoped(pool, mockGuildID)
		now := time.Now()

		pool.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WithArgs(int64(7), mockGuildID).
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "guild_id", "cash", "bank", "created_at", "updated_at"}).
				AddRow(int64(7), mockGuildID, int64(-50), int64(200), now, now))

		account, err := repo.GetForUpdate(ctx, 7)

		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, int64(-50), account.Cash)
		assert.Equal(t, int64(150), account.Total())
	})

	t.Run("deadlock is reported as a conflict", func(t *testing.T) {
		pool := newMockPool(t)
		repo := NewAccountRepositoryScoped(pool, mockGuildID)

		pool.ExpectExec(regexp.QuoteMeta("UPDATE accounts")).
			WithArgs(int64(7), mockGuildID, int64(10), int64(20)).
			WillReturnError(&pgconn.PgError{Code: pgDeadlockDetected, Message: "deadlock detected"})

		err := repo.UpdateBalances(ctx, 7, 10, 20)

		assert.ErrorIs(t, err, entities.ErrConcurrencyConflict)
	})

	t.Run("update of a missing account is not found", func(t *testing.T) {
		pool := newMockPool(t)
		repo := NewAccountRepositoryScoped(pool, mockGuildID)

		pool.ExpectExec(regexp.QuoteMeta("UPDATE accounts")).
			WithArgs(int64(7), mockGuildID, int64(10), int64(20)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateBalances(ctx, 7, 10, 20)

		assert.ErrorIs(t, err, entities.ErrNotFound)
	})
}

func TestLedgerRepository_Record_Mock(t *testing.T) {
	pool := newMockPool(t)
	repo := NewLedgerRepositoryScoped(pool, mockGuildID)
	now := time.Now()

	entry := &entities.LedgerEntry{
		UserID:          7,
		Kind:            entities.BalanceKindCash,
		Amount:          100,
		BalanceBefore:   0,
		BalanceAfter:    100,
		TransactionType: entities.TransactionTypeIncome,
	}
	pool.ExpectQuery(regexp.QuoteMeta("INSERT INTO ledger_entries")).
		WithArgs(int64(7), mockGuildID, entities.BalanceKindCash, int64(100), int64(0), int64(100), entities.TransactionTypeIncome, map[string]any{}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(99), now))

	require.NoError(t, repo.Record(context.Background(), entry))

	assert.Equal(t, int64(99), entry.ID)
	assert.Equal(t, mockGuildID, entry.GuildID)
	assert.Equal(t, now, entry.CreatedAt)
}

func TestCooldownRepository_Get_Mock(t *testing.T) {
	pool := newMockPool(t)
	repo := NewCooldownRepositoryScoped(pool, mockGuildID)

	pool.ExpectQuery(regexp.QuoteMeta("FROM cooldowns")).
		WithArgs(int64(7), mockGuildID, "work").
		WillReturnError(pgx.ErrNoRows)

	cooldown, err := repo.Get(context.Background(), 7, "work")

	require.NoError(t, err)
	assert.Nil(t, cooldown)
	assert.Zero(t, cooldown.Remaining(time.Hour, time.Now()))
}

func TestTempRoleRepository_DeleteIfExpired_Mock(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("expired grant is deleted", func(t *testing.T) {
		pool := newMockPool(t)
		repo := NewTempRoleRepositoryScoped(pool, mockGuildID)

		pool.ExpectExec(regexp.QuoteMeta("DELETE FROM temp_roles")).
			WithArgs(int64(7), mockGuildID, int64(42), now).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		deleted, err := repo.DeleteIfExpired(ctx, 7, 42, now)

		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("extended grant survives", func(t *testing.T) {
		pool := newMockPool(t)
		repo := NewTempRoleRepositoryScoped(pool, mockGuildID)

		pool.ExpectExec(regexp.QuoteMeta("DELETE FROM temp_roles")).
			WithArgs(int64(7), mockGuildID, int64(42), now).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		deleted, err := repo.DeleteIfExpired(ctx, 7, 42, now)

		require.NoError(t, err)
		assert.False(t, deleted)
	})
}
