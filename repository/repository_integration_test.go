package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/events"
	"casino/economy-bot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testGuildID  = int64(111)
	otherGuildID = int64(222)
)

// bufferingPublisher mimics the transactional publisher: events are only
// delivered on Flush
type bufferingPublisher struct {
	mu        sync.Mutex
	pending   []events.Event
	delivered []events.Event
}

func (p *bufferingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, event)
	return nil
}

func (p *bufferingPublisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delivered = append(p.delivered, p.pending...)
	p.pending = nil
	return nil
}

func (p *bufferingPublisher) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = nil
}

func TestAccountRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewAccountRepository(testDB.DB, testGuildID)

	t.Run("ensure is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Ensure(ctx, 1))
		require.NoError(t, repo.UpdateBalances(ctx, 1, 500, 100))
		require.NoError(t, repo.Ensure(ctx, 1))

		account, err := repo.Get(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, int64(500), account.Cash)
		assert.Equal(t, int64(100), account.Bank)
	})

	t.Run("database rejects a negative total", func(t *testing.T) {
		require.NoError(t, repo.Ensure(ctx, 2))

		err := repo.UpdateBalances(ctx, 2, -200, 100)

		require.Error(t, err)
	})

	t.Run("leaderboard and rank are guild scoped", func(t *testing.T) {
		other := NewAccountRepository(testDB.DB, otherGuildID)
		require.NoError(t, other.Ensure(ctx, 1))
		require.NoError(t, other.UpdateBalances(ctx, 1, 1_000_000, 0))

		require.NoError(t, repo.Ensure(ctx, 3))
		require.NoError(t, repo.UpdateBalances(ctx, 3, 50, 900))

		top, err := repo.GetTop(ctx, entities.LeaderboardSortTotal, 10)
		require.NoError(t, err)
		require.Len(t, top, 3)
		assert.Equal(t, int64(3), top[0].UserID)
		assert.Equal(t, int64(950), top[0].Total)
		assert.Equal(t, int64(1), top[1].UserID)

		rank, err := repo.GetRank(ctx, 1, entities.LeaderboardSortCash)
		require.NoError(t, err)
		assert.Equal(t, 1, rank)

		rank, err = repo.GetRank(ctx, 999, entities.LeaderboardSortCash)
		require.NoError(t, err)
		assert.Equal(t, 0, rank)

		totals, err := repo.GetTotals(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), totals.Accounts)
		assert.Equal(t, int64(550), totals.Cash)
	})
}

func TestUnitOfWork_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	t.Run("commit persists and flushes events", func(t *testing.T) {
		publisher := &bufferingPublisher{}
		uow := CreateTestUnitOfWork(testDB.DB, testGuildID, publisher)
		require.NoError(t, uow.Begin(ctx))

		require.NoError(t, uow.AccountRepository().Ensure(ctx, 10))
		require.NoError(t, uow.AccountRepository().UpdateBalances(ctx, 10, 100, 0))
		entry := testutil.CreateTestLedgerEntry(10, 0, 100, entities.TransactionTypeIncome)
		require.NoError(t, uow.LedgerRepository().Record(ctx, entry))
		require.NoError(t, uow.EventBus().Publish(events.BalanceChangeEvent{UserID: 10, GuildID: testGuildID, NewBalance: 100}))

		require.NoError(t, uow.Commit())
		require.NoError(t, uow.Rollback())

		assert.Len(t, publisher.delivered, 1)

		history, err := NewLedgerRepositoryScoped(testDB.DB.Pool, testGuildID).GetByUser(ctx, 10, 5)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, entities.BalanceKindCash, history[0].Kind)
		assert.Equal(t, int64(100), history[0].BalanceAfter)
		assert.Equal(t, true, history[0].Metadata["test"])
	})

	t.Run("rollback discards writes and events", func(t *testing.T) {
		publisher := &bufferingPublisher{}
		uow := CreateTestUnitOfWork(testDB.DB, testGuildID, publisher)
		require.NoError(t, uow.Begin(ctx))

		require.NoError(t, uow.AccountRepository().Ensure(ctx, 11))
		require.NoError(t, uow.EventBus().Publish(events.BalanceChangeEvent{UserID: 11}))

		require.NoError(t, uow.Rollback())

		assert.Empty(t, publisher.delivered)
		assert.Empty(t, publisher.pending)

		account, err := NewAccountRepository(testDB.DB, testGuildID).Get(ctx, 11)
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("repositories need Begin", func(t *testing.T) {
		uow := CreateTestUnitOfWork(testDB.DB, testGuildID, &bufferingPublisher{})
		assert.Panics(t, func() { uow.AccountRepository() })
	})
}

func TestTempRoleRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	scoped := NewTempRoleRepositoryScoped(testDB.DB.Pool, testGuildID)
	other := NewTempRoleRepositoryScoped(testDB.DB.Pool, otherGuildID)
	unscoped := NewTempRoleRepositoryScoped(testDB.DB.Pool, 0)

	expired := testutil.CreateTestTempRole(testGuildID, 1, 42, -time.Minute)
	active := testutil.CreateTestTempRole(testGuildID, 2, 42, time.Hour)
	foreign := testutil.CreateTestTempRole(otherGuildID, 1, 42, time.Hour)
	require.NoError(t, scoped.Upsert(ctx, expired))
	require.NoError(t, scoped.Upsert(ctx, active))
	require.NoError(t, other.Upsert(ctx, foreign))

	t.Run("unscoped listing spans guilds", func(t *testing.T) {
		all, err := unscoped.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		mine, err := scoped.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, mine, 2)
	})

	t.Run("only expired grants are deleted", func(t *testing.T) {
		now := time.Now()

		deleted, err := scoped.DeleteIfExpired(ctx, 2, 42, now)
		require.NoError(t, err)
		assert.False(t, deleted)

		deleted, err = scoped.DeleteIfExpired(ctx, 1, 42, now)
		require.NoError(t, err)
		assert.True(t, deleted)

		grant, err := other.Get(ctx, 1, 42)
		require.NoError(t, err)
		require.NotNil(t, grant)
	})

	t.Run("upsert moves the expiry", func(t *testing.T) {
		moved := testutil.CreateTestTempRole(testGuildID, 2, 42, 3*time.Hour)
		require.NoError(t, scoped.Upsert(ctx, moved))

		grant, err := scoped.Get(ctx, 2, 42)
		require.NoError(t, err)
		require.NotNil(t, grant)
		assert.WithinDuration(t, moved.ExpiresAt, grant.ExpiresAt, time.Millisecond)
	})
}

func TestShopAndInventory_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	shop := NewShopRepositoryScoped(testDB.DB.Pool, testGuildID)
	inventory := NewInventoryRepositoryScoped(testDB.DB.Pool, testGuildID)
	crates := NewCrateRepositoryScoped(testDB.DB.Pool, testGuildID)

	crate := testutil.CreateTestCrate(testGuildID, "gold", 500)
	require.NoError(t, shop.Create(ctx, crate))
	require.NotZero(t, crate.ID)

	t.Run("items resolve by external id and name", func(t *testing.T) {
		byExternal, err := shop.GetByExternalID(ctx, "gold")
		require.NoError(t, err)
		require.NotNil(t, byExternal)
		assert.Equal(t, crate.ID, byExternal.ID)

		byName, err := shop.GetByName(ctx, "crate GOLD")
		require.NoError(t, err)
		require.NotNil(t, byName)
		assert.Equal(t, crate.ID, byName.ID)
	})

	t.Run("inventory removal is capped by what is held", func(t *testing.T) {
		require.NoError(t, inventory.Add(ctx, 5, crate.ID, 2))
		require.NoError(t, inventory.Add(ctx, 5, crate.ID, 1))

		removed, err := inventory.Remove(ctx, 5, crate.ID, 5)
		require.NoError(t, err)
		assert.Equal(t, 3, removed)

		quantity, err := inventory.GetQuantityForUpdate(ctx, 5, crate.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, quantity)
	})

	t.Run("crate rewards keep insertion order", func(t *testing.T) {
		require.NoError(t, crates.AddReward(ctx, testutil.CreateTestCrateReward(testGuildID, "gold", "100", 70)))
		require.NoError(t, crates.AddReward(ctx, testutil.CreateTestCrateReward(testGuildID, "gold", "1000", 30)))

		rewards, err := crates.GetRewards(ctx, "gold")
		require.NoError(t, err)
		require.Len(t, rewards, 2)
		assert.Equal(t, "100", rewards[0].Value)
		assert.Equal(t, 30, rewards[1].Chance)
	})

	t.Run("deactivation clears inventories", func(t *testing.T) {
		require.NoError(t, inventory.Add(ctx, 6, crate.ID, 4))
		require.NoError(t, shop.Deactivate(ctx, crate.ID))

		cleared, err := inventory.RemoveItemEverywhere(ctx, crate.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), cleared)

		item, err := shop.GetByID(ctx, crate.ID)
		require.NoError(t, err)
		assert.Nil(t, item)
	})
}
