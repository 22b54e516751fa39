package services

import (
	"context"
	"testing"
	"time"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/events"
	"casino/economy-bot/domain/interfaces"
	"casino/economy-bot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testCrateItemID = int64(10)
	testGemItemID   = int64(20)
	testTempRoleID  = int64(777)
)

func testCrate() *entities.ShopItem {
	ext := TestCrateID
	return &entities.ShopItem{
		ID:         testCrateItemID,
		GuildID:    TestGuildID,
		Type:       entities.ItemTypeCase,
		Name:       "Gold crate",
		Price:      1000,
		ExternalID: &ext,
		Active:     true,
	}
}

// testDropTable has the cumulative bounds 40, 60, 80, 90, 100
func testDropTable() []*entities.CrateReward {
	perm := drop(2, entities.RewardTypeRolePerm, "424242", 20)
	perm.CompCoins = 50
	temp := drop(3, entities.RewardTypeRoleTemp, "777", 20)
	temp.DurationSecs = 3600
	temp.CompCoins = 25
	return []*entities.CrateReward{
		drop(1, entities.RewardTypeCoinsCash, "100", 40),
		perm,
		temp,
		drop(4, entities.RewardTypeItem, "gem", 10),
		drop(5, entities.RewardType("pet"), "dog", 10),
	}
}

func newTestCrateService(mocks *TestMocks, rng interfaces.RandomSource) interfaces.CrateService {
	return NewCrateService(
		TestGuildID,
		mocks.CrateRepo,
		mocks.ShopRepo,
		mocks.InventoryRepo,
		mocks.TempRoleRepo,
		mocks.Balance(),
		mocks.RoleManager,
		mocks.EventPublisher,
		rng,
	)
}

func expectCrateLookup(mocks *TestMocks, owned int, table []*entities.CrateReward) {
	mocks.ShopRepo.On("GetByID", mock.Anything, testCrateItemID).Return(testCrate(), nil)
	mocks.InventoryRepo.On("GetQuantityForUpdate", mock.Anything, TestUser1ID, testCrateItemID).Return(owned, nil)
	mocks.CrateRepo.On("GetRewards", mock.Anything, TestCrateID).Return(table, nil)
}

func TestCrateService_OpenCrate_MixedRewards(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)

	// cash, perm role, same perm role again, temp role, unknown type
	rng := &testhelpers.ScriptedRandom{Floats: []float64{0.10, 0.50, 0.55, 0.70, 0.95}}

	expectCrateLookup(mocks, 7, testDropTable())
	mocks.RoleManager.On("HasRole", mock.Anything, TestGuildID, TestUser1ID, TestRoleID).Return(false, nil).Once()
	mocks.TempRoleRepo.On("Get", mock.Anything, TestUser1ID, testTempRoleID).Return(nil, nil).Once()
	mocks.InventoryRepo.On("Remove", mock.Anything, TestUser1ID, testCrateItemID, 5).Return(5, nil)
	mocks.TempRoleRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(g *entities.TempRoleGrant) bool {
		return g.RoleID == testTempRoleID &&
			g.GuildID == TestGuildID &&
			time.Until(g.ExpiresAt) > 59*time.Minute &&
			time.Until(g.ExpiresAt) <= time.Hour
	})).Return(nil)

	helper.ExpectAccountLock(NewAccount(TestUser1ID, 0, 0))
	helper.ExpectBalanceUpdate(TestUser1ID, 100, 0)
	helper.ExpectLedgerEntry(TestUser1ID, entities.BalanceKindCash, 0, 100, entities.TransactionTypeCrateReward)

	helper.ExpectAccountLock(NewAccount(TestUser1ID, 100, 0))
	helper.ExpectBalanceUpdate(TestUser1ID, 100, 50)
	helper.ExpectLedgerEntry(TestUser1ID, entities.BalanceKindBank, 0, 50, entities.TransactionTypeCompensation)

	mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		opened, ok := e.(events.CrateOpenedEvent)
		return ok && opened.Opened == 5 && opened.CoinsGranted == 150 && opened.RolesGranted == 2
	})).Return(nil).Once()

	summary, err := newTestCrateService(mocks, rng).OpenCrate(ctx, TestUser1ID, testCrateItemID, 5)
	require.NoError(t, err)

	assert.Equal(t, int64(100), summary.CashGranted)
	assert.Equal(t, int64(0), summary.BankGranted)
	assert.Equal(t, int64(50), summary.CompensationTotal)
	assert.Equal(t, int64(50), summary.CompensationByRole[TestRoleID])
	assert.Equal(t, 1, summary.RolesGranted[TestRoleID])
	assert.Equal(t, 1, summary.RolesGranted[testTempRoleID])
	assert.True(t, summary.RolesExtended[testTempRoleID].Granted)
	assert.Equal(t, int64(3600), summary.RolesExtended[testTempRoleID].SecondsAdded)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, int64(150), summary.TotalCoins())

	mocks.AssertAllExpectations(t)
}

func TestCrateService_OpenCrate_TempRoleStacks(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)

	rng := &testhelpers.ScriptedRandom{Floats: []float64{0.70, 0.75}}
	originalExpiry := time.Now().Add(time.Hour).Truncate(time.Second)

	expectCrateLookup(mocks, 2, testDropTable())
	mocks.TempRoleRepo.On("Get", mock.Anything, TestUser1ID, testTempRoleID).Return(&entities.TempRoleGrant{
		UserID:    TestUser1ID,
		GuildID:   TestGuildID,
		RoleID:    testTempRoleID,
		ExpiresAt: originalExpiry,
	}, nil).Once()
	mocks.InventoryRepo.On("Remove", mock.Anything, TestUser1ID, testCrateItemID, 2).Return(2, nil)
	mocks.TempRoleRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(g *entities.TempRoleGrant) bool {
		return g.ExpiresAt.Equal(originalExpiry.Add(2 * time.Hour))
	})).Return(nil)

	helper.ExpectAccountLock(NewAccount(TestUser1ID, 0, 10))
	helper.ExpectBalanceUpdate(TestUser1ID, 0, 60)
	helper.ExpectLedgerEntry(TestUser1ID, entities.BalanceKindBank, 10, 60, entities.TransactionTypeCompensation)
	helper.ExpectEventPublish(events.EventTypeCrateOpened)

	summary, err := newTestCrateService(mocks, rng).OpenCrate(ctx, TestUser1ID, testCrateItemID, 2)
	require.NoError(t, err)

	ext := summary.RolesExtended[testTempRoleID]
	assert.False(t, ext.Granted)
	assert.Equal(t, int64(7200), ext.SecondsAdded)
	assert.True(t, ext.ExpiresAt.Equal(originalExpiry.Add(2*time.Hour)))
	assert.Empty(t, summary.RolesGranted)
	assert.Equal(t, int64(50), summary.CompensationTotal)

	mocks.RoleManager.AssertNotCalled(t, "HasRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mocks.AssertAllExpectations(t)
}

func TestCrateService_OpenCrate_ItemsAreBatched(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)

	rng := &testhelpers.ScriptedRandom{Floats: []float64{0.85, 0.81, 0.89}}

	expectCrateLookup(mocks, 3, testDropTable())
	mocks.ShopRepo.On("GetByExternalID", mock.Anything, "gem").Return(&entities.ShopItem{
		ID:     testGemItemID,
		Type:   entities.ItemTypeItem,
		Name:   "Gem",
		Active: true,
	}, nil).Once()
	mocks.InventoryRepo.On("Remove", mock.Anything, TestUser1ID, testCrateItemID, 3).Return(3, nil)
	mocks.InventoryRepo.On("Add", mock.Anything, TestUser1ID, testGemItemID, 3).Return(nil).Once()
	helper.ExpectEventPublish(events.EventTypeCrateOpened)

	summary, err := newTestCrateService(mocks, rng).OpenCrate(ctx, TestUser1ID, testCrateItemID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.ItemsGranted["gem"])
	assert.Zero(t, summary.TotalCoins())

	mocks.AccountRepo.AssertNotCalled(t, "UpdateBalances", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mocks.AssertAllExpectations(t)
}

func TestCrateService_OpenCrate_Misconfigured(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()

	table := []*entities.CrateReward{
		drop(1, entities.RewardTypeCoinsCash, "100", 50),
		drop(2, entities.RewardTypeCoinsBank, "100", 49),
	}
	expectCrateLookup(mocks, 1, table)

	_, err := newTestCrateService(mocks, &testhelpers.ScriptedRandom{}).OpenCrate(ctx, TestUser1ID, testCrateItemID, 1)
	require.ErrorIs(t, err, entities.ErrMisconfiguredReward)

	mocks.InventoryRepo.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mocks.AccountRepo.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
}

func TestCrateService_OpenCrate_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("count below one", func(t *testing.T) {
		mocks := NewTestMocks()
		_, err := newTestCrateService(mocks, &testhelpers.ScriptedRandom{}).OpenCrate(ctx, TestUser1ID, testCrateItemID, 0)
		assert.ErrorIs(t, err, entities.ErrInvalidAmount)
		mocks.ShopRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("more than owned", func(t *testing.T) {
		mocks := NewTestMocks()
		mocks.ShopRepo.On("GetByID", mock.Anything, testCrateItemID).Return(testCrate(), nil)
		mocks.InventoryRepo.On("GetQuantityForUpdate", mock.Anything, TestUser1ID, testCrateItemID).Return(2, nil)

		_, err := newTestCrateService(mocks, &testhelpers.ScriptedRandom{}).OpenCrate(ctx, TestUser1ID, testCrateItemID, 3)
		assert.ErrorIs(t, err, entities.ErrInsufficientItems)
		assert.ErrorIs(t, err, entities.ErrInvalidAmount)
	})

	t.Run("not a crate", func(t *testing.T) {
		mocks := NewTestMocks()
		mocks.ShopRepo.On("GetByID", mock.Anything, testCrateItemID).Return(&entities.ShopItem{
			ID:     testCrateItemID,
			Type:   entities.ItemTypeItem,
			Active: true,
		}, nil)

		_, err := newTestCrateService(mocks, &testhelpers.ScriptedRandom{}).OpenCrate(ctx, TestUser1ID, testCrateItemID, 1)
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})

	t.Run("not in inventory", func(t *testing.T) {
		mocks := NewTestMocks()
		mocks.ShopRepo.On("GetByID", mock.Anything, testCrateItemID).Return(testCrate(), nil)
		mocks.InventoryRepo.On("GetQuantityForUpdate", mock.Anything, TestUser1ID, testCrateItemID).Return(0, nil)

		_, err := newTestCrateService(mocks, &testhelpers.ScriptedRandom{}).OpenCrate(ctx, TestUser1ID, testCrateItemID, 1)
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})
}

func TestCrateService_AddReward(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	service := newTestCrateService(mocks, &testhelpers.ScriptedRandom{})

	bad := drop(0, entities.RewardType("pet"), "dog", 10)
	assert.ErrorIs(t, service.AddReward(ctx, bad), entities.ErrMisconfiguredReward)

	good := drop(0, entities.RewardTypeCoinsBank, "250", 30)
	good.GuildID = 0
	mocks.CrateRepo.On("AddReward", ctx, mock.MatchedBy(func(r *entities.CrateReward) bool {
		return r.GuildID == TestGuildID && r.Value == "250"
	})).Return(nil)

	require.NoError(t, service.AddReward(ctx, good))
	mocks.AssertAllExpectations(t)
}

func TestCrateService_DeleteRewardNotFound(t *testing.T) {
	ctx := context.Background()
	mocks := NewTestMocks()
	mocks.CrateRepo.On("GetReward", ctx, int64(99)).Return(nil, nil)

	err := newTestCrateService(mocks, &testhelpers.ScriptedRandom{}).DeleteReward(ctx, 99)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}
