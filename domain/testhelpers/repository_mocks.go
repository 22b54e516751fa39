package testhelpers

import (
	"context"
	"time"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Ensure(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAccountRepository) Get(ctx context.Context, userID int64) (*entities.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetForUpdate(ctx context.Context, userID int64) (*entities.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateBalances(ctx context.Context, userID int64, cash, bank int64) error {
	args := m.Called(ctx, userID, cash, bank)
	return args.Error(0)
}

func (m *MockAccountRepository) GetTop(ctx context.Context, sortBy entities.LeaderboardSort, limit int) ([]*entities.LeaderboardEntry, error) {
	args := m.Called(ctx, sortBy, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LeaderboardEntry), args.Error(1)
}

func (m *MockAccountRepository) GetRank(ctx context.Context, userID int64, sortBy entities.LeaderboardSort) (int, error) {
	args := m.Called(ctx, userID, sortBy)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) GetTotals(ctx context.Context) (*entities.GuildTotals, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildTotals), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}

// MockCooldownRepository is a mock implementation of CooldownRepository
type MockCooldownRepository struct {
	mock.Mock
}

func (m *MockCooldownRepository) Get(ctx context.Context, userID int64, command string) (*entities.Cooldown, error) {
	args := m.Called(ctx, userID, command)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Cooldown), args.Error(1)
}

func (m *MockCooldownRepository) Touch(ctx context.Context, userID int64, command string, at time.Time) error {
	args := m.Called(ctx, userID, command, at)
	return args.Error(0)
}

// MockShopRepository is a mock implementation of ShopRepository
type MockShopRepository struct {
	mock.Mock
}

func (m *MockShopRepository) Create(ctx context.Context, item *entities.ShopItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockShopRepository) Update(ctx context.Context, item *entities.ShopItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockShopRepository) Deactivate(ctx context.Context, itemID int64) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockShopRepository) GetByID(ctx context.Context, itemID int64) (*entities.ShopItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ShopItem), args.Error(1)
}

func (m *MockShopRepository) GetByExternalID(ctx context.Context, externalID string) (*entities.ShopItem, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ShopItem), args.Error(1)
}

func (m *MockShopRepository) GetByName(ctx context.Context, name string) (*entities.ShopItem, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ShopItem), args.Error(1)
}

func (m *MockShopRepository) List(ctx context.Context, itemType *entities.ItemType) ([]*entities.ShopItem, error) {
	args := m.Called(ctx, itemType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ShopItem), args.Error(1)
}

// MockInventoryRepository is a mock implementation of InventoryRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) Add(ctx context.Context, userID, itemID int64, quantity int) error {
	args := m.Called(ctx, userID, itemID, quantity)
	return args.Error(0)
}

func (m *MockInventoryRepository) Remove(ctx context.Context, userID, itemID int64, quantity int) (int, error) {
	args := m.Called(ctx, userID, itemID, quantity)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryRepository) GetQuantityForUpdate(ctx context.Context, userID, itemID int64) (int, error) {
	args := m.Called(ctx, userID, itemID)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryRepository) ListByUser(ctx context.Context, userID int64) ([]*entities.InventoryEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.InventoryEntry), args.Error(1)
}

func (m *MockInventoryRepository) RemoveItemEverywhere(ctx context.Context, itemID int64) (int64, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCrateRepository is a mock implementation of CrateRepository
type MockCrateRepository struct {
	mock.Mock
}

func (m *MockCrateRepository) GetRewards(ctx context.Context, crateExternalID string) ([]*entities.CrateReward, error) {
	args := m.Called(ctx, crateExternalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CrateReward), args.Error(1)
}

func (m *MockCrateRepository) GetReward(ctx context.Context, rewardID int64) (*entities.CrateReward, error) {
	args := m.Called(ctx, rewardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CrateReward), args.Error(1)
}

func (m *MockCrateRepository) AddReward(ctx context.Context, reward *entities.CrateReward) error {
	args := m.Called(ctx, reward)
	return args.Error(0)
}

func (m *MockCrateRepository) UpdateReward(ctx context.Context, reward *entities.CrateReward) error {
	args := m.Called(ctx, reward)
	return args.Error(0)
}

func (m *MockCrateRepository) DeleteReward(ctx context.Context, rewardID int64) error {
	args := m.Called(ctx, rewardID)
	return args.Error(0)
}

// MockTempRoleRepository is a mock implementation of TempRoleRepository
type MockTempRoleRepository struct {
	mock.Mock
}

func (m *MockTempRoleRepository) Get(ctx context.Context, userID, roleID int64) (*entities.TempRoleGrant, error) {
	args := m.Called(ctx, userID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TempRoleGrant), args.Error(1)
}

func (m *MockTempRoleRepository) Upsert(ctx context.Context, grant *entities.TempRoleGrant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *MockTempRoleRepository) DeleteIfExpired(ctx context.Context, userID, roleID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, roleID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockTempRoleRepository) GetAll(ctx context.Context) ([]*entities.TempRoleGrant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TempRoleGrant), args.Error(1)
}

// MockBlackjackRepository is a mock implementation of BlackjackRepository
type MockBlackjackRepository struct {
	mock.Mock
}

func (m *MockBlackjackRepository) Create(ctx context.Context, session *entities.BlackjackSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockBlackjackRepository) GetByUser(ctx context.Context, userID int64) (*entities.BlackjackSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BlackjackSession), args.Error(1)
}

func (m *MockBlackjackRepository) GetByUserForUpdate(ctx context.Context, userID int64) (*entities.BlackjackSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BlackjackSession), args.Error(1)
}

func (m *MockBlackjackRepository) Update(ctx context.Context, session *entities.BlackjackSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockBlackjackRepository) SetMessage(ctx context.Context, sessionID, channelID, messageID int64) error {
	args := m.Called(ctx, sessionID, channelID, messageID)
	return args.Error(0)
}

func (m *MockBlackjackRepository) Delete(ctx context.Context, sessionID int64) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockBlackjackRepository) RecordHistory(ctx context.Context, history *entities.BlackjackHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBlackjackRepository) GetIdleSince(ctx context.Context, before time.Time) ([]*entities.BlackjackSession, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BlackjackSession), args.Error(1)
}

// MockRouletteRepository is a mock implementation of RouletteRepository
type MockRouletteRepository struct {
	mock.Mock
}

func (m *MockRouletteRepository) GetRoundByChannel(ctx context.Context, channelID int64) (*entities.RouletteRound, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RouletteRound), args.Error(1)
}

func (m *MockRouletteRepository) CreateRound(ctx context.Context, round *entities.RouletteRound) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockRouletteRepository) SetResult(ctx context.Context, channelID int64, result int) error {
	args := m.Called(ctx, channelID, result)
	return args.Error(0)
}

func (m *MockRouletteRepository) AddBet(ctx context.Context, bet *entities.RouletteBet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockRouletteRepository) GetBets(ctx context.Context, roundID int64) ([]*entities.RouletteBet, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RouletteBet), args.Error(1)
}

func (m *MockRouletteRepository) RecordHistory(ctx context.Context, entries []*entities.RouletteHistoryEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockRouletteRepository) DeleteRound(ctx context.Context, roundID int64) error {
	args := m.Called(ctx, roundID)
	return args.Error(0)
}

func (m *MockRouletteRepository) GetAllRounds(ctx context.Context) ([]*entities.RouletteRound, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RouletteRound), args.Error(1)
}

// MockFightChanceRepository is a mock implementation of FightChanceRepository
type MockFightChanceRepository struct {
	mock.Mock
}

func (m *MockFightChanceRepository) Get(ctx context.Context, userID int64) (int, bool, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockFightChanceRepository) Set(ctx context.Context, userID int64, chance int) error {
	args := m.Called(ctx, userID, chance)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
