package services

import (
	"context"
	"testing"

	"casino/economy-bot/config"
	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/events"
	"casino/economy-bot/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

// Test constants for consistent test data
const (
	TestGuildID   = int64(555555555)
	TestChannelID = int64(987654321)
	TestUser1ID   = int64(100)
	TestUser2ID   = int64(200)
	TestUser3ID   = int64(300)
	TestRoleID    = int64(424242)
	TestCrateID   = "crate-gold"
)

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	AccountRepo     *testhelpers.MockAccountRepository
	LedgerRepo      *testhelpers.MockLedgerRepository
	CooldownRepo    *testhelpers.MockCooldownRepository
	ShopRepo        *testhelpers.MockShopRepository
	InventoryRepo   *testhelpers.MockInventoryRepository
	CrateRepo       *testhelpers.MockCrateRepository
	TempRoleRepo    *testhelpers.MockTempRoleRepository
	BlackjackRepo   *testhelpers.MockBlackjackRepository
	RouletteRepo    *testhelpers.MockRouletteRepository
	FightChanceRepo *testhelpers.MockFightChanceRepository
	RoleManager     *testhelpers.MockRoleManager
	EventPublisher  *testhelpers.MockEventPublisher
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		AccountRepo:     &testhelpers.MockAccountRepository{},
		LedgerRepo:      &testhelpers.MockLedgerRepository{},
		CooldownRepo:    &testhelpers.MockCooldownRepository{},
		ShopRepo:        &testhelpers.MockShopRepository{},
		InventoryRepo:   &testhelpers.MockInventoryRepository{},
		CrateRepo:       &testhelpers.MockCrateRepository{},
		TempRoleRepo:    &testhelpers.MockTempRoleRepository{},
		BlackjackRepo:   &testhelpers.MockBlackjackRepository{},
		RouletteRepo:    &testhelpers.MockRouletteRepository{},
		FightChanceRepo: &testhelpers.MockFightChanceRepository{},
		RoleManager:     &testhelpers.MockRoleManager{},
		EventPublisher:  &testhelpers.MockEventPublisher{},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.AccountRepo.AssertExpectations(t)
	m.LedgerRepo.AssertExpectations(t)
	m.CooldownRepo.AssertExpectations(t)
	m.ShopRepo.AssertExpectations(t)
	m.InventoryRepo.AssertExpectations(t)
	m.CrateRepo.AssertExpectations(t)
	m.TempRoleRepo.AssertExpectations(t)
	m.BlackjackRepo.AssertExpectations(t)
	m.RouletteRepo.AssertExpectations(t)
	m.FightChanceRepo.AssertExpectations(t)
	m.RoleManager.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

// Balance builds the balance service over the mocks
func (m *TestMocks) Balance() *balanceService {
	return NewBalanceService(m.AccountRepo, m.LedgerRepo, m.EventPublisher).(*balanceService)
}

// MockHelper provides common mock setup patterns
type MockHelper struct {
	mocks *TestMocks
	ctx   context.Context
}

// NewMockHelper creates a new mock helper
func NewMockHelper(mocks *TestMocks) *MockHelper {
	return &MockHelper{
		mocks: mocks,
		ctx:   context.Background(),
	}
}

// ExpectAccountLock sets up the ensure and row lock of an account.
// The service mutates the returned account, so callers get a copy.
func (h *MockHelper) ExpectAccountLock(account entities.Account) {
	h.mocks.AccountRepo.On("Ensure", mock.Anything, account.UserID).Return(nil).Once()
	h.mocks.AccountRepo.On("GetForUpdate", mock.Anything, account.UserID).Return(&account, nil).Once()
}

// ExpectAccountRead sets up an unlocked balance lookup
func (h *MockHelper) ExpectAccountRead(account entities.Account) {
	h.mocks.AccountRepo.On("Ensure", mock.Anything, account.UserID).Return(nil).Once()
	h.mocks.AccountRepo.On("Get", mock.Anything, account.UserID).Return(&account, nil).Once()
}

// ExpectBalanceUpdate sets up the write of both balances
func (h *MockHelper) ExpectBalanceUpdate(userID, cash, bank int64) {
	h.mocks.AccountRepo.On("UpdateBalances", mock.Anything, userID, cash, bank).Return(nil).Once()
}

// ExpectLedgerEntry sets up the record of one balance movement and its event
func (h *MockHelper) ExpectLedgerEntry(userID int64, kind entities.BalanceKind, before, after int64, txType entities.TransactionType) {
	h.mocks.LedgerRepo.On("Record", mock.Anything, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
		return e.UserID == userID &&
			e.Kind == kind &&
			e.BalanceBefore == before &&
			e.BalanceAfter == after &&
			e.TransactionType == txType
	})).Return(nil).Once()
	h.mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		bc, ok := e.(events.BalanceChangeEvent)
		return ok && bc.UserID == userID && bc.Kind == kind && bc.NewBalance == after
	})).Return(nil).Once()
}

// ExpectCooldownFree sets up a command that was never used
func (h *MockHelper) ExpectCooldownFree(userID int64, command string) {
	h.mocks.CooldownRepo.On("Get", mock.Anything, userID, command).Return(nil, nil).Once()
	h.mocks.CooldownRepo.On("Touch", mock.Anything, userID, command, mock.AnythingOfType("time.Time")).Return(nil).Once()
}

// ExpectEventPublish sets up event publisher mock expectations
func (h *MockHelper) ExpectEventPublish(eventType events.EventType) {
	h.mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		return e.Type() == eventType
	})).Return(nil)
}

// NewAccount returns an account of the test guild
func NewAccount(userID, cash, bank int64) entities.Account {
	return entities.Account{UserID: userID, GuildID: TestGuildID, Cash: cash, Bank: bank}
}

// SetupTestConfig configures the test environment
func SetupTestConfig(t *testing.T) {
	config.SetTestConfig(config.NewTestConfig())
	t.Cleanup(config.ResetConfig)
}
