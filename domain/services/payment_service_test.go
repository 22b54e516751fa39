package services

import (
	"context"
	"testing"

	"casino/economy-bot/config"
	"casino/economy-bot/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPaymentFee(t *testing.T) {
	tests := []struct {
		amount  int64
		percent float64
		want    int64
	}{
		{100, 10, 10},
		{101, 10, 11},
		{1, 10, 1},
		{100, 0, 0},
		{99, 5, 5},
		{1000, 7.5, 75},
		{1000, 100, 1000},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PaymentFee(tt.amount, tt.percent), "%d at %.1f%%", tt.amount, tt.percent)
	}
}

func TestPaymentService_Pay(t *testing.T) {
	t.Run("standard tax", func(t *testing.T) {
		SetupTestConfig(t)
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)

		helper.ExpectCooldownFree(TestUser1ID, "pay")
		helper.ExpectAccountLock(NewAccount(TestUser1ID, 500, 0))
		helper.ExpectAccountLock(NewAccount(TestUser2ID, 0, 0))
		helper.ExpectBalanceUpdate(TestUser1ID, 400, 0)
		helper.ExpectLedgerEntry(TestUser1ID, entities.BalanceKindCash, 500, 400, entities.TransactionTypeTransferOut)
		helper.ExpectBalanceUpdate(TestUser2ID, 90, 0)
		helper.ExpectLedgerEntry(TestUser2ID, entities.BalanceKindCash, 0, 90, entities.TransactionTypeTransferIn)

		service := NewPaymentService(mocks.Balance(), NewCooldownService(mocks.CooldownRepo))
		result, err := service.Pay(context.Background(), TestUser1ID, TestUser2ID, 100, nil)
		require.NoError(t, err)
		assert.Equal(t, &entities.PaymentResult{Amount: 100, Fee: 10, Received: 90}, result)
		mocks.AssertAllExpectations(t)
	})

	t.Run("reduced tax role", func(t *testing.T) {
		cfg := config.NewTestConfig()
		cfg.Pay.ReducedTaxRoles = []int64{TestRoleID}
		config.SetTestConfig(cfg)
		t.Cleanup(config.ResetConfig)

		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)

		helper.ExpectCooldownFree(TestUser2ID, "pay")
		helper.ExpectAccountLock(NewAccount(TestUser1ID, 0, 0))
		helper.ExpectAccountLock(NewAccount(TestUser2ID, 300, 0))
		helper.ExpectBalanceUpdate(TestUser2ID, 100, 0)
		helper.ExpectLedgerEntry(TestUser2ID, entities.BalanceKindCash, 300, 100, entities.TransactionTypeTransferOut)
		helper.ExpectBalanceUpdate(TestUser1ID, 190, 0)
		helper.ExpectLedgerEntry(TestUser1ID, entities.BalanceKindCash, 0, 190, entities.TransactionTypeTransferIn)

		service := NewPaymentService(mocks.Balance(), NewCooldownService(mocks.CooldownRepo))
		result, err := service.Pay(context.Background(), TestUser2ID, TestUser1ID, 200, []int64{TestRoleID})
		require.NoError(t, err)
		assert.Equal(t, int64(10), result.Fee)
		assert.Equal(t, int64(190), result.Received)
		mocks.AssertAllExpectations(t)
	})

	t.Run("rejections touch nothing", func(t *testing.T) {
		cfg := config.NewTestConfig()
		cfg.Pay.BannedRoles = []int64{TestRoleID}
		config.SetTestConfig(cfg)
		t.Cleanup(config.ResetConfig)

		mocks := NewTestMocks()
		service := NewPaymentService(mocks.Balance(), NewCooldownService(mocks.CooldownRepo))
		ctx := context.Background()

		_, err := service.Pay(ctx, TestUser1ID, TestUser1ID, 100, nil)
		assert.ErrorIs(t, err, entities.ErrInvalidTarget)

		_, err = service.Pay(ctx, TestUser1ID, TestUser2ID, 100, []int64{TestRoleID})
		assert.ErrorIs(t, err, entities.ErrForbidden)

		_, err = service.Pay(ctx, TestUser1ID, TestUser2ID, 1001, nil)
		assert.ErrorIs(t, err, entities.ErrInvalidAmount)

		_, err = service.Pay(ctx, TestUser1ID, TestUser2ID, 0, nil)
		assert.ErrorIs(t, err, entities.ErrInvalidAmount)

		mocks.CooldownRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
		mocks.AccountRepo.AssertNotCalled(t, "Ensure", mock.Anything, mock.Anything)
	})

	t.Run("sender short of cash", func(t *testing.T) {
		SetupTestConfig(t)
		mocks := NewTestMocks()
		helper := NewMockHelper(mocks)

		helper.ExpectCooldownFree(TestUser1ID, "pay")
		helper.ExpectAccountLock(NewAccount(TestUser1ID, 50, 1000))
		helper.ExpectAccountLock(NewAccount(TestUser2ID, 0, 0))

		service := NewPaymentService(mocks.Balance(), NewCooldownService(mocks.CooldownRepo))
		_, err := service.Pay(context.Background(), TestUser1ID, TestUser2ID, 100, nil)
		assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
		mocks.AccountRepo.AssertNotCalled(t, "UpdateBalances", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
