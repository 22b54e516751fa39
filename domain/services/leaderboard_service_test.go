package services

import (
	"context"
	"testing"

	"casino/economy-bot/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardService_TopAccounts(t *testing.T) {
	ctx := context.Background()

	t.Run("default size and ranks", func(t *testing.T) {
		mocks := NewTestMocks()
		mocks.AccountRepo.On("GetTop", mock.Anything, entities.LeaderboardSortTotal, 10).Return([]*entities.LeaderboardEntry{
			{UserID: TestUser2ID, Cash: 900, Bank: 100, Total: 1000},
			{UserID: TestUser1ID, Cash: 10, Bank: 0, Total: 10},
		}, nil)

		entries, err := NewLeaderboardService(mocks.AccountRepo).TopAccounts(ctx, entities.LeaderboardSortTotal, 0)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, 1, entries[0].Rank)
		assert.Equal(t, 2, entries[1].Rank)
		mocks.AssertAllExpectations(t)
	})

	t.Run("size is capped", func(t *testing.T) {
		mocks := NewTestMocks()
		mocks.AccountRepo.On("GetTop", mock.Anything, entities.LeaderboardSortCash, 25).Return([]*entities.LeaderboardEntry{}, nil)

		_, err := NewLeaderboardService(mocks.AccountRepo).TopAccounts(ctx, entities.LeaderboardSortCash, 500)
		require.NoError(t, err)
		mocks.AssertAllExpectations(t)
	})

	t.Run("unknown sort", func(t *testing.T) {
		_, err := NewLeaderboardService(NewTestMocks().AccountRepo).TopAccounts(ctx, "xp", 10)
		assert.ErrorIs(t, err, entities.ErrInvalidAction)
	})
}

func TestLeaderboardService_AccountRank(t *testing.T) {
	mocks := NewTestMocks()
	mocks.AccountRepo.On("GetRank", mock.Anything, TestUser1ID, entities.LeaderboardSortBank).Return(3, nil)

	rank, err := NewLeaderboardService(mocks.AccountRepo).AccountRank(context.Background(), TestUser1ID, entities.LeaderboardSortBank)
	require.NoError(t, err)
	assert.Equal(t, 3, rank)
}
