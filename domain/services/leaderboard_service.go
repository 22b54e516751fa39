package services

import (
	"context"
	"fmt"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 25
)

type leaderboardService struct {
	accountRepo interfaces.AccountRepository
}

// NewLeaderboardService creates a leaderboard over the accounts of one guild
func NewLeaderboardService(accountRepo interfaces.AccountRepository) interfaces.LeaderboardService {
	return &leaderboardService{accountRepo: accountRepo}
}

func (s *leaderboardService) TopAccounts(ctx context.Context, sortBy entities.LeaderboardSort, limit int) ([]*entities.LeaderboardEntry, error) {
	if !sortBy.IsValid() {
		return nil, fmt.Errorf("sort %q: %w", sortBy, entities.ErrInvalidAction)
	}
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	limit = min(limit, maxLeaderboardSize)

	entries, err := s.accountRepo.GetTop(ctx, sortBy, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	for i, e := range entries {
		e.Rank = i + 1
	}
	return entries, nil
}

func (s *leaderboardService) AccountRank(ctx context.Context, userID int64, sortBy entities.LeaderboardSort) (int, error) {
	if !sortBy.IsValid() {
		return 0, fmt.Errorf("sort %q: %w", sortBy, entities.ErrInvalidAction)
	}
	rank, err := s.accountRepo.GetRank(ctx, userID, sortBy)
	if err != nil {
		return 0, fmt.Errorf("failed to get rank of %d: %w", userID, err)
	}
	return rank, nil
}

func (s *leaderboardService) GuildTotals(ctx context.Context) (*entities.GuildTotals, error) {
	totals, err := s.accountRepo.GetTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild totals: %w", err)
	}
	return totals, nil
}
