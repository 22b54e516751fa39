package services

import (
	"context"
	"fmt"

	"casino/economy-bot/config"
	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type cockfightService struct {
	shopRepo        interfaces.ShopRepository
	inventoryRepo   interfaces.InventoryRepository
	fightChanceRepo interfaces.FightChanceRepository
	balanceService  interfaces.BalanceService
	rng             interfaces.RandomSource
}

// NewCockfightService creates the cockfight game of one guild
func NewCockfightService(
	shopRepo interfaces.ShopRepository,
	inventoryRepo interfaces.InventoryRepository,
	fightChanceRepo interfaces.FightChanceRepository,
	balanceService interfaces.BalanceService,
	rng interfaces.RandomSource,
) interfaces.CockfightService {
	return &cockfightService{
		shopRepo:        shopRepo,
		inventoryRepo:   inventoryRepo,
		fightChanceRepo: fightChanceRepo,
		balanceService:  balanceService,
		rng:             rng,
	}
}

// Fight bets on the member's chicken. Every win raises the chance by one point, a loss kills the chicken.
func (s *cockfightService) Fight(ctx context.Context, userID int64, bet int64) (*entities.CockfightResult, error) {
	cfg := config.Get().Cockfight
	if bet < cfg.MinBet {
		return nil, fmt.Errorf("bet %d below minimum %d: %w", bet, cfg.MinBet, entities.ErrInvalidAmount)
	}

	chicken, err := s.shopRepo.GetByName(ctx, cfg.ChickenItem)
	if err != nil {
		return nil, fmt.Errorf("failed to get chicken item: %w", err)
	}
	if chicken == nil {
		return nil, fmt.Errorf("%s is not sold here: %w", cfg.ChickenItem, entities.ErrNotFound)
	}
	owned, err := s.inventoryRepo.GetQuantityForUpdate(ctx, userID, chicken.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chickens: %w", err)
	}
	if owned < 1 {
		return nil, fmt.Errorf("no %s owned: %w", cfg.ChickenItem, entities.ErrNotFound)
	}

	if _, err := s.balanceService.AdjustCash(ctx, userID, -bet, entities.TransactionTypeCockfightBet); err != nil {
		return nil, err
	}

	chance, ok, err := s.fightChanceRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fight chance: %w", err)
	}
	if !ok {
		chance = cfg.MinChance
	}

	result := &entities.CockfightResult{
		Bet:    bet,
		Roll:   s.rng.IntN(100) + 1,
		Chance: chance,
	}

	if result.Roll <= chance {
		result.Won = true
		result.Payout = bet * 2
		result.NextChance = min(chance+1, cfg.MaxChance)
		if _, err := s.balanceService.AdjustCash(ctx, userID, result.Payout, entities.TransactionTypeCockfightPayout); err != nil {
			return nil, err
		}
	} else {
		result.NextChance = cfg.MinChance
		if _, err := s.inventoryRepo.Remove(ctx, userID, chicken.ID, 1); err != nil {
			return nil, fmt.Errorf("failed to remove chicken: %w", err)
		}
	}

	if err := s.fightChanceRepo.Set(ctx, userID, result.NextChance); err != nil {
		return nil, fmt.Errorf("failed to save fight chance: %w", err)
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"bet":    bet,
		"roll":   result.Roll,
		"chance": chance,
		"won":    result.Won,
	}).Info("Cockfight resolved")

	return result, nil
}
