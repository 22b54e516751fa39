package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"casino/economy-bot/config"
	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"
	"casino/economy-bot/domain/utils"

	log "github.com/sirupsen/logrus"
)

type incomeService struct {
	balanceService  interfaces.BalanceService
	cooldownService interfaces.CooldownService
	rng             interfaces.RandomSource
}

// NewIncomeService creates the earn commands over the balance and cooldown services of one guild
func NewIncomeService(
	balanceService interfaces.BalanceService,
	cooldownService interfaces.CooldownService,
	rng interfaces.RandomSource,
) interfaces.IncomeService {
	return &incomeService{
		balanceService:  balanceService,
		cooldownService: cooldownService,
		rng:             rng,
	}
}

func incomeConfig(kind entities.IncomeKind) config.IncomeConfig {
	cfg := config.Get()
	switch kind {
	case entities.IncomeKindCrime:
		return cfg.Crime
	case entities.IncomeKindHustle:
		return cfg.Hustle
	default:
		return cfg.Work
	}
}

// Earn pays a reward on success and fines a share of the total otherwise
func (s *incomeService) Earn(ctx context.Context, userID int64, kind entities.IncomeKind) (*entities.IncomeResult, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("income %q: %w", kind, entities.ErrInvalidAction)
	}
	cfg := incomeConfig(kind)

	if err := s.cooldownService.Acquire(ctx, userID, string(kind), cfg.Cooldown); err != nil {
		return nil, err
	}

	result := &entities.IncomeResult{Kind: kind}

	if s.rng.Float64() < cfg.SuccessChance {
		reward := utils.RandInt64Between(s.rng, cfg.MinReward, cfg.MaxReward)
		cash, err := s.balanceService.AdjustCash(ctx, userID, reward, entities.TransactionTypeIncome)
		if err != nil {
			return nil, err
		}
		result.Success = true
		result.Amount = reward
		result.Cash = cash
	} else {
		account, err := s.balanceService.GetBalance(ctx, userID)
		if err != nil {
			return nil, err
		}
		percent := utils.RandFloatBetween(s.rng, cfg.MinFinePercent, cfg.MaxFinePercent)
		fine := int64(math.Floor(float64(account.Total()) * percent / 100))
		taken, err := s.balanceService.ApplyFine(ctx, userID, fine)
		if err != nil {
			return nil, err
		}
		result.Amount = taken
		result.Cash = account.Cash - taken
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"kind":    kind,
		"success": result.Success,
		"amount":  result.Amount,
	}).Debug("Income command resolved")

	return result, nil
}

// Collect pays every configured role income the member holds and that is off cooldown
func (s *incomeService) Collect(ctx context.Context, userID int64, heldRoles []int64) (*entities.CollectResult, error) {
	held := make(map[int64]bool, len(heldRoles))
	for _, id := range heldRoles {
		held[id] = true
	}

	result := &entities.CollectResult{}
	var eligible int
	nextReady := time.Duration(math.MaxInt64)

	for _, income := range config.Get().Collect.Incomes {
		if !held[income.RoleID] {
			continue
		}
		eligible++

		command := CollectCommand(income.RoleID)
		remaining, err := s.cooldownService.Remaining(ctx, userID, command, income.Cooldown)
		if err != nil {
			return nil, err
		}
		if remaining > 0 {
			nextReady = min(nextReady, remaining)
			continue
		}

		if income.ToBank {
			if _, err := s.balanceService.AdjustBank(ctx, userID, income.Reward, entities.TransactionTypeCollect); err != nil {
				return nil, err
			}
			result.BankPaid += income.Reward
		} else {
			if _, err := s.balanceService.AdjustCash(ctx, userID, income.Reward, entities.TransactionTypeCollect); err != nil {
				return nil, err
			}
			result.CashPaid += income.Reward
		}
		if err := s.cooldownService.Touch(ctx, userID, command); err != nil {
			return nil, err
		}
		result.Payouts = append(result.Payouts, entities.CollectPayout{
			RoleID: income.RoleID,
			Amount: income.Reward,
			ToBank: income.ToBank,
		})
	}

	if eligible == 0 {
		return nil, fmt.Errorf("no role income to collect: %w", entities.ErrNotFound)
	}
	if len(result.Payouts) == 0 {
		return nil, &entities.CooldownError{Command: "collect", Remaining: nextReady}
	}
	return result, nil
}
