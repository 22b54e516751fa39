package services

import (
	"context"
	"fmt"
	"math"

	"casino/economy-bot/config"
	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"
	"casino/economy-bot/domain/utils"

	log "github.com/sirupsen/logrus"
)

const (
	minRobFailChance = 0.20
	maxRobFailChance = 0.80
)

type robberyService struct {
	balanceService  interfaces.BalanceService
	cooldownService interfaces.CooldownService
	rng             interfaces.RandomSource
}

// NewRobberyService creates the robbery resolver of one guild
func NewRobberyService(
	balanceService interfaces.BalanceService,
	cooldownService interfaces.CooldownService,
	rng interfaces.RandomSource,
) interfaces.RobberyService {
	return &robberyService{
		balanceService:  balanceService,
		cooldownService: cooldownService,
		rng:             rng,
	}
}

// RobFailChance is the share of the robber's wealth in the combined pot, clamped to [0.2, 0.8]
func RobFailChance(robberTotal, targetCash int64) float64 {
	pot := robberTotal + targetCash
	if pot <= 0 {
		return maxRobFailChance
	}
	chance := float64(robberTotal) / float64(pot)
	return math.Min(math.Max(chance, minRobFailChance), maxRobFailChance)
}

func (s *robberyService) Rob(ctx context.Context, robberID, targetID int64, targetRoles []int64) (*entities.RobberyResult, error) {
	cfg := config.Get().Rob

	if robberID == targetID {
		return nil, fmt.Errorf("cannot rob yourself: %w", entities.ErrInvalidTarget)
	}
	if holdsAny(targetRoles, cfg.ImmuneRoles) {
		return nil, fmt.Errorf("target is immune: %w", entities.ErrForbidden)
	}

	target, err := s.balanceService.GetBalance(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Cash <= 0 {
		return nil, fmt.Errorf("target has no cash: %w", entities.ErrInvalidTarget)
	}

	if err := s.cooldownService.Acquire(ctx, robberID, "rob", cfg.Cooldown); err != nil {
		return nil, err
	}

	robber, err := s.balanceService.GetBalance(ctx, robberID)
	if err != nil {
		return nil, err
	}

	fail := RobFailChance(robber.Total(), target.Cash)
	result := &entities.RobberyResult{
		FailChance:  fail,
		TargetCash:  target.Cash,
		RobberTotal: robber.Total(),
	}

	if s.rng.Float64() < 1-fail {
		result.Success = true
		if desired := int64(math.Floor((1 - fail) * float64(target.Cash))); desired > 0 {
			stolen, err := s.balanceService.RobCash(ctx, robberID, targetID, desired)
			if err != nil {
				return nil, err
			}
			result.Stolen = stolen
		}
	} else {
		percent := utils.RandFloatBetween(s.rng, cfg.MinFinePercent, cfg.MaxFinePercent)
		fine := int64(math.Floor(float64(robber.Total()) * percent / 100))
		taken, err := s.balanceService.ApplyFine(ctx, robberID, fine)
		if err != nil {
			return nil, err
		}
		result.Fine = taken
	}

	log.WithFields(log.Fields{
		"robberID":   robberID,
		"targetID":   targetID,
		"success":    result.Success,
		"failChance": fail,
		"stolen":     result.Stolen,
		"fine":       result.Fine,
	}).Info("Robbery resolved")

	return result, nil
}
