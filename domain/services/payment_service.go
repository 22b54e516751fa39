package services

import (
	"context"
	"fmt"
	"math"
	"slices"

	"casino/economy-bot/config"
	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type paymentService struct {
	balanceService  interfaces.BalanceService
	cooldownService interfaces.CooldownService
}

// NewPaymentService creates the taxed payments of one guild
func NewPaymentService(balanceService interfaces.BalanceService, cooldownService interfaces.CooldownService) interfaces.PaymentService {
	return &paymentService{
		balanceService:  balanceService,
		cooldownService: cooldownService,
	}
}

// PaymentFee returns ceil(amount * percent / 100)
func PaymentFee(amount int64, percent float64) int64 {
	scaled := int64(math.Round(percent * 100))
	return (amount*scaled + 9999) / 10000
}

func holdsAny(held []int64, roles []int64) bool {
	for _, id := range roles {
		if slices.Contains(held, id) {
			return true
		}
	}
	return false
}

func (s *paymentService) Pay(ctx context.Context, senderID, receiverID int64, amount int64, senderRoles []int64) (*entities.PaymentResult, error) {
	cfg := config.Get().Pay

	if senderID == receiverID {
		return nil, fmt.Errorf("cannot pay yourself: %w", entities.ErrInvalidTarget)
	}
	if holdsAny(senderRoles, cfg.BannedRoles) {
		return nil, fmt.Errorf("sender is banned from paying: %w", entities.ErrForbidden)
	}
	if amount < cfg.MinAmount || amount > cfg.MaxAmount {
		return nil, fmt.Errorf("amount %d outside %d-%d: %w", amount, cfg.MinAmount, cfg.MaxAmount, entities.ErrInvalidAmount)
	}

	if err := s.cooldownService.Acquire(ctx, senderID, "pay", cfg.Cooldown); err != nil {
		return nil, err
	}

	percent := cfg.TaxPercent
	if holdsAny(senderRoles, cfg.ReducedTaxRoles) {
		percent = cfg.ReducedTaxPercent
	}
	fee := PaymentFee(amount, percent)

	if err := s.balanceService.TransferCash(ctx, senderID, receiverID, amount, fee); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"senderID":   senderID,
		"receiverID": receiverID,
		"amount":     amount,
		"fee":        fee,
	}).Info("Payment completed")

	return &entities.PaymentResult{Amount: amount, Fee: fee, Received: amount - fee}, nil
}
