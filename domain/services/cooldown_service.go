package services

import (
	"context"
	"fmt"
	"time"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"
)

type cooldownService struct {
	cooldownRepo interfaces.CooldownRepository
}

// NewCooldownService creates a cooldown service for the guild the repository is scoped to
func NewCooldownService(cooldownRepo interfaces.CooldownRepository) interfaces.CooldownService {
	return &cooldownService{cooldownRepo: cooldownRepo}
}

func (s *cooldownService) Remaining(ctx context.Context, userID int64, command string, period time.Duration) (time.Duration, error) {
	cooldown, err := s.cooldownRepo.Get(ctx, userID, command)
	if err != nil {
		return 0, fmt.Errorf("failed to get cooldown %s for %d: %w", command, userID, err)
	}
	return cooldown.Remaining(period, time.Now()), nil
}

func (s *cooldownService) Touch(ctx context.Context, userID int64, command string) error {
	if err := s.cooldownRepo.Touch(ctx, userID, command, time.Now()); err != nil {
		return fmt.Errorf("failed to touch cooldown %s for %d: %w", command, userID, err)
	}
	return nil
}

func (s *cooldownService) Acquire(ctx context.Context, userID int64, command string, period time.Duration) error {
	remaining, err := s.Remaining(ctx, userID, command, period)
	if err != nil {
		return err
	}
	if remaining > 0 {
		return &entities.CooldownError{Command: command, Remaining: remaining}
	}
	return s.Touch(ctx, userID, command)
}

// CollectCommand is the cooldown key of a role income
func CollectCommand(roleID int64) string {
	return fmt.Sprintf("collect_%d", roleID)
}
