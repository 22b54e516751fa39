package application

import (
	"context"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// CrateOpener opens crates and applies their role rewards once the opening is committed
type CrateOpener struct {
	tx        *Transactor
	rng       interfaces.RandomSource
	roles     interfaces.RoleManager
	scheduler *GrantScheduler
}

// NewCrateOpener creates a crate opener
func NewCrateOpener(tx *Transactor, rng interfaces.RandomSource, roles interfaces.RoleManager, scheduler *GrantScheduler) *CrateOpener {
	return &CrateOpener{
		tx:        tx,
		rng:       rng,
		roles:     roles,
		scheduler: scheduler,
	}
}

// Open consumes count crates of the member and grants their rewards
func (c *CrateOpener) Open(ctx context.Context, guildID, userID, crateItemID int64, count int) (*entities.RewardSummary, error) {
	var summary *entities.RewardSummary
	err := c.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		summary, err = newGuildServices(uow, guildID, c.rng, c.roles).Crate().OpenCrate(ctx, userID, crateItemID, count)
		return err
	})
	if err != nil {
		return nil, err
	}

	// The balances and grants are durable now. A failed role call is repaired by
	// the scheduler recovery for temporary roles and only logged for permanent ones.
	for roleID := range summary.RolesGranted {
		if err := c.roles.AddRole(ctx, guildID, userID, roleID); err != nil {
			log.WithFields(log.Fields{
				"guildID": guildID,
				"userID":  userID,
				"roleID":  roleID,
				"error":   err,
			}).Error("Failed to grant crate role")
		}
	}
	for roleID, ext := range summary.RolesExtended {
		c.scheduler.ScheduleRevocation(guildID, userID, roleID, ext.ExpiresAt)
	}

	return summary, nil
}

// ListRewards returns the drop table of a crate
func (c *CrateOpener) ListRewards(ctx context.Context, guildID int64, crateExternalID string) ([]*entities.CrateReward, error) {
	var rewards []*entities.CrateReward
	err := c.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		rewards, err = newGuildServices(uow, guildID, c.rng, c.roles).Crate().ListRewards(ctx, crateExternalID)
		return err
	})
	return rewards, err
}

// AddReward adds a drop to a crate
func (c *CrateOpener) AddReward(ctx context.Context, guildID int64, reward *entities.CrateReward) error {
	reward.GuildID = guildID
	return c.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		return newGuildServices(uow, guildID, c.rng, c.roles).Crate().AddReward(ctx, reward)
	})
}

// UpdateReward changes a drop
func (c *CrateOpener) UpdateReward(ctx context.Context, guildID int64, reward *entities.CrateReward) error {
	reward.GuildID = guildID
	return c.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		return newGuildServices(uow, guildID, c.rng, c.roles).Crate().UpdateReward(ctx, reward)
	})
}

// DeleteReward removes a drop
func (c *CrateOpener) DeleteReward(ctx context.Context, guildID, rewardID int64) error {
	return c.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		return newGuildServices(uow, guildID, c.rng, c.roles).Crate().DeleteReward(ctx, rewardID)
	})
}
