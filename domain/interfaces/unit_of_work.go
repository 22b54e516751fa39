package interfaces

import (
	"context"
)

// UnitOfWork groups the guild-scoped repositories of one transaction.
// Events published through EventBus are delivered only after Commit.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountRepository() AccountRepository
	LedgerRepository() LedgerRepository
	CooldownRepository() CooldownRepository
	ShopRepository() ShopRepository
	InventoryRepository() InventoryRepository
	CrateRepository() CrateRepository
	TempRoleRepository() TempRoleRepository
	BlackjackRepository() BlackjackRepository
	RouletteRepository() RouletteRepository
	FightChanceRepository() FightChanceRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work. Guild id 0 yields repositories that
// list across every guild, used for startup recovery.
type UnitOfWorkFactory interface {
	CreateForGuild(guildID int64) UnitOfWork
}
