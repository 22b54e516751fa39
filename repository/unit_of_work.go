package repository

import (
	"context"
	"errors"
	"fmt"

	"casino/economy-bot/database"
	"casino/economy-bot/domain/interfaces"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	guildID                int64
	transactionalPublisher interfaces.TransactionalEventPublisher
	accountRepo            interfaces.AccountRepository
	ledgerRepo             interfaces.LedgerRepository
	cooldownRepo           interfaces.CooldownRepository
	shopRepo               interfaces.ShopRepository
	inventoryRepo          interfaces.InventoryRepository
	crateRepo              interfaces.CrateRepository
	tempRoleRepo           interfaces.TempRoleRepository
	blackjackRepo          interfaces.BlackjackRepository
	rouletteRepo           interfaces.RouletteRepository
	fightChanceRepo        interfaces.FightChanceRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		db: db,
	}
}

// UnitOfWorkFactory opens transactions on the pool
type UnitOfWorkFactory struct {
	db *database.DB
}

// CreateForGuildWithPublisher creates a new UnitOfWork with a specific transactional publisher
func (f *UnitOfWorkFactory) CreateForGuildWithPublisher(guildID int64, transactionalPublisher interfaces.TransactionalEventPublisher) interfaces.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		guildID:                guildID,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create guild-scoped repositories with the transaction
	u.accountRepo = NewAccountRepositoryScoped(tx, u.guildID)
	u.ledgerRepo = NewLedgerRepositoryScoped(tx, u.guildID)
	u.cooldownRepo = NewCooldownRepositoryScoped(tx, u.guildID)
	u.shopRepo = NewShopRepositoryScoped(tx, u.guildID)
	u.inventoryRepo = NewInventoryRepositoryScoped(tx, u.guildID)
	u.crateRepo = NewCrateRepositoryScoped(tx, u.guildID)
	u.tempRoleRepo = NewTempRoleRepositoryScoped(tx, u.guildID)
	u.blackjackRepo = NewBlackjackRepositoryScoped(tx, u.guildID)
	u.rouletteRepo = NewRouletteRepositoryScoped(tx, u.guildID)
	u.fightChanceRepo = NewFightChanceRepositoryScoped(tx, u.guildID)

	return nil
}

// Commit commits the transaction and flushes the events it produced
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		u.tx = nil
		if u.transactionalPublisher != nil {
			u.transactionalPublisher.Discard()
		}
		return fmt.Errorf("failed to commit transaction: %w", mapPgError(err, nil))
	}

	u.tx = nil

	// Events are best effort once the data is committed
	if u.transactionalPublisher != nil {
		if err := u.transactionalPublisher.Flush(u.ctx); err != nil {
			log.WithError(err).Warn("Failed to flush events after commit")
		}
	}

	return nil
}

// Rollback rolls back the transaction. Safe to call after Commit.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

func mustBegin[T any](repo T, started bool) T {
	if !started {
		panic("unit of work not started - call Begin() first")
	}
	return repo
}

func (u *unitOfWork) AccountRepository() interfaces.AccountRepository {
	return mustBegin(u.accountRepo, u.accountRepo != nil)
}

func (u *unitOfWork) LedgerRepository() interfaces.LedgerRepository {
	return mustBegin(u.ledgerRepo, u.ledgerRepo != nil)
}

func (u *unitOfWork) CooldownRepository() interfaces.CooldownRepository {
	return mustBegin(u.cooldownRepo, u.cooldownRepo != nil)
}

func (u *unitOfWork) ShopRepository() interfaces.ShopRepository {
	return mustBegin(u.shopRepo, u.shopRepo != nil)
}

func (u *unitOfWork) InventoryRepository() interfaces.InventoryRepository {
	return mustBegin(u.inventoryRepo, u.inventoryRepo != nil)
}

func (u *unitOfWork) CrateRepository() interfaces.CrateRepository {
	return mustBegin(u.crateRepo, u.crateRepo != nil)
}

func (u *unitOfWork) TempRoleRepository() interfaces.TempRoleRepository {
	return mustBegin(u.tempRoleRepo, u.tempRoleRepo != nil)
}

func (u *unitOfWork) BlackjackRepository() interfaces.BlackjackRepository {
	return mustBegin(u.blackjackRepo, u.blackjackRepo != nil)
}

func (u *unitOfWork) RouletteRepository() interfaces.RouletteRepository {
	return mustBegin(u.rouletteRepo, u.rouletteRepo != nil)
}

func (u *unitOfWork) FightChanceRepository() interfaces.FightChanceRepository {
	return mustBegin(u.fightChanceRepo, u.fightChanceRepo != nil)
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work has no event publisher")
	}
	return u.transactionalPublisher
}
