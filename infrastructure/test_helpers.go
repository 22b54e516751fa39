package infrastructure

import (
	"casino/economy-bot/database"
	"casino/economy-bot/domain/interfaces"
	"casino/economy-bot/repository"
)

// TestUnitOfWorkFactory creates units of work that share one publisher, so tests
// can inspect every event a scenario produced
type TestUnitOfWorkFactory struct {
	db                     *database.DB
	transactionalPublisher interfaces.TransactionalEventPublisher
}

// NewTestUnitOfWorkFactory creates a new test unit of work factory
func NewTestUnitOfWorkFactory(db *database.DB, transactionalPublisher interfaces.TransactionalEventPublisher) *TestUnitOfWorkFactory {
	return &TestUnitOfWorkFactory{
		db:                     db,
		transactionalPublisher: transactionalPublisher,
	}
}

// CreateForGuild creates a new UnitOfWork instance for testing
func (f *TestUnitOfWorkFactory) CreateForGuild(guildID int64) interfaces.UnitOfWork {
	return repository.CreateTestUnitOfWork(f.db, guildID, f.transactionalPublisher)
}
