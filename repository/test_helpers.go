package repository

import (
	"casino/economy-bot/database"
	"casino/economy-bot/domain/interfaces"
)

// CreateTestUnitOfWork creates a unit of work for testing with the provided transactional publisher
func CreateTestUnitOfWork(db *database.DB, guildID int64, transactionalPublisher interfaces.TransactionalEventPublisher) interfaces.UnitOfWork {
	return NewUnitOfWorkFactory(db).CreateForGuildWithPublisher(guildID, transactionalPublisher)
}
