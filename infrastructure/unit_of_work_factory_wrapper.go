package infrastructure

import (
	"casino/economy-bot/database"
	"casino/economy-bot/domain/interfaces"
	"casino/economy-bot/repository"
)

// UnitOfWorkFactoryWrapper wraps the repository UnitOfWorkFactory to provide transactional publishers
type UnitOfWorkFactoryWrapper struct {
	repoFactory interface {
		CreateForGuildWithPublisher(guildID int64, transactionalPublisher interfaces.TransactionalEventPublisher) interfaces.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactoryWrapper creates a new wrapper that implements interfaces.UnitOfWorkFactory
func NewUnitOfWorkFactoryWrapper(db *database.DB, eventPublisher interfaces.EventPublisher) interfaces.UnitOfWorkFactory {
	return &UnitOfWorkFactoryWrapper{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// CreateForGuild creates a new UnitOfWork with its own transactional event publisher
func (w *UnitOfWorkFactoryWrapper) CreateForGuild(guildID int64) interfaces.UnitOfWork {
	return w.repoFactory.CreateForGuildWithPublisher(guildID, NewNATSTransactionalPublisher(w.eventPublisher))
}
