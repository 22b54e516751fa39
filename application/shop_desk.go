package application

import (
	"context"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// ShopDesk sells shop items and manages the catalog
type ShopDesk struct {
	tx    *Transactor
	rng   interfaces.RandomSource
	roles interfaces.RoleManager
}

// NewShopDesk creates a shop desk
func NewShopDesk(tx *Transactor, rng interfaces.RandomSource, roles interfaces.RoleManager) *ShopDesk {
	return &ShopDesk{tx: tx, rng: rng, roles: roles}
}

func (d *ShopDesk) shop(uow interfaces.UnitOfWork, guildID int64) interfaces.ShopService {
	return newGuildServices(uow, guildID, d.rng, d.roles).Shop()
}

// ListItems returns the active items, all types when itemType is nil
func (d *ShopDesk) ListItems(ctx context.Context, guildID int64, itemType *entities.ItemType) ([]*entities.ShopItem, error) {
	var items []*entities.ShopItem
	err := d.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		items, err = d.shop(uow, guildID).ListItems(ctx, itemType)
		return err
	})
	return items, err
}

// FindItem resolves an item by id, external id or name
func (d *ShopDesk) FindItem(ctx context.Context, guildID int64, query string) (*entities.ShopItem, error) {
	var item *entities.ShopItem
	err := d.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		item, err = d.shop(uow, guildID).FindItem(ctx, query)
		return err
	})
	return item, err
}

// Buy charges the member and hands over the item. Role items are granted after the purchase commits.
func (d *ShopDesk) Buy(ctx context.Context, guildID, userID, itemID int64, heldRoles []int64) (*entities.PurchaseResult, error) {
	var result *entities.PurchaseResult
	err := d.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		result, err = d.shop(uow, guildID).Buy(ctx, userID, itemID, heldRoles)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.RoleToGrant != nil {
		if err := d.roles.AddRole(ctx, guildID, userID, *result.RoleToGrant); err != nil {
			log.WithFields(log.Fields{
				"guildID": guildID,
				"userID":  userID,
				"roleID":  *result.RoleToGrant,
				"error":   err,
			}).Error("Failed to grant purchased role")
		}
	}
	return result, nil
}

// Inventory lists what a member holds
func (d *ShopDesk) Inventory(ctx context.Context, guildID, userID int64) ([]*entities.InventoryEntry, error) {
	var entries []*entities.InventoryEntry
	err := d.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		entries, err = d.shop(uow, guildID).Inventory(ctx, userID)
		return err
	})
	return entries, err
}

// AddItem adds an item to the catalog
func (d *ShopDesk) AddItem(ctx context.Context, guildID int64, item *entities.ShopItem) error {
	item.GuildID = guildID
	return d.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		return d.shop(uow, guildID).AddItem(ctx, item)
	})
}

// UpdateItem changes a catalog item
func (d *ShopDesk) UpdateItem(ctx context.Context, guildID int64, item *entities.ShopItem) error {
	item.GuildID = guildID
	return d.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		return d.shop(uow, guildID).UpdateItem(ctx, item)
	})
}

// DeactivateItem hides an item and returns how many inventory entries were cleared
func (d *ShopDesk) DeactivateItem(ctx context.Context, guildID, itemID int64) (int64, error) {
	var removed int64
	err := d.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		removed, err = d.shop(uow, guildID).DeactivateItem(ctx, itemID)
		return err
	})
	return removed, err
}
