package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"casino/economy-bot/config"
	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type shopService struct {
	guildID         int64
	shopRepo        interfaces.ShopRepository
	inventoryRepo   interfaces.InventoryRepository
	balanceService  interfaces.BalanceService
	cooldownService interfaces.CooldownService
}

// NewShopService creates the shop of one guild
func NewShopService(
	guildID int64,
	shopRepo interfaces.ShopRepository,
	inventoryRepo interfaces.InventoryRepository,
	balanceService interfaces.BalanceService,
	cooldownService interfaces.CooldownService,
) interfaces.ShopService {
	return &shopService{
		guildID:         guildID,
		shopRepo:        shopRepo,
		inventoryRepo:   inventoryRepo,
		balanceService:  balanceService,
		cooldownService: cooldownService,
	}
}

func (s *shopService) ListItems(ctx context.Context, itemType *entities.ItemType) ([]*entities.ShopItem, error) {
	if itemType != nil && !itemType.IsValid() {
		return nil, fmt.Errorf("item type %q: %w", *itemType, entities.ErrInvalidAction)
	}
	items, err := s.shopRepo.List(ctx, itemType)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// FindItem tries the numeric id first, then the external id, then the name
func (s *shopService) FindItem(ctx context.Context, query string) (*entities.ShopItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty item query: %w", entities.ErrNotFound)
	}

	if id, err := strconv.ParseInt(query, 10, 64); err == nil {
		item, err := s.shopRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get item %d: %w", id, err)
		}
		if item != nil {
			return item, nil
		}
	}

	item, err := s.shopRepo.GetByExternalID(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get item %q: %w", query, err)
	}
	if item != nil {
		return item, nil
	}

	item, err = s.shopRepo.GetByName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get item %q: %w", query, err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %q: %w", query, entities.ErrNotFound)
	}
	return item, nil
}

// Buy charges the price from cash. Role items are returned for granting once the purchase commits.
func (s *shopService) Buy(ctx context.Context, userID, itemID int64, heldRoles []int64) (*entities.PurchaseResult, error) {
	item, err := s.shopRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item %d: %w", itemID, err)
	}
	if item == nil || !item.Active {
		return nil, fmt.Errorf("item %d: %w", itemID, entities.ErrNotFound)
	}

	var roleID int64
	if item.Type == entities.ItemTypeRole {
		id, ok := item.RoleID()
		if !ok {
			return nil, fmt.Errorf("role item %d has no role: %w", itemID, entities.ErrNotFound)
		}
		if slices.Contains(heldRoles, id) {
			return nil, fmt.Errorf("role %d: %w", id, entities.ErrAlreadyOwned)
		}
		roleID = id
	}

	if err := s.cooldownService.Acquire(ctx, userID, "buy", config.Get().Shop.BuyCooldown); err != nil {
		return nil, err
	}

	account, err := s.balanceService.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !account.CanSpendCash(item.Price) {
		return nil, entities.NewInsufficientFunds(item.Price, account.Cash)
	}

	cash, err := s.balanceService.AdjustCash(ctx, userID, -item.Price, entities.TransactionTypePurchase)
	if err != nil {
		return nil, err
	}

	result := &entities.PurchaseResult{Item: item, Price: item.Price, Cash: cash}
	if item.Type == entities.ItemTypeRole {
		result.RoleToGrant = &roleID
	} else if err := s.inventoryRepo.Add(ctx, userID, item.ID, 1); err != nil {
		return nil, fmt.Errorf("failed to add item to inventory: %w", err)
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"itemID": item.ID,
		"type":   item.Type,
		"price":  item.Price,
	}).Info("Item purchased")

	return result, nil
}

func (s *shopService) Inventory(ctx context.Context, userID int64) ([]*entities.InventoryEntry, error) {
	entries, err := s.inventoryRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return entries, nil
}

func checkItem(item *entities.ShopItem) error {
	if !item.Type.IsValid() {
		return fmt.Errorf("item type %q: %w", item.Type, entities.ErrInvalidAction)
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("item name is required: %w", entities.ErrInvalidAction)
	}
	if item.Price < 0 {
		return fmt.Errorf("price %d: %w", item.Price, entities.ErrInvalidAmount)
	}
	switch item.Type {
	case entities.ItemTypeRole:
		if _, ok := item.RoleID(); !ok {
			return fmt.Errorf("role items need a numeric role id: %w", entities.ErrInvalidAction)
		}
	case entities.ItemTypeCase:
		if item.ExternalID == nil || *item.ExternalID == "" {
			return fmt.Errorf("case items need a crate reference: %w", entities.ErrInvalidAction)
		}
	}
	return nil
}

func (s *shopService) AddItem(ctx context.Context, item *entities.ShopItem) error {
	if err := checkItem(item); err != nil {
		return err
	}
	item.GuildID = s.guildID
	item.Active = true
	if err := s.shopRepo.Create(ctx, item); err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	log.WithFields(log.Fields{
		"guildID": s.guildID,
		"itemID":  item.ID,
		"name":    item.Name,
	}).Info("Shop item added")
	return nil
}

func (s *shopService) UpdateItem(ctx context.Context, item *entities.ShopItem) error {
	if err := checkItem(item); err != nil {
		return err
	}
	existing, err := s.shopRepo.GetByID(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("failed to get item %d: %w", item.ID, err)
	}
	if existing == nil {
		return fmt.Errorf("item %d: %w", item.ID, entities.ErrNotFound)
	}
	item.GuildID = s.guildID
	item.Active = existing.Active
	if err := s.shopRepo.Update(ctx, item); err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

func (s *shopService) DeactivateItem(ctx context.Context, itemID int64) (int64, error) {
	existing, err := s.shopRepo.GetByID(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("failed to get item %d: %w", itemID, err)
	}
	if existing == nil {
		return 0, fmt.Errorf("item %d: %w", itemID, entities.ErrNotFound)
	}
	if err := s.shopRepo.Deactivate(ctx, itemID); err != nil {
		return 0, fmt.Errorf("failed to deactivate item: %w", err)
	}
	removed, err := s.inventoryRepo.RemoveItemEverywhere(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear item from inventories: %w", err)
	}
	log.WithFields(log.Fields{
		"guildID": s.guildID,
		"itemID":  itemID,
		"removed": removed,
	}).Info("Shop item deactivated")
	return removed, nil
}
