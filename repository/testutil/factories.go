package testutil

import (
	"time"

	"casino/economy-bot/domain/entities"
)

// CreateTestShopItem creates an active shop item with default values
func CreateTestShopItem(guildID int64, name string, itemType entities.ItemType, price int64) *entities.ShopItem {
	return &entities.ShopItem{
		GuildID:     guildID,
		Type:        itemType,
		Name:        name,
		Description: name + " for testing",
		Price:       price,
		Active:      true,
	}
}

// CreateTestCrate creates a case item that references crateExternalID
func CreateTestCrate(guildID int64, crateExternalID string, price int64) *entities.ShopItem {
	item := CreateTestShopItem(guildID, "Crate "+crateExternalID, entities.ItemTypeCase, price)
	item.ExternalID = &crateExternalID
	return item
}

// CreateTestCrateReward creates a cash drop of a crate
func CreateTestCrateReward(guildID int64, crateExternalID string, amount string, chance int) *entities.CrateReward {
	return &entities.CrateReward{
		GuildID:         guildID,
		CrateExternalID: crateExternalID,
		Type:            entities.RewardTypeCoinsCash,
		Value:           amount,
		Chance:          chance,
	}
}

// CreateTestTempRole creates a grant that expires after ttl, negative for expired grants
func CreateTestTempRole(guildID, userID, roleID int64, ttl time.Duration) *entities.TempRoleGrant {
	return &entities.TempRoleGrant{
		UserID:    userID,
		GuildID:   guildID,
		RoleID:    roleID,
		ExpiresAt: time.Now().Add(ttl).UTC().Truncate(time.Microsecond),
	}
}

// CreateTestLedgerEntry creates a cash credit ledger entry
func CreateTestLedgerEntry(userID int64, before, after int64, transactionType entities.TransactionType) *entities.LedgerEntry {
	return &entities.LedgerEntry{
		UserID:          userID,
		Kind:            entities.BalanceKindCash,
		Amount:          after - before,
		BalanceBefore:   before,
		BalanceAfter:    after,
		TransactionType: transactionType,
		Metadata:        map[string]any{"test": true},
	}
}
