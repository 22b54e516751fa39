package entities

import (
	"strconv"
	"time"
)

// ItemType is the kind of a shop item
type ItemType string

const (
	ItemTypeRole ItemType = "role"
	ItemTypeCase ItemType = "case"
	ItemTypeItem ItemType = "item"
)

// IsValid checks the item type
func (t ItemType) IsValid() bool {
	return t == ItemTypeRole || t == ItemTypeCase || t == ItemTypeItem
}

// ShopItem is something members can buy. Deactivated items are hidden and removed from inventories.
type ShopItem struct {
	ID          int64     `db:"id" json:"id"`
	GuildID     int64     `db:"guild_id" json:"guild_id"`
	Type        ItemType  `db:"item_type" json:"type"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       int64     `db:"price" json:"price"`
	ExternalID  *string   `db:"external_id" json:"external_id"` // role id for role items, crate reference for cases
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// RoleID returns the role granted by a role item
func (i *ShopItem) RoleID() (int64, bool) {
	if i.Type != ItemTypeRole || i.ExternalID == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(*i.ExternalID, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// InventoryEntry is the quantity of one item held by a member
type InventoryEntry struct {
	UserID   int64 `db:"user_id"`
	GuildID  int64 `db:"guild_id"`
	ItemID   int64 `db:"item_id"`
	Quantity int   `db:"quantity"`
	Item     *ShopItem
}

// Cooldown is the last use of a rate-limited command
type Cooldown struct {
	UserID   int64     `db:"user_id"`
	GuildID  int64     `db:"guild_id"`
	Command  string    `db:"command"`
	LastUsed time.Time `db:"last_used"`
}

// Remaining returns how long the command stays locked for the given period
func (c *Cooldown) Remaining(period time.Duration, now time.Time) time.Duration {
	if c == nil {
		return 0
	}
	left := c.LastUsed.Add(period).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}
