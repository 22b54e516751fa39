package repository

import (
	"context"
	"errors"
	"fmt"

	"casino/economy-bot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// InventoryRepository implements the InventoryRepository interface
type InventoryRepository struct {
	q       Queryable
	guildID int64
}

// NewInventoryRepositoryScoped creates an inventory repository with a transaction and guild scope
func NewInventoryRepositoryScoped(tx Queryable, guildID int64) *InventoryRepository {
	return &InventoryRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Add increments the quantity of an item, creating the entry if needed
func (r *InventoryRepository) Add(ctx context.Context, userID, itemID int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("add %d items: %w", quantity, entities.ErrInvalidAmount)
	}
	query := `
		INSERT INTO inventory (user_id, guild_id, item_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, guild_id, item_id) DO UPDATE SET quantity = inventory.quantity + EXCLUDED.quantity
	`
	if _, err := r.q.Exec(ctx, query, userID, r.guildID, itemID, quantity); err != nil {
		return fmt.Errorf("failed to add item %d to %d: %w", itemID, userID, mapPgError(err, nil))
	}
	return nil
}

// Remove takes up to quantity items and deletes the entry once empty
func (r *InventoryRepository) Remove(ctx context.Context, userID, itemID int64, quantity int) (int, error) {
	owned, err := r.GetQuantityForUpdate(ctx, userID, itemID)
	if err != nil {
		return 0, err
	}
	removed := min(owned, quantity)
	if removed <= 0 {
		return 0, nil
	}

	if removed == owned {
		_, err = r.q.Exec(ctx, `DELETE FROM inventory WHERE user_id = $1 AND guild_id = $2 AND item_id = $3`, userID, r.guildID, itemID)
	} else {
		_, err = r.q.Exec(ctx, `UPDATE inventory SET quantity = quantity - $4 WHERE user_id = $1 AND guild_id = $2 AND item_id = $3`, userID, r.guildID, itemID, removed)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to remove item %d from %d: %w", itemID, userID, mapPgError(err, nil))
	}
	return removed, nil
}

// GetQuantityForUpdate returns the held quantity and locks the entry
func (r *InventoryRepository) GetQuantityForUpdate(ctx context.Context, userID, itemID int64) (int, error) {
	query := `
		SELECT quantity FROM inventory
		WHERE user_id = $1 AND guild_id = $2 AND item_id = $3
		FOR UPDATE
	`
	var quantity int
	err := r.q.QueryRow(ctx, query, userID, r.guildID, itemID).Scan(&quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get quantity of item %d for %d: %w", itemID, userID, mapPgError(err, nil))
	}
	return quantity, nil
}

// ListByUser returns the active items a member holds, ordered by name
func (r *InventoryRepository) ListByUser(ctx context.Context, userID int64) ([]*entities.InventoryEntry, error) {
	query := `
		SELECT inv.user_id, inv.guild_id, inv.item_id, inv.quantity,
			s.id, s.guild_id, s.item_type, s.name, s.description, s.price, s.external_id, s.active, s.created_at, s.updated_at
		FROM inventory inv
		JOIN shop_items s ON s.id = inv.item_id
		WHERE inv.user_id = $1 AND inv.guild_id = $2 AND s.active
		ORDER BY s.name ASC
	`

	rows, err := r.q.Query(ctx, query, userID, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory of %d: %w", userID, err)
	}
	defer rows.Close()

	var entries []*entities.InventoryEntry
	for rows.Next() {
		var entry entities.InventoryEntry
		var item entities.ShopItem
		err := rows.Scan(
			&entry.UserID, &entry.GuildID, &entry.ItemID, &entry.Quantity,
			&item.ID, &item.GuildID, &item.Type, &item.Name, &item.Description, &item.Price,
			&item.ExternalID, &item.Active, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory entry: %w", err)
		}
		entry.Item = &item
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inventory: %w", err)
	}
	return entries, nil
}

// RemoveItemEverywhere deletes an item from every inventory of the guild
func (r *InventoryRepository) RemoveItemEverywhere(ctx context.Context, itemID int64) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM inventory WHERE guild_id = $1 AND item_id = $2`, r.guildID, itemID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear item %d from inventories: %w", itemID, err)
	}
	return tag.RowsAffected(), nil
}
