package repository

import (
	"context"
	"errors"
	"fmt"

	"casino/economy-bot/domain/entities"

	"github.com/jackc/pgx/v5"
)

const shopItemColumns = `id, guild_id, item_type, name, description, price, external_id, active, created_at, updated_at`

// ShopRepository implements the ShopRepository interface
type ShopRepository struct {
	q       Queryable
	guildID int64
}

// NewShopRepositoryScoped creates a shop repository with a transaction and guild scope
func NewShopRepositoryScoped(tx Queryable, guildID int64) *ShopRepository {
	return &ShopRepository{
		q:       tx,
		guildID: guildID,
	}
}

func scanShopItem(row pgx.Row) (*entities.ShopItem, error) {
	var item entities.ShopItem
	err := row.Scan(
		&item.ID,
		&item.GuildID,
		&item.Type,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.ExternalID,
		&item.Active,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ShopRepository) getOne(ctx context.Context, where string, arg any) (*entities.ShopItem, error) {
	query := `SELECT ` + shopItemColumns + ` FROM shop_items WHERE guild_id = $1 AND active AND ` + where + ` ORDER BY id LIMIT 1`
	item, err := scanShopItem(r.q.QueryRow(ctx, query, r.guildID, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop item %v: %w", arg, err)
	}
	return item, nil
}

func (r *ShopRepository) Create(ctx context.Context, item *entities.ShopItem) error {
	query := `
		INSERT INTO shop_items (guild_id, item_type, name, description, price, external_id, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		r.guildID, item.Type, item.Name, item.Description, item.Price, item.ExternalID, item.Active,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create shop item %q: %w", item.Name, mapPgError(err, nil))
	}
	item.GuildID = r.guildID
	return nil
}

func (r *ShopRepository) Update(ctx context.Context, item *entities.ShopItem) error {
	query := `
		UPDATE shop_items
		SET item_type = $3, name = $4, description = $5, price = $6, external_id = $7, updated_at = NOW()
		WHERE id = $1 AND guild_id = $2
	`
	tag, err := r.q.Exec(ctx, query, item.ID, r.guildID, item.Type, item.Name, item.Description, item.Price, item.ExternalID)
	if err != nil {
		return fmt.Errorf("failed to update shop item %d: %w", item.ID, mapPgError(err, nil))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("shop item %d: %w", item.ID, entities.ErrNotFound)
	}
	return nil
}

// Deactivate hides an item from the shop
func (r *ShopRepository) Deactivate(ctx context.Context, itemID int64) error {
	query := `UPDATE shop_items SET active = FALSE, updated_at = NOW() WHERE id = $1 AND guild_id = $2`
	tag, err := r.q.Exec(ctx, query, itemID, r.guildID)
	if err != nil {
		return fmt.Errorf("failed to deactivate shop item %d: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("shop item %d: %w", itemID, entities.ErrNotFound)
	}
	return nil
}

func (r *ShopRepository) GetByID(ctx context.Context, itemID int64) (*entities.ShopItem, error) {
	return r.getOne(ctx, "id = $2", itemID)
}

func (r *ShopRepository) GetByExternalID(ctx context.Context, externalID string) (*entities.ShopItem, error) {
	return r.getOne(ctx, "external_id = $2", externalID)
}

// GetByName matches case-insensitively
func (r *ShopRepository) GetByName(ctx context.Context, name string) (*entities.ShopItem, error) {
	return r.getOne(ctx, "LOWER(name) = LOWER($2)", name)
}

// List returns active items ordered by price, all types when itemType is nil
func (r *ShopRepository) List(ctx context.Context, itemType *entities.ItemType) ([]*entities.ShopItem, error) {
	query := `
		SELECT ` + shopItemColumns + `
		FROM shop_items
		WHERE guild_id = $1 AND active AND ($2::varchar IS NULL OR item_type = $2)
		ORDER BY price ASC, id ASC
	`
	var typeArg *string
	if itemType != nil {
		s := string(*itemType)
		typeArg = &s
	}

	rows, err := r.q.Query(ctx, query, r.guildID, typeArg)
	if err != nil {
		return nil, fmt.Errorf("failed to list shop items: %w", err)
	}
	defer rows.Close()

	var items []*entities.ShopItem
	for rows.Next() {
		item, err := scanShopItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shop item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shop items: %w", err)
	}
	return items, nil
}
