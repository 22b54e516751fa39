package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casino/economy-bot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// CooldownRepository implements the CooldownRepository interface
type CooldownRepository struct {
	q       Queryable
	guildID int64
}

// NewCooldownRepositoryScoped creates a cooldown repository with a transaction and guild scope
func NewCooldownRepositoryScoped(tx Queryable, guildID int64) *CooldownRepository {
	return &CooldownRepository{
		q:       tx,
		guildID: guildID,
	}
}

func (r *CooldownRepository) Get(ctx context.Context, userID int64, command string) (*entities.Cooldown, error) {
	query := `
		SELECT user_id, guild_id, command, last_used
		FROM cooldowns
		WHERE user_id = $1 AND guild_id = $2 AND command = $3
	`
	var cooldown entities.Cooldown
	err := r.q.QueryRow(ctx, query, userID, r.guildID, command).Scan(
		&cooldown.UserID,
		&cooldown.GuildID,
		&cooldown.Command,
		&cooldown.LastUsed,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cooldown %s of %d: %w", command, userID, err)
	}
	return &cooldown, nil
}

func (r *CooldownRepository) Touch(ctx context.Context, userID int64, command string, at time.Time) error {
	query := `
		INSERT INTO cooldowns (user_id, guild_id, command, last_used)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, guild_id, command) DO UPDATE SET last_used = EXCLUDED.last_used
	`
	if _, err := r.q.Exec(ctx, query, userID, r.guildID, command, at); err != nil {
		return fmt.Errorf("failed to touch cooldown %s of %d: %w", command, userID, mapPgError(err, nil))
	}
	return nil
}
