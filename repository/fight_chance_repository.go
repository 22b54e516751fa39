package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// FightChanceRepository implements the FightChanceRepository interface
type FightChanceRepository struct {
	q       Queryable
	guildID int64
}

// NewFightChanceRepositoryScoped creates a fight chance repository with a transaction and guild scope
func NewFightChanceRepositoryScoped(tx Queryable, guildID int64) *FightChanceRepository {
	return &FightChanceRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Get returns the stored chance and whether one exists
func (r *FightChanceRepository) Get(ctx context.Context, userID int64) (int, bool, error) {
	var chance int
	err := r.q.QueryRow(ctx, `SELECT chance FROM fight_chances WHERE user_id = $1 AND guild_id = $2`, userID, r.guildID).Scan(&chance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get fight chance of %d: %w", userID, err)
	}
	return chance, true, nil
}

func (r *FightChanceRepository) Set(ctx context.Context, userID int64, chance int) error {
	query := `
		INSERT INTO fight_chances (user_id, guild_id, chance)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, guild_id) DO UPDATE SET chance = EXCLUDED.chance
	`
	if _, err := r.q.Exec(ctx, query, userID, r.guildID, chance); err != nil {
		return fmt.Errorf("failed to save fight chance of %d: %w", userID, mapPgError(err, nil))
	}
	return nil
}
