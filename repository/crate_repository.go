package repository

import (
	"context"
	"errors"
	"fmt"

	"casino/economy-bot/domain/entities"

	"github.com/jackc/pgx/v5"
)

const crateRewardColumns = `id, guild_id, crate_external_id, reward_type, reward_value, chance, duration_secs, comp_coins, hidden_name, created_at`

// CrateRepository implements the CrateRepository interface
type CrateRepository struct {
	q       Queryable
	guildID int64
}

// NewCrateRepositoryScoped creates a crate repository with a transaction and guild scope
func NewCrateRepositoryScoped(tx Queryable, guildID int64) *CrateRepository {
	return &CrateRepository{
		q:       tx,
		guildID: guildID,
	}
}

func scanCrateReward(row pgx.Row) (*entities.CrateReward, error) {
	var reward entities.CrateReward
	err := row.Scan(
		&reward.ID,
		&reward.GuildID,
		&reward.CrateExternalID,
		&reward.Type,
		&reward.Value,
		&reward.Chance,
		&reward.DurationSecs,
		&reward.CompCoins,
		&reward.HiddenName,
		&reward.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reward, nil
}

// GetRewards returns the drops of a crate in insertion order
func (r *CrateRepository) GetRewards(ctx context.Context, crateExternalID string) ([]*entities.CrateReward, error) {
	query := `SELECT ` + crateRewardColumns + ` FROM crate_rewards WHERE guild_id = $1 AND crate_external_id = $2 ORDER BY id ASC`

	rows, err := r.q.Query(ctx, query, r.guildID, crateExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rewards of crate %q: %w", crateExternalID, err)
	}
	defer rows.Close()

	var rewards []*entities.CrateReward
	for rows.Next() {
		reward, err := scanCrateReward(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crate reward: %w", err)
		}
		rewards = append(rewards, reward)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate crate rewards: %w", err)
	}
	return rewards, nil
}

func (r *CrateRepository) GetReward(ctx context.Context, rewardID int64) (*entities.CrateReward, error) {
	query := `SELECT ` + crateRewardColumns + ` FROM crate_rewards WHERE id = $1 AND guild_id = $2`
	reward, err := scanCrateReward(r.q.QueryRow(ctx, query, rewardID, r.guildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crate reward %d: %w", rewardID, err)
	}
	return reward, nil
}

func (r *CrateRepository) AddReward(ctx context.Context, reward *entities.CrateReward) error {
	query := `
		INSERT INTO crate_rewards (guild_id, crate_external_id, reward_type, reward_value, chance, duration_secs, comp_coins, hidden_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		r.guildID, reward.CrateExternalID, reward.Type, reward.Value, reward.Chance,
		reward.DurationSecs, reward.CompCoins, reward.HiddenName,
	).Scan(&reward.ID, &reward.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add reward to crate %q: %w", reward.CrateExternalID, mapPgError(err, nil))
	}
	reward.GuildID = r.guildID
	return nil
}

func (r *CrateRepository) UpdateReward(ctx context.Context, reward *entities.CrateReward) error {
	query := `
		UPDATE crate_rewards
		SET reward_type = $3, reward_value = $4, chance = $5, duration_secs = $6, comp_coins = $7, hidden_name = $8
		WHERE id = $1 AND guild_id = $2
	`
	tag, err := r.q.Exec(ctx, query,
		reward.ID, r.guildID, reward.Type, reward.Value, reward.Chance,
		reward.DurationSecs, reward.CompCoins, reward.HiddenName,
	)
	if err != nil {
		return fmt.Errorf("failed to update crate reward %d: %w", reward.ID, mapPgError(err, nil))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("crate reward %d: %w", reward.ID, entities.ErrNotFound)
	}
	return nil
}

func (r *CrateRepository) DeleteReward(ctx context.Context, rewardID int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM crate_rewards WHERE id = $1 AND guild_id = $2`, rewardID, r.guildID)
	if err != nil {
		return fmt.Errorf("failed to delete crate reward %d: %w", rewardID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("crate reward %d: %w", rewardID, entities.ErrNotFound)
	}
	return nil
}
