package repository

import (
	"context"
	"errors"
	"fmt"

	"casino/economy-bot/domain/entities"

	"github.com/jackc/pgx/v5"
)

const rouletteRoundColumns = `id, guild_id, channel_id, end_time, result, created_at`

// RouletteRepository implements the RouletteRepository interface
type RouletteRepository struct {
	q       Queryable
	guildID int64
}

// NewRouletteRepositoryScoped creates a roulette repository with a transaction and guild scope
func NewRouletteRepositoryScoped(tx Queryable, guildID int64) *RouletteRepository {
	return &RouletteRepository{
		q:       tx,
		guildID: guildID,
	}
}

func scanRouletteRound(row pgx.Row) (*entities.RouletteRound, error) {
	var round entities.RouletteRound
	var result *int16
	if err := row.Scan(&round.ID, &round.GuildID, &round.ChannelID, &round.EndTime, &result, &round.CreatedAt); err != nil {
		return nil, err
	}
	if result != nil {
		slot := int(*result)
		round.Result = &slot
	}
	return &round, nil
}

// GetRoundByChannel returns the open round of a channel and locks it
func (r *RouletteRepository) GetRoundByChannel(ctx context.Context, channelID int64) (*entities.RouletteRound, error) {
	query := `SELECT ` + rouletteRoundColumns + ` FROM roulette_rounds WHERE channel_id = $1 FOR UPDATE`
	round, err := scanRouletteRound(r.q.QueryRow(ctx, query, channelID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get roulette round of channel %d: %w", channelID, mapPgError(err, nil))
	}
	return round, nil
}

func (r *RouletteRepository) CreateRound(ctx context.Context, round *entities.RouletteRound) error {
	query := `
		INSERT INTO roulette_rounds (guild_id, channel_id, end_time)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query, r.guildID, round.ChannelID, round.EndTime).Scan(&round.ID, &round.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to open roulette round in channel %d: %w", round.ChannelID, mapPgError(err, entities.ErrConcurrencyConflict))
	}
	round.GuildID = r.guildID
	return nil
}

// SetResult presets the winning slot of the open round of a channel
func (r *RouletteRepository) SetResult(ctx context.Context, channelID int64, result int) error {
	tag, err := r.q.Exec(ctx, `UPDATE roulette_rounds SET result = $2 WHERE channel_id = $1`, channelID, result)
	if err != nil {
		return fmt.Errorf("failed to set roulette result in channel %d: %w", channelID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("roulette round in channel %d: %w", channelID, entities.ErrNotFound)
	}
	return nil
}

func (r *RouletteRepository) AddBet(ctx context.Context, bet *entities.RouletteBet) error {
	query := `
		INSERT INTO roulette_bets (round_id, user_id, amount, space, space_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query, bet.RoundID, bet.UserID, bet.Amount, bet.Space, bet.SpaceType).Scan(&bet.ID, &bet.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add roulette bet of %d: %w", bet.UserID, mapPgError(err, nil))
	}
	return nil
}

// GetBets returns the bets of a round in placement order
func (r *RouletteRepository) GetBets(ctx context.Context, roundID int64) ([]*entities.RouletteBet, error) {
	query := `
		SELECT id, round_id, user_id, amount, space, space_type, created_at
		FROM roulette_bets
		WHERE round_id = $1
		ORDER BY id ASC
	`
	rows, err := r.q.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets of round %d: %w", roundID, err)
	}
	defer rows.Close()

	var bets []*entities.RouletteBet
	for rows.Next() {
		var bet entities.RouletteBet
		if err := rows.Scan(&bet.ID, &bet.RoundID, &bet.UserID, &bet.Amount, &bet.Space, &bet.SpaceType, &bet.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan roulette bet: %w", err)
		}
		bets = append(bets, &bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roulette bets: %w", err)
	}
	return bets, nil
}

// RecordHistory stores every settled bet of a round in a single insert
func (r *RouletteRepository) RecordHistory(ctx context.Context, entries []*entities.RouletteHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO roulette_history (round_id, guild_id, channel_id, user_id, amount, space, space_type, result, winnings)
		VALUES `

	values := make([]any, 0, len(entries)*9)
	for i, e := range entries {
		if i > 0 {
			query += ", "
		}
		offset := i * 9
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			offset+1, offset+2, offset+3, offset+4, offset+5, offset+6, offset+7, offset+8, offset+9)
		values = append(values, e.RoundID, e.GuildID, e.ChannelID, e.UserID, e.Amount, e.Space, e.SpaceType, e.Result, e.Winnings)
	}

	if _, err := r.q.Exec(ctx, query, values...); err != nil {
		return fmt.Errorf("failed to record history of round %d: %w", entries[0].RoundID, err)
	}
	return nil
}

// DeleteRound removes a round, its bets cascade
func (r *RouletteRepository) DeleteRound(ctx context.Context, roundID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM roulette_rounds WHERE id = $1`, roundID); err != nil {
		return fmt.Errorf("failed to delete roulette round %d: %w", roundID, err)
	}
	return nil
}

// GetAllRounds returns open rounds, across guilds when unscoped
func (r *RouletteRepository) GetAllRounds(ctx context.Context) ([]*entities.RouletteRound, error) {
	query := `SELECT ` + rouletteRoundColumns + ` FROM roulette_rounds WHERE ` + guildFilter + ` ORDER BY end_time ASC`
	rows, err := r.q.Query(ctx, query, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roulette rounds: %w", err)
	}
	defer rows.Close()

	var rounds []*entities.RouletteRound
	for rows.Next() {
		round, err := scanRouletteRound(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roulette round: %w", err)
		}
		rounds = append(rounds, round)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roulette rounds: %w", err)
	}
	return rounds, nil
}
