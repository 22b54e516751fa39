package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casino/economy-bot/domain/entities"

	"github.com/jackc/pgx/v5"
)

const blackjackSessionColumns = `id, user_id, guild_id, channel_id, message_id, player_hand, dealer_hand, deck, bet, start_time, updated_at`

// BlackjackRepository implements the BlackjackRepository interface.
// Hands and the deck are stored as JSONB arrays of card strings.
type BlackjackRepository struct {
	q       Queryable
	guildID int64
}

// NewBlackjackRepositoryScoped creates a blackjack repository with a transaction and guild scope
func NewBlackjackRepositoryScoped(tx Queryable, guildID int64) *BlackjackRepository {
	return &BlackjackRepository{
		q:       tx,
		guildID: guildID,
	}
}

func scanBlackjackSession(row pgx.Row) (*entities.BlackjackSession, error) {
	var session entities.BlackjackSession
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.GuildID,
		&session.ChannelID,
		&session.MessageID,
		&session.PlayerHand,
		&session.DealerHand,
		&session.Deck,
		&session.Bet,
		&session.StartTime,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Create stores a new session, ErrActiveSession if the member already plays
func (r *BlackjackRepository) Create(ctx context.Context, session *entities.BlackjackSession) error {
	query := `
		INSERT INTO blackjack_sessions (user_id, guild_id, channel_id, player_hand, dealer_hand, deck, bet, start_time, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id
	`
	err := r.q.QueryRow(ctx, query,
		session.UserID, r.guildID, session.ChannelID,
		session.PlayerHand, session.DealerHand, session.Deck,
		session.Bet, session.StartTime,
	).Scan(&session.ID)
	if err != nil {
		return fmt.Errorf("failed to create blackjack session for %d: %w", session.UserID, mapPgError(err, entities.ErrActiveSession))
	}
	session.GuildID = r.guildID
	return nil
}

func (r *BlackjackRepository) getByUser(ctx context.Context, userID int64, lock bool) (*entities.BlackjackSession, error) {
	query := `SELECT ` + blackjackSessionColumns + ` FROM blackjack_sessions WHERE user_id = $1 AND guild_id = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	session, err := scanBlackjackSession(r.q.QueryRow(ctx, query, userID, r.guildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blackjack session of %d: %w", userID, mapPgError(err, nil))
	}
	return session, nil
}

func (r *BlackjackRepository) GetByUser(ctx context.Context, userID int64) (*entities.BlackjackSession, error) {
	return r.getByUser(ctx, userID, false)
}

func (r *BlackjackRepository) GetByUserForUpdate(ctx context.Context, userID int64) (*entities.BlackjackSession, error) {
	return r.getByUser(ctx, userID, true)
}

// Update persists hands, deck and bet
func (r *BlackjackRepository) Update(ctx context.Context, session *entities.BlackjackSession) error {
	query := `
		UPDATE blackjack_sessions
		SET player_hand = $2, dealer_hand = $3, deck = $4, bet = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.q.QueryRow(ctx, query, session.ID, session.PlayerHand, session.DealerHand, session.Deck, session.Bet).Scan(&session.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("blackjack session %d: %w", session.ID, entities.ErrNoActiveSession)
	}
	if err != nil {
		return fmt.Errorf("failed to update blackjack session %d: %w", session.ID, mapPgError(err, nil))
	}
	return nil
}

// SetMessage attaches the presentation message to a session
func (r *BlackjackRepository) SetMessage(ctx context.Context, sessionID, channelID, messageID int64) error {
	query := `UPDATE blackjack_sessions SET channel_id = $2, message_id = $3 WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, sessionID, channelID, messageID); err != nil {
		return fmt.Errorf("failed to attach message to blackjack session %d: %w", sessionID, err)
	}
	return nil
}

func (r *BlackjackRepository) Delete(ctx context.Context, sessionID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM blackjack_sessions WHERE id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to delete blackjack session %d: %w", sessionID, err)
	}
	return nil
}

func (r *BlackjackRepository) RecordHistory(ctx context.Context, history *entities.BlackjackHistory) error {
	query := `
		INSERT INTO blackjack_history (session_id, user_id, guild_id, bet, result, payout, player_hand, dealer_hand, player_score, dealer_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		history.SessionID, history.UserID, history.GuildID, history.Bet, history.Result, history.Payout,
		history.PlayerHand, history.DealerHand, history.PlayerScore, history.DealerScore,
	).Scan(&history.ID, &history.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record blackjack history of session %d: %w", history.SessionID, err)
	}
	return nil
}

// GetIdleSince returns sessions not touched since the given time, across guilds when unscoped
func (r *BlackjackRepository) GetIdleSince(ctx context.Context, before time.Time) ([]*entities.BlackjackSession, error) {
	query := `
		SELECT ` + blackjackSessionColumns + `
		FROM blackjack_sessions
		WHERE ` + guildFilter + ` AND updated_at < $2
		ORDER BY updated_at ASC
	`
	rows, err := r.q.Query(ctx, query, r.guildID, before)
	if err != nil {
		return nil, fmt.Errorf("failed to get idle blackjack sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*entities.BlackjackSession
	for rows.Next() {
		session, err := scanBlackjackSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blackjack session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate blackjack sessions: %w", err)
	}
	return sessions, nil
}
