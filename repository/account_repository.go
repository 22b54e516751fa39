package repository

import (
	"context"
	"errors"
	"fmt"

	"casino/economy-bot/database"
	"casino/economy-bot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q       Queryable
	guildID int64
}

// NewAccountRepository creates an account repository outside any transaction
func NewAccountRepository(db *database.DB, guildID int64) *AccountRepository {
	return &AccountRepository{q: db.Pool, guildID: guildID}
}

// NewAccountRepositoryScoped creates an account repository with a transaction and guild scope
func NewAccountRepositoryScoped(tx Queryable, guildID int64) *AccountRepository {
	return &AccountRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Ensure creates a zero-balance account if none exists
func (r *AccountRepository) Ensure(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO accounts (user_id, guild_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, guild_id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, query, userID, r.guildID); err != nil {
		return fmt.Errorf("failed to ensure account %d in guild %d: %w", userID, r.guildID, mapPgError(err, nil))
	}
	return nil
}

func (r *AccountRepository) get(ctx context.Context, query string, userID int64) (*entities.Account, error) {
	var account entities.Account
	err := r.q.QueryRow(ctx, query, userID, r.guildID).Scan(
		&account.UserID,
		&account.GuildID,
		&account.Cash,
		&account.Bank,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d in guild %d: %w", userID, r.guildID, mapPgError(err, nil))
	}
	return &account, nil
}

// Get retrieves an account without locking it
func (r *AccountRepository) Get(ctx context.Context, userID int64) (*entities.Account, error) {
	return r.get(ctx, `
		SELECT user_id, guild_id, cash, bank, created_at, updated_at
		FROM accounts
		WHERE user_id = $1 AND guild_id = $2
	`, userID)
}

// GetForUpdate retrieves an account and holds its row lock until the transaction ends
func (r *AccountRepository) GetForUpdate(ctx context.Context, userID int64) (*entities.Account, error) {
	return r.get(ctx, `
		SELECT user_id, guild_id, cash, bank, created_at, updated_at
		FROM accounts
		WHERE user_id = $1 AND guild_id = $2
		FOR UPDATE
	`, userID)
}

// UpdateBalances writes both balances of an account
func (r *AccountRepository) UpdateBalances(ctx context.Context, userID int64, cash, bank int64) error {
	query := `
		UPDATE accounts
		SET cash = $3, bank = $4, updated_at = NOW()
		WHERE user_id = $1 AND guild_id = $2
	`
	tag, err := r.q.Exec(ctx, query, userID, r.guildID, cash, bank)
	if err != nil {
		return fmt.Errorf("failed to update balances of %d in guild %d: %w", userID, r.guildID, mapPgError(err, nil))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d in guild %d: %w", userID, r.guildID, entities.ErrNotFound)
	}
	return nil
}

func sortColumn(sortBy entities.LeaderboardSort) string {
	switch sortBy {
	case entities.LeaderboardSortCash:
		return "cash"
	case entities.LeaderboardSortBank:
		return "bank"
	default:
		return "cash + bank"
	}
}

// GetTop returns the richest accounts of the guild
func (r *AccountRepository) GetTop(ctx context.Context, sortBy entities.LeaderboardSort, limit int) ([]*entities.LeaderboardEntry, error) {
	query := fmt.Sprintf(`
		SELECT user_id, cash, bank, cash + bank AS total
		FROM accounts
		WHERE guild_id = $1
		ORDER BY %s DESC, user_id ASC
		LIMIT $2
	`, sortColumn(sortBy))

	rows, err := r.q.Query(ctx, query, r.guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard of guild %d: %w", r.guildID, err)
	}
	defer rows.Close()

	var entries []*entities.LeaderboardEntry
	for rows.Next() {
		var entry entities.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Cash, &entry.Bank, &entry.Total); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entry.Rank = len(entries) + 1
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}
	return entries, nil
}

// GetRank returns the 1-based position of an account, 0 when absent
func (r *AccountRepository) GetRank(ctx context.Context, userID int64, sortBy entities.LeaderboardSort) (int, error) {
	column := sortColumn(sortBy)
	query := fmt.Sprintf(`
		SELECT rank FROM (
			SELECT user_id, ROW_NUMBER() OVER (ORDER BY %s DESC, user_id ASC) AS rank
			FROM accounts
			WHERE guild_id = $1
		) ranked
		WHERE user_id = $2
	`, column)

	var rank int
	err := r.q.QueryRow(ctx, query, r.guildID, userID).Scan(&rank)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get rank of %d in guild %d: %w", userID, r.guildID, err)
	}
	return rank, nil
}

// GetTotals sums every account of the guild
func (r *AccountRepository) GetTotals(ctx context.Context) (*entities.GuildTotals, error) {
	query := `
		SELECT COALESCE(SUM(cash), 0), COALESCE(SUM(bank), 0), COUNT(*)
		FROM accounts
		WHERE guild_id = $1
	`
	var totals entities.GuildTotals
	if err := r.q.QueryRow(ctx, query, r.guildID).Scan(&totals.Cash, &totals.Bank, &totals.Accounts); err != nil {
		return nil, fmt.Errorf("failed to sum accounts of guild %d: %w", r.guildID, err)
	}
	return &totals, nil
}
