package repository

import (
	"context"
	"fmt"

	"casino/economy-bot/domain/entities"
)

// LedgerRepository implements the LedgerRepository interface
type LedgerRepository struct {
	q       Queryable
	guildID int64
}

// NewLedgerRepositoryScoped creates a ledger repository with a transaction and guild scope
func NewLedgerRepositoryScoped(tx Queryable, guildID int64) *LedgerRepository {
	return &LedgerRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Record appends an entry and fills its id and timestamp
func (r *LedgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	query := `
		INSERT INTO ledger_entries (user_id, guild_id, balance_kind, amount, balance_before, balance_after, transaction_type, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		entry.UserID,
		r.guildID,
		entry.Kind,
		entry.Amount,
		entry.BalanceBefore,
		entry.BalanceAfter,
		entry.TransactionType,
		metadata,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry for %d: %w", entry.UserID, mapPgError(err, nil))
	}
	entry.GuildID = r.guildID
	return nil
}

// GetByUser returns the most recent entries of a member, newest first
func (r *LedgerRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.LedgerEntry, error) {
	query := `
		SELECT id, user_id, guild_id, balance_kind, amount, balance_before, balance_after, transaction_type, metadata, created_at
		FROM ledger_entries
		WHERE user_id = $1 AND guild_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, userID, r.guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger of %d: %w", userID, err)
	}
	defer rows.Close()

	var entries []*entities.LedgerEntry
	for rows.Next() {
		var entry entities.LedgerEntry
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.GuildID,
			&entry.Kind,
			&entry.Amount,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.TransactionType,
			&entry.Metadata,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return entries, nil
}
