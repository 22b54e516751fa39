package repository

import (
	"context"
	"errors"
	"fmt"

	"casino/economy-bot/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Queryable is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock, so repositories
// run the same way inside and outside a transaction
type Queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres error codes the domain reacts to
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// mapPgError translates lock conflicts and uniqueness violations into domain errors
func mapPgError(err error, onUnique error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgDeadlockDetected, pgSerializationFailure:
		return fmt.Errorf("%w: %s", entities.ErrConcurrencyConflict, pgErr.Message)
	case pgUniqueViolation:
		if onUnique != nil {
			return onUnique
		}
	}
	return err
}

// guildFilter is the scope argument of cross-guild capable queries; 0 matches every guild
const guildFilter = "($1::bigint = 0 OR guild_id = $1)"
