package entities

import (
	"errors"
	"time"
)

// LedgerEntry is an audit record of a single balance mutation
type LedgerEntry struct {
	ID              int64           `db:"id"`
	UserID          int64           `db:"user_id"`
	GuildID         int64           `db:"guild_id"`
	Kind            BalanceKind     `db:"balance_kind"`
	Amount          int64           `db:"amount"`
	BalanceBefore   int64           `db:"balance_before"`
	BalanceAfter    int64           `db:"balance_after"`
	TransactionType TransactionType `db:"transaction_type"`
	Metadata        map[string]any  `db:"metadata"`
	CreatedAt       time.Time       `db:"created_at"`
}

// IsCredit returns true if the entry added money
func (e *LedgerEntry) IsCredit() bool {
	return e.Amount > 0
}

// Validate performs basic validation on the entry
func (e *LedgerEntry) Validate() error {
	if e.Kind != BalanceKindCash && e.Kind != BalanceKindBank {
		return errors.New("ledger entry must target cash or bank")
	}
	if e.BalanceAfter != e.BalanceBefore+e.Amount {
		return errors.New("balance calculation is inconsistent")
	}
	return nil
}
