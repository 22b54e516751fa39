package entities

import (
	"time"
)

// BalanceKind names one of the two balances of an account
type BalanceKind string

const (
	BalanceKindCash BalanceKind = "cash"
	BalanceKindBank BalanceKind = "bank"
)

// Account holds a member's balances within a specific guild.
// Cash may go negative only while the bank covers it: Cash + Bank >= 0 and Bank >= 0.
type Account struct {
	UserID    int64     `db:"user_id"`
	GuildID   int64     `db:"guild_id"`
	Cash      int64     `db:"cash"`
	Bank      int64     `db:"bank"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Total returns cash plus bank
func (a *Account) Total() int64 {
	return a.Cash + a.Bank
}

// CanSpendCash checks whether cash alone covers an amount
func (a *Account) CanSpendCash(amount int64) bool {
	return a.Cash >= amount
}

// ValidBalances reports whether the given balances keep the account invariant
func ValidBalances(cash, bank int64) bool {
	return bank >= 0 && cash >= -bank
}

// LeaderboardSort selects the balance a leaderboard is ranked by
type LeaderboardSort string

const (
	LeaderboardSortCash  LeaderboardSort = "cash"
	LeaderboardSortBank  LeaderboardSort = "bank"
	LeaderboardSortTotal LeaderboardSort = "total"
)

// IsValid checks the sort key
func (s LeaderboardSort) IsValid() bool {
	return s == LeaderboardSortCash || s == LeaderboardSortBank || s == LeaderboardSortTotal
}

// LeaderboardEntry is one ranked account
type LeaderboardEntry struct {
	Rank   int
	UserID int64
	Cash   int64
	Bank   int64
	Total  int64
}

// GuildTotals sums every account of a guild
type GuildTotals struct {
	Cash     int64
	Bank     int64
	Accounts int64
}
