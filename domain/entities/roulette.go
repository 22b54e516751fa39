package entities

import (
	"time"
)

// SpaceType is the category of a roulette bet
type SpaceType string

const (
	SpaceTypeNumber SpaceType = "number"
	SpaceTypeDozen  SpaceType = "dozen"
	SpaceTypeColumn SpaceType = "column"
	SpaceTypeHalf   SpaceType = "half"
	SpaceTypeParity SpaceType = "parity"
	SpaceTypeColor  SpaceType = "color"
)

// SlotColor is the color of a wheel slot
type SlotColor string

const (
	SlotColorGreen SlotColor = "green"
	SlotColorRed   SlotColor = "red"
	SlotColorBlack SlotColor = "black"
)

// RouletteRound is the open betting window of a channel
type RouletteRound struct {
	ID        int64     `db:"id"`
	GuildID   int64     `db:"guild_id"`
	ChannelID int64     `db:"channel_id"`
	EndTime   time.Time `db:"end_time"`
	Result    *int      `db:"result"` // preset winning slot, drawn at resolution when nil
	CreatedAt time.Time `db:"created_at"`
}

// IsClosed reports whether the betting deadline has passed
func (r *RouletteRound) IsClosed(now time.Time) bool {
	return !now.Before(r.EndTime)
}

// RouletteBet is a stake placed in a round
type RouletteBet struct {
	ID        int64     `db:"id"`
	RoundID   int64     `db:"round_id"`
	UserID    int64     `db:"user_id"`
	Amount    int64     `db:"amount"`
	Space     string    `db:"space"`
	SpaceType SpaceType `db:"space_type"`
	CreatedAt time.Time `db:"created_at"`
}

// RouletteHistoryEntry is a settled bet
type RouletteHistoryEntry struct {
	ID        int64     `db:"id"`
	RoundID   int64     `db:"round_id"`
	GuildID   int64     `db:"guild_id"`
	ChannelID int64     `db:"channel_id"`
	UserID    int64     `db:"user_id"`
	Amount    int64     `db:"amount"`
	Space     string    `db:"space"`
	SpaceType SpaceType `db:"space_type"`
	Result    int       `db:"result"`
	Winnings  int64     `db:"winnings"`
	CreatedAt time.Time `db:"created_at"`
}

// RouletteSettlement summarises a resolved round
type RouletteSettlement struct {
	RoundID   int64
	GuildID   int64
	ChannelID int64
	Result    int
	Color     SlotColor
	Entries   []*RouletteHistoryEntry
}

// TotalWinnings returns the amount paid out for the round
func (s *RouletteSettlement) TotalWinnings() int64 {
	var total int64
	for _, e := range s.Entries {
		total += e.Winnings
	}
	return total
}

// BetPlacement is the outcome of placing a roulette bet
type BetPlacement struct {
	Bet         *RouletteBet
	Round       *RouletteRound
	OpenedRound bool // the bet opened a new betting window
	Refunded    bool // the window had already closed and the stake was returned
}
