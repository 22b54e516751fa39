package events

import (
	"time"

	"casino/economy-bot/domain/entities"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange    EventType = "balance_change"
	EventTypeCrateOpened      EventType = "crate_opened"
	EventTypeBlackjackSettled EventType = "blackjack_settled"
	EventTypeRouletteResolved EventType = "roulette_resolved"
	EventTypeTempRoleExpired  EventType = "temp_role_expired"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a committed change of one balance
type BalanceChangeEvent struct {
	UserID          int64                    `json:"user_id"`
	GuildID         int64                    `json:"guild_id"`
	Kind            entities.BalanceKind     `json:"kind"`
	OldBalance      int64                    `json:"old_balance"`
	NewBalance      int64                    `json:"new_balance"`
	ChangeAmount    int64                    `json:"change_amount"`
	TransactionType entities.TransactionType `json:"transaction_type"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// CrateOpenedEvent is emitted once per crate opening
type CrateOpenedEvent struct {
	UserID          int64  `json:"user_id"`
	GuildID         int64  `json:"guild_id"`
	CrateExternalID string `json:"crate_external_id"`
	Opened          int    `json:"opened"`
	CoinsGranted    int64  `json:"coins_granted"`
	RolesGranted    int    `json:"roles_granted"`
	ItemsGranted    int    `json:"items_granted"`
}

func (e CrateOpenedEvent) Type() EventType {
	return EventTypeCrateOpened
}

// BlackjackSettledEvent is emitted when a card game ends
type BlackjackSettledEvent struct {
	SessionID int64                    `json:"session_id"`
	UserID    int64                    `json:"user_id"`
	GuildID   int64                    `json:"guild_id"`
	Bet       int64                    `json:"bet"`
	Result    entities.BlackjackResult `json:"result"`
	Payout    int64                    `json:"payout"`
	TimedOut  bool                     `json:"timed_out"`
}

func (e BlackjackSettledEvent) Type() EventType {
	return EventTypeBlackjackSettled
}

// RouletteResolvedEvent is emitted when a betting window closes
type RouletteResolvedEvent struct {
	RoundID       int64 `json:"round_id"`
	GuildID       int64 `json:"guild_id"`
	ChannelID     int64 `json:"channel_id"`
	Result        int   `json:"result"`
	Bets          int   `json:"bets"`
	TotalWagered  int64 `json:"total_wagered"`
	TotalWinnings int64 `json:"total_winnings"`
}

func (e RouletteResolvedEvent) Type() EventType {
	return EventTypeRouletteResolved
}

// TempRoleExpiredEvent is emitted when a temporary role is revoked
type TempRoleExpiredEvent struct {
	UserID    int64     `json:"user_id"`
	GuildID   int64     `json:"guild_id"`
	RoleID    int64     `json:"role_id"`
	ExpiredAt time.Time `json:"expired_at"`
}

func (e TempRoleExpiredEvent) Type() EventType {
	return EventTypeTempRoleExpired
}
