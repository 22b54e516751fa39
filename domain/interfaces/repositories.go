package interfaces

import (
	"context"
	"time"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/events"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// Ensure creates a zero-balance account if none exists
	Ensure(ctx context.Context, userID int64) error

	// Get retrieves an account without locking it, nil when absent
	Get(ctx context.Context, userID int64) (*entities.Account, error)

	// GetForUpdate retrieves an account and locks its row until the transaction ends
	GetForUpdate(ctx context.Context, userID int64) (*entities.Account, error)

	// UpdateBalances writes both balances of an account
	UpdateBalances(ctx context.Context, userID int64, cash, bank int64) error

	// GetTop returns the richest accounts of the guild
	GetTop(ctx context.Context, sortBy entities.LeaderboardSort, limit int) ([]*entities.LeaderboardEntry, error)

	// GetRank returns the 1-based position of an account, 0 when absent
	GetRank(ctx context.Context, userID int64, sortBy entities.LeaderboardSort) (int, error)

	// GetTotals sums every account of the guild
	GetTotals(ctx context.Context) (*entities.GuildTotals, error)
}

// LedgerRepository defines the interface for the balance audit trail
type LedgerRepository interface {
	// Record appends a ledger entry
	Record(ctx context.Context, entry *entities.LedgerEntry) error

	// GetByUser returns the most recent entries of a member
	GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.LedgerEntry, error)
}

// CooldownRepository defines the interface for command rate limits
type CooldownRepository interface {
	// Get returns the last use of a command, nil when never used
	Get(ctx context.Context, userID int64, command string) (*entities.Cooldown, error)

	// Touch records a use of a command
	Touch(ctx context.Context, userID int64, command string, at time.Time) error
}

// ShopRepository defines the interface for shop items
type ShopRepository interface {
	Create(ctx context.Context, item *entities.ShopItem) error
	Update(ctx context.Context, item *entities.ShopItem) error

	// Deactivate hides an item from the shop
	Deactivate(ctx context.Context, itemID int64) error

	// Active item lookups, nil when absent
	GetByID(ctx context.Context, itemID int64) (*entities.ShopItem, error)
	GetByExternalID(ctx context.Context, externalID string) (*entities.ShopItem, error)
	GetByName(ctx context.Context, name string) (*entities.ShopItem, error)

	// List returns active items ordered by price, all types when itemType is nil
	List(ctx context.Context, itemType *entities.ItemType) ([]*entities.ShopItem, error)
}

// InventoryRepository defines the interface for member inventories
type InventoryRepository interface {
	// Add increments the quantity of an item, creating the entry if needed
	Add(ctx context.Context, userID, itemID int64, quantity int) error

	// Remove takes up to quantity items and returns how many were removed
	Remove(ctx context.Context, userID, itemID int64, quantity int) (int, error)

	// GetQuantityForUpdate returns the held quantity and locks the entry
	GetQuantityForUpdate(ctx context.Context, userID, itemID int64) (int, error)

	// ListByUser returns the active items a member holds
	ListByUser(ctx context.Context, userID int64) ([]*entities.InventoryEntry, error)

	// RemoveItemEverywhere deletes an item from every inventory of the guild
	RemoveItemEverywhere(ctx context.Context, itemID int64) (int64, error)
}

// CrateRepository defines the interface for crate drop tables
type CrateRepository interface {
	// GetRewards returns the drops of a crate in insertion order
	GetRewards(ctx context.Context, crateExternalID string) ([]*entities.CrateReward, error)

	GetReward(ctx context.Context, rewardID int64) (*entities.CrateReward, error)
	AddReward(ctx context.Context, reward *entities.CrateReward) error
	UpdateReward(ctx context.Context, reward *entities.CrateReward) error
	DeleteReward(ctx context.Context, rewardID int64) error
}

// TempRoleRepository defines the interface for durable temporary role grants
type TempRoleRepository interface {
	// Get returns the grant of a role, nil when absent
	Get(ctx context.Context, userID, roleID int64) (*entities.TempRoleGrant, error)

	// Upsert creates or moves the expiry of a grant
	Upsert(ctx context.Context, grant *entities.TempRoleGrant) error

	// DeleteIfExpired removes a grant only if it expired by the given time
	DeleteIfExpired(ctx context.Context, userID, roleID int64, now time.Time) (bool, error)

	// GetAll returns every grant, across guilds when the repository is not guild scoped
	GetAll(ctx context.Context) ([]*entities.TempRoleGrant, error)
}

// BlackjackRepository defines the interface for card game sessions
type BlackjackRepository interface {
	// Create stores a new session, ErrActiveSession if the member already plays
	Create(ctx context.Context, session *entities.BlackjackSession) error

	// GetByUser returns the active session of a member, nil when absent
	GetByUser(ctx context.Context, userID int64) (*entities.BlackjackSession, error)

	// GetByUserForUpdate returns the session of a member and locks it
	GetByUserForUpdate(ctx context.Context, userID int64) (*entities.BlackjackSession, error)

	// Update persists hands, deck and bet
	Update(ctx context.Context, session *entities.BlackjackSession) error

	// SetMessage attaches the presentation message to a session
	SetMessage(ctx context.Context, sessionID, channelID, messageID int64) error

	Delete(ctx context.Context, sessionID int64) error
	RecordHistory(ctx context.Context, history *entities.BlackjackHistory) error

	// GetIdleSince returns sessions not touched since the given time
	GetIdleSince(ctx context.Context, before time.Time) ([]*entities.BlackjackSession, error)
}

// RouletteRepository defines the interface for roulette rounds
type RouletteRepository interface {
	// GetRoundByChannel returns the open round of a channel, nil when absent
	GetRoundByChannel(ctx context.Context, channelID int64) (*entities.RouletteRound, error)

	CreateRound(ctx context.Context, round *entities.RouletteRound) error

	// SetResult presets the winning slot of the open round of a channel
	SetResult(ctx context.Context, channelID int64, result int) error

	AddBet(ctx context.Context, bet *entities.RouletteBet) error
	GetBets(ctx context.Context, roundID int64) ([]*entities.RouletteBet, error)
	RecordHistory(ctx context.Context, entries []*entities.RouletteHistoryEntry) error

	// DeleteRound removes a round together with its bets
	DeleteRound(ctx context.Context, roundID int64) error

	// GetAllRounds returns open rounds, across guilds when the repository is not guild scoped
	GetAllRounds(ctx context.Context) ([]*entities.RouletteRound, error)
}

// FightChanceRepository defines the interface for cockfight win chances
type FightChanceRepository interface {
	// Get returns the stored chance and whether one exists
	Get(ctx context.Context, userID int64) (int, bool, error)
	Set(ctx context.Context, userID int64, chance int) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding transaction commits
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes every buffered event
	Flush(ctx context.Context) error

	// Discard drops every buffered event
	Discard()
}
