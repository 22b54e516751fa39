package interfaces

import (
	"context"
	"time"

	"casino/economy-bot/domain/entities"
)

// BalanceService defines the atomic balance primitives of one guild
type BalanceService interface {
	// EnsureAccount creates a zero-balance account if absent
	EnsureAccount(ctx context.Context, userID int64) error

	// GetBalance returns the account, creating it first
	GetBalance(ctx context.Context, userID int64) (*entities.Account, error)

	// AdjustCash adds delta to cash and returns the new cash
	AdjustCash(ctx context.Context, userID int64, delta int64, txType entities.TransactionType) (int64, error)

	// AdjustBank adds delta to the bank and returns the new bank
	AdjustBank(ctx context.Context, userID int64, delta int64, txType entities.TransactionType) (int64, error)

	DepositToBank(ctx context.Context, userID int64, amount int64) (*entities.Account, error)
	WithdrawFromBank(ctx context.Context, userID int64, amount int64) (*entities.Account, error)

	// ApplyFine takes up to fine from cash and returns the amount actually taken
	ApplyFine(ctx context.Context, userID int64, fine int64) (int64, error)

	// TransferCash moves amount from sender cash and credits amount-fee to the receiver
	TransferCash(ctx context.Context, senderID, receiverID int64, amount, fee int64) error

	// RobCash moves up to desired from target cash to robber cash and returns the amount moved
	RobCash(ctx context.Context, robberID, targetID int64, desired int64) (int64, error)
}

// RoleManager grants and revokes platform roles
type RoleManager interface {
	HasRole(ctx context.Context, guildID, userID, roleID int64) (bool, error)
	AddRole(ctx context.Context, guildID, userID, roleID int64) error
	RemoveRole(ctx context.Context, guildID, userID, roleID int64) error
}

// Responder is how a game reports back to whoever triggered an action.
// Interactive commands and internal triggers such as timeouts both implement it.
type Responder interface {
	RespondWith(ctx context.Context, outcome *entities.BlackjackOutcome) error
	Notify(ctx context.Context, message string) error
}

// RandomSource is the randomness used by games and rewards.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// CooldownService rate-limits repeatable commands
type CooldownService interface {
	// Remaining returns how long the command stays locked, zero when usable
	Remaining(ctx context.Context, userID int64, command string, period time.Duration) (time.Duration, error)

	// Touch marks the command as used now
	Touch(ctx context.Context, userID int64, command string) error

	// Acquire fails with a *entities.CooldownError while locked, otherwise touches the command
	Acquire(ctx context.Context, userID int64, command string, period time.Duration) error
}

// CrateService opens crates held in inventories
type CrateService interface {
	// OpenCrate consumes count crates and grants their rewards. Role grants are
	// reported in the summary and applied by the caller once the transaction commits.
	OpenCrate(ctx context.Context, userID, crateItemID int64, count int) (*entities.RewardSummary, error)

	ListRewards(ctx context.Context, crateExternalID string) ([]*entities.CrateReward, error)
	AddReward(ctx context.Context, reward *entities.CrateReward) error
	UpdateReward(ctx context.Context, reward *entities.CrateReward) error
	DeleteReward(ctx context.Context, rewardID int64) error
}

// BlackjackService runs card games
type BlackjackService interface {
	StartGame(ctx context.Context, userID, channelID int64, bet int64) (*entities.BlackjackOutcome, error)
	ApplyAction(ctx context.Context, userID int64, action entities.BlackjackAction) (*entities.BlackjackOutcome, error)

	// ExpireGame settles a game untouched since idleSince through the stand path.
	// A game played after idleSince is left running with ErrGameNotIdle.
	ExpireGame(ctx context.Context, userID int64, idleSince time.Time) (*entities.BlackjackOutcome, error)

	// GetActiveGame returns the running game of a member, ErrNoActiveSession when none
	GetActiveGame(ctx context.Context, userID int64) (*entities.BlackjackOutcome, error)

	AttachMessage(ctx context.Context, userID, channelID, messageID int64) error
}

// RouletteService runs the betting rounds of one guild
type RouletteService interface {
	// PlaceBet deducts the stake and joins or opens the round of the channel.
	// If the round already closed the stake is refunded and the placement says so.
	PlaceBet(ctx context.Context, channelID, userID int64, amount int64, space string) (*entities.BetPlacement, error)

	// SetResult presets the winning slot of the open round
	SetResult(ctx context.Context, channelID int64, slot int) error

	// ResolveRound pays every bet of the round and deletes it
	ResolveRound(ctx context.Context, channelID int64) (*entities.RouletteSettlement, error)
}

// IncomeService pays the earn commands
type IncomeService interface {
	Earn(ctx context.Context, userID int64, kind entities.IncomeKind) (*entities.IncomeResult, error)
	Collect(ctx context.Context, userID int64, heldRoles []int64) (*entities.CollectResult, error)
}

// PaymentService moves cash between members with a tax
type PaymentService interface {
	Pay(ctx context.Context, senderID, receiverID int64, amount int64, senderRoles []int64) (*entities.PaymentResult, error)
}

// RobberyService resolves robbery attempts
type RobberyService interface {
	Rob(ctx context.Context, robberID, targetID int64, targetRoles []int64) (*entities.RobberyResult, error)
}

// ShopService sells items and manages the catalog
type ShopService interface {
	ListItems(ctx context.Context, itemType *entities.ItemType) ([]*entities.ShopItem, error)

	// FindItem resolves an item by id, external id or name
	FindItem(ctx context.Context, query string) (*entities.ShopItem, error)

	Buy(ctx context.Context, userID, itemID int64, heldRoles []int64) (*entities.PurchaseResult, error)
	Inventory(ctx context.Context, userID int64) ([]*entities.InventoryEntry, error)

	AddItem(ctx context.Context, item *entities.ShopItem) error
	UpdateItem(ctx context.Context, item *entities.ShopItem) error

	// DeactivateItem hides an item and removes it from every inventory
	DeactivateItem(ctx context.Context, itemID int64) (int64, error)
}

// CockfightService runs cockfights
type CockfightService interface {
	Fight(ctx context.Context, userID int64, bet int64) (*entities.CockfightResult, error)
}

// LeaderboardService ranks the accounts of a guild
type LeaderboardService interface {
	TopAccounts(ctx context.Context, sortBy entities.LeaderboardSort, limit int) ([]*entities.LeaderboardEntry, error)
	AccountRank(ctx context.Context, userID int64, sortBy entities.LeaderboardSort) (int, error)
	GuildTotals(ctx context.Context) (*entities.GuildTotals, error)
}
