package entities

import (
	"strings"
	"time"
)

// Card is a rank followed by a suit, e.g. "10♥" or "A♠"
type Card string

// Suits and ranks of a standard deck
var (
	CardSuits = []string{"♠", "♥", "♦", "♣"}
	CardRanks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
)

// Rank returns the rank part of the card
func (c Card) Rank() string {
	s := string(c)
	for _, suit := range CardSuits {
		if strings.HasSuffix(s, suit) {
			return strings.TrimSuffix(s, suit)
		}
	}
	return s
}

// IsAce reports whether the card is an ace
func (c Card) IsAce() bool {
	return c.Rank() == "A"
}

// BlackjackAction is a player move
type BlackjackAction string

const (
	BlackjackActionHit    BlackjackAction = "hit"
	BlackjackActionStand  BlackjackAction = "stand"
	BlackjackActionDouble BlackjackAction = "double"
)

// IsValid checks the action
func (a BlackjackAction) IsValid() bool {
	return a == BlackjackActionHit || a == BlackjackActionStand || a == BlackjackActionDouble
}

// BlackjackResult is the settlement of a finished game
type BlackjackResult string

const (
	BlackjackResultPlayer    BlackjackResult = "player"    // player wins 2x
	BlackjackResultBlackjack BlackjackResult = "blackjack" // natural, pays 2.5x
	BlackjackResultDealer    BlackjackResult = "dealer"    // bet lost
	BlackjackResultPush      BlackjackResult = "push"      // bet returned
)

// BlackjackSession is a game in progress
type BlackjackSession struct {
	ID         int64     `db:"id"`
	UserID     int64     `db:"user_id"`
	GuildID    int64     `db:"guild_id"`
	ChannelID  int64     `db:"channel_id"`
	MessageID  *int64    `db:"message_id"`
	PlayerHand []Card    `db:"player_hand"`
	DealerHand []Card    `db:"dealer_hand"`
	Deck       []Card    `db:"deck"`
	Bet        int64     `db:"bet"`
	StartTime  time.Time `db:"start_time"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// BlackjackOutcome is the state reported to the presentation layer after every step
type BlackjackOutcome struct {
	Session     *BlackjackSession
	PlayerScore int
	PlayerSoft  bool
	DealerScore int // only the visible cards while the game is running
	Finished    bool
	Result      BlackjackResult
	Payout      int64
	TimedOut    bool
}

// BlackjackHistory is the record of a settled game
type BlackjackHistory struct {
	ID          int64           `db:"id"`
	SessionID   int64           `db:"session_id"`
	UserID      int64           `db:"user_id"`
	GuildID     int64           `db:"guild_id"`
	Bet         int64           `db:"bet"`
	Result      BlackjackResult `db:"result"`
	Payout      int64           `db:"payout"`
	PlayerHand  []Card          `db:"player_hand"`
	DealerHand  []Card          `db:"dealer_hand"`
	PlayerScore int             `db:"player_score"`
	DealerScore int             `db:"dealer_score"`
	CreatedAt   time.Time       `db:"created_at"`
}
