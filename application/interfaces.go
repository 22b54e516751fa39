package application

import (
	"context"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"
)

// RoundAnnouncer presents roulette rounds to the channel they run in.
// This keeps the application layer free of any chat platform dependency.
type RoundAnnouncer interface {
	// AnnounceRoundOpened tells the channel a betting window opened
	AnnounceRoundOpened(ctx context.Context, round *entities.RouletteRound) error

	// AnnounceSettlement posts the winning slot and every payout
	AnnounceSettlement(ctx context.Context, settlement *entities.RouletteSettlement) error
}

// ResponderFactory builds the responder for game steps nobody interacted with,
// such as an inactivity timeout
type ResponderFactory interface {
	ForSession(session *entities.BlackjackSession) interfaces.Responder
}

// NoopResponder discards every response. It stands in when a game has nowhere to report to.
type NoopResponder struct{}

func (NoopResponder) RespondWith(ctx context.Context, outcome *entities.BlackjackOutcome) error {
	return nil
}

func (NoopResponder) Notify(ctx context.Context, message string) error {
	return nil
}
