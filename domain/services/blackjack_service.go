package services

import (
	"context"
	"fmt"
	"time"

	"casino/economy-bot/config"
	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/events"
	"casino/economy-bot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type blackjackService struct {
	guildID        int64
	blackjackRepo  interfaces.BlackjackRepository
	balanceService interfaces.BalanceService
	eventPublisher interfaces.EventPublisher
	rng            interfaces.RandomSource
}

// NewBlackjackService creates the card game engine of one guild
func NewBlackjackService(
	guildID int64,
	blackjackRepo interfaces.BlackjackRepository,
	balanceService interfaces.BalanceService,
	eventPublisher interfaces.EventPublisher,
	rng interfaces.RandomSource,
) interfaces.BlackjackService {
	return &blackjackService{
		guildID:        guildID,
		blackjackRepo:  blackjackRepo,
		balanceService: balanceService,
		eventPublisher: eventPublisher,
		rng:            rng,
	}
}

func (s *blackjackService) StartGame(ctx context.Context, userID, channelID int64, bet int64) (*entities.BlackjackOutcome, error) {
	cfg := config.Get().Blackjack
	if bet < cfg.MinBet {
		return nil, fmt.Errorf("bet %d below minimum %d: %w", bet, cfg.MinBet, entities.ErrInvalidAmount)
	}

	existing, err := s.blackjackRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active game: %w", err)
	}
	if existing != nil {
		return nil, entities.ErrActiveSession
	}

	if _, err := s.balanceService.AdjustCash(ctx, userID, -bet, entities.TransactionTypeBlackjackBet); err != nil {
		return nil, err
	}

	now := time.Now()
	session := &entities.BlackjackSession{
		UserID:    userID,
		GuildID:   s.guildID,
		ChannelID: channelID,
		Deck:      NewDeck(cfg.Decks, s.rng),
		Bet:       bet,
		StartTime: now,
		UpdatedAt: now,
	}
	session.PlayerHand = []entities.Card{drawCard(session, cfg.Decks, s.rng), drawCard(session, cfg.Decks, s.rng)}
	session.DealerHand = []entities.Card{drawCard(session, cfg.Decks, s.rng), drawCard(session, cfg.Decks, s.rng)}

	if err := s.blackjackRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"userID":    userID,
		"guildID":   s.guildID,
		"sessionID": session.ID,
		"bet":       bet,
	}).Info("Blackjack game started")

	playerNatural := IsNatural(session.PlayerHand)
	dealerNatural := IsNatural(session.DealerHand)
	switch {
	case playerNatural && dealerNatural:
		return s.settle(ctx, session, entities.BlackjackResultPush, bet, false)
	case playerNatural:
		return s.settle(ctx, session, entities.BlackjackResultBlackjack, naturalPayout(bet), false)
	case dealerNatural:
		return s.settle(ctx, session, entities.BlackjackResultDealer, 0, false)
	}

	return running(session), nil
}

func (s *blackjackService) ApplyAction(ctx context.Context, userID int64, action entities.BlackjackAction) (*entities.BlackjackOutcome, error) {
	return s.applyAction(ctx, userID, action, nil)
}

// ExpireGame settles an idle game as if the player stood
func (s *blackjackService) ExpireGame(ctx context.Context, userID int64, idleSince time.Time) (*entities.BlackjackOutcome, error) {
	return s.applyAction(ctx, userID, entities.BlackjackActionStand, &idleSince)
}

// applyAction runs one player action. A non-nil idleSince marks a timeout and
// requires the locked session to be untouched since then.
func (s *blackjackService) applyAction(ctx context.Context, userID int64, action entities.BlackjackAction, idleSince *time.Time) (*entities.BlackjackOutcome, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("action %q: %w", action, entities.ErrInvalidAction)
	}

	session, err := s.blackjackRepo.GetByUserForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if session == nil {
		return nil, entities.ErrNoActiveSession
	}
	timedOut := idleSince != nil
	if timedOut && session.UpdatedAt.After(*idleSince) {
		return nil, entities.ErrGameNotIdle
	}

	decks := config.Get().Blackjack.Decks

	switch action {
	case entities.BlackjackActionHit:
		session.PlayerHand = append(session.PlayerHand, drawCard(session, decks, s.rng))
		if score, _ := ScoreHand(session.PlayerHand, false); score > blackjackScore {
			return s.settle(ctx, session, entities.BlackjackResultDealer, 0, timedOut)
		}
		if err := s.blackjackRepo.Update(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to save game: %w", err)
		}
		return running(session), nil

	case entities.BlackjackActionStand:
		s.playDealer(session, decks)
		result, payout := settleAgainstDealer(session.PlayerHand, session.DealerHand, session.Bet, true)
		return s.settle(ctx, session, result, payout, timedOut)

	case entities.BlackjackActionDouble:
		if len(session.PlayerHand) != naturalHandSize {
			return nil, fmt.Errorf("double down needs exactly two cards: %w", entities.ErrInvalidAction)
		}
		if _, err := s.balanceService.AdjustCash(ctx, userID, -session.Bet, entities.TransactionTypeBlackjackBet); err != nil {
			return nil, err
		}
		session.Bet *= 2
		session.PlayerHand = append(session.PlayerHand, drawCard(session, decks, s.rng))
		if score, _ := ScoreHand(session.PlayerHand, false); score > blackjackScore {
			return s.settle(ctx, session, entities.BlackjackResultDealer, 0, timedOut)
		}
		s.playDealer(session, decks)
		result, payout := settleAgainstDealer(session.PlayerHand, session.DealerHand, session.Bet, false)
		return s.settle(ctx, session, result, payout, timedOut)
	}

	return nil, entities.ErrInvalidAction
}

// playDealer draws until the dealer reaches 17
func (s *blackjackService) playDealer(session *entities.BlackjackSession, decks int) {
	for {
		score, _ := ScoreHand(session.DealerHand, true)
		if score >= dealerStandsOn {
			return
		}
		session.DealerHand = append(session.DealerHand, drawCard(session, decks, s.rng))
	}
}

// settle pays out, records the history and closes the session
func (s *blackjackService) settle(ctx context.Context, session *entities.BlackjackSession, result entities.BlackjackResult, payout int64, timedOut bool) (*entities.BlackjackOutcome, error) {
	if payout > 0 {
		if _, err := s.balanceService.AdjustCash(ctx, session.UserID, payout, entities.TransactionTypeBlackjackPayout); err != nil {
			return nil, err
		}
	}

	playerScore, playerSoft := ScoreHand(session.PlayerHand, false)
	dealerScore, _ := ScoreHand(session.DealerHand, true)

	if err := s.blackjackRepo.RecordHistory(ctx, &entities.BlackjackHistory{
		SessionID:   session.ID,
		UserID:      session.UserID,
		GuildID:     session.GuildID,
		Bet:         session.Bet,
		Result:      result,
		Payout:      payout,
		PlayerHand:  session.PlayerHand,
		DealerHand:  session.DealerHand,
		PlayerScore: playerScore,
		DealerScore: dealerScore,
	}); err != nil {
		return nil, fmt.Errorf("failed to record game history: %w", err)
	}

	if err := s.blackjackRepo.Delete(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("failed to close game: %w", err)
	}

	if err := s.eventPublisher.Publish(events.BlackjackSettledEvent{
		SessionID: session.ID,
		UserID:    session.UserID,
		GuildID:   session.GuildID,
		Bet:       session.Bet,
		Result:    result,
		Payout:    payout,
		TimedOut:  timedOut,
	}); err != nil {
		log.WithError(err).Error("Failed to publish blackjack settled event")
	}

	log.WithFields(log.Fields{
		"userID":    session.UserID,
		"sessionID": session.ID,
		"result":    result,
		"bet":       session.Bet,
		"payout":    payout,
		"timedOut":  timedOut,
	}).Info("Blackjack game settled")

	return &entities.BlackjackOutcome{
		Session:     session,
		PlayerScore: playerScore,
		PlayerSoft:  playerSoft,
		DealerScore: dealerScore,
		Finished:    true,
		Result:      result,
		Payout:      payout,
		TimedOut:    timedOut,
	}, nil
}

// running reports a game still waiting for the player. Only the dealer's face-up cards are scored.
func running(session *entities.BlackjackSession) *entities.BlackjackOutcome {
	playerScore, playerSoft := ScoreHand(session.PlayerHand, false)
	var dealerScore int
	if len(session.DealerHand) > 1 {
		dealerScore, _ = ScoreHand(session.DealerHand[1:], true)
	}
	return &entities.BlackjackOutcome{
		Session:     session,
		PlayerScore: playerScore,
		PlayerSoft:  playerSoft,
		DealerScore: dealerScore,
	}
}

func (s *blackjackService) GetActiveGame(ctx context.Context, userID int64) (*entities.BlackjackOutcome, error) {
	session, err := s.blackjackRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if session == nil {
		return nil, entities.ErrNoActiveSession
	}
	return running(session), nil
}

func (s *blackjackService) AttachMessage(ctx context.Context, userID, channelID, messageID int64) error {
	session, err := s.blackjackRepo.GetByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}
	if session == nil {
		return entities.ErrNoActiveSession
	}
	if err := s.blackjackRepo.SetMessage(ctx, session.ID, channelID, messageID); err != nil {
		return fmt.Errorf("failed to attach message: %w", err)
	}
	return nil
}
