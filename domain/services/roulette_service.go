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

type rouletteService struct {
	guildID        int64
	rouletteRepo   interfaces.RouletteRepository
	balanceService interfaces.BalanceService
	eventPublisher interfaces.EventPublisher
	rng            interfaces.RandomSource
}

// NewRouletteService creates the roulette rounds of one guild.
// Callers serialise calls per channel.
func NewRouletteService(
	guildID int64,
	rouletteRepo interfaces.RouletteRepository,
	balanceService interfaces.BalanceService,
	eventPublisher interfaces.EventPublisher,
	rng interfaces.RandomSource,
) interfaces.RouletteService {
	return &rouletteService{
		guildID:        guildID,
		rouletteRepo:   rouletteRepo,
		balanceService: balanceService,
		eventPublisher: eventPublisher,
		rng:            rng,
	}
}

func (s *rouletteService) PlaceBet(ctx context.Context, channelID, userID int64, amount int64, space string) (*entities.BetPlacement, error) {
	cfg := config.Get().Roulette
	if amount < cfg.MinBet {
		return nil, fmt.Errorf("bet %d below minimum %d: %w", amount, cfg.MinBet, entities.ErrInvalidAmount)
	}
	normalized, spaceType, err := ParseSpace(space)
	if err != nil {
		return nil, err
	}

	if _, err := s.balanceService.AdjustCash(ctx, userID, -amount, entities.TransactionTypeRouletteBet); err != nil {
		return nil, err
	}

	now := time.Now()
	placement := &entities.BetPlacement{}

	round, err := s.rouletteRepo.GetRoundByChannel(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	if round == nil {
		round = &entities.RouletteRound{
			GuildID:   s.guildID,
			ChannelID: channelID,
			EndTime:   now.Add(cfg.Duration),
		}
		if err := s.rouletteRepo.CreateRound(ctx, round); err != nil {
			return nil, fmt.Errorf("failed to open round: %w", err)
		}
		placement.OpenedRound = true
		log.WithFields(log.Fields{
			"guildID":   s.guildID,
			"channelID": channelID,
			"roundID":   round.ID,
			"endTime":   round.EndTime,
		}).Info("Roulette round opened")
	}
	placement.Round = round

	if round.IsClosed(now) {
		if _, err := s.balanceService.AdjustCash(ctx, userID, amount, entities.TransactionTypeRouletteRefund); err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{
			"userID":  userID,
			"roundID": round.ID,
		}).Info("Roulette round already closed, bet refunded")
		placement.Refunded = true
		return placement, nil
	}

	bet := &entities.RouletteBet{
		RoundID:   round.ID,
		UserID:    userID,
		Amount:    amount,
		Space:     normalized,
		SpaceType: spaceType,
	}
	if err := s.rouletteRepo.AddBet(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to record bet: %w", err)
	}
	placement.Bet = bet
	return placement, nil
}

func (s *rouletteService) SetResult(ctx context.Context, channelID int64, slot int) error {
	if slot < 0 || slot >= RouletteSlots {
		return fmt.Errorf("slot %d is not on the wheel: %w", slot, entities.ErrInvalidAction)
	}
	round, err := s.rouletteRepo.GetRoundByChannel(ctx, channelID)
	if err != nil {
		return fmt.Errorf("failed to get round: %w", err)
	}
	if round == nil {
		return fmt.Errorf("no round in channel %d: %w", channelID, entities.ErrNotFound)
	}
	if err := s.rouletteRepo.SetResult(ctx, channelID, slot); err != nil {
		return fmt.Errorf("failed to set result: %w", err)
	}
	return nil
}

func (s *rouletteService) ResolveRound(ctx context.Context, channelID int64) (*entities.RouletteSettlement, error) {
	round, err := s.rouletteRepo.GetRoundByChannel(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	if round == nil {
		return nil, fmt.Errorf("no round in channel %d: %w", channelID, entities.ErrNotFound)
	}

	var slot int
	if round.Result != nil {
		slot = *round.Result
	} else {
		slot = s.rng.IntN(RouletteSlots)
	}

	bets, err := s.rouletteRepo.GetBets(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}

	settlement := &entities.RouletteSettlement{
		RoundID:   round.ID,
		GuildID:   round.GuildID,
		ChannelID: round.ChannelID,
		Result:    slot,
		Color:     SlotColorOf(slot),
		Entries:   make([]*entities.RouletteHistoryEntry, 0, len(bets)),
	}

	var wagered int64
	for _, bet := range bets {
		winnings := Winnings(bet, slot)
		if winnings > 0 {
			if _, err := s.balanceService.AdjustCash(ctx, bet.UserID, winnings, entities.TransactionTypeRoulettePayout); err != nil {
				return nil, err
			}
		}
		wagered += bet.Amount
		settlement.Entries = append(settlement.Entries, &entities.RouletteHistoryEntry{
			RoundID:   round.ID,
			GuildID:   round.GuildID,
			ChannelID: round.ChannelID,
			UserID:    bet.UserID,
			Amount:    bet.Amount,
			Space:     bet.Space,
			SpaceType: bet.SpaceType,
			Result:    slot,
			Winnings:  winnings,
		})
	}

	if len(settlement.Entries) > 0 {
		if err := s.rouletteRepo.RecordHistory(ctx, settlement.Entries); err != nil {
			return nil, fmt.Errorf("failed to record round history: %w", err)
		}
	}
	if err := s.rouletteRepo.DeleteRound(ctx, round.ID); err != nil {
		return nil, fmt.Errorf("failed to delete round: %w", err)
	}

	if err := s.eventPublisher.Publish(events.RouletteResolvedEvent{
		RoundID:       round.ID,
		GuildID:       round.GuildID,
		ChannelID:     round.ChannelID,
		Result:        slot,
		Bets:          len(bets),
		TotalWagered:  wagered,
		TotalWinnings: settlement.TotalWinnings(),
	}); err != nil {
		log.WithError(err).Error("Failed to publish roulette resolved event")
	}

	log.WithFields(log.Fields{
		"roundID":   round.ID,
		"channelID": round.ChannelID,
		"result":    slot,
		"bets":      len(bets),
		"wagered":   wagered,
		"paid":      settlement.TotalWinnings(),
	}).Info("Roulette round resolved")

	return settlement, nil
}
