package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const resolveTimeout = 30 * time.Second

type roundKey struct {
	guildID   int64
	channelID int64
}

// roundTimer resolves one round. A failed resolution re-arms it with backoff.
type roundTimer struct {
	timer *time.Timer
	retry *backoff.ExponentialBackOff
}

// RouletteTable serialises roulette rounds per channel and resolves each round
// when its betting window closes
type RouletteTable struct {
	tx        *Transactor
	rng       interfaces.RandomSource
	roles     interfaces.RoleManager
	announcer RoundAnnouncer
	locks     *keyedMutex

	mu            sync.Mutex
	timers        map[roundKey]*roundTimer
	retryInterval time.Duration
	baseCtx       context.Context
	cancel        context.CancelFunc
}

// NewRouletteTable creates a table. announcer may be nil when nobody watches the rounds.
func NewRouletteTable(tx *Transactor, rng interfaces.RandomSource, roles interfaces.RoleManager, announcer RoundAnnouncer) *RouletteTable {
	ctx, cancel := context.WithCancel(context.Background())
	return &RouletteTable{
		tx:        tx,
		rng:       rng,
		roles:     roles,
		announcer: announcer,
		locks:     newKeyedMutex(),
		timers:        make(map[roundKey]*roundTimer),
		retryInterval: defaultRetryInterval,
		baseCtx:       ctx,
		cancel:        cancel,
	}
}

// PlaceBet stakes amount on a space in the channel round, opening a round when none runs.
// A bet arriving after the window closed is refunded and reported as ErrRoundClosed,
// and the overdue round is queued for resolution unless a timer already owns it.
func (t *RouletteTable) PlaceBet(ctx context.Context, guildID, channelID, userID int64, amount int64, space string) (*entities.BetPlacement, error) {
	unlock := t.locks.Lock(channelID)
	defer unlock()

	var placement *entities.BetPlacement
	err := t.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		placement, err = newGuildServices(uow, guildID, t.rng, t.roles).Roulette().PlaceBet(ctx, channelID, userID, amount, space)
		return err
	})
	if err != nil {
		return nil, err
	}
	if placement.Refunded {
		t.ensureScheduled(guildID, channelID, placement.Round.EndTime)
		return placement, entities.ErrRoundClosed
	}

	if placement.OpenedRound {
		t.schedule(guildID, channelID, placement.Round.EndTime)
		if t.announcer != nil {
			if err := t.announcer.AnnounceRoundOpened(ctx, placement.Round); err != nil {
				log.WithFields(log.Fields{
					"channelID": channelID,
					"roundID":   placement.Round.ID,
					"error":     err,
				}).Warn("Failed to announce roulette round")
			}
		}
	}
	return placement, nil
}

// SetResult presets the winning slot of the channel round
func (t *RouletteTable) SetResult(ctx context.Context, guildID, channelID int64, slot int) error {
	unlock := t.locks.Lock(channelID)
	defer unlock()

	return t.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		return newGuildServices(uow, guildID, t.rng, t.roles).Roulette().SetResult(ctx, channelID, slot)
	})
}

// ResolveRound settles the channel round. It returns nil, nil when no round runs there.
func (t *RouletteTable) ResolveRound(ctx context.Context, guildID, channelID int64) (*entities.RouletteSettlement, error) {
	unlock := t.locks.Lock(channelID)
	var settlement *entities.RouletteSettlement
	err := t.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		settlement, err = newGuildServices(uow, guildID, t.rng, t.roles).Roulette().ResolveRound(ctx, channelID)
		return err
	})
	if err == nil || errors.Is(err, entities.ErrNotFound) {
		t.clearTimer(roundKey{guildID: guildID, channelID: channelID})
	}
	unlock()

	if errors.Is(err, entities.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve roulette round: %w", err)
	}

	if t.announcer != nil {
		if err := t.announcer.AnnounceSettlement(ctx, settlement); err != nil {
			log.WithFields(log.Fields{
				"channelID": channelID,
				"roundID":   settlement.RoundID,
				"error":     err,
			}).Warn("Failed to announce roulette settlement")
		}
	}
	return settlement, nil
}

// RecoverRounds schedules every round that survived a restart. Overdue rounds resolve at once.
func (t *RouletteTable) RecoverRounds(ctx context.Context) error {
	var rounds []*entities.RouletteRound
	err := t.tx.Do(ctx, 0, func(uow interfaces.UnitOfWork) error {
		var err error
		rounds, err = uow.RouletteRepository().GetAllRounds(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to load roulette rounds: %w", err)
	}

	for _, round := range rounds {
		t.schedule(round.GuildID, round.ChannelID, round.EndTime)
	}
	log.WithField("rounds", len(rounds)).Info("Roulette rounds recovered")
	return nil
}

func (t *RouletteTable) schedule(guildID, channelID int64, endTime time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scheduleLocked(roundKey{guildID: guildID, channelID: channelID}, endTime)
}

// ensureScheduled arms a timer only when the round has none
func (t *RouletteTable) ensureScheduled(guildID, channelID int64, endTime time.Time) {
	key := roundKey{guildID: guildID, channelID: channelID}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.timers[key]; ok {
		return
	}
	t.scheduleLocked(key, endTime)
}

func (t *RouletteTable) scheduleLocked(key roundKey, endTime time.Time) {
	if t.baseCtx.Err() != nil {
		return
	}
	if prev, ok := t.timers[key]; ok {
		prev.timer.Stop()
	}
	entry := &roundTimer{retry: newRetryBackOff(t.retryInterval)}
	entry.timer = time.AfterFunc(max(time.Until(endTime), 0), func() {
		t.fire(key, entry)
	})
	t.timers[key] = entry
}

func (t *RouletteTable) fire(key roundKey, entry *roundTimer) {
	ctx, cancel := context.WithTimeout(t.baseCtx, resolveTimeout)
	defer cancel()

	_, err := t.ResolveRound(ctx, key.guildID, key.channelID)
	if err == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Stopped, resolved elsewhere or replaced by a newer round
	if t.baseCtx.Err() != nil || t.timers[key] != entry {
		log.WithFields(log.Fields{
			"guildID":   key.guildID,
			"channelID": key.channelID,
			"error":     err,
		}).Error("Failed to resolve roulette round")
		return
	}
	wait := entry.retry.NextBackOff()
	log.WithFields(log.Fields{
		"guildID":   key.guildID,
		"channelID": key.channelID,
		"retryIn":   wait,
		"error":     err,
	}).Error("Failed to resolve roulette round, retrying")
	entry.timer = time.AfterFunc(wait, func() {
		t.fire(key, entry)
	})
}

// clearTimer drops the timer of a resolved round. Callers hold the channel lock.
func (t *RouletteTable) clearTimer(key roundKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if entry, ok := t.timers[key]; ok {
		entry.timer.Stop()
		delete(t.timers, key)
	}
}

// Stop cancels pending resolutions. Open rounds stay stored and are recovered on the next start.
func (t *RouletteTable) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, entry := range t.timers {
		entry.timer.Stop()
		delete(t.timers, key)
	}
	t.cancel()
}

// Scheduled returns the number of rounds waiting for resolution
func (t *RouletteTable) Scheduled() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}
