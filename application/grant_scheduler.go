package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/events"
	"casino/economy-bot/domain/interfaces"
	"casino/economy-bot/infrastructure/observability"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRecoveryConcurrency = 8
	revocationTimeout          = 30 * time.Second
)

type grantKey struct {
	guildID int64
	userID  int64
	roleID  int64
}

type scheduledRevocation struct {
	timer      *time.Timer
	generation uint64
	expiresAt  time.Time
	retry      *backoff.ExponentialBackOff
}

// PendingRevocation describes one scheduled role removal
type PendingRevocation struct {
	GuildID   int64     `json:"guild_id"`
	UserID    int64     `json:"user_id"`
	RoleID    int64     `json:"role_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GrantScheduler removes temporary roles when their durable grant expires.
// A (guild, user, role) key has at most one live timer.
type GrantScheduler struct {
	tx                  *Transactor
	roles               interfaces.RoleManager
	recoveryConcurrency int
	retryInterval       time.Duration

	mu         sync.Mutex
	pending    map[grantKey]*scheduledRevocation
	generation uint64
	running    bool
	baseCtx    context.Context
	cancel     context.CancelFunc
}

// NewGrantScheduler creates a stopped scheduler
func NewGrantScheduler(tx *Transactor, roles interfaces.RoleManager) *GrantScheduler {
	return &GrantScheduler{
		tx:                  tx,
		roles:               roles,
		recoveryConcurrency: defaultRecoveryConcurrency,
		retryInterval:       defaultRetryInterval,
		pending:             make(map[grantKey]*scheduledRevocation),
	}
}

// Start enables scheduling and reconciles timers with the stored grants
func (s *GrantScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.baseCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.running = true
	s.mu.Unlock()

	return s.RecoverPendingGrants(ctx)
}

// RecoverPendingGrants re-applies missing roles of active grants and schedules every
// stored grant. Expired grants are scheduled at once so they get purged.
// Running it again only replaces timers, so it never doubles anything.
func (s *GrantScheduler) RecoverPendingGrants(ctx context.Context) error {
	var grants []*entities.TempRoleGrant
	err := s.tx.Do(ctx, 0, func(uow interfaces.UnitOfWork) error {
		var err error
		grants, err = uow.TempRoleRepository().GetAll(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to load temporary roles: %w", err)
	}

	now := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.recoveryConcurrency)

	var reapplied int
	var reappliedMu sync.Mutex
	for _, grant := range grants {
		if grant.IsActive(now) {
			g.Go(func() error {
				added, err := s.ensureRole(gctx, grant)
				if err != nil {
					// One unreachable member must not block the rest
					log.WithFields(log.Fields{
						"guildID": grant.GuildID,
						"userID":  grant.UserID,
						"roleID":  grant.RoleID,
						"error":   err,
					}).Warn("Failed to re-apply temporary role")
					return nil
				}
				if added {
					reappliedMu.Lock()
					reapplied++
					reappliedMu.Unlock()
				}
				return nil
			})
		}
		s.ScheduleRevocation(grant.GuildID, grant.UserID, grant.RoleID, grant.ExpiresAt)
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"grants":    len(grants),
		"reapplied": reapplied,
	}).Info("Temporary roles recovered")
	return nil
}

func (s *GrantScheduler) ensureRole(ctx context.Context, grant *entities.TempRoleGrant) (bool, error) {
	held, err := s.roles.HasRole(ctx, grant.GuildID, grant.UserID, grant.RoleID)
	if err != nil {
		return false, err
	}
	if held {
		return false, nil
	}
	if err := s.roles.AddRole(ctx, grant.GuildID, grant.UserID, grant.RoleID); err != nil {
		return false, err
	}
	return true, nil
}

// ScheduleRevocation replaces any timer of the key with one firing at expiresAt.
// Past expiries fire immediately.
func (s *GrantScheduler) ScheduleRevocation(guildID, userID, roleID int64, expiresAt time.Time) {
	key := grantKey{guildID: guildID, userID: userID, roleID: roleID}
	delay := max(time.Until(expiresAt), 0)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"userID":  userID,
			"roleID":  roleID,
		}).Warn("Grant scheduler not running, revocation left to the next recovery")
		return
	}

	if prev, ok := s.pending[key]; ok {
		prev.timer.Stop()
	} else {
		observability.GetMetrics().UpdateScheduledRevocations(1)
	}

	s.generation++
	generation := s.generation
	entry := &scheduledRevocation{
		generation: generation,
		expiresAt:  expiresAt,
		retry:      newRetryBackOff(s.retryInterval),
	}
	entry.timer = time.AfterFunc(delay, func() {
		s.fire(key, generation)
	})
	s.pending[key] = entry

	log.WithFields(log.Fields{
		"guildID":   guildID,
		"userID":    userID,
		"roleID":    roleID,
		"expiresAt": expiresAt,
		"delay":     delay,
	}).Debug("Scheduled temporary role revocation")
}

func (s *GrantScheduler) fire(key grantKey, generation uint64) {
	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, revocationTimeout)
	defer cancel()

	err := s.revoke(ctx, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.pending[key]
	// A newer schedule owns the key now
	if !ok || entry.generation != generation {
		return
	}
	if err != nil && s.running {
		// The grant is still stored, so the next attempt sees it again
		wait := entry.retry.NextBackOff()
		log.WithFields(log.Fields{
			"guildID": key.guildID,
			"userID":  key.userID,
			"roleID":  key.roleID,
			"retryIn": wait,
			"error":   err,
		}).Error("Failed to revoke temporary role, retrying")
		entry.timer = time.AfterFunc(wait, func() {
			s.fire(key, generation)
		})
		return
	}
	delete(s.pending, key)
	observability.GetMetrics().UpdateScheduledRevocations(-1)
}

// revoke removes the role of an expired grant inside the transaction that deletes
// the grant, so the delete commits only once the role is gone.
// An extension that already moved the expiry keeps both.
func (s *GrantScheduler) revoke(ctx context.Context, key grantKey) error {
	now := time.Now()
	var extended, removed bool

	err := s.tx.Do(ctx, key.guildID, func(uow interfaces.UnitOfWork) error {
		repo := uow.TempRoleRepository()
		deleted, err := repo.DeleteIfExpired(ctx, key.userID, key.roleID, now)
		if err != nil {
			return err
		}
		if !deleted {
			grant, err := repo.Get(ctx, key.userID, key.roleID)
			if err != nil {
				return err
			}
			extended = grant != nil && grant.IsActive(now)
			return nil
		}

		held, err := s.roles.HasRole(ctx, key.guildID, key.userID, key.roleID)
		if err != nil {
			return fmt.Errorf("failed to check role: %w", err)
		}
		if held {
			if err := s.roles.RemoveRole(ctx, key.guildID, key.userID, key.roleID); err != nil {
				return fmt.Errorf("failed to remove role: %w", err)
			}
		}
		removed = held

		if err := uow.EventBus().Publish(events.TempRoleExpiredEvent{
			UserID:    key.userID,
			GuildID:   key.guildID,
			RoleID:    key.roleID,
			ExpiredAt: now,
		}); err != nil {
			log.WithError(err).Error("Failed to publish temporary role expired event")
		}
		return nil
	})
	if err != nil {
		return err
	}
	if extended {
		log.WithFields(log.Fields{
			"guildID": key.guildID,
			"userID":  key.userID,
			"roleID":  key.roleID,
		}).Debug("Temporary role was extended, keeping it")
		return nil
	}

	log.WithFields(log.Fields{
		"guildID": key.guildID,
		"userID":  key.userID,
		"roleID":  key.roleID,
		"removed": removed,
	}).Info("Temporary role expired")
	return nil
}

// Stop cancels every timer. Revocations in flight finish with a cancelled context.
func (s *GrantScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	for key, entry := range s.pending {
		entry.timer.Stop()
		delete(s.pending, key)
		observability.GetMetrics().UpdateScheduledRevocations(-1)
	}
	s.cancel()
	s.running = false
	log.Info("Grant scheduler stopped")
}

// Pending returns the number of scheduled revocations
func (s *GrantScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// PendingRevocations lists scheduled revocations, soonest first
func (s *GrantScheduler) PendingRevocations() []PendingRevocation {
	s.mu.Lock()
	out := make([]PendingRevocation, 0, len(s.pending))
	for key, entry := range s.pending {
		out = append(out, PendingRevocation{
			GuildID:   key.guildID,
			UserID:    key.userID,
			RoleID:    key.roleID,
			ExpiresAt: entry.expiresAt,
		})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	return out
}
