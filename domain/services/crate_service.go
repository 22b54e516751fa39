package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/events"
	"casino/economy-bot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type crateService struct {
	guildID        int64
	crateRepo      interfaces.CrateRepository
	shopRepo       interfaces.ShopRepository
	inventoryRepo  interfaces.InventoryRepository
	tempRoleRepo   interfaces.TempRoleRepository
	balanceService interfaces.BalanceService
	roleManager    interfaces.RoleManager
	eventPublisher interfaces.EventPublisher
	rng            interfaces.RandomSource
}

// NewCrateService creates a crate service for one guild
func NewCrateService(
	guildID int64,
	crateRepo interfaces.CrateRepository,
	shopRepo interfaces.ShopRepository,
	inventoryRepo interfaces.InventoryRepository,
	tempRoleRepo interfaces.TempRoleRepository,
	balanceService interfaces.BalanceService,
	roleManager interfaces.RoleManager,
	eventPublisher interfaces.EventPublisher,
	rng interfaces.RandomSource,
) interfaces.CrateService {
	return &crateService{
		guildID:        guildID,
		crateRepo:      crateRepo,
		shopRepo:       shopRepo,
		inventoryRepo:  inventoryRepo,
		tempRoleRepo:   tempRoleRepo,
		balanceService: balanceService,
		roleManager:    roleManager,
		eventPublisher: eventPublisher,
		rng:            rng,
	}
}

// opening carries the state of one OpenCrate call across its trials
type opening struct {
	userID     int64
	now        time.Time
	summary    *entities.RewardSummary
	heldRoles  map[int64]bool
	tempGrants map[int64]*entities.TempRoleGrant
	items      map[string]*entities.ShopItem
	itemCounts map[int64]int
}

func (s *crateService) OpenCrate(ctx context.Context, userID, crateItemID int64, count int) (*entities.RewardSummary, error) {
	if count < 1 {
		return nil, fmt.Errorf("cannot open %d crates: %w", count, entities.ErrInvalidAmount)
	}

	crate, err := s.shopRepo.GetByID(ctx, crateItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get crate %d: %w", crateItemID, err)
	}
	if crate == nil || !crate.Active || crate.Type != entities.ItemTypeCase || crate.ExternalID == nil {
		return nil, fmt.Errorf("crate %d: %w", crateItemID, entities.ErrNotFound)
	}

	owned, err := s.inventoryRepo.GetQuantityForUpdate(ctx, userID, crateItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get crate quantity: %w", err)
	}
	if owned == 0 {
		return nil, fmt.Errorf("crate %d not in inventory: %w", crateItemID, entities.ErrNotFound)
	}
	if count > owned {
		return nil, fmt.Errorf("owns %d of %d requested crates: %w", owned, count, entities.ErrInsufficientItems)
	}

	entries, err := s.crateRepo.GetRewards(ctx, *crate.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get crate rewards: %w", err)
	}
	resolver, err := NewRewardResolver(*crate.ExternalID, entries)
	if err != nil {
		return nil, err
	}

	o := &opening{
		userID:     userID,
		now:        time.Now(),
		summary:    entities.NewRewardSummary(crateItemID, *crate.ExternalID, count),
		heldRoles:  make(map[int64]bool),
		tempGrants: make(map[int64]*entities.TempRoleGrant),
		items:      make(map[string]*entities.ShopItem),
		itemCounts: make(map[int64]int),
	}

	for i := 0; i < count; i++ {
		reward := resolver.Draw(s.rng)
		if err := s.apply(ctx, o, reward); err != nil {
			return nil, err
		}
	}

	if err := s.commit(ctx, o); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"userID":       userID,
		"guildID":      s.guildID,
		"crate":        *crate.ExternalID,
		"opened":       count,
		"coins":        o.summary.TotalCoins(),
		"rolesGranted": len(o.summary.RolesGranted),
		"skipped":      o.summary.Skipped,
	}).Info("Crate opened")

	return o.summary, nil
}

// apply records the effect of one drawn reward. Balances, inventories and
// durable grants are written once in commit.
func (s *crateService) apply(ctx context.Context, o *opening, reward *entities.CrateReward) error {
	summary := o.summary

	switch reward.Type {
	case entities.RewardTypeCoinsCash:
		amount, _ := strconv.ParseInt(reward.Value, 10, 64)
		summary.CashGranted += amount

	case entities.RewardTypeCoinsBank:
		amount, _ := strconv.ParseInt(reward.Value, 10, 64)
		summary.BankGranted += amount

	case entities.RewardTypeRolePerm:
		roleID, _ := strconv.ParseInt(reward.Value, 10, 64)
		held, err := s.holdsRole(ctx, o, roleID)
		if err != nil {
			return err
		}
		if held {
			s.compensate(o, roleID, reward.CompCoins)
			return nil
		}
		o.heldRoles[roleID] = true
		summary.RolesGranted[roleID]++

	case entities.RewardTypeRoleTemp:
		roleID, _ := strconv.ParseInt(reward.Value, 10, 64)
		grant, err := s.tempGrant(ctx, o, roleID)
		if err != nil {
			return err
		}

		duration := time.Duration(reward.DurationSecs) * time.Second
		ext := summary.RolesExtended[roleID]
		if grant != nil && grant.IsActive(o.now) {
			grant.ExpiresAt = grant.ExpiresAt.Add(duration)
			s.compensate(o, roleID, reward.CompCoins)
		} else {
			grant = &entities.TempRoleGrant{
				UserID:    o.userID,
				GuildID:   s.guildID,
				RoleID:    roleID,
				ExpiresAt: o.now.Add(duration),
			}
			o.tempGrants[roleID] = grant
			summary.RolesGranted[roleID]++
			ext.Granted = true
		}
		ext.SecondsAdded += reward.DurationSecs
		ext.ExpiresAt = grant.ExpiresAt
		summary.RolesExtended[roleID] = ext

	case entities.RewardTypeItem, entities.RewardTypeCase:
		item, err := s.item(ctx, o, reward.Value)
		if err != nil {
			return err
		}
		if item == nil {
			log.WithFields(log.Fields{
				"crate":  reward.CrateExternalID,
				"reward": reward.ID,
				"item":   reward.Value,
			}).Warn("Crate reward references an unknown item, skipping")
			summary.Skipped++
			return nil
		}
		o.itemCounts[item.ID]++
		if reward.Type == entities.RewardTypeCase {
			summary.CratesGranted[reward.Value]++
		} else {
			summary.ItemsGranted[reward.Value]++
		}

	default:
		log.WithFields(log.Fields{
			"crate":  reward.CrateExternalID,
			"reward": reward.ID,
			"type":   reward.Type,
		}).Warn("Unknown crate reward type, skipping")
		summary.Skipped++
	}
	return nil
}

func (s *crateService) compensate(o *opening, roleID, coins int64) {
	if coins <= 0 {
		return
	}
	o.summary.CompensationByRole[roleID] += coins
	o.summary.CompensationTotal += coins
}

// holdsRole asks the platform once per role, then remembers grants made by this opening
func (s *crateService) holdsRole(ctx context.Context, o *opening, roleID int64) (bool, error) {
	if held, ok := o.heldRoles[roleID]; ok {
		return held, nil
	}
	held, err := s.roleManager.HasRole(ctx, s.guildID, o.userID, roleID)
	if err != nil {
		return false, fmt.Errorf("failed to check role %d: %w", roleID, err)
	}
	o.heldRoles[roleID] = held
	return held, nil
}

func (s *crateService) tempGrant(ctx context.Context, o *opening, roleID int64) (*entities.TempRoleGrant, error) {
	if grant, ok := o.tempGrants[roleID]; ok {
		return grant, nil
	}
	grant, err := s.tempRoleRepo.Get(ctx, o.userID, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get temporary role %d: %w", roleID, err)
	}
	o.tempGrants[roleID] = grant
	return grant, nil
}

func (s *crateService) item(ctx context.Context, o *opening, externalID string) (*entities.ShopItem, error) {
	if item, ok := o.items[externalID]; ok {
		return item, nil
	}
	item, err := s.shopRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve item %q: %w", externalID, err)
	}
	o.items[externalID] = item
	return item, nil
}

// commit consumes the crates and writes everything the trials accumulated
func (s *crateService) commit(ctx context.Context, o *opening) error {
	summary := o.summary

	removed, err := s.inventoryRepo.Remove(ctx, o.userID, summary.CrateItemID, summary.Opened)
	if err != nil {
		return fmt.Errorf("failed to consume crates: %w", err)
	}
	if removed != summary.Opened {
		return fmt.Errorf("consumed %d of %d crates: %w", removed, summary.Opened, entities.ErrInsufficientItems)
	}

	for itemID, quantity := range o.itemCounts {
		if err := s.inventoryRepo.Add(ctx, o.userID, itemID, quantity); err != nil {
			return fmt.Errorf("failed to add item %d: %w", itemID, err)
		}
	}

	for roleID := range summary.RolesExtended {
		if err := s.tempRoleRepo.Upsert(ctx, o.tempGrants[roleID]); err != nil {
			return fmt.Errorf("failed to save temporary role %d: %w", roleID, err)
		}
	}

	if summary.CashGranted > 0 {
		if _, err := s.balanceService.AdjustCash(ctx, o.userID, summary.CashGranted, entities.TransactionTypeCrateReward); err != nil {
			return err
		}
	}
	if bank := summary.BankGranted + summary.CompensationTotal; bank > 0 {
		txType := entities.TransactionTypeCrateReward
		if summary.BankGranted == 0 {
			txType = entities.TransactionTypeCompensation
		}
		if _, err := s.balanceService.AdjustBank(ctx, o.userID, bank, txType); err != nil {
			return err
		}
	}

	itemsGranted := 0
	for _, n := range summary.ItemsGranted {
		itemsGranted += n
	}
	for _, n := range summary.CratesGranted {
		itemsGranted += n
	}
	rolesGranted := 0
	for _, n := range summary.RolesGranted {
		rolesGranted += n
	}

	if err := s.eventPublisher.Publish(events.CrateOpenedEvent{
		UserID:          o.userID,
		GuildID:         s.guildID,
		CrateExternalID: summary.CrateExternalID,
		Opened:          summary.Opened,
		CoinsGranted:    summary.TotalCoins(),
		RolesGranted:    rolesGranted,
		ItemsGranted:    itemsGranted,
	}); err != nil {
		log.WithError(err).Error("Failed to publish crate opened event")
	}
	return nil
}

func (s *crateService) ListRewards(ctx context.Context, crateExternalID string) ([]*entities.CrateReward, error) {
	rewards, err := s.crateRepo.GetRewards(ctx, crateExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards of %q: %w", crateExternalID, err)
	}
	return rewards, nil
}

func (s *crateService) AddReward(ctx context.Context, reward *entities.CrateReward) error {
	if err := s.checkReward(reward); err != nil {
		return err
	}
	reward.GuildID = s.guildID
	if err := s.crateRepo.AddReward(ctx, reward); err != nil {
		return fmt.Errorf("failed to add reward: %w", err)
	}
	return nil
}

func (s *crateService) UpdateReward(ctx context.Context, reward *entities.CrateReward) error {
	if err := s.checkReward(reward); err != nil {
		return err
	}
	existing, err := s.crateRepo.GetReward(ctx, reward.ID)
	if err != nil {
		return fmt.Errorf("failed to get reward %d: %w", reward.ID, err)
	}
	if existing == nil {
		return fmt.Errorf("reward %d: %w", reward.ID, entities.ErrNotFound)
	}
	reward.GuildID = s.guildID
	if err := s.crateRepo.UpdateReward(ctx, reward); err != nil {
		return fmt.Errorf("failed to update reward %d: %w", reward.ID, err)
	}
	return nil
}

func (s *crateService) DeleteReward(ctx context.Context, rewardID int64) error {
	existing, err := s.crateRepo.GetReward(ctx, rewardID)
	if err != nil {
		return fmt.Errorf("failed to get reward %d: %w", rewardID, err)
	}
	if existing == nil {
		return fmt.Errorf("reward %d: %w", rewardID, entities.ErrNotFound)
	}
	if err := s.crateRepo.DeleteReward(ctx, rewardID); err != nil {
		return fmt.Errorf("failed to delete reward %d: %w", rewardID, err)
	}
	return nil
}

// checkReward validates a single drop. The chance sum is only enforced when the crate is opened,
// so a table can be edited one drop at a time.
func (s *crateService) checkReward(reward *entities.CrateReward) error {
	if reward.CrateExternalID == "" {
		return &entities.MisconfiguredRewardError{Reason: "drop without a crate"}
	}
	if !reward.Type.IsKnown() {
		return &entities.MisconfiguredRewardError{CrateID: reward.CrateExternalID, Reason: fmt.Sprintf("unknown reward type %q", reward.Type)}
	}
	if reward.Chance < 0 || reward.Chance > 100 {
		return &entities.MisconfiguredRewardError{CrateID: reward.CrateExternalID, Reason: fmt.Sprintf("chance %d outside 0..100", reward.Chance)}
	}
	if reason := validateEntry(reward); reason != "" {
		return &entities.MisconfiguredRewardError{CrateID: reward.CrateExternalID, Reason: reason}
	}
	return nil
}
