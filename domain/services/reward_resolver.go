package services

import (
	"fmt"
	"strconv"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"
)

// RewardResolver draws the drops of one crate.
// The table is validated on construction, so Draw never fails.
type RewardResolver struct {
	crateID    string
	entries    []*entities.CrateReward
	cumulative []int
}

// NewRewardResolver validates a drop table and builds its cumulative distribution
func NewRewardResolver(crateID string, entries []*entities.CrateReward) (*RewardResolver, error) {
	if err := ValidateEntries(crateID, entries); err != nil {
		return nil, err
	}

	cumulative := make([]int, len(entries))
	sum := 0
	for i, e := range entries {
		sum += e.Chance
		cumulative[i] = sum
	}

	return &RewardResolver{
		crateID:    crateID,
		entries:    entries,
		cumulative: cumulative,
	}, nil
}

// ValidateEntries checks that the chances add up to exactly 100 and that every
// drop carries the fields its type needs. Unknown types are allowed here and
// skipped when drawn.
func ValidateEntries(crateID string, entries []*entities.CrateReward) error {
	if len(entries) == 0 {
		return &entities.MisconfiguredRewardError{CrateID: crateID, Reason: "no drops configured"}
	}

	sum := 0
	for _, e := range entries {
		if e.Chance < 0 || e.Chance > 100 {
			return &entities.MisconfiguredRewardError{
				CrateID: crateID,
				Reason:  fmt.Sprintf("drop %d has chance %d outside 0..100", e.ID, e.Chance),
			}
		}
		if reason := validateEntry(e); reason != "" {
			return &entities.MisconfiguredRewardError{
				CrateID: crateID,
				Reason:  fmt.Sprintf("drop %d: %s", e.ID, reason),
			}
		}
		sum += e.Chance
	}

	if sum != 100 {
		return &entities.MisconfiguredRewardError{
			CrateID: crateID,
			Reason:  fmt.Sprintf("chances add up to %d%%, not 100%%", sum),
		}
	}
	return nil
}

func validateEntry(e *entities.CrateReward) string {
	switch e.Type {
	case entities.RewardTypeCoinsCash, entities.RewardTypeCoinsBank:
		if _, err := strconv.ParseInt(e.Value, 10, 64); err != nil {
			return fmt.Sprintf("coin amount %q is not a number", e.Value)
		}
	case entities.RewardTypeRolePerm, entities.RewardTypeRoleTemp:
		if _, err := strconv.ParseInt(e.Value, 10, 64); err != nil {
			return fmt.Sprintf("role id %q is not a number", e.Value)
		}
		if e.Type == entities.RewardTypeRoleTemp && e.DurationSecs <= 0 {
			return "temporary role without a duration"
		}
	case entities.RewardTypeItem, entities.RewardTypeCase:
		if e.Value == "" {
			return "item reference is empty"
		}
	}
	if e.CompCoins < 0 {
		return "negative compensation"
	}
	return ""
}

// Draw picks the first drop whose cumulative bound is at least r, r uniform in [0, 100).
// The last drop is the fallback.
func (r *RewardResolver) Draw(rng interfaces.RandomSource) *entities.CrateReward {
	roll := rng.Float64() * 100
	for i, bound := range r.cumulative {
		if float64(bound) >= roll {
			return r.entries[i]
		}
	}
	return r.entries[len(r.entries)-1]
}

// Entries returns the validated drop table
func (r *RewardResolver) Entries() []*entities.CrateReward {
	return r.entries
}
