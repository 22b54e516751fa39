package entities

import (
	"time"
)

// RewardType is the kind of a crate drop
type RewardType string

const (
	RewardTypeCoinsCash RewardType = "coins_cash"
	RewardTypeCoinsBank RewardType = "coins_bank"
	RewardTypeRolePerm  RewardType = "role_perm"
	RewardTypeRoleTemp  RewardType = "role_temp"
	RewardTypeItem      RewardType = "item"
	RewardTypeCase      RewardType = "case"
)

// IsKnown reports whether the resolver knows how to grant this type
func (t RewardType) IsKnown() bool {
	switch t {
	case RewardTypeCoinsCash, RewardTypeCoinsBank, RewardTypeRolePerm, RewardTypeRoleTemp, RewardTypeItem, RewardTypeCase:
		return true
	}
	return false
}

// CrateReward is one weighted drop of a crate
type CrateReward struct {
	ID              int64      `db:"id" json:"id"`
	GuildID         int64      `db:"guild_id" json:"guild_id"`
	CrateExternalID string     `db:"crate_external_id" json:"crate_external_id"`
	Type            RewardType `db:"reward_type" json:"type"`
	Value           string     `db:"reward_value" json:"value"` // amount, role id or item external id depending on Type
	Chance          int        `db:"chance" json:"chance"`      // percent, all drops of a crate add up to 100
	DurationSecs    int64      `db:"duration_secs" json:"duration_secs"`
	CompCoins       int64      `db:"comp_coins" json:"comp_coins"`
	HiddenName      bool       `db:"hidden_name" json:"hidden_name"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// TempRoleGrant is a role that is revoked at ExpiresAt
type TempRoleGrant struct {
	UserID    int64     `db:"user_id"`
	GuildID   int64     `db:"guild_id"`
	RoleID    int64     `db:"role_id"`
	ExpiresAt time.Time `db:"expires_at"`
}

// IsActive reports whether the grant has not expired yet
func (g *TempRoleGrant) IsActive(now time.Time) bool {
	return g.ExpiresAt.After(now)
}

// RoleExtension describes a temporary role touched by a crate opening
type RoleExtension struct {
	SecondsAdded int64
	ExpiresAt    time.Time
	Granted      bool // true when the role was not held before this opening
}

// RewardSummary is the outcome of opening one or more crates
type RewardSummary struct {
	CrateItemID        int64
	CrateExternalID    string
	Opened             int
	CashGranted        int64
	BankGranted        int64
	CompensationTotal  int64
	RolesGranted       map[int64]int
	RolesExtended      map[int64]RoleExtension
	ItemsGranted       map[string]int
	CratesGranted      map[string]int
	CompensationByRole map[int64]int64
	Skipped            int
}

// NewRewardSummary returns a summary with every map allocated
func NewRewardSummary(crateItemID int64, crateExternalID string, opened int) *RewardSummary {
	return &RewardSummary{
		CrateItemID:        crateItemID,
		CrateExternalID:    crateExternalID,
		Opened:             opened,
		RolesGranted:       make(map[int64]int),
		RolesExtended:      make(map[int64]RoleExtension),
		ItemsGranted:       make(map[string]int),
		CratesGranted:      make(map[string]int),
		CompensationByRole: make(map[int64]int64),
	}
}

// TotalCoins returns every coin paid out by the opening
func (s *RewardSummary) TotalCoins() int64 {
	return s.CashGranted + s.BankGranted + s.CompensationTotal
}
