package entities

// IncomeKind names one of the repeatable earn commands
type IncomeKind string

const (
	IncomeKindWork   IncomeKind = "work"
	IncomeKindCrime  IncomeKind = "crime"
	IncomeKindHustle IncomeKind = "hustle"
)

// IsValid checks the income kind
func (k IncomeKind) IsValid() bool {
	return k == IncomeKindWork || k == IncomeKindCrime || k == IncomeKindHustle
}

// IncomeResult is the outcome of an earn command. Amount is positive on success and the fine taken otherwise.
type IncomeResult struct {
	Kind    IncomeKind
	Success bool
	Amount  int64
	Cash    int64
}

// CollectResult lists the role incomes paid by a collect
type CollectResult struct {
	Payouts  []CollectPayout
	CashPaid int64
	BankPaid int64
}

// CollectPayout is one collected role income
type CollectPayout struct {
	RoleID int64
	Amount int64
	ToBank bool
}

// PaymentResult is a completed player to player payment
type PaymentResult struct {
	Amount   int64
	Fee      int64
	Received int64
}

// RobberyResult is the outcome of a robbery attempt
type RobberyResult struct {
	Success     bool
	FailChance  float64
	Stolen      int64
	Fine        int64
	TargetCash  int64
	RobberTotal int64
}

// PurchaseResult is a completed shop purchase. RoleToGrant is set for role items.
type PurchaseResult struct {
	Item        *ShopItem
	Price       int64
	Cash        int64
	RoleToGrant *int64
}

// CockfightResult is the outcome of a cockfight
type CockfightResult struct {
	Won        bool
	Bet        int64
	Payout     int64
	Roll       int
	Chance     int
	NextChance int
}

