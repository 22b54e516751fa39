package entities

// TransactionType represents the reason of a balance change
type TransactionType string

// All transaction types recorded in the ledger
const (
	// Bank movements
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"

	// Transfers between members
	TransactionTypeTransferIn  TransactionType = "transfer_in"
	TransactionTypeTransferOut TransactionType = "transfer_out"
	TransactionTypeRobGain     TransactionType = "rob_gain"
	TransactionTypeRobLoss     TransactionType = "rob_loss"

	// Income and penalties
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeCollect TransactionType = "collect"
	TransactionTypeFine    TransactionType = "fine"

	// Shop and crates
	TransactionTypePurchase     TransactionType = "purchase"
	TransactionTypeCrateReward  TransactionType = "crate_reward"
	TransactionTypeCompensation TransactionType = "compensation"

	// Games
	TransactionTypeBlackjackBet    TransactionType = "blackjack_bet"
	TransactionTypeBlackjackPayout TransactionType = "blackjack_payout"
	TransactionTypeRouletteBet     TransactionType = "roulette_bet"
	TransactionTypeRoulettePayout  TransactionType = "roulette_payout"
	TransactionTypeRouletteRefund  TransactionType = "roulette_refund"
	TransactionTypeCockfightBet    TransactionType = "cockfight_bet"
	TransactionTypeCockfightPayout TransactionType = "cockfight_payout"

	// Manual adjustments
	TransactionTypeAdjustment TransactionType = "adjustment"
)

// IsTransferType returns true if money moved between two members
func (tt TransactionType) IsTransferType() bool {
	return tt == TransactionTypeTransferIn ||
		tt == TransactionTypeTransferOut ||
		tt == TransactionTypeRobGain ||
		tt == TransactionTypeRobLoss
}

// IsGamblingRelated returns true for bets and their payouts
func (tt TransactionType) IsGamblingRelated() bool {
	switch tt {
	case TransactionTypeBlackjackBet, TransactionTypeBlackjackPayout,
		TransactionTypeRouletteBet, TransactionTypeRoulettePayout, TransactionTypeRouletteRefund,
		TransactionTypeCockfightBet, TransactionTypeCockfightPayout:
		return true
	}
	return false
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
