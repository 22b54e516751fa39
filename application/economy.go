package application

import (
	"context"
	"fmt"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"
	"casino/economy-bot/domain/utils"
	"casino/economy-bot/infrastructure/observability"
)

const defaultHistorySize = 10

// Economy runs the balance commands. Every call is one committed unit of work.
type Economy struct {
	tx    *Transactor
	rng   interfaces.RandomSource
	roles interfaces.RoleManager
}

// NewEconomy creates the economy commands
func NewEconomy(tx *Transactor, rng interfaces.RandomSource, roles interfaces.RoleManager) *Economy {
	return &Economy{tx: tx, rng: rng, roles: roles}
}

func (e *Economy) services(uow interfaces.UnitOfWork, guildID int64) *guildServices {
	return newGuildServices(uow, guildID, e.rng, e.roles)
}

// Balance returns the account of a member, creating it on first use
func (e *Economy) Balance(ctx context.Context, guildID, userID int64) (*entities.Account, error) {
	var account *entities.Account
	err := e.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		account, err = e.services(uow, guildID).Balance().GetBalance(ctx, userID)
		return err
	})
	return account, err
}

// ResolveAmount parses user input against the member's cash, so "all" and "half" refer to it
func (e *Economy) ResolveAmount(ctx context.Context, guildID, userID int64, input string) (int64, error) {
	account, err := e.Balance(ctx, guildID, userID)
	if err != nil {
		return 0, err
	}
	return utils.ParseAmount(input, max(account.Cash, 0))
}

// Deposit moves cash into the bank. input accepts anything ParseAmount does.
func (e *Economy) Deposit(ctx context.Context, guildID, userID int64, input string) (*entities.Account, error) {
	var account *entities.Account
	err := e.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		balance := e.services(uow, guildID).Balance()
		current, err := balance.GetBalance(ctx, userID)
		if err != nil {
			return err
		}
		amount, err := utils.ParseAmount(input, max(current.Cash, 0))
		if err != nil {
			return err
		}
		account, err = balance.DepositToBank(ctx, userID, amount)
		return err
	})
	return account, err
}

// Withdraw moves bank funds into cash
func (e *Economy) Withdraw(ctx context.Context, guildID, userID int64, input string) (*entities.Account, error) {
	var account *entities.Account
	err := e.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		balance := e.services(uow, guildID).Balance()
		current, err := balance.GetBalance(ctx, userID)
		if err != nil {
			return err
		}
		amount, err := utils.ParseAmount(input, current.Bank)
		if err != nil {
			return err
		}
		account, err = balance.WithdrawFromBank(ctx, userID, amount)
		return err
	})
	return account, err
}

// Earn runs one of the work, crime or hustle commands
func (e *Economy) Earn(ctx context.Context, guildID, userID int64, kind entities.IncomeKind) (*entities.IncomeResult, error) {
	var result *entities.IncomeResult
	err := e.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		result, err = e.services(uow, guildID).Income().Earn(ctx, userID, kind)
		return err
	})
	return result, err
}

// Collect pays the role incomes of the roles a member holds
func (e *Economy) Collect(ctx context.Context, guildID, userID int64, heldRoles []int64) (*entities.CollectResult, error) {
	var result *entities.CollectResult
	err := e.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		result, err = e.services(uow, guildID).Income().Collect(ctx, userID, heldRoles)
		return err
	})
	return result, err
}

// Pay sends cash to another member, minus the tax
func (e *Economy) Pay(ctx context.Context, guildID, senderID, receiverID int64, input string, senderRoles []int64) (*entities.PaymentResult, error) {
	var result *entities.PaymentResult
	err := e.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		svc := e.services(uow, guildID)
		sender, err := svc.Balance().GetBalance(ctx, senderID)
		if err != nil {
			return err
		}
		amount, err := utils.ParseAmount(input, max(sender.Cash, 0))
		if err != nil {
			return err
		}
		result, err = svc.Payment().Pay(ctx, senderID, receiverID, amount, senderRoles)
		return err
	})
	return result, err
}

// Rob attempts to steal from another member's cash
func (e *Economy) Rob(ctx context.Context, guildID, robberID, targetID int64, targetRoles []int64) (*entities.RobberyResult, error) {
	var result *entities.RobberyResult
	err := e.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		result, err = e.services(uow, guildID).Robbery().Rob(ctx, robberID, targetID, targetRoles)
		return err
	})
	return result, err
}

// Cockfight bets on the member's chicken
func (e *Economy) Cockfight(ctx context.Context, guildID, userID int64, input string) (*entities.CockfightResult, error) {
	var result *entities.CockfightResult
	err := e.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		svc := e.services(uow, guildID)
		account, err := svc.Balance().GetBalance(ctx, userID)
		if err != nil {
			return err
		}
		bet, err := utils.ParseAmount(input, max(account.Cash, 0))
		if err != nil {
			return err
		}
		result, err = svc.Cockfight().Fight(ctx, userID, bet)
		return err
	})
	if err != nil {
		return nil, err
	}

	outcome := "lost"
	if result.Won {
		outcome = "won"
	}
	observability.GetMetrics().RecordGameSettlement(observability.GameCockfight, outcome)
	return result, nil
}

// Leaderboard ranks the guild accounts
func (e *Economy) Leaderboard(ctx context.Context, guildID int64, sortBy entities.LeaderboardSort, limit int) ([]*entities.LeaderboardEntry, error) {
	var entries []*entities.LeaderboardEntry
	err := e.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		entries, err = e.services(uow, guildID).Leaderboard().TopAccounts(ctx, sortBy, limit)
		return err
	})
	return entries, err
}

// Rank returns the 1-based leaderboard position of a member, 0 without an account
func (e *Economy) Rank(ctx context.Context, guildID, userID int64, sortBy entities.LeaderboardSort) (int, error) {
	var rank int
	err := e.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		rank, err = e.services(uow, guildID).Leaderboard().AccountRank(ctx, userID, sortBy)
		return err
	})
	return rank, err
}

// Totals sums the balances of the guild
func (e *Economy) Totals(ctx context.Context, guildID int64) (*entities.GuildTotals, error) {
	var totals *entities.GuildTotals
	err := e.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		totals, err = e.services(uow, guildID).Leaderboard().GuildTotals(ctx)
		return err
	})
	return totals, err
}

// History returns the latest balance changes of a member
func (e *Economy) History(ctx context.Context, guildID, userID int64, limit int) ([]*entities.LedgerEntry, error) {
	if limit <= 0 {
		limit = defaultHistorySize
	}
	var entries []*entities.LedgerEntry
	err := e.tx.Do(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		entries, err = uow.LedgerRepository().GetByUser(ctx, userID, limit)
		if err != nil {
			return fmt.Errorf("failed to get balance history: %w", err)
		}
		return nil
	})
	return entries, err
}
