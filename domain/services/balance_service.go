package services

import (
	"context"
	"fmt"

	"casino/economy-bot/domain/entities"
	"casino/economy-bot/domain/interfaces"
	"casino/economy-bot/domain/utils"
)

type balanceService struct {
	accountRepo    interfaces.AccountRepository
	ledgerRepo     interfaces.LedgerRepository
	eventPublisher interfaces.EventPublisher
}

// NewBalanceService creates the balance primitives for the guild the repositories are scoped to.
// Every method expects to run inside a transaction: rows are locked with SELECT ... FOR UPDATE.
func NewBalanceService(accountRepo interfaces.AccountRepository, ledgerRepo interfaces.LedgerRepository, eventPublisher interfaces.EventPublisher) interfaces.BalanceService {
	return &balanceService{
		accountRepo:    accountRepo,
		ledgerRepo:     ledgerRepo,
		eventPublisher: eventPublisher,
	}
}

func (s *balanceService) EnsureAccount(ctx context.Context, userID int64) error {
	if err := s.accountRepo.Ensure(ctx, userID); err != nil {
		return fmt.Errorf("failed to ensure account %d: %w", userID, err)
	}
	return nil
}

func (s *balanceService) GetBalance(ctx context.Context, userID int64) (*entities.Account, error) {
	if err := s.EnsureAccount(ctx, userID); err != nil {
		return nil, err
	}
	account, err := s.accountRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", userID, err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %d: %w", userID, entities.ErrNotFound)
	}
	return account, nil
}

// lock creates the account if needed and takes its row lock
func (s *balanceService) lock(ctx context.Context, userID int64) (*entities.Account, error) {
	if err := s.EnsureAccount(ctx, userID); err != nil {
		return nil, err
	}
	account, err := s.accountRepo.GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %d: %w", userID, err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %d: %w", userID, entities.ErrNotFound)
	}
	return account, nil
}

// lockPair locks two accounts in ascending user id order so concurrent
// transfers between the same members cannot deadlock
func (s *balanceService) lockPair(ctx context.Context, a, b int64) (*entities.Account, *entities.Account, error) {
	first, second := a, b
	if second < first {
		first, second = second, first
	}

	lockedFirst, err := s.lock(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	lockedSecond, err := s.lock(ctx, second)
	if err != nil {
		return nil, nil, err
	}

	if first == a {
		return lockedFirst, lockedSecond, nil
	}
	return lockedSecond, lockedFirst, nil
}

// write persists both balances and records one ledger entry per balance that moved
func (s *balanceService) write(ctx context.Context, account *entities.Account, cash, bank int64, txType entities.TransactionType, metadata map[string]any) error {
	if !entities.ValidBalances(cash, bank) {
		return entities.NewInsufficientFunds(account.Total()-(cash+bank), account.Total())
	}

	if err := s.accountRepo.UpdateBalances(ctx, account.UserID, cash, bank); err != nil {
		return fmt.Errorf("failed to update balances of %d: %w", account.UserID, err)
	}

	if cash != account.Cash {
		if err := s.record(ctx, account, entities.BalanceKindCash, account.Cash, cash, txType, metadata); err != nil {
			return err
		}
	}
	if bank != account.Bank {
		if err := s.record(ctx, account, entities.BalanceKindBank, account.Bank, bank, txType, metadata); err != nil {
			return err
		}
	}

	account.Cash = cash
	account.Bank = bank
	return nil
}

func (s *balanceService) record(ctx context.Context, account *entities.Account, kind entities.BalanceKind, before, after int64, txType entities.TransactionType, metadata map[string]any) error {
	return utils.RecordBalanceChange(ctx, s.ledgerRepo, s.eventPublisher, &entities.LedgerEntry{
		UserID:          account.UserID,
		GuildID:         account.GuildID,
		Kind:            kind,
		Amount:          after - before,
		BalanceBefore:   before,
		BalanceAfter:    after,
		TransactionType: txType,
		Metadata:        metadata,
	})
}

func (s *balanceService) AdjustCash(ctx context.Context, userID int64, delta int64, txType entities.TransactionType) (int64, error) {
	account, err := s.lock(ctx, userID)
	if err != nil {
		return 0, err
	}
	if delta == 0 {
		return account.Cash, nil
	}

	newCash := account.Cash + delta
	if !entities.ValidBalances(newCash, account.Bank) {
		return 0, entities.NewInsufficientFunds(-delta, account.Total())
	}

	if err := s.write(ctx, account, newCash, account.Bank, txType, nil); err != nil {
		return 0, err
	}
	return account.Cash, nil
}

func (s *balanceService) AdjustBank(ctx context.Context, userID int64, delta int64, txType entities.TransactionType) (int64, error) {
	account, err := s.lock(ctx, userID)
	if err != nil {
		return 0, err
	}
	if delta == 0 {
		return account.Bank, nil
	}

	newBank := account.Bank + delta
	if !entities.ValidBalances(account.Cash, newBank) {
		return 0, entities.NewInsufficientFunds(-delta, account.Bank)
	}

	if err := s.write(ctx, account, account.Cash, newBank, txType, nil); err != nil {
		return 0, err
	}
	return account.Bank, nil
}

func (s *balanceService) DepositToBank(ctx context.Context, userID int64, amount int64) (*entities.Account, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("deposit of %d: %w", amount, entities.ErrInvalidAmount)
	}

	account, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !account.CanSpendCash(amount) {
		return nil, entities.NewInsufficientFunds(amount, account.Cash)
	}

	if err := s.write(ctx, account, account.Cash-amount, account.Bank+amount, entities.TransactionTypeDeposit, nil); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *balanceService) WithdrawFromBank(ctx context.Context, userID int64, amount int64) (*entities.Account, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("withdrawal of %d: %w", amount, entities.ErrInvalidAmount)
	}

	account, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account.Bank < amount {
		return nil, entities.NewInsufficientFunds(amount, account.Bank)
	}

	if err := s.write(ctx, account, account.Cash+amount, account.Bank-amount, entities.TransactionTypeWithdrawal, nil); err != nil {
		return nil, err
	}
	return account, nil
}

// ApplyFine takes the fine from cash. Cash may go negative as long as the bank covers it,
// so the fine is capped at the total balance.
func (s *balanceService) ApplyFine(ctx context.Context, userID int64, fine int64) (int64, error) {
	if fine < 0 {
		return 0, fmt.Errorf("fine of %d: %w", fine, entities.ErrInvalidAmount)
	}
	if fine == 0 {
		return 0, nil
	}

	account, err := s.lock(ctx, userID)
	if err != nil {
		return 0, err
	}

	taken := min(fine, account.Total())
	if taken <= 0 {
		return 0, nil
	}

	if err := s.write(ctx, account, account.Cash-taken, account.Bank, entities.TransactionTypeFine, nil); err != nil {
		return 0, err
	}
	return taken, nil
}

func (s *balanceService) TransferCash(ctx context.Context, senderID, receiverID int64, amount, fee int64) error {
	if senderID == receiverID {
		return fmt.Errorf("cannot transfer to yourself: %w", entities.ErrInvalidTarget)
	}
	if amount <= 0 || fee < 0 || fee > amount {
		return fmt.Errorf("transfer of %d with fee %d: %w", amount, fee, entities.ErrInvalidAmount)
	}

	sender, receiver, err := s.lockPair(ctx, senderID, receiverID)
	if err != nil {
		return err
	}
	if !sender.CanSpendCash(amount) {
		return entities.NewInsufficientFunds(amount, sender.Cash)
	}

	metadata := map[string]any{
		"sender_id":   senderID,
		"receiver_id": receiverID,
		"amount":      amount,
		"fee":         fee,
	}

	if err := s.write(ctx, sender, sender.Cash-amount, sender.Bank, entities.TransactionTypeTransferOut, metadata); err != nil {
		return err
	}
	if err := s.write(ctx, receiver, receiver.Cash+amount-fee, receiver.Bank, entities.TransactionTypeTransferIn, metadata); err != nil {
		return err
	}
	return nil
}

// RobCash moves min(desired, target cash) and never leaves the target with negative cash
func (s *balanceService) RobCash(ctx context.Context, robberID, targetID int64, desired int64) (int64, error) {
	if robberID == targetID {
		return 0, fmt.Errorf("cannot rob yourself: %w", entities.ErrInvalidTarget)
	}
	if desired <= 0 {
		return 0, fmt.Errorf("robbery of %d: %w", desired, entities.ErrInvalidAmount)
	}

	robber, target, err := s.lockPair(ctx, robberID, targetID)
	if err != nil {
		return 0, err
	}

	stolen := min(desired, target.Cash)
	if stolen <= 0 {
		return 0, nil
	}

	metadata := map[string]any{
		"robber_id": robberID,
		"target_id": targetID,
	}

	if err := s.write(ctx, target, target.Cash-stolen, target.Bank, entities.TransactionTypeRobLoss, metadata); err != nil {
		return 0, err
	}
	if err := s.write(ctx, robber, robber.Cash+stolen, robber.Bank, entities.TransactionTypeRobGain, metadata); err != nil {
		return 0, err
	}
	return stolen, nil
}
