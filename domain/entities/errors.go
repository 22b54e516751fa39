package entities

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors shared by every economy operation. Callers match them with errors.Is.
var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrMisconfiguredReward = errors.New("misconfigured reward")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrNotFound            = errors.New("not found")

	ErrActiveSession     = errors.New("a game is already in progress")
	ErrNoActiveSession   = errors.New("no game in progress")
	ErrGameNotIdle       = errors.New("game was played recently")
	ErrRoundClosed       = errors.New("betting round already closed")
	ErrOnCooldown        = errors.New("command on cooldown")
	ErrInvalidTarget     = errors.New("invalid target")
	ErrForbidden         = errors.New("action not allowed")
	ErrAlreadyOwned      = errors.New("already owned")
	ErrInsufficientItems = fmt.Errorf("not enough items: %w", ErrInvalidAmount)
	ErrInvalidAction     = errors.New("invalid action")
)

// InsufficientFundsError carries the amounts behind an ErrInsufficientFunds
type InsufficientFundsError struct {
	Required  int64
	Available int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %d, have %d", e.Required, e.Available)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// NewInsufficientFunds builds an InsufficientFundsError
func NewInsufficientFunds(required, available int64) error {
	return &InsufficientFundsError{Required: required, Available: available}
}

// MisconfiguredRewardError explains why a crate cannot be resolved
type MisconfiguredRewardError struct {
	CrateID string
	Reason  string
}

func (e *MisconfiguredRewardError) Error() string {
	return fmt.Sprintf("crate %q is misconfigured: %s", e.CrateID, e.Reason)
}

func (e *MisconfiguredRewardError) Unwrap() error {
	return ErrMisconfiguredReward
}

// CooldownError reports how long a member has to wait
type CooldownError struct {
	Command   string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s is on cooldown for another %s", e.Command, e.Remaining.Round(time.Second))
}

func (e *CooldownError) Unwrap() error {
	return ErrOnCooldown
}
