package service

import (
	"errors"
	"fmt"
)

// Domain errors surfaced by the ledger core. Expected errors (blocked wallet,
// shortfalls, daily-grant replays) are matched by callers with errors.Is /
// errors.As; ErrWalletNotFound and ErrConcurrentModification surface to users
// as generic failures without internal detail.
var (
	// ErrWalletNotFound indicates a missing wallet for an otherwise valid
	// user. This is an invariant violation and should be investigated, not
	// silently tolerated.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrWalletBlocked indicates the wallet forbids all debits and credits
	// except administrative correction.
	ErrWalletBlocked = errors.New("wallet is blocked")

	// ErrInvalidAmount indicates a non-positive amount, rejected before any I/O.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientCredits indicates the user has no play-credit to spend.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrAlreadyClaimedToday indicates the daily free credit was already
	// granted on the current calendar day.
	ErrAlreadyClaimedToday = errors.New("free credit already claimed today")

	// ErrConcurrentModification indicates a row-lock wait timed out or the
	// transaction was chosen as a deadlock/serialization victim. Transient;
	// callers should retry with backoff.
	ErrConcurrentModification = errors.New("concurrent modification, retry")

	// ErrPendingWithdrawalExists indicates the user already has a withdrawal
	// request in flight. One at a time.
	ErrPendingWithdrawalExists = errors.New("a pending withdrawal request already exists")

	// ErrWithdrawalNotFound indicates an unknown withdrawal request id.
	ErrWithdrawalNotFound = errors.New("withdrawal request not found")

	// ErrWithdrawalNotPending indicates a terminal transition was attempted
	// on a request that already left the pending state.
	ErrWithdrawalNotPending = errors.New("withdrawal request is not pending")

	// ErrMatchAlreadySettled indicates a settlement replay for a match whose
	// ledger effects were already applied.
	ErrMatchAlreadySettled = errors.New("match already settled")

	// ErrNotAuthorized indicates the acting user lacks the admin capability.
	ErrNotAuthorized = errors.New("not authorized")
)

// InsufficientFundsError reports a debit shortfall with both sides of the
// comparison, so callers can explain exactly what was missing and which
// buckets were eligible.
type InsufficientFundsError struct {
	Available int64
	Required  int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: have %d available, need %d", e.Available, e.Required)
}

// ValidationError reports an admin-settings or request bounds violation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}
