package models

import (
	"time"
)

// WithdrawalStatus represents the lifecycle state of a withdrawal request
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

// WithdrawalRequest represents a cash-out of winnings to an external PIX key.
// The requested amount is debited from the winnings bucket the moment the
// request is created (the reservation) and credited back if the request is
// rejected or cancelled. Approval carries no further ledger mutation.
type WithdrawalRequest struct {
	ID              int64            `db:"id"`
	UserID          int64            `db:"user_id"`
	Amount          int64            `db:"amount"`
	PixKey          string           `db:"pix_key"`
	Status          WithdrawalStatus `db:"status"`
	RejectionReason *string          `db:"rejection_reason"`
	CreatedAt       time.Time        `db:"created_at"`
	ResolvedAt      *time.Time       `db:"resolved_at"`
}

// IsTerminal reports whether the request has reached a final state.
func (r *WithdrawalRequest) IsTerminal() bool {
	return r.Status != WithdrawalStatusPending
}
