package models

import (
	"time"
)

// BalanceBucket identifies which partition of a wallet a movement applies to.
// Funds are segregated by provenance: deposited money, won money, and
// promotional money never mix.
type BalanceBucket string

const (
	BucketDeposit  BalanceBucket = "deposit"
	BucketWinnings BalanceBucket = "winnings"
	BucketBonus    BalanceBucket = "bonus"
)

// Wallet represents a user's segregated-balance wallet.
// Invariant: Balance == DepositBalance + WinningsBalance + BonusBalance,
// with all four fields >= 0. Amounts are in centavos.
type Wallet struct {
	UserID          int64     `db:"user_id"`
	Balance         int64     `db:"balance"`
	DepositBalance  int64     `db:"deposit_balance"`
	WinningsBalance int64     `db:"winnings_balance"`
	BonusBalance    int64     `db:"bonus_balance"`
	IsBlocked       bool      `db:"is_blocked"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// BucketBalance returns the current value of the named bucket.
func (w *Wallet) BucketBalance(bucket BalanceBucket) int64 {
	switch bucket {
	case BucketDeposit:
		return w.DepositBalance
	case BucketWinnings:
		return w.WinningsBalance
	case BucketBonus:
		return w.BonusBalance
	default:
		return 0
	}
}
