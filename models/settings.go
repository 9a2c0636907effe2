package models

import (
	"time"
)

// PlatformSettings holds the admin-tunable platform parameters.
// Exactly one row exists; reads go through a TTL cache that is invalidated
// on every write path.
type PlatformSettings struct {
	WithdrawalMin   int64     `db:"withdrawal_min"`
	WithdrawalMax   int64     `db:"withdrawal_max"`
	CreditUnitPrice int64     `db:"credit_unit_price"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// SettlementResult summarizes the ledger effects of one match settlement
type SettlementResult struct {
	MatchID       string
	WinnerID      int64
	LoserID       int64
	Stake         int64
	WinnerPayout  int64
	PlatformFee   int64
	WinnerBalance int64
	LoserBalance  int64
}
