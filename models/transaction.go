package models

import (
	"time"
)

// TransactionType represents the business reason for a balance change
type TransactionType string

const (
	TransactionTypeDeposit         TransactionType = "deposit"
	TransactionTypeWithdrawal      TransactionType = "withdrawal"
	TransactionTypeBetLoss         TransactionType = "bet_loss"
	TransactionTypeBetWin          TransactionType = "bet_win"
	TransactionTypeCreditPurchase  TransactionType = "credit_purchase"
	TransactionTypeAdminAdjustment TransactionType = "admin_adjustment"
	TransactionTypeBonus           TransactionType = "bonus"
	TransactionTypeWinnings        TransactionType = "winnings"
)

// Transaction is one immutable entry in a wallet's ledger. Entries are
// append-only and are the sole source of truth for reconciliation.
// Amount is signed: negative for debits, positive for credits.
type Transaction struct {
	ID           int64           `db:"id"`
	UserID       int64           `db:"user_id"`
	Type         TransactionType `db:"type"`
	Amount       int64           `db:"amount"`
	BalanceAfter int64           `db:"balance_after"`
	BalanceType  *BalanceBucket  `db:"balance_type"`
	ReferenceID  *string         `db:"reference_id"`
	Description  string          `db:"description"`
	CreatedAt    time.Time       `db:"created_at"`
}
