package testutil

import (
	"time"

	"bankroll/models"
)

// CreateTestWallet creates a test wallet with default bucket balances
func CreateTestWallet(userID int64) *models.Wallet {
	now := time.Now()
	return &models.Wallet{
		UserID:          userID,
		Balance:         100000,
		DepositBalance:  60000,
		WinningsBalance: 30000,
		BonusBalance:    10000,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// CreateTestWalletWithBuckets creates a test wallet with specific bucket balances
func CreateTestWalletWithBuckets(userID int64, deposit, winnings, bonus int64) *models.Wallet {
	wallet := CreateTestWallet(userID)
	wallet.DepositBalance = deposit
	wallet.WinningsBalance = winnings
	wallet.BonusBalance = bonus
	wallet.Balance = deposit + winnings + bonus
	return wallet
}

// CreateTestTransaction creates a test ledger entry
func CreateTestTransaction(userID int64, txType models.TransactionType, amount int64) *models.Transaction {
	bucket := models.BucketDeposit
	return &models.Transaction{
		UserID:       userID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: 100000 + amount,
		BalanceType:  &bucket,
		Description:  "test transaction",
		CreatedAt:    time.Now(),
	}
}

// CreateTestCredits creates a test credits row
func CreateTestCredits(userID int64, amount int64) *models.Credits {
	return &models.Credits{
		UserID:    userID,
		Amount:    amount,
		UpdatedAt: time.Now(),
	}
}

// CreateTestWithdrawalRequest creates a pending test withdrawal request
func CreateTestWithdrawalRequest(userID int64, amount int64) *models.WithdrawalRequest {
	return &models.WithdrawalRequest{
		ID:        1,
		UserID:    userID,
		Amount:    amount,
		PixKey:    "test@example.com",
		Status:    models.WithdrawalStatusPending,
		CreatedAt: time.Now(),
	}
}

// CreateTestSettings creates platform settings with the migration defaults
func CreateTestSettings() *models.PlatformSettings {
	return &models.PlatformSettings{
		WithdrawalMin:   1000,
		WithdrawalMax:   500000,
		CreditUnitPrice: 250,
		UpdatedAt:       time.Now(),
	}
}
