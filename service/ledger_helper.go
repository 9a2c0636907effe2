package service

import (
	"context"
	"fmt"

	"bankroll/events"
	"bankroll/models"
)

// debitEligibleBuckets is the ordered waterfall for bets and purchases:
// deposited funds first, then winnings. Bonus funds are excluded by design —
// they must never settle a wager or buy credits.
func debitEligibleBuckets(w *models.Wallet) []BucketBalance {
	return []BucketBalance{
		{Bucket: models.BucketDeposit, Available: w.DepositBalance},
		{Bucket: models.BucketWinnings, Available: w.WinningsBalance},
	}
}

func bucketDeltas(takes []BucketTake, sign int64) (deposit, winnings, bonus int64) {
	for _, t := range takes {
		switch t.Bucket {
		case models.BucketDeposit:
			deposit += sign * t.Amount
		case models.BucketWinnings:
			winnings += sign * t.Amount
		case models.BucketBonus:
			bonus += sign * t.Amount
		}
	}
	return deposit, winnings, bonus
}

// creditWallet increases a single bucket and appends the ledger entry, inside
// the caller's unit of work. This is the single write path for all wallet
// credits. allowBlocked is reserved for administrative correction.
func creditWallet(ctx context.Context, uow UnitOfWork, userID, amount int64, bucket models.BalanceBucket, txType models.TransactionType, description string, referenceID *string, allowBlocked bool) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	wallet, err := uow.WalletRepository().GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}
	if wallet.IsBlocked && !allowBlocked {
		return nil, ErrWalletBlocked
	}

	oldBalance := wallet.Balance

	deposit, winnings, bonus := bucketDeltas([]BucketTake{{Bucket: bucket, Amount: amount}}, 1)
	wallet, err = uow.WalletRepository().ApplyBucketDeltas(ctx, userID, deposit, winnings, bonus)
	if err != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}

	txn := &models.Transaction{
		UserID:       userID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: wallet.Balance,
		BalanceType:  &bucket,
		ReferenceID:  referenceID,
		Description:  description,
	}
	if err := uow.TransactionRepository().Record(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record credit transaction: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          userID,
		OldBalance:      oldBalance,
		NewBalance:      wallet.Balance,
		TransactionType: txType,
		ChangeAmount:    amount,
	})

	return wallet, nil
}

// debitWallet takes amount across the deposit-then-winnings waterfall and
// appends the ledger entry, inside the caller's unit of work. The allocation
// is computed and validated under the row lock before any write; a shortfall
// aborts with no mutation.
func debitWallet(ctx context.Context, uow UnitOfWork, userID, amount int64, txType models.TransactionType, description string, referenceID *string) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	wallet, err := uow.WalletRepository().GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}
	if wallet.IsBlocked {
		return nil, ErrWalletBlocked
	}

	eligible := debitEligibleBuckets(wallet)
	takes, shortfall := Allocate(eligible, amount)
	if shortfall > 0 {
		var available int64
		for _, b := range eligible {
			available += b.Available
		}
		return nil, &InsufficientFundsError{Available: available, Required: amount}
	}

	oldBalance := wallet.Balance

	deposit, winnings, bonus := bucketDeltas(takes, -1)
	wallet, err = uow.WalletRepository().ApplyBucketDeltas(ctx, userID, deposit, winnings, bonus)
	if err != nil {
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}

	// The principal bucket is the first one the waterfall touched
	var balanceType *models.BalanceBucket
	if len(takes) > 0 {
		balanceType = &takes[0].Bucket
	}

	txn := &models.Transaction{
		UserID:       userID,
		Type:         txType,
		Amount:       -amount,
		BalanceAfter: wallet.Balance,
		BalanceType:  balanceType,
		ReferenceID:  referenceID,
		Description:  description,
	}
	if err := uow.TransactionRepository().Record(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record debit transaction: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          userID,
		OldBalance:      oldBalance,
		NewBalance:      wallet.Balance,
		TransactionType: txType,
		ChangeAmount:    -amount,
	})

	return wallet, nil
}
