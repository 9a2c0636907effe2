package service

import (
	"context"
	"fmt"

	"bankroll/events"
	"bankroll/models"
	"github.com/google/uuid"
)

// adminService performs audited corrections. Admin capability is a flat
// allowlist from configuration; there is exactly one predicate and every
// administrative call site consumes it.
type adminService struct {
	uowFactory UnitOfWorkFactory
	adminIDs   map[int64]struct{}
}

// NewAdminService creates a new admin service for the configured allowlist
func NewAdminService(uowFactory UnitOfWorkFactory, adminUserIDs []int64) AdminService {
	ids := make(map[int64]struct{}, len(adminUserIDs))
	for _, id := range adminUserIDs {
		ids[id] = struct{}{}
	}
	return &adminService{
		uowFactory: uowFactory,
		adminIDs:   ids,
	}
}

func (s *adminService) IsAdmin(userID int64) bool {
	_, ok := s.adminIDs[userID]
	return ok
}

// AdjustBalance applies a signed correction to one bucket. This is the only
// path that may mutate a blocked wallet. The audit entry commits in the same
// transaction as the correction.
func (s *adminService) AdjustBalance(ctx context.Context, adminID, userID int64, bucket models.BalanceBucket, delta int64, reason string) (*models.Wallet, error) {
	if delta == 0 {
		return nil, ErrInvalidAmount
	}
	switch bucket {
	case models.BucketDeposit, models.BucketWinnings, models.BucketBonus:
	default:
		return nil, &ValidationError{Field: "bucket", Reason: fmt.Sprintf("unknown bucket %q", bucket)}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	wallet, err := uow.WalletRepository().GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}

	if delta < 0 && wallet.BucketBalance(bucket)+delta < 0 {
		return nil, &InsufficientFundsError{Available: wallet.BucketBalance(bucket), Required: -delta}
	}

	oldBalance := wallet.Balance

	deposit, winnings, bonus := bucketDeltas([]BucketTake{{Bucket: bucket, Amount: delta}}, 1)
	wallet, err = uow.WalletRepository().ApplyBucketDeltas(ctx, userID, deposit, winnings, bonus)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust balance: %w", err)
	}

	ref := uuid.New().String()
	txn := &models.Transaction{
		UserID:       userID,
		Type:         models.TransactionTypeAdminAdjustment,
		Amount:       delta,
		BalanceAfter: wallet.Balance,
		BalanceType:  &bucket,
		ReferenceID:  &ref,
		Description:  reason,
	}
	if err := uow.TransactionRepository().Record(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record adjustment: %w", err)
	}

	entry := &models.AdminLogEntry{
		AdminID:    adminID,
		Action:     models.AdminActionAdjustBalance,
		TargetType: models.AdminTargetWallet,
		TargetID:   userID,
		Details: map[string]any{
			"bucket":        string(bucket),
			"delta":         delta,
			"reason":        reason,
			"balance_after": wallet.Balance,
		},
	}
	if err := uow.AdminLogRepository().Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record admin log: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          userID,
		OldBalance:      oldBalance,
		NewBalance:      wallet.Balance,
		TransactionType: models.TransactionTypeAdminAdjustment,
		ChangeAmount:    delta,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return wallet, nil
}

// SetBlocked blocks or unblocks a wallet and writes the audit entry in the
// same transaction.
func (s *adminService) SetBlocked(ctx context.Context, adminID, userID int64, blocked bool) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to lock wallet: %w", err)
	}
	if wallet == nil {
		return ErrWalletNotFound
	}

	if err := uow.WalletRepository().SetBlocked(ctx, userID, blocked); err != nil {
		return fmt.Errorf("failed to set blocked: %w", err)
	}

	entry := &models.AdminLogEntry{
		AdminID:    adminID,
		Action:     models.AdminActionSetBlocked,
		TargetType: models.AdminTargetWallet,
		TargetID:   userID,
		Details: map[string]any{
			"blocked": blocked,
		},
	}
	if err := uow.AdminLogRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record admin log: %w", err)
	}

	uow.EventBus().Publish(events.WalletBlockedEvent{
		UserID:  userID,
		Blocked: blocked,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
