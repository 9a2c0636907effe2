package service

import (
	"context"
	"fmt"

	"bankroll/events"
	"bankroll/models"
)

type withdrawalService struct {
	uowFactory UnitOfWorkFactory
	settings   SettingsService
}

// NewWithdrawalService creates a new withdrawal service
func NewWithdrawalService(uowFactory UnitOfWorkFactory, settings SettingsService) WithdrawalService {
	return &withdrawalService{
		uowFactory: uowFactory,
		settings:   settings,
	}
}

// Request reserves amount from the winnings bucket and creates a pending
// request. The reservation is a real debit: an approved payout needs no
// further ledger mutation, and a rejection credits the money back.
func (s *withdrawalService) Request(ctx context.Context, userID int64, amount int64, pixKey string) (*models.WithdrawalRequest, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if pixKey == "" {
		return nil, &ValidationError{Field: "pixKey", Reason: "required"}
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if amount < settings.WithdrawalMin {
		return nil, &ValidationError{Field: "amount", Reason: fmt.Sprintf("below minimum of %d", settings.WithdrawalMin)}
	}
	if amount > settings.WithdrawalMax {
		return nil, &ValidationError{Field: "amount", Reason: fmt.Sprintf("above maximum of %d", settings.WithdrawalMax)}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	pending, err := uow.WithdrawalRepository().GetPendingByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending withdrawals: %w", err)
	}
	if pending != nil {
		return nil, ErrPendingWithdrawalExists
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

	// Only winnings cash out. Deposits and bonus funds stay on the platform.
	if wallet.WinningsBalance < amount {
		return nil, &InsufficientFundsError{Available: wallet.WinningsBalance, Required: amount}
	}

	req := &models.WithdrawalRequest{
		UserID: userID,
		Amount: amount,
		PixKey: pixKey,
		Status: models.WithdrawalStatusPending,
	}
	if err := uow.WithdrawalRepository().Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create withdrawal request: %w", err)
	}

	oldBalance := wallet.Balance

	wallet, err = uow.WalletRepository().ApplyBucketDeltas(ctx, userID, 0, -amount, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve winnings: %w", err)
	}

	ref := withdrawalReference(req.ID)
	bucket := models.BucketWinnings
	txn := &models.Transaction{
		UserID:       userID,
		Type:         models.TransactionTypeWithdrawal,
		Amount:       -amount,
		BalanceAfter: wallet.Balance,
		BalanceType:  &bucket,
		ReferenceID:  &ref,
		Description:  fmt.Sprintf("withdrawal request #%d", req.ID),
	}
	if err := uow.TransactionRepository().Record(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record reservation: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          userID,
		OldBalance:      oldBalance,
		NewBalance:      wallet.Balance,
		TransactionType: models.TransactionTypeWithdrawal,
		ChangeAmount:    -amount,
	})
	uow.EventBus().Publish(events.WithdrawalChangeEvent{
		RequestID: req.ID,
		UserID:    userID,
		Amount:    amount,
		OldStatus: "",
		NewStatus: models.WithdrawalStatusPending,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return req, nil
}

// Cancel lets the requesting user withdraw their own pending request. The
// reservation is credited back to the winnings bucket.
func (s *withdrawalService) Cancel(ctx context.Context, userID int64, requestID int64) (*models.WithdrawalRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	req, err := uow.WithdrawalRepository().GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal request: %w", err)
	}
	if req == nil {
		return nil, ErrWithdrawalNotFound
	}
	if req.UserID != userID {
		return nil, ErrNotAuthorized
	}

	reason := "cancelled by user"
	req, err = uow.WithdrawalRepository().MarkTerminal(ctx, requestID, models.WithdrawalStatusRejected, &reason)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel withdrawal request: %w", err)
	}
	if req == nil {
		return nil, ErrWithdrawalNotPending
	}

	if err := s.reverseReservation(ctx, uow, req); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.WithdrawalChangeEvent{
		RequestID: req.ID,
		UserID:    req.UserID,
		Amount:    req.Amount,
		OldStatus: models.WithdrawalStatusPending,
		NewStatus: models.WithdrawalStatusRejected,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return req, nil
}

// Reject terminally rejects a pending request and credits the reservation
// back. The audit entry commits with the reversal.
func (s *withdrawalService) Reject(ctx context.Context, adminID int64, requestID int64, reason string) (*models.WithdrawalRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	req, err := uow.WithdrawalRepository().MarkTerminal(ctx, requestID, models.WithdrawalStatusRejected, &reason)
	if err != nil {
		return nil, fmt.Errorf("failed to reject withdrawal request: %w", err)
	}
	if req == nil {
		existing, err := uow.WithdrawalRepository().GetByID(ctx, requestID)
		if err != nil {
			return nil, fmt.Errorf("failed to get withdrawal request: %w", err)
		}
		if existing == nil {
			return nil, ErrWithdrawalNotFound
		}
		return nil, ErrWithdrawalNotPending
	}

	if err := s.reverseReservation(ctx, uow, req); err != nil {
		return nil, err
	}

	entry := &models.AdminLogEntry{
		AdminID:    adminID,
		Action:     models.AdminActionRejectWithdrawal,
		TargetType: models.AdminTargetWithdrawal,
		TargetID:   req.ID,
		Details: map[string]any{
			"user_id": req.UserID,
			"amount":  req.Amount,
			"reason":  reason,
		},
	}
	if err := uow.AdminLogRepository().Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record admin log: %w", err)
	}

	uow.EventBus().Publish(events.WithdrawalChangeEvent{
		RequestID: req.ID,
		UserID:    req.UserID,
		Amount:    req.Amount,
		OldStatus: models.WithdrawalStatusPending,
		NewStatus: models.WithdrawalStatusRejected,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return req, nil
}

// Approve confirms the payout happened externally. The money already left the
// wallet at reservation time, so approval only flips the request state.
func (s *withdrawalService) Approve(ctx context.Context, adminID int64, requestID int64) (*models.WithdrawalRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	req, err := uow.WithdrawalRepository().MarkTerminal(ctx, requestID, models.WithdrawalStatusApproved, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to approve withdrawal request: %w", err)
	}
	if req == nil {
		existing, err := uow.WithdrawalRepository().GetByID(ctx, requestID)
		if err != nil {
			return nil, fmt.Errorf("failed to get withdrawal request: %w", err)
		}
		if existing == nil {
			return nil, ErrWithdrawalNotFound
		}
		return nil, ErrWithdrawalNotPending
	}

	entry := &models.AdminLogEntry{
		AdminID:    adminID,
		Action:     models.AdminActionApproveWithdrawal,
		TargetType: models.AdminTargetWithdrawal,
		TargetID:   req.ID,
		Details: map[string]any{
			"user_id": req.UserID,
			"amount":  req.Amount,
		},
	}
	if err := uow.AdminLogRepository().Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record admin log: %w", err)
	}

	uow.EventBus().Publish(events.WithdrawalChangeEvent{
		RequestID: req.ID,
		UserID:    req.UserID,
		Amount:    req.Amount,
		OldStatus: models.WithdrawalStatusPending,
		NewStatus: models.WithdrawalStatusApproved,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return req, nil
}

func (s *withdrawalService) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.WithdrawalRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	reqs, err := uow.WithdrawalRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal requests: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return reqs, nil
}

func (s *withdrawalService) ListPending(ctx context.Context, limit int) ([]*models.WithdrawalRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	reqs, err := uow.WithdrawalRepository().ListPending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending withdrawals: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return reqs, nil
}

// reverseReservation credits the reserved amount back to the winnings bucket.
// The reversal lands even on a wallet blocked since the request was made: the
// money belongs to the user and has nowhere else to go. A distinct reference
// keeps the reversal from colliding with the reservation entry, and the
// ledger's uniqueness guarantee makes a second reversal impossible.
func (s *withdrawalService) reverseReservation(ctx context.Context, uow UnitOfWork, req *models.WithdrawalRequest) error {
	ref := withdrawalReference(req.ID) + "-reversal"
	description := fmt.Sprintf("withdrawal request #%d reversed", req.ID)

	_, err := creditWallet(ctx, uow, req.UserID, req.Amount, models.BucketWinnings, models.TransactionTypeWithdrawal, description, &ref, true)
	if err != nil {
		return fmt.Errorf("failed to reverse reservation: %w", err)
	}
	return nil
}

func withdrawalReference(requestID int64) string {
	return fmt.Sprintf("wd-%d", requestID)
}
