package service

import (
	"context"
	"fmt"
	"time"

	"bankroll/events"
	"bankroll/models"
	"github.com/google/uuid"
)

type creditsService struct {
	uowFactory UnitOfWorkFactory
	revenue    RevenueRouter
	settings   SettingsService
	now        func() time.Time
}

// NewCreditsService creates a new credits service
func NewCreditsService(uowFactory UnitOfWorkFactory, revenue RevenueRouter, settings SettingsService) CreditsService {
	return &creditsService{
		uowFactory: uowFactory,
		revenue:    revenue,
		settings:   settings,
		now:        time.Now,
	}
}

func (s *creditsService) GetCredits(ctx context.Context, userID int64) (*models.Credits, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	credits, err := uow.CreditsRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get credits: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if credits == nil {
		// A user who never touched credits simply has zero
		return &models.Credits{UserID: userID}, nil
	}

	return credits, nil
}

// GrantDailyFree grants the once-a-day courtesy credit. The grant bypasses
// the wallet entirely: no money backs it, only a bonus-type audit entry is
// written to the ledger.
func (s *creditsService) GrantDailyFree(ctx context.Context, userID int64) (*models.FreeCreditGrant, error) {
	now := s.now()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	credits, err := uow.CreditsRepository().GetOrCreateForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock credits: %w", err)
	}

	if credits.IsUnlimited {
		// VIPs don't need the daily credit; not an error
		return &models.FreeCreditGrant{Granted: false, Reason: "unlimited credits active", Credits: credits}, nil
	}

	// Calendar-day comparison, not a rolling 24h window
	if credits.ClaimedFreeCreditOn(now) {
		return nil, ErrAlreadyClaimedToday
	}

	oldAmount := credits.Amount

	credits, err = uow.CreditsRepository().AddAmount(ctx, userID, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to grant free credit: %w", err)
	}
	if err := uow.CreditsRepository().SetLastFreeCredit(ctx, userID, now); err != nil {
		return nil, fmt.Errorf("failed to stamp free credit date: %w", err)
	}
	credits.LastFreeCreditDate = &now

	wallet, err := uow.WalletRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}

	ref := uuid.New().String()
	txn := &models.Transaction{
		UserID:       userID,
		Type:         models.TransactionTypeBonus,
		Amount:       0, // courtesy credit, no monetary backing
		BalanceAfter: wallet.Balance,
		ReferenceID:  &ref,
		Description:  "daily free credit",
	}
	if err := uow.TransactionRepository().Record(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record free credit grant: %w", err)
	}

	uow.EventBus().Publish(events.CreditsChangeEvent{
		UserID:    userID,
		OldAmount: oldAmount,
		NewAmount: credits.Amount,
		Reason:    "daily_free_grant",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.FreeCreditGrant{Granted: true, Credits: credits}, nil
}

// Purchase buys quantity credits at pricePerCredit each. The wallet debit,
// the revenue routing and the credit increment commit together or not at all.
func (s *creditsService) Purchase(ctx context.Context, userID int64, quantity, pricePerCredit int64) (*models.Credits, error) {
	if quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if pricePerCredit <= 0 {
		return nil, ErrInvalidAmount
	}
	totalCost := quantity * pricePerCredit

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	credits, err := uow.CreditsRepository().GetOrCreateForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock credits: %w", err)
	}

	if credits.IsUnlimited {
		// Nothing to buy; don't charge VIPs
		return credits, nil
	}

	ref := uuid.New().String()
	description := fmt.Sprintf("purchase of %d credits", quantity)

	if _, err := debitWallet(ctx, uow, userID, totalCost, models.TransactionTypeCreditPurchase, description, &ref); err != nil {
		return nil, err
	}

	if err := s.revenue.RouteWithin(ctx, uow, totalCost, userID, ref, description); err != nil {
		return nil, fmt.Errorf("failed to route purchase revenue: %w", err)
	}

	oldAmount := credits.Amount
	credits, err = uow.CreditsRepository().AddAmount(ctx, userID, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to add purchased credits: %w", err)
	}

	uow.EventBus().Publish(events.CreditsChangeEvent{
		UserID:    userID,
		OldAmount: oldAmount,
		NewAmount: credits.Amount,
		Reason:    "purchase",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return credits, nil
}

// Use consumes one credit to start a match. isFreeCredit marks the credit as
// the unbacked daily grant: free consumption only decrements the counter,
// paid consumption additionally debits the per-credit monetary value and
// routes it to platform revenue. The classification is computed by the
// caller from the grant state.
func (s *creditsService) Use(ctx context.Context, userID int64, isFreeCredit bool) (*models.Credits, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	credits, err := uow.CreditsRepository().GetOrCreateForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock credits: %w", err)
	}

	if credits.IsUnlimited {
		// VIP override: nothing is consumed, nothing is charged
		return credits, nil
	}

	if credits.Amount < 1 {
		return nil, ErrInsufficientCredits
	}

	oldAmount := credits.Amount
	credits, err = uow.CreditsRepository().AddAmount(ctx, userID, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to consume credit: %w", err)
	}

	if !isFreeCredit {
		settings, err := s.settings.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get settings: %w", err)
		}

		ref := uuid.New().String()
		if _, err := debitWallet(ctx, uow, userID, settings.CreditUnitPrice, models.TransactionTypeCreditPurchase, "credit consumed for match", &ref); err != nil {
			return nil, err
		}
		if err := s.revenue.RouteWithin(ctx, uow, settings.CreditUnitPrice, userID, ref, "credit consumed for match"); err != nil {
			return nil, fmt.Errorf("failed to route consumption revenue: %w", err)
		}
	}

	uow.EventBus().Publish(events.CreditsChangeEvent{
		UserID:    userID,
		OldAmount: oldAmount,
		NewAmount: credits.Amount,
		Reason:    "match_start",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return credits, nil
}

// AdminAdjust adds or removes credits, clamped at zero. The audit entry
// commits in the same transaction as the adjustment.
func (s *creditsService) AdminAdjust(ctx context.Context, adminID, userID int64, delta int64) (*models.Credits, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	credits, err := uow.CreditsRepository().GetOrCreateForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock credits: %w", err)
	}

	applied := delta
	if credits.Amount+delta < 0 {
		applied = -credits.Amount
	}

	oldAmount := credits.Amount
	credits, err = uow.CreditsRepository().AddAmount(ctx, userID, applied)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust credits: %w", err)
	}

	entry := &models.AdminLogEntry{
		AdminID:    adminID,
		Action:     models.AdminActionAdjustCredits,
		TargetType: models.AdminTargetCredits,
		TargetID:   userID,
		Details: map[string]any{
			"requested_delta": delta,
			"applied_delta":   applied,
			"amount_after":    credits.Amount,
		},
	}
	if err := uow.AdminLogRepository().Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record admin log: %w", err)
	}

	if delta > 0 {
		// Courtesy grant: bonus-type ledger record, no monetary backing
		wallet, err := uow.WalletRepository().GetByUserID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get wallet: %w", err)
		}
		if wallet == nil {
			return nil, ErrWalletNotFound
		}

		ref := uuid.New().String()
		txn := &models.Transaction{
			UserID:       userID,
			Type:         models.TransactionTypeBonus,
			Amount:       0,
			BalanceAfter: wallet.Balance,
			ReferenceID:  &ref,
			Description:  fmt.Sprintf("admin credit grant of %d", applied),
		}
		if err := uow.TransactionRepository().Record(ctx, txn); err != nil {
			return nil, fmt.Errorf("failed to record credit grant: %w", err)
		}
	}

	uow.EventBus().Publish(events.CreditsChangeEvent{
		UserID:    userID,
		OldAmount: oldAmount,
		NewAmount: credits.Amount,
		Reason:    "admin_adjustment",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return credits, nil
}

func (s *creditsService) SetUnlimited(ctx context.Context, adminID, userID int64, unlimited bool) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := uow.CreditsRepository().GetOrCreateForUpdate(ctx, userID); err != nil {
		return fmt.Errorf("failed to lock credits: %w", err)
	}

	if err := uow.CreditsRepository().SetUnlimited(ctx, userID, unlimited); err != nil {
		return fmt.Errorf("failed to set unlimited: %w", err)
	}

	entry := &models.AdminLogEntry{
		AdminID:    adminID,
		Action:     models.AdminActionSetUnlimited,
		TargetType: models.AdminTargetCredits,
		TargetID:   userID,
		Details: map[string]any{
			"unlimited": unlimited,
		},
	}
	if err := uow.AdminLogRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record admin log: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
