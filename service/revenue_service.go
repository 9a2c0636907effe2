package service

import (
	"context"
	"fmt"

	"bankroll/models"
	log "github.com/sirupsen/logrus"
)

// revenueRouter credits the platform revenue wallet. The account is injected
// from configuration, never discovered by querying for an admin user.
type revenueRouter struct {
	uowFactory       UnitOfWorkFactory
	revenueAccountID int64
}

// NewRevenueRouter creates a new revenue router for the configured platform
// revenue account
func NewRevenueRouter(uowFactory UnitOfWorkFactory, revenueAccountID int64) RevenueRouter {
	return &revenueRouter{
		uowFactory:       uowFactory,
		revenueAccountID: revenueAccountID,
	}
}

// RouteWithin credits the revenue wallet inside an already-open unit of work,
// so the routing commits or rolls back together with the originating debit.
// Replays of the same referenceID are no-ops.
func (r *revenueRouter) RouteWithin(ctx context.Context, uow UnitOfWork, amount int64, fromUserID int64, referenceID, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if referenceID == "" {
		return &ValidationError{Field: "referenceID", Reason: "required for revenue idempotence"}
	}

	exists, err := uow.TransactionRepository().ExistsByReference(ctx, r.revenueAccountID, models.TransactionTypeWinnings, referenceID)
	if err != nil {
		return fmt.Errorf("failed to check revenue reference: %w", err)
	}
	if exists {
		log.WithFields(log.Fields{
			"referenceID": referenceID,
			"amount":      amount,
		}).Warn("Revenue already routed for reference, skipping")
		return nil
	}

	_, err = creditWallet(ctx, uow, r.revenueAccountID, amount, models.BucketWinnings, models.TransactionTypeWinnings, description, &referenceID, true)
	if err != nil {
		return fmt.Errorf("failed to credit revenue account %d: %w", r.revenueAccountID, err)
	}

	return nil
}

// Route credits the revenue wallet in its own transaction. Used by callers
// whose originating debit already committed, e.g. match fee collection.
func (r *revenueRouter) Route(ctx context.Context, amount int64, fromUserID int64, referenceID, description string) error {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := r.RouteWithin(ctx, uow, amount, fromUserID, referenceID, description); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
