package service

import (
	"context"
	"fmt"

	"bankroll/models"
	log "github.com/sirupsen/logrus"
)

type settlementService struct {
	uowFactory UnitOfWorkFactory
	revenue    RevenueRouter
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory, revenue RevenueRouter) SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
		revenue:    revenue,
	}
}

// SettleMatch applies the ledger effects of a finished match in one
// transaction: the loser's stake leaves across the deposit-then-winnings
// waterfall, the winner receives the stake net of the platform fee into the
// winnings bucket, and the fee lands in the revenue wallet. The three legs
// conserve money exactly.
func (s *settlementService) SettleMatch(ctx context.Context, matchID string, winnerID, loserID int64, stake int64, feeBps int64) (*models.SettlementResult, error) {
	if matchID == "" {
		return nil, &ValidationError{Field: "matchID", Reason: "required"}
	}
	if winnerID == loserID {
		return nil, &ValidationError{Field: "winnerID", Reason: "winner and loser must differ"}
	}
	if stake <= 0 {
		return nil, ErrInvalidAmount
	}
	if feeBps < 0 || feeBps >= 10000 {
		return nil, &ValidationError{Field: "feeBps", Reason: "must be in [0, 10000)"}
	}

	fee := stake * feeBps / 10000
	payout := stake - fee

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	lossRef := fmt.Sprintf("match-%s-loss", matchID)
	winRef := fmt.Sprintf("match-%s-win", matchID)
	feeRef := fmt.Sprintf("match-%s-fee", matchID)

	settled, err := uow.TransactionRepository().ExistsByReference(ctx, loserID, models.TransactionTypeBetLoss, lossRef)
	if err != nil {
		return nil, fmt.Errorf("failed to check settlement reference: %w", err)
	}
	if settled {
		log.WithFields(log.Fields{
			"matchID": matchID,
			"loserID": loserID,
		}).Warn("Match already settled, skipping")
		return nil, ErrMatchAlreadySettled
	}

	description := fmt.Sprintf("match %s settlement", matchID)

	loserWallet, err := debitWallet(ctx, uow, loserID, stake, models.TransactionTypeBetLoss, description, &lossRef)
	if err != nil {
		return nil, err
	}

	winnerWallet, err := creditWallet(ctx, uow, winnerID, payout, models.BucketWinnings, models.TransactionTypeBetWin, description, &winRef, false)
	if err != nil {
		return nil, err
	}

	if fee > 0 {
		if err := s.revenue.RouteWithin(ctx, uow, fee, loserID, feeRef, description); err != nil {
			return nil, fmt.Errorf("failed to route platform fee: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.SettlementResult{
		MatchID:       matchID,
		WinnerID:      winnerID,
		LoserID:       loserID,
		Stake:         stake,
		WinnerPayout:  payout,
		PlatformFee:   fee,
		WinnerBalance: winnerWallet.Balance,
		LoserBalance:  loserWallet.Balance,
	}, nil
}
