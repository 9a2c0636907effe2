package service

import (
	"context"
	"testing"

	"bankroll/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_Credit(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockWalletRepo := new(MockWalletRepository)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockWalletRepo, mockTxnRepo, nil, nil, nil, nil)

	svc := NewLedgerService(mockFactory)

	wallet := &models.Wallet{
		UserID:         123,
		Balance:        10000,
		DepositBalance: 10000,
	}
	updated := &models.Wallet{
		UserID:         123,
		Balance:        15000,
		DepositBalance: 15000,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWalletRepo.On("GetByUserIDForUpdate", ctx, int64(123)).Return(wallet, nil)
	mockWalletRepo.On("ApplyBucketDeltas", ctx, int64(123), int64(5000), int64(0), int64(0)).Return(updated, nil)

	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.UserID == 123 &&
			txn.Type == models.TransactionTypeDeposit &&
			txn.Amount == 5000 &&
			txn.BalanceAfter == 15000 &&
			*txn.BalanceType == models.BucketDeposit
	})).Return(nil)

	result, err := svc.Credit(ctx, 123, 5000, models.BucketDeposit, models.TransactionTypeDeposit, "pix deposit", nil)

	require.NoError(t, err)
	assert.Equal(t, int64(15000), result.Balance)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockWalletRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestLedgerService_Credit_BlockedWallet(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockWalletRepo := new(MockWalletRepository)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockWalletRepo, mockTxnRepo, nil, nil, nil, nil)

	svc := NewLedgerService(mockFactory)

	blocked := &models.Wallet{
		UserID:         123,
		Balance:        10000,
		DepositBalance: 10000,
		IsBlocked:      true,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWalletRepo.On("GetByUserIDForUpdate", ctx, int64(123)).Return(blocked, nil)

	_, err := svc.Credit(ctx, 123, 5000, models.BucketDeposit, models.TransactionTypeDeposit, "pix deposit", nil)

	assert.ErrorIs(t, err, ErrWalletBlocked)
	mockWalletRepo.AssertNotCalled(t, "ApplyBucketDeltas", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockTxnRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestLedgerService_Credit_InvalidAmount(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	svc := NewLedgerService(mockFactory)

	_, err := svc.Credit(ctx, 123, 0, models.BucketDeposit, models.TransactionTypeDeposit, "zero", nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Credit(ctx, 123, -500, models.BucketDeposit, models.TransactionTypeDeposit, "negative", nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// Rejected before any transaction is opened
	mockFactory.AssertNotCalled(t, "Create")
}

func TestLedgerService_DebitForBet_Waterfall(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockWalletRepo := new(MockWalletRepository)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockWalletRepo, mockTxnRepo, nil, nil, nil, nil)

	svc := NewLedgerService(mockFactory)

	// 50 deposit, 30 winnings, 20 bonus; a 60 debit takes 50 from deposit
	// and 10 from winnings, leaving bonus untouched
	wallet := &models.Wallet{
		UserID:          123,
		Balance:         10000,
		DepositBalance:  5000,
		WinningsBalance: 3000,
		BonusBalance:    2000,
	}
	updated := &models.Wallet{
		UserID:          123,
		Balance:         4000,
		DepositBalance:  0,
		WinningsBalance: 2000,
		BonusBalance:    2000,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWalletRepo.On("GetByUserIDForUpdate", ctx, int64(123)).Return(wallet, nil)
	mockWalletRepo.On("ApplyBucketDeltas", ctx, int64(123), int64(-5000), int64(-1000), int64(0)).Return(updated, nil)

	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.UserID == 123 &&
			txn.Type == models.TransactionTypeBetLoss &&
			txn.Amount == -6000 &&
			txn.BalanceAfter == 4000 &&
			*txn.BalanceType == models.BucketDeposit
	})).Return(nil)

	result, err := svc.DebitForBet(ctx, 123, 6000, "match stake", nil)

	require.NoError(t, err)
	assert.Equal(t, int64(2000), result.BonusBalance)
	assert.Equal(t, int64(4000), result.Balance)

	mockWalletRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestLedgerService_DebitForBet_BonusNeverEligible(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockWalletRepo := new(MockWalletRepository)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockWalletRepo, mockTxnRepo, nil, nil, nil, nil)

	svc := NewLedgerService(mockFactory)

	// A large bonus balance cannot cover the stake
	wallet := &models.Wallet{
		UserID:          123,
		Balance:         101500,
		DepositBalance:  1000,
		WinningsBalance: 500,
		BonusBalance:    100000,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWalletRepo.On("GetByUserIDForUpdate", ctx, int64(123)).Return(wallet, nil)

	_, err := svc.DebitForBet(ctx, 123, 2000, "match stake", nil)

	var insufficientErr *InsufficientFundsError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, int64(1500), insufficientErr.Available)
	assert.Equal(t, int64(2000), insufficientErr.Required)

	// Shortfall aborts before any write
	mockWalletRepo.AssertNotCalled(t, "ApplyBucketDeltas", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockTxnRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestLedgerService_DebitForBet_WalletNotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockWalletRepo := new(MockWalletRepository)

	mockUoW.SetRepositories(mockWalletRepo, nil, nil, nil, nil, nil)

	svc := NewLedgerService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockWalletRepo.On("GetByUserIDForUpdate", ctx, int64(999)).Return(nil, nil)

	_, err := svc.DebitForBet(ctx, 999, 1000, "match stake", nil)

	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestLedgerService_GetTransactions_ClampsPaging(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(nil, mockTxnRepo, nil, nil, nil, nil)

	svc := NewLedgerService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// Out-of-range limit and offset fall back to defaults
	mockTxnRepo.On("GetByUser", ctx, int64(123), 50, 0).Return([]*models.Transaction{}, nil)
	mockTxnRepo.On("CountByUser", ctx, int64(123)).Return(int64(0), nil)

	_, total, err := svc.GetTransactions(ctx, 123, 500, -5)

	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	mockTxnRepo.AssertExpectations(t)
}
