package service

import (
	"context"
	"testing"

	"bankroll/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRevenueRouter_Route(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockWalletRepo := new(MockWalletRepository)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockWalletRepo, mockTxnRepo, nil, nil, nil, nil)

	router := NewRevenueRouter(mockFactory, 999)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockTxnRepo.On("ExistsByReference", ctx, int64(999), models.TransactionTypeWinnings, "fee-abc").Return(false, nil)
	mockWalletRepo.On("GetByUserIDForUpdate", ctx, int64(999)).Return(&models.Wallet{UserID: 999, Balance: 1000, WinningsBalance: 1000}, nil)
	mockWalletRepo.On("ApplyBucketDeltas", ctx, int64(999), int64(0), int64(300), int64(0)).Return(&models.Wallet{
		UserID:          999,
		Balance:         1300,
		WinningsBalance: 1300,
	}, nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.UserID == 999 &&
			txn.Type == models.TransactionTypeWinnings &&
			txn.Amount == 300 &&
			*txn.ReferenceID == "fee-abc"
	})).Return(nil)

	err := router.Route(ctx, 300, 123, "fee-abc", "platform fee")

	require.NoError(t, err)
	mockWalletRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestRevenueRouter_RouteWithin_ReplaySkipped(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockWalletRepo := new(MockWalletRepository)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockWalletRepo, mockTxnRepo, nil, nil, nil, nil)

	router := NewRevenueRouter(new(MockUnitOfWorkFactory), 999)

	mockTxnRepo.On("ExistsByReference", ctx, int64(999), models.TransactionTypeWinnings, "fee-abc").Return(true, nil)

	err := router.RouteWithin(ctx, mockUoW, 300, 123, "fee-abc", "platform fee")

	// Replays are no-ops, not errors
	require.NoError(t, err)
	mockWalletRepo.AssertNotCalled(t, "ApplyBucketDeltas", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockTxnRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestRevenueRouter_RouteWithin_BlockedRevenueWallet(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockWalletRepo := new(MockWalletRepository)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockWalletRepo, mockTxnRepo, nil, nil, nil, nil)

	router := NewRevenueRouter(new(MockUnitOfWorkFactory), 999)

	mockTxnRepo.On("ExistsByReference", ctx, int64(999), models.TransactionTypeWinnings, "fee-abc").Return(false, nil)

	// A mistakenly blocked revenue wallet must not break purchases
	mockWalletRepo.On("GetByUserIDForUpdate", ctx, int64(999)).Return(&models.Wallet{UserID: 999, IsBlocked: true}, nil)
	mockWalletRepo.On("ApplyBucketDeltas", ctx, int64(999), int64(0), int64(300), int64(0)).Return(&models.Wallet{
		UserID:          999,
		Balance:         300,
		WinningsBalance: 300,
		IsBlocked:       true,
	}, nil)
	mockTxnRepo.On("Record", ctx, mock.Anything).Return(nil)

	err := router.RouteWithin(ctx, mockUoW, 300, 123, "fee-abc", "platform fee")

	require.NoError(t, err)
	mockWalletRepo.AssertExpectations(t)
}

func TestRevenueRouter_RouteWithin_RequiresReference(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	router := NewRevenueRouter(new(MockUnitOfWorkFactory), 999)

	err := router.RouteWithin(ctx, mockUoW, 300, 123, "", "platform fee")

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
