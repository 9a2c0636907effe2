package service

import (
	"context"
	"testing"

	"bankroll/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSettlementService_SettleMatch(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockWalletRepo := new(MockWalletRepository)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockWalletRepo, mockTxnRepo, nil, nil, nil, nil)

	svc := NewSettlementService(mockFactory, NewRevenueRouter(mockFactory, 999))

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockTxnRepo.On("ExistsByReference", ctx, int64(200), models.TransactionTypeBetLoss, "match-m42-loss").Return(false, nil)

	// Loser: stake 10000 leaves across deposit then winnings
	mockWalletRepo.On("GetByUserIDForUpdate", ctx, int64(200)).Return(&models.Wallet{
		UserID:          200,
		Balance:         12000,
		DepositBalance:  8000,
		WinningsBalance: 4000,
	}, nil)
	mockWalletRepo.On("ApplyBucketDeltas", ctx, int64(200), int64(-8000), int64(-2000), int64(0)).Return(&models.Wallet{
		UserID:          200,
		Balance:         2000,
		WinningsBalance: 2000,
	}, nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.UserID == 200 &&
			txn.Type == models.TransactionTypeBetLoss &&
			txn.Amount == -10000 &&
			*txn.ReferenceID == "match-m42-loss"
	})).Return(nil)

	// Winner: stake net of the 5% fee lands in winnings
	mockWalletRepo.On("GetByUserIDForUpdate", ctx, int64(100)).Return(&models.Wallet{
		UserID:  100,
		Balance: 0,
	}, nil)
	mockWalletRepo.On("ApplyBucketDeltas", ctx, int64(100), int64(0), int64(9500), int64(0)).Return(&models.Wallet{
		UserID:          100,
		Balance:         9500,
		WinningsBalance: 9500,
	}, nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.UserID == 100 &&
			txn.Type == models.TransactionTypeBetWin &&
			txn.Amount == 9500 &&
			*txn.ReferenceID == "match-m42-win"
	})).Return(nil)

	// Fee: 500 routed to the revenue wallet
	mockTxnRepo.On("ExistsByReference", ctx, int64(999), models.TransactionTypeWinnings, "match-m42-fee").Return(false, nil)
	mockWalletRepo.On("GetByUserIDForUpdate", ctx, int64(999)).Return(&models.Wallet{UserID: 999}, nil)
	mockWalletRepo.On("ApplyBucketDeltas", ctx, int64(999), int64(0), int64(500), int64(0)).Return(&models.Wallet{
		UserID:          999,
		Balance:         500,
		WinningsBalance: 500,
	}, nil)
	mockTxnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.UserID == 999 && txn.Amount == 500
	})).Return(nil)

	result, err := svc.SettleMatch(ctx, "m42", 100, 200, 10000, 500)

	require.NoError(t, err)
	assert.Equal(t, int64(9500), result.WinnerPayout)
	assert.Equal(t, int64(500), result.PlatformFee)
	assert.Equal(t, int64(9500), result.WinnerBalance)
	assert.Equal(t, int64(2000), result.LoserBalance)

	// stake == payout + fee
	assert.Equal(t, result.Stake, result.WinnerPayout+result.PlatformFee)

	mockWalletRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestSettlementService_SettleMatch_Replay(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockWalletRepo := new(MockWalletRepository)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockWalletRepo, mockTxnRepo, nil, nil, nil, nil)

	svc := NewSettlementService(mockFactory, NewRevenueRouter(mockFactory, 999))

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockTxnRepo.On("ExistsByReference", ctx, int64(200), models.TransactionTypeBetLoss, "match-m42-loss").Return(true, nil)

	_, err := svc.SettleMatch(ctx, "m42", 100, 200, 10000, 500)

	assert.ErrorIs(t, err, ErrMatchAlreadySettled)
	mockWalletRepo.AssertNotCalled(t, "GetByUserIDForUpdate", mock.Anything, mock.Anything)
}

func TestSettlementService_SettleMatch_ZeroFee(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockWalletRepo := new(MockWalletRepository)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockWalletRepo, mockTxnRepo, nil, nil, nil, nil)

	svc := NewSettlementService(mockFactory, NewRevenueRouter(mockFactory, 999))

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockTxnRepo.On("ExistsByReference", ctx, int64(200), models.TransactionTypeBetLoss, "match-m1-loss").Return(false, nil)

	mockWalletRepo.On("GetByUserIDForUpdate", ctx, int64(200)).Return(&models.Wallet{
		UserID:         200,
		Balance:        1000,
		DepositBalance: 1000,
	}, nil)
	mockWalletRepo.On("ApplyBucketDeltas", ctx, int64(200), int64(-1000), int64(0), int64(0)).Return(&models.Wallet{UserID: 200}, nil)

	mockWalletRepo.On("GetByUserIDForUpdate", ctx, int64(100)).Return(&models.Wallet{UserID: 100}, nil)
	mockWalletRepo.On("ApplyBucketDeltas", ctx, int64(100), int64(0), int64(1000), int64(0)).Return(&models.Wallet{
		UserID:          100,
		Balance:         1000,
		WinningsBalance: 1000,
	}, nil)

	mockTxnRepo.On("Record", ctx, mock.Anything).Return(nil)

	result, err := svc.SettleMatch(ctx, "m1", 100, 200, 1000, 0)

	require.NoError(t, err)
	assert.Equal(t, int64(0), result.PlatformFee)
	assert.Equal(t, int64(1000), result.WinnerPayout)

	// No revenue leg when the fee rounds to zero
	mockWalletRepo.AssertNotCalled(t, "GetByUserIDForUpdate", ctx, int64(999))
}

func TestSettlementService_SettleMatch_Validation(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	svc := NewSettlementService(mockFactory, NewRevenueRouter(mockFactory, 999))

	_, err := svc.SettleMatch(ctx, "", 100, 200, 1000, 500)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.SettleMatch(ctx, "m1", 100, 100, 1000, 500)
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.SettleMatch(ctx, "m1", 100, 200, 0, 500)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.SettleMatch(ctx, "m1", 100, 200, 1000, 10000)
	assert.ErrorAs(t, err, &validationErr)

	mockFactory.AssertNotCalled(t, "Create")
}
