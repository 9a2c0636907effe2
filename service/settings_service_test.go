package service

import (
	"context"
	"testing"
	"time"

	"bankroll/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSettingsService_Get_CachesWithinTTL(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockSettingsRepo := new(MockSettingsRepository)

	mockUoW.SetRepositories(nil, nil, nil, nil, nil, mockSettingsRepo)

	svc := NewSettingsService(mockFactory, 30*time.Second).(*settingsService)
	current := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }

	mockFactory.On("Create").Return(mockUoW).Once()
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("Get", ctx).Return(&models.PlatformSettings{
		WithdrawalMin:   1000,
		WithdrawalMax:   500000,
		CreditUnitPrice: 250,
	}, nil).Once()

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(250), first.CreditUnitPrice)

	// Second read within the TTL is served from cache
	current = current.Add(10 * time.Second)
	second, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.CreditUnitPrice, second.CreditUnitPrice)

	mockSettingsRepo.AssertNumberOfCalls(t, "Get", 1)
}

func TestSettingsService_Get_RefreshesAfterTTL(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockSettingsRepo := new(MockSettingsRepository)

	mockUoW.SetRepositories(nil, nil, nil, nil, nil, mockSettingsRepo)

	svc := NewSettingsService(mockFactory, 30*time.Second).(*settingsService)
	current := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("Get", ctx).Return(&models.PlatformSettings{CreditUnitPrice: 250}, nil).Once()
	mockSettingsRepo.On("Get", ctx).Return(&models.PlatformSettings{CreditUnitPrice: 300}, nil).Once()

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(250), first.CreditUnitPrice)

	// Past the TTL the cache entry has expired
	current = current.Add(31 * time.Second)
	second, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(300), second.CreditUnitPrice)

	mockSettingsRepo.AssertNumberOfCalls(t, "Get", 2)
}

func TestSettingsService_Update_InvalidatesCache(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockSettingsRepo := new(MockSettingsRepository)
	mockAdminLogRepo := new(MockAdminLogRepository)

	mockUoW.SetRepositories(nil, nil, nil, nil, mockAdminLogRepo, mockSettingsRepo)

	svc := NewSettingsService(mockFactory, time.Hour).(*settingsService)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("Get", ctx).Return(&models.PlatformSettings{
		WithdrawalMin:   1000,
		WithdrawalMax:   500000,
		CreditUnitPrice: 250,
	}, nil).Once()

	// Prime the cache
	_, err := svc.Get(ctx)
	require.NoError(t, err)

	mockSettingsRepo.On("Get", ctx).Return(&models.PlatformSettings{
		WithdrawalMin:   1000,
		WithdrawalMax:   500000,
		CreditUnitPrice: 250,
	}, nil).Once()
	mockSettingsRepo.On("Update", ctx, mock.MatchedBy(func(s *models.PlatformSettings) bool {
		return s.CreditUnitPrice == 300
	})).Return(nil)
	mockAdminLogRepo.On("Record", ctx, mock.MatchedBy(func(entry *models.AdminLogEntry) bool {
		return entry.Action == models.AdminActionUpdateSettings &&
			entry.TargetType == models.AdminTargetSettings
	})).Return(nil)

	err = svc.UpdateCreditUnitPrice(ctx, 1, 300)
	require.NoError(t, err)

	// The cache was invalidated, so the next read hits the database again
	mockSettingsRepo.On("Get", ctx).Return(&models.PlatformSettings{CreditUnitPrice: 300}, nil).Once()
	updated, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(300), updated.CreditUnitPrice)

	mockSettingsRepo.AssertNumberOfCalls(t, "Get", 3)
	mockAdminLogRepo.AssertExpectations(t)
}

func TestSettingsService_UpdateWithdrawalLimits_Validation(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	svc := NewSettingsService(mockFactory, time.Minute)

	var validationErr *ValidationError

	err := svc.UpdateWithdrawalLimits(ctx, 1, 0, 500000)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "withdrawalMin", validationErr.Field)

	err = svc.UpdateWithdrawalLimits(ctx, 1, 5000, 1000)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "withdrawalMax", validationErr.Field)

	mockFactory.AssertNotCalled(t, "Create")
}

func TestSettingsService_UpdateCreditUnitPrice_Validation(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	svc := NewSettingsService(mockFactory, time.Minute)

	var validationErr *ValidationError
	err := svc.UpdateCreditUnitPrice(ctx, 1, -10)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "creditUnitPrice", validationErr.Field)

	mockFactory.AssertNotCalled(t, "Create")
}
