package service

import (
	"context"
	"time"

	"bankroll/events"
	"bankroll/models"

	"github.com/stretchr/testify/mock"
)

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID int64) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Create(ctx context.Context, userID int64) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ApplyBucketDeltas(ctx context.Context, userID int64, deposit, winnings, bonus int64) (*models.Wallet, error) {
	args := m.Called(ctx, userID, deposit, winnings, bonus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	args := m.Called(ctx, userID, blocked)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Record(ctx context.Context, txn *models.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) ExistsByReference(ctx context.Context, userID int64, txType models.TransactionType, referenceID string) (bool, error) {
	args := m.Called(ctx, userID, txType, referenceID)
	return args.Bool(0), args.Error(1)
}

// MockCreditsRepository is a mock implementation of CreditsRepository
type MockCreditsRepository struct {
	mock.Mock
}

func (m *MockCreditsRepository) GetByUserID(ctx context.Context, userID int64) (*models.Credits, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Credits), args.Error(1)
}

func (m *MockCreditsRepository) GetOrCreateForUpdate(ctx context.Context, userID int64) (*models.Credits, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Credits), args.Error(1)
}

func (m *MockCreditsRepository) AddAmount(ctx context.Context, userID int64, delta int64) (*models.Credits, error) {
	args := m.Called(ctx, userID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Credits), args.Error(1)
}

func (m *MockCreditsRepository) SetLastFreeCredit(ctx context.Context, userID int64, grantedAt time.Time) error {
	args := m.Called(ctx, userID, grantedAt)
	return args.Error(0)
}

func (m *MockCreditsRepository) SetUnlimited(ctx context.Context, userID int64, unlimited bool) error {
	args := m.Called(ctx, userID, unlimited)
	return args.Error(0)
}

// MockWithdrawalRepository is a mock implementation of WithdrawalRepository
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, req *models.WithdrawalRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetByID(ctx context.Context, id int64) (*models.WithdrawalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalRepository) GetPendingByUser(ctx context.Context, userID int64) (*models.WithdrawalRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalRepository) MarkTerminal(ctx context.Context, id int64, status models.WithdrawalStatus, reason *string) (*models.WithdrawalRequest, error) {
	args := m.Called(ctx, id, status, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.WithdrawalRequest, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalRepository) ListPending(ctx context.Context, limit int) ([]*models.WithdrawalRequest, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WithdrawalRequest), args.Error(1)
}

// MockAdminLogRepository is a mock implementation of AdminLogRepository
type MockAdminLogRepository struct {
	mock.Mock
}

func (m *MockAdminLogRepository) Record(ctx context.Context, entry *models.AdminLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAdminLogRepository) GetByTarget(ctx context.Context, targetType models.AdminTargetType, targetID int64, limit int) ([]*models.AdminLogEntry, error) {
	args := m.Called(ctx, targetType, targetID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AdminLogEntry), args.Error(1)
}

func (m *MockAdminLogRepository) GetByAdmin(ctx context.Context, adminID int64, limit int) ([]*models.AdminLogEntry, error) {
	args := m.Called(ctx, adminID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AdminLogEntry), args.Error(1)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*models.PlatformSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformSettings), args.Error(1)
}

func (m *MockSettingsRepository) Update(ctx context.Context, settings *models.PlatformSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// CapturingEventPublisher records published events for assertion. Used as the
// default bus on MockUnitOfWork so tests that don't care about events need no
// expectations.
type CapturingEventPublisher struct {
	Events []events.Event
}

func (p *CapturingEventPublisher) Publish(event events.Event) {
	p.Events = append(p.Events, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	walletRepo      WalletRepository
	transactionRepo TransactionRepository
	creditsRepo     CreditsRepository
	withdrawalRepo  WithdrawalRepository
	adminLogRepo    AdminLogRepository
	settingsRepo    SettingsRepository
	eventBus        EventPublisher
}

// SetRepositories wires the repositories the unit of work hands out. Pass nil
// for repositories the test never touches.
func (m *MockUnitOfWork) SetRepositories(
	wallet WalletRepository,
	transaction TransactionRepository,
	credits CreditsRepository,
	withdrawal WithdrawalRepository,
	adminLog AdminLogRepository,
	settings SettingsRepository,
) {
	m.walletRepo = wallet
	m.transactionRepo = transaction
	m.creditsRepo = credits
	m.withdrawalRepo = withdrawal
	m.adminLogRepo = adminLog
	m.settingsRepo = settings
}

// SetEventBus overrides the default capturing publisher
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) WalletRepository() WalletRepository {
	return m.walletRepo
}

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository {
	return m.transactionRepo
}

func (m *MockUnitOfWork) CreditsRepository() CreditsRepository {
	return m.creditsRepo
}

func (m *MockUnitOfWork) WithdrawalRepository() WithdrawalRepository {
	return m.withdrawalRepo
}

func (m *MockUnitOfWork) AdminLogRepository() AdminLogRepository {
	return m.adminLogRepo
}

func (m *MockUnitOfWork) SettingsRepository() SettingsRepository {
	return m.settingsRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		m.eventBus = &CapturingEventPublisher{}
	}
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
