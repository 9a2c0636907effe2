package repository

import (
	"context"
	"fmt"
	"time"

	"bankroll/database"
	"bankroll/events"
	"bankroll/service"
	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the service.UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	lockTimeout      time.Duration
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	walletRepo       service.WalletRepository
	transactionRepo  service.TransactionRepository
	creditsRepo      service.CreditsRepository
	withdrawalRepo   service.WithdrawalRepository
	adminLogRepo     service.AdminLogRepository
	settingsRepo     service.SettingsRepository
}

type unitOfWorkFactory struct {
	db          *database.DB
	eventBus    *events.Bus
	lockTimeout time.Duration
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory. lockTimeout bounds
// row-lock waits inside each unit of work; a timed-out wait surfaces as
// ErrConcurrentModification rather than a deadlock.
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus, lockTimeout time.Duration) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:          db,
		eventBus:    eventBus,
		lockTimeout: lockTimeout,
	}
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		lockTimeout:      f.lockTimeout,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if u.lockTimeout > 0 {
		timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", u.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, timeout); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.walletRepo = newWalletRepositoryWithTx(tx)
	u.transactionRepo = newTransactionRepositoryWithTx(tx)
	u.creditsRepo = newCreditsRepositoryWithTx(tx)
	u.withdrawalRepo = newWithdrawalRepositoryWithTx(tx)
	u.adminLogRepo = newAdminLogRepositoryWithTx(tx)
	u.settingsRepo = newSettingsRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush()
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// WalletRepository returns the wallet repository for this unit of work
func (u *unitOfWork) WalletRepository() service.WalletRepository {
	if u.walletRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.walletRepo
}

// TransactionRepository returns the transaction repository for this unit of work
func (u *unitOfWork) TransactionRepository() service.TransactionRepository {
	if u.transactionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionRepo
}

// CreditsRepository returns the credits repository for this unit of work
func (u *unitOfWork) CreditsRepository() service.CreditsRepository {
	if u.creditsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.creditsRepo
}

// WithdrawalRepository returns the withdrawal repository for this unit of work
func (u *unitOfWork) WithdrawalRepository() service.WithdrawalRepository {
	if u.withdrawalRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.withdrawalRepo
}

// AdminLogRepository returns the admin log repository for this unit of work
func (u *unitOfWork) AdminLogRepository() service.AdminLogRepository {
	if u.adminLogRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.adminLogRepo
}

// SettingsRepository returns the settings repository for this unit of work
func (u *unitOfWork) SettingsRepository() service.SettingsRepository {
	if u.settingsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.settingsRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
