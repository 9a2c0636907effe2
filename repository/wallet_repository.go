package repository

import (
	"context"
	"fmt"

	"bankroll/database"
	"bankroll/models"
	"github.com/jackc/pgx/v5"
)

// WalletRepository implements the service.WalletRepository interface
type WalletRepository struct {
	q Queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

// newWalletRepositoryWithTx creates a new wallet repository with a transaction
func newWalletRepositoryWithTx(tx Queryable) *WalletRepository {
	return &WalletRepository{q: tx}
}

const walletColumns = `
	user_id, balance, deposit_balance, winnings_balance, bonus_balance,
	is_blocked, created_at, updated_at`

func scanWallet(row pgx.Row) (*models.Wallet, error) {
	var w models.Wallet
	err := row.Scan(
		&w.UserID,
		&w.Balance,
		&w.DepositBalance,
		&w.WinningsBalance,
		&w.BonusBalance,
		&w.IsBlocked,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetByUserID retrieves a wallet by user ID
func (r *WalletRepository) GetByUserID(ctx context.Context, userID int64) (*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`

	wallet, err := scanWallet(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet for user %d: %w", userID, err)
	}

	return wallet, nil
}

// GetByUserIDForUpdate retrieves a wallet and holds a row lock until the
// enclosing transaction ends. Lock waits are bounded by the transaction's
// lock_timeout; a timeout surfaces as ErrConcurrentModification.
func (r *WalletRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE`

	wallet, err := scanWallet(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet for user %d: %w", userID, mapConcurrencyError(err))
	}

	return wallet, nil
}

// Create creates a new zero-balance wallet
func (r *WalletRepository) Create(ctx context.Context, userID int64) (*models.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id)
		VALUES ($1)
		RETURNING ` + walletColumns

	wallet, err := scanWallet(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet for user %d: %w", userID, err)
	}

	return wallet, nil
}

// ApplyBucketDeltas atomically shifts the bucket balances and the total.
// The WHERE guard keeps every bucket non-negative; the schema CHECK
// constraints back it up.
func (r *WalletRepository) ApplyBucketDeltas(ctx context.Context, userID int64, deposit, winnings, bonus int64) (*models.Wallet, error) {
	query := `
		UPDATE wallets
		SET deposit_balance = deposit_balance + $1,
		    winnings_balance = winnings_balance + $2,
		    bonus_balance = bonus_balance + $3,
		    balance = balance + $1 + $2 + $3,
		    updated_at = NOW()
		WHERE user_id = $4
		  AND deposit_balance + $1 >= 0
		  AND winnings_balance + $2 >= 0
		  AND bonus_balance + $3 >= 0
		RETURNING ` + walletColumns

	wallet, err := scanWallet(r.q.QueryRow(ctx, query, deposit, winnings, bonus, userID))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to apply deltas for user %d: wallet missing or bucket would go negative", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply deltas for user %d: %w", userID, mapConcurrencyError(err))
	}

	return wallet, nil
}

// SetBlocked flips the blocked flag
func (r *WalletRepository) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	query := `
		UPDATE wallets
		SET is_blocked = $1, updated_at = NOW()
		WHERE user_id = $2
	`

	result, err := r.q.Exec(ctx, query, blocked, userID)
	if err != nil {
		return fmt.Errorf("failed to set blocked for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("wallet for user %d not found", userID)
	}

	return nil
}
