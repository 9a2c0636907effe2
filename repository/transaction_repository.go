package repository

import (
	"context"
	"fmt"

	"bankroll/database"
	"bankroll/models"
)

// TransactionRepository implements the service.TransactionRepository interface.
// The transactions table is append-only: entries are never updated or deleted.
type TransactionRepository struct {
	q Queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository with a transaction
func newTransactionRepositoryWithTx(tx Queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Record appends a new ledger entry
func (r *TransactionRepository) Record(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions
		(user_id, type, amount, balance_after, balance_type, reference_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		txn.UserID,
		txn.Type,
		txn.Amount,
		txn.BalanceAfter,
		txn.BalanceType,
		txn.ReferenceID,
		txn.Description,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record transaction for user %d: %w", txn.UserID, err)
	}

	return nil
}

// GetByUser returns a page of ledger entries, newest first
func (r *TransactionRepository) GetByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, balance_after, balance_type,
		       reference_id, description, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		var txn models.Transaction
		err := rows.Scan(
			&txn.ID,
			&txn.UserID,
			&txn.Type,
			&txn.Amount,
			&txn.BalanceAfter,
			&txn.BalanceType,
			&txn.ReferenceID,
			&txn.Description,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, &txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txns, nil
}

// CountByUser returns the total number of entries for a user
func (r *TransactionRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions for user %d: %w", userID, err)
	}
	return count, nil
}

// ExistsByReference reports whether the referenced business event was already
// applied under the given type. Backed by a partial unique index, so even a
// racing writer cannot apply the same reference twice.
func (r *TransactionRepository) ExistsByReference(ctx context.Context, userID int64, txType models.TransactionType, referenceID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE user_id = $1 AND type = $2 AND reference_id = $3
		)
	`

	var exists bool
	err := r.q.QueryRow(ctx, query, userID, txType, referenceID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check transaction reference %s: %w", referenceID, err)
	}

	return exists, nil
}
