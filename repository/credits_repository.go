package repository

import (
	"context"
	"fmt"
	"time"

	"bankroll/database"
	"bankroll/models"
	"github.com/jackc/pgx/v5"
)

// CreditsRepository implements the service.CreditsRepository interface
type CreditsRepository struct {
	q Queryable
}

// NewCreditsRepository creates a new credits repository
func NewCreditsRepository(db *database.DB) *CreditsRepository {
	return &CreditsRepository{q: db.Pool}
}

// newCreditsRepositoryWithTx creates a new credits repository with a transaction
func newCreditsRepositoryWithTx(tx Queryable) *CreditsRepository {
	return &CreditsRepository{q: tx}
}

func scanCredits(row pgx.Row) (*models.Credits, error) {
	var c models.Credits
	err := row.Scan(
		&c.UserID,
		&c.Amount,
		&c.IsUnlimited,
		&c.LastFreeCreditDate,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByUserID retrieves a credits row by user ID
func (r *CreditsRepository) GetByUserID(ctx context.Context, userID int64) (*models.Credits, error) {
	query := `
		SELECT user_id, amount, is_unlimited, last_free_credit, updated_at
		FROM credits
		WHERE user_id = $1
	`

	credits, err := scanCredits(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credits for user %d: %w", userID, err)
	}

	return credits, nil
}

// GetOrCreateForUpdate retrieves the credits row holding a row lock, creating
// a zero row first if the user has none. The insert is race-safe: a losing
// concurrent insert falls through to the locked select.
func (r *CreditsRepository) GetOrCreateForUpdate(ctx context.Context, userID int64) (*models.Credits, error) {
	insert := `
		INSERT INTO credits (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, insert, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure credits row for user %d: %w", userID, err)
	}

	query := `
		SELECT user_id, amount, is_unlimited, last_free_credit, updated_at
		FROM credits
		WHERE user_id = $1
		FOR UPDATE
	`

	credits, err := scanCredits(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock credits for user %d: %w", userID, mapConcurrencyError(err))
	}

	return credits, nil
}

// AddAmount shifts the credit amount by delta. The WHERE guard refuses to
// take the amount below zero.
func (r *CreditsRepository) AddAmount(ctx context.Context, userID int64, delta int64) (*models.Credits, error) {
	query := `
		UPDATE credits
		SET amount = amount + $1, updated_at = NOW()
		WHERE user_id = $2 AND amount + $1 >= 0
		RETURNING user_id, amount, is_unlimited, last_free_credit, updated_at
	`

	credits, err := scanCredits(r.q.QueryRow(ctx, query, delta, userID))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to adjust credits for user %d: row missing or amount would go negative", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust credits for user %d: %w", userID, mapConcurrencyError(err))
	}

	return credits, nil
}

// SetLastFreeCredit records the moment of the daily free grant
func (r *CreditsRepository) SetLastFreeCredit(ctx context.Context, userID int64, grantedAt time.Time) error {
	query := `
		UPDATE credits
		SET last_free_credit = $1, updated_at = NOW()
		WHERE user_id = $2
	`

	result, err := r.q.Exec(ctx, query, grantedAt, userID)
	if err != nil {
		return fmt.Errorf("failed to set free credit date for user %d: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("credits row for user %d not found", userID)
	}

	return nil
}

// SetUnlimited flips the VIP override flag
func (r *CreditsRepository) SetUnlimited(ctx context.Context, userID int64, unlimited bool) error {
	query := `
		UPDATE credits
		SET is_unlimited = $1, updated_at = NOW()
		WHERE user_id = $2
	`

	result, err := r.q.Exec(ctx, query, unlimited, userID)
	if err != nil {
		return fmt.Errorf("failed to set unlimited for user %d: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("credits row for user %d not found", userID)
	}

	return nil
}
