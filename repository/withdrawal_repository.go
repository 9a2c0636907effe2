package repository

import (
	"context"
	"fmt"

	"bankroll/database"
	"bankroll/models"
	"github.com/jackc/pgx/v5"
)

// WithdrawalRepository implements the service.WithdrawalRepository interface
type WithdrawalRepository struct {
	q Queryable
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *database.DB) *WithdrawalRepository {
	return &WithdrawalRepository{q: db.Pool}
}

// newWithdrawalRepositoryWithTx creates a new withdrawal repository with a transaction
func newWithdrawalRepositoryWithTx(tx Queryable) *WithdrawalRepository {
	return &WithdrawalRepository{q: tx}
}

const withdrawalColumns = `
	id, user_id, amount, pix_key, status, rejection_reason, created_at, resolved_at`

func scanWithdrawal(row pgx.Row) (*models.WithdrawalRequest, error) {
	var req models.WithdrawalRequest
	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.Amount,
		&req.PixKey,
		&req.Status,
		&req.RejectionReason,
		&req.CreatedAt,
		&req.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Create inserts a new request in pending state
func (r *WithdrawalRepository) Create(ctx context.Context, req *models.WithdrawalRequest) error {
	query := `
		INSERT INTO withdrawal_requests (user_id, amount, pix_key, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		req.UserID,
		req.Amount,
		req.PixKey,
		models.WithdrawalStatusPending,
	).Scan(&req.ID, &req.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create withdrawal request for user %d: %w", req.UserID, err)
	}

	req.Status = models.WithdrawalStatusPending
	return nil
}

// GetByID retrieves a request by ID
func (r *WithdrawalRepository) GetByID(ctx context.Context, id int64) (*models.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1`

	req, err := scanWithdrawal(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal request %d: %w", id, err)
	}

	return req, nil
}

// GetPendingByUser returns the user's in-flight request, or nil
func (r *WithdrawalRepository) GetPendingByUser(ctx context.Context, userID int64) (*models.WithdrawalRequest, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE user_id = $1 AND status = 'pending'
	`

	req, err := scanWithdrawal(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending withdrawal for user %d: %w", userID, err)
	}

	return req, nil
}

// MarkTerminal transitions a request out of pending. The status guard in the
// WHERE clause means a replayed transition matches zero rows and returns nil,
// so a reversal can never be applied twice.
func (r *WithdrawalRepository) MarkTerminal(ctx context.Context, id int64, status models.WithdrawalStatus, reason *string) (*models.WithdrawalRequest, error) {
	query := `
		UPDATE withdrawal_requests
		SET status = $1, rejection_reason = $2, resolved_at = NOW()
		WHERE id = $3 AND status = 'pending'
		RETURNING ` + withdrawalColumns

	req, err := scanWithdrawal(r.q.QueryRow(ctx, query, status, reason, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark withdrawal request %d as %s: %w", id, status, mapConcurrencyError(err))
	}

	return req, nil
}

// GetByUser returns the user's requests, newest first
func (r *WithdrawalRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.WithdrawalRequest, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	return r.queryRequests(ctx, query, userID, limit)
}

// ListPending returns the oldest pending requests for the review queue
func (r *WithdrawalRepository) ListPending(ctx context.Context, limit int) ([]*models.WithdrawalRequest, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE status = 'pending'
		ORDER BY created_at ASC, id ASC
		LIMIT $1
	`

	return r.queryRequests(ctx, query, limit)
}

func (r *WithdrawalRepository) queryRequests(ctx context.Context, query string, args ...any) ([]*models.WithdrawalRequest, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query withdrawal requests: %w", err)
	}
	defer rows.Close()

	var reqs []*models.WithdrawalRequest
	for rows.Next() {
		var req models.WithdrawalRequest
		err := rows.Scan(
			&req.ID,
			&req.UserID,
			&req.Amount,
			&req.PixKey,
			&req.Status,
			&req.RejectionReason,
			&req.CreatedAt,
			&req.ResolvedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal request: %w", err)
		}
		reqs = append(reqs, &req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdrawal requests: %w", err)
	}

	return reqs, nil
}
