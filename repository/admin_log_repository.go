package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"bankroll/database"
	"bankroll/models"
)

// AdminLogRepository implements the service.AdminLogRepository interface.
// Audit entries are append-only and never mutated.
type AdminLogRepository struct {
	q Queryable
}

// NewAdminLogRepository creates a new admin log repository
func NewAdminLogRepository(db *database.DB) *AdminLogRepository {
	return &AdminLogRepository{q: db.Pool}
}

// newAdminLogRepositoryWithTx creates a new admin log repository with a transaction
func newAdminLogRepositoryWithTx(tx Queryable) *AdminLogRepository {
	return &AdminLogRepository{q: tx}
}

// Record appends an audit entry
func (r *AdminLogRepository) Record(ctx context.Context, entry *models.AdminLogEntry) error {
	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal admin log details: %w", err)
	}

	query := `
		INSERT INTO admin_logs (admin_id, action, target_type, target_id, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		entry.AdminID,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		detailsJSON,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record admin log for admin %d: %w", entry.AdminID, err)
	}

	return nil
}

// GetByTarget returns audit entries for a specific entity, newest first
func (r *AdminLogRepository) GetByTarget(ctx context.Context, targetType models.AdminTargetType, targetID int64, limit int) ([]*models.AdminLogEntry, error) {
	query := `
		SELECT id, admin_id, action, target_type, target_id, details, created_at
		FROM admin_logs
		WHERE target_type = $1 AND target_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	return r.queryEntries(ctx, query, targetType, targetID, limit)
}

// GetByAdmin returns audit entries written by one administrator
func (r *AdminLogRepository) GetByAdmin(ctx context.Context, adminID int64, limit int) ([]*models.AdminLogEntry, error) {
	query := `
		SELECT id, admin_id, action, target_type, target_id, details, created_at
		FROM admin_logs
		WHERE admin_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	return r.queryEntries(ctx, query, adminID, limit)
}

func (r *AdminLogRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*models.AdminLogEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query admin logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.AdminLogEntry
	for rows.Next() {
		var entry models.AdminLogEntry
		var detailsJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.AdminID,
			&entry.Action,
			&entry.TargetType,
			&entry.TargetID,
			&detailsJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin log: %w", err)
		}

		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal admin log details: %w", err)
			}
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate admin logs: %w", err)
	}

	return entries, nil
}
