package repository

import (
	"context"
	"fmt"

	"bankroll/database"
	"bankroll/models"
)

// SettingsRepository implements the service.SettingsRepository interface.
// platform_settings holds exactly one row.
type SettingsRepository struct {
	q Queryable
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{q: db.Pool}
}

// newSettingsRepositoryWithTx creates a new settings repository with a transaction
func newSettingsRepositoryWithTx(tx Queryable) *SettingsRepository {
	return &SettingsRepository{q: tx}
}

// Get returns the single settings row
func (r *SettingsRepository) Get(ctx context.Context) (*models.PlatformSettings, error) {
	query := `
		SELECT withdrawal_min, withdrawal_max, credit_unit_price, updated_at
		FROM platform_settings
		WHERE id = 1
	`

	var s models.PlatformSettings
	err := r.q.QueryRow(ctx, query).Scan(
		&s.WithdrawalMin,
		&s.WithdrawalMax,
		&s.CreditUnitPrice,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get platform settings: %w", err)
	}

	return &s, nil
}

// Update overwrites the settings row
func (r *SettingsRepository) Update(ctx context.Context, settings *models.PlatformSettings) error {
	query := `
		UPDATE platform_settings
		SET withdrawal_min = $1, withdrawal_max = $2, credit_unit_price = $3, updated_at = NOW()
		WHERE id = 1
	`

	result, err := r.q.Exec(ctx, query,
		settings.WithdrawalMin,
		settings.WithdrawalMax,
		settings.CreditUnitPrice,
	)
	if err != nil {
		return fmt.Errorf("failed to update platform settings: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("platform settings row not found")
	}

	return nil
}
