package repository

import (
	"context"
	"testing"

	"bankroll/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository_Get(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewSettingsRepository(testDB.DB)
	ctx := context.Background()

	// Migrations seed the single row with defaults
	settings, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings)

	assert.Equal(t, int64(1000), settings.WithdrawalMin)
	assert.Equal(t, int64(500000), settings.WithdrawalMax)
	assert.Equal(t, int64(250), settings.CreditUnitPrice)
}

func TestSettingsRepository_Update(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewSettingsRepository(testDB.DB)
	ctx := context.Background()

	settings, err := repo.Get(ctx)
	require.NoError(t, err)

	settings.WithdrawalMin = 2000
	settings.WithdrawalMax = 100000
	settings.CreditUnitPrice = 300

	require.NoError(t, repo.Update(ctx, settings))

	updated, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), updated.WithdrawalMin)
	assert.Equal(t, int64(100000), updated.WithdrawalMax)
	assert.Equal(t, int64(300), updated.CreditUnitPrice)

	t.Run("constraint refuses inverted limits", func(t *testing.T) {
		bad, err := repo.Get(ctx)
		require.NoError(t, err)

		bad.WithdrawalMin = 500000
		bad.WithdrawalMax = 1000
		assert.Error(t, repo.Update(ctx, bad))
	})
}
