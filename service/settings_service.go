package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bankroll/models"
)

// settingsService serves the single platform settings row through an explicit
// TTL cache. The cache holds a value and its expiry instant; staleness is
// bounded by the TTL, and every write path invalidates eagerly so admin
// changes are visible on the next read.
type settingsService struct {
	uowFactory UnitOfWorkFactory
	ttl        time.Duration
	now        func() time.Time

	mu        sync.Mutex
	cached    *models.PlatformSettings
	expiresAt time.Time
}

// NewSettingsService creates a new settings service with the given cache TTL
func NewSettingsService(uowFactory UnitOfWorkFactory, ttl time.Duration) SettingsService {
	return &settingsService{
		uowFactory: uowFactory,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (s *settingsService) Get(ctx context.Context) (*models.PlatformSettings, error) {
	s.mu.Lock()
	if s.cached != nil && !s.isExpired(s.now()) {
		cached := *s.cached
		s.mu.Unlock()
		return &cached, nil
	}
	s.mu.Unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	settings, err := uow.SettingsRepository().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.mu.Lock()
	s.cached = settings
	s.expiresAt = s.now().Add(s.ttl)
	s.mu.Unlock()

	result := *settings
	return &result, nil
}

// UpdateWithdrawalLimits changes the withdrawal bounds and invalidates the
// cache. The audit entry commits with the change.
func (s *settingsService) UpdateWithdrawalLimits(ctx context.Context, adminID int64, min, max int64) error {
	if min <= 0 {
		return &ValidationError{Field: "withdrawalMin", Reason: "must be positive"}
	}
	if max < min {
		return &ValidationError{Field: "withdrawalMax", Reason: "must be at least the minimum"}
	}

	return s.update(ctx, adminID, func(settings *models.PlatformSettings) map[string]any {
		details := map[string]any{
			"withdrawal_min_old": settings.WithdrawalMin,
			"withdrawal_min_new": min,
			"withdrawal_max_old": settings.WithdrawalMax,
			"withdrawal_max_new": max,
		}
		settings.WithdrawalMin = min
		settings.WithdrawalMax = max
		return details
	})
}

// UpdateCreditUnitPrice changes the per-credit monetary value and invalidates
// the cache. The audit entry commits with the change.
func (s *settingsService) UpdateCreditUnitPrice(ctx context.Context, adminID int64, price int64) error {
	if price <= 0 {
		return &ValidationError{Field: "creditUnitPrice", Reason: "must be positive"}
	}

	return s.update(ctx, adminID, func(settings *models.PlatformSettings) map[string]any {
		details := map[string]any{
			"credit_unit_price_old": settings.CreditUnitPrice,
			"credit_unit_price_new": price,
		}
		settings.CreditUnitPrice = price
		return details
	})
}

// update reads the settings row, applies the mutation, persists it with its
// audit entry, and invalidates the cache.
func (s *settingsService) update(ctx context.Context, adminID int64, mutate func(*models.PlatformSettings) map[string]any) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.SettingsRepository().Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	details := mutate(settings)

	if err := uow.SettingsRepository().Update(ctx, settings); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	entry := &models.AdminLogEntry{
		AdminID:    adminID,
		Action:     models.AdminActionUpdateSettings,
		TargetType: models.AdminTargetSettings,
		TargetID:   1,
		Details:    details,
	}
	if err := uow.AdminLogRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record admin log: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.Invalidate()

	return nil
}

// Invalidate drops the cached settings so the next read hits the database.
func (s *settingsService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.expiresAt = time.Time{}
	s.mu.Unlock()
}

func (s *settingsService) isExpired(now time.Time) bool {
	return !now.Before(s.expiresAt)
}
