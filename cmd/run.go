package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bankroll/config"
	"bankroll/database"
	"bankroll/events"
	"bankroll/repository"
	"bankroll/service"
)

// Services bundles the platform's service surface. Embedding callers (the
// matchmaking backend, the admin console) consume these interfaces directly.
type Services struct {
	Ledger     service.LedgerService
	Credits    service.CreditsService
	Revenue    service.RevenueRouter
	Withdrawal service.WithdrawalService
	Admin      service.AdminService
	Settings   service.SettingsService
	Settlement service.SettlementService
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting wallet service...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()
	subscribeAuditLogging(eventBus)

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus, cfg.LockTimeout)

	// Initialize services
	log.Println("Initializing services...")
	settingsService := service.NewSettingsService(uowFactory, cfg.SettingsCacheTTL)
	revenueRouter := service.NewRevenueRouter(uowFactory, cfg.RevenueAccountID)
	ledgerService := service.NewLedgerService(uowFactory)

	svcs := &Services{
		Ledger:     ledgerService,
		Credits:    service.NewCreditsService(uowFactory, revenueRouter, settingsService),
		Revenue:    revenueRouter,
		Withdrawal: service.NewWithdrawalService(uowFactory, settingsService),
		Admin:      service.NewAdminService(uowFactory, cfg.AdminUserIDs),
		Settings:   settingsService,
		Settlement: service.NewSettlementService(uowFactory, revenueRouter),
	}
	log.Println("Services initialized successfully")

	// The revenue wallet must exist before the first fee is routed
	if err := ensureRevenueWallet(ctx, svcs.Ledger, cfg.RevenueAccountID); err != nil {
		return fmt.Errorf("failed to ensure revenue wallet: %w", err)
	}

	// Wait for context cancellation
	log.Printf("Wallet service is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down wallet service...")

	// Give in-flight event handlers time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}

// ensureRevenueWallet provisions the platform revenue wallet on first boot
func ensureRevenueWallet(ctx context.Context, ledger service.LedgerService, revenueAccountID int64) error {
	_, err := ledger.GetWallet(ctx, revenueAccountID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, service.ErrWalletNotFound) {
		return err
	}

	log.Printf("Provisioning revenue wallet for account %d...", revenueAccountID)
	_, err = ledger.CreateWallet(ctx, revenueAccountID)
	return err
}
