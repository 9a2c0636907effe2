package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// Ledger configuration
	RevenueAccountID int64         // wallet that receives platform fees and credit-sale proceeds
	AdminUserIDs     []int64       // users allowed to perform administrative operations
	LockTimeout      time.Duration // bound on row-lock waits before a retryable failure
	SettingsCacheTTL time.Duration // TTL for the cached platform settings row

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Defaults
		LockTimeout:      3 * time.Second,
		SettingsCacheTTL: 30 * time.Second,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// The platform revenue wallet is configured explicitly, never discovered
	// by querying for an admin user.
	if revenueID := os.Getenv("REVENUE_ACCOUNT_ID"); revenueID != "" {
		parsed, err := strconv.ParseInt(revenueID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid REVENUE_ACCOUNT_ID: %w", err)
		}
		config.RevenueAccountID = parsed
	}

	// Parse admin user IDs
	if adminIDs := os.Getenv("ADMIN_USER_IDS"); adminIDs != "" {
		idStrings := strings.Split(adminIDs, ",")
		for _, idStr := range idStrings {
			idStr = strings.TrimSpace(idStr)
			if idStr != "" {
				if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
					config.AdminUserIDs = append(config.AdminUserIDs, id)
				}
			}
		}
	}

	if timeout := os.Getenv("LOCK_TIMEOUT_MS"); timeout != "" {
		if parsed, err := strconv.Atoi(timeout); err == nil {
			config.LockTimeout = time.Duration(parsed) * time.Millisecond
		}
	}
	if ttl := os.Getenv("SETTINGS_CACHE_TTL_MS"); ttl != "" {
		if parsed, err := strconv.Atoi(ttl); err == nil {
			config.SettingsCacheTTL = time.Duration(parsed) * time.Millisecond
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.RevenueAccountID == 0 {
			return nil, fmt.Errorf("REVENUE_ACCOUNT_ID is required")
		}
	}

	return config, nil
}
