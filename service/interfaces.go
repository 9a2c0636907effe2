package service

import (
	"context"
	"time"

	"bankroll/events"
	"bankroll/models"
)

// WalletRepository defines the interface for wallet data access
type WalletRepository interface {
	// GetByUserID retrieves a wallet, or nil if none exists
	GetByUserID(ctx context.Context, userID int64) (*models.Wallet, error)

	// GetByUserIDForUpdate retrieves a wallet holding a row lock for the
	// remainder of the enclosing transaction
	GetByUserIDForUpdate(ctx context.Context, userID int64) (*models.Wallet, error)

	// Create creates a new zero-balance wallet
	Create(ctx context.Context, userID int64) (*models.Wallet, error)

	// ApplyBucketDeltas atomically shifts the bucket balances, keeping the
	// total consistent. Negative deltas that would take a bucket below zero
	// leave the row untouched and return an error.
	ApplyBucketDeltas(ctx context.Context, userID int64, deposit, winnings, bonus int64) (*models.Wallet, error)

	// SetBlocked flips the blocked flag
	SetBlocked(ctx context.Context, userID int64, blocked bool) error
}

// TransactionRepository defines the interface for the append-only ledger log
type TransactionRepository interface {
	// Record appends a new ledger entry; entries are never updated or deleted
	Record(ctx context.Context, txn *models.Transaction) error

	// GetByUser returns a page of ledger entries, newest first
	GetByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Transaction, error)

	// CountByUser returns the total number of entries for a user
	CountByUser(ctx context.Context, userID int64) (int64, error)

	// ExistsByReference reports whether a referenced business event was
	// already applied to the user's wallet under the given type
	ExistsByReference(ctx context.Context, userID int64, txType models.TransactionType, referenceID string) (bool, error)
}

// CreditsRepository defines the interface for play-credit data access
type CreditsRepository interface {
	// GetByUserID retrieves a credits row, or nil if none exists
	GetByUserID(ctx context.Context, userID int64) (*models.Credits, error)

	// GetOrCreateForUpdate retrieves the credits row holding a row lock,
	// creating a zero row first if the user has none
	GetOrCreateForUpdate(ctx context.Context, userID int64) (*models.Credits, error)

	// AddAmount shifts the credit amount by delta, clamping failure below zero
	AddAmount(ctx context.Context, userID int64, delta int64) (*models.Credits, error)

	// SetLastFreeCredit records the moment of the daily free grant
	SetLastFreeCredit(ctx context.Context, userID int64, grantedAt time.Time) error

	// SetUnlimited flips the VIP override flag
	SetUnlimited(ctx context.Context, userID int64, unlimited bool) error
}

// WithdrawalRepository defines the interface for withdrawal request data access
type WithdrawalRepository interface {
	// Create inserts a new request in pending state
	Create(ctx context.Context, req *models.WithdrawalRequest) error

	// GetByID retrieves a request, or nil if none exists
	GetByID(ctx context.Context, id int64) (*models.WithdrawalRequest, error)

	// GetPendingByUser returns the user's in-flight request, or nil
	GetPendingByUser(ctx context.Context, userID int64) (*models.WithdrawalRequest, error)

	// MarkTerminal transitions a request out of pending. Returns nil when the
	// request was not pending, so replayed transitions cannot reapply.
	MarkTerminal(ctx context.Context, id int64, status models.WithdrawalStatus, reason *string) (*models.WithdrawalRequest, error)

	// GetByUser returns the user's requests, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.WithdrawalRequest, error)

	// ListPending returns the oldest pending requests for the review queue
	ListPending(ctx context.Context, limit int) ([]*models.WithdrawalRequest, error)
}

// AdminLogRepository defines the interface for the append-only admin audit log
type AdminLogRepository interface {
	// Record appends an audit entry
	Record(ctx context.Context, entry *models.AdminLogEntry) error

	// GetByTarget returns audit entries for a specific entity, newest first
	GetByTarget(ctx context.Context, targetType models.AdminTargetType, targetID int64, limit int) ([]*models.AdminLogEntry, error)

	// GetByAdmin returns audit entries written by one administrator
	GetByAdmin(ctx context.Context, adminID int64, limit int) ([]*models.AdminLogEntry, error)
}

// SettingsRepository defines the interface for the platform settings row
type SettingsRepository interface {
	// Get returns the single settings row
	Get(ctx context.Context) (*models.PlatformSettings, error)

	// Update overwrites the settings row
	Update(ctx context.Context, settings *models.PlatformSettings) error
}

// LedgerService owns all wallet balance mutations. No other component writes
// balances directly.
type LedgerService interface {
	// GetWallet retrieves a user's wallet
	GetWallet(ctx context.Context, userID int64) (*models.Wallet, error)

	// CreateWallet provisions a zero-balance wallet for a new user
	CreateWallet(ctx context.Context, userID int64) (*models.Wallet, error)

	// Credit increases the named bucket by amount and appends a ledger entry
	Credit(ctx context.Context, userID int64, amount int64, bucket models.BalanceBucket, txType models.TransactionType, description string, referenceID *string) (*models.Wallet, error)

	// DebitForBet debits amount across deposit then winnings. Bonus funds
	// never settle a wager.
	DebitForBet(ctx context.Context, userID int64, amount int64, description string, referenceID *string) (*models.Wallet, error)

	// DebitForPurchase debits amount across deposit then winnings. Bonus
	// funds never buy credits.
	DebitForPurchase(ctx context.Context, userID int64, amount int64, description string) (*models.Wallet, error)

	// SetBlocked flips the wallet's blocked flag
	SetBlocked(ctx context.Context, userID int64, blocked bool) error

	// GetTransactions returns a page of the user's ledger plus the total count
	GetTransactions(ctx context.Context, userID int64, limit, offset int) ([]*models.Transaction, int64, error)
}

// CreditsService owns the consumable play-token balance per user
type CreditsService interface {
	// GetCredits retrieves a user's credits, or a zero-value row if none exist
	GetCredits(ctx context.Context, userID int64) (*models.Credits, error)

	// GrantDailyFree grants the once-a-day courtesy credit
	GrantDailyFree(ctx context.Context, userID int64) (*models.FreeCreditGrant, error)

	// Purchase buys quantity credits at pricePerCredit each, debiting the
	// wallet and routing the proceeds to platform revenue. All-or-nothing.
	Purchase(ctx context.Context, userID int64, quantity, pricePerCredit int64) (*models.Credits, error)

	// Use consumes one credit to start a match. Paid consumption also debits
	// the per-credit monetary value and routes it to platform revenue.
	Use(ctx context.Context, userID int64, isFreeCredit bool) (*models.Credits, error)

	// AdminAdjust adds or removes credits, clamped at zero, always audited
	AdminAdjust(ctx context.Context, adminID, userID int64, delta int64) (*models.Credits, error)

	// SetUnlimited toggles the VIP override, audited
	SetUnlimited(ctx context.Context, adminID, userID int64, unlimited bool) error
}

// RevenueRouter routes platform fees and credit-sale proceeds into the
// configured platform revenue wallet
type RevenueRouter interface {
	// RouteWithin credits the revenue wallet inside an already-open unit of
	// work. Idempotent per referenceID.
	RouteWithin(ctx context.Context, uow UnitOfWork, amount int64, fromUserID int64, referenceID, description string) error

	// Route credits the revenue wallet in its own transaction
	Route(ctx context.Context, amount int64, fromUserID int64, referenceID, description string) error
}

// WithdrawalService manages the pending/approved/rejected lifecycle of
// withdrawal requests and the winnings reservation that backs them
type WithdrawalService interface {
	// Request reserves amount from the winnings bucket and creates a pending request
	Request(ctx context.Context, userID int64, amount int64, pixKey string) (*models.WithdrawalRequest, error)

	// Cancel lets the requesting user withdraw their own pending request,
	// reversing the reservation
	Cancel(ctx context.Context, userID int64, requestID int64) (*models.WithdrawalRequest, error)

	// Reject terminally rejects a pending request, reversing the reservation
	Reject(ctx context.Context, adminID int64, requestID int64, reason string) (*models.WithdrawalRequest, error)

	// Approve marks the payout as confirmed. Funds already left at
	// reservation time, so no ledger mutation happens here.
	Approve(ctx context.Context, adminID int64, requestID int64) (*models.WithdrawalRequest, error)

	// GetByUser returns the user's requests, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.WithdrawalRequest, error)

	// ListPending returns the oldest pending requests for the review queue
	ListPending(ctx context.Context, limit int) ([]*models.WithdrawalRequest, error)
}

// AdminService performs audited administrative corrections on wallets
type AdminService interface {
	// IsAdmin is the single capability predicate consumed by every
	// administrative call site
	IsAdmin(userID int64) bool

	// AdjustBalance applies a signed correction to one bucket. This is the
	// only mutation permitted on a blocked wallet.
	AdjustBalance(ctx context.Context, adminID, userID int64, bucket models.BalanceBucket, delta int64, reason string) (*models.Wallet, error)

	// SetBlocked blocks or unblocks a wallet, audited
	SetBlocked(ctx context.Context, adminID, userID int64, blocked bool) error
}

// SettingsService serves the platform settings row through a TTL cache
type SettingsService interface {
	// Get returns the current settings, possibly cached
	Get(ctx context.Context) (*models.PlatformSettings, error)

	// UpdateWithdrawalLimits changes the withdrawal bounds, audited, and
	// invalidates the cache
	UpdateWithdrawalLimits(ctx context.Context, adminID int64, min, max int64) error

	// UpdateCreditUnitPrice changes the per-credit monetary value, audited,
	// and invalidates the cache
	UpdateCreditUnitPrice(ctx context.Context, adminID int64, price int64) error
}

// SettlementService applies the ledger effects of a finished match
type SettlementService interface {
	// SettleMatch debits the loser's stake, credits the winner's winnings
	// net of the platform fee, and routes the fee to revenue, atomically
	SettleMatch(ctx context.Context, matchID string, winnerID, loserID int64, stake int64, feeBps int64) (*models.SettlementResult, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	WalletRepository() WalletRepository
	TransactionRepository() TransactionRepository
	CreditsRepository() CreditsRepository
	WithdrawalRepository() WithdrawalRepository
	AdminLogRepository() AdminLogRepository
	SettingsRepository() SettingsRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
