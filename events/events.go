package events

import (
	"context"
	"sync"

	"bankroll/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange    EventType = "balance_change"
	EventTypeCreditsChange    EventType = "credits_change"
	EventTypeWithdrawalChange EventType = "withdrawal_change"
	EventTypeWalletBlocked    EventType = "wallet_blocked"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64
	OldBalance      int64
	NewBalance      int64
	TransactionType models.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// CreditsChangeEvent represents a play-credit balance change
type CreditsChangeEvent struct {
	UserID    int64
	OldAmount int64
	NewAmount int64
	Reason    string
}

func (e CreditsChangeEvent) Type() EventType {
	return EventTypeCreditsChange
}

// WithdrawalChangeEvent represents a withdrawal request state transition
type WithdrawalChangeEvent struct {
	RequestID int64
	UserID    int64
	Amount    int64
	OldStatus models.WithdrawalStatus
	NewStatus models.WithdrawalStatus
}

func (e WithdrawalChangeEvent) Type() EventType {
	return EventTypeWithdrawalChange
}

// WalletBlockedEvent represents a wallet being blocked or unblocked
type WalletBlockedEvent struct {
	UserID  int64
	Blocked bool
}

func (e WalletBlockedEvent) Type() EventType {
	return EventTypeWalletBlocked
}

// Handler is a function that processes an event
type Handler func(ctx context.Context, event Event)

// Bus is an in-process event bus with asynchronous delivery
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stashes events published during a unit of work and only
// forwards them to the real bus once the enclosing database transaction has
// committed. Discarded on rollback.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events. Called after a successful DB commit.
func (b *TransactionalBus) Flush() {
	// Events are processed independently of the transaction lifecycle, so a
	// background context avoids issues with request context expiration.
	eventCtx := context.Background()

	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events to main event bus")

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events. Called after a DB rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
