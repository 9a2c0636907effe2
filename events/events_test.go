package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"bankroll/models"

	"github.com/stretchr/testify/assert"
)

func TestTransactionalBus_FlushDeliversToMainBus(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BalanceChangeEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			select {
			case eventReceived <- balanceEvent:
			case <-time.After(1 * time.Second):
				t.Error("Timeout sending event to channel")
			}
		} else {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
		}
	})

	testEvent := BalanceChangeEvent{
		UserID:          123456,
		OldBalance:      1000,
		NewBalance:      1500,
		TransactionType: models.TransactionTypeBetWin,
		ChangeAmount:    500,
	}

	// Publish stashes; nothing reaches the main bus before Flush
	transactionalBus.Publish(testEvent)

	select {
	case <-eventReceived:
		t.Fatal("Event delivered before Flush")
	case <-time.After(50 * time.Millisecond):
	}

	// Flush simulates a successful transaction commit
	transactionalBus.Flush()

	wg.Wait()

	received := <-eventReceived
	assert.Equal(t, testEvent.UserID, received.UserID)
	assert.Equal(t, testEvent.NewBalance, received.NewBalance)
	assert.Equal(t, testEvent.ChangeAmount, received.ChangeAmount)
}

func TestTransactionalBus_DiscardDropsPending(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	delivered := make(chan struct{}, 1)
	mainBus.Subscribe(EventTypeCreditsChange, func(ctx context.Context, event Event) {
		delivered <- struct{}{}
	})

	transactionalBus.Publish(CreditsChangeEvent{
		UserID:    123,
		OldAmount: 1,
		NewAmount: 0,
		Reason:    "match_start",
	})

	// Discard simulates a rollback
	transactionalBus.Discard()

	// A later Flush must deliver nothing
	transactionalBus.Flush()

	select {
	case <-delivered:
		t.Fatal("Discarded event was delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_DeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(2)

	var mu sync.Mutex
	count := 0

	handler := func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		count++
		mu.Unlock()
	}

	bus.Subscribe(EventTypeWithdrawalChange, handler)
	bus.Subscribe(EventTypeWithdrawalChange, handler)

	bus.Emit(context.Background(), WithdrawalChangeEvent{
		RequestID: 7,
		UserID:    123,
		Amount:    5000,
		OldStatus: models.WithdrawalStatusPending,
		NewStatus: models.WithdrawalStatusApproved,
	})

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, count)
}

func TestBus_HandlerPanicDoesNotAffectOthers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(1)

	bus.Subscribe(EventTypeWalletBlocked, func(ctx context.Context, event Event) {
		panic("handler failure")
	})
	bus.Subscribe(EventTypeWalletBlocked, func(ctx context.Context, event Event) {
		wg.Done()
	})

	bus.Emit(context.Background(), WalletBlockedEvent{UserID: 123, Blocked: true})

	// The healthy handler still runs
	wg.Wait()
}
