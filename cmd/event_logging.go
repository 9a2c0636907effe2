package cmd

import (
	"context"

	"bankroll/events"
	log "github.com/sirupsen/logrus"
)

// subscribeAuditLogging attaches structured-log observers for every ledger
// event. Notification fan-out (push, webhooks) subscribes the same way.
func subscribeAuditLogging(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.BalanceChangeEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"userID":          e.UserID,
			"oldBalance":      e.OldBalance,
			"newBalance":      e.NewBalance,
			"transactionType": e.TransactionType,
			"changeAmount":    e.ChangeAmount,
		}).Info("Balance changed")
	})

	bus.Subscribe(events.EventTypeCreditsChange, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.CreditsChangeEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"userID":    e.UserID,
			"oldAmount": e.OldAmount,
			"newAmount": e.NewAmount,
			"reason":    e.Reason,
		}).Info("Credits changed")
	})

	bus.Subscribe(events.EventTypeWithdrawalChange, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.WithdrawalChangeEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"requestID": e.RequestID,
			"userID":    e.UserID,
			"amount":    e.Amount,
			"oldStatus": e.OldStatus,
			"newStatus": e.NewStatus,
		}).Info("Withdrawal request transitioned")
	})

	bus.Subscribe(events.EventTypeWalletBlocked, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.WalletBlockedEvent)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"userID":  e.UserID,
			"blocked": e.Blocked,
		}).Warn("Wallet block state changed")
	})
}
