package models

import (
	"time"
)

// AdminAction identifies what an administrator did
type AdminAction string

const (
	AdminActionAdjustBalance      AdminAction = "adjust_balance"
	AdminActionAdjustCredits      AdminAction = "adjust_credits"
	AdminActionSetBlocked         AdminAction = "set_blocked"
	AdminActionSetUnlimited       AdminAction = "set_unlimited"
	AdminActionApproveWithdrawal  AdminAction = "approve_withdrawal"
	AdminActionRejectWithdrawal   AdminAction = "reject_withdrawal"
	AdminActionUpdateSettings     AdminAction = "update_settings"
)

// AdminTargetType identifies the kind of entity an admin action touched
type AdminTargetType string

const (
	AdminTargetWallet     AdminTargetType = "wallet"
	AdminTargetCredits    AdminTargetType = "credits"
	AdminTargetWithdrawal AdminTargetType = "withdrawal_request"
	AdminTargetSettings   AdminTargetType = "platform_settings"
)

// AdminLogEntry is one immutable record of an administrative mutation.
// Every administrative balance or credit adjustment writes exactly one entry
// in the same transaction as the mutation itself.
type AdminLogEntry struct {
	ID         int64           `db:"id"`
	AdminID    int64           `db:"admin_id"`
	Action     AdminAction     `db:"action"`
	TargetType AdminTargetType `db:"target_type"`
	TargetID   int64           `db:"target_id"`
	Details    map[string]any  `db:"details"`
	CreatedAt  time.Time       `db:"created_at"`
}
