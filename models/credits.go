package models

import (
	"time"
)

// Credits tracks a user's consumable play-tokens. One credit starts one match.
// IsUnlimited is the VIP override: the amount is never decremented and the
// purchase/usage money paths are bypassed entirely.
type Credits struct {
	UserID             int64      `db:"user_id"`
	Amount             int64      `db:"amount"`
	IsUnlimited        bool       `db:"is_unlimited"`
	LastFreeCreditDate *time.Time `db:"last_free_credit"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// ClaimedFreeCreditOn reports whether the daily free credit was already
// claimed on the calendar day containing t, in t's location.
func (c *Credits) ClaimedFreeCreditOn(t time.Time) bool {
	if c.LastFreeCreditDate == nil {
		return false
	}
	ly, lm, ld := c.LastFreeCreditDate.In(t.Location()).Date()
	ty, tm, td := t.Date()
	return ly == ty && lm == tm && ld == td
}

// FreeCreditGrant is the outcome of a daily free credit claim
type FreeCreditGrant struct {
	Granted bool
	Reason  string
	Credits *Credits
}
