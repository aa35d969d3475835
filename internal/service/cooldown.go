package service

import (
	"time"
)

// DefaultCooldown is the mandatory wait after a rejection before a person
// may submit again.
const DefaultCooldown = 3 * time.Hour

// CooldownRemaining derives the wait left from the rejection timestamp and
// the current wall clock. There is no stored countdown state: callers
// re-invoke this on demand, so the absolute decidedAt timestamp stays the
// only durable fact and clock drift or restarts cannot corrupt the timer.
//
// The boundary is inclusive on the allowed side: once exactly cooldown has
// elapsed the remaining time is zero and submission is permitted.
func CooldownRemaining(decidedAt, now time.Time, cooldown time.Duration) time.Duration {
	remaining := cooldown - now.Sub(decidedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
