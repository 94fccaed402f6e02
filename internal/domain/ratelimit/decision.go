package ratelimit

import "time"

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt is when the oldest counted request leaves the window. Zero when nothing is counted.
	ResetAt time.Time
}

// Unlimited is the decision returned when limiting is disabled.
func Unlimited() Decision {
	return Decision{Allowed: true}
}

// Bypassed reports whether the decision came from a disabled limiter.
func (d Decision) Bypassed() bool { return d.Allowed && d.Limit == 0 }
