package ratelimit

import (
	"context"
	"sync"
	"time"

	domrl "github.com/kailas-cloud/docsearch/internal/domain/ratelimit"
)

// DefaultSweepEvery is how many admissions pass between stale-window sweeps.
const DefaultSweepEvery = 100

// SlidingWindow is an in-process sliding-window limiter.
// One mutex guards the whole key map; windows hold a handful of instants each.
type SlidingWindow struct {
	mu         sync.Mutex
	limit      int
	window     time.Duration
	sweepEvery int
	calls      int
	windows    map[string][]time.Time
	now        func() time.Time
}

// Option configures a SlidingWindow.
type Option func(*SlidingWindow)

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(s *SlidingWindow) { s.now = now }
}

// WithSweepEvery sets the number of admissions between sweeps of stale windows.
func WithSweepEvery(n int) Option {
	return func(s *SlidingWindow) {
		if n > 0 {
			s.sweepEvery = n
		}
	}
}

// NewSlidingWindow creates a limiter admitting limit requests per window and key.
// A limit of 0 disables limiting.
func NewSlidingWindow(limit int, window time.Duration, opts ...Option) *SlidingWindow {
	s := &SlidingWindow{
		limit:      limit,
		window:     window,
		sweepEvery: DefaultSweepEvery,
		windows:    make(map[string][]time.Time),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Admit evicts instants older than the window, then records and admits the request
// if the window has room. Rejected requests are not recorded.
func (s *SlidingWindow) Admit(_ context.Context, key string) (domrl.Decision, error) {
	if s.limit <= 0 {
		return domrl.Unlimited(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-s.window)

	s.calls++
	if s.calls%s.sweepEvery == 0 {
		s.sweep(cutoff)
	}

	entries := evict(s.windows[key], cutoff)
	allowed := len(entries) < s.limit
	if allowed {
		entries = append(entries, now)
	}
	if len(entries) == 0 {
		delete(s.windows, key)
	} else {
		s.windows[key] = entries
	}

	d := domrl.Decision{
		Allowed:   allowed,
		Limit:     s.limit,
		Remaining: s.limit - len(entries),
	}
	if len(entries) > 0 {
		d.ResetAt = entries[0].Add(s.window)
	}
	return d, nil
}

// Keys returns the number of tracked windows.
func (s *SlidingWindow) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// sweep drops windows whose newest entry is stale. Windows with a live entry are kept.
func (s *SlidingWindow) sweep(cutoff time.Time) {
	for key, entries := range s.windows {
		if len(entries) == 0 || entries[len(entries)-1].Before(cutoff) {
			delete(s.windows, key)
		}
	}
}

// evict drops entries before cutoff. Entries are in insertion (chronological) order.
func evict(entries []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(entries) && entries[i].Before(cutoff) {
		i++
	}
	if i == 0 {
		return entries
	}
	return append(entries[:0], entries[i:]...)
}
