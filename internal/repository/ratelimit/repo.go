// Package ratelimit keeps sliding-window request counters in Redis so every replica shares them.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	domrl "github.com/kailas-cloud/docsearch/internal/domain/ratelimit"
)

// store is the subset of db.Store the limiter needs.
type store interface {
	SlidingWindow(ctx context.Context, key string, q db.WindowQuery) (db.WindowResult, error)
}

// Repo is a distributed sliding-window limiter.
type Repo struct {
	store  store
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
	member func() string
}

// New creates a Redis-backed limiter admitting limit requests per window for each key.
func New(s store, prefix string, limit int, window time.Duration) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{
		store:  s,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
		member: func() string { return uuid.NewString() },
	}
}

// Admit records the request when the shared window for key has room.
func (r *Repo) Admit(ctx context.Context, key string) (domrl.Decision, error) {
	if r.limit <= 0 {
		return domrl.Unlimited(), nil
	}

	res, err := r.store.SlidingWindow(ctx, r.key(key), db.WindowQuery{
		Now:    r.now(),
		Window: r.window,
		Limit:  r.limit,
		Member: r.member(),
	})
	if err != nil {
		return domrl.Decision{}, fmt.Errorf("sliding window %s: %w", key, err)
	}

	d := domrl.Decision{
		Allowed:   res.Allowed,
		Limit:     r.limit,
		Remaining: max(r.limit-res.Count, 0),
	}
	if !res.Oldest.IsZero() {
		d.ResetAt = res.Oldest.Add(r.window)
	}
	return d, nil
}

func (r *Repo) key(k string) string {
	return r.prefix + "ratelimit:" + k
}
