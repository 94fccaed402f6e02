package ratelimit

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domrl "github.com/kailas-cloud/docsearch/internal/domain/ratelimit"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// Guard turns limiter decisions into request outcomes.
// Limiter failures fail open: the request is admitted and the failure logged.
type Guard struct {
	limiter Limiter
	logger  *zap.Logger
}

// NewGuard wraps a limiter.
func NewGuard(limiter Limiter, logger *zap.Logger) *Guard {
	return &Guard{limiter: limiter, logger: logger}
}

// Admit returns the decision for key and a RateLimitError when the window is full.
// The decision is returned in both cases so callers can surface its counters.
func (g *Guard) Admit(ctx context.Context, key string) (domrl.Decision, error) {
	d, err := g.limiter.Admit(ctx, key)
	if err != nil {
		metrics.RateLimitDecisionsTotal.WithLabelValues("error").Inc()
		g.logger.Warn("Rate limiter unavailable, admitting request",
			zap.String("key", key),
			zap.Error(err),
		)
		return domrl.Unlimited(), nil
	}
	if !d.Allowed {
		metrics.RateLimitDecisionsTotal.WithLabelValues("rejected").Inc()
		return d, domain.NewRateLimited(d.Limit, d.ResetAt)
	}
	if !d.Bypassed() {
		metrics.RateLimitDecisionsTotal.WithLabelValues("allowed").Inc()
	}
	return d, nil
}
