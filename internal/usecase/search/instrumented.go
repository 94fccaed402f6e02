package search

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// Searcher executes a validated search.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (result.Page, error)
}

// InstrumentedSearcher wraps a Searcher with metrics and debug logging.
type InstrumentedSearcher struct {
	inner Searcher
}

// NewInstrumented wraps a searcher with observability.
func NewInstrumented(inner Searcher) *InstrumentedSearcher {
	return &InstrumentedSearcher{inner: inner}
}

// Search delegates to the inner searcher and records the outcome.
func (s *InstrumentedSearcher) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	start := time.Now()
	page, err := s.inner.Search(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("none", "false", errorStatus(err)).Inc()
		logger.FromContext(ctx).Debug("Search failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return page, err
	}

	strategy := string(page.Strategy())
	metrics.SearchRequestsTotal.WithLabelValues(strategy, strconv.FormatBool(page.UsedFallback()), "ok").Inc()
	metrics.SearchDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	metrics.SearchResults.Observe(float64(page.Total()))
	metrics.SearchScannedDocuments.Observe(float64(page.Scanned()))

	logger.FromContext(ctx).Debug("Search completed",
		zap.String("strategy", strategy),
		zap.Bool("fallback", page.UsedFallback()),
		zap.Int("scanned", page.Scanned()),
		zap.Int("results", page.Total()),
		zap.Duration("duration", duration),
	)
	return page, nil
}

func errorStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, domain.ErrValidation):
		return "validation_error"
	case errors.Is(err, domain.ErrStore):
		return "store_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "error"
}
