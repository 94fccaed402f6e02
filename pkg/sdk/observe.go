package docsearch

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Call outcomes recorded in docsearch_sdk_calls_total.
const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeRejected = "rejected"
)

type clientMetrics struct {
	calls    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	strategy *prometheus.CounterVec
	matches  prometheus.Histogram
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsearch",
			Subsystem: "sdk",
			Name:      "calls_total",
			Help:      "SDK calls by method and outcome (ok, error, rejected).",
		}, []string{"call", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docsearch",
			Subsystem: "sdk",
			Name:      "call_duration_seconds",
			Help:      "SDK call latency in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"call"}),
		strategy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsearch",
			Subsystem: "sdk",
			Name:      "search_strategy_total",
			Help:      "Successful SDK searches by scan strategy and whether the fallback scan ran.",
		}, []string{"strategy", "fallback"}),
		matches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docsearch",
			Subsystem: "sdk",
			Name:      "search_matches",
			Help:      "Matches returned per SDK search.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		}),
	}
	if err := registerOrReuse(reg, &m.calls); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.latency); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.strategy); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.matches); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or points c at an identical collector already in reg
// so several clients can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("docsearch: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("docsearch: metric already registered as %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer records SDK calls. Both the logger and the metrics are optional.
type observer struct {
	logger  *slog.Logger
	metrics *clientMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newClientMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// searched records a Search call with its strategy and match count.
func (o *observer) searched(start time.Time, res SearchResult, err error) {
	if err == nil && o.metrics != nil {
		o.metrics.strategy.WithLabelValues(res.Strategy, strconv.FormatBool(res.UsedFallback)).Inc()
		o.metrics.matches.Observe(float64(res.TotalResults))
	}
	o.done("search", start, err,
		"strategy", res.Strategy, "fallback", res.UsedFallback, "results", res.TotalResults)
}

// admitted records an Admit call. A full window counts as rejected, not as a failure.
func (o *observer) admitted(start time.Time, key string, d Decision, err error) {
	if errors.Is(err, ErrRateLimited) {
		o.record("admit", outcomeRejected, time.Since(start))
		if o.logger != nil {
			o.logger.Info("docsearch rate limited", "key", key, "limit", d.Limit, "reset_at", d.ResetAt)
		}
		return
	}
	o.done("admit", start, err, "key", key, "remaining", d.Remaining)
}

// done records any other call.
func (o *observer) done(call string, start time.Time, err error, attrs ...any) {
	dur := time.Since(start)
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	o.record(call, outcome, dur)

	if o.logger == nil {
		return
	}
	args := append([]any{"call", call, "duration", dur}, attrs...)
	if err != nil {
		o.logger.Warn("docsearch call failed", append(args, "error", err)...)
		return
	}
	o.logger.Debug("docsearch call", args...)
}

func (o *observer) record(call, outcome string, dur time.Duration) {
	if o.metrics == nil {
		return
	}
	o.metrics.calls.WithLabelValues(call, outcome).Inc()
	o.metrics.latency.WithLabelValues(call).Observe(dur.Seconds())
}
