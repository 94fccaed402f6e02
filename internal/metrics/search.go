package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "search_requests_total",
			Help:      "Total number of search executions",
		},
		[]string{"strategy", "fallback", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsearch",
			Name:      "search_duration_seconds",
			Help:      "Search execution duration in seconds, store calls included",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"strategy"},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docsearch",
			Name:      "search_results",
			Help:      "Number of matches returned per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	SearchScannedDocuments = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docsearch",
			Name:      "search_scanned_documents",
			Help:      "Number of candidate documents examined per search",
			Buckets:   []float64{0, 10, 50, 100, 250, 500, 600},
		},
	)

	OptimizedScanFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "optimized_scan_failures_total",
			Help:      "Prefix range scans that failed and were downgraded to bounded scans",
		},
	)

	RateLimitDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "rate_limit_decisions_total",
			Help:      "Rate limiter decisions",
		},
		[]string{"result"}, // "allowed" / "rejected" / "error"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(SearchScannedDocuments)
	prometheus.MustRegister(OptimizedScanFailuresTotal)
	prometheus.MustRegister(RateLimitDecisionsTotal)
	searchMetricsRegistered = true
}
