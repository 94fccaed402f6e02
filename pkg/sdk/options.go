package docsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/docsearch/internal/backend"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	store backend.Options
	seed  []Document

	collection       string
	searchableFields []string
	returnFields     []string
	fuzzy            bool
	typoTolerance    int
	defaultLimit     int
	maxLimit         int

	rateLimit       int
	rateLimitWindow time.Duration
	rateLimitRedis  bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithMemory uses an in-process store seeded with docs. This is the default store.
func WithMemory(docs ...Document) Option {
	return optionFunc(func(c *clientConfig) {
		c.store = backend.Options{Driver: backend.DriverMemory}
		c.seed = append(c.seed, docs...)
	})
}

// WithMemoryFile uses an in-process store seeded from a JSON array file.
func WithMemoryFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.store = backend.Options{Driver: backend.DriverMemory, SeedPath: path}
	})
}

// WithRedis stores documents in Redis.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.store = backend.Options{Driver: backend.DriverRedis, Addrs: []string{addr}, Password: password}
	})
}

// WithValkey stores documents in Valkey.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.store = backend.Options{Driver: backend.DriverValkey, Addrs: []string{addr}, Password: password}
	})
}

// WithPostgres stores documents in PostgreSQL.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.store = backend.Options{Driver: backend.DriverPostgres, DSN: dsn}
	})
}

// WithSQLite stores documents in a SQLite file.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.store = backend.Options{Driver: backend.DriverSQLite, Path: path}
	})
}

// WithKeyPrefix sets the Redis/Valkey key namespace. Default: "docsearch:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.store.KeyPrefix = prefix
	})
}

// WithIndexedFields sets the fields that get Redis/Valkey range indexes.
// Defaults to the searchable fields.
func WithIndexedFields(fields ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.store.IndexedFields = fields
	})
}

// WithCollection sets the searched collection. Default: "documents".
func WithCollection(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.collection = name
	})
}

// WithSearchableFields sets the dot-paths the query is matched against.
// Searching without any searchable field fails with ErrConfiguration.
func WithSearchableFields(fields ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchableFields = fields
	})
}

// WithReturnFields restricts matches to id plus these dot-paths.
func WithReturnFields(fields ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.returnFields = fields
	})
}

// WithFuzzy enables typo-tolerant matching. tolerance is the number of
// query characters per allowed edit; lower is more forgiving.
func WithFuzzy(tolerance int) Option {
	return optionFunc(func(c *clientConfig) {
		c.fuzzy = true
		c.typoTolerance = tolerance
	})
}

// WithLimits sets the default and maximum number of matches per search.
func WithLimits(defaultLimit, maxLimit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultLimit = defaultLimit
		c.maxLimit = maxLimit
	})
}

// WithRateLimit admits at most limit calls per key within window. 0 disables limiting (default).
func WithRateLimit(limit int, window time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.rateLimit = limit
		c.rateLimitWindow = window
	})
}

// WithSharedRateLimit keeps rate limit windows in the Redis/Valkey store so every process shares them.
// Requires WithRedis or WithValkey.
func WithSharedRateLimit() Option {
	return optionFunc(func(c *clientConfig) {
		c.rateLimitRedis = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
