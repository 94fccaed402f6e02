// Package backend opens the configured document store and the shared Redis connection.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/scan"
	dbredis "github.com/kailas-cloud/docsearch/internal/db/redis"
	documentrepo "github.com/kailas-cloud/docsearch/internal/repository/document"
	"github.com/kailas-cloud/docsearch/internal/repository/memory"
	"github.com/kailas-cloud/docsearch/internal/repository/postgres"
	"github.com/kailas-cloud/docsearch/internal/repository/sqlite"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverValkey   = "valkey"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const defaultReadinessTimeout = 10 * time.Second

// Repo is what every document store offers: scans for the planner, writes for import, and a health probe.
type Repo interface {
	Scan(ctx context.Context, collection string, q scan.Query) ([]domain.Document, error)
	RangeScan(ctx context.Context, collection string, q scan.Range) ([]domain.Document, error)
	Put(ctx context.Context, collection string, docs ...domain.Document) error
	Ping(ctx context.Context) error
}

// Options selects and configures a store.
type Options struct {
	Driver   string
	Addrs    []string
	Password string
	DSN      string
	Path     string
	// SeedPath is loaded into the memory store. A missing file is logged and ignored.
	SeedPath         string
	Collection       string
	KeyPrefix        string
	IndexedFields    []string
	ReadinessTimeout time.Duration
	Logger           *zap.Logger
}

// Backend is an opened document store.
type Backend struct {
	Repo Repo
	// Redis is set for the redis and valkey drivers so the rate limiter can share the connection.
	Redis   *dbredis.Store
	closers []func()
}

// Open connects to the store named by opts.Driver.
func Open(ctx context.Context, opts Options) (*Backend, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	switch opts.Driver {
	case "", DriverMemory:
		repo := memory.New()
		if opts.SeedPath != "" {
			n, err := repo.LoadFile(opts.Collection, opts.SeedPath)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				log.Warn("Seed file not found, starting empty", zap.String("path", opts.SeedPath))
			case err != nil:
				return nil, err
			default:
				log.Info("Seeded memory store", zap.String("path", opts.SeedPath), zap.Int("documents", n))
			}
		}
		return &Backend{Repo: repo}, nil

	case DriverRedis, DriverValkey:
		store, err := OpenRedis(ctx, opts.Addrs, opts.Password, opts.ReadinessTimeout)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Repo:    documentrepo.New(store, opts.KeyPrefix, opts.IndexedFields),
			Redis:   store,
			closers: []func(){store.Close},
		}, nil

	case DriverPostgres:
		repo, err := postgres.Open(ctx, opts.DSN)
		if err != nil {
			return nil, err
		}
		return &Backend{Repo: repo, closers: []func(){repo.Close}}, nil

	case DriverSQLite:
		repo, err := sqlite.Open(ctx, opts.Path)
		if err != nil {
			return nil, err
		}
		return &Backend{Repo: repo, closers: []func(){func() { _ = repo.Close() }}}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", opts.Driver)
}

// OpenRedis connects to Redis or Valkey and waits until it answers.
func OpenRedis(ctx context.Context, addrs []string, password string, timeout time.Duration) (*dbredis.Store, error) {
	store, err := dbredis.NewStore(dbredis.Config{Addrs: addrs, Password: password})
	if err != nil {
		return nil, fmt.Errorf("create redis store: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultReadinessTimeout
	}
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("redis not ready: %w", err)
	}
	return store, nil
}

// Close releases every connection the backend holds.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}
