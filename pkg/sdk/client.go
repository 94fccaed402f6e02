package docsearch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/backend"
	"github.com/kailas-cloud/docsearch/internal/domain"
	dombatch "github.com/kailas-cloud/docsearch/internal/domain/batch"
	domrl "github.com/kailas-cloud/docsearch/internal/domain/ratelimit"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	ratelimitrepo "github.com/kailas-cloud/docsearch/internal/repository/ratelimit"
	batchuc "github.com/kailas-cloud/docsearch/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	ratelimituc "github.com/kailas-cloud/docsearch/internal/usecase/ratelimit"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped in tests.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) (result.Page, error)
}

type importUseCase interface {
	Import(ctx context.Context, collection string, docs []domain.Document) []dombatch.Result
}

type admitUseCase interface {
	Admit(ctx context.Context, key string) (domrl.Decision, error)
}

// Client is the docsearch SDK entry point.
type Client struct {
	backend    *backend.Backend
	collection string
	limits     request.Limits
	searchSvc  searchUseCase
	importSvc  importUseCase
	admitSvc   admitUseCase
	healthSvc  *healthuc.Service
	obs        *observer
}

// New opens the configured store and wires the engine.
// The provided context is used for connecting and the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	limits := request.DefaultLimits()
	cfg := &clientConfig{
		collection:    "documents",
		typoTolerance: 4,
		defaultLimit:  limits.Default,
		maxLimit:      limits.Max,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.rateLimitRedis && cfg.store.Driver != backend.DriverRedis && cfg.store.Driver != backend.DriverValkey {
		return nil, errors.New("docsearch: shared rate limiting requires WithRedis or WithValkey")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	storeOpts := cfg.store
	storeOpts.Collection = cfg.collection
	storeOpts.ReadinessTimeout = defaultReadinessTimeout
	if len(storeOpts.IndexedFields) == 0 {
		storeOpts.IndexedFields = slices.Clone(cfg.searchableFields)
	}
	be, err := backend.Open(ctx, storeOpts)
	if err != nil {
		return nil, fmt.Errorf("docsearch: open store: %w", err)
	}

	if len(cfg.seed) > 0 {
		if err := be.Repo.Put(ctx, cfg.collection, toDomain(cfg.seed)...); err != nil {
			be.Close()
			return nil, fmt.Errorf("docsearch: seed store: %w", err)
		}
	}

	return wireClient(be, cfg, obs), nil
}

func wireClient(be *backend.Backend, cfg *clientConfig, obs *observer) *Client {
	searchSvc := searchuc.New(be.Repo, searchuc.Config{
		Collection:       cfg.collection,
		SearchableFields: cfg.searchableFields,
		ReturnFields:     cfg.returnFields,
		FuzzyEnabled:     cfg.fuzzy,
		TypoTolerance:    cfg.typoTolerance,
	})

	var limiter ratelimituc.Limiter
	if cfg.rateLimitRedis {
		limiter = ratelimitrepo.New(be.Redis, cfg.store.KeyPrefix, cfg.rateLimit, cfg.rateLimitWindow)
	} else {
		limiter = ratelimituc.NewSlidingWindow(cfg.rateLimit, cfg.rateLimitWindow)
	}

	return &Client{
		backend:    be,
		collection: cfg.collection,
		limits:     request.Limits{Default: cfg.defaultLimit, Max: cfg.maxLimit},
		searchSvc:  searchSvc,
		importSvc:  batchuc.New(be.Repo),
		admitSvc:   ratelimituc.NewGuard(limiter, zap.NewNop()),
		healthSvc:  newHealth(be, cfg.rateLimitRedis),
		obs:        obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.backend != nil {
		c.backend.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.done("ping", start, err) }()

	if err = c.backend.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search runs one search against the configured collection.
func (c *Client) Search(ctx context.Context, in SearchRequest) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.searched(start, res, err) }()

	req, err := request.New(in.SearchValue, in.Limit, in.CaseSensitive, in.SortBy, in.Direction, c.limits)
	if err != nil {
		return SearchResult{}, err
	}
	page, err := c.searchSvc.Search(ctx, &req)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{
		Matches:      page.Matches(),
		TotalResults: page.Total(),
		Strategy:     string(page.Strategy()),
		UsedFallback: page.UsedFallback(),
	}, nil
}

// Admit applies the rate limit to key. A full window returns the decision and an error
// matching ErrRateLimited. Limiter failures admit the call.
func (c *Client) Admit(ctx context.Context, key string) (Decision, error) {
	start := time.Now()
	d, err := c.admitSvc.Admit(ctx, key)
	out := Decision{
		Allowed:   d.Allowed,
		Limit:     d.Limit,
		Remaining: d.Remaining,
		ResetAt:   d.ResetAt,
	}
	c.obs.admitted(start, key, out, err)
	return out, err
}

// Import writes documents into the collection, maintaining range indexes.
// The returned slice has one entry per input document, in order.
func (c *Client) Import(ctx context.Context, docs []Document) []ImportResult {
	start := time.Now()
	results := c.importSvc.Import(ctx, c.collection, toDomain(docs))

	out := make([]ImportResult, len(results))
	var failed error
	for i, r := range results {
		out[i] = ImportResult{ID: r.ID(), Err: r.Err()}
		if failed == nil && r.Err() != nil {
			failed = r.Err()
		}
	}
	c.obs.done("import", start, failed, "documents", len(docs))
	return out
}

func toDomain(docs []Document) []domain.Document {
	out := make([]domain.Document, len(docs))
	for i, d := range docs {
		out[i] = domain.NewDocument(d.ID, d.Fields)
	}
	return out
}
