package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/backend"
	"github.com/kailas-cloud/docsearch/internal/config"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	ratelimitrepo "github.com/kailas-cloud/docsearch/internal/repository/ratelimit"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	ratelimituc "github.com/kailas-cloud/docsearch/internal/usecase/ratelimit"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
)

// app is the wired engine shared by every command.
type app struct {
	cfg      config.Config
	backend  *backend.Backend
	searcher searchuc.Searcher
	limiter  ratelimituc.Limiter
	health   *healthuc.Service
	closers  []func()
}

func openApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	if len(cfg.Search.SearchableFields) == 0 {
		logger.Warn("search.searchable_fields is empty, every search will fail with a configuration error")
	}

	be, err := backend.Open(ctx, backend.Options{
		Driver:           cfg.Database.Driver,
		Addrs:            cfg.Database.Addrs,
		Password:         cfg.Database.Password,
		DSN:              cfg.Database.DSN,
		Path:             cfg.Database.Path,
		SeedPath:         cfg.Database.SeedPath,
		Collection:       cfg.Search.Collection,
		KeyPrefix:        cfg.Storage.KeyPrefix,
		IndexedFields:    cfg.Database.IndexedFields,
		ReadinessTimeout: time.Duration(cfg.Database.ReadinessTimeout) * time.Second,
		Logger:           logger,
	})
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, backend: be, closers: []func(){be.Close}}

	a.searcher = searchuc.NewInstrumented(searchuc.New(be.Repo, searchuc.Config{
		Collection:       cfg.Search.Collection,
		SearchableFields: cfg.Search.SearchableFields,
		ReturnFields:     cfg.Search.ReturnFields,
		FuzzyEnabled:     cfg.Search.FuzzyEnabled,
		TypoTolerance:    cfg.Search.TypoTolerance,
	}))

	components := []healthuc.Component{{Name: "store", Pinger: be.Repo}}
	rl := cfg.RateLimit
	switch {
	case rl.Backend == config.RateLimitRedis:
		store := be.Redis
		if store == nil {
			store, err = backend.OpenRedis(ctx, cfg.Database.Addrs, cfg.Database.Password,
				time.Duration(cfg.Database.ReadinessTimeout)*time.Second)
			if err != nil {
				a.close()
				return nil, err
			}
			a.closers = append(a.closers, store.Close)
			components = append(components, healthuc.Component{Name: "rate_limit", Pinger: store})
		}
		a.limiter = ratelimitrepo.New(store, cfg.Storage.KeyPrefix, rl.Limit, rl.Window())
	default:
		a.limiter = ratelimituc.NewSlidingWindow(rl.Limit, rl.Window(), ratelimituc.WithSweepEvery(rl.SweepEvery))
	}
	a.health = healthuc.New(components...)
	return a, nil
}

func (a *app) limits() request.Limits {
	return request.Limits{Default: a.cfg.Search.DefaultLimit, Max: a.cfg.Search.MaxLimit}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
