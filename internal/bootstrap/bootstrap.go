package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kevinotieno/bizfinder/internal/config"
	"github.com/kevinotieno/bizfinder/internal/core/domain"
	"github.com/kevinotieno/bizfinder/internal/core/ports"
	"github.com/kevinotieno/bizfinder/internal/core/usecase"
	"github.com/kevinotieno/bizfinder/internal/infrastructure/cache/memory"
	"github.com/kevinotieno/bizfinder/internal/infrastructure/queue/nats"
	"github.com/kevinotieno/bizfinder/internal/infrastructure/repository/postgres"
	"github.com/kevinotieno/bizfinder/internal/infrastructure/resilience"
	"github.com/kevinotieno/bizfinder/internal/infrastructure/scoring"
	"github.com/kevinotieno/bizfinder/internal/infrastructure/search/duckduckgo"
)

type App struct {
	Config config.Config

	Queue     ports.JobQueue
	Repo      ports.JobRepository
	LookupUC  ports.WebsiteResolver
	JobsUC    ports.JobService
	ProcessUC ports.JobProcessor

	closeFn func()
}

// Options carries process-specific hooks that the shared wiring cannot know
// about, such as where cache hit/miss observations should land.
type Options struct {
	CacheEvents func(hit bool)
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	return NewWithOptions(ctx, cfg, Options{})
}

func NewWithOptions(ctx context.Context, cfg config.Config, options Options) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewJobRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init job queue: %w", err)
	}

	heuristics, err := scoring.LoadFile(cfg.HeuristicsPath)
	if err != nil {
		return nil, fmt.Errorf("load scoring heuristics: %w", err)
	}
	scorer := scoring.NewScorer(heuristics)

	search := duckduckgo.New(duckduckgo.Options{
		BaseURL:            cfg.SearchBaseURL,
		UserAgent:          cfg.SearchUserAgent,
		RequestTimeout:     time.Duration(cfg.SearchTimeoutSeconds) * time.Second,
		RateLimitRPS:       cfg.SearchRateLimitRPS,
		ResilienceExecutor: executor,
	})

	var cache ports.LookupCache = memory.New(time.Duration(cfg.LookupCacheTTLMins) * time.Minute)
	if options.CacheEvents != nil {
		cache = &observedCache{inner: cache, onEvent: options.CacheEvents}
	}

	// The YAML-tunable thresholds drive the lookup strategy, not just the
	// per-candidate scoring.
	lookupUC := usecase.NewLookupWebsiteUseCase(search, scorer, cache, usecase.LookupOptions{
		SiteRestrict:   cfg.LookupSiteRestrict,
		DiscardBelow:   scorer.Heuristics().DiscardBelow,
		EarlyStopScore: scorer.Heuristics().EarlyStopScore,
	})
	enrichUC := usecase.NewEnrichBusinessesUseCase(lookupUC, usecase.EnrichOptions{
		BatchSize:       cfg.EnrichBatchSize,
		InterBatchDelay: time.Duration(cfg.EnrichBatchDelaySecs) * time.Second,
		DefaultLocation: cfg.EnrichDefaultLocation,
	})
	jobsUC := usecase.NewJobUseCase(repo, queue)
	processUC := usecase.NewProcessJobUseCase(repo, enrichUC)

	return &App{
		Config: cfg,

		Queue:     queue,
		Repo:      repo,
		LookupUC:  lookupUC,
		JobsUC:    jobsUC,
		ProcessUC: processUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

type observedCache struct {
	inner   ports.LookupCache
	onEvent func(hit bool)
}

func (c *observedCache) Get(key string) (domain.LookupResult, bool) {
	result, ok := c.inner.Get(key)
	c.onEvent(ok)
	return result, ok
}

func (c *observedCache) Set(key string, result domain.LookupResult) {
	c.inner.Set(key, result)
}
