package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsLens/internal/cluster"
	"NewsLens/internal/config"
	"NewsLens/internal/feed"
	"NewsLens/internal/infrastructure/api"
	"NewsLens/internal/infrastructure/fetch"
	"NewsLens/internal/infrastructure/registry"
	"NewsLens/internal/infrastructure/scheduler"
	"NewsLens/internal/infrastructure/storage"
	"NewsLens/internal/logging"
	"NewsLens/internal/ports"
	"NewsLens/internal/scoring"
	"NewsLens/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	scheduler *usecase.Scheduler
	server    *api.Server
}

// New builds a runnable application instance. An empty database DSN
// selects the in-memory store; an empty Redis address disables the
// feed cache.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	sourceRegistry := registry.NewConfigRegistry(cfg.Sources)

	transports := fetch.NewTransportRegistry()
	transports.Register(fetch.NewRSSTransport(nil))
	transports.Register(fetch.NewAPITransport(nil))

	fetcher := fetch.NewSourceFetcher(transports, fetch.NewNormalizer(), fetch.Options{
		Concurrency: cfg.Fetch.Concurrency,
		Timeout:     cfg.Fetch.Timeout(),
		Retries:     cfg.Fetch.Retries,
		RetryBase:   cfg.Fetch.RetryBase(),
	}, baseLogger.With("component", "fetcher"))

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	var cache ports.FeedCache
	if cfg.Redis.Addr != "" {
		cache = storage.NewRedisCache(
			cfg.Redis.Addr,
			time.Duration(cfg.Redis.CacheTTLSec)*time.Second,
			baseLogger.With("component", "cache"),
		)
	}

	clusterer := cluster.NewEngine(cluster.Options{
		SimilarityThreshold: cfg.Clustering.SimilarityThreshold,
		Window:              cfg.Clustering.Window(),
		Staleness:           cfg.Clustering.Staleness(),
	}, baseLogger.With("component", "cluster"))

	scorer := scoring.NewEngine(scoring.Config{
		CredibilityWeight:  cfg.Scoring.CredibilityWeight,
		FactualWeight:      cfg.Scoring.FactualWeight,
		TransparencyWeight: cfg.Scoring.TransparencyWeight,
		EditorialWeight:    cfg.Scoring.EditorialWeight,
		MixedDisagreement:  cfg.Scoring.MixedDisagreement,
	}, baseLogger.With("component", "scoring"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Registry:  sourceRegistry,
		Fetcher:   fetcher,
		Store:     store,
		Clusterer: clusterer,
		Scorer:    scorer,
		Logger:    baseLogger.With("component", "pipeline"),
	})

	assembler := feed.NewAssembler(store, cache, feed.Options{
		TrendingWindow: cfg.Feed.TrendingWindow(),
		DefaultLimit:   cfg.Feed.DefaultLimit,
	}, nil)

	admin := usecase.NewAdmin(store, baseLogger.With("component", "admin"), nil)

	cron := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		scheduler: usecase.NewScheduler(cron, pipeline),
		server:    api.NewServer(store, assembler, admin, baseLogger.With("component", "api")),
	}, nil
}

func buildStore(cfg config.Config) (ports.Store, error) {
	if cfg.Database.DSN == "" {
		return storage.NewMemoryStore(), nil
	}
	store, err := storage.NewPostgresStore(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres store: %w", err)
	}
	return store, nil
}

// Run starts the scheduler and the HTTP server, blocking until the
// context is cancelled, then drains both.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		addr := ":" + a.cfg.Server.Port
		a.logger.Info("http server listening", "addr", addr)
		serverErr <- a.server.Run(addr)
	}()

	select {
	case err := <-serverErr:
		_ = a.stop(context.Background())
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.stop(shutdownCtx)
}

func (a *Application) stop(ctx context.Context) error {
	if err := a.scheduler.Stop(ctx); err != nil {
		a.logger.Warn("scheduler stop failed", "error", err)
	}
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	a.logger.Info("application stopped")
	return nil
}
