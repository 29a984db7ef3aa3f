// Package app wires configuration into sources, cache and services. It is
// shared by the server and the backfill command.
package app

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/api/websocket"
	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/config"
	"github.com/fortuna/gridiron/internal/fetch"
	"github.com/fortuna/gridiron/internal/ingest/espn"
	"github.com/fortuna/gridiron/internal/ingest/pfr"
	"github.com/fortuna/gridiron/internal/publisher"
	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/retry"
	"github.com/fortuna/gridiron/internal/scheduler"
	"github.com/fortuna/gridiron/internal/service"
	"github.com/fortuna/gridiron/internal/store"
)

// DefaultParlayLegs caps the legs of a suggested parlay.
const DefaultParlayLegs = 3

// App holds every long-lived component.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Games   *service.GameService
	Teams   *service.TeamService
	Parlays *service.ParlayService
	Hub     *websocket.Hub

	// Purger is set for the postgres backend only.
	Purger scheduler.Purger

	reconciler *reconciliation.Reconciler
	health     func(ctx context.Context) error
	closers    []func() error
}

// New builds the application for cfg. Close must be called on success.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	backend, notifiers, err := a.cacheBackend(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	reconciler := reconciliation.NewReconciler(logger)
	a.reconciler = reconciler
	jsonFetcher := fetch.NewHTTPFetcher(fetch.HTTPOptions{
		Timeout: cfg.FetchTimeout,
		Logger:  logger,
	})
	espnClient := espn.NewClient(jsonFetcher, cfg.ESPNAPIBase, espn.NewParser(reconciler, logger), logger)
	pfrClient := pfr.NewClient(a.htmlFetcher(), cfg.PFRBaseURL, pfr.NewParser(reconciler, logger), logger)

	a.Hub = websocket.NewHub(logger)
	notifiers = append(service.Notifiers{a.Hub}, notifiers...)

	opts := service.Options{
		CacheTTL:          cfg.CacheTTL,
		FanoutConcurrency: cfg.FanoutConcurrency,
		Retry:             retry.NewPolicy(cfg.RetryMaxAttempts, cfg.RetryBaseDelay, fetch.IsRetryable),
		Logger:            logger,
	}
	c := cache.New(backend, logger)

	a.Games = service.NewGameService(espnClient, pfrClient, c, notifiers, opts)
	a.Teams = service.NewTeamService(espnClient, pfrClient, c, opts)
	a.Parlays = service.NewParlayService(a.Games, service.RankSuggester{MaxLegs: DefaultParlayLegs}, logger)

	logger.Info("application wired",
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("pfr_fetch_mode", cfg.PFRFetchMode),
		zap.Duration("cache_ttl", cfg.CacheTTL))
	return a, nil
}

func (a *App) htmlFetcher() fetch.Fetcher {
	cfg := a.Config
	if cfg.PFRFetchMode == config.FetchModeBrowser {
		b := fetch.NewBrowserFetcher(fetch.BrowserOptions{
			Timeout:           cfg.FetchTimeout,
			RequestsPerMinute: cfg.PFRRequestsPerMinute,
			Logger:            a.Logger,
		})
		a.closers = append(a.closers, func() error {
			b.Close()
			return nil
		})
		return b
	}
	return fetch.NewHTTPFetcher(fetch.HTTPOptions{
		Timeout:           cfg.FetchTimeout,
		RequestsPerMinute: cfg.PFRRequestsPerMinute,
		Logger:            a.Logger,
	})
}

// cacheBackend opens the configured store. Redis also carries the slate
// stream publisher.
func (a *App) cacheBackend(ctx context.Context) (cache.Store, service.Notifiers, error) {
	cfg := a.Config
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		rs, err := cache.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect redis")
		}
		a.closers = append(a.closers, rs.Close)
		a.health = rs.HealthCheck
		a.Logger.Info("connected to redis")
		return rs, service.Notifiers{publisher.NewRedisStreamPublisher(rs.Client())}, nil

	case config.CacheBackendPostgres:
		db, err := store.NewDatabase(cfg.DatabaseURL, a.Logger)
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect postgres")
		}
		a.closers = append(a.closers, db.Close)
		if err := db.RunMigrations(ctx); err != nil {
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		a.health = db.HealthCheck
		ps := cache.NewPostgresStore(db.DB())
		a.Purger = ps
		return ps, nil, nil

	default:
		return cache.NewMemoryStore(), nil, nil
	}
}

// HealthCheck pings the cache backend. The memory backend is always healthy.
func (a *App) HealthCheck(ctx context.Context) error {
	if a.health == nil {
		return nil
	}
	return a.health(ctx)
}

// Telemetry reports pipeline counters: team names that fell back to a
// synthetic code, cross-source reconciliation totals and connected
// websocket clients.
func (a *App) Telemetry() map[string]any {
	return map[string]any{
		"unresolvedTeams":  a.reconciler.Unresolved(),
		"reconciliation":   a.Games.EngineMetrics(),
		"websocketClients": a.Hub.ClientCount(),
	}
}

// Close releases backends in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}
