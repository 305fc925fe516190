package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/founderswall/internal/adapter/httpserver"
	"github.com/pscheid92/founderswall/internal/adapter/metrics"
	"github.com/pscheid92/founderswall/internal/adapter/postgres"
	"github.com/pscheid92/founderswall/internal/adapter/redis"
	"github.com/pscheid92/founderswall/internal/app"
	"github.com/pscheid92/founderswall/internal/cache"
	"github.com/pscheid92/founderswall/internal/domain"
	"github.com/pscheid92/founderswall/internal/platform/config"
	"github.com/pscheid92/founderswall/internal/platform/logging"
	"github.com/pscheid92/founderswall/internal/platform/version"
)

const subscribeTimeout = 5 * time.Second

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config, observer postgres.QueryObserver) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.NewMetricsTracer(observer))
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config, redisMetrics *metrics.RedisMetrics) *goredis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The breaker sits outside the metrics hook so rejected calls are not timed.
	client, err := redis.NewClient(ctx, cfg.RedisURL,
		redis.NewCircuitBreakerHook(redis.DefaultBreakerSettings, redisMetrics),
		redis.NewMetricsHook(redisMetrics),
	)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

// startInvalidationSubscriber applies cache invalidations from other instances
// until ctx is cancelled.
func startInvalidationSubscriber(ctx context.Context, client *goredis.Client, svc *app.Service) {
	ready := make(chan struct{})
	sub := redis.NewInvalidationSubscriber(client, svc.InvalidateLocal)
	go sub.Start(ctx, ready)

	select {
	case <-ready:
		slog.Info("Subscribed to cache invalidations")
	case <-time.After(subscribeTimeout):
		slog.Warn("Cache invalidation subscription not confirmed, caches fall back to TTL expiry")
	}
}

func runGracefulShutdown(srv *httpserver.Server, stopBackground context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		stopBackground()
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().String())

	registry := metrics.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	dbMetrics := metrics.NewDBMetrics(registry)
	redisMetrics := metrics.NewRedisMetrics(registry)
	cacheMetrics := metrics.NewCacheMetrics(registry)
	toggleMetrics := metrics.NewToggleMetrics(registry)

	pool := setupDB(cfg, dbMetrics)
	defer pool.Close()

	redisClient := setupRedis(cfg, redisMetrics)
	defer func() { _ = redisClient.Close() }()

	boardCache := cache.New[[]domain.LaunchEntry](cfg.CacheTTL, clock).WithRecorder("board", cacheMetrics)
	statsCache := cache.New[domain.WallStats](cfg.CacheTTL, clock).WithRecorder("stats", cacheMetrics)

	appSvc := app.NewService(app.Dependencies{
		Makers:      postgres.NewMakerRepo(pool),
		Products:    postgres.NewProductRepo(pool),
		Pins:        postgres.NewPinRepo(pool),
		Launches:    postgres.NewLaunchRepo(pool),
		Stories:     postgres.NewStoryRepo(pool),
		Stats:       postgres.NewStatsRepo(pool),
		Payments:    postgres.NewPaymentRepo(pool),
		Choices:     postgres.NewChoiceStore(pool),
		BoardCache:  boardCache,
		StatsCache:  statsCache,
		Invalidator: redis.NewInvalidationPublisher(redisClient),
		Toggles:     toggleMetrics,
		Clock:       clock,
	})

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	startInvalidationSubscriber(bgCtx, redisClient, appSvc)

	healthChecks := []httpserver.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
		{Name: "redis", Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
	}

	srv, err := httpserver.NewServer(
		cfg,
		appSvc,
		redis.NewIdempotencyGuard(redisClient, cfg.IdempotencyTTL),
		httpserver.Observability{
			HTTPMetrics:    httpMetrics.Middleware(),
			MetricsHandler: metrics.Handler(registry),
		},
		healthChecks,
	)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv, stopBackground)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
