package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/brands-faas/pkg/health"
	"github.com/utafrali/brands-faas/pkg/tracing"

	"github.com/utafrali/brands-faas/internal/cache"
	"github.com/utafrali/brands-faas/internal/catalog"
	"github.com/utafrali/brands-faas/internal/config"
	"github.com/utafrali/brands-faas/internal/function"
	handler "github.com/utafrali/brands-faas/internal/handler/http"
	"github.com/utafrali/brands-faas/internal/service"
)

// Version is reported as the tracing service version.
const Version = "1.0.0"

// App wires together all dependencies and runs the local function server.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	httpServer     *http.Server
	redisClient    *redis.Client
	tracerShutdown tracing.ShutdownFunc
	// cancel stops background work owned by the router (rate limiter cleanup).
	cancel context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		FunctionName: cfg.FunctionName,
		Version:      Version,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		SampleRate:   cfg.OTELSampleRate,
		Enabled:      cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	healthHandler := health.NewHandler()

	// Optional Redis list cache.
	var (
		listCache   service.ListCache
		redisClient *redis.Client
	)
	if cfg.CacheEnabled {
		redisClient, err = cache.NewRedisClient(ctx, cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			_ = tracerShutdown(context.Background())
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		listCache = cache.NewListCache(redisClient, cfg.CacheTTL())
		healthHandler.Register("redis", cache.PingChecker(redisClient))
		logger.Info("redis list cache enabled",
			slog.String("addr", fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort)),
			slog.Duration("ttl", cfg.CacheTTL()),
		)
	}

	// Functions.
	brandService := service.NewBrandService(catalog.Default(), listCache, logger)
	fns := handler.Functions{
		Brands: function.NewBrands(brandService,
			function.WithMaxLimit(cfg.BrandsMaxLimit),
			function.WithLogger(logger),
		),
		Info: function.NewInfo(function.WithLogger(logger)),
	}

	// HTTP router.
	routerCtx, routerCancel := context.WithCancel(context.Background())
	router := handler.NewRouter(routerCtx, cfg, fns, healthHandler, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		httpServer:     httpServer,
		redisClient:    redisClient,
		tracerShutdown: tracerShutdown,
		cancel:         routerCancel,
	}, nil
}

// Handler returns the fully wired HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("api", fmt.Sprintf("http://localhost:%d%s/brands", a.cfg.HTTPPort, handler.APIPrefix)),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application in order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush spans of drained requests)
// 3. Redis client
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	a.cancel()

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
