package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"IMA_BACK-END/internal/cache"
	"IMA_BACK-END/internal/config"
	"IMA_BACK-END/internal/database"
	"IMA_BACK-END/internal/handlers"
	"IMA_BACK-END/internal/health"
	"IMA_BACK-END/internal/middleware"
	"IMA_BACK-END/internal/routes"
	"IMA_BACK-END/internal/telemetry"
)

// App owns every long-lived client of the process. It is built once at
// startup and handed to the components that need it.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	DB         *pgxpool.Pool
	Redis      *redis.Client
	Registry   *prometheus.Registry
	Aggregator *health.Aggregator

	shutdownTracing telemetry.ShutdownFunc
}

// New constructs the database pool, cache client, tracer and health probes.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, err
	}

	redisClient := cache.NewClient(cfg)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &App{
		Config:          cfg,
		Logger:          logger,
		DB:              pool,
		Redis:           redisClient,
		Registry:        registry,
		shutdownTracing: shutdownTracing,
	}
	a.Aggregator = NewAggregator(cfg, logger, registry,
		health.NewServerProbe(),
		health.NewDatabaseProbe(pool),
		health.NewRedisProbe(redisClient),
	)

	return a, nil
}

// NewAggregator wires the probes into an aggregator using the configured
// per-probe timeout and the given metrics registry.
func NewAggregator(cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer, probes ...health.Probe) *health.Aggregator {
	agg := health.NewAggregator(
		health.WithTimeout(cfg.Health.ProbeTimeout),
		health.WithLogger(logger.Named("health")),
		health.WithMetrics(health.NewMetrics(reg)),
	)
	agg.Register(probes...)
	return agg
}

// CheckDependencies pings the database and cache once. Failures are logged
// and left to the health endpoints to report.
func (a *App) CheckDependencies(ctx context.Context) {
	if err := a.DB.Ping(ctx); err != nil {
		a.Logger.Warn("database not reachable at startup", zap.Error(err))
	}
	if err := cache.Ping(ctx, a.Redis); err != nil {
		a.Logger.Warn("redis not reachable at startup", zap.Error(err))
	}
}

// Handler builds the full HTTP handler chain.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	healthHandler := handlers.NewHealthHandler(a.Aggregator, a.Logger.Named("http"))
	metricsHandler := promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{Registry: a.Registry})

	routes.SetupRoutes(mux, healthHandler, metricsHandler)

	return BuildHandler(mux, a.Config, a.Logger)
}

// BuildHandler wraps mux with tracing, CORS, request logging and panic
// recovery, outermost first.
func BuildHandler(mux http.Handler, cfg *config.Config, logger *zap.Logger) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	})

	inner := middleware.Chain(mux,
		c.Handler,
		middleware.RequestLogger(logger.Named("access")),
		middleware.Recover(logger),
	)
	return otelhttp.NewHandler(inner, cfg.App.Name)
}

// Close releases every client in reverse order of construction.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Redis.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis: %w", err))
	}
	a.DB.Close()
	if err := a.shutdownTracing(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
	}
	_ = a.Logger.Sync()
	return errors.Join(errs...)
}
