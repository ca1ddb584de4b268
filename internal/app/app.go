package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/w24010/delightful/internal/catalogdata"
	"github.com/w24010/delightful/internal/config"
	"github.com/w24010/delightful/internal/event"
	"github.com/w24010/delightful/internal/geo"
	handler "github.com/w24010/delightful/internal/handler/http"
	"github.com/w24010/delightful/internal/repository"
	"github.com/w24010/delightful/internal/repository/memory"
	"github.com/w24010/delightful/internal/repository/postgres"
	redisrepo "github.com/w24010/delightful/internal/repository/redis"
	"github.com/w24010/delightful/internal/service"
	"github.com/w24010/delightful/pkg/database"
	"github.com/w24010/delightful/pkg/health"
	pkgkafka "github.com/w24010/delightful/pkg/kafka"
	"github.com/w24010/delightful/pkg/middleware"
	"github.com/w24010/delightful/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	limiter        *middleware.RateLimiter
	tracerShutdown tracing.ShutdownFunc
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	a.tracerShutdown, err = tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		SampleRate:   cfg.OTELSampleRate,
		Enabled:      cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize Redis client.
	redisCfg := database.DefaultRedisConfig()
	redisCfg.Addr = cfg.RedisAddr
	redisCfg.Password = cfg.RedisPass
	redisCfg.DB = cfg.RedisDB
	a.rdb, err = database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return a.rdb.Ping(ctx).Err()
	})

	catalogRepo, err := a.catalogRepository(ctx, healthHandler)
	if err != nil {
		return nil, err
	}

	// Initialize Kafka producer. Without brokers events are dropped.
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		healthHandler.Register("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Warn("no kafka brokers configured, domain events disabled")
	}

	// Build the dependency graph.
	ttl := cfg.CartTTLDuration()
	eventProducer := event.NewProducer(a.producer, logger)
	cartService := service.NewCartService(redisrepo.NewCartRepository(a.rdb, ttl), catalogRepo, eventProducer, logger, ttl)
	addressService := service.NewAddressService(
		redisrepo.NewAddressRepository(a.rdb, ttl),
		newLocator(cfg, logger),
		geo.PlaceholderGeocoder{},
		geo.Options{HighAccuracy: true, Timeout: cfg.GeoTimeout, MaximumAge: cfg.GeoMaxAge},
		eventProducer,
		logger,
	)
	checkoutService := service.NewCheckoutService(cartService, addressService, eventProducer, logger, cfg.OrderProcessingDelay)

	a.limiter = middleware.NewRateLimiter(cfg.LocateRateRPS, cfg.LocateRateBurst, logger)

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.Environment = cfg.Environment

	router := handler.NewRouter(handler.Services{
		Catalog:  service.NewCatalogService(catalogRepo, logger),
		Cart:     cartService,
		Address:  addressService,
		Checkout: checkoutService,
	}, healthHandler, logger, handler.RouterConfig{
		ServiceName:      serviceName,
		PprofCIDRs:       cfg.PprofAllowedCIDRs,
		CORS:             cors,
		CatalogMaxAge:    cfg.CatalogMaxAge,
		LocateLimiter:    a.limiter,
		ProgressInterval: cfg.ProgressTickInterval,
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// catalogRepository opens the configured catalog backend.
func (a *App) catalogRepository(ctx context.Context, healthHandler *health.Handler) (repository.CatalogRepository, error) {
	catalog, err := catalogdata.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	if a.cfg.CatalogBackend == config.CatalogBackendMemory {
		a.logger.Info("serving embedded catalog",
			slog.Int("restaurants", len(catalog.Restaurants)),
		)
		return memory.NewCatalogRepository(catalog), nil
	}

	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = a.cfg.PostgresHost
	pgCfg.Port = a.cfg.PostgresPort
	pgCfg.User = a.cfg.PostgresUser
	pgCfg.Password = a.cfg.PostgresPassword
	pgCfg.DBName = a.cfg.PostgresDB
	pgCfg.SSLMode = a.cfg.PostgresSSLMode

	a.pool, err = database.NewPostgresPool(ctx, &pgCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	database.RegisterPoolMetrics(a.pool, serviceName)
	database.SetSlowQueryLogging(a.cfg.SlowQuery, a.logger)

	if err := database.RunMigrations(ctx, a.pool, postgres.Migrations(), a.logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := postgres.NewCatalogRepository(a.pool)
	if a.cfg.CatalogSeed {
		if err := repo.Seed(ctx, catalog); err != nil {
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		a.logger.Info("catalog seeded", slog.Int("restaurants", len(catalog.Restaurants)))
	}

	healthHandler.Register("postgres", a.pool.Ping)
	return repo, nil
}

// newLocator returns the geolocation strategy selected by GEO_PROVIDER.
func newLocator(cfg *config.Config, logger *slog.Logger) geo.Locator {
	switch cfg.GeoProvider {
	case config.GeoProviderIP:
		return geo.NewIPLocator(geo.IPLocatorConfig{
			Endpoint:  cfg.GeoIPEndpoint,
			Timeout:   cfg.GeoTimeout,
			Retention: cfg.GeoMaxAge,
		}, logger)
	case config.GeoProviderNone:
		return geo.Unsupported{}
	default:
		return geo.ClientLocator{}
	}
}

// Handler returns the HTTP handler of the application.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.close()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.close()

	a.logger.Info("application shutdown complete")
	return nil
}

// close releases every initialized dependency.
func (a *App) close() {
	if a.limiter != nil {
		a.limiter.Stop()
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}
