package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/FoodStore/internal/auth"
	"github.com/utafrali/FoodStore/internal/config"
	"github.com/utafrali/FoodStore/internal/event"
	handler "github.com/utafrali/FoodStore/internal/handler/http"
	"github.com/utafrali/FoodStore/internal/repository/postgres"
	redisrepo "github.com/utafrali/FoodStore/internal/repository/redis"
	"github.com/utafrali/FoodStore/internal/service"
	"github.com/utafrali/FoodStore/internal/storage"
	"github.com/utafrali/FoodStore/internal/storage/disk"
	"github.com/utafrali/FoodStore/internal/storage/gcs"
	"github.com/utafrali/FoodStore/internal/storage/memory"
	"github.com/utafrali/FoodStore/migrations"
	"github.com/utafrali/FoodStore/pkg/database"
	"github.com/utafrali/FoodStore/pkg/health"
	pkgkafka "github.com/utafrali/FoodStore/pkg/kafka"
	"github.com/utafrali/FoodStore/pkg/middleware"
	"github.com/utafrali/FoodStore/pkg/tracing"
)

// limiterTTL is how long an idle client keeps its rate limit bucket.
const limiterTTL = 10 * time.Minute

// App wires together all dependencies and runs the food API.
type App struct {
	cfg            *config.API
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	limiter        *middleware.RateLimiter
	images         io.Closer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.API, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	if err := a.init(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	if cfg.SlowQueryThreshold > 0 {
		database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)
	}

	// Initialize PostgreSQL connection pool.
	pool, err := database.NewPostgresPool(ctx, &cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.Postgres.Host),
		slog.Int("port", cfg.Postgres.Port),
		slog.String("database", cfg.Postgres.DBName),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, handler.ServiceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, migrations.Dir, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Initialize Redis client.
	rdb, err := database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	logger.Info("connected to Redis", slog.String("addr", cfg.Redis.Addr()), slog.Int("db", cfg.Redis.DB))

	// Events are optional; without Kafka every publish is a no-op.
	var publisher event.Publisher = event.Nop{}
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(a.producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	store, images, err := a.newImageStorage(ctx)
	if err != nil {
		return err
	}

	// Build the dependency graph.
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)
	foodRepo := postgres.NewFoodRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	cartRepo := redisrepo.NewCartRepository(rdb, cfg.CartTTL)

	foodService := service.NewFoodService(foodRepo, store, publisher, logger)
	cartService := service.NewCartService(cartRepo, foodRepo, publisher, logger)
	userService := service.NewUserService(userRepo, jwtManager, publisher, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if a.producer != nil {
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
	}

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	a.limiter = middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, limiterTTL,
		middleware.WithTrustedProxies(proxies...))

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.Environment = cfg.Environment

	router := handler.NewRouter(handler.RouterConfig{
		FoodService:    foodService,
		CartService:    cartService,
		UserService:    userService,
		Health:         healthHandler,
		TokenValidator: jwtManager.TokenValidator(),
		AuthLimiter:    a.limiter,
		CORS:           cors,
		Images:         images,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// newImageStorage returns the configured image store and the handler that
// serves /images/.
func (a *App) newImageStorage(ctx context.Context) (storage.Storage, http.Handler, error) {
	switch a.cfg.StorageBackend {
	case config.StorageGCS:
		store, err := gcs.New(ctx, a.cfg.GCSBucket, a.cfg.GCSPublicURL)
		if err != nil {
			return nil, nil, fmt.Errorf("init gcs storage: %w", err)
		}
		a.images = store
		a.logger.Info("image storage: gcs", slog.String("bucket", a.cfg.GCSBucket))
		return store, storage.RedirectHandler(store), nil
	case config.StorageMemory:
		store := memory.New(a.cfg.PublicURL)
		a.logger.Warn("image storage: memory, uploads are lost on restart")
		return store, store.Handler(), nil
	default:
		store, err := disk.New(a.cfg.UploadDir)
		if err != nil {
			return nil, nil, fmt.Errorf("init disk storage: %w", err)
		}
		a.logger.Info("image storage: disk", slog.String("dir", a.cfg.UploadDir))
		return store, store.Handler(), nil
	}
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

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer, Redis, PostgreSQL, image storage
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.close(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// close releases everything init acquired. It tolerates a partial init.
func (a *App) close() error {
	var errs []error

	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.images != nil {
		if err := a.images.Close(); err != nil {
			a.logger.Error("image storage close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
