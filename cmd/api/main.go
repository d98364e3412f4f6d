// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/tablebook/internal/admin"
	"github.com/carterperez-dev/templates/tablebook/internal/auth"
	"github.com/carterperez-dev/templates/tablebook/internal/config"
	"github.com/carterperez-dev/templates/tablebook/internal/core"
	"github.com/carterperez-dev/templates/tablebook/internal/health"
	"github.com/carterperez-dev/templates/tablebook/internal/jobs"
	"github.com/carterperez-dev/templates/tablebook/internal/menu"
	"github.com/carterperez-dev/templates/tablebook/internal/middleware"
	"github.com/carterperez-dev/templates/tablebook/internal/rating"
	"github.com/carterperez-dev/templates/tablebook/internal/reservation"
	"github.com/carterperez-dev/templates/tablebook/internal/restaurant"
	"github.com/carterperez-dev/templates/tablebook/internal/review"
	"github.com/carterperez-dev/templates/tablebook/internal/server"
	"github.com/carterperez-dev/templates/tablebook/internal/user"
	"github.com/carterperez-dev/templates/tablebook/migrations"
)

const (
	drainDelay   = 5 * time.Second
	cachePrefix  = "tablebook:"
	jobTimeout   = 10 * time.Minute
	jobsStopWait = 30 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
		"query_timeout", cfg.Database.QueryTimeout,
	)

	if cfg.Database.AutoMigrate {
		version, migErr := db.Migrate(migrations.FS)
		if migErr != nil {
			return migErr
		}
		logger.Info("database migrated", "version", version)
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	if !cfg.IsProduction() {
		created, keyErr := auth.EnsureKeyPair(cfg.JWT)
		if keyErr != nil {
			return keyErr
		}
		if created {
			logger.Warn("generated development signing keys",
				"path", cfg.JWT.PrivateKeyPath,
			)
		}
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized", "algorithm", "ES256")

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(authRepo, jwtManager, userSvc, redis.Client)
	authHandler := auth.NewHandler(authSvc)

	restaurantRepo := restaurant.NewRepository(db.DB)
	menuRepo := menu.NewRepository(db.DB)
	reviewRepo := review.NewRepository(db.DB)
	reservationRepo := reservation.NewRepository(db.DB)

	restaurantSvc := restaurant.NewService(
		restaurantRepo,
		menuRepo,
		reviewRepo,
		core.NewCache(redis.Client, cachePrefix),
		cfg.Cache.RestaurantTTL,
		cfg.Reservation.MaxPageSize,
		logger,
	)

	aggregator := rating.NewAggregator(
		rating.NewRepository(db.DB),
		rating.NewRedisStaleTracker(redis.Client),
		cfg.Rating,
		logger,
	)
	aggregator.OnChange(restaurantSvc.InvalidateDetail)

	menuSvc := menu.NewService(menuRepo, restaurantSvc)
	reviewSvc := review.NewService(reviewRepo, restaurantSvc, aggregator)
	reservationSvc := reservation.NewService(
		reservationRepo,
		restaurantSvc,
		cfg.Reservation,
		logger,
	)

	restaurantHandler := restaurant.NewHandler(restaurantSvc)
	menuHandler := menu.NewHandler(menuSvc)
	reviewHandler := review.NewHandler(reviewSvc, cfg.Reservation.MaxPageSize)
	reservationHandler := reservation.NewHandler(reservationSvc)
	ratingHandler := rating.NewHandler(aggregator)

	healthHandler := health.NewHandler(
		health.Check{Name: "database", Critical: true, Ping: db.Ping},
		health.Check{Name: "redis", Ping: redis.Ping},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Counters: map[string]admin.Counter{
			"users":        total(userSvc.CountUsers),
			"restaurants":  byStatus(restaurantSvc.CountByStatus),
			"reviews":      total(reviewRepo.Count),
			"reservations": byStatus(reservationSvc.CountByStatus),
		},
	})

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(logger, jobTimeout)
		if err := jobs.RegisterDefaults(scheduler, cfg, aggregator, authSvc, logger); err != nil {
			return err
		}
		scheduler.Start()
	}

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(middleware.Timeout(cfg.Database.QueryTimeout))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.Per(
				cfg.RateLimit.Window,
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)

	bookingLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Scope:    "bookings",
		Limit:    middleware.PerMinute(cfg.RateLimit.Bookings, cfg.RateLimit.Bookings),
		KeyFunc:  middleware.KeyByUser,
		FailOpen: true,
	}).Handler

	credentialLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Scope:    "credentials",
		Limit:    middleware.PerMinute(cfg.RateLimit.Credentials, cfg.RateLimit.Credentials),
		FailOpen: true,
	}).Handler

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(authSvc)
	adminOnly := middleware.RequireAdmin

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator, credentialLimiter)

		userHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		restaurantHandler.RegisterRoutes(r, authenticator, adminOnly)
		restaurantHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		menuHandler.RegisterRoutes(r, authenticator, adminOnly)
		reviewHandler.RegisterRoutes(r, authenticator)

		reservationHandler.RegisterRoutes(r, authenticator, bookingLimiter)
		reservationHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		ratingHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if scheduler != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), jobsStopWait)
		if err := scheduler.Stop(stopCtx); err != nil {
			logger.Error("scheduler stop error", "error", err)
		}
		stopCancel()
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func total(count func(context.Context) (int, error)) admin.Counter {
	return func(ctx context.Context) (map[string]int, error) {
		n, err := count(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]int{"all": n}, nil
	}
}

func byStatus[S ~string](count func(context.Context) (map[S]int, error)) admin.Counter {
	return func(ctx context.Context) (map[string]int, error) {
		counts, err := count(ctx)
		if err != nil {
			return nil, err
		}
		out := make(map[string]int, len(counts))
		for status, n := range counts {
			out[string(status)] = n
		}
		return out, nil
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
