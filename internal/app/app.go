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

	"github.com/utafrali/resumeforge/internal/auth"
	"github.com/utafrali/resumeforge/internal/config"
	"github.com/utafrali/resumeforge/internal/domain"
	"github.com/utafrali/resumeforge/internal/event"
	handler "github.com/utafrali/resumeforge/internal/handler/http"
	"github.com/utafrali/resumeforge/internal/mail"
	"github.com/utafrali/resumeforge/internal/printer"
	"github.com/utafrali/resumeforge/internal/repository/postgres"
	redisrepo "github.com/utafrali/resumeforge/internal/repository/redis"
	"github.com/utafrali/resumeforge/internal/service"
	"github.com/utafrali/resumeforge/internal/storage"
	"github.com/utafrali/resumeforge/migrations"
	"github.com/utafrali/resumeforge/pkg/database"
	"github.com/utafrali/resumeforge/pkg/health"
	"github.com/utafrali/resumeforge/pkg/httpclient"
	pkgkafka "github.com/utafrali/resumeforge/pkg/kafka"
	"github.com/utafrali/resumeforge/pkg/middleware"
	"github.com/utafrali/resumeforge/pkg/tracing"
)

// App wires together all dependencies and runs the resume service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "resumeforge",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "resumeforge")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Initialize Redis for the public resume cache.
	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("host", cfg.RedisHost),
		slog.Int("port", cfg.RedisPort),
	)

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Object storage for printed artifacts.
	var store storage.Storage
	if cfg.S3Bucket != "" {
		s3Store, err := storage.NewS3Storage(ctx, storage.S3Config{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		store = s3Store
		logger.Info("s3 storage initialized", slog.String("bucket", cfg.S3Bucket))
	} else {
		store = storage.NewMemoryStorage(cfg.S3PublicURL)
		logger.Warn("S3_BUCKET not set, storing artifacts in memory")
	}

	// Chrome printer behind a circuit breaker.
	printClient := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("chrome"),
		logger,
	)
	chromePrinter := printer.New(printer.Config{
		URL:   cfg.ChromeURL,
		Token: cfg.ChromeToken,
	}, printClient, logger)

	// Outbound mail.
	var mailer mail.Sender
	if cfg.SMTPURL != "" {
		smtpSender, err := mail.NewSMTPSender(cfg.SMTPURL, cfg.MailFrom)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init smtp sender: %w", err)
		}
		mailer = smtpSender
	} else {
		mailer = mail.NewLogSender(logger)
		logger.Warn("SMTP_URL not set, logging outbound mail instead of sending")
	}

	// Build the dependency graph.
	tokens := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userRepo := postgres.NewUserRepository(pool)
	secretsRepo := postgres.NewSecretsRepository(pool)
	resumeRepo := postgres.NewResumeRepository(pool)
	statsRepo := postgres.NewStatisticsRepository(pool)
	resumeCache := redisrepo.NewResumeCache(redisClient, cfg.CacheTTL)
	eventProducer := event.NewProducer(producer, logger)

	authService := service.NewAuthService(userRepo, secretsRepo, tokens, mailer, eventProducer, logger, service.AuthConfig{
		PublicURL:  cfg.PublicURL,
		TOTPIssuer: cfg.TOTPIssuer,
	})
	userService := service.NewUserService(userRepo, eventProducer, authService, logger)
	resumeService := service.NewResumeService(
		resumeRepo, statsRepo, userRepo, resumeCache, chromePrinter,
		store, eventProducer, logger, cfg.PublicURL,
	)
	contributorsService := service.NewContributorsService(
		httpclient.New(httpclient.DefaultConfig()), cfg.GitHubContributorsURL, logger,
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})
	healthHandler.Register("chrome", func(ctx context.Context) error {
		return chromePrinter.Healthy(ctx)
	})
	healthHandler.Register("storage", func(ctx context.Context) error {
		return store.Ping(ctx)
	})

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	flags := domain.FeatureFlags{
		SignupsDisabled:   cfg.DisableSignups,
		EmailAuthDisabled: cfg.DisableEmailAuth,
	}

	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler:     handler.NewAuthHandler(authService, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry, cfg.SecureCookies(), flags, logger),
		UserHandler:     handler.NewUserHandler(userService, logger),
		ResumeHandler:   handler.NewResumeHandler(resumeService, logger),
		PlatformHandler: handler.NewPlatformHandler(flags, contributorsService),
		Tokens:          tokens,
		Users:           userRepo,
		Health:          healthHandler,
		Logger:          logger,
		CORS:            corsCfg,
		AuthRateRPS:     cfg.AuthRateRPS,
		AuthRateBurst:   cfg.AuthRateBurst,
		PprofCIDRs:      cfg.PprofAllowedCIDRs,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: the HTTP server drains
// in-flight requests first, then the tracer flushes their spans, then the
// Kafka producer and the stores close.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.redisClient.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
