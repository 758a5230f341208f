package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	auditapp "github.com/househero/backend/internal/application/audit"
	identityapp "github.com/househero/backend/internal/application/identity"
	paymentapp "github.com/househero/backend/internal/application/payment"
	pricingapp "github.com/househero/backend/internal/application/pricing"
	requestapp "github.com/househero/backend/internal/application/servicerequest"
	trustapp "github.com/househero/backend/internal/application/trust"
	"github.com/househero/backend/internal/infrastructure/auth"
	"github.com/househero/backend/internal/infrastructure/cache"
	"github.com/househero/backend/internal/infrastructure/config"
	"github.com/househero/backend/internal/infrastructure/logger"
	"github.com/househero/backend/internal/infrastructure/persistence"
	"github.com/househero/backend/internal/infrastructure/scheduler"
	"github.com/househero/backend/internal/infrastructure/storage"
	"github.com/househero/backend/internal/infrastructure/telemetry"
	"github.com/househero/backend/internal/interfaces/http/handler"
	"github.com/househero/backend/internal/interfaces/http/middleware"
	"github.com/househero/backend/internal/interfaces/http/router"
	"github.com/househero/backend/internal/site"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/househero/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			House Hero API
//	@version		1.0
//	@description	HomeSwift home-services marketplace backend: pricing, escrow payments, job completion and trust scores.

//	@host		localhost:5001
//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync(log) }()

	ctx := context.Background()

	// Telemetry providers come up first so the bridged logger and the DB
	// callbacks see the global providers.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	log = loggerProvider.Bridge(log, zapcore.InfoLevel)

	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		return err
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.IsDevelopment() {
		log.Debug("Database connection", zap.String("url", cfg.Database.RedactedURL()))
	}
	gormLogger := logger.NewGormLogger(log, logger.GormLevelForEnv(cfg.App.Env),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver()))

	if cfg.Telemetry.DBTraceEnabled {
		system := "postgresql"
		if cfg.Database.Driver() == config.DriverSQLite {
			system = "sqlite"
		}
		if err := telemetry.NewDBTracing(cfg.Telemetry.DBSlowQueryThresh, log).Register(db.DB, system); err != nil {
			return err
		}
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	profileRepo := persistence.NewGormProviderProfileRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	requestRepo := persistence.NewGormServiceRequestRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	pricingRepo := persistence.NewGormPricingRepository(db.DB)
	trustRepo := persistence.NewGormTrustScoreRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)

	// Redis backs the pricing cache and the token blacklist when configured
	var (
		pricingCache cache.Cache = cache.NewMemoryCache()
		blacklist    auth.TokenBlacklist
		redisClient  *redis.Client
	)
	if cfg.Redis.Enabled() {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
		pricingCache = cache.NewRedisCache(redisClient, "househero:")
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Warn("Redis not configured, using in-process cache and token blacklist")
	}

	proofStorage, err := newProofStorage(ctx, cfg, log)
	if err != nil {
		return err
	}

	// Application services
	auditService := auditapp.NewService(auditRepo, log)
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, auditService, log)
	pricingService := pricingapp.NewService(pricingRepo, pricingCache, cfg.Redis.CacheTTL, log)
	trustService := trustapp.NewService(trustRepo, reviewRepo, requestRepo, profileRepo, log)

	paymentOpts := []paymentapp.Option{}
	if meterProvider.IsEnabled() {
		paymentMetrics, err := telemetry.NewPaymentMetrics(meterProvider.Meter("househero/payments"))
		if err != nil {
			return err
		}
		paymentOpts = append(paymentOpts, paymentapp.WithMetrics(paymentMetrics))
	}
	paymentService := paymentapp.NewService(paymentRepo, requestRepo, proofStorage, auditService, log, paymentOpts...)
	requestService := requestapp.NewService(requestRepo, paymentService, trustService, auditService, log)

	// Background auto-release of escrow for completed jobs
	var sweeper *scheduler.ReleaseSweeper
	if cfg.Scheduler.Enabled {
		sweeper, err = scheduler.NewReleaseSweeper(cfg.Scheduler, paymentRepo, paymentService, log)
		if err != nil {
			return err
		}
		if err := sweeper.Start(ctx); err != nil {
			return err
		}
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request id, tracing, recovery, request logging,
	// security headers, CORS, body limit, metrics, profiling, rate limit.
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, tracerProvider.IsEnabled()))
	engine.Use(middleware.TracingAttributes())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddlewareWithConfig(log, logger.GinConfig{SkipPaths: []string{"/health", "/api/health"}}))
	engine.Use(middleware.Secure(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	httpMetrics, err := middleware.HTTPMetrics(httpMeter(meterProvider))
	if err != nil {
		return err
	}
	engine.Use(httpMetrics)
	engine.Use(middleware.Profiling(profiler.IsEnabled()))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	var authLimit gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer limiter.Stop()
		authLimit = middleware.RateLimit(limiter)
	}

	jwtConfig := middleware.DefaultJWTConfig(authService)
	jwtConfig.Logger = log
	jwtMiddleware := middleware.JWTAuth(jwtConfig)

	handlers := router.Handlers{
		Health:         handler.NewHealthHandler(db),
		Auth:           handler.NewAuthHandler(authService, cfg.App.IsProduction()),
		Pricing:        handler.NewPricingHandler(pricingService),
		Payment:        handler.NewPaymentHandler(paymentService, cfg.Storage.MaxUploadSize, cfg.Storage.PresignExpiration),
		ServiceRequest: handler.NewServiceRequestHandler(requestService),
		Trust:          handler.NewTrustHandler(trustService),
		Audit:          handler.NewAuditHandler(auditService),
		Site: handler.NewSiteHandler(
			site.APIEndpoints{Development: cfg.Site.DevelopmentAPIURL, Production: cfg.Site.ProductionAPIURL},
			site.DefaultTheme(),
			cfg.Site.Title,
			cfg.Site.Description,
		),
	}

	router.RegisterStatic(engine, handlers)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
		}, jwtMiddleware),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	r := router.NewRouter(engine).Use(jwtMiddleware)
	for _, group := range router.Routes(handlers, authLimit) {
		r.Register(group)
	}
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("Shutting down server...", zap.String("signal", sig.String()))
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if sweeper != nil {
		if err := sweeper.Stop(shutdownCtx); err != nil {
			log.Warn("Release sweeper did not stop cleanly", zap.Error(err))
		}
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Failed to stop profiler", zap.Error(err))
	}
	_ = meterProvider.Shutdown(shutdownCtx)
	_ = tracerProvider.Shutdown(shutdownCtx)
	_ = loggerProvider.Shutdown(shutdownCtx)

	log.Info("Server exited gracefully")
	return nil
}

// newProofStorage returns the S3 bucket when one is configured and an
// in-process store otherwise
func newProofStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (paymentapp.ProofStorage, error) {
	if !cfg.Storage.Enabled() {
		if cfg.App.IsProduction() {
			return nil, errors.New("storage bucket must be configured in production")
		}
		log.Warn("Object storage not configured, proofs of payment are kept in memory")
		return storage.NewMemoryObjectStorage("http://localhost:" + cfg.App.Port + "/files"), nil
	}

	s3Storage, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("Object storage ready", zap.String("bucket", s3Storage.Bucket()))
	return s3Storage, nil
}

// httpMeter returns nil when metrics are disabled so the middleware passes through
func httpMeter(mp *telemetry.MeterProvider) metric.Meter {
	if !mp.IsEnabled() {
		return nil
	}
	return mp.Meter("househero/http")
}
