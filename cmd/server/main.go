package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vestfolio/backend/internal/application/audit"
	fundingapp "github.com/vestfolio/backend/internal/application/funding"
	investmentapp "github.com/vestfolio/backend/internal/application/investment"
	ledgerapp "github.com/vestfolio/backend/internal/application/ledger"
	"github.com/vestfolio/backend/internal/application/notification"
	profitapp "github.com/vestfolio/backend/internal/application/profit"
	referralapp "github.com/vestfolio/backend/internal/application/referral"
	"github.com/vestfolio/backend/internal/infrastructure/auth"
	"github.com/vestfolio/backend/internal/infrastructure/config"
	"github.com/vestfolio/backend/internal/infrastructure/logger"
	"github.com/vestfolio/backend/internal/infrastructure/persistence"
	"github.com/vestfolio/backend/internal/infrastructure/telemetry"
	"github.com/vestfolio/backend/internal/interfaces/http/handler"
	"github.com/vestfolio/backend/internal/interfaces/http/middleware"
	"github.com/vestfolio/backend/internal/interfaces/http/router"
)

//	@title			Vestfolio Backend API
//	@version		1.0
//	@description	Investment platform backend: double-entry ledger, profit distribution, referral commissions and funding workflows

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting vestfolio backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry providers. Disabled config yields no-op providers, so the
	// rest of the wiring is unconditional.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdownWithTimeout(tracerProvider.Shutdown, log, "tracer provider")

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdownWithTimeout(meterProvider.Shutdown, log, "meter provider")

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer shutdownWithTimeout(loggerProvider.Shutdown, log, "logger provider")

	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, loggerProvider, zapcore.InfoLevel)
		log = telemetry.NewBridgedLogger(log.Core(), otelCore, zap.AddCaller())
	}

	ledgerMetrics, err := telemetry.NewLedgerMetrics(meterProvider.Meter("vestfolio.ledger"))
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if cfg.Telemetry.DBTraceEnabled {
		dbTracingCfg := telemetry.DefaultDBTracingConfig()
		dbTracingCfg.Enabled = true
		if err := telemetry.RegisterDBTracing(db.DB, dbTracingCfg, log); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Redis backs notifications, token revocation and shared rate limiting
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	var notifier notification.Notifier
	var tokenBlacklist auth.TokenBlacklist
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, falling back to in-process notifier and blacklist", zap.Error(err))
		notifier = notification.NewLogNotifier(log)
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		log.Info("Redis connected")
		notifier = notification.NewRedisNotifier(redisClient, log)
		tokenBlacklist = auth.NewRedisTokenBlacklist(redisClient)
	}

	// Repositories
	walletRepo := persistence.NewGormWalletRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	entryRepo := persistence.NewGormEntryRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	planRepo := persistence.NewGormPlanRepository(db.DB)
	positionRepo := persistence.NewGormPositionRepository(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	allocationRepo := persistence.NewGormAllocationRepository(db.DB)
	commentRepo := persistence.NewGormCommentRepository(db.DB)
	referralRepo := persistence.NewGormReferralRepository(db.DB)
	commissionEventRepo := persistence.NewGormCommissionEventRepository(db.DB)
	commissionRepo := persistence.NewGormCommissionRepository(db.DB)
	levelConfigRepo := persistence.NewGormLevelConfigRepository(db.DB)
	fundingRequestRepo := persistence.NewGormFundingRequestRepository(db.DB)
	txManager := persistence.NewGormTxManager(db.DB)

	// Application services
	accountService := ledgerapp.NewAccountService(walletRepo, accountRepo, entryRepo, log)
	postingService := ledgerapp.NewPostingService(accountRepo, entryRepo, transactionRepo, log)
	postingService.SetMetrics(ledgerMetrics)

	auditLogger := audit.NewZapLogger(log)
	manualPostingService := ledgerapp.NewManualPostingService(
		accountRepo, postingService, txManager, auditLogger, log,
	)

	cascadeService := referralapp.NewCascadeService(
		referralRepo, commissionEventRepo, commissionRepo, levelConfigRepo,
		accountService, postingService, txManager, notifier, log,
	)
	cascadeService.SetMetrics(ledgerMetrics)

	// An operator-configured schedule takes precedence over stored levels
	// at first boot; config validation already proved it parses.
	if levels, err := cfg.Referral.ParseLevels(); err == nil && len(cfg.Referral.Levels) > 0 {
		if err := cascadeService.UpdateLevels(ctx, levels); err != nil {
			log.Warn("Failed to apply configured referral levels", zap.Error(err))
		}
	}

	batchService := profitapp.NewBatchService(batchRepo, commentRepo, txManager, notifier, log)
	allocationService := profitapp.NewAllocationService(
		batchRepo, allocationRepo, commentRepo, positionRepo,
		accountService, postingService, txManager, cascadeService, notifier, log,
	)
	fundingService := fundingapp.NewRequestService(
		fundingRequestRepo, accountService, postingService, txManager, notifier, log,
	)
	fundingService.SetMetrics(ledgerMetrics)
	investmentService := investmentapp.NewService(
		planRepo, positionRepo, accountService, postingService, txManager, notifier, log,
	)

	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP handlers
	walletHandler := handler.NewWalletHandler(accountService)
	profitHandler := handler.NewProfitHandler(batchService, allocationService)
	fundingHandler := handler.NewFundingHandler(fundingService)
	investmentHandler := handler.NewInvestmentHandler(investmentService)
	referralHandler := handler.NewReferralHandler(cascadeService)
	adminHandler := handler.NewAdminLedgerHandler(manualPostingService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.App.Name)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSFromConfig(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		var limiter middleware.Limiter
		if redisClient != nil && redisClient.Ping(ctx).Err() == nil {
			limiter = middleware.NewRedisRateLimiter(redisClient, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		} else {
			limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		}
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Liveness endpoints stay outside API versioning and authentication
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		Logger:         log,
	}))

	// Wallet: every authenticated user sees their own balance and history
	walletRoutes := router.NewDomainGroup("wallet", "/wallet")
	walletRoutes.GET("/balance", walletHandler.GetBalance)
	walletRoutes.GET("/entries", walletHandler.ListEntries)

	// Funding: submission is open to users; review and finalization are
	// role-gated per route
	fundingRoutes := router.NewDomainGroup("funding", "/funding")
	fundingRoutes.POST("/requests", fundingHandler.Submit)
	fundingRoutes.GET("/requests", fundingHandler.List)
	fundingRoutes.GET("/requests/:id", fundingHandler.Get)
	fundingRoutes.POST("/requests/:id/review",
		middleware.RequireRole(auth.RoleAccountant), fundingHandler.Review)
	fundingRoutes.POST("/requests/:id/finalize",
		middleware.RequireRole(auth.RoleAdmin), fundingHandler.Finalize)
	fundingRoutes.POST("/requests/:id/payout",
		middleware.RequireRole(auth.RoleAdmin), fundingHandler.ConfirmPayout)

	// Investment plans and positions
	investmentRoutes := router.NewDomainGroup("investment", "/investment")
	investmentRoutes.GET("/plans", investmentHandler.ListPlans)
	investmentRoutes.POST("/plans",
		middleware.RequireRole(auth.RoleAdmin), investmentHandler.CreatePlan)
	investmentRoutes.POST("/plans/:id/subscribe", investmentHandler.Subscribe)
	investmentRoutes.GET("/positions", investmentHandler.ListPositions)
	investmentRoutes.POST("/positions/:id/redeem", investmentHandler.Redeem)

	// Profit batches: accountants create and resubmit, admins decide
	profitRoutes := router.NewDomainGroup("profit", "/profit")
	profitRoutes.GET("/batches", profitHandler.ListBatches)
	profitRoutes.GET("/batches/:id", profitHandler.GetBatch)
	profitRoutes.GET("/batches/:id/timeline", profitHandler.GetTimeline)
	profitRoutes.GET("/batches/:id/allocations", profitHandler.ListAllocations)
	profitRoutes.GET("/batches/:id/allocations/export", profitHandler.ExportAllocations)
	profitRoutes.POST("/batches",
		middleware.RequireRole(auth.RoleAccountant), profitHandler.CreateBatch)
	profitRoutes.POST("/batches/:id/resubmit",
		middleware.RequireRole(auth.RoleAccountant), profitHandler.ResubmitBatch)
	profitRoutes.POST("/batches/:id/approve",
		middleware.RequireRole(auth.RoleAdmin), profitHandler.ApproveBatch)
	profitRoutes.POST("/batches/:id/reject",
		middleware.RequireRole(auth.RoleAdmin), profitHandler.RejectBatch)

	// Referral tree and commission schedule
	referralRoutes := router.NewDomainGroup("referral", "/referral")
	referralRoutes.POST("/enroll", referralHandler.Enroll)
	referralRoutes.GET("/upline", referralHandler.GetUpline)
	referralRoutes.GET("/commissions", referralHandler.GetCommissions)
	referralRoutes.GET("/levels", referralHandler.GetLevels)
	referralRoutes.PUT("/levels",
		middleware.RequireRole(auth.RoleAdmin), referralHandler.UpdateLevels)

	// Admin ledger oversight
	adminRoutes := router.NewDomainGroup("admin", "/admin")
	adminRoutes.Use(middleware.RequireRole(auth.RoleAdmin))
	adminRoutes.GET("/ledger/integrity", walletHandler.VerifyIntegrity)
	adminRoutes.GET("/ledger/system-accounts/:code", walletHandler.GetSystemAccount)
	adminRoutes.POST("/ledger/adjust", adminHandler.Adjust)
	adminRoutes.POST("/ledger/transfer", adminHandler.Transfer)
	adminRoutes.POST("/users/:id/funds", adminHandler.AdjustUserFunds)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", healthHandler.Info)

	r.Register(walletRoutes).
		Register(fundingRoutes).
		Register(investmentRoutes).
		Register(profitRoutes).
		Register(referralRoutes).
		Register(adminRoutes).
		Register(systemRoutes)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// shutdownWithTimeout flushes a telemetry provider with a bounded wait
func shutdownWithTimeout(shutdown func(context.Context) error, log *zap.Logger, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
