package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/boardpay/backend/internal/application/billing"
	"github.com/boardpay/backend/internal/domain/billing"
	"github.com/boardpay/backend/internal/infrastructure/config"
	"github.com/boardpay/backend/internal/infrastructure/event"
	"github.com/boardpay/backend/internal/infrastructure/logger"
	"github.com/boardpay/backend/internal/infrastructure/notification"
	"github.com/boardpay/backend/internal/infrastructure/persistence"
	"github.com/boardpay/backend/internal/infrastructure/scheduler"
	"github.com/boardpay/backend/internal/infrastructure/telemetry"
	"github.com/boardpay/backend/internal/interfaces/http/handler"
	"github.com/boardpay/backend/internal/interfaces/http/middleware"
	"github.com/boardpay/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting BoardPay Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Register query tracing callbacks
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	billRepo := persistence.NewGormBillRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	readingRepo := persistence.NewGormMeterReadingRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	roomRepo := persistence.NewGormRoomRepository(db.DB)
	buildingRepo := persistence.NewGormBuildingRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	auditHandler := notification.NewAuditLogHandler(log)
	eventBus.Subscribe(auditHandler, auditHandler.EventTypes()...)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Fee schedule fallback table from config
	rent, water, electricityRate, internet := cfg.Billing.FallbackFees()
	resolver := billing.NewFeeScheduleResolver(billing.FallbackFees{
		MonthlyRent:     rent,
		WaterFee:        water,
		ElectricityRate: electricityRate,
		InternetFee:     internet,
	})

	// Billing engine
	billingEngine := billingapp.NewEngine(billingapp.EngineConfig{
		BillRepo:     billRepo,
		PaymentRepo:  paymentRepo,
		ReadingRepo:  readingRepo,
		TenantRepo:   tenantRepo,
		RoomRepo:     roomRepo,
		BuildingRepo: buildingRepo,
		Resolver:     resolver,
		Usage:        billing.NewMeterUsageResolver(readingRepo),
		Notifier:     notification.NewLogNotifier(log),
		Publisher:    eventBus,
		TxManager:    txManager,
		Logger:       log,
	})

	// Daily billing scheduler (if enabled)
	if cfg.Scheduler.Enabled {
		billingScheduler := scheduler.NewBillingScheduler(scheduler.BillingSchedulerConfig{
			RunHour:       cfg.Scheduler.RunHour,
			CheckInterval: cfg.Scheduler.CheckInterval,
			ReminderDays:  cfg.Scheduler.ReminderDays,
		}, billingEngine, log)
		if err := billingScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start billing scheduler", zap.Error(err))
		}
		defer func() {
			if err := billingScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping billing scheduler", zap.Error(err))
			}
		}()
		log.Info("Billing scheduler started",
			zap.Int("run_hour", cfg.Scheduler.RunHour),
			zap.Duration("check_interval", cfg.Scheduler.CheckInterval),
		)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID, panic recovery, request logging,
	// tracing, security headers, CORS, body limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(1 << 20))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(router.NewBillingRoutes(handler.NewBillingHandler(billingEngine)))
	r.Register(router.NewSystemRoutes(handler.NewSystemHandler()))
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
