package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	fulfillmentapp "github.com/qrcampaign/fulfillment/internal/application/fulfillment"
	"github.com/qrcampaign/fulfillment/internal/infrastructure/config"
	"github.com/qrcampaign/fulfillment/internal/infrastructure/logger"
	"github.com/qrcampaign/fulfillment/internal/infrastructure/persistence"
	"github.com/qrcampaign/fulfillment/internal/infrastructure/printing"
	"github.com/qrcampaign/fulfillment/internal/infrastructure/storage"
	"github.com/qrcampaign/fulfillment/internal/infrastructure/symbol"
	"github.com/qrcampaign/fulfillment/internal/infrastructure/telemetry"
	"github.com/qrcampaign/fulfillment/internal/interfaces/http/handler"
	"github.com/qrcampaign/fulfillment/internal/interfaces/http/middleware"
	"github.com/qrcampaign/fulfillment/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			QR Fulfillment API
//	@version		1.0
//	@description	Printable order sheets, shipping labels and export archives for QR code orders
//	@BasePath		/api/v1

const version = "1.0.0"

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
		_ = logger.Sync(log)
	}()

	log.Info("Starting QR fulfillment service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        persistence.DBSystem(cfg.Database.Driver),
	}, log)

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(gormLog),
		persistence.WithPlugin(dbTracing),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))

	// the postgres schema belongs to the campaign service; local sqlite
	// databases are created on the fly
	if db.Driver == config.DriverSQLite {
		if err := db.Migrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	encoder, err := symbol.NewQRCodeEncoder(symbol.RecoveryLevel(cfg.Fulfillment.SymbolRecovery), log)
	if err != nil {
		log.Fatal("Invalid symbol configuration", zap.Error(err))
	}

	renderer := printing.NewFPDFRenderer(&printing.FPDFConfig{
		Creator: cfg.App.Name,
		Logger:  log,
	})
	labels := printing.NewShippingLabelComposer(printing.LabelOrigin{
		Brand:   cfg.Fulfillment.BrandName,
		Lines:   cfg.Fulfillment.OriginLines,
		Service: cfg.Fulfillment.ServiceLevel,
	})

	var objectStorage storage.ObjectStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = s3Storage.EnsureBucket(ctx)
		cancel()
		if err != nil {
			log.Fatal("Failed to prepare export bucket", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Stored exports enabled", zap.String("bucket", s3Storage.GetBucket()))
	}

	fulfillmentService := fulfillmentapp.NewFulfillmentService(
		persistence.NewGormOrderRepository(db.DB),
		persistence.NewGormUserRepository(db.DB),
		persistence.NewGormQrCodeRepository(db.DB),
		encoder,
		renderer,
		labels,
		objectStorage,
		fulfillmentapp.Config{
			ShortLinkBaseURL: cfg.Fulfillment.ShortLinkBaseURL,
			BulkWorkers:      cfg.Fulfillment.BulkWorkers,
			MaxBulkOrders:    cfg.Fulfillment.MaxBulkOrders,
			SymbolDPI:        cfg.Fulfillment.SymbolDPI,
			ExportURLExpiry:  cfg.Storage.PresignExpiration,
		},
		log,
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version).
		AddCheck("database", func(context.Context) error { return db.Ping() })
	fulfillmentHandler := handler.NewFulfillmentHandler(fulfillmentService, log)

	healthRoutes := router.NewDomainGroup("health", "")
	healthRoutes.GET("/health", systemHandler.Health)

	fulfillmentRoutes := handler.FulfillmentRoutes(fulfillmentHandler)
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(fulfillmentRoutes).
		Register(handler.SystemRoutes(systemHandler)).
		RegisterRoot(healthRoutes).
		Setup()

	for _, route := range fulfillmentRoutes.Routes() {
		log.Debug("Route registered", zap.String("method", route.Method), zap.String("path", "/api/v1"+route.Path))
	}

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
