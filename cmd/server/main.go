package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/datalens/backend/internal/application/chart"
	"github.com/datalens/backend/internal/application/eda"
	"github.com/datalens/backend/internal/application/export"
	"github.com/datalens/backend/internal/application/session"
	"github.com/datalens/backend/internal/domain/dataset"
	"github.com/datalens/backend/internal/infrastructure/config"
	"github.com/datalens/backend/internal/infrastructure/connector"
	"github.com/datalens/backend/internal/infrastructure/loader"
	"github.com/datalens/backend/internal/infrastructure/logger"
	"github.com/datalens/backend/internal/infrastructure/render"
	"github.com/datalens/backend/internal/interfaces/http/handler"
	"github.com/datalens/backend/internal/interfaces/http/middleware"
	"github.com/datalens/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

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
		_ = log.Sync()
	}()

	log.Info("Starting DataLens Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Shared dataset session and column classifier
	classifier := dataset.NewClassifier(dataset.ClassifierConfig{
		CategoricalRatio:       cfg.Classifier.CategoricalRatio,
		CategoricalMaxDistinct: cfg.Classifier.CategoricalMaxDistinct,
	})
	sess := session.New()

	// Application services
	edaService := eda.NewService(sess, eda.Config{
		TopKPairs:          cfg.Analysis.TopKPairs,
		ValueCountsTopN:    cfg.Analysis.ValueCountsTopN,
		OutlierReportLimit: cfg.Analysis.OutlierReportLimit,
		ZScoreThreshold:    cfg.Analysis.ZScoreThreshold,
		IQRMultiplier:      cfg.Analysis.IQRMultiplier,
	})
	chartService := chart.NewService(sess, edaService)

	// PDF renderer, optional when Chrome is unavailable
	var pdfRenderer export.PDFRenderer
	if cfg.Render.Enabled {
		r := render.NewRenderer(render.Config{
			Timeout:   cfg.Render.Timeout,
			RemoteURL: cfg.Render.RemoteURL,
			NoSandbox: cfg.Render.NoSandbox,
			Logger:    log,
		})
		defer func() {
			_ = r.Close()
		}()
		pdfRenderer = r
	}
	exportService := export.NewService(sess, edaService, pdfRenderer, cfg.Export.Directory, log)

	// External database connectors
	sqlServerConn := connector.NewSQLServer(cfg.Connector.MaxRows, log)
	defer func() {
		_ = sqlServerConn.Close()
	}()
	snowflakeConn := connector.NewSnowflake(cfg.Connector.MaxRows, log)
	defer func() {
		_ = snowflakeConn.Close()
	}()

	// File loader
	fileLoader := loader.New(classifier, cfg.Upload.MaxRows)

	// Initialize HTTP handlers
	datasetHandler := handler.NewDatasetHandler(sess, fileLoader, cfg.Upload.MaxFileSize)
	edaHandler := handler.NewEDAHandler(edaService)
	chartHandler := handler.NewChartHandler(chartService)
	exportHandler := handler.NewExportHandler(exportService)
	sqlServerHandler := handler.NewSQLServerHandler(sqlServerConn, sess, classifier)
	snowflakeHandler := handler.NewSnowflakeHandler(snowflakeConn, sess, classifier)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version)

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
	// security headers, CORS, body size limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(datasetHandler).
		Register(edaHandler).
		Register(chartHandler).
		Register(exportHandler).
		Register(sqlServerHandler).
		Register(snowflakeHandler).
		Register(systemHandler)
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
