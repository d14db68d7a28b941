package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hireflow/onboarding/internal/config"
	"github.com/hireflow/onboarding/internal/handlers"
	"github.com/hireflow/onboarding/internal/logging"
	"github.com/hireflow/onboarding/internal/middleware"
	"github.com/hireflow/onboarding/internal/notify"
	"github.com/hireflow/onboarding/internal/observability"
	"github.com/hireflow/onboarding/internal/services"
	"github.com/hireflow/onboarding/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger first
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}

	// Initialize observability
	observability.InitTracer()
	defer observability.ShutdownTracer()

	// Initialize database connections
	config.InitMongoDB()
	config.InitRedis()

	// Build services
	store := storage.NewMongoCandidateStore(
		config.MongoDB.Collection(config.AppConfig.CandidateCollection),
		logging.Logger,
	)
	folders, err := storage.NewS3FolderStorage(context.Background(), config.AppConfig, logging.Logger)
	if err != nil {
		logging.Logger.Fatal("failed to initialize folder storage", zap.Error(err))
	}
	dispatcher := notify.NewMailGatewayDispatcher(config.AppConfig, config.Redis)
	machine := services.NewStateMachine(store, logging.Logger)
	workflow := services.NewWorkflowService(
		store,
		folders,
		dispatcher,
		machine,
		config.AppConfig.Documents,
		config.AppConfig.OperatorEmail,
		logging.Logger,
	)
	handlers.Init(workflow, store)

	// Set Gin mode
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router with middleware
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RequestTracker(),
		cors.Default(),
	)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Health check endpoint
		v1.GET("/health", handlers.HealthCheck)

		v1.POST("/candidates", handlers.StartOnboarding)
		v1.GET("/candidates/:id", handlers.GetCandidate)
		v1.POST("/candidates/:id/details-received", handlers.DetailsReceived)
		v1.POST("/candidates/:id/release-offer", handlers.ReleaseOffer)
		v1.POST("/candidates/:id/finalize", handlers.Finalize)
		v1.POST("/candidates/:id/override", handlers.OverrideStatus)
		v1.POST("/candidates/:id/resend", handlers.ResendCommunication)
	}

	// Create server with timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.AppConfig.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logging.Logger.Info("starting server",
			zap.Int("port", config.AppConfig.Port),
			zap.String("environment", config.AppConfig.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logging.Logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logging.Logger.Info("server exited gracefully")
}
