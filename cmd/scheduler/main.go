package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hireflow/onboarding/internal/config"
	"github.com/hireflow/onboarding/internal/logging"
	"github.com/hireflow/onboarding/internal/notify"
	"github.com/hireflow/onboarding/internal/observability"
	"github.com/hireflow/onboarding/internal/services"
	"github.com/hireflow/onboarding/internal/storage"
	"go.uber.org/zap"
)

func main() {
	// Initialize logging
	if err := logging.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}

	logging.Logger.Info("Starting Onboarding Scheduler")

	// Initialize observability
	observability.InitTracer()
	defer observability.ShutdownTracer()

	// Initialize Redis
	config.InitRedis()
	if config.Redis == nil {
		logging.Logger.Fatal("failed to initialize Redis client")
	}

	// Initialize MongoDB
	config.InitMongoDB()
	if config.MongoDB == nil {
		logging.Logger.Fatal("failed to initialize MongoDB")
	}

	// Build the tick pipeline
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
	reconciler := services.NewReconciler(config.AppConfig.Documents)
	scheduler := services.NewReminderScheduler(
		store,
		dispatcher,
		config.AppConfig.ReminderRetryInterval,
		logging.Logger,
	)
	locker := storage.NewRedisLocker(config.Redis)

	worker := services.NewTickWorker(
		store,
		folders,
		reconciler,
		machine,
		scheduler,
		locker,
		config.AppConfig.TickInterval,
		config.AppConfig.TickParallelism,
		config.AppConfig.CandidateLockTTL,
		logging.Logger,
	)

	// Start tick worker
	worker.Start()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logging.Logger.Info("Shutdown signal received")

	// Stop tick worker
	worker.Stop()

	logging.Logger.Info("Onboarding Scheduler stopped")
}
