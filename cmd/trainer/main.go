package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mylittlethingz/backend/internal/application/training"
	"github.com/mylittlethingz/backend/internal/domain/shared"
	"github.com/mylittlethingz/backend/internal/infrastructure/config"
	"github.com/mylittlethingz/backend/internal/infrastructure/logger"
	"github.com/mylittlethingz/backend/internal/infrastructure/persistence"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database,
		logger.NewGormLogger(log, gormlogger.Warn))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()
	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}

	items := persistence.NewGormItemRepository(db.DB)
	interactions := persistence.NewGormInteractionRepository(db.DB)
	models := persistence.NewGormModelRecordRepository(db.DB)
	svc := training.NewService(items, interactions, models, cfg.Training, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, log = withJob(ctx, log, cfg.Training.ModelName)

	switch command {
	case "train":
		result, err := svc.TrainModel(ctx)
		if err != nil {
			exitOnTrainingError(log, "Training failed", err)
		}
		reportResult(log, result)

	case "retrain":
		result, err := svc.RetrainModel(ctx)
		if err != nil {
			exitOnTrainingError(log, "Retraining failed", err)
		}
		reportResult(log, result)

	case "cleanup":
		deleted, err := svc.CleanupOldModels(ctx)
		if err != nil {
			log.Fatal("Cleanup failed", zap.Error(err))
		}
		log.Info("Cleanup finished", zap.Int64("deleted", deleted))

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

// withJob tags the run with a fresh job ID and the model name
func withJob(ctx context.Context, log *zap.Logger, modelName string) (context.Context, *zap.Logger) {
	ctx, log = logger.WithJobID(ctx, log, uuid.NewString())
	return logger.WithModelName(ctx, log, modelName)
}

// exitOnTrainingError distinguishes the expected insufficient-data case
// from real failures
func exitOnTrainingError(log *zap.Logger, msg string, err error) {
	if errors.Is(err, shared.ErrInsufficientData) {
		log.Warn("Not enough interaction data yet, skipping run", zap.Error(err))
		os.Exit(0)
	}
	log.Fatal(msg, zap.Error(err))
}

func reportResult(log *zap.Logger, result *training.Result) {
	log.Info("Training run finished",
		zap.String("outcome", string(result.Outcome)),
		zap.Int("version", result.Version),
		zap.Float64("validation_accuracy", result.Metrics.ValidationAccuracy),
		zap.Float64("validation_loss", result.Metrics.ValidationLoss),
		zap.Int("epochs", result.Metrics.Epochs),
		zap.Int("samples", result.Metrics.SampleCount),
		zap.Bool("stopped_early", result.StoppedEarly),
	)
}

func printUsage() {
	fmt.Println(`My Little Thingz Model Trainer

Usage:
  trainer [flags] <command>

Commands:
  train     Train a new model version and activate it
  retrain   Train a new version, keep the old one if accuracy regresses
  cleanup   Delete old model versions beyond the retention count

Flags:
  -log-level string   Log level override: debug, info, warn, error

Configuration:
  Reads config.toml from the working directory or /app. Every key can
  be overridden with MLT_-prefixed environment variables, for example
  MLT_DATABASE_HOST or MLT_TRAINING_EPOCHS.`)
}
