package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mylittlethingz/backend/internal/application/recommend"
	"github.com/mylittlethingz/backend/internal/application/training"
	"github.com/mylittlethingz/backend/internal/domain/shipping"
	"github.com/mylittlethingz/backend/internal/infrastructure/config"
	"github.com/mylittlethingz/backend/internal/infrastructure/logger"
	"github.com/mylittlethingz/backend/internal/infrastructure/persistence"
	"github.com/mylittlethingz/backend/internal/ml/bayes"
	"github.com/mylittlethingz/backend/internal/ml/knn"
	"github.com/mylittlethingz/backend/internal/ml/linear"
)

func main() {
	var (
		logLevel  string
		limit     int
		occasion  string
		category  string
		giftType  string
		price     float64
		cartTotal float64
		payment   string
		weight    float64
	)
	flag.StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flag.IntVar(&limit, "limit", 10, "Maximum results for recommend and similar")
	flag.StringVar(&occasion, "occasion", "", "Occasion for addon rules (birthday, anniversary, ...)")
	flag.StringVar(&category, "category", "", "Gift category for addon rules")
	flag.StringVar(&giftType, "gift-type", "", "Gift type for addon rules")
	flag.Float64Var(&price, "price", 0, "Gift price for addon rules")
	flag.Float64Var(&cartTotal, "cart-total", 0, "Cart total for addon rules")
	flag.StringVar(&payment, "payment", "prepaid", "Payment method for courier ranking (prepaid, cod)")
	flag.Float64Var(&weight, "weight", 0.5, "Shipment weight in kg for courier ranking")
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
	// Keep stdout clean for the JSON result
	cfg.Log.Output = "stderr"

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

	items := persistence.NewGormItemRepository(db.DB)
	interactions := persistence.NewGormInteractionRepository(db.DB)
	models := persistence.NewGormModelRecordRepository(db.DB)

	couriers, err := newCourierScorer(cfg.CourierScorer, log)
	if err != nil {
		log.Fatal("Failed to configure courier scorer", zap.Error(err))
	}

	svc := recommend.NewService(
		items, interactions,
		training.NewService(items, interactions, models, cfg.Training, log),
		knn.NewRecommender(items, interactions, knn.DefaultConfig()),
		linear.NewClassifier(linear.DefaultWeights()),
		couriers,
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case "engines":
		printJSON(log, svc.Engines())

	case "recommend":
		userID := parseID(log, args, "recommend <user-id>")
		result, err := svc.RecommendForUser(ctx, userID, limit)
		if err != nil {
			log.Fatal("Recommendation failed", zap.Error(err))
		}
		printJSON(log, result)

	case "similar":
		itemID := parseID(log, args, "similar <item-id>")
		result, err := svc.SimilarItems(ctx, itemID, limit)
		if err != nil {
			log.Fatal("Similarity lookup failed", zap.Error(err))
		}
		printJSON(log, result)

	case "classify":
		itemID := parseID(log, args, "classify <item-id>")
		result, err := svc.ClassifyGift(ctx, itemID)
		if err != nil {
			log.Fatal("Classification failed", zap.Error(err))
		}
		printJSON(log, result)

	case "addons":
		input := recommend.AddonInput{
			Price:     decimal.NewFromFloat(price),
			CartTotal: decimal.NewFromFloat(cartTotal),
			Occasion:  occasion,
			Category:  category,
			GiftType:  giftType,
			At:        time.Now(),
		}
		printJSON(log, map[string]any{
			"rules":  svc.SuggestAddons(input),
			"ladder": svc.CartAddons(input),
		})

	case "couriers":
		options, err := readCourierOptions(os.Stdin)
		if err != nil {
			log.Fatal("Failed to read courier options", zap.Error(err))
		}
		order := shipping.ShipmentOrder{
			PaymentMethod: shipping.PaymentMethod(payment),
			WeightKg:      weight,
		}
		printJSON(log, svc.RankCouriers(ctx, order, options))

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

// newCourierScorer wires the optional external delegate from config
func newCourierScorer(cfg config.CourierScorerConfig, log *zap.Logger) (*bayes.Scorer, error) {
	var external *bayes.ExternalClient
	if cfg.Endpoint != "" {
		client, err := bayes.NewExternalClient(bayes.ExternalConfig{
			Endpoint:       cfg.Endpoint,
			TimeoutSeconds: cfg.TimeoutSeconds,
		})
		if err != nil {
			return nil, err
		}
		external = client
	}
	return bayes.NewScorer(external, bayes.Config{Blend: cfg.Blend}, log), nil
}

// readCourierOptions decodes a JSON array of courier options from stdin
func readCourierOptions(r io.Reader) ([]shipping.CourierOption, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var options []shipping.CourierOption
	if err := json.Unmarshal(payload, &options); err != nil {
		return nil, err
	}
	return options, nil
}

func parseID(log *zap.Logger, args []string, usage string) uuid.UUID {
	if len(args) < 2 {
		log.Fatal("Missing argument", zap.String("usage", usage))
	}
	id, err := uuid.Parse(args[1])
	if err != nil {
		log.Fatal("Invalid UUID", zap.String("value", args[1]))
	}
	return id
}

func printJSON(log *zap.Logger, v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal("Failed to encode result", zap.Error(err))
	}
	fmt.Println(string(out))
}

func printUsage() {
	fmt.Println(`My Little Thingz Scoring CLI

Usage:
  scorer [flags] <command> [arguments]

Commands:
  recommend <user-id>   Rank gifts for a user (model, similarity, popularity)
  similar <item-id>     List items similar to the given one
  classify <item-id>    Classify a gift as Premium or Budget
  addons                Evaluate add-on rules (see occasion/price flags)
  couriers              Rank courier options read as JSON from stdin
  engines               List the wired scoring engines

Flags:
  -limit int            Maximum results for recommend and similar (default 10)
  -occasion string      Occasion for addon rules
  -category string      Gift category for addon rules
  -gift-type string     Gift type for addon rules
  -price float          Gift price for addon rules
  -cart-total float     Cart total for addon rules
  -payment string       Payment method for courier ranking (default prepaid)
  -weight float         Shipment weight in kg (default 0.5)
  -log-level string     Log level override: debug, info, warn, error

Configuration:
  Reads config.toml from the working directory or /app. Every key can
  be overridden with MLT_-prefixed environment variables.`)
}
