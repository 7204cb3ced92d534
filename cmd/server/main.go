package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/cache"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/config"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/database"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/logging"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/repository"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/routes"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/services"
	receiptws "github.com/Kalyaneluri-21/Payout-Automation/internal/websocket"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Session store
	accessor, payoutService, closeStore, err := buildPayoutService(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to set up session store", zap.Error(err))
	}
	defer closeStore()

	// 3. Post-commit listeners
	var summaryCache services.SummaryCache
	if cfg.CacheEnabled() {
		redisClient, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			zapLogger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()

		redisCache := cache.NewSummaryCache(redisClient, cfg.SummaryCacheTTL)
		summaryCache = redisCache
		payoutService.AddListener(redisCache)
	}

	hub := receiptws.NewHub(zapLogger.Named("ws"))
	go hub.Run(ctx)
	payoutService.AddListener(hub)

	if cfg.ArchiveEnabled() {
		archive, err := services.NewS3ReceiptArchive(ctx, services.ArchiveConfig{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			zapLogger.Fatal("failed to configure receipt archive", zap.Error(err))
		}
		payoutService.AddListener(archive)
	}

	dashboardService := services.NewDashboardService(accessor, summaryCache, zapLogger.Named("dashboard"))

	// 4. Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	if err := routes.RegisterRoutes(app, cfg, routes.Dependencies{
		Payout:    payoutService,
		Dashboard: dashboardService,
		Hub:       hub,
	}); err != nil {
		zapLogger.Fatal("failed to register routes", zap.Error(err))
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			zapLogger.Error("server shutdown failed", zap.Error(err))
		}
	}()

	// 5. Start Server
	zapLogger.Info("server starting", zap.String("port", cfg.Port), zap.String("store_driver", cfg.StoreDriver))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zapLogger.Error("server stopped", zap.Error(err))
	}
}

// buildPayoutService wires the accessor and payout service to the configured
// store driver.
func buildPayoutService(
	ctx context.Context,
	cfg *config.Config,
	zapLogger *zap.Logger,
) (*services.SessionAccessor, *services.PayoutService, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		store := repository.NewMemoryStore()
		if cfg.SeedFile != "" {
			count, err := store.LoadSeedFile(cfg.SeedFile)
			if err != nil {
				return nil, nil, nil, err
			}
			zapLogger.Info("seeded memory store", zap.Int("sessions", count))
		}

		accessor := services.NewSessionAccessor(store.Sessions(), zapLogger.Named("accessor"))
		return accessor, services.NewPayoutService(
			accessor,
			store.Receipts(),
			store,
			store.Overrides(),
			zapLogger.Named("payout"),
		), func() {}, nil
	}

	pool, err := database.Connect(ctx, cfg.DBUrl)
	if err != nil {
		return nil, nil, nil, err
	}

	accessor := services.NewSessionAccessor(repository.NewSessionRepository(pool), zapLogger.Named("accessor"))
	return accessor, services.NewPayoutService(
		accessor,
		repository.NewReceiptRepository(pool),
		repository.NewReceiptWriter(pool),
		repository.NewOverrideRepository(pool),
		zapLogger.Named("payout"),
	), pool.Close, nil
}
