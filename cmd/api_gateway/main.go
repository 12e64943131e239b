package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"github.com/inventory-sales-ledger/internal/api_gateway"
	"github.com/inventory-sales-ledger/internal/api_gateway/service"
	"github.com/inventory-sales-ledger/internal/config"
	"github.com/inventory-sales-ledger/internal/data/mongo"
	"github.com/inventory-sales-ledger/internal/data/postgres"
	"github.com/inventory-sales-ledger/internal/data/redis"
	"github.com/inventory-sales-ledger/internal/ledger/components"
	"github.com/inventory-sales-ledger/internal/logger"
	"github.com/inventory-sales-ledger/internal/platform/messaging/producers"
	"github.com/inventory-sales-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	// Applies pending migrations before the pool is opened
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// The cache is optional; an interface holding a nil *ItemCache would not compare equal to nil
	var itemCache service.ItemCache
	var redisClient *goredis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = persistence.NewRedisClient(appCtx, log, &cfg.Redis)
		if err != nil {
			log.Error("Failed to initialize Redis", "error", err)
			os.Exit(1)
		}
		itemCache = redis.NewItemCache(log, redisClient, cfg.Redis.ItemTTL)
	} else {
		log.Info("Item cache disabled, REDIS_ADDR is empty")
	}

	sellProducer, err := producers.NewSellCommandProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize sell command producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	itemRepo := postgres.NewItemRepository(log, postgresDB)
	saleRepo := postgres.NewSaleRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	reportRepo := mongo.NewReportRepository(log, mongoDB.Database())
	if err := reportRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to create report indexes", "error", err)
		os.Exit(1)
	}

	// Synchronous sells run the same engine as the sale processor
	ledgerService, releaseLedger := components.CreateLedgerService(postgresDB, itemRepo, saleRepo, outboxRepo, log, cfg)

	itemService := service.NewItemService(log, itemRepo, saleRepo, ledgerService, itemCache)
	saleService := service.NewSaleService(log, ledgerService, saleRepo, sellProducer, itemCache)
	reportService := service.NewReportService(log, reportRepo, outboxRepo, cfg.Report.CurrencyExponent)

	server := api_gateway.NewServer(log, cfg, itemService, saleService, reportService)

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Stop accepting requests before the pool and connections they use go away
	var shutdownErr error
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		shutdownErr = err
	}

	releaseLedger()
	postgresDB.Close()

	if err := sellProducer.Close(); err != nil {
		log.Error("Error closing sell command producer", "error", err)
		shutdownErr = err
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", "error", err)
			shutdownErr = err
		}
	}

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
		shutdownErr = err
	}

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if shutdownErr != nil {
		log.Error("Server shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Server shutdown completed successfully")
}
