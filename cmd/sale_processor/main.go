package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/inventory-sales-ledger/internal/config"
	"github.com/inventory-sales-ledger/internal/data/mongo"
	"github.com/inventory-sales-ledger/internal/data/postgres"
	"github.com/inventory-sales-ledger/internal/ledger/components"
	"github.com/inventory-sales-ledger/internal/ledger/consumer"
	"github.com/inventory-sales-ledger/internal/ledger/outbox_poller"
	"github.com/inventory-sales-ledger/internal/logger"
	"github.com/inventory-sales-ledger/internal/platform/messaging/consumers"
	"github.com/inventory-sales-ledger/internal/platform/messaging/producers"
	"github.com/inventory-sales-ledger/internal/platform/persistence"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("sale_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Sale Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

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

	// Initialize repositories
	itemRepo := postgres.NewItemRepository(log, postgresDB)
	saleRepo := postgres.NewSaleRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	reportRepo := mongo.NewReportRepository(log, mongoDB.Database())
	if err := reportRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to create report indexes", "error", err)
		os.Exit(1)
	}

	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// A nil *DLQProducer must not be stored in the interface, the handler checks for a nil interface
	var deadLetters producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetters = dlqProducer
	} else {
		log.Warn("No DLQ topic configured, undecodable sell commands will be dropped")
	}

	ledgerService, releaseLedger := components.CreateLedgerService(postgresDB, itemRepo, saleRepo, outboxRepo, log, cfg)

	sellCommandHandler := consumer.NewSellCommandHandler(
		log,
		ledgerService,
		saleRepo,
		components.NewRejectionRecorder(reportRepo, log),
		deadLetters,
	)

	reportPublisher := outbox_poller.NewReportPublisher(outboxRepo, reportRepo, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, reportPublisher, log)

	errChan := make(chan error, 1)
	var wg sync.WaitGroup

	log.Info("Starting Kafka consumer",
		"topic", cfg.Kafka.SellTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := kafkaConsumer.Subscribe(appCtx, sellCommandHandler.HandleMessage); err != nil {
		log.Error("Failed to subscribe to sell commands", "error", err)
		os.Exit(1)
	}
	go func() {
		<-kafkaConsumer.Done()
		if appCtx.Err() == nil {
			errChan <- fmt.Errorf("kafka consumer stopped unexpectedly")
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Outbox Poller",
			"interval", cfg.Outbox.PollingInterval.String(),
			"batch_size", cfg.Outbox.BatchSize,
		)
		poller.Start(appCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// The consumer loop finishes its current message before Done closes
	wgChan := make(chan struct{})
	go func() {
		<-kafkaConsumer.Done()
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	releaseLedger()

	var shutdownErr error
	if dlqProducer != nil {
		if err := dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
			shutdownErr = err
		}
	}

	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
		shutdownErr = err
	}

	postgresDB.Close()

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
		shutdownErr = err
	}

	if serviceErr != nil {
		log.Error("Sale Processor shutdown with errors", "error", serviceErr)
	}
	if shutdownErr != nil {
		log.Error("Sale Processor shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Sale Processor shutdown completed successfully")
}
