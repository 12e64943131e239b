package components

import (
	"log/slog"

	"github.com/inventory-sales-ledger/internal/config"
	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/inventory-sales-ledger/internal/domain/outbox"
	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/ledger/service"
)

// CreateLedgerService wires the ledger engine behind a worker pool of cfg.WorkerPool.Size.
// The returned release func stops the pool and must be called on shutdown.
func CreateLedgerService(
	db service.TxRunner,
	itemRepo item.Repository,
	saleRepo sale.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) (service.LedgerService, func()) {
	baseService := service.NewLedgerService(
		db,
		itemRepo,
		saleRepo,
		NewSellValidator(saleRepo, logger),
		NewStockManager(itemRepo, logger),
		NewSaleRecorder(saleRepo, logger),
		NewOutboxManager(outboxRepo, logger),
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolLedgerService(
		baseService,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool, falling back to base ledger service", "error", err)
		return baseService, func() {}
	}

	logger.Info("Created worker pool ledger service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService, workerPoolService.Shutdown
}
