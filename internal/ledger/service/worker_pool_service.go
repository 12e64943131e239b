package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolLedgerService bounds the number of sales holding a database
// connection at once. Reads bypass the pool.
//
// A sale waits for a free worker only as long as its context allows.
type WorkerPoolLedgerService struct {
	baseService LedgerService
	pool        *ants.Pool
	slots       chan struct{} // nil when the pool is unbounded
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

type sellOutcome struct {
	result *SellResult
	err    error
}

func NewWorkerPoolLedgerService(
	baseService LedgerService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolLedgerService, error) {
	// slots admit at most Size sales, so Submit only waits for a finishing worker to return
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	var slots chan struct{}
	if config.Size > 0 {
		slots = make(chan struct{}, config.Size)
	}

	return &WorkerPoolLedgerService{
		baseService: baseService,
		pool:        pool,
		slots:       slots,
		logger:      logger,
	}, nil
}

// Sell runs the sale on a pool worker and waits for its outcome. Giving up on a
// worker or on the outcome because ctx ended is reported as
// shared.ErrStorageUnavailable wrapping the context error.
func (s *WorkerPoolLedgerService) Sell(ctx context.Context, request *shared.SellRequest) (*SellResult, error) {
	if err := s.acquire(ctx); err != nil {
		s.logger.Warn("Sale gave up waiting for a worker",
			"transaction_id", request.TransactionID,
			"item_id", request.ItemID,
			"error", err,
		)
		return nil, fmt.Errorf("%w: waiting for a worker: %w", shared.ErrStorageUnavailable, err)
	}

	requestCopy := *request
	outcome := make(chan sellOutcome, 1)

	err := s.pool.Submit(func() {
		defer s.release()
		if err := ctx.Err(); err != nil {
			outcome <- sellOutcome{err: err}
			return
		}
		result, err := s.baseService.Sell(ctx, &requestCopy)
		outcome <- sellOutcome{result: result, err: err}
	})
	if err != nil {
		s.release()
		s.logger.Error("Failed to submit sale to worker pool",
			"transaction_id", request.TransactionID,
			"item_id", request.ItemID,
			"error", err,
		)
		return nil, fmt.Errorf("%w: failed to schedule sale: %w", shared.ErrStorageUnavailable, err)
	}

	select {
	case o := <-outcome:
		return o.result, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for sale outcome: %w", shared.ErrStorageUnavailable, ctx.Err())
	}
}

func (s *WorkerPoolLedgerService) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil || s.slots == nil {
		return err
	}
	select {
	case s.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *WorkerPoolLedgerService) release() {
	if s.slots != nil {
		<-s.slots
	}
}

func (s *WorkerPoolLedgerService) GetItem(ctx context.Context, itemID int64) (*item.Item, error) {
	return s.baseService.GetItem(ctx, itemID)
}

func (s *WorkerPoolLedgerService) ListSales(ctx context.Context, itemID int64) ([]*sale.Entry, error) {
	return s.baseService.ListSales(ctx, itemID)
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolLedgerService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolLedgerService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolLedgerService) Capacity() int {
	return s.pool.Cap()
}
