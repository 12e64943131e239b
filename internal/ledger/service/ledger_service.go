package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
)

type LedgerServiceImpl struct {
	db            TxRunner
	itemRepo      item.Repository
	saleRepo      sale.Repository
	validator     SellValidator
	stockManager  StockManager
	saleRecorder  SaleRecorder
	outboxManager OutboxManager
	logger        *slog.Logger
	clock         func() time.Time
}

func NewLedgerService(
	db TxRunner,
	itemRepo item.Repository,
	saleRepo sale.Repository,
	validator SellValidator,
	stockManager StockManager,
	saleRecorder SaleRecorder,
	outboxManager OutboxManager,
	logger *slog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		db:            db,
		itemRepo:      itemRepo,
		saleRepo:      saleRepo,
		validator:     validator,
		stockManager:  stockManager,
		saleRecorder:  saleRecorder,
		outboxManager: outboxManager,
		logger:        logger,
		clock:         time.Now,
	}
}

// Sell applies one sale of request.Quantity units. The item row stays locked from the
// duplicate check until commit, so sales of one item are applied one at a time and a
// (transaction, item) pair is applied at most once. Nothing is written unless every step
// succeeds.
func (s *LedgerServiceImpl) Sell(ctx context.Context, request *shared.SellRequest) (*SellResult, error) {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}
	logger = logger.With("transaction_id", request.TransactionID, "item_id", request.ItemID)

	if err := s.validator.Validate(ctx, request); err != nil {
		return nil, err
	}

	var result *SellResult
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		locked, err := s.stockManager.LockItem(ctx, tx, request.ItemID)
		if err != nil {
			return err
		}

		if err := s.validator.CheckDuplicate(ctx, tx, request); err != nil {
			return err
		}

		if !locked.CanSell(request.Quantity) {
			logger.Info("Sale refused, insufficient stock",
				"requested", request.Quantity,
				"on_hand", locked.QuantityOnHand,
			)
			return fmt.Errorf("item %d has %d on hand, %d requested: %w",
				locked.ID, locked.QuantityOnHand, request.Quantity, item.ErrInsufficientStock)
		}

		soldAt := s.clock().UTC()
		updated, err := s.stockManager.Decrement(ctx, tx, request.ItemID, request.Quantity, soldAt)
		if err != nil {
			return err
		}

		entry, err := s.saleRecorder.RecordSale(ctx, tx, request, locked.Price, soldAt)
		if err != nil {
			return err
		}

		if err := s.outboxManager.CreateOutboxEntry(ctx, tx, entry, locked.Name, request.CorrelationID); err != nil {
			return err
		}

		result = &SellResult{
			RemainingStock: updated.QuantityOnHand,
			TotalSold:      updated.SoldCount,
			SaleEntryID:    entry.ID,
			Entry:          entry,
		}
		return nil
	})
	if err != nil {
		logger.Warn("Sale not applied", "quantity", request.Quantity, "error", err)
		return nil, err
	}

	logger.Info("Sale applied",
		"sale_entry_id", result.SaleEntryID.String(),
		"quantity", request.Quantity,
		"remaining_stock", result.RemainingStock,
	)
	return result, nil
}

func (s *LedgerServiceImpl) GetItem(ctx context.Context, itemID int64) (*item.Item, error) {
	return s.itemRepo.GetByID(ctx, itemID)
}

// ListSales returns the item's sale entries oldest first
func (s *LedgerServiceImpl) ListSales(ctx context.Context, itemID int64) ([]*sale.Entry, error) {
	if _, err := s.itemRepo.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.saleRepo.ListByItem(ctx, itemID)
}
