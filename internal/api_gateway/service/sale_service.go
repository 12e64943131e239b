package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/domain/shared"
	ledger "github.com/inventory-sales-ledger/internal/ledger/service"
	"github.com/inventory-sales-ledger/internal/platform/messaging/producers"
)

// SaleServiceImpl implements the SaleService interface
type SaleServiceImpl struct {
	ledger   ledger.LedgerService
	saleRepo sale.Repository
	producer producers.MessagePublisher
	cache    ItemCache
	logger   *slog.Logger
}

// NewSaleService creates a new sale service. cache may be nil.
func NewSaleService(
	logger *slog.Logger,
	ledgerService ledger.LedgerService,
	saleRepo sale.Repository,
	producer producers.MessagePublisher,
	cache ItemCache,
) SaleService {
	return &SaleServiceImpl{
		ledger:   ledgerService,
		saleRepo: saleRepo,
		producer: producer,
		cache:    cache,
		logger:   logger,
	}
}

func (s *SaleServiceImpl) Sell(ctx context.Context, request *shared.SellRequest) (*ledger.SellResult, error) {
	result, err := s.ledger.Sell(ctx, request)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, request.ItemID); err != nil {
			s.logger.Warn("Item cache invalidation failed", "item_id", request.ItemID, "error", err)
		}
	}
	return result, nil
}

func (s *SaleServiceImpl) ListItemSales(ctx context.Context, itemID int64) ([]*sale.Entry, error) {
	return s.ledger.ListSales(ctx, itemID)
}

func (s *SaleServiceImpl) ListHistory(ctx context.Context, skip, limit int) ([]*sale.HistoryEntry, int64, error) {
	entries, err := s.saleRepo.ListHistory(ctx, limit, skip)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.saleRepo.CountAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// SubmitCheckout validates every line before publishing any of them. Each line is
// keyed by item id so commands for one item keep their order.
func (s *SaleServiceImpl) SubmitCheckout(ctx context.Context, checkout Checkout) error {
	if len(checkout.Lines) == 0 {
		return ErrEmptyCheckout
	}

	now := time.Now().UTC()
	seen := make(map[int64]struct{}, len(checkout.Lines))
	requests := make([]*shared.SellRequest, 0, len(checkout.Lines))
	for _, line := range checkout.Lines {
		if _, dup := seen[line.ItemID]; dup {
			return fmt.Errorf("%w: item %d", ErrDuplicateCheckoutLine, line.ItemID)
		}
		seen[line.ItemID] = struct{}{}

		req := &shared.SellRequest{
			ItemID:        line.ItemID,
			Quantity:      line.Quantity,
			TransactionID: checkout.TransactionID,
			CorrelationID: checkout.CorrelationID,
			RequestedAt:   now,
		}
		if err := req.Validate(); err != nil {
			return err
		}
		requests = append(requests, req)
	}

	for i, req := range requests {
		if err := s.producer.Publish(ctx, strconv.FormatInt(req.ItemID, 10), req); err != nil {
			s.logger.Error("Checkout partially published",
				"transaction_id", checkout.TransactionID,
				"published_lines", i,
				"total_lines", len(requests),
				"error", err,
			)
			return fmt.Errorf("%w: publish sell command for item %d: %w", shared.ErrStorageUnavailable, req.ItemID, err)
		}
	}

	s.logger.Info("Checkout submitted", "transaction_id", checkout.TransactionID, "lines", len(requests))
	return nil
}
