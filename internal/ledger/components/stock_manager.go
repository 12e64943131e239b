package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/inventory-sales-ledger/internal/ledger/service"
	"github.com/jackc/pgx/v5"
)

type StockManagerImpl struct {
	itemRepo item.Repository
	logger   *slog.Logger
}

func NewStockManager(itemRepo item.Repository, logger *slog.Logger) service.StockManager {
	return &StockManagerImpl{
		itemRepo: itemRepo,
		logger:   logger,
	}
}

// LockItem takes the row lock that serializes sales of the item until tx ends
func (m *StockManagerImpl) LockItem(ctx context.Context, tx pgx.Tx, itemID int64) (*item.Item, error) {
	locked, err := m.itemRepo.WithTx(tx).LockForUpdate(ctx, itemID)
	if err != nil {
		if errors.Is(err, item.ErrItemNotFound{ItemID: itemID}) {
			m.logger.Info("Item not found for lock", "item_id", itemID)
			return nil, err
		}
		m.logger.Error("Failed to lock item", "item_id", itemID, "error", err)
		return nil, fmt.Errorf("failed to lock item %d: %w", itemID, err)
	}

	m.logger.Debug("Item locked", "item_id", locked.ID, "on_hand", locked.QuantityOnHand, "price", locked.Price)
	return locked, nil
}

// Decrement removes quantity units from the locked item and returns its new state
func (m *StockManagerImpl) Decrement(ctx context.Context, tx pgx.Tx, itemID, quantity int64, soldAt time.Time) (*item.Item, error) {
	updated, err := m.itemRepo.WithTx(tx).DecrementStock(ctx, itemID, quantity, soldAt)
	if err != nil {
		if errors.Is(err, item.ErrInsufficientStock) || errors.Is(err, item.ErrItemNotFound{ItemID: itemID}) {
			return nil, err
		}
		m.logger.Error("Failed to decrement stock", "item_id", itemID, "quantity", quantity, "error", err)
		return nil, fmt.Errorf("failed to decrement stock of item %d: %w", itemID, err)
	}

	m.logger.Debug("Stock decremented", "item_id", itemID, "on_hand", updated.QuantityOnHand, "sold_count", updated.SoldCount)
	return updated, nil
}
