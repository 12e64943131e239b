package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
)

// SellResult is the outcome of an applied sale
type SellResult struct {
	RemainingStock int64
	TotalSold      int64
	SaleEntryID    uuid.UUID
	Entry          *sale.Entry
}

// LedgerService records sales against item stock
type LedgerService interface {
	Sell(ctx context.Context, request *shared.SellRequest) (*SellResult, error)
	GetItem(ctx context.Context, itemID int64) (*item.Item, error)
	ListSales(ctx context.Context, itemID int64) ([]*sale.Entry, error)
}

// TxRunner runs fn inside a database transaction, committing only when fn returns nil
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// SellValidator checks sell requests before and inside the sale transaction
type SellValidator interface {
	Validate(ctx context.Context, request *shared.SellRequest) error
	CheckDuplicate(ctx context.Context, tx pgx.Tx, request *shared.SellRequest) error
}

// StockManager locks and decrements item stock inside the sale transaction
type StockManager interface {
	LockItem(ctx context.Context, tx pgx.Tx, itemID int64) (*item.Item, error)
	Decrement(ctx context.Context, tx pgx.Tx, itemID, quantity int64, soldAt time.Time) (*item.Item, error)
}

// SaleRecorder appends the sale entry with the price frozen at sale time
type SaleRecorder interface {
	RecordSale(ctx context.Context, tx pgx.Tx, request *shared.SellRequest, unitPrice int64, soldAt time.Time) (*sale.Entry, error)
}

// OutboxManager queues a committed sale for the report projection
type OutboxManager interface {
	CreateOutboxEntry(ctx context.Context, tx pgx.Tx, entry *sale.Entry, itemName, correlationID string) error
}

// RejectionRecorder keeps a record of sell commands that were consumed but not applied
type RejectionRecorder interface {
	RecordRejection(ctx context.Context, request *shared.SellRequest, cause error) error
}
