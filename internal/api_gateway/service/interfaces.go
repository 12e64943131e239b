package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/inventory-sales-ledger/internal/domain/report"
	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/domain/shared"
	ledger "github.com/inventory-sales-ledger/internal/ledger/service"
	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateCheckoutLine = errors.New("checkout lists the same item more than once")
	ErrEmptyCheckout         = errors.New("checkout has no lines")
	ErrInvalidReportRange    = errors.New("report range start must be before its end")
	ErrSaleNotFound          = errors.New("sale not found")
)

// ItemService defines item registration and maintenance operations
type ItemService interface {
	// RegisterItem returns item.ErrDuplicateName if the name is taken
	RegisterItem(ctx context.Context, input RegisterItemInput) (*item.Item, error)

	// GetItem reads through the item cache when one is configured
	GetItem(ctx context.Context, id int64) (*item.Item, error)

	// ListItems returns one page of items ordered by size label, then id, and the
	// number of items matching filter
	ListItems(ctx context.Context, filter item.ListFilter, skip, limit int) ([]*item.Item, int, error)
	EditItem(ctx context.Context, id int64, edit item.Edit) (*item.Item, error)

	// DeleteItem returns item.ErrItemHasSales if any sale references the item
	DeleteItem(ctx context.Context, id int64) error
}

// SaleService defines sale recording and history operations
type SaleService interface {
	Sell(ctx context.Context, request *shared.SellRequest) (*ledger.SellResult, error)
	ListItemSales(ctx context.Context, itemID int64) ([]*sale.Entry, error)
	ListHistory(ctx context.Context, skip, limit int) ([]*sale.HistoryEntry, int64, error)

	// SubmitCheckout publishes one sell command per line for asynchronous processing
	SubmitCheckout(ctx context.Context, checkout Checkout) error
}

// ReportService builds reports from the sales projection
type ReportService interface {
	SalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error)

	// ProjectedSale returns report.ErrRecordNotFound while a committed sale waits for the
	// poller, and ErrSaleNotFound when no sale has the id
	ProjectedSale(ctx context.Context, saleEntryID uuid.UUID) (*report.SaleRecord, error)
	Rejections(ctx context.Context, transactionID string) ([]*report.Rejection, error)
}

// ItemCache is a read cache of items keyed by id
type ItemCache interface {
	Get(ctx context.Context, id int64) (*item.Item, error)
	Set(ctx context.Context, it *item.Item) error
	Invalidate(ctx context.Context, id int64) error
}

type RegisterItemInput struct {
	Name       string
	Price      int64
	Quantity   int64
	Location   string
	Category   *string
	AcquiredOn time.Time
}

type CheckoutLine struct {
	ItemID   int64
	Quantity int64
}

// Checkout is a multi-item sale sharing one transaction id
type Checkout struct {
	TransactionID string
	CorrelationID string
	Lines         []CheckoutLine
}

// ItemSales is one row of the sales summary; Revenue is in major currency units
type ItemSales struct {
	ItemID       int64           `json:"item_id"`
	ItemName     string          `json:"item_name"`
	UnitsSold    int64           `json:"units_sold"`
	Transactions int64           `json:"transactions"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type SalesSummary struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	Items        []ItemSales     `json:"items"`
	UnitsSold    int64           `json:"units_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}
