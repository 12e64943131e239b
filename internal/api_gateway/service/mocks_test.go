package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/inventory-sales-ledger/internal/domain/outbox"
	"github.com/inventory-sales-ledger/internal/domain/report"
	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/domain/shared"
	ledger "github.com/inventory-sales-ledger/internal/ledger/service"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, it *item.Item) error {
	args := m.Called(ctx, it)
	if args.Error(0) == nil {
		it.ID = 42
	}
	return args.Error(0)
}

func (m *MockItemRepository) GetByID(ctx context.Context, id int64) (*item.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemRepository) GetByName(ctx context.Context, name string) (*item.Item, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemRepository) List(ctx context.Context, filter item.ListFilter) ([]*item.Item, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*item.Item), args.Error(1)
}

func (m *MockItemRepository) Update(ctx context.Context, it *item.Item) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepository) LockForUpdate(ctx context.Context, id int64) (*item.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemRepository) DecrementStock(ctx context.Context, id int64, quantity int64, saleDate time.Time) (*item.Item, error) {
	args := m.Called(ctx, id, quantity, saleDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemRepository) WithTx(tx pgx.Tx) item.Repository {
	return m
}

type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Append(ctx context.Context, entry *sale.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockSaleRepository) FindByTransactionAndItem(ctx context.Context, transactionID string, itemID int64) (*sale.Entry, error) {
	args := m.Called(ctx, transactionID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Entry), args.Error(1)
}

func (m *MockSaleRepository) ListByItem(ctx context.Context, itemID int64) ([]*sale.Entry, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sale.Entry), args.Error(1)
}

func (m *MockSaleRepository) CountByItem(ctx context.Context, itemID int64) (int64, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) ListHistory(ctx context.Context, limit, offset int) ([]*sale.HistoryEntry, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sale.HistoryEntry), args.Error(1)
}

func (m *MockSaleRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) WithTx(tx pgx.Tx) sale.Repository {
	return m
}

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Sell(ctx context.Context, request *shared.SellRequest) (*ledger.SellResult, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.SellResult), args.Error(1)
}

func (m *MockLedgerService) GetItem(ctx context.Context, id int64) (*item.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockLedgerService) ListSales(ctx context.Context, itemID int64) ([]*sale.Entry, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sale.Entry), args.Error(1)
}

type MockItemCache struct {
	mock.Mock
}

func (m *MockItemCache) Get(ctx context.Context, id int64) (*item.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemCache) Set(ctx context.Context, it *item.Item) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *MockItemCache) Invalidate(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) UpsertSale(ctx context.Context, record *report.SaleRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockReportRepository) GetSale(ctx context.Context, saleEntryID uuid.UUID) (*report.SaleRecord, error) {
	args := m.Called(ctx, saleEntryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.SaleRecord), args.Error(1)
}

func (m *MockReportRepository) SummarizeByItem(ctx context.Context, from, to time.Time) ([]*report.ItemSummary, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*report.ItemSummary), args.Error(1)
}

func (m *MockReportRepository) RecordRejection(ctx context.Context, rejection *report.Rejection) error {
	args := m.Called(ctx, rejection)
	return args.Error(0)
}

func (m *MockReportRepository) ListRejections(ctx context.Context, transactionID string) ([]*report.Rejection, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*report.Rejection), args.Error(1)
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepository) GetBySaleEntryID(ctx context.Context, saleEntryID uuid.UUID) (*outbox.Message, error) {
	args := m.Called(ctx, saleEntryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}
