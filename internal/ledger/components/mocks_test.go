package components

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/inventory-sales-ledger/internal/domain/outbox"
	"github.com/inventory-sales-ledger/internal/domain/report"
	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) Create(ctx context.Context, it *item.Item) error {
	return m.Called(ctx, it).Error(0)
}

func (m *MockItemRepo) GetByID(ctx context.Context, id int64) (*item.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemRepo) GetByName(ctx context.Context, name string) (*item.Item, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemRepo) List(ctx context.Context, filter item.ListFilter) ([]*item.Item, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*item.Item), args.Error(1)
}

func (m *MockItemRepo) Update(ctx context.Context, it *item.Item) error {
	return m.Called(ctx, it).Error(0)
}

func (m *MockItemRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockItemRepo) LockForUpdate(ctx context.Context, id int64) (*item.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemRepo) DecrementStock(ctx context.Context, id int64, quantity int64, saleDate time.Time) (*item.Item, error) {
	args := m.Called(ctx, id, quantity, saleDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemRepo) WithTx(tx pgx.Tx) item.Repository {
	return m.Called(tx).Get(0).(item.Repository)
}

type MockSaleRepo struct {
	mock.Mock
}

func (m *MockSaleRepo) Append(ctx context.Context, entry *sale.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockSaleRepo) FindByTransactionAndItem(ctx context.Context, transactionID string, itemID int64) (*sale.Entry, error) {
	args := m.Called(ctx, transactionID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Entry), args.Error(1)
}

func (m *MockSaleRepo) ListByItem(ctx context.Context, itemID int64) ([]*sale.Entry, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sale.Entry), args.Error(1)
}

func (m *MockSaleRepo) CountByItem(ctx context.Context, itemID int64) (int64, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepo) ListHistory(ctx context.Context, limit, offset int) ([]*sale.HistoryEntry, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sale.HistoryEntry), args.Error(1)
}

func (m *MockSaleRepo) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepo) WithTx(tx pgx.Tx) sale.Repository {
	return m.Called(tx).Get(0).(sale.Repository)
}

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepo) GetBySaleEntryID(ctx context.Context, saleEntryID uuid.UUID) (*outbox.Message, error) {
	args := m.Called(ctx, saleEntryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	return m.Called(tx).Get(0).(outbox.Repository)
}

type MockReportRepo struct {
	mock.Mock
}

func (m *MockReportRepo) UpsertSale(ctx context.Context, record *report.SaleRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockReportRepo) GetSale(ctx context.Context, saleEntryID uuid.UUID) (*report.SaleRecord, error) {
	args := m.Called(ctx, saleEntryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.SaleRecord), args.Error(1)
}

func (m *MockReportRepo) SummarizeByItem(ctx context.Context, from, to time.Time) ([]*report.ItemSummary, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*report.ItemSummary), args.Error(1)
}

func (m *MockReportRepo) RecordRejection(ctx context.Context, rejection *report.Rejection) error {
	return m.Called(ctx, rejection).Error(0)
}

func (m *MockReportRepo) ListRejections(ctx context.Context, transactionID string) ([]*report.Rejection, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*report.Rejection), args.Error(1)
}
