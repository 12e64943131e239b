package outbox_poller

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/inventory-sales-ledger/internal/domain/outbox"
	"github.com/inventory-sales-ledger/internal/domain/report"
	"github.com/inventory-sales-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
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
	report.Repository
}

func (m *MockReportRepo) UpsertSale(ctx context.Context, record *report.SaleRecord) error {
	return m.Called(ctx, record).Error(0)
}

type MockReportPublisher struct {
	mock.Mock
}

func (m *MockReportPublisher) PublishToReport(ctx context.Context, message *outbox.Message) error {
	return m.Called(ctx, message).Error(0)
}

func newSaleMessage(id int64, attempts int) *outbox.Message {
	record := &report.SaleRecord{
		SaleEntryID:   uuid.New(),
		ItemID:        21,
		ItemName:      "Denim Jacket (L)",
		TransactionID: "order-" + uuid.NewString(),
		Quantity:      1,
		UnitPrice:     8900,
		Total:         8900,
		SoldAt:        time.Date(2026, 7, 3, 16, 0, 0, 0, time.UTC),
		CorrelationID: "corr-21",
	}
	msg, err := outbox.NewMessage(record)
	if err != nil {
		panic(err)
	}
	msg.ID = id
	msg.Attempts = attempts
	return msg
}
