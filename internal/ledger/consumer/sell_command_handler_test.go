package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/domain/shared"
	"github.com/inventory-sales-ledger/internal/ledger/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Sell(ctx context.Context, request *shared.SellRequest) (*service.SellResult, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SellResult), args.Error(1)
}

func (m *MockLedgerService) GetItem(ctx context.Context, itemID int64) (*item.Item, error) {
	args := m.Called(ctx, itemID)
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

type MockSaleLookup struct {
	mock.Mock
}

func (m *MockSaleLookup) FindByTransactionAndItem(ctx context.Context, transactionID string, itemID int64) (*sale.Entry, error) {
	args := m.Called(ctx, transactionID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Entry), args.Error(1)
}

type MockRejectionRecorder struct {
	mock.Mock
}

func (m *MockRejectionRecorder) RecordRejection(ctx context.Context, request *shared.SellRequest, cause error) error {
	return m.Called(ctx, request, cause).Error(0)
}

type MockDeadLetterPublisher struct {
	mock.Mock
}

func (m *MockDeadLetterPublisher) PublishToDLQ(ctx context.Context, key string, value []byte, reason string) error {
	return m.Called(ctx, key, value, reason).Error(0)
}

func (m *MockDeadLetterPublisher) Close() error {
	return m.Called().Error(0)
}

func TestSellCommandHandler_HandleMessage(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	command := shared.SellRequest{ItemID: 11, Quantity: 2, TransactionID: "cart-5", CorrelationID: "corr-5"}
	payload, err := json.Marshal(command)
	require.NoError(t, err)

	matchesCommand := mock.MatchedBy(func(r *shared.SellRequest) bool {
		return r.ItemID == 11 && r.Quantity == 2 && r.TransactionID == "cart-5" && !r.RequestedAt.IsZero()
	})

	tests := []struct {
		name       string
		value      []byte
		setup      func(ls *MockLedgerService, sl *MockSaleLookup, rr *MockRejectionRecorder, dlq *MockDeadLetterPublisher)
		wantErr    bool
		withoutDLQ bool
	}{
		{
			name:  "applied sale is committed",
			value: payload,
			setup: func(ls *MockLedgerService, _ *MockSaleLookup, _ *MockRejectionRecorder, _ *MockDeadLetterPublisher) {
				ls.On("Sell", ctx, matchesCommand).Return(&service.SellResult{SaleEntryID: uuid.New(), RemainingStock: 3}, nil).Once()
			},
		},
		{
			name:  "redelivered duplicate is committed without a rejection",
			value: payload,
			setup: func(ls *MockLedgerService, sl *MockSaleLookup, _ *MockRejectionRecorder, _ *MockDeadLetterPublisher) {
				ls.On("Sell", ctx, matchesCommand).Return(nil, sale.ErrDuplicateTransaction{TransactionID: "cart-5", ItemID: 11}).Once()
				sl.On("FindByTransactionAndItem", ctx, "cart-5", int64(11)).
					Return(&sale.Entry{ID: uuid.New(), ItemID: 11, TransactionID: "cart-5", Quantity: 2}, nil).Once()
			},
		},
		{
			name:  "duplicate with another quantity is recorded as a rejection",
			value: payload,
			setup: func(ls *MockLedgerService, sl *MockSaleLookup, rr *MockRejectionRecorder, _ *MockDeadLetterPublisher) {
				dup := sale.ErrDuplicateTransaction{TransactionID: "cart-5", ItemID: 11}
				ls.On("Sell", ctx, matchesCommand).Return(nil, dup).Once()
				sl.On("FindByTransactionAndItem", ctx, "cart-5", int64(11)).
					Return(&sale.Entry{ID: uuid.New(), ItemID: 11, TransactionID: "cart-5", Quantity: 5}, nil).Once()
				rr.On("RecordRejection", ctx, matchesCommand, dup).Return(nil).Once()
			},
		},
		{
			name:  "duplicate whose applied sale cannot be loaded is redelivered",
			value: payload,
			setup: func(ls *MockLedgerService, sl *MockSaleLookup, _ *MockRejectionRecorder, _ *MockDeadLetterPublisher) {
				ls.On("Sell", ctx, matchesCommand).Return(nil, sale.ErrDuplicateTransaction{TransactionID: "cart-5", ItemID: 11}).Once()
				sl.On("FindByTransactionAndItem", ctx, "cart-5", int64(11)).Return(nil, shared.ErrStorageUnavailable).Once()
			},
			wantErr: true,
		},
		{
			name:  "insufficient stock is recorded and committed",
			value: payload,
			setup: func(ls *MockLedgerService, _ *MockSaleLookup, rr *MockRejectionRecorder, _ *MockDeadLetterPublisher) {
				ls.On("Sell", ctx, matchesCommand).Return(nil, item.ErrInsufficientStock).Once()
				rr.On("RecordRejection", ctx, matchesCommand, item.ErrInsufficientStock).Return(nil).Once()
			},
		},
		{
			name:  "unknown item is recorded and committed",
			value: payload,
			setup: func(ls *MockLedgerService, _ *MockSaleLookup, rr *MockRejectionRecorder, _ *MockDeadLetterPublisher) {
				notFound := item.ErrItemNotFound{ItemID: 11}
				ls.On("Sell", ctx, matchesCommand).Return(nil, notFound).Once()
				rr.On("RecordRejection", ctx, matchesCommand, notFound).Return(nil).Once()
			},
		},
		{
			name:  "rejection that cannot be recorded is redelivered",
			value: payload,
			setup: func(ls *MockLedgerService, _ *MockSaleLookup, rr *MockRejectionRecorder, _ *MockDeadLetterPublisher) {
				ls.On("Sell", ctx, matchesCommand).Return(nil, item.ErrInsufficientStock).Once()
				rr.On("RecordRejection", ctx, matchesCommand, item.ErrInsufficientStock).Return(errors.New("mongo down")).Once()
			},
			wantErr: true,
		},
		{
			name:  "storage failure is redelivered",
			value: payload,
			setup: func(ls *MockLedgerService, _ *MockSaleLookup, _ *MockRejectionRecorder, _ *MockDeadLetterPublisher) {
				ls.On("Sell", ctx, matchesCommand).Return(nil, shared.ErrStorageUnavailable).Once()
			},
			wantErr: true,
		},
		{
			name:  "undecodable command goes to the DLQ",
			value: []byte(`{"item_id":"eleven"}`),
			setup: func(_ *MockLedgerService, _ *MockSaleLookup, _ *MockRejectionRecorder, dlq *MockDeadLetterPublisher) {
				dlq.On("PublishToDLQ", ctx, "11", []byte(`{"item_id":"eleven"}`), mock.AnythingOfType("string")).Return(nil).Once()
			},
		},
		{
			name:  "DLQ failure is redelivered",
			value: []byte(`not json`),
			setup: func(_ *MockLedgerService, _ *MockSaleLookup, _ *MockRejectionRecorder, dlq *MockDeadLetterPublisher) {
				dlq.On("PublishToDLQ", ctx, "11", []byte(`not json`), mock.AnythingOfType("string")).Return(errors.New("kafka down")).Once()
			},
			wantErr: true,
		},
		{
			name:       "undecodable command without DLQ is dropped",
			value:      []byte(`not json`),
			setup:      func(*MockLedgerService, *MockSaleLookup, *MockRejectionRecorder, *MockDeadLetterPublisher) {},
			withoutDLQ: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls := &MockLedgerService{}
			sl := &MockSaleLookup{}
			rr := &MockRejectionRecorder{}
			dlq := &MockDeadLetterPublisher{}
			tt.setup(ls, sl, rr, dlq)

			handler := NewSellCommandHandler(logger, ls, sl, rr, dlq)
			if tt.withoutDLQ {
				handler = NewSellCommandHandler(logger, ls, sl, rr, nil)
			}

			err := handler.HandleMessage(ctx, []byte("11"), tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			ls.AssertExpectations(t)
			sl.AssertExpectations(t)
			rr.AssertExpectations(t)
			dlq.AssertExpectations(t)
		})
	}
}
