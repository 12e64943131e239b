package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inventory-sales-ledger/internal/api_gateway/service"
	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/inventory-sales-ledger/internal/domain/report"
	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/domain/shared"
	ledger "github.com/inventory-sales-ledger/internal/ledger/service"
	"github.com/stretchr/testify/mock"
)

// PaginatedResponse is a generic version of Response for testing paginated data
type PaginatedResponse[T any] struct {
	Data          []T        `json:"data"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *MetaInfo  `json:"meta,omitempty"`
}

// DataResponse is a generic version of Response for testing single objects
type DataResponse[T any] struct {
	Data  T          `json:"data"`
	Error *ErrorInfo `json:"error,omitempty"`
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func performRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		payload, _ = json.Marshal(b)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeError(rr *httptest.ResponseRecorder) *ErrorInfo {
	var resp Response
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		return nil
	}
	return resp.Error
}

func testItem(id int64) *item.Item {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	return &item.Item{
		ID:             id,
		Name:           "Hoodie (L)",
		Price:          3500,
		QuantityOnHand: 6,
		Location:       "Shelf 3",
		AcquiredOn:     time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

type MockItemService struct {
	mock.Mock
}

func (m *MockItemService) RegisterItem(ctx context.Context, input service.RegisterItemInput) (*item.Item, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemService) GetItem(ctx context.Context, id int64) (*item.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemService) ListItems(ctx context.Context, filter item.ListFilter, skip, limit int) ([]*item.Item, int, error) {
	args := m.Called(ctx, filter, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*item.Item), args.Int(1), args.Error(2)
}

func (m *MockItemService) EditItem(ctx context.Context, id int64, edit item.Edit) (*item.Item, error) {
	args := m.Called(ctx, id, edit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemService) DeleteItem(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSaleService struct {
	mock.Mock
}

func (m *MockSaleService) Sell(ctx context.Context, request *shared.SellRequest) (*ledger.SellResult, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.SellResult), args.Error(1)
}

func (m *MockSaleService) ListItemSales(ctx context.Context, itemID int64) ([]*sale.Entry, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sale.Entry), args.Error(1)
}

func (m *MockSaleService) ListHistory(ctx context.Context, skip, limit int) ([]*sale.HistoryEntry, int64, error) {
	args := m.Called(ctx, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*sale.HistoryEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockSaleService) SubmitCheckout(ctx context.Context, checkout service.Checkout) error {
	args := m.Called(ctx, checkout)
	return args.Error(0)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) SalesSummary(ctx context.Context, from, to time.Time) (*service.SalesSummary, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SalesSummary), args.Error(1)
}

func (m *MockReportService) ProjectedSale(ctx context.Context, saleEntryID uuid.UUID) (*report.SaleRecord, error) {
	args := m.Called(ctx, saleEntryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.SaleRecord), args.Error(1)
}

func (m *MockReportService) Rejections(ctx context.Context, transactionID string) ([]*report.Rejection, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*report.Rejection), args.Error(1)
}
