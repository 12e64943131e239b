package handler

import (
	"time"

	"github.com/inventory-sales-ledger/internal/api_gateway/service"
	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/inventory-sales-ledger/internal/domain/report"
	"github.com/inventory-sales-ledger/internal/domain/sale"
	ledger "github.com/inventory-sales-ledger/internal/ledger/service"
)

const dateLayout = "2006-01-02"

// CreateItemRequest registers a new item. Amounts are in minor units.
type CreateItemRequest struct {
	Name       string  `json:"name" binding:"required"`
	Price      *int64  `json:"price" binding:"required,min=0"`
	Quantity   *int64  `json:"quantity" binding:"required,min=0"`
	Location   string  `json:"location" binding:"required"`
	AcquiredOn string  `json:"acquired_on" binding:"required,datetime=2006-01-02"`
	Category   *string `json:"category,omitempty"`
}

// UpdateItemRequest is an administrative edit; omitted fields are left as they are
type UpdateItemRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,min=1"`
	Price    *int64  `json:"price,omitempty" binding:"omitempty,min=0"`
	Quantity *int64  `json:"quantity,omitempty" binding:"omitempty,min=0"`
}

// SellRequest is the body of POST /items/:id/sell
type SellRequest struct {
	Quantity      int64  `json:"quantity" binding:"required,gt=0"`
	TransactionID string `json:"transaction_id" binding:"required,max=128"`
}

type SellResponse struct {
	RemainingStock int64  `json:"remaining_stock"`
	TotalSold      int64  `json:"total_sold"`
	SaleEntryID    string `json:"sale_entry_id"`
	TransactionID  string `json:"transaction_id"`
}

type CheckoutLineRequest struct {
	ItemID   int64 `json:"item_id" binding:"required,gt=0"`
	Quantity int64 `json:"quantity" binding:"required,gt=0"`
}

// CheckoutRequest sells several items under one transaction id, asynchronously
type CheckoutRequest struct {
	TransactionID string                `json:"transaction_id" binding:"required,max=128"`
	Lines         []CheckoutLineRequest `json:"lines" binding:"required,min=1,dive"`
}

type CheckoutResponse struct {
	TransactionID string `json:"transaction_id"`
	Lines         int    `json:"lines"`
	Status        string `json:"status"`
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Price          int64   `json:"price"`
	QuantityOnHand int64   `json:"quantity_on_hand"`
	Location       string  `json:"location"`
	Category       *string `json:"category,omitempty"`
	AcquiredOn     string  `json:"acquired_on"`
	SoldCount      int64   `json:"sold_count"`
	LastSaleDate   string  `json:"last_sale_date,omitempty"`
	Version        int     `json:"version"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// SaleEntryResponse represents one ledger entry. ItemName is only set in history listings.
type SaleEntryResponse struct {
	ID            string `json:"id"`
	ItemID        int64  `json:"item_id"`
	ItemName      string `json:"item_name,omitempty"`
	TransactionID string `json:"transaction_id"`
	Quantity      int64  `json:"quantity"`
	UnitPrice     int64  `json:"unit_price"`
	Total         int64  `json:"total"`
	SoldAt        string `json:"sold_at"`
}

// ItemListParams filters and pages item listings
type ItemListParams struct {
	Category string `form:"category"`
	Skip     int    `form:"skip,default=0" binding:"min=0"`
	Limit    int    `form:"limit,default=10" binding:"min=1,max=100"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Skip  int `form:"skip,default=0" binding:"min=0"`
	Limit int `form:"limit,default=10" binding:"min=1,max=100"`
}

// SummaryParams bounds a report window. Dates are YYYY-MM-DD or RFC 3339; a bare
// "to" date includes that whole day.
type SummaryParams struct {
	From string `form:"from"`
	To   string `form:"to"`
}

type RejectionParams struct {
	TransactionID string `form:"transaction_id" binding:"required"`
}

func (r CreateItemRequest) toInput() (service.RegisterItemInput, error) {
	acquiredOn, err := time.Parse(dateLayout, r.AcquiredOn)
	if err != nil {
		return service.RegisterItemInput{}, err
	}
	return service.RegisterItemInput{
		Name:       r.Name,
		Price:      *r.Price,
		Quantity:   *r.Quantity,
		Location:   r.Location,
		Category:   r.Category,
		AcquiredOn: acquiredOn,
	}, nil
}

func (r UpdateItemRequest) toEdit() item.Edit {
	return item.Edit{
		Name:     r.Name,
		Price:    r.Price,
		Quantity: r.Quantity,
	}
}

func (r CheckoutRequest) toCheckout(correlationID string) service.Checkout {
	lines := make([]service.CheckoutLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, service.CheckoutLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return service.Checkout{
		TransactionID: r.TransactionID,
		CorrelationID: correlationID,
		Lines:         lines,
	}
}

// window resolves the params against now, defaulting to the last 30 days
func (p SummaryParams) window(now time.Time) (time.Time, time.Time, error) {
	to := now.UTC()
	if p.To != "" {
		parsed, dateOnly, err := parseReportTime(p.To)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
		if dateOnly {
			to = to.AddDate(0, 0, 1)
		}
	}

	from := to.AddDate(0, 0, -30)
	if p.From != "" {
		parsed, _, err := parseReportTime(p.From)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	return from, to, nil
}

func parseReportTime(value string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}

func mapItemToResponse(it *item.Item) ItemResponse {
	response := ItemResponse{
		ID:             it.ID,
		Name:           it.Name,
		Price:          it.Price,
		QuantityOnHand: it.QuantityOnHand,
		Location:       it.Location,
		Category:       it.Category,
		AcquiredOn:     it.AcquiredOn.Format(dateLayout),
		SoldCount:      it.SoldCount,
		Version:        it.Version,
		CreatedAt:      it.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      it.UpdatedAt.Format(time.RFC3339),
	}
	if it.LastSaleDate != nil {
		response.LastSaleDate = it.LastSaleDate.Format(dateLayout)
	}
	return response
}

func mapItemsToResponse(items []*item.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, mapItemToResponse(it))
	}
	return out
}

func mapEntryToResponse(entry *sale.Entry) SaleEntryResponse {
	return SaleEntryResponse{
		ID:            entry.ID.String(),
		ItemID:        entry.ItemID,
		TransactionID: entry.TransactionID,
		Quantity:      entry.Quantity,
		UnitPrice:     entry.UnitPrice,
		Total:         entry.Total,
		SoldAt:        entry.SoldAt.Format(time.RFC3339Nano),
	}
}

func mapHistoryToResponse(entries []*sale.HistoryEntry) []SaleEntryResponse {
	out := make([]SaleEntryResponse, 0, len(entries))
	for _, e := range entries {
		response := mapEntryToResponse(&e.Entry)
		response.ItemName = e.ItemName
		out = append(out, response)
	}
	return out
}

func mapSellResult(result *ledger.SellResult, transactionID string) SellResponse {
	return SellResponse{
		RemainingStock: result.RemainingStock,
		TotalSold:      result.TotalSold,
		SaleEntryID:    result.SaleEntryID.String(),
		TransactionID:  transactionID,
	}
}

type SaleRecordResponse struct {
	SaleEntryID   string `json:"sale_entry_id"`
	ItemID        int64  `json:"item_id"`
	ItemName      string `json:"item_name"`
	TransactionID string `json:"transaction_id"`
	Quantity      int64  `json:"quantity"`
	UnitPrice     int64  `json:"unit_price"`
	Total         int64  `json:"total"`
	SoldAt        string `json:"sold_at"`
	ProjectedAt   string `json:"projected_at,omitempty"`
}

func mapSaleRecord(record *report.SaleRecord) SaleRecordResponse {
	response := SaleRecordResponse{
		SaleEntryID:   record.SaleEntryID.String(),
		ItemID:        record.ItemID,
		ItemName:      record.ItemName,
		TransactionID: record.TransactionID,
		Quantity:      record.Quantity,
		UnitPrice:     record.UnitPrice,
		Total:         record.Total,
		SoldAt:        record.SoldAt.Format(time.RFC3339Nano),
	}
	if record.ProjectedAt != nil {
		response.ProjectedAt = record.ProjectedAt.Format(time.RFC3339)
	}
	return response
}
