// Package report defines the read models built from committed sales.
// The projection is rebuilt from the outbox and never feeds back into the ledger.
package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/domain/shared"
)

// SaleRecord is a committed sale entry denormalized with its item name
type SaleRecord struct {
	SaleEntryID   uuid.UUID  `json:"sale_entry_id" bson:"sale_entry_id"`
	ItemID        int64      `json:"item_id" bson:"item_id"`
	ItemName      string     `json:"item_name" bson:"item_name"`
	TransactionID string     `json:"transaction_id" bson:"transaction_id"`
	Quantity      int64      `json:"quantity" bson:"quantity"`
	UnitPrice     int64      `json:"unit_price" bson:"unit_price"`
	Total         int64      `json:"total" bson:"total"`
	SoldAt        time.Time  `json:"sold_at" bson:"sold_at"`
	CorrelationID string     `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	ProjectedAt   *time.Time `json:"projected_at,omitempty" bson:"projected_at,omitempty"`
}

// NewSaleRecord denormalizes entry for the projection
func NewSaleRecord(entry *sale.Entry, itemName, correlationID string) *SaleRecord {
	return &SaleRecord{
		SaleEntryID:   entry.ID,
		ItemID:        entry.ItemID,
		ItemName:      itemName,
		TransactionID: entry.TransactionID,
		Quantity:      entry.Quantity,
		UnitPrice:     entry.UnitPrice,
		Total:         entry.Total,
		SoldAt:        entry.SoldAt,
		CorrelationID: correlationID,
	}
}

// Rejection records a sell command that was consumed but not applied
type Rejection struct {
	TransactionID string                 `json:"transaction_id" bson:"transaction_id"`
	ItemID        int64                  `json:"item_id" bson:"item_id"`
	Quantity      int64                  `json:"quantity" bson:"quantity"`
	Reason        shared.RejectionReason `json:"reason" bson:"reason"`
	Detail        string                 `json:"detail,omitempty" bson:"detail,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	RecordedAt    time.Time              `json:"recorded_at" bson:"recorded_at"`
}

// ItemSummary aggregates projected sales of one item. Revenue is in minor units.
type ItemSummary struct {
	ItemID       int64  `json:"item_id" bson:"_id"`
	ItemName     string `json:"item_name" bson:"item_name"`
	UnitsSold    int64  `json:"units_sold" bson:"units_sold"`
	Revenue      int64  `json:"revenue" bson:"revenue"`
	Transactions int64  `json:"transactions" bson:"transactions"`
}
