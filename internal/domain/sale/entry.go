package sale

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidEntryQuantity = errors.New("sale quantity must be greater than zero")
	ErrMissingTransactionID = errors.New("sale transaction id cannot be empty")
	ErrAmountOverflow       = errors.New("sale total exceeds the largest storable amount")
)

// Entry is one applied sale of one item within one transaction.
// Entries are append-only: once written they are never updated or deleted.
type Entry struct {
	ID            uuid.UUID `json:"id" bson:"id"`
	ItemID        int64     `json:"item_id" bson:"item_id"`
	TransactionID string    `json:"transaction_id" bson:"transaction_id"`
	Quantity      int64     `json:"quantity" bson:"quantity"`
	UnitPrice     int64     `json:"unit_price" bson:"unit_price"` // Item price at sale time, minor units
	Total         int64     `json:"total" bson:"total"`
	SoldAt        time.Time `json:"sold_at" bson:"sold_at"`
}

// NewEntry freezes unitPrice into a new entry and computes its total
func NewEntry(itemID int64, transactionID string, quantity, unitPrice int64, soldAt time.Time) (*Entry, error) {
	if quantity <= 0 {
		return nil, ErrInvalidEntryQuantity
	}
	if strings.TrimSpace(transactionID) == "" {
		return nil, ErrMissingTransactionID
	}
	if unitPrice > 0 && quantity > math.MaxInt64/unitPrice {
		return nil, ErrAmountOverflow
	}

	return &Entry{
		ID:            uuid.New(),
		ItemID:        itemID,
		TransactionID: transactionID,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		Total:         quantity * unitPrice,
		SoldAt:        soldAt,
	}, nil
}

// HistoryEntry is an entry joined with the name of the item it was sold from
type HistoryEntry struct {
	Entry
	ItemName string `json:"item_name"`
}
