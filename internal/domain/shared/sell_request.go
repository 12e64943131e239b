package shared

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrInvalidTransactionID = errors.New("transaction id cannot be empty")
	ErrInvalidItemID        = errors.New("item id must be positive")

	// ErrStorageUnavailable wraps failures to reach or use the backing store.
	// Nothing was applied when a sale fails with it.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// SellRequest asks to sell Quantity units of one item as part of a client transaction.
// It is both the HTTP sell input and the Kafka sell command payload.
type SellRequest struct {
	ItemID        int64     `json:"item_id"`
	Quantity      int64     `json:"quantity"`
	TransactionID string    `json:"transaction_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	RequestedAt   time.Time `json:"requested_at"`
}

// Validate checks the request shape before any storage is touched
func (r *SellRequest) Validate() error {
	if r.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if strings.TrimSpace(r.TransactionID) == "" {
		return ErrInvalidTransactionID
	}
	if r.ItemID <= 0 {
		return ErrInvalidItemID
	}
	return nil
}
