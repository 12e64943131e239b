package report

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository manages the sales report projection
type Repository interface {
	// UpsertSale stores a record once per sale entry; replays are no-ops
	UpsertSale(ctx context.Context, record *SaleRecord) error
	GetSale(ctx context.Context, saleEntryID uuid.UUID) (*SaleRecord, error)
	SummarizeByItem(ctx context.Context, from, to time.Time) ([]*ItemSummary, error)
	RecordRejection(ctx context.Context, rejection *Rejection) error
	ListRejections(ctx context.Context, transactionID string) ([]*Rejection, error)
}

// ErrRecordNotFound indicates the sale has not been projected yet
type ErrRecordNotFound struct {
	SaleEntryID uuid.UUID
}

func (e ErrRecordNotFound) Error() string {
	return "sale record not found: " + e.SaleEntryID.String()
}
