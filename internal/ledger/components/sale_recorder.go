package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/domain/shared"
	"github.com/inventory-sales-ledger/internal/ledger/service"
	"github.com/jackc/pgx/v5"
)

type SaleRecorderImpl struct {
	saleRepo sale.Repository
	logger   *slog.Logger
}

func NewSaleRecorder(saleRepo sale.Repository, logger *slog.Logger) service.SaleRecorder {
	return &SaleRecorderImpl{
		saleRepo: saleRepo,
		logger:   logger,
	}
}

// RecordSale appends the ledger entry. unitPrice is copied into the entry and
// later price edits on the item never reach it.
func (r *SaleRecorderImpl) RecordSale(ctx context.Context, tx pgx.Tx, request *shared.SellRequest, unitPrice int64, soldAt time.Time) (*sale.Entry, error) {
	entry, err := sale.NewEntry(request.ItemID, request.TransactionID, request.Quantity, unitPrice, soldAt)
	if err != nil {
		return nil, err
	}

	if err := r.saleRepo.WithTx(tx).Append(ctx, entry); err != nil {
		if errors.Is(err, sale.ErrDuplicateTransaction{}) {
			r.logger.Warn("Duplicate sale rejected by storage",
				"transaction_id", request.TransactionID,
				"item_id", request.ItemID,
			)
			return nil, err
		}
		r.logger.Error("Failed to append sale entry", "transaction_id", request.TransactionID, "error", err)
		return nil, fmt.Errorf("failed to append sale entry for transaction %s: %w", request.TransactionID, err)
	}

	return entry, nil
}
