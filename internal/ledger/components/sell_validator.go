package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/domain/shared"
	"github.com/inventory-sales-ledger/internal/ledger/service"
	"github.com/jackc/pgx/v5"
)

type SellValidatorImpl struct {
	saleRepo sale.Repository
	logger   *slog.Logger
}

func NewSellValidator(saleRepo sale.Repository, logger *slog.Logger) service.SellValidator {
	return &SellValidatorImpl{
		saleRepo: saleRepo,
		logger:   logger,
	}
}

// Validate checks request shape only; no storage is read
func (v *SellValidatorImpl) Validate(_ context.Context, request *shared.SellRequest) error {
	if err := request.Validate(); err != nil {
		v.logger.Info("Invalid sell request",
			"transaction_id", request.TransactionID,
			"item_id", request.ItemID,
			"quantity", request.Quantity,
			"error", err,
		)
		return err
	}
	return nil
}

// CheckDuplicate must run after the item row is locked so that a concurrent
// sale with the same transaction id cannot slip in between check and append.
func (v *SellValidatorImpl) CheckDuplicate(ctx context.Context, tx pgx.Tx, request *shared.SellRequest) error {
	existing, err := v.saleRepo.WithTx(tx).FindByTransactionAndItem(ctx, request.TransactionID, request.ItemID)
	if err != nil {
		if errors.Is(err, sale.ErrEntryNotFound{}) {
			return nil
		}
		return fmt.Errorf("duplicate check failed for transaction %s: %w", request.TransactionID, err)
	}

	v.logger.Info("Transaction already applied to item",
		"transaction_id", request.TransactionID,
		"item_id", request.ItemID,
		"sale_entry_id", existing.ID.String(),
	)
	return sale.ErrDuplicateTransaction{TransactionID: request.TransactionID, ItemID: request.ItemID}
}
