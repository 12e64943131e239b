package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/inventory-sales-ledger/internal/domain/report"
	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/domain/shared"
	"github.com/inventory-sales-ledger/internal/ledger/service"
)

type RejectionRecorderImpl struct {
	reportRepo report.Repository
	logger     *slog.Logger
	clock      func() time.Time
}

func NewRejectionRecorder(reportRepo report.Repository, logger *slog.Logger) service.RejectionRecorder {
	return &RejectionRecorderImpl{
		reportRepo: reportRepo,
		logger:     logger,
		clock:      time.Now,
	}
}

// RejectionReasonFor maps a sell error to the reason stored in the rejection log
func RejectionReasonFor(err error) shared.RejectionReason {
	switch {
	case errors.Is(err, shared.ErrInvalidQuantity),
		errors.Is(err, shared.ErrInvalidTransactionID),
		errors.Is(err, shared.ErrInvalidItemID),
		errors.Is(err, sale.ErrAmountOverflow):
		return shared.RejectionReasonInvalidRequest
	case errors.Is(err, item.ErrItemNotFound{}):
		return shared.RejectionReasonItemNotFound
	case errors.Is(err, item.ErrInsufficientStock):
		return shared.RejectionReasonInsufficientStock
	case errors.Is(err, sale.ErrDuplicateTransaction{}):
		return shared.RejectionReasonDuplicateTransaction
	default:
		return shared.RejectionReasonUnknownError
	}
}

func (r *RejectionRecorderImpl) RecordRejection(ctx context.Context, request *shared.SellRequest, cause error) error {
	rejection := &report.Rejection{
		TransactionID: request.TransactionID,
		ItemID:        request.ItemID,
		Quantity:      request.Quantity,
		Reason:        RejectionReasonFor(cause),
		CorrelationID: request.CorrelationID,
		RecordedAt:    r.clock().UTC(),
	}
	if cause != nil {
		rejection.Detail = cause.Error()
	}

	if err := r.reportRepo.RecordRejection(ctx, rejection); err != nil {
		r.logger.Error("Failed to record rejected sale",
			"transaction_id", request.TransactionID,
			"item_id", request.ItemID,
			"reason", rejection.Reason,
			"error", err,
		)
		return fmt.Errorf("failed to record rejection for transaction %s: %w", request.TransactionID, err)
	}

	r.logger.Info("Rejected sale recorded",
		"transaction_id", request.TransactionID,
		"item_id", request.ItemID,
		"reason", rejection.Reason,
	)
	return nil
}
