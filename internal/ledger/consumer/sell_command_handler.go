package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/domain/shared"
	"github.com/inventory-sales-ledger/internal/ledger/service"
	"github.com/inventory-sales-ledger/internal/platform/messaging/producers"
)

// SaleLookup finds the entry an earlier command wrote for a (transaction, item) pair
type SaleLookup interface {
	FindByTransactionAndItem(ctx context.Context, transactionID string, itemID int64) (*sale.Entry, error)
}

// SellCommandHandler applies sell commands consumed from Kafka.
//
// A nil return commits the offset. That happens for applied sales, for redeliveries
// of a command that was already applied and for rejections once they are recorded.
// A duplicate whose quantity differs from the applied entry is a conflicting command
// and is recorded as a rejection. Storage failures return an error so the command
// is redelivered; a redelivered command is safe because a failed sale wrote nothing.
type SellCommandHandler struct {
	ledgerService     service.LedgerService
	sales             SaleLookup
	rejectionRecorder service.RejectionRecorder
	dlq               producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewSellCommandHandler creates a new handler. dlq may be nil when no DLQ topic is configured.
func NewSellCommandHandler(
	logger *slog.Logger,
	ledgerService service.LedgerService,
	sales SaleLookup,
	rejectionRecorder service.RejectionRecorder,
	dlq producers.DeadLetterPublisher,
) *SellCommandHandler {
	return &SellCommandHandler{
		ledgerService:     ledgerService,
		sales:             sales,
		rejectionRecorder: rejectionRecorder,
		dlq:               dlq,
		logger:            logger,
	}
}

func (h *SellCommandHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.SellRequest
	if err := json.Unmarshal(value, &request); err != nil {
		return h.deadLetter(ctx, key, value, err)
	}
	if request.RequestedAt.IsZero() {
		request.RequestedAt = time.Now().UTC()
	}

	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}
	logger = logger.With("transaction_id", request.TransactionID, "item_id", request.ItemID)

	result, err := h.ledgerService.Sell(ctx, &request)
	switch {
	case err == nil:
		logger.Info("Sell command applied",
			"sale_entry_id", result.SaleEntryID.String(),
			"remaining_stock", result.RemainingStock,
		)
		return nil

	case errors.Is(err, sale.ErrDuplicateTransaction{}):
		return h.handleDuplicate(ctx, logger, &request, err)

	case isRejection(err):
		return h.reject(ctx, &request, err)

	default:
		logger.Error("Sell command failed, will be redelivered", "error", err)
		return fmt.Errorf("sell command %s for item %d failed: %w", request.TransactionID, request.ItemID, err)
	}
}

// handleDuplicate acks a redelivery of the applied command and rejects a command
// that reuses the transaction id with another quantity
func (h *SellCommandHandler) handleDuplicate(ctx context.Context, logger *slog.Logger, request *shared.SellRequest, dupErr error) error {
	applied, err := h.sales.FindByTransactionAndItem(ctx, request.TransactionID, request.ItemID)
	if err != nil && !errors.Is(err, sale.ErrEntryNotFound{}) {
		logger.Error("Failed to load applied sale for duplicate command", "error", err)
		return fmt.Errorf("sell command %s for item %d: load applied sale: %w", request.TransactionID, request.ItemID, err)
	}

	if applied != nil && applied.Quantity == request.Quantity {
		logger.Info("Sell command already applied, acknowledging", "sale_entry_id", applied.ID.String())
		return nil
	}

	if applied != nil {
		logger.Warn("Sell command conflicts with the applied sale",
			"applied_quantity", applied.Quantity,
			"requested_quantity", request.Quantity,
		)
	}
	return h.reject(ctx, request, dupErr)
}

func (h *SellCommandHandler) reject(ctx context.Context, request *shared.SellRequest, cause error) error {
	if err := h.rejectionRecorder.RecordRejection(ctx, request, cause); err != nil {
		return fmt.Errorf("sell command %s rejected but not recorded: %w", request.TransactionID, err)
	}
	return nil
}

func (h *SellCommandHandler) deadLetter(ctx context.Context, key, value []byte, cause error) error {
	reason := fmt.Sprintf("undecodable sell command: %s", cause)
	h.logger.Error("Failed to decode sell command", "message_key", string(key), "error", cause)

	if h.dlq == nil {
		h.logger.Error("No DLQ configured, dropping undecodable sell command", "message_key", string(key))
		return nil
	}

	if err := h.dlq.PublishToDLQ(ctx, string(key), value, reason); err != nil {
		return fmt.Errorf("failed to dead-letter undecodable sell command: %w", err)
	}
	return nil
}

// isRejection reports errors that will fail the same way on every redelivery
func isRejection(err error) bool {
	return errors.Is(err, shared.ErrInvalidQuantity) ||
		errors.Is(err, shared.ErrInvalidTransactionID) ||
		errors.Is(err, shared.ErrInvalidItemID) ||
		errors.Is(err, sale.ErrAmountOverflow) ||
		errors.Is(err, item.ErrItemNotFound{}) ||
		errors.Is(err, item.ErrInsufficientStock)
}
