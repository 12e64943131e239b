package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/inventory-sales-ledger/internal/api_gateway/service"
	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/inventory-sales-ledger/internal/domain/report"
	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/domain/shared"
)

var badRequestErrors = []error{
	shared.ErrInvalidQuantity,
	shared.ErrInvalidTransactionID,
	shared.ErrInvalidItemID,
	item.ErrInvalidPrice,
	item.ErrInvalidStock,
	item.ErrEmptyName,
	item.ErrEmptyLocation,
	item.ErrNothingToUpdate,
	service.ErrDuplicateCheckoutLine,
	service.ErrEmptyCheckout,
	service.ErrInvalidReportRange,
}

// respondError maps a service error onto the HTTP error contract and logs it.
// Client errors log at warn, everything else at error.
func respondError(c *gin.Context, logger *slog.Logger, msg string, err error) {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			logger.Warn(msg, "error", err)
			RespondBadRequest(c, err.Error())
			return
		}
	}

	var (
		duplicateName   item.ErrDuplicateName
		hasSales        item.ErrItemHasSales
		concurrentEdit  item.ErrConcurrentModification
		recordNotFound  report.ErrRecordNotFound
		clientErrorCode string
	)

	switch {
	case errors.Is(err, item.ErrItemNotFound{}):
		RespondNotFound(c, err.Error())
		clientErrorCode = "NOT_FOUND"
	case errors.Is(err, service.ErrSaleNotFound):
		RespondNotFound(c, "Sale not found")
		clientErrorCode = "NOT_FOUND"
	case errors.As(err, &recordNotFound):
		RespondNotFound(c, "Sale has not been projected yet")
		clientErrorCode = "NOT_FOUND"
	case errors.Is(err, sale.ErrDuplicateTransaction{}):
		RespondConflict(c, "DUPLICATE_TRANSACTION", err.Error())
		clientErrorCode = "DUPLICATE_TRANSACTION"
	case errors.As(err, &duplicateName):
		RespondConflict(c, "DUPLICATE_NAME", err.Error())
		clientErrorCode = "DUPLICATE_NAME"
	case errors.As(err, &hasSales):
		RespondConflict(c, "ITEM_HAS_SALES", err.Error())
		clientErrorCode = "ITEM_HAS_SALES"
	case errors.As(err, &concurrentEdit):
		RespondConflict(c, "CONCURRENT_MODIFICATION", err.Error())
		clientErrorCode = "CONCURRENT_MODIFICATION"
	case errors.Is(err, item.ErrInsufficientStock):
		RespondUnprocessable(c, "INSUFFICIENT_STOCK", err.Error())
		clientErrorCode = "INSUFFICIENT_STOCK"
	case errors.Is(err, sale.ErrAmountOverflow):
		RespondUnprocessable(c, "AMOUNT_OVERFLOW", err.Error())
		clientErrorCode = "AMOUNT_OVERFLOW"
	case errors.Is(err, shared.ErrStorageUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		logger.Error(msg, "error", err)
		RespondServiceUnavailable(c)
		return
	default:
		logger.Error(msg, "error", err)
		RespondInternalError(c)
		return
	}

	logger.Warn(msg, "error", err, "code", clientErrorCode)
}
