package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inventory-sales-ledger/internal/api_gateway/middleware"
	"github.com/inventory-sales-ledger/internal/api_gateway/service"
	"github.com/inventory-sales-ledger/internal/domain/shared"
)

// SaleHandler handles HTTP requests for recording and listing sales
type SaleHandler struct {
	saleService service.SaleService
	logger      *slog.Logger
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(logger *slog.Logger, saleService service.SaleService) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
		logger:      logger,
	}
}

// Sell applies one sale synchronously. A repeated transaction id for the same item
// is answered with 409 and leaves stock untouched.
func (h *SaleHandler) Sell(c *gin.Context) {
	log := middleware.RequestLogger(c, h.logger)

	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	var req SellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	sellRequest := &shared.SellRequest{
		ItemID:        itemID,
		Quantity:      req.Quantity,
		TransactionID: req.TransactionID,
		CorrelationID: middleware.GetCorrelationID(c),
		RequestedAt:   time.Now().UTC(),
	}

	result, err := h.saleService.Sell(c.Request.Context(), sellRequest)
	if err != nil {
		respondError(c, log.With("item_id", itemID, "transaction_id", req.TransactionID), "Sale not applied", err)
		return
	}

	RespondOK(c, mapSellResult(result, req.TransactionID))
}

// ListByItem returns the sales of one item, oldest first
func (h *SaleHandler) ListByItem(c *gin.Context) {
	log := middleware.RequestLogger(c, h.logger)

	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	entries, err := h.saleService.ListItemSales(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, log, "Failed to list item sales", err)
		return
	}

	response := make([]SaleEntryResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, mapEntryToResponse(entry))
	}
	RespondOK(c, response)
}

// History returns all sales joined with item names
func (h *SaleHandler) History(c *gin.Context) {
	log := middleware.RequestLogger(c, h.logger)

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		log.Warn("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	entries, total, err := h.saleService.ListHistory(c.Request.Context(), pagination.Skip, pagination.Limit)
	if err != nil {
		respondError(c, log, "Failed to list sales history", err)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, mapHistoryToResponse(entries), pagination.Skip, pagination.Limit, int(total))
}

// Checkout queues one sell command per line and answers 202 once all are published
func (h *SaleHandler) Checkout(c *gin.Context) {
	log := middleware.RequestLogger(c, h.logger)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.saleService.SubmitCheckout(c.Request.Context(), req.toCheckout(middleware.GetCorrelationID(c))); err != nil {
		respondError(c, log.With("transaction_id", req.TransactionID), "Checkout not accepted", err)
		return
	}

	RespondAccepted(c, CheckoutResponse{
		TransactionID: req.TransactionID,
		Lines:         len(req.Lines),
		Status:        "PENDING",
	})
}

