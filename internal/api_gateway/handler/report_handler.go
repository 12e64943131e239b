package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inventory-sales-ledger/internal/api_gateway/middleware"
	"github.com/inventory-sales-ledger/internal/api_gateway/service"
)

// ReportHandler serves reads from the sales projection
type ReportHandler struct {
	reportService service.ReportService
	logger        *slog.Logger
	now           func() time.Time
}

func NewReportHandler(logger *slog.Logger, reportService service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
		now:           time.Now,
	}
}

// SalesSummary aggregates units and revenue per item over [from, to)
func (h *ReportHandler) SalesSummary(c *gin.Context) {
	log := middleware.RequestLogger(c, h.logger)

	var params SummaryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid report parameters")
		return
	}

	from, to, err := params.window(h.now())
	if err != nil {
		RespondBadRequest(c, "Dates must be YYYY-MM-DD or RFC 3339")
		return
	}

	summary, err := h.reportService.SalesSummary(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, log, "Failed to build sales summary", err)
		return
	}

	RespondOK(c, summary)
}

// ProjectedSale returns the projection copy of one sale entry, 404 until the poller catches up
func (h *ReportHandler) ProjectedSale(c *gin.Context) {
	log := middleware.RequestLogger(c, h.logger)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid sale entry ID")
		return
	}

	record, err := h.reportService.ProjectedSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, "Failed to get projected sale", err)
		return
	}

	RespondOK(c, mapSaleRecord(record))
}

// Rejections lists checkout lines of a transaction that the processor did not apply
func (h *ReportHandler) Rejections(c *gin.Context) {
	log := middleware.RequestLogger(c, h.logger)

	var params RejectionParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "transaction_id is required")
		return
	}

	rejections, err := h.reportService.Rejections(c.Request.Context(), params.TransactionID)
	if err != nil {
		respondError(c, log, "Failed to list rejections", err)
		return
	}

	RespondOK(c, rejections)
}

