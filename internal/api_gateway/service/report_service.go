package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/inventory-sales-ledger/internal/domain/outbox"
	"github.com/inventory-sales-ledger/internal/domain/report"
	"github.com/inventory-sales-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReportServiceImpl implements the ReportService interface
type ReportServiceImpl struct {
	reportRepo report.Repository
	outboxRepo outbox.Repository
	exponent   int32
	logger     *slog.Logger
}

// NewReportService creates a report service. currencyExponent is the number of
// minor-unit digits stored amounts carry.
func NewReportService(
	logger *slog.Logger,
	reportRepo report.Repository,
	outboxRepo outbox.Repository,
	currencyExponent int32,
) ReportService {
	return &ReportServiceImpl{
		reportRepo: reportRepo,
		outboxRepo: outboxRepo,
		exponent:   currencyExponent,
		logger:     logger,
	}
}

// SalesSummary aggregates projected sales in [from, to)
func (s *ReportServiceImpl) SalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	if !from.Before(to) {
		return nil, ErrInvalidReportRange
	}

	rows, err := s.reportRepo.SummarizeByItem(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary := &SalesSummary{
		From:         from,
		To:           to,
		Items:        make([]ItemSales, 0, len(rows)),
		TotalRevenue: decimal.Zero,
	}
	for _, row := range rows {
		revenue := s.majorUnits(row.Revenue)
		summary.Items = append(summary.Items, ItemSales{
			ItemID:       row.ItemID,
			ItemName:     row.ItemName,
			UnitsSold:    row.UnitsSold,
			Transactions: row.Transactions,
			Revenue:      revenue,
		})
		summary.UnitsSold += row.UnitsSold
		summary.TotalRevenue = summary.TotalRevenue.Add(revenue)
	}

	s.logger.Debug("Sales summary built", "items", len(summary.Items), "from", from, "to", to)
	return summary, nil
}

func (s *ReportServiceImpl) ProjectedSale(ctx context.Context, saleEntryID uuid.UUID) (*report.SaleRecord, error) {
	record, err := s.reportRepo.GetSale(ctx, saleEntryID)
	var notProjected report.ErrRecordNotFound
	if !errors.As(err, &notProjected) {
		return record, err
	}

	// every committed sale has an outbox message, so its absence means an unknown id
	message, lookupErr := s.outboxRepo.GetBySaleEntryID(ctx, saleEntryID)
	var noMessage outbox.ErrMessageNotFound
	switch {
	case errors.As(lookupErr, &noMessage):
		return nil, fmt.Errorf("%w: %s", ErrSaleNotFound, saleEntryID)
	case lookupErr != nil:
		return nil, lookupErr
	}

	s.logger.Debug("Sale awaiting projection",
		"sale_entry_id", saleEntryID.String(),
		"outbox_status", message.Status,
		"attempts", message.Attempts,
	)
	return nil, err
}

func (s *ReportServiceImpl) Rejections(ctx context.Context, transactionID string) ([]*report.Rejection, error) {
	if transactionID == "" {
		return nil, shared.ErrInvalidTransactionID
	}
	return s.reportRepo.ListRejections(ctx, transactionID)
}

func (s *ReportServiceImpl) majorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -s.exponent)
}
