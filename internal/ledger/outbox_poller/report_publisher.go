package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inventory-sales-ledger/internal/domain/outbox"
	"github.com/inventory-sales-ledger/internal/domain/report"
	"github.com/inventory-sales-ledger/internal/domain/shared"
)

// ReportPublisher copies one committed sale into the report projection
type ReportPublisher interface {
	PublishToReport(ctx context.Context, message *outbox.Message) error
}

type ReportPublisherImpl struct {
	outboxRepo outbox.Repository
	reportRepo report.Repository
	logger     *slog.Logger
}

func NewReportPublisher(
	outboxRepo outbox.Repository,
	reportRepo report.Repository,
	logger *slog.Logger,
) ReportPublisher {
	return &ReportPublisherImpl{
		outboxRepo: outboxRepo,
		reportRepo: reportRepo,
		logger:     logger,
	}
}

// PublishToReport upserts the sale record and then marks the message PROCESSED.
// The upsert is keyed by sale entry id, so a message published twice projects once.
func (p *ReportPublisherImpl) PublishToReport(ctx context.Context, message *outbox.Message) error {
	record, err := message.SaleRecord()
	if err != nil {
		p.logger.Error("Failed to decode outbox payload", "outbox_id", message.ID, "error", err)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Failed to mark undecodable outbox message", "outbox_id", message.ID, "error", updateErr)
		}
		return fmt.Errorf("decode payload of outbox message %d: %w", message.ID, err)
	}

	logger := p.logger
	if record.CorrelationID != "" {
		logger = p.logger.With("correlation_id", record.CorrelationID)
	}

	now := time.Now().UTC()
	record.ProjectedAt = &now

	if err := p.reportRepo.UpsertSale(ctx, record); err != nil {
		return fmt.Errorf("project sale %s: %w", record.SaleEntryID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		return fmt.Errorf("sale %s projected but outbox message %d not marked PROCESSED: %w", record.SaleEntryID, message.ID, err)
	}

	logger.Debug("Sale projected", "outbox_id", message.ID, "sale_entry_id", record.SaleEntryID.String())
	return nil
}
