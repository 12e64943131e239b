package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inventory-sales-ledger/internal/domain/outbox"
	"github.com/inventory-sales-ledger/internal/domain/report"
	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/ledger/service"
	"github.com/jackc/pgx/v5"
)

type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) service.OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// CreateOutboxEntry queues the sale for the report projection in the sale's own transaction
func (m *OutboxManagerImpl) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, entry *sale.Entry, itemName, correlationID string) error {
	message, err := outbox.NewMessage(report.NewSaleRecord(entry, itemName, correlationID))
	if err != nil {
		return fmt.Errorf("failed to build outbox payload for sale %s: %w", entry.ID, err)
	}

	if err := m.outboxRepo.WithTx(tx).Create(ctx, message); err != nil {
		m.logger.Error("Failed to create outbox message",
			"sale_entry_id", entry.ID.String(),
			"transaction_id", entry.TransactionID,
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message for sale %s: %w", entry.ID, err)
	}

	m.logger.Debug("Outbox message created", "sale_entry_id", entry.ID.String(), "outbox_id", message.ID)
	return nil
}
