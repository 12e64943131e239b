package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/inventory-sales-ledger/internal/domain/sale"
	"github.com/inventory-sales-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const (
	saleColumns = `id, item_id, transaction_id, quantity, unit_price, total, sold_at`

	// ledgerOrder is the canonical entry order: sale time, then entry id
	ledgerOrder = `sold_at ASC, id ASC`
)

// SaleRepository implements the sale.Repository interface for PostgreSQL.
// It only ever inserts into sale_entries.
type SaleRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSaleRepository creates a new PostgreSQL sale ledger repository
func NewSaleRepository(logger *slog.Logger, db *persistence.PostgresDB) sale.Repository {
	return &SaleRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *SaleRepository) WithTx(tx pgx.Tx) sale.Repository {
	return &SaleRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanEntry(row pgx.Row) (*sale.Entry, error) {
	var e sale.Entry
	if err := row.Scan(&e.ID, &e.ItemID, &e.TransactionID, &e.Quantity, &e.UnitPrice, &e.Total, &e.SoldAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// Append inserts entry. The (transaction_id, item_id) unique constraint turns a
// second application of the same transaction into ErrDuplicateTransaction.
func (r *SaleRepository) Append(ctx context.Context, entry *sale.Entry) error {
	query := `
		INSERT INTO sale_entries (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		entry.ID,
		entry.ItemID,
		entry.TransactionID,
		entry.Quantity,
		entry.UnitPrice,
		entry.Total,
		entry.SoldAt,
	)
	if err != nil {
		if _, ok := constraintViolation(err, uniqueViolation); ok {
			return sale.ErrDuplicateTransaction{TransactionID: entry.TransactionID, ItemID: entry.ItemID}
		}
		if _, ok := constraintViolation(err, foreignKeyViolation); ok {
			return item.ErrItemNotFound{ItemID: entry.ItemID}
		}
		r.logger.Error("Failed to append sale entry",
			"transaction_id", entry.TransactionID,
			"item_id", entry.ItemID,
			"error", err,
		)
		return fmt.Errorf("failed to append sale entry: %w", err)
	}

	return nil
}

// FindByTransactionAndItem returns the entry a transaction produced for an item
func (r *SaleRepository) FindByTransactionAndItem(ctx context.Context, transactionID string, itemID int64) (*sale.Entry, error) {
	query := `SELECT ` + saleColumns + `
		FROM sale_entries
		WHERE transaction_id = $1 AND item_id = $2
	`

	entry, err := scanEntry(r.querier.QueryRow(ctx, query, transactionID, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sale.ErrEntryNotFound{TransactionID: transactionID, ItemID: itemID}
		}
		r.logger.Error("Failed to find sale entry",
			"transaction_id", transactionID,
			"item_id", itemID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to find sale entry: %w", err)
	}

	return entry, nil
}

// ListByItem returns all entries of an item in ledger order
func (r *SaleRepository) ListByItem(ctx context.Context, itemID int64) ([]*sale.Entry, error) {
	query := `SELECT ` + saleColumns + `
		FROM sale_entries
		WHERE item_id = $1
		ORDER BY ` + ledgerOrder

	rows, err := r.querier.Query(ctx, query, itemID)
	if err != nil {
		r.logger.Error("Failed to list sale entries", "item_id", itemID, "error", err)
		return nil, fmt.Errorf("failed to list sale entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*sale.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over sale entries: %w", err)
	}

	return entries, nil
}

// CountByItem counts the entries referencing an item
func (r *SaleRepository) CountByItem(ctx context.Context, itemID int64) (int64, error) {
	var count int64
	err := r.querier.QueryRow(ctx, `SELECT COUNT(*) FROM sale_entries WHERE item_id = $1`, itemID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count sale entries", "item_id", itemID, "error", err)
		return 0, fmt.Errorf("failed to count sale entries: %w", err)
	}
	return count, nil
}

// ListHistory pages through every entry joined with its item name
func (r *SaleRepository) ListHistory(ctx context.Context, limit, offset int) ([]*sale.HistoryEntry, error) {
	query := `
		SELECT s.id, s.item_id, s.transaction_id, s.quantity, s.unit_price, s.total, s.sold_at, i.name
		FROM sale_entries s
		JOIN items i ON i.id = s.item_id
		ORDER BY s.sold_at ASC, s.id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.querier.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list sales history", "error", err)
		return nil, fmt.Errorf("failed to list sales history: %w", err)
	}
	defer rows.Close()

	history := make([]*sale.HistoryEntry, 0)
	for rows.Next() {
		var h sale.HistoryEntry
		err := rows.Scan(
			&h.ID,
			&h.ItemID,
			&h.TransactionID,
			&h.Quantity,
			&h.UnitPrice,
			&h.Total,
			&h.SoldAt,
			&h.ItemName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sales history: %w", err)
		}
		history = append(history, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over sales history: %w", err)
	}

	return history, nil
}

// CountAll counts every entry in the ledger
func (r *SaleRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.querier.QueryRow(ctx, `SELECT COUNT(*) FROM sale_entries`).Scan(&count); err != nil {
		r.logger.Error("Failed to count sale entries", "error", err)
		return 0, fmt.Errorf("failed to count sale entries: %w", err)
	}
	return count, nil
}
