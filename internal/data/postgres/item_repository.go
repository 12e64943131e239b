// Package postgres provides PostgreSQL implementations of the item store, the sale
// ledger and the sale outbox. Every repository can be rebound to a pgx.Tx with WithTx
// so the ledger engine can combine them in one transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inventory-sales-ledger/internal/domain/item"
	"github.com/inventory-sales-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const itemColumns = `id, name, price, quantity_on_hand, location, category, acquired_on,
		sold_count, last_sale_date, version, created_at, updated_at`

// ItemRepository implements the item.Repository interface for PostgreSQL
type ItemRepository struct {
	querier persistence.Querier // *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewItemRepository creates a new PostgreSQL item repository
func NewItemRepository(logger *slog.Logger, db *persistence.PostgresDB) item.Repository {
	return &ItemRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *ItemRepository) WithTx(tx pgx.Tx) item.Repository {
	return &ItemRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanItem(row pgx.Row) (*item.Item, error) {
	var it item.Item
	err := row.Scan(
		&it.ID,
		&it.Name,
		&it.Price,
		&it.QuantityOnHand,
		&it.Location,
		&it.Category,
		&it.AcquiredOn,
		&it.SoldCount,
		&it.LastSaleDate,
		&it.Version,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create stores a new item and sets its generated id
func (r *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	query := `
		INSERT INTO items (name, price, quantity_on_hand, location, category, acquired_on,
			sold_count, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		it.Name,
		it.Price,
		it.QuantityOnHand,
		it.Location,
		it.Category,
		it.AcquiredOn,
		it.SoldCount,
		it.Version,
		it.CreatedAt,
		it.UpdatedAt,
	).Scan(&it.ID)
	if err != nil {
		if _, ok := constraintViolation(err, uniqueViolation); ok {
			return item.ErrDuplicateName{Name: it.Name}
		}
		r.logger.Error("Failed to create item", "name", it.Name, "error", err)
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// GetByID retrieves an item by its id
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*item.Item, error) {
	query := `SELECT ` + itemColumns + `
		FROM items
		WHERE id = $1
	`

	it, err := scanItem(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, item.ErrItemNotFound{ItemID: id}
		}
		r.logger.Error("Failed to get item", "item_id", id, "error", err)
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return it, nil
}

// GetByName returns nil, nil when no item carries the name
func (r *ItemRepository) GetByName(ctx context.Context, name string) (*item.Item, error) {
	query := `SELECT ` + itemColumns + `
		FROM items
		WHERE name = $1
	`

	it, err := scanItem(r.querier.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get item by name", "name", name, "error", err)
		return nil, fmt.Errorf("failed to get item by name: %w", err)
	}

	return it, nil
}

// List returns the items matching filter ordered by id
func (r *ItemRepository) List(ctx context.Context, filter item.ListFilter) ([]*item.Item, error) {
	query := `SELECT ` + itemColumns + `
		FROM items
		WHERE ($1 = '' OR category = $1) AND (NOT $2 OR sold_count > 0)
		ORDER BY id ASC
	`

	rows, err := r.querier.Query(ctx, query, filter.Category, filter.SoldOnly)
	if err != nil {
		r.logger.Error("Failed to list items", "error", err)
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*item.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			r.logger.Error("Failed to scan item", "error", err)
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over items: %w", err)
	}

	return items, nil
}

// Update persists an administrative edit. The caller has already bumped Version,
// so the row must still carry Version-1.
func (r *ItemRepository) Update(ctx context.Context, it *item.Item) error {
	query := `
		UPDATE items
		SET name = $1, price = $2, quantity_on_hand = $3, version = $4, updated_at = $5
		WHERE id = $6 AND version = $7
	`

	result, err := r.querier.Exec(ctx, query,
		it.Name,
		it.Price,
		it.QuantityOnHand,
		it.Version,
		it.UpdatedAt,
		it.ID,
		it.Version-1,
	)
	if err != nil {
		if _, ok := constraintViolation(err, uniqueViolation); ok {
			return item.ErrDuplicateName{Name: it.Name}
		}
		r.logger.Error("Failed to update item", "item_id", it.ID, "error", err)
		return fmt.Errorf("failed to update item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return item.ErrConcurrentModification{ItemID: it.ID}
	}

	return nil
}

// Delete removes an item that has no sale entries
func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM items
		WHERE id = $1
	`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		if _, ok := constraintViolation(err, foreignKeyViolation); ok {
			return item.ErrItemHasSales{ItemID: id}
		}
		r.logger.Error("Failed to delete item", "item_id", id, "error", err)
		return fmt.Errorf("failed to delete item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return item.ErrItemNotFound{ItemID: id}
	}

	return nil
}

// LockForUpdate takes the row lock on the item and returns its current state.
// The lock is held until the surrounding transaction ends.
func (r *ItemRepository) LockForUpdate(ctx context.Context, id int64) (*item.Item, error) {
	query := `SELECT ` + itemColumns + `
		FROM items
		WHERE id = $1
		FOR UPDATE
	`

	it, err := scanItem(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, item.ErrItemNotFound{ItemID: id}
		}
		r.logger.Error("Failed to lock item for update", "item_id", id, "error", err)
		return nil, fmt.Errorf("failed to lock item for update: %w", err)
	}

	return it, nil
}

// DecrementStock applies a sale to the item row. The WHERE guard makes the update a
// no-op when fewer than quantity units remain.
func (r *ItemRepository) DecrementStock(ctx context.Context, id int64, quantity int64, saleDate time.Time) (*item.Item, error) {
	query := `
		UPDATE items
		SET quantity_on_hand = quantity_on_hand - $1,
			sold_count = sold_count + $1,
			last_sale_date = $2,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $3 AND quantity_on_hand >= $1
		RETURNING ` + itemColumns

	it, err := scanItem(r.querier.QueryRow(ctx, query, quantity, saleDate, id))
	if err == nil {
		return it, nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.missingOrInsufficient(ctx, id)
	}
	if _, ok := constraintViolation(err, checkViolation); ok {
		return nil, item.ErrInsufficientStock
	}
	r.logger.Error("Failed to decrement stock", "item_id", id, "quantity", quantity, "error", err)
	return nil, fmt.Errorf("failed to decrement stock: %w", err)
}

func (r *ItemRepository) missingOrInsufficient(ctx context.Context, id int64) error {
	var exists bool
	err := r.querier.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check item existence: %w", err)
	}
	if !exists {
		return item.ErrItemNotFound{ItemID: id}
	}
	return item.ErrInsufficientStock
}
