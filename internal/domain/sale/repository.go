package sale

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Repository is the append-only sale ledger
type Repository interface {
	// Append inserts a new entry. A second entry for the same (transaction, item)
	// pair fails with ErrDuplicateTransaction.
	Append(ctx context.Context, entry *Entry) error
	FindByTransactionAndItem(ctx context.Context, transactionID string, itemID int64) (*Entry, error)

	// ListByItem returns entries oldest first, ties broken by entry id
	ListByItem(ctx context.Context, itemID int64) ([]*Entry, error)
	CountByItem(ctx context.Context, itemID int64) (int64, error)
	ListHistory(ctx context.Context, limit, offset int) ([]*HistoryEntry, error)
	CountAll(ctx context.Context) (int64, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrEntryNotFound indicates no entry exists for a (transaction, item) pair
type ErrEntryNotFound struct {
	TransactionID string
	ItemID        int64
}

func (e ErrEntryNotFound) Error() string {
	return fmt.Sprintf("sale entry not found: transaction %s, item %d", e.TransactionID, e.ItemID)
}

// Is matches any ErrEntryNotFound when the target carries no transaction id
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	if t.TransactionID == "" {
		return true
	}
	return e.TransactionID == t.TransactionID && e.ItemID == t.ItemID
}

// ErrDuplicateTransaction indicates the transaction was already applied to the item
type ErrDuplicateTransaction struct {
	TransactionID string
	ItemID        int64
}

func (e ErrDuplicateTransaction) Error() string {
	return fmt.Sprintf("transaction %s already applied to item %d", e.TransactionID, e.ItemID)
}

// Is matches any ErrDuplicateTransaction when the target carries no transaction id
func (e ErrDuplicateTransaction) Is(target error) bool {
	t, ok := target.(ErrDuplicateTransaction)
	if !ok {
		return false
	}
	if t.TransactionID == "" {
		return true
	}
	return e.TransactionID == t.TransactionID && e.ItemID == t.ItemID
}
