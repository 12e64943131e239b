package item

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
)

// ListFilter narrows item listings
type ListFilter struct {
	Category string // Exact category match, empty for all
	SoldOnly bool   // Only items with at least one unit sold
}

// Repository defines item persistence operations
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id int64) (*Item, error)
	GetByName(ctx context.Context, name string) (*Item, error)
	List(ctx context.Context, filter ListFilter) ([]*Item, error)

	// Update writes an administrative edit guarded by the item version
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error

	// LockForUpdate acquires the row lock that serializes sales of one item
	LockForUpdate(ctx context.Context, id int64) (*Item, error)

	// DecrementStock removes quantity units and bumps the sold count in a single
	// conditional statement. It never lets quantity on hand go negative.
	DecrementStock(ctx context.Context, id int64, quantity int64, saleDate time.Time) (*Item, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrItemNotFound indicates a missing item
type ErrItemNotFound struct {
	ItemID int64
}

func (e ErrItemNotFound) Error() string {
	return "item not found: " + strconv.FormatInt(e.ItemID, 10)
}

// Is matches any ErrItemNotFound when the target carries no id
func (e ErrItemNotFound) Is(target error) bool {
	t, ok := target.(ErrItemNotFound)
	if !ok {
		return false
	}
	if t.ItemID == 0 {
		return true
	}
	return e.ItemID == t.ItemID
}

// ErrDuplicateName indicates item name uniqueness violation
type ErrDuplicateName struct {
	Name string
}

func (e ErrDuplicateName) Error() string {
	return "item with name already exists: " + e.Name
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	ItemID int64
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for item: " + strconv.FormatInt(e.ItemID, 10)
}

// ErrItemHasSales is returned when deleting an item that sale entries still reference
type ErrItemHasSales struct {
	ItemID int64
}

func (e ErrItemHasSales) Error() string {
	return "item has recorded sales and cannot be deleted: " + strconv.FormatInt(e.ItemID, 10)
}
