package item

import (
	"errors"
	"strings"
	"time"
)

// Common errors
var (
	ErrInsufficientStock = errors.New("insufficient stock for sale")
	ErrInvalidPrice      = errors.New("price cannot be negative")
	ErrInvalidStock      = errors.New("quantity on hand cannot be negative")
	ErrEmptyName         = errors.New("item name cannot be empty")
	ErrEmptyLocation     = errors.New("item location cannot be empty")
	ErrNothingToUpdate   = errors.New("no item fields to update")
)

// Item is the current mutable state of a stocked article.
// Price is stored in minor units and is the price charged by the next sale.
type Item struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Price          int64      `json:"price"`
	QuantityOnHand int64      `json:"quantity_on_hand"`
	Location       string     `json:"location"`
	Category       *string    `json:"category,omitempty"`
	AcquiredOn     time.Time  `json:"acquired_on"`
	SoldCount      int64      `json:"sold_count"`
	LastSaleDate   *time.Time `json:"last_sale_date,omitempty"`
	Version        int        `json:"version"` // For optimistic locking on administrative edits
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewItem validates registration input and returns an item with nothing sold
func NewItem(name string, price, quantity int64, location string, category *string, acquiredOn time.Time) (*Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if strings.TrimSpace(location) == "" {
		return nil, ErrEmptyLocation
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}
	if quantity < 0 {
		return nil, ErrInvalidStock
	}
	if category != nil && strings.TrimSpace(*category) == "" {
		category = nil
	}

	now := time.Now().UTC()
	return &Item{
		Name:           name,
		Price:          price,
		QuantityOnHand: quantity,
		Location:       location,
		Category:       category,
		AcquiredOn:     acquiredOn,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CanSell reports whether quantity units are on hand
func (i *Item) CanSell(quantity int64) bool {
	return quantity > 0 && i.QuantityOnHand >= quantity
}

// Edit carries an administrative change. Nil fields are left untouched.
type Edit struct {
	Name     *string
	Price    *int64
	Quantity *int64
}

// Apply validates and applies the edit. Sold count and sale history are never touched,
// so prices already frozen into sale entries stay as they were.
func (i *Item) Apply(edit Edit) error {
	if edit.Name == nil && edit.Price == nil && edit.Quantity == nil {
		return ErrNothingToUpdate
	}
	if edit.Name != nil && strings.TrimSpace(*edit.Name) == "" {
		return ErrEmptyName
	}
	if edit.Price != nil && *edit.Price < 0 {
		return ErrInvalidPrice
	}
	if edit.Quantity != nil && *edit.Quantity < 0 {
		return ErrInvalidStock
	}

	if edit.Name != nil {
		i.Name = strings.TrimSpace(*edit.Name)
	}
	if edit.Price != nil {
		i.Price = *edit.Price
	}
	if edit.Quantity != nil {
		i.QuantityOnHand = *edit.Quantity
	}
	i.UpdatedAt = time.Now().UTC()
	i.Version++
	return nil
}
