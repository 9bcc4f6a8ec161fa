// Package cart holds a user's pending line items and the pure aggregation
// used for totals. Prices are snapshotted when an item is added, so catalog
// price changes never reprice an existing cart.
package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrItemNotFound is returned when updating or removing a line item that
	// is not in the cart.
	ErrItemNotFound = errors.New("item not in cart")
	// ErrInvalidQuantity is returned when a quantity is not positive.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
)

// Item is a single cart line: a variant, how many, and the unit price at the
// time it was added.
type Item struct {
	VariantID string
	Quantity  int
	Price     decimal.Decimal
	AddedAt   time.Time
}

// Cart is the single cart owned by a user.
type Cart struct {
	ID     string
	UserID string
	Items  []Item
}

// Totals are derived from items and never stored independently.
type Totals struct {
	Quantity int
	Price    decimal.Decimal
}

// Aggregate sums line items into totals. It is pure and handles the empty
// cart: no items yields zero quantity and zero price.
func Aggregate(items []Item) Totals {
	t := Totals{Price: decimal.Zero}
	for _, item := range items {
		t.Quantity += item.Quantity
		line := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		t.Price = t.Price.Add(line)
	}
	return t
}

// Repository defines persistence operations for carts.
type Repository interface {
	// GetOrCreate returns the user's cart, creating an empty one on first use.
	GetOrCreate(ctx context.Context, userID string) (*Cart, error)
	// UpsertItem inserts the line item or replaces quantity and price when
	// the variant is already in the cart.
	UpsertItem(ctx context.Context, cartID string, item Item) error
	// UpdateQuantity changes an existing line's quantity.
	// Returns ErrItemNotFound when the variant is not in the cart.
	UpdateQuantity(ctx context.Context, cartID, variantID string, quantity int) error
	// RemoveItem deletes a line. Returns ErrItemNotFound when absent.
	RemoveItem(ctx context.Context, cartID, variantID string) error
	// Clear removes every line from the cart.
	Clear(ctx context.Context, cartID string) error
}
