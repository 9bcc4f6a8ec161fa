// Package catalog exposes the read model for products and their purchasable
// variants. Carts snapshot variant prices from here, and revenue reports use
// the variant-to-shop ownership to scope per-shop figures.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrVariantNotFound is returned when a requested variant does not exist.
	ErrVariantNotFound = errors.New("variant not found")
	// ErrShopNotFound is returned when no shop matches the lookup.
	ErrShopNotFound = errors.New("shop not found")
)

// Shop is a storefront owned by a single account. Revenue scoping resolves a
// shop-owner session to their shop through it.
type Shop struct {
	ID      string
	OwnerID string
	Name    string
}

// Product is a catalog entry owned by a shop.
type Product struct {
	ID          string
	ShopID      string
	Name        string
	Description string
	Category    string
	Variants    []Variant
}

// Variant is a purchasable configuration of a product with its own price
// and stock count.
type Variant struct {
	ID        string
	ProductID string
	Name      string
	Price     decimal.Decimal
	Stock     int
}

// Repository defines read operations for the catalog.
type Repository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetVariant(ctx context.Context, id string) (*Variant, error)
	// GetShopByOwner returns ErrShopNotFound when the user owns no shop.
	GetShopByOwner(ctx context.Context, ownerID string) (*Shop, error)
}
