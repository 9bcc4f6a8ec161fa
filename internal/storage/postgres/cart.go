package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/floramart/internal/domain/cart"
)

const (
	// ON CONFLICT keeps the one-cart-per-user invariant under concurrent
	// first requests; the losing insert falls through to the same row.
	getOrCreateCartSQL = `INSERT INTO carts (id, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id`

	listCartItemsSQL = `SELECT variant_id, quantity, price, added_at
		FROM cart_items WHERE cart_id = $1 ORDER BY added_at`

	upsertCartItemSQL = `INSERT INTO cart_items (cart_id, variant_id, quantity, price, added_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cart_id, variant_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, price = EXCLUDED.price`

	updateCartItemQuantitySQL = `UPDATE cart_items SET quantity = $3
		WHERE cart_id = $1 AND variant_id = $2`

	removeCartItemSQL = `DELETE FROM cart_items WHERE cart_id = $1 AND variant_id = $2`

	clearCartSQL = `DELETE FROM cart_items WHERE cart_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// GetOrCreate returns the user's cart with its items, creating an empty cart
// on first use.
func (r *CartRepository) GetOrCreate(ctx context.Context, userID string) (*cart.Cart, error) {
	var cartID string
	err := r.pool.QueryRow(ctx, getOrCreateCartSQL, uuid.NewString(), userID).Scan(&cartID)
	if err != nil {
		return nil, fmt.Errorf("getting cart for user %q: %w", userID, err)
	}

	rows, err := r.pool.Query(ctx, listCartItemsSQL, cartID)
	if err != nil {
		return nil, fmt.Errorf("listing cart items: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanCartItem)
	if err != nil {
		return nil, fmt.Errorf("listing cart items: %w", err)
	}

	return &cart.Cart{ID: cartID, UserID: userID, Items: items}, nil
}

// UpsertItem inserts the line or replaces quantity and price when the variant
// is already in the cart.
func (r *CartRepository) UpsertItem(ctx context.Context, cartID string, item cart.Item) error {
	_, err := r.pool.Exec(ctx, upsertCartItemSQL,
		cartID, item.VariantID, item.Quantity, item.Price, item.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting cart item %q: %w", item.VariantID, err)
	}
	return nil
}

// UpdateQuantity changes an existing line's quantity. Returns
// cart.ErrItemNotFound when the variant is not in the cart.
func (r *CartRepository) UpdateQuantity(ctx context.Context, cartID, variantID string, quantity int) error {
	tag, err := r.pool.Exec(ctx, updateCartItemQuantitySQL, cartID, variantID, quantity)
	if err != nil {
		return fmt.Errorf("updating cart item %q: %w", variantID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// RemoveItem deletes a line. Returns cart.ErrItemNotFound when absent.
func (r *CartRepository) RemoveItem(ctx context.Context, cartID, variantID string) error {
	tag, err := r.pool.Exec(ctx, removeCartItemSQL, cartID, variantID)
	if err != nil {
		return fmt.Errorf("removing cart item %q: %w", variantID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// Clear removes every line from the cart.
func (r *CartRepository) Clear(ctx context.Context, cartID string) error {
	_, err := r.pool.Exec(ctx, clearCartSQL, cartID)
	if err != nil {
		return fmt.Errorf("clearing cart %q: %w", cartID, err)
	}
	return nil
}

func scanCartItem(row pgx.CollectableRow) (cart.Item, error) {
	var (
		item cart.Item
		qty  int32
	)
	err := row.Scan(&item.VariantID, &qty, &item.Price, &item.AddedAt)
	item.Quantity = int(qty)
	return item, err
}
