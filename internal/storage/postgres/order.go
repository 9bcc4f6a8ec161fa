package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/floramart/internal/domain/order"
	"github.com/xenking/floramart/internal/domain/revenue"
)

const (
	orderColumns = `id, number, user_id, total_quantity, total_price, discount, voucher_code,
		payment_method, payment_status, payment_amount, shipping_cost, shipment_status,
		status, note, address, customization, history, created_at`

	createOrderSQL = `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	createOrderItemSQL = `INSERT INTO order_items (order_id, variant_id, quantity, price)
		VALUES ($1, $2, $3, $4)`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT ` + orderColumns + `
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	listOrderItemsSQL = `SELECT variant_id, quantity, price
		FROM order_items WHERE order_id = $1`

	// Compare-and-swap on the previous status. A zero-row update means
	// another actor moved the order first.
	updateOrderStatusSQL = `UPDATE orders
		SET status = $3, history = history || $4::jsonb
		WHERE id = $1 AND status = $2`

	// Orders that were cancelled or returned never count toward revenue.
	listForRevenueSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE status NOT IN ('cancelled', 'returned')
		  AND ($1 = '' OR id IN (
			SELECT oi.order_id FROM order_items oi
			JOIN variants v ON v.id = oi.variant_id
			JOIN products p ON p.id = v.product_id
			WHERE p.shop_id = $1::uuid))
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at`
)

var (
	_ order.Repository    = (*OrderRepository)(nil)
	_ revenue.OrderSource = (*OrderRepository)(nil)
)

// OrderRepository implements order.Repository backed by PostgreSQL. It also
// serves as the revenue.OrderSource.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists an order and its line items in one transaction. The
// address, customization, and history snapshots go into JSONB columns.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	addressJSON, err := json.Marshal(o.Address)
	if err != nil {
		return fmt.Errorf("marshaling order address: %w", err)
	}
	customizationJSON, err := json.Marshal(o.Customization)
	if err != nil {
		return fmt.Errorf("marshaling order customization: %w", err)
	}
	historyJSON, err := json.Marshal(o.History)
	if err != nil {
		return fmt.Errorf("marshaling order history: %w", err)
	}

	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, createOrderSQL,
			o.ID, o.Number, o.UserID, o.TotalQuantity, o.TotalPrice, o.Discount, o.VoucherCode,
			o.Payment.Method, o.Payment.Status, o.Payment.Amount,
			o.Shipment.Cost, o.Shipment.Status,
			o.Status, o.Note, addressJSON, customizationJSON, historyJSON, o.CreatedAt,
		)
		if err != nil {
			return err
		}
		for _, item := range o.Items {
			if _, err := tx.Exec(ctx, createOrderItemSQL, o.ID, item.VariantID, item.Quantity, item.Price); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.Number, err)
	}
	return nil
}

// GetByID returns order.ErrNotFound when no order matches.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	if o.Items, err = r.listItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first, with line items attached.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	for i := range orders {
		if orders[i].Items, err = r.listItems(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// UpdateStatus appends the change to the order's history and moves the status,
// guarded by the expected current status. Returns order.ErrNotFound when the
// order does not exist or its status no longer equals change.From.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, change order.StatusChange) error {
	changeJSON, err := json.Marshal([]order.StatusChange{change})
	if err != nil {
		return fmt.Errorf("marshaling status change: %w", err)
	}

	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, change.From, change.To, changeJSON)
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// ListForRevenue returns revenue-qualifying orders in the period. An empty
// shopID means platform-wide scope; otherwise only orders that contain at
// least one of the shop's variants are returned. Zero since/until leave the
// corresponding bound open. Line items are not loaded; aggregation only needs
// the header figures.
func (r *OrderRepository) ListForRevenue(ctx context.Context, shopID string, since, until time.Time) ([]order.Order, error) {
	var sinceArg, untilArg *time.Time
	if !since.IsZero() {
		sinceArg = &since
	}
	if !until.IsZero() {
		untilArg = &until
	}

	rows, err := r.pool.Query(ctx, listForRevenueSQL, shopID, sinceArg, untilArg)
	if err != nil {
		return nil, fmt.Errorf("listing orders for revenue: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders for revenue: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) listItems(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := r.pool.Query(ctx, listOrderItemsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing items of order %q: %w", orderID, err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Item, error) {
		var (
			item order.Item
			qty  int32
		)
		err := row.Scan(&item.VariantID, &qty, &item.Price)
		item.Quantity = int(qty)
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing items of order %q: %w", orderID, err)
	}
	return items, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o                 order.Order
		paymentMethod     string
		paymentStatus     string
		shipmentStatus    string
		status            string
		totalQuantity     int32
		addressJSON       []byte
		customizationJSON []byte
		historyJSON       []byte
	)
	err := row.Scan(
		&o.ID, &o.Number, &o.UserID, &totalQuantity, &o.TotalPrice, &o.Discount, &o.VoucherCode,
		&paymentMethod, &paymentStatus, &o.Payment.Amount,
		&o.Shipment.Cost, &shipmentStatus,
		&status, &o.Note, &addressJSON, &customizationJSON, &historyJSON, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}
	o.TotalQuantity = int(totalQuantity)
	o.Payment.Method = order.PaymentMethod(paymentMethod)
	o.Payment.Status = order.PaymentStatus(paymentStatus)
	o.Shipment.Status = order.ShipmentStatus(shipmentStatus)
	o.Status = order.Status(status)

	if err := json.Unmarshal(addressJSON, &o.Address); err != nil {
		return o, fmt.Errorf("unmarshaling order address: %w", err)
	}
	if err := json.Unmarshal(customizationJSON, &o.Customization); err != nil {
		return o, fmt.Errorf("unmarshaling order customization: %w", err)
	}
	if err := json.Unmarshal(historyJSON, &o.History); err != nil {
		return o, fmt.Errorf("unmarshaling order history: %w", err)
	}
	return o, nil
}
