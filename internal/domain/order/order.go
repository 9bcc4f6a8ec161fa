// Package order implements checkout (assembling an immutable order from a
// cart snapshot) and the order lifecycle state machine.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/floramart/internal/domain/user"
)

// PaymentMethod enumerates how a customer pays for an order.
type PaymentMethod string

const (
	PaymentCOD     PaymentMethod = "cod"
	PaymentBanking PaymentMethod = "banking"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentBanking
}

// PaymentStatus tracks whether an order has been paid.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// ShipmentStatus tracks the delivery leg independently of the order status.
type ShipmentStatus string

const ShipmentPending ShipmentStatus = "pending"

var (
	// ErrEmptyCart is returned when checking out with no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrUnauthenticated is returned when checkout is attempted without a session.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrNotFound is returned when a requested order does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("order not found")
	// ErrForbidden is returned when the caller's role does not permit the
	// requested operation.
	ErrForbidden = errors.New("operation not permitted")
)

// ValidationError reports request input rejected before any state changed,
// such as an unsupported payment method or an unknown status value. The
// reason is safe to show to the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Item is an immutable order line: a snapshot of the cart line at checkout
// time. It is never repriced from the live catalog.
type Item struct {
	VariantID string          `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Payment holds the payment terms fixed at checkout.
type Payment struct {
	Method PaymentMethod   `json:"method"`
	Status PaymentStatus   `json:"status"`
	Amount decimal.Decimal `json:"amount"`
}

// Shipment holds the delivery cost and state.
type Shipment struct {
	Cost   decimal.Decimal `json:"cost"`
	Status ShipmentStatus  `json:"status"`
}

// Customization carries the gift options a customer picked at checkout.
type Customization struct {
	GiftMessage           string     `json:"gift_message,omitempty"`
	Anonymous             bool       `json:"anonymous,omitempty"`
	DeliveryTimeRequested *time.Time `json:"delivery_time_requested,omitempty"`
}

// StatusChange records one transition in the order's history.
type StatusChange struct {
	From        Status    `json:"from"`
	To          Status    `json:"to"`
	Description string    `json:"description,omitempty"`
	ActorID     string    `json:"actor_id"`
	At          time.Time `json:"at"`
}

// Order is a completed checkout. Items, totals, the address, and the payment
// amount are fixed at creation; only Status (and its history) moves afterwards.
type Order struct {
	ID            string
	Number        string
	UserID        string
	Items         []Item
	TotalQuantity int
	TotalPrice    decimal.Decimal
	Discount      decimal.Decimal
	VoucherCode   string
	Payment       Payment
	Shipment      Shipment
	Status        Status
	Note          string
	Address       user.Address
	Customization Customization
	History       []StatusChange
	CreatedAt     time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	// GetByID returns ErrNotFound when no order matches.
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// UpdateStatus persists a transition guarded by the expected current
	// status: the write succeeds only if the stored status still equals
	// change.From, and returns ErrNotFound otherwise.
	UpdateStatus(ctx context.Context, id string, change StatusChange) error
}
