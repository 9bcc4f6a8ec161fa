package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/floramart/internal/domain/auth"
	"github.com/xenking/floramart/internal/domain/cart"
	"github.com/xenking/floramart/internal/domain/user"
	"github.com/xenking/floramart/internal/domain/voucher"
)

// CheckoutRequest holds the input for placing an order. The items come from
// the user's persisted cart, not from the request.
type CheckoutRequest struct {
	PaymentMethod PaymentMethod
	ShippingCost  decimal.Decimal
	AddressID     string
	VoucherCode   string
	Note          string
	Customization Customization
}

// Service encapsulates checkout and order lifecycle logic.
type Service struct {
	carts     cart.Repository
	vouchers  voucher.Repository
	validator *voucher.Validator
	addresses user.AddressRepository
	orders    Repository
	now       func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	carts cart.Repository,
	vouchers voucher.Repository,
	validator *voucher.Validator,
	addresses user.AddressRepository,
	orders Repository,
) *Service {
	return &Service{
		carts:     carts,
		vouchers:  vouchers,
		validator: validator,
		addresses: addresses,
		orders:    orders,
		now:       time.Now,
	}
}

// Checkout snapshots the session user's cart into an immutable order:
// validates and redeems the voucher if one is given, copies the delivery
// address, computes totals, persists the order, and clears the cart.
func (s *Service) Checkout(ctx context.Context, sess *auth.Session, req CheckoutRequest) (*Order, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	if !req.PaymentMethod.Valid() {
		return nil, &ValidationError{Reason: fmt.Sprintf("unsupported payment method: %q", req.PaymentMethod)}
	}
	if req.ShippingCost.IsNegative() {
		return nil, &ValidationError{Reason: "shipping cost must not be negative"}
	}

	c, err := s.carts.GetOrCreate(ctx, sess.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	addr, err := s.addresses.GetByID(ctx, req.AddressID)
	if err != nil {
		if errors.Is(err, user.ErrAddressNotFound) {
			return nil, user.ErrAddressNotFound
		}
		return nil, errors.Wrap(err, "get address")
	}
	if addr.UserID != sess.UserID {
		return nil, user.ErrAddressNotFound
	}

	// Snapshot cart lines; the order never repoints at live catalog data.
	items := make([]Item, len(c.Items))
	for i, line := range c.Items {
		items[i] = Item{
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		}
	}
	totals := cart.Aggregate(c.Items)

	// Validate, then consume a voucher use. Redeem is an atomic conditional
	// increment, so a concurrent checkout that exhausts the voucher between
	// the two calls surfaces here as ErrUsageExceeded.
	discount := decimal.Zero
	code := voucher.NormalizeCode(req.VoucherCode)
	if code != "" {
		vo, err := s.validator.Validate(ctx, code, totals.Price)
		if err != nil {
			return nil, err
		}
		discount = voucher.Discount(vo, totals.Price)
		if err := s.vouchers.Redeem(ctx, code); err != nil {
			return nil, err
		}
	}

	payable := totals.Price.Sub(discount)
	if payable.IsNegative() {
		payable = decimal.Zero
	}

	now := s.now()
	o := &Order{
		ID:            uuid.New().String(),
		Number:        newOrderNumber(now),
		UserID:        sess.UserID,
		Items:         items,
		TotalQuantity: totals.Quantity,
		TotalPrice:    totals.Price,
		Discount:      discount,
		VoucherCode:   code,
		Payment: Payment{
			Method: req.PaymentMethod,
			Status: PaymentUnpaid,
			Amount: payable.Add(req.ShippingCost),
		},
		Shipment: Shipment{
			Cost:   req.ShippingCost,
			Status: ShipmentPending,
		},
		Status:        StatusPending,
		Note:          req.Note,
		Address:       *addr,
		Customization: req.Customization,
		CreatedAt:     now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		// The voucher use was consumed above; give it back so a storage
		// fault does not burn the customer's code.
		if code != "" {
			if uerr := s.vouchers.Unredeem(ctx, code); uerr != nil {
				zctx.From(ctx).Error("return voucher use after failed order insert",
					zap.String("voucher", code),
					zap.Error(uerr),
				)
			}
		}
		return nil, errors.Wrap(err, "create order")
	}

	// The cart is emptied once the order exists. The order is already
	// durable at this point, so a failed clear is logged rather than
	// surfaced to the customer.
	if err := s.carts.Clear(ctx, c.ID); err != nil {
		zctx.From(ctx).Warn("clear cart after checkout",
			zap.String("order", o.Number),
			zap.Error(err),
		)
	}

	return o, nil
}

// Get returns an order by ID. Customers only see their own orders.
func (s *Service) Get(ctx context.Context, sess *auth.Session, id string) (*Order, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Role == user.RoleCustomer && o.UserID != sess.UserID {
		return nil, ErrNotFound
	}
	return o, nil
}

// ListByUser returns a user's orders. Customers may only list their own.
func (s *Service) ListByUser(ctx context.Context, sess *auth.Session, userID string) ([]Order, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	if sess.Role == user.RoleCustomer && userID != sess.UserID {
		return nil, ErrForbidden
	}
	return s.orders.ListByUser(ctx, userID)
}

// UpdateStatus moves an order to the next status, enforcing the transition
// table. Customers may only cancel their own pending orders; staff roles may
// perform any transition the table allows. Every transition is recorded in
// the order's history with the optional description.
func (s *Service) UpdateStatus(ctx context.Context, sess *auth.Session, id string, next Status, description string) (*Order, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}
	if !next.Valid() {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown order status: %q", next)}
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if sess.Role == user.RoleCustomer {
		if o.UserID != sess.UserID {
			return nil, ErrNotFound
		}
		if next != StatusCancelled {
			return nil, ErrForbidden
		}
		if o.Status != StatusPending {
			return nil, &InvalidTransitionError{From: o.Status, To: next}
		}
	}

	if !o.Status.CanTransitionTo(next) {
		return nil, &InvalidTransitionError{From: o.Status, To: next}
	}

	change := StatusChange{
		From:        o.Status,
		To:          next,
		Description: description,
		ActorID:     sess.UserID,
		At:          s.now(),
	}
	if err := s.orders.UpdateStatus(ctx, id, change); err != nil {
		if errors.Is(err, ErrNotFound) {
			// The guarded write lost a race: the stored status moved after
			// our read. Report it as an illegal transition from the state
			// the caller saw.
			return nil, &InvalidTransitionError{From: o.Status, To: next}
		}
		return nil, errors.Wrap(err, "update status")
	}

	o.Status = next
	o.History = append(o.History, change)
	return o, nil
}

// newOrderNumber builds a human-readable order identifier: the checkout date
// plus a short random suffix, e.g. "FM-20250615-9F3A21C0".
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("FM-%s-%s", now.Format("20060102"), suffix)
}
