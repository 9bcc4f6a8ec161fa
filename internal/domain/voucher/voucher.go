// Package voucher implements discount codes: eligibility validation,
// discount calculation, and the administrative rules for managing them.
package voucher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/floramart/pkg/money"
)

// DiscountType enumerates the supported voucher discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage-based discount to the order value.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed applies a fixed monetary discount capped at the order value.
	DiscountFixed DiscountType = "fixed"
)

// Status is the administrative lifecycle state of a voucher.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusExpired  Status = "expired"
)

var (
	// ErrNotFound is returned when no voucher matches the given code.
	ErrNotFound = errors.New("voucher not found")
	// ErrDisabled is returned when the voucher has been switched off by an admin.
	ErrDisabled = errors.New("voucher is disabled")
	// ErrExpired is returned when the voucher is past its end date or marked expired.
	ErrExpired = errors.New("voucher has expired")
	// ErrNotYetActive is returned when the voucher's start date is in the future.
	ErrNotYetActive = errors.New("voucher is not active yet")
	// ErrUsageExceeded is returned when the voucher has exhausted its allowed uses.
	ErrUsageExceeded = errors.New("voucher usage limit reached")
	// ErrCodeTaken is returned when creating a voucher whose code already
	// exists (codes are unique regardless of case).
	ErrCodeTaken = errors.New("voucher code already exists")
)

// BelowMinimumError is returned when the order value does not reach the
// voucher's minimum. The message carries the formatted minimum so the
// storefront can surface it directly.
type BelowMinimumError struct {
	Minimum decimal.Decimal
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("order value must be at least %s to use this voucher", money.FormatVND(e.Minimum))
}

// Voucher is a discount code with eligibility constraints.
//
// MinOrderValue of zero means no minimum; MaxUses of zero means unlimited.
type Voucher struct {
	ID            string
	Code          string
	DiscountType  DiscountType
	Value         decimal.Decimal
	MinOrderValue decimal.Decimal
	MaxUses       int
	Uses          int
	StartsAt      time.Time
	EndsAt        time.Time
	Status        Status
	Description   string
	CreatedAt     time.Time
}

// NormalizeCode canonicalizes a voucher code for storage and lookup:
// surrounding whitespace is stripped and the code is uppercased, so
// "save10" redeems a stored "SAVE10".
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Discount computes the discount amount for the given order value.
// Percentage vouchers take value% of the order; fixed vouchers are capped at
// the order value so the payable amount never goes negative. The result is
// floored at zero and rounded to 2 decimal places.
func Discount(v *Voucher, orderValue decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch v.DiscountType {
	case DiscountPercentage:
		amount = orderValue.Mul(v.Value).Div(hundred)
	case DiscountFixed:
		amount = decimal.Min(v.Value, orderValue)
	default:
		return decimal.Zero
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount.Round(2)
}

var hundred = decimal.NewFromInt(100)

// ValidateNew checks the administrative rules for creating a voucher.
func (v *Voucher) ValidateNew(now time.Time) error {
	if err := v.validateRules(); err != nil {
		return err
	}
	if v.EndsAt.Before(now) {
		return errors.New("end date must not be in the past")
	}
	if v.StartsAt.Before(now) {
		return errors.New("start date must not be in the past")
	}
	return nil
}

// ValidateUpdate checks the administrative rules for updating a voucher.
// Unlike creation, dates in the past are allowed so running campaigns can
// still be edited.
func (v *Voucher) ValidateUpdate() error {
	return v.validateRules()
}

func (v *Voucher) validateRules() error {
	if NormalizeCode(v.Code) == "" {
		return errors.New("code is required")
	}
	switch v.DiscountType {
	case DiscountPercentage:
		if v.Value.GreaterThan(hundred) {
			return errors.New("percentage discount must not exceed 100")
		}
	case DiscountFixed:
	default:
		return errors.Errorf("unsupported discount type: %q", v.DiscountType)
	}
	if !v.Value.IsPositive() {
		return errors.New("discount value must be greater than 0")
	}
	if v.MinOrderValue.IsNegative() {
		return errors.New("minimum order value must not be negative")
	}
	if v.MaxUses < 0 {
		return errors.New("usage limit must be greater than 0")
	}
	if v.EndsAt.Before(v.StartsAt) {
		return errors.New("start date must not be after end date")
	}
	return nil
}

// Repository provides lookup and mutation of vouchers.
//
// Redeem must be a single conditional update: it increments the usage
// counter only while the usage limit still has room, so two concurrent
// redemptions of a nearly exhausted voucher can never both succeed.
// Unredeem returns one use, flooring at zero; checkout calls it when the
// order insert fails after the use was already consumed.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Voucher, error)
	Redeem(ctx context.Context, code string) error
	Unredeem(ctx context.Context, code string) error

	List(ctx context.Context) ([]Voucher, error)
	GetByID(ctx context.Context, id string) (*Voucher, error)
	Create(ctx context.Context, v *Voucher) error
	Update(ctx context.Context, v *Voucher) error
	Delete(ctx context.Context, id string) error
}
