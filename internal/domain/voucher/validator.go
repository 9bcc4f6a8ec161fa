package voucher

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Validator checks whether a voucher code can be applied to an order of the
// given value. It does not consume a use; redemption happens separately at
// checkout via Repository.Redeem.
type Validator struct {
	repo Repository
	now  func() time.Time
}

// NewValidator creates a Validator backed by the given Repository.
func NewValidator(repo Repository) *Validator {
	return &Validator{repo: repo, now: time.Now}
}

// Validate looks up the voucher for code and checks every eligibility
// constraint against orderValue at the current time. Checks run in a fixed
// order so the storefront always reports the most fundamental failure first:
// existence, admin status, time window, minimum order value, usage limit.
func (v *Validator) Validate(ctx context.Context, code string, orderValue decimal.Decimal) (*Voucher, error) {
	vo, err := v.repo.FindByCode(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup voucher")
	}

	now := v.now()

	switch vo.Status {
	case StatusInactive:
		return nil, ErrDisabled
	case StatusExpired:
		return nil, ErrExpired
	}
	if now.After(vo.EndsAt) {
		return nil, ErrExpired
	}
	if now.Before(vo.StartsAt) {
		return nil, ErrNotYetActive
	}

	if vo.MinOrderValue.IsPositive() && orderValue.LessThan(vo.MinOrderValue) {
		return nil, &BelowMinimumError{Minimum: vo.MinOrderValue}
	}

	if vo.MaxUses > 0 && vo.Uses >= vo.MaxUses {
		return nil, ErrUsageExceeded
	}

	return vo, nil
}
