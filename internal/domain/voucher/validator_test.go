package voucher

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockVoucherRepo struct {
	byCode     map[string]*Voucher
	err        error
	lookedUp   string
	redeemed   []string
	redeemErr  error
	createErr  error
	lastSaved  *Voucher
	deletedIDs []string
}

func (m *mockVoucherRepo) FindByCode(_ context.Context, code string) (*Voucher, error) {
	m.lookedUp = code
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.byCode[code]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *mockVoucherRepo) Redeem(_ context.Context, code string) error {
	m.redeemed = append(m.redeemed, code)
	return m.redeemErr
}

func (m *mockVoucherRepo) Unredeem(_ context.Context, _ string) error { return nil }

func (m *mockVoucherRepo) List(_ context.Context) ([]Voucher, error) { return nil, nil }

func (m *mockVoucherRepo) GetByID(_ context.Context, _ string) (*Voucher, error) {
	return nil, ErrNotFound
}

func (m *mockVoucherRepo) Create(_ context.Context, v *Voucher) error {
	m.lastSaved = v
	return m.createErr
}

func (m *mockVoucherRepo) Update(_ context.Context, v *Voucher) error {
	m.lastSaved = v
	return nil
}

func (m *mockVoucherRepo) Delete(_ context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func repoWith(vouchers ...*Voucher) *mockVoucherRepo {
	byCode := make(map[string]*Voucher, len(vouchers))
	for _, v := range vouchers {
		byCode[NormalizeCode(v.Code)] = v
	}
	return &mockVoucherRepo{byCode: byCode}
}

func TestValidator_Validate(t *testing.T) {
	fixedNow := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := fixedNow.Add(-30 * 24 * time.Hour)
	future := fixedNow.Add(30 * 24 * time.Hour)

	tests := []struct {
		name       string
		voucher    *Voucher
		code       string
		orderValue decimal.Decimal
		wantErr    error
	}{
		{
			name: "active voucher within window succeeds",
			voucher: &Voucher{
				Code: "SAVE10", DiscountType: DiscountPercentage,
				Value: decimal.NewFromInt(10), Status: StatusActive,
				StartsAt: past, EndsAt: future,
			},
			code:       "SAVE10",
			orderValue: decimal.NewFromInt(200000),
		},
		{
			name: "lowercase input matches stored uppercase code",
			voucher: &Voucher{
				Code: "SAVE10", DiscountType: DiscountPercentage,
				Value: decimal.NewFromInt(10), Status: StatusActive,
				StartsAt: past, EndsAt: future,
			},
			code:       "  save10 ",
			orderValue: decimal.NewFromInt(200000),
		},
		{
			name:       "unknown code",
			voucher:    nil,
			code:       "BOGUS",
			orderValue: decimal.NewFromInt(200000),
			wantErr:    ErrNotFound,
		},
		{
			name: "inactive voucher",
			voucher: &Voucher{
				Code: "OFF", DiscountType: DiscountFixed,
				Value: decimal.NewFromInt(5000), Status: StatusInactive,
				StartsAt: past, EndsAt: future,
			},
			code:       "OFF",
			orderValue: decimal.NewFromInt(200000),
			wantErr:    ErrDisabled,
		},
		{
			name: "expired status",
			voucher: &Voucher{
				Code: "OLD", DiscountType: DiscountFixed,
				Value: decimal.NewFromInt(5000), Status: StatusExpired,
				StartsAt: past, EndsAt: future,
			},
			code:       "OLD",
			orderValue: decimal.NewFromInt(200000),
			wantErr:    ErrExpired,
		},
		{
			name: "end date passed",
			voucher: &Voucher{
				Code: "LATE", DiscountType: DiscountFixed,
				Value: decimal.NewFromInt(5000), Status: StatusActive,
				StartsAt: past.Add(-24 * time.Hour), EndsAt: past,
			},
			code:       "LATE",
			orderValue: decimal.NewFromInt(200000),
			wantErr:    ErrExpired,
		},
		{
			name: "start date in the future",
			voucher: &Voucher{
				Code: "SOON", DiscountType: DiscountFixed,
				Value: decimal.NewFromInt(5000), Status: StatusActive,
				StartsAt: future, EndsAt: future.Add(24 * time.Hour),
			},
			code:       "SOON",
			orderValue: decimal.NewFromInt(200000),
			wantErr:    ErrNotYetActive,
		},
		{
			name: "order below minimum",
			voucher: &Voucher{
				Code: "BIG", DiscountType: DiscountPercentage,
				Value: decimal.NewFromInt(20), MinOrderValue: decimal.NewFromInt(100000),
				Status: StatusActive, StartsAt: past, EndsAt: future,
			},
			code:       "BIG",
			orderValue: decimal.NewFromInt(99999),
			wantErr:    &BelowMinimumError{},
		},
		{
			name: "order exactly at minimum succeeds",
			voucher: &Voucher{
				Code: "BIG", DiscountType: DiscountPercentage,
				Value: decimal.NewFromInt(20), MinOrderValue: decimal.NewFromInt(100000),
				Status: StatusActive, StartsAt: past, EndsAt: future,
			},
			code:       "BIG",
			orderValue: decimal.NewFromInt(100000),
		},
		{
			name: "usage limit exhausted",
			voucher: &Voucher{
				Code: "SUMMER20", DiscountType: DiscountPercentage,
				Value: decimal.NewFromInt(20), MinOrderValue: decimal.NewFromInt(100000),
				MaxUses: 5, Uses: 5,
				Status: StatusActive, StartsAt: past, EndsAt: future,
			},
			code:       "SUMMER20",
			orderValue: decimal.NewFromInt(150000),
			wantErr:    ErrUsageExceeded,
		},
		{
			name: "usage under limit succeeds",
			voucher: &Voucher{
				Code: "SUMMER20", DiscountType: DiscountPercentage,
				Value: decimal.NewFromInt(20), MaxUses: 5, Uses: 4,
				Status: StatusActive, StartsAt: past, EndsAt: future,
			},
			code:       "SUMMER20",
			orderValue: decimal.NewFromInt(150000),
		},
		{
			name: "zero max uses means unlimited",
			voucher: &Voucher{
				Code: "FOREVER", DiscountType: DiscountFixed,
				Value: decimal.NewFromInt(10000), MaxUses: 0, Uses: 99999,
				Status: StatusActive, StartsAt: past, EndsAt: future,
			},
			code:       "FOREVER",
			orderValue: decimal.NewFromInt(200000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var repo *mockVoucherRepo
			if tt.voucher != nil {
				repo = repoWith(tt.voucher)
			} else {
				repo = repoWith()
			}

			v := NewValidator(repo)
			v.now = func() time.Time { return fixedNow }

			got, err := v.Validate(context.Background(), tt.code, tt.orderValue)

			switch want := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, tt.voucher.Code, got.Code)
			case *BelowMinimumError:
				var bmErr *BelowMinimumError
				require.ErrorAs(t, err, &bmErr)
				assert.True(t, tt.voucher.MinOrderValue.Equal(bmErr.Minimum))
				assert.Contains(t, bmErr.Error(), "100.000₫")
				_ = want
			default:
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			}
		})
	}
}

func TestValidator_NormalizesBeforeLookup(t *testing.T) {
	repo := repoWith()
	v := NewValidator(repo)

	_, err := v.Validate(context.Background(), " save10\n", decimal.NewFromInt(1000))
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "SAVE10", repo.lookedUp)
}
