package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/floramart/internal/domain/voucher"
)

const (
	voucherColumns = `id, code, discount_type, value, min_order_value,
		max_uses, uses, starts_at, ends_at, status, description, created_at`

	findVoucherByCodeSQL = `SELECT ` + voucherColumns + `
		FROM vouchers WHERE UPPER(code) = UPPER($1)`

	// The WHERE clause is the whole concurrency story: two redemptions of a
	// voucher with one use left race on the same row, and only the first
	// update still sees uses < max_uses.
	redeemVoucherSQL = `UPDATE vouchers SET uses = uses + 1
		WHERE UPPER(code) = UPPER($1)
		  AND status = 'active'
		  AND (max_uses = 0 OR uses < max_uses)`

	unredeemVoucherSQL = `UPDATE vouchers SET uses = uses - 1
		WHERE UPPER(code) = UPPER($1) AND uses > 0`

	listVouchersSQL = `SELECT ` + voucherColumns + ` FROM vouchers ORDER BY created_at DESC`

	getVoucherByIDSQL = `SELECT ` + voucherColumns + ` FROM vouchers WHERE id = $1`

	createVoucherSQL = `INSERT INTO vouchers (id, code, discount_type, value, min_order_value,
		max_uses, starts_at, ends_at, status, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	updateVoucherSQL = `UPDATE vouchers SET code = $2, discount_type = $3, value = $4,
		min_order_value = $5, max_uses = $6, starts_at = $7, ends_at = $8,
		status = $9, description = $10
		WHERE id = $1`

	deleteVoucherSQL = `DELETE FROM vouchers WHERE id = $1`
)

var _ voucher.Repository = (*VoucherRepository)(nil)

// VoucherRepository implements voucher.Repository backed by PostgreSQL.
type VoucherRepository struct {
	pool *pgxpool.Pool
}

// NewVoucherRepository returns a VoucherRepository that uses the given pool.
func NewVoucherRepository(pool *pgxpool.Pool) *VoucherRepository {
	return &VoucherRepository{pool: pool}
}

// FindByCode looks up a voucher by its code (case-insensitive).
// Returns voucher.ErrNotFound when no voucher matches.
func (r *VoucherRepository) FindByCode(ctx context.Context, code string) (*voucher.Voucher, error) {
	rows, err := r.pool.Query(ctx, findVoucherByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding voucher by code %q: %w", code, err)
	}

	v, err := pgx.CollectExactlyOneRow(rows, scanVoucher)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, voucher.ErrNotFound
		}
		return nil, fmt.Errorf("finding voucher by code %q: %w", code, err)
	}
	return &v, nil
}

// Redeem increments the voucher's usage counter while the usage limit still
// has room. A zero-row update means a concurrent redemption exhausted the
// voucher first; that surfaces as voucher.ErrUsageExceeded.
func (r *VoucherRepository) Redeem(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, redeemVoucherSQL, code)
	if err != nil {
		return fmt.Errorf("redeeming voucher %q: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return voucher.ErrUsageExceeded
	}
	return nil
}

// Unredeem gives one use back after a checkout that consumed it failed to
// persist an order. The counter never drops below zero; a missing voucher is
// not an error here since there is nothing left to compensate.
func (r *VoucherRepository) Unredeem(ctx context.Context, code string) error {
	if _, err := r.pool.Exec(ctx, unredeemVoucherSQL, code); err != nil {
		return fmt.Errorf("unredeeming voucher %q: %w", code, err)
	}
	return nil
}

// List returns all vouchers, newest first.
func (r *VoucherRepository) List(ctx context.Context) ([]voucher.Voucher, error) {
	rows, err := r.pool.Query(ctx, listVouchersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing vouchers: %w", err)
	}
	vouchers, err := pgx.CollectRows(rows, scanVoucher)
	if err != nil {
		return nil, fmt.Errorf("listing vouchers: %w", err)
	}
	return vouchers, nil
}

// GetByID returns voucher.ErrNotFound when no voucher matches.
func (r *VoucherRepository) GetByID(ctx context.Context, id string) (*voucher.Voucher, error) {
	rows, err := r.pool.Query(ctx, getVoucherByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting voucher %q: %w", id, err)
	}
	v, err := pgx.CollectExactlyOneRow(rows, scanVoucher)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, voucher.ErrNotFound
		}
		return nil, fmt.Errorf("getting voucher %q: %w", id, err)
	}
	return &v, nil
}

// Create persists a new voucher. Returns voucher.ErrCodeTaken when a voucher
// with the same code (ignoring case) already exists.
func (r *VoucherRepository) Create(ctx context.Context, v *voucher.Voucher) error {
	_, err := r.pool.Exec(ctx, createVoucherSQL,
		v.ID, v.Code, v.DiscountType, v.Value, v.MinOrderValue,
		v.MaxUses, v.StartsAt, v.EndsAt, v.Status, v.Description, v.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return voucher.ErrCodeTaken
		}
		return fmt.Errorf("creating voucher %q: %w", v.Code, err)
	}
	return nil
}

// Update rewrites a voucher's rule fields. The usage counter is owned by
// Redeem and never touched here. Returns voucher.ErrNotFound when the
// voucher does not exist and voucher.ErrCodeTaken on a code collision.
func (r *VoucherRepository) Update(ctx context.Context, v *voucher.Voucher) error {
	tag, err := r.pool.Exec(ctx, updateVoucherSQL,
		v.ID, v.Code, v.DiscountType, v.Value, v.MinOrderValue,
		v.MaxUses, v.StartsAt, v.EndsAt, v.Status, v.Description,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return voucher.ErrCodeTaken
		}
		return fmt.Errorf("updating voucher %q: %w", v.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return voucher.ErrNotFound
	}
	return nil
}

// Delete removes a voucher. Returns voucher.ErrNotFound when absent.
func (r *VoucherRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteVoucherSQL, id)
	if err != nil {
		return fmt.Errorf("deleting voucher %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return voucher.ErrNotFound
	}
	return nil
}

func scanVoucher(row pgx.CollectableRow) (voucher.Voucher, error) {
	var (
		v            voucher.Voucher
		discountType string
		status       string
		maxUses      int32
		uses         int32
	)
	err := row.Scan(
		&v.ID, &v.Code, &discountType, &v.Value, &v.MinOrderValue,
		&maxUses, &uses, &v.StartsAt, &v.EndsAt, &status, &v.Description, &v.CreatedAt,
	)
	v.DiscountType = voucher.DiscountType(discountType)
	v.Status = voucher.Status(status)
	v.MaxUses = int(maxUses)
	v.Uses = int(uses)
	return v, err
}
