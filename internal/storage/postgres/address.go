package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/floramart/internal/domain/user"
)

const (
	addressColumns = `id, user_id, full_name, phone, street, ward, province, address_type, is_default`

	listAddressesSQL = `SELECT ` + addressColumns + `
		FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, id`

	getAddressByIDSQL = `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`

	createAddressSQL = `INSERT INTO addresses (id, user_id, full_name, phone, street, ward,
		province, address_type, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	updateAddressSQL = `UPDATE addresses SET full_name = $3, phone = $4, street = $5,
		ward = $6, province = $7, address_type = $8, is_default = $9
		WHERE id = $1 AND user_id = $2`

	deleteAddressSQL = `DELETE FROM addresses WHERE id = $2 AND user_id = $1`

	// Runs inside the same transaction as the insert or update that sets a new
	// default, so the partial unique index on (user_id) WHERE is_default never
	// sees two defaults.
	unsetDefaultSQL = `UPDATE addresses SET is_default = FALSE
		WHERE user_id = $1 AND is_default AND id <> $2`
)

var _ user.AddressRepository = (*AddressRepository)(nil)

// AddressRepository implements user.AddressRepository backed by PostgreSQL.
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository returns an AddressRepository that uses the given pool.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// ListByUser returns the user's addresses, default first.
func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]user.Address, error) {
	rows, err := r.pool.Query(ctx, listAddressesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing addresses for user %q: %w", userID, err)
	}
	addresses, err := pgx.CollectRows(rows, scanAddress)
	if err != nil {
		return nil, fmt.Errorf("listing addresses for user %q: %w", userID, err)
	}
	return addresses, nil
}

// GetByID returns user.ErrAddressNotFound when no address matches.
func (r *AddressRepository) GetByID(ctx context.Context, id string) (*user.Address, error) {
	rows, err := r.pool.Query(ctx, getAddressByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting address %q: %w", id, err)
	}
	a, err := pgx.CollectExactlyOneRow(rows, scanAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrAddressNotFound
		}
		return nil, fmt.Errorf("getting address %q: %w", id, err)
	}
	return &a, nil
}

// Create persists a new address. When the address is marked default, the
// user's previous default is unset in the same transaction.
func (r *AddressRepository) Create(ctx context.Context, a *user.Address) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if a.IsDefault {
			if _, err := tx.Exec(ctx, unsetDefaultSQL, a.UserID, a.ID); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, createAddressSQL,
			a.ID, a.UserID, a.FullName, a.Phone, a.Street, a.Ward,
			a.Province, a.AddressType, a.IsDefault,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("creating address for user %q: %w", a.UserID, err)
	}
	return nil
}

// Update rewrites an address owned by a.UserID. Returns user.ErrAddressNotFound
// when the address does not exist or belongs to another user.
func (r *AddressRepository) Update(ctx context.Context, a *user.Address) error {
	var updated bool
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if a.IsDefault {
			if _, err := tx.Exec(ctx, unsetDefaultSQL, a.UserID, a.ID); err != nil {
				return err
			}
		}
		tag, err := tx.Exec(ctx, updateAddressSQL,
			a.ID, a.UserID, a.FullName, a.Phone, a.Street,
			a.Ward, a.Province, a.AddressType, a.IsDefault,
		)
		updated = tag.RowsAffected() > 0
		return err
	})
	if err != nil {
		return fmt.Errorf("updating address %q: %w", a.ID, err)
	}
	if !updated {
		return user.ErrAddressNotFound
	}
	return nil
}

// Delete removes an address owned by userID. Returns user.ErrAddressNotFound
// when the address does not exist or belongs to another user.
func (r *AddressRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, deleteAddressSQL, userID, id)
	if err != nil {
		return fmt.Errorf("deleting address %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrAddressNotFound
	}
	return nil
}

func scanAddress(row pgx.CollectableRow) (user.Address, error) {
	var a user.Address
	err := row.Scan(
		&a.ID, &a.UserID, &a.FullName, &a.Phone, &a.Street,
		&a.Ward, &a.Province, &a.AddressType, &a.IsDefault,
	)
	return a, err
}
