package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/floramart/internal/domain/auth"
)

const (
	saveRefreshTokenSQL = `INSERT INTO refresh_tokens (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)`

	findRefreshTokenSQL = `SELECT token_hash, user_id, expires_at
		FROM refresh_tokens WHERE token_hash = $1`

	deleteRefreshTokenSQL = `DELETE FROM refresh_tokens WHERE token_hash = $1`
)

var _ auth.RefreshTokenRepository = (*RefreshTokenRepository)(nil)

// RefreshTokenRepository implements auth.RefreshTokenRepository backed by
// PostgreSQL. Only token hashes are stored.
type RefreshTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenRepository returns a RefreshTokenRepository that uses the
// given pool.
func NewRefreshTokenRepository(pool *pgxpool.Pool) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

// Save persists a refresh token hash.
func (r *RefreshTokenRepository) Save(ctx context.Context, t auth.RefreshToken) error {
	_, err := r.pool.Exec(ctx, saveRefreshTokenSQL, t.Hash, t.UserID, t.ExpiresAt)
	if err != nil {
		return fmt.Errorf("saving refresh token: %w", err)
	}
	return nil
}

// Find returns auth.ErrInvalidToken when no token matches the hash.
func (r *RefreshTokenRepository) Find(ctx context.Context, hash string) (*auth.RefreshToken, error) {
	rows, err := r.pool.Query(ctx, findRefreshTokenSQL, hash)
	if err != nil {
		return nil, fmt.Errorf("finding refresh token: %w", err)
	}
	t, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (auth.RefreshToken, error) {
		var t auth.RefreshToken
		err := row.Scan(&t.Hash, &t.UserID, &t.ExpiresAt)
		return t, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrInvalidToken
		}
		return nil, fmt.Errorf("finding refresh token: %w", err)
	}
	return &t, nil
}

// Delete removes a refresh token. Deleting an unknown hash is not an error.
func (r *RefreshTokenRepository) Delete(ctx context.Context, hash string) error {
	_, err := r.pool.Exec(ctx, deleteRefreshTokenSQL, hash)
	if err != nil {
		return fmt.Errorf("deleting refresh token: %w", err)
	}
	return nil
}
