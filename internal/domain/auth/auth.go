// Package auth implements account registration, login, and the bearer-token
// scheme: short-lived HMAC-signed JWT access tokens plus rotating opaque
// refresh tokens persisted as SHA-256 hashes.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/floramart/internal/domain/user"
)

var (
	// ErrInvalidCredentials is returned on login with a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken is returned when a token is malformed, expired, or revoked.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Session identifies the authenticated caller of a single request. It is
// built from the access token by the API layer and passed explicitly to
// domain services; nothing is kept in process-global state.
type Session struct {
	UserID string
	Role   user.Role
}

// RefreshToken is a persisted refresh token. Only the SHA-256 hash of the
// opaque token is stored; the plaintext exists solely in the client's hands.
type RefreshToken struct {
	Hash      string
	UserID    string
	ExpiresAt time.Time
}

// RefreshTokenRepository defines persistence for refresh tokens.
type RefreshTokenRepository interface {
	Save(ctx context.Context, t RefreshToken) error
	// Find returns ErrInvalidToken when no token matches the hash.
	Find(ctx context.Context, hash string) (*RefreshToken, error)
	Delete(ctx context.Context, hash string) error
}

// TokenPair is what a successful login or refresh hands to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// hashToken derives the storage key for an opaque refresh token.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// newOpaqueToken generates a 256-bit random token, hex encoded.
func newOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "read random")
	}
	return hex.EncodeToString(buf), nil
}
