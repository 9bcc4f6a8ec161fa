package auth

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/xenking/floramart/internal/domain/user"
)

const (
	// DefaultAccessTTL keeps access tokens short-lived; clients refresh
	// through the refresh-token endpoint.
	DefaultAccessTTL = 15 * time.Minute
	// DefaultRefreshTTL bounds how long a session can survive without login.
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// accessClaims is the JWT payload of an access token.
type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies access tokens with a shared HMAC secret.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager creates a TokenManager with the default token lifetimes.
func NewTokenManager(secret []byte) *TokenManager {
	return &TokenManager{
		secret:     secret,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
}

// Access issues a signed access token for the given user.
func (m *TokenManager) Access(userID string, role user.Role) (string, error) {
	now := m.now()
	claims := accessClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign access token")
	}
	return signed, nil
}

// VerifyAccess parses and validates an access token and returns the session
// it encodes. Any parse, signature, or expiry failure maps to ErrInvalidToken.
func (m *TokenManager) VerifyAccess(token string) (*Session, error) {
	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	role := user.Role(claims.Role)
	if claims.Subject == "" || !role.Valid() {
		return nil, ErrInvalidToken
	}
	return &Session{UserID: claims.Subject, Role: role}, nil
}
