package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/floramart/internal/domain/user"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"))

	token, err := tm.Access("u1", user.RoleShopOwner)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sess, err := tm.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, user.RoleShopOwner, sess.Role)
}

func TestTokenManager_Expiry(t *testing.T) {
	fixedNow := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tm := NewTokenManager([]byte("test-secret"))
	tm.now = func() time.Time { return fixedNow }

	token, err := tm.Access("u1", user.RoleCustomer)
	require.NoError(t, err)

	// Just inside the lifetime.
	tm.now = func() time.Time { return fixedNow.Add(DefaultAccessTTL - time.Minute) }
	_, err = tm.VerifyAccess(token)
	require.NoError(t, err)

	// Past the lifetime.
	tm.now = func() time.Time { return fixedNow.Add(DefaultAccessTTL + time.Minute) }
	_, err = tm.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, err := NewTokenManager([]byte("secret-a")).Access("u1", user.RoleCustomer)
	require.NoError(t, err)

	_, err = NewTokenManager([]byte("secret-b")).VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"))

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := tm.VerifyAccess(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}
