package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/floramart/internal/domain/user"
)

type memUserRepo struct {
	byID    map[string]*user.User
	byEmail map[string]*user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:    make(map[string]*user.User),
		byEmail: make(map[string]*user.User),
	}
}

func (m *memUserRepo) Create(_ context.Context, u *user.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return user.ErrEmailTaken
	}
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

type memTokenRepo struct {
	byHash map[string]RefreshToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{byHash: make(map[string]RefreshToken)}
}

func (m *memTokenRepo) Save(_ context.Context, t RefreshToken) error {
	m.byHash[t.Hash] = t
	return nil
}

func (m *memTokenRepo) Find(_ context.Context, hash string) (*RefreshToken, error) {
	t, ok := m.byHash[hash]
	if !ok {
		return nil, ErrInvalidToken
	}
	return &t, nil
}

func (m *memTokenRepo) Delete(_ context.Context, hash string) error {
	delete(m.byHash, hash)
	return nil
}

func newTestAuth() (*Service, *memUserRepo, *memTokenRepo) {
	users := newMemUserRepo()
	tokens := newMemTokenRepo()
	return NewService(users, tokens, NewTokenManager([]byte("test-secret"))), users, tokens
}

func TestService_Register(t *testing.T) {
	svc, _, _ := newTestAuth()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{
		Email:    "rose@example.com",
		Password: "s3cret-garden",
		Name:     "Rose",
	})
	require.NoError(t, err)
	assert.Equal(t, user.RoleCustomer, u.Role)
	assert.NotEqual(t, "s3cret-garden", u.PasswordHash)
	require.NoError(t,
		bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-garden")))

	_, err = svc.Register(ctx, RegisterRequest{Email: "rose@example.com", Password: "other"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestService_Login(t *testing.T) {
	svc, _, tokens := newTestAuth()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "rose@example.com", Password: "s3cret-garden"})
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		u, pair, err := svc.Login(ctx, "rose@example.com", "s3cret-garden")
		require.NoError(t, err)
		assert.Equal(t, "rose@example.com", u.Email)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		// Stored hashed, not in plaintext.
		_, plaintextStored := tokens.byHash[pair.RefreshToken]
		assert.False(t, plaintextStored)
		assert.Len(t, tokens.byHash, 1)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "rose@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "s3cret-garden")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_Refresh_Rotates(t *testing.T) {
	svc, _, _ := newTestAuth()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "rose@example.com", Password: "pw"})
	require.NoError(t, err)
	_, pair, err := svc.Login(ctx, "rose@example.com", "pw")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The consumed token must be dead.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The rotated token still works.
	_, err = svc.Refresh(ctx, next.RefreshToken)
	require.NoError(t, err)
}

func TestService_Refresh_Expired(t *testing.T) {
	svc, _, _ := newTestAuth()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "rose@example.com", Password: "pw"})
	require.NoError(t, err)
	_, pair, err := svc.Login(ctx, "rose@example.com", "pw")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(DefaultRefreshTTL + time.Hour) }

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_Logout(t *testing.T) {
	svc, _, tokens := newTestAuth()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "rose@example.com", Password: "pw"})
	require.NoError(t, err)
	_, pair, err := svc.Login(ctx, "rose@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))
	assert.Empty(t, tokens.byHash)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Logging out twice is fine.
	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))
}
