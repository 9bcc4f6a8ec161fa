package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/floramart/internal/domain/user"
)

// Service implements registration, login, token refresh, and logout.
type Service struct {
	users  user.Repository
	tokens RefreshTokenRepository
	tm     *TokenManager
	now    func() time.Time
}

// NewService creates an auth Service.
func NewService(users user.Repository, tokens RefreshTokenRepository, tm *TokenManager) *Service {
	return &Service{users: users, tokens: tokens, tm: tm, now: time.Now}
}

// RegisterRequest holds the input for creating an account.
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// Register creates a customer account with a bcrypt-hashed password.
// Returns user.ErrEmailTaken when the email is already registered.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &user.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         user.RoleCustomer,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, user.ErrEmailTaken
		}
		return nil, errors.Wrap(err, "create user")
	}
	return u, nil
}

// Login verifies credentials and issues a token pair. Wrong email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, *TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, errors.Wrap(err, "get user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The used
// token is revoked in the same step (rotation), so a replayed token fails.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	hash := hashToken(refreshToken)

	stored, err := s.tokens.Find(ctx, hash)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, ErrInvalidToken
		}
		return nil, errors.Wrap(err, "find refresh token")
	}
	if s.now().After(stored.ExpiresAt) {
		_ = s.tokens.Delete(ctx, hash)
		return nil, ErrInvalidToken
	}

	u, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if err := s.tokens.Delete(ctx, hash); err != nil {
		return nil, errors.Wrap(err, "revoke refresh token")
	}

	return s.issuePair(ctx, u)
}

// Logout revokes the given refresh token. Unknown tokens are not an error;
// logout is idempotent.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokens.Delete(ctx, hashToken(refreshToken)); err != nil {
		return errors.Wrap(err, "revoke refresh token")
	}
	return nil
}

func (s *Service) issuePair(ctx context.Context, u *user.User) (*TokenPair, error) {
	access, err := s.tm.Access(u.ID, u.Role)
	if err != nil {
		return nil, err
	}

	refresh, err := newOpaqueToken()
	if err != nil {
		return nil, err
	}
	record := RefreshToken{
		Hash:      hashToken(refresh),
		UserID:    u.ID,
		ExpiresAt: s.now().Add(s.tm.refreshTTL),
	}
	if err := s.tokens.Save(ctx, record); err != nil {
		return nil, errors.Wrap(err, "save refresh token")
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
