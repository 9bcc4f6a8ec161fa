// Package user holds account and address records shared across the platform.
package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Role determines which parts of the API an account may reach.
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleShopOwner Role = "shop_owner"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleShopOwner, RoleAdmin:
		return true
	}
	return false
}

var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering with an email that is
	// already in use.
	ErrEmailTaken = errors.New("email already registered")
	// ErrAddressNotFound is returned when a requested address does not exist
	// or belongs to another user.
	ErrAddressNotFound = errors.New("address not found")
)

// User is a registered account. PasswordHash is a bcrypt hash and never
// leaves the server.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	Role         Role
	CreatedAt    time.Time
}

// Address is a delivery address owned by a user. Orders copy the full value
// at checkout rather than referencing it, so later edits never rewrite
// delivery history.
type Address struct {
	ID          string `json:"id,omitempty"`
	UserID      string `json:"-"`
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	Street      string `json:"street"`
	Ward        string `json:"ward"`
	Province    string `json:"province"`
	AddressType string `json:"address_type"`
	IsDefault   bool   `json:"is_default"`
}

// Repository defines persistence operations for users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// AddressRepository defines persistence operations for addresses. Create and
// Update must keep at most one default address per user: marking an address
// as default unsets the previous default in the same transaction.
type AddressRepository interface {
	ListByUser(ctx context.Context, userID string) ([]Address, error)
	GetByID(ctx context.Context, id string) (*Address, error)
	Create(ctx context.Context, a *Address) error
	Update(ctx context.Context, a *Address) error
	Delete(ctx context.Context, userID, id string) error
}
