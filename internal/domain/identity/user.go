package identity

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/househero/backend/internal/domain/trust"
)

// Role of a marketplace user
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// RoleOrDefault returns the role, falling back to customer when unset
func RoleOrDefault(r string) Role {
	if r == "" {
		return RoleCustomer
	}
	return Role(r)
}

// User is an account that can log in
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Password cost for bcrypt
const bcryptCost = 12

// SetPassword stores the bcrypt hash of password
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ProviderProfile carries the verification state of a provider
type ProviderProfile struct {
	ProviderID         int64                    `json:"providerId"`
	VerificationStatus trust.VerificationStatus `json:"verificationStatus"`
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByEmail returns nil, nil when no user has the email
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, u *User) error
}

// ProviderProfileRepository reads provider verification state
type ProviderProfileRepository interface {
	// FindByProviderID returns nil, nil when the provider has no profile
	FindByProviderID(ctx context.Context, providerID int64) (*ProviderProfile, error)
}
