package identity

import (
	"time"

	"github.com/househero/backend/internal/domain/identity"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string
}

// UserInfo is the public view of a user
type UserInfo struct {
	ID        int64         `json:"id"`
	Email     string        `json:"email"`
	Name      string        `json:"name"`
	Role      identity.Role `json:"role"`
	CreatedAt time.Time     `json:"createdAt,omitempty"`
}

// LoginResult contains the tokens and user after a successful login or refresh
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	User                  UserInfo
}

// SignupInput contains the input for account registration
type SignupInput struct {
	Name        string
	Email       string
	Password    string
	Role        string
	// ServiceType is required for provider signups
	ServiceType string
	IP          string
}

func toUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      identity.RoleOrDefault(string(u.Role)),
		CreatedAt: u.CreatedAt,
	}
}
