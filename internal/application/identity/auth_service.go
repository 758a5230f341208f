package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	auditapp "github.com/househero/backend/internal/application/audit"
	"github.com/househero/backend/internal/domain/audit"
	"github.com/househero/backend/internal/domain/identity"
	"github.com/househero/backend/internal/domain/shared"
	"github.com/househero/backend/internal/infrastructure/auth"
	"github.com/househero/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Authentication errors
var (
	ErrCredentialsRequired = shared.NewDomainError(shared.ErrInvalidInput.Code, "Email and password required")
	ErrInvalidCredentials  = shared.NewDomainError(shared.ErrUnauthorized.Code, "Invalid email or password")
	ErrRefreshMissing      = shared.NewDomainError(shared.ErrUnauthorized.Code, "Refresh token not found")
	ErrRefreshInvalid      = shared.NewDomainError(shared.ErrUnauthorized.Code, "Invalid or expired refresh token")
	ErrUserNotFound        = shared.NewDomainError(shared.ErrUnauthorized.Code, "User not found")
	ErrTokenRevoked        = shared.NewDomainError(shared.ErrUnauthorized.Code, "Token has been revoked")
	ErrMissingFields       = shared.NewDomainError(shared.ErrInvalidInput.Code, "Missing required fields")
	ErrEmailRegistered     = shared.NewDomainError(shared.ErrConflict.Code, "Email already registered")
	ErrServiceTypeRequired = shared.NewDomainError(shared.ErrInvalidInput.Code,
		"Service type is required for service provider signup")
)

const minPasswordLength = 8

// AuthService handles authentication operations
type AuthService struct {
	users     identity.UserRepository
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	audit     auditapp.Recorder
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users identity.UserRepository,
	jwt *auth.JWTService,
	blacklist auth.TokenBlacklist,
	recorder auditapp.Recorder,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		jwt:       jwt,
		blacklist: blacklist,
		audit:     recorder,
		logger:    logger,
	}
}

// Login checks the password and issues a token pair
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, ErrCredentialsRequired
	}
	log := logger.FromContextOr(ctx, s.logger)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		log.Info("Login attempt failed: user not found", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}
	if !user.VerifyPassword(in.Password) {
		log.Info("Login attempt failed: invalid password", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	log.Info("Login successful", zap.String("email", user.Email), zap.String("role", string(result.User.Role)))
	s.audit.Log(ctx, actorFor(user, in.IP), audit.ActionLogin, audit.ResourceAuth, nil, nil)
	return result, nil
}

// Refresh rotates a refresh token. The user is reloaded so role changes apply.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, ip string) (*LoginResult, error) {
	if refreshToken == "" {
		return nil, ErrRefreshMissing
	}
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrRefreshInvalid
	}
	if s.revoked(ctx, claims.ID) {
		return nil, ErrRefreshInvalid
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	// The old refresh token must not be replayed
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("Failed to revoke rotated refresh token", zap.Error(err))
	}

	s.audit.Log(ctx, actorFor(user, ip), audit.ActionTokenRefreshed, audit.ResourceAuth, nil, nil)
	return result, nil
}

// Logout revokes the access and refresh tokens it is given. Invalid or
// missing tokens are ignored; only a valid access token produces an audit event.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken, ip string) {
	log := logger.FromContextOr(ctx, s.logger)

	if refreshToken != "" {
		if claims, err := s.jwt.ValidateRefreshToken(refreshToken); err == nil {
			if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				log.Warn("Failed to revoke refresh token", zap.Error(err))
			}
		}
	}

	if accessToken == "" {
		return
	}
	claims, err := s.jwt.ValidateAccessToken(accessToken)
	if err != nil {
		return
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		log.Warn("Failed to revoke access token", zap.Error(err))
	}
	userID := claims.UserID
	s.audit.Log(ctx, auditapp.Actor{UserID: &userID, Email: claims.Email, Role: claims.Role, IP: ip},
		audit.ActionLogout, audit.ResourceAuth, nil, nil)
}

// Authenticate validates an access token and checks that it was not revoked
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.jwt.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	if s.revoked(ctx, claims.ID) {
		return nil, auth.ErrTokenBlacklisted
	}
	return claims, nil
}

// Signup registers a customer or provider account
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*UserInfo, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Invalid email address")
	}
	if len(in.Password) < minPasswordLength {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code,
			fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	role := identity.RoleOrDefault(in.Role)
	if role != identity.RoleCustomer && role != identity.RoleProvider {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Role must be customer or provider")
	}
	if role == identity.RoleProvider && strings.TrimSpace(in.ServiceType) == "" {
		return nil, ErrServiceTypeRequired
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailRegistered
	}

	user := &identity.User{Email: email, Name: name, Role: role}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrEmailRegistered
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	info := toUserInfo(user)
	logger.FromContextOr(ctx, s.logger).Info("User registered",
		zap.Int64("user_id", user.ID), zap.String("role", string(role)))
	return &info, nil
}

func (s *AuthService) issue(user *identity.User) (*LoginResult, error) {
	info := toUserInfo(user)
	pair, err := s.jwt.GenerateTokenPair(auth.Subject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(info.Role),
		Name:   user.Name,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	return &LoginResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		User:                  info,
	}, nil
}

func (s *AuthService) revoked(ctx context.Context, jti string) bool {
	revoked, err := s.blacklist.IsBlacklisted(ctx, jti)
	if err != nil {
		// Redis trouble should not lock every user out
		logger.FromContextOr(ctx, s.logger).Warn("Token blacklist check failed", zap.Error(err))
		return false
	}
	return revoked
}

func actorFor(u *identity.User, ip string) auditapp.Actor {
	id := u.ID
	return auditapp.Actor{UserID: &id, Email: u.Email, Role: string(identity.RoleOrDefault(string(u.Role))), IP: ip}
}
