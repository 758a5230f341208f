package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	auditapp "github.com/househero/backend/internal/application/audit"
	"github.com/househero/backend/internal/application/identity"
	identitydomain "github.com/househero/backend/internal/domain/identity"
	"github.com/househero/backend/internal/interfaces/http/middleware"
)

// RefreshCookieName is the httpOnly cookie holding the refresh token
const RefreshCookieName = "refreshToken"

// AuthService is the subset of the identity service the handler needs
type AuthService interface {
	Login(ctx context.Context, in identity.LoginInput) (*identity.LoginResult, error)
	Refresh(ctx context.Context, refreshToken, ip string) (*identity.LoginResult, error)
	Logout(ctx context.Context, accessToken, refreshToken, ip string)
	Signup(ctx context.Context, in identity.SignupInput) (*identity.UserInfo, error)
}

// AuthHandler handles login, token refresh, logout and registration
type AuthHandler struct {
	BaseHandler
	service      AuthService
	secureCookie bool
	now          func() time.Time
}

// NewAuthHandler creates a new AuthHandler. secureCookie marks the refresh
// cookie Secure and should be set in production.
func NewAuthHandler(service AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{service: service, secureCookie: secureCookie, now: time.Now}
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"lerato@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
}

// RefreshRequest optionally carries the refresh token when no cookie is sent
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// SignupRequest is the body of POST /auth/signup
type SignupRequest struct {
	Name        string `json:"name" binding:"required,max=200" example:"Lerato Mokoena"`
	Email       string `json:"email" binding:"required,email" example:"lerato@example.com"`
	Password    string `json:"password" binding:"required,min=8" example:"s3cret-pass"`
	Role        string `json:"role" binding:"omitempty,oneof=customer provider" example:"customer"`
	ServiceType string `json:"serviceType" example:"cleaning"`
}

// LoginResponse is returned by login and refresh
type LoginResponse struct {
	Message              string            `json:"message,omitempty" example:"Login successful"`
	AccessToken          string            `json:"accessToken"`
	AccessTokenExpiresAt time.Time         `json:"accessTokenExpiresAt"`
	User                 identity.UserInfo `json:"user"`
}

// SignupResponse is returned after registration
type SignupResponse struct {
	Message string            `json:"message" example:"User registered successfully"`
	User    identity.UserInfo `json:"user"`
}

// Login godoc
// @ID           login
// @Summary      Log in
// @Description  Returns an access token and sets the refresh token as an httpOnly cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} APIResponse[LoginResponse]
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.Login(c.Request.Context(), identity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       auditapp.ClientIP(c.Request.Header),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RefreshTokenExpiresAt)
	h.Success(c, LoginResponse{
		Message:              "Login successful",
		AccessToken:          result.AccessToken,
		AccessTokenExpiresAt: result.AccessTokenExpiresAt,
		User:                 result.User,
	})
}

// Refresh godoc
// @ID           refreshToken
// @Summary      Rotate the refresh token
// @Description  Reads the refresh token from the cookie (or the body), revokes it and issues a new pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest false "Refresh token when no cookie is sent"
// @Success      200 {object} APIResponse[LoginResponse]
// @Failure      401 {object} dto.Response
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := h.refreshToken(c)

	result, err := h.service.Refresh(c.Request.Context(), token, auditapp.ClientIP(c.Request.Header))
	if err != nil {
		h.clearRefreshCookie(c)
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RefreshTokenExpiresAt)
	h.Success(c, LoginResponse{
		AccessToken:          result.AccessToken,
		AccessTokenExpiresAt: result.AccessTokenExpiresAt,
		User:                 result.User,
	})
}

// Logout godoc
// @ID           logout
// @Summary      Log out
// @Description  Revokes the presented tokens and clears the refresh cookie. Always succeeds.
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[MessageResponse]
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	accessToken, _ := middleware.BearerToken(c)
	h.service.Logout(c.Request.Context(),
		accessToken,
		h.refreshToken(c),
		auditapp.ClientIP(c.Request.Header))
	h.clearRefreshCookie(c)
	h.Success(c, MessageResponse{Message: "Logout successful"})
}

// Signup godoc
// @ID           signup
// @Summary      Register an account
// @Description  Customers and providers may self-register. Providers must name their service type.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Account details"
// @Success      201 {object} APIResponse[SignupResponse]
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	user, err := h.service.Signup(c.Request.Context(), identity.SignupInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		ServiceType: req.ServiceType,
		IP:          auditapp.ClientIP(c.Request.Header),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	message := "User registered successfully"
	if req.Role == "provider" {
		message = "Service provider registered successfully"
	}
	h.Created(c, SignupResponse{Message: message, User: *user})
}

// Me godoc
// @ID           getCurrentUser
// @Summary      Get the authenticated user
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[identity.UserInfo]
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	h.Success(c, identity.UserInfo{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  identitydomain.RoleOrDefault(claims.Role),
	})
}

func (h *AuthHandler) refreshToken(c *gin.Context) string {
	if token, err := c.Cookie(RefreshCookieName); err == nil && token != "" {
		return token
	}
	var req RefreshRequest
	if c.Request.ContentLength != 0 && c.ShouldBindJSON(&req) == nil {
		return req.RefreshToken
	}
	return ""
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(expiresAt.Sub(h.now()).Seconds())
	if maxAge <= 0 {
		maxAge = int((7 * 24 * time.Hour).Seconds())
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}
