package integration

import (
	"net/http"
	"strings"
	"testing"

	"github.com/househero/backend/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAuthBoundaries_Integration checks what anonymous, customer and revoked
// callers can reach on a fully wired server.
func TestAuthBoundaries_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	s := NewTestServer(t)
	s.Signup(t, "Thandi Mokoena", "thandi@example.com", "customer", "")

	t.Run("public endpoints need no token", func(t *testing.T) {
		for _, path := range []string{"/health", "/api/health", "/api/pricing", "/api/pricing?category=Cleaning", "/api/site/config"} {
			w := s.Do(http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusOK, w.Code, path)
		}
	})

	t.Run("readiness reports the database", func(t *testing.T) {
		w := s.Do(http.MethodGet, "/health", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"ok"`)
	})

	t.Run("protected endpoints reject anonymous callers", func(t *testing.T) {
		for _, path := range []string{"/api/payments", "/api/audit-logs", "/api/auth/me", "/api/trust-scores/1"} {
			w := s.Do(http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		w := s.Do(http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "thandi@example.com",
			"password": "not-the-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotContains(t, w.Body.String(), "accessToken")
	})

	t.Run("admin role cannot be self-assigned", func(t *testing.T) {
		w := s.Do(http.MethodPost, "/api/auth/signup", "", map[string]any{
			"name":     "Mallory",
			"email":    "mallory@example.com",
			"password": testPassword,
			"role":     "admin",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	token := s.Login(t, "thandi@example.com")

	t.Run("customers cannot reach admin routes", func(t *testing.T) {
		for _, path := range []string{"/api/payments", "/api/audit-logs", "/api/service-requests/1"} {
			w := s.Do(http.MethodGet, path, token, nil)
			assert.Equal(t, http.StatusForbidden, w.Code, path)
		}
	})

	t.Run("tampered token", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		forged := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

		w := s.Do(http.MethodGet, "/api/auth/me", forged, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("me returns the caller", func(t *testing.T) {
		w := s.Do(http.MethodGet, "/api/auth/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "thandi@example.com")
	})

	t.Run("logout revokes the access token", func(t *testing.T) {
		w := s.Do(http.MethodPost, "/api/auth/logout", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Logout successful", decodeData[handler.MessageResponse](t, w).Message)

		w = s.Do(http.MethodGet, "/api/auth/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
