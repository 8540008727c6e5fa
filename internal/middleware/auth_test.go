package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multiverse-server/internal/auth"
)

func claimsEcho(t *testing.T, got **auth.Claims) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = GetUserFromContext(r)
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-that-is-at-least-32-characters")

	t.Run("valid token reaches the handler with claims", func(t *testing.T) {
		token, err := auth.GenerateToken("ops", auth.RoleAdmin, time.Hour)
		require.NoError(t, err)

		var got *auth.Claims
		handler := JWTMiddleware(claimsEcho(t, &got))

		req := httptest.NewRequest(http.MethodGet, "/api/simulations", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, "ops", got.Operator)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		var got *auth.Claims
		handler := JWTMiddleware(claimsEcho(t, &got))

		req := httptest.NewRequest(http.MethodGet, "/api/simulations", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, got)
	})

	t.Run("malformed token is unauthorized", func(t *testing.T) {
		handler := JWTMiddleware(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodGet, "/api/simulations", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-that-is-at-least-32-characters")

	t.Run("admin token passes", func(t *testing.T) {
		token, err := auth.GenerateToken("ops", auth.RoleAdmin, time.Hour)
		require.NoError(t, err)

		var got *auth.Claims
		handler := RequireAdmin(claimsEcho(t, &got))

		req := httptest.NewRequest(http.MethodPost, "/api/simulations", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, auth.RoleAdmin, got.Role)
	})

	t.Run("non-admin role is forbidden", func(t *testing.T) {
		token, err := auth.GenerateToken("watcher", "viewer", time.Hour)
		require.NoError(t, err)

		handler := RequireAdmin(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodPost, "/api/simulations", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated request never reaches the role check", func(t *testing.T) {
		handler := RequireAdmin(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodPost, "/api/simulations", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
