package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"multiverse-server/internal/auth"
	"multiverse-server/internal/shared/errors"
	"multiverse-server/internal/shared/response"
)

type contextKey string

const UserContextKey contextKey = "user"

// JWTMiddleware authenticates requests with a Bearer operator token.
func JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "jwt",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Error(w, r, logger, errors.Unauthorized("authentication required"))
			return
		}

		claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Error(w, r, logger, errors.Unauthorized("invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		logger.Debug("JWT authentication successful", "operator", claims.Operator)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin layers an admin-role check on top of JWT authentication.
func RequireAdmin(next http.Handler) http.Handler {
	return JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "admin",
			"method", r.Method,
			"path", r.URL.Path,
		)

		claims := GetUserFromContext(r)
		if claims == nil || claims.Role != auth.RoleAdmin {
			response.Error(w, r, logger, errors.Forbidden("admin role required"))
			return
		}

		next.ServeHTTP(w, r)
	}))
}

// GetUserFromContext returns the authenticated claims, if any.
func GetUserFromContext(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(UserContextKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}
