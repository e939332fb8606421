package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/zipmap/zip-api/internal/pkg/jwt"
	"github.com/zipmap/zip-api/internal/pkg/logger"
	"github.com/zipmap/zip-api/internal/pkg/response"
)

type contextKey string

// UserIDKey is the context key of the caller's opaque user id
const UserIDKey contextKey = "user_id"

// Identity returns middleware that resolves the caller from a bearer token
// issued by the account service.
func Identity(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwtService.ValidateToken(parts[1])
			if err != nil {
				if err == jwt.ErrExpiredToken {
					response.Unauthorized(w, "Token expired")
				} else {
					response.Unauthorized(w, "Invalid token")
				}
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID())
			l := logger.FromContext(ctx).With().Str("user_id", claims.UserID()).Logger()
			next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx, &l)))
		})
	}
}

// WithUserID stores the caller id in ctx
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID extracts the caller id from context
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}
