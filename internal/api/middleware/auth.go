package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userIDKey contextKey = "auth.userID"
	roleKey   contextKey = "auth.role"
)

// AdminRole is the role value the upstream gateway assigns to the
// practitioner
const AdminRole = "admin"

// AuthContextMiddleware copies the identity headers set by the upstream
// gateway onto the request context. The gateway terminates authentication;
// this service only consumes its verdict.
func AuthContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if userID := r.Header.Get("X-User-ID"); userID != "" {
			ctx = context.WithValue(ctx, userIDKey, userID)
		}
		if role := r.Header.Get("X-User-Role"); role != "" {
			ctx = context.WithValue(ctx, roleKey, role)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user id, or empty when the
// request was anonymous
func UserIDFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

// IsAdmin reports whether the request carries the practitioner role
func IsAdmin(ctx context.Context) bool {
	role, ok := ctx.Value(roleKey).(string)
	return ok && role == AdminRole
}
