package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	// ViewerContextKey is the key used to store viewer claims in context
	ViewerContextKey contextKey = "viewer"
)

// Middleware rejects requests without a valid bearer token
func Middleware(validator Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ViewerContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetViewerFromContext retrieves viewer claims from the request context
func GetViewerFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ViewerContextKey).(*Claims)
	return claims, ok
}

// extractToken extracts the token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return parts[1]
}
