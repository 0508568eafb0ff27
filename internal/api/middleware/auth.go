package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/courtside/internal/api/apierr"
	"github.com/mcoot/courtside/internal/model"
	"github.com/mcoot/courtside/internal/services/auth"
)

type contextKey string

const identityContextKey contextKey = "identity"

// OptionalAuth extracts the identity if a valid token is present but doesn't
// require it
func OptionalAuth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := extractToken(r); token != "" {
				if identity, err := authService.ValidateToken(token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), identityContextKey, identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads the bearer token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// EventSource cannot set headers
	return r.URL.Query().Get("token")
}

// GetIdentity returns the authenticated user from the request context
func GetIdentity(ctx context.Context) *model.Identity {
	identity, _ := ctx.Value(identityContextKey).(*model.Identity)
	return identity
}

// RequireIdentity rejects requests that OptionalAuth did not authenticate
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentity(r.Context()) == nil {
			apierr.WriteError(w, apierr.NewUnauthorizedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}
