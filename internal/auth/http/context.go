// Package http provides the auth gate middleware and the HTTP handlers for login,
// token refresh, API keys and user administration.
package http

import (
	"context"

	authDomain "github.com/allisson/screening/internal/auth/domain"
)

// userKey is a context key type for storing the authenticated principal.
type userKey struct{}

// WithUser stores the authenticated principal in the context.
// Only the authentication middleware calls this.
func WithUser(ctx context.Context, user authDomain.UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser retrieves the authenticated principal from the context.
// Returns (user, true) if a principal is present, or (zero value, false) if the request
// did not pass through the authentication middleware.
func GetUser(ctx context.Context) (authDomain.UserContext, bool) {
	user, ok := ctx.Value(userKey{}).(authDomain.UserContext)
	return user, ok
}
