// Package service provides the token service used by the auth gate.
//
// Access and refresh tokens are HS256 JWTs signed with separate secrets. Validation
// distinguishes expired tokens from malformed or tampered ones so clients know when
// a refresh is worth attempting.
package service

import (
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/screening/internal/auth/domain"
)

// TokenService issues and validates access and refresh tokens.
type TokenService interface {
	// IssueAccessToken signs a short-lived token carrying the principal's id, role,
	// client and status. Returns the token and its expiry.
	IssueAccessToken(uc authDomain.UserContext) (string, time.Time, error)

	// IssueRefreshToken signs a long-lived token carrying only the user id.
	IssueRefreshToken(uc authDomain.UserContext) (string, time.Time, error)

	// ValidateAccessToken verifies signature, issuer, audience, expiry and token type.
	// Returns ErrTokenExpired or ErrTokenInvalid on failure.
	ValidateAccessToken(token string) (authDomain.UserContext, error)

	// ValidateRefreshToken is ValidateAccessToken for refresh tokens; it yields the user id.
	ValidateRefreshToken(token string) (uuid.UUID, error)
}
