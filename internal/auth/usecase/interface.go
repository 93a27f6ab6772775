// Package usecase implements the authentication and authorization business logic:
// login, token refresh, request authentication, API key lifecycle and user management.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/screening/internal/auth/domain"
)

// UserRepository defines persistence operations for users.
// Implementations must support transaction-aware operations via context propagation.
type UserRepository interface {
	// Create stores a new user. Returns ErrUserAlreadyExists on a duplicate email.
	Create(ctx context.Context, user *authDomain.User) error

	// Get retrieves a user by ID. Returns ErrUserNotFound if not found.
	Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error)

	// GetByEmail retrieves a user by normalized email. Returns ErrUserNotFound if not found.
	GetByEmail(ctx context.Context, email string) (*authDomain.User, error)

	// UpdateStatus changes the status of a user. Returns ErrUserNotFound if not found.
	UpdateStatus(ctx context.Context, userID uuid.UUID, status authDomain.UserStatus, updatedAt time.Time) error

	// UpdateLockState stores the failed login counter and lockout deadline of a user.
	// A nil lockedUntil clears the lockout.
	UpdateLockState(ctx context.Context, userID uuid.UUID, failedAttempts int, lockedUntil *time.Time) error
}

// AuditLogRepository defines persistence operations for audit logs.
type AuditLogRepository interface {
	// Create stores an audit log entry.
	Create(ctx context.Context, auditLog *authDomain.AuditLog) error

	// List returns entries newest first. createdAtFrom and createdAtTo are optional
	// inclusive bounds.
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*authDomain.AuditLog, error)
}

// APIKeyRepository defines persistence operations for API keys.
type APIKeyRepository interface {
	// Create stores a new API key.
	Create(ctx context.Context, apiKey *authDomain.APIKey) error

	// ListActiveByPrefix returns the non-revoked keys whose KeyPrefix equals prefix.
	ListActiveByPrefix(ctx context.Context, prefix string) ([]*authDomain.APIKey, error)

	// ListByUser returns every key of a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*authDomain.APIKey, error)

	// CountActiveByUser returns the number of non-revoked keys of a user.
	CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// Revoke marks a key of userID as revoked. Returns ErrAPIKeyNotFound if the key does
	// not exist, belongs to another user or is already revoked.
	Revoke(ctx context.Context, keyID, userID uuid.UUID, revokedAt time.Time) error

	// TouchLastUsed records the last successful authentication with a key.
	TouchLastUsed(ctx context.Context, keyID uuid.UUID, usedAt time.Time) error
}

// UserLookup resolves the live user record behind an authenticated request.
type UserLookup interface {
	// LookupUser returns the current user record. Returns ErrUserNotFound if not found.
	// Any other error (including a timeout) must cause the request to be rejected.
	LookupUser(ctx context.Context, userID uuid.UUID) (*authDomain.User, error)

	// Invalidate drops any cached record of userID.
	Invalidate(userID uuid.UUID)
}

// AuthUseCase defines the credential flows of the auth gate.
type AuthUseCase interface {
	// Login verifies email and password and issues a token pair. Unknown emails and wrong
	// passwords both return ErrInvalidCredentials; inactive users get ErrUserInactive.
	// Repeated failures lock the account and return ErrUserLocked until the lock expires.
	Login(ctx context.Context, email, password string) (*authDomain.TokenPair, error)

	// Refresh validates a refresh token, re-reads the user and issues a new token pair
	// reflecting the current role and status. The refresh token is rotated.
	Refresh(ctx context.Context, refreshToken string) (*authDomain.TokenPair, error)

	// Authenticate validates an access token and returns the principal with its live
	// role and status.
	Authenticate(ctx context.Context, accessToken string) (authDomain.UserContext, error)

	// AuthenticateAPIKey verifies a raw API key and returns the principal of its owner.
	AuthenticateAPIKey(ctx context.Context, rawKey string) (authDomain.UserContext, error)
}

// APIKeyUseCase defines self-service API key management.
type APIKeyUseCase interface {
	// Create generates a key for userID. The plaintext key is only returned here.
	// Returns ErrAPIKeyLimitReached when the user already holds the maximum of active keys.
	Create(ctx context.Context, userID uuid.UUID, name string) (*authDomain.CreateAPIKeyOutput, error)

	// List returns the keys of userID. Only masked forms are exposed.
	List(ctx context.Context, userID uuid.UUID) ([]*authDomain.APIKey, error)

	// Revoke disables a key owned by userID.
	Revoke(ctx context.Context, userID, keyID uuid.UUID) error
}

// UserUseCase defines user administration.
type UserUseCase interface {
	// Create registers a user on behalf of actor. Client-side actors may only create
	// client users of their own organization.
	Create(
		ctx context.Context,
		actor authDomain.UserContext,
		input *authDomain.CreateUserInput,
	) (*authDomain.User, error)

	// Get retrieves a user by ID.
	Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error)

	// UpdateStatus changes the status of a user on behalf of actor. The change is visible
	// to the auth gate immediately on this instance.
	UpdateStatus(
		ctx context.Context,
		actor authDomain.UserContext,
		userID uuid.UUID,
		status authDomain.UserStatus,
	) error

	// Unlock clears the failed login counter and any lockout of a user on behalf of actor.
	Unlock(ctx context.Context, actor authDomain.UserContext, userID uuid.UUID) (*authDomain.User, error)
}

// AuditLogUseCase records and lists access decisions.
type AuditLogUseCase interface {
	// Create records one decision. userID is nil when the principal is unknown.
	Create(ctx context.Context, requestID string, userID *uuid.UUID, permission string, allowed bool) error

	// List returns entries newest first with pagination and optional inclusive time bounds.
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*authDomain.AuditLog, error)
}
