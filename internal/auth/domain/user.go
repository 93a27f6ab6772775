package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// User is a person who can sign in to one of the portals.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         Role
	ClientID     *uuid.UUID // Set for client_admin and client_user
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time

	FailedAttempts int        // Consecutive failed logins since the last success or unlock
	LockedUntil    *time.Time // Set while the account is locked out
}

// IsActive reports whether the user may authenticate.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsLocked reports whether a lockout is in force at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// UserContext is the authenticated principal attached to a request. It is built by the
// auth gate from a validated credential and the live user record, and is never persisted.
type UserContext struct {
	ID       uuid.UUID
	Role     Role
	ClientID *uuid.UUID
	Status   UserStatus
}

// NewUserContext builds the request principal from a user record.
func NewUserContext(u *User) UserContext {
	uc := UserContext{ID: u.ID, Role: u.Role, Status: u.Status}
	if u.ClientID != nil {
		clientID := *u.ClientID
		uc.ClientID = &clientID
	}
	return uc
}

// HasRole reports whether the principal holds one of roles.
func (uc UserContext) HasRole(roles ...Role) bool {
	return slices.Contains(roles, uc.Role)
}

// CreateUserInput contains the parameters for creating a user.
type CreateUserInput struct {
	Email    string
	Password string //nolint:gosec // plaintext, hashed before storage
	Role     Role
	ClientID *uuid.UUID
	Status   UserStatus
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string //nolint:gosec // issued token, returned once to the caller
	RefreshExpiresAt time.Time
}
