package domain

import (
	"github.com/allisson/screening/internal/errors"
)

// Machine-readable codes returned to API clients alongside 401 and 403 responses.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
	CodeForbidden    = "FORBIDDEN"
	CodeLocked       = "ACCOUNT_LOCKED"
)

// Authentication errors. All of them are terminal for the request.
var (
	// ErrMissingCredentials indicates no bearer token or API key was presented.
	ErrMissingCredentials = errors.WithCode(
		errors.Wrap(errors.ErrUnauthorized, "missing credentials"),
		CodeUnauthorized,
	)

	// ErrTokenExpired indicates a correctly signed token past its expiry. Clients may refresh.
	ErrTokenExpired = errors.WithCode(errors.Wrap(errors.ErrUnauthorized, "token expired"), CodeTokenExpired)

	// ErrTokenInvalid indicates a malformed, tampered or wrongly typed token.
	ErrTokenInvalid = errors.WithCode(errors.Wrap(errors.ErrUnauthorized, "token invalid"), CodeTokenInvalid)

	// ErrInvalidCredentials indicates an unknown email, wrong password or unknown API key.
	ErrInvalidCredentials = errors.WithCode(
		errors.Wrap(errors.ErrUnauthorized, "invalid credentials"),
		CodeUnauthorized,
	)

	// ErrUserInactive indicates the principal no longer exists or is not active.
	ErrUserInactive = errors.WithCode(
		errors.Wrap(errors.ErrUnauthorized, "user not found or inactive"),
		CodeUnauthorized,
	)

	// ErrUserLocked indicates the account is locked after too many failed logins.
	ErrUserLocked = errors.WithCode(errors.Wrap(errors.ErrLocked, "account locked"), CodeLocked)

	// ErrPermissionDenied indicates the principal's role does not grant the required permission.
	ErrPermissionDenied = errors.WithCode(
		errors.Wrap(errors.ErrForbidden, "insufficient permissions"),
		CodeForbidden,
	)
)

// Resource errors.
var (
	// ErrUserNotFound indicates a user with the specified ID or email was not found.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates the email is already registered.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrAPIKeyNotFound indicates an API key with the specified ID was not found.
	ErrAPIKeyNotFound = errors.Wrap(errors.ErrNotFound, "api key not found")

	// ErrAPIKeyLimitReached indicates the user already holds the maximum number of active keys.
	ErrAPIKeyLimitReached = errors.Wrap(errors.ErrConflict, "api key limit reached")
)

// Validation errors.
var (
	// ErrUnknownRole indicates a role outside AllRoles.
	ErrUnknownRole = errors.Wrap(errors.ErrInvalidInput, "unknown role")

	// ErrUnknownStatus indicates a user status outside the known set.
	ErrUnknownStatus = errors.Wrap(errors.ErrInvalidInput, "unknown user status")

	// ErrInvalidPermission indicates a permission string not of the form "resource:action".
	ErrInvalidPermission = errors.Wrap(errors.ErrInvalidInput, "invalid permission")

	// ErrInvalidPermissionTable indicates a role table that is incomplete or malformed.
	ErrInvalidPermissionTable = errors.Wrap(errors.ErrInvalidInput, "invalid permission table")
)
