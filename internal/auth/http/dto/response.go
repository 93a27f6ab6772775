package dto

import (
	"time"

	authDomain "github.com/allisson/screening/internal/auth/domain"
)

// TokenPairResponse is returned by login and refresh.
type TokenPairResponse struct {
	AccessToken      string    `json:"access_token"`
	TokenType        string    `json:"token_type"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshToken     string    `json:"refresh_token"` //nolint:gosec // returned once to the caller
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// MapTokenPairToResponse converts a domain token pair to an API response.
func MapTokenPairToResponse(pair *authDomain.TokenPair) TokenPairResponse {
	return TokenPairResponse{
		AccessToken:      pair.AccessToken,
		TokenType:        "Bearer",
		ExpiresAt:        pair.AccessExpiresAt,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}

// UserResponse represents a user in API responses (excludes the password hash).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ClientID  *string   `json:"client_id"`
	Status    string    `json:"status"`
	// FailedAttempts counts consecutive failed logins since the last success or unlock.
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// MapUserToResponse converts a domain user to an API response.
func MapUserToResponse(user *authDomain.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Role:      string(user.Role),
		Status:         string(user.Status),
		FailedAttempts: user.FailedAttempts,
		LockedUntil:    user.LockedUntil,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
	if user.ClientID != nil {
		clientID := user.ClientID.String()
		resp.ClientID = &clientID
	}
	return resp
}

// MeResponse is returned by GET /v1/auth/me.
type MeResponse struct {
	UserResponse
	Permissions []string `json:"permissions"`
}

// MapMeToResponse combines the user record with the permissions its role grants.
func MapMeToResponse(user *authDomain.User, grants []authDomain.PermissionGrant) MeResponse {
	permissions := make([]string, 0)
	for _, grant := range grants {
		for _, action := range grant.Actions {
			permissions = append(permissions, authDomain.Permission{Resource: grant.Resource, Action: action}.String())
		}
	}
	return MeResponse{
		UserResponse: MapUserToResponse(user),
		Permissions:  permissions,
	}
}

// APIKeyResponse represents an API key in listings. Only the masked form is exposed.
type APIKeyResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	MaskedKey  string     `json:"masked_key"`
	LastUsedAt *time.Time `json:"last_used_at"`
	RevokedAt  *time.Time `json:"revoked_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// MapAPIKeyToResponse converts a domain API key to an API response.
func MapAPIKeyToResponse(apiKey *authDomain.APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:         apiKey.ID.String(),
		Name:       apiKey.Name,
		MaskedKey:  apiKey.MaskedKey,
		LastUsedAt: apiKey.LastUsedAt,
		RevokedAt:  apiKey.RevokedAt,
		CreatedAt:  apiKey.CreatedAt,
	}
}

// MapAPIKeysToResponse converts a list of domain API keys to API responses.
func MapAPIKeysToResponse(apiKeys []*authDomain.APIKey) []APIKeyResponse {
	resp := make([]APIKeyResponse, 0, len(apiKeys))
	for _, apiKey := range apiKeys {
		resp = append(resp, MapAPIKeyToResponse(apiKey))
	}
	return resp
}

// CreateAPIKeyResponse contains the result of creating an API key.
// SECURITY: Key is only returned once and must be saved by the caller.
type CreateAPIKeyResponse struct {
	APIKeyResponse
	Key string `json:"key"` //nolint:gosec // shown once to the owner
}

// ListAPIKeysResponse wraps the list of API keys.
type ListAPIKeysResponse struct {
	Data []APIKeyResponse `json:"data"`
}

// AuditLogResponse represents an audit log entry in API responses.
type AuditLogResponse struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id"`
	UserID     *string   `json:"user_id"`
	Permission string    `json:"permission"`
	Allowed    bool      `json:"allowed"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListAuditLogsResponse wraps a page of audit log entries.
type ListAuditLogsResponse struct {
	Data []AuditLogResponse `json:"data"`
}

// MapAuditLogToResponse converts a domain audit log to an API response.
func MapAuditLogToResponse(auditLog *authDomain.AuditLog) AuditLogResponse {
	resp := AuditLogResponse{
		ID:         auditLog.ID.String(),
		RequestID:  auditLog.RequestID,
		Permission: auditLog.Permission,
		Allowed:    auditLog.Allowed,
		CreatedAt:  auditLog.CreatedAt,
	}
	if auditLog.UserID != nil {
		userID := auditLog.UserID.String()
		resp.UserID = &userID
	}
	return resp
}

// MapAuditLogsToListResponse converts a page of domain audit logs to a list response.
func MapAuditLogsToListResponse(auditLogs []*authDomain.AuditLog) ListAuditLogsResponse {
	data := make([]AuditLogResponse, 0, len(auditLogs))
	for _, auditLog := range auditLogs {
		data = append(data, MapAuditLogToResponse(auditLog))
	}
	return ListAuditLogsResponse{Data: data}
}
