// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/screening/internal/auth/domain"
	customValidation "github.com/allisson/screening/internal/validation"
)

// passwordPolicy applies to every password set through the API. The upper bound is the
// bcrypt input limit.
var passwordPolicy = customValidation.PasswordStrength{
	MinLength:     12,
	MaxLength:     72,
	RequireUpper:  true,
	RequireLower:  true,
	RequireNumber: true,
}

// LoginRequest contains the credentials for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request payload
}

// Validate checks if the login request is valid. Password strength is not checked here
// so that legacy passwords still authenticate.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(3, 320),
		),
		validation.Field(&r.Password,
			validation.Required,
			validation.Length(1, 1024),
		),
	)
}

// RefreshRequest contains the refresh token for POST /v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"` //nolint:gosec // request payload
}

// Validate checks if the refresh request is valid.
func (r *RefreshRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RefreshToken,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// CreateAPIKeyRequest contains the parameters for POST /v1/api-keys.
type CreateAPIKeyRequest struct {
	Name string `json:"name"`
}

// Validate checks if the create API key request is valid.
func (r *CreateAPIKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
	)
}

// CreateUserRequest contains the parameters for POST /v1/users.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request payload
	Role     string `json:"role"`
	ClientID string `json:"client_id,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Validate checks if the create user request is valid.
func (r *CreateUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NoWhitespace,
			customValidation.Email,
			validation.Length(3, 320),
		),
		validation.Field(&r.Password,
			validation.Required,
			passwordPolicy,
		),
		validation.Field(&r.Role,
			validation.Required,
			validation.In(roleValues()...),
		),
		validation.Field(&r.ClientID,
			customValidation.UUID,
		),
		validation.Field(&r.Status,
			validation.In(statusValues()...),
		),
	)
}

// ToInput converts the request into the use case input. Call Validate first.
func (r *CreateUserRequest) ToInput() *authDomain.CreateUserInput {
	input := &authDomain.CreateUserInput{
		Email:    r.Email,
		Password: r.Password,
		Role:     authDomain.Role(r.Role),
		Status:   authDomain.UserStatus(r.Status),
	}
	if r.ClientID != "" {
		clientID := uuid.MustParse(r.ClientID)
		input.ClientID = &clientID
	}
	return input
}

// UpdateUserStatusRequest contains the parameters for PATCH /v1/users/:id/status.
type UpdateUserStatusRequest struct {
	Status string `json:"status"`
}

// Validate checks if the update status request is valid.
func (r *UpdateUserStatusRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Status,
			validation.Required,
			validation.In(statusValues()...),
		),
	)
}

func roleValues() []any {
	values := make([]any, 0, len(authDomain.AllRoles))
	for _, role := range authDomain.AllRoles {
		values = append(values, string(role))
	}
	return values
}

func statusValues() []any {
	return []any{
		string(authDomain.UserStatusActive),
		string(authDomain.UserStatusInactive),
		string(authDomain.UserStatusSuspended),
		string(authDomain.UserStatusPending),
	}
}
