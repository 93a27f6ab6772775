package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/screening/internal/auth/domain"
	"github.com/allisson/screening/internal/metrics"
)

// observe records the count and duration of one operation.
func observe(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.RecordOperation(ctx, "auth", operation, status)
	m.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

// loginOutcome classifies a Login result for the login attempt counter.
func loginOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.LoginOutcomeSuccess
	case errors.Is(err, authDomain.ErrUserLocked):
		return metrics.LoginOutcomeLocked
	case errors.Is(err, authDomain.ErrInvalidCredentials):
		return metrics.LoginOutcomeInvalidCredentials
	case errors.Is(err, authDomain.ErrUserInactive):
		return metrics.LoginOutcomeInactive
	default:
		return metrics.LoginOutcomeError
	}
}

// authUseCaseWithMetrics decorates AuthUseCase with metrics instrumentation.
type authUseCaseWithMetrics struct {
	next    AuthUseCase
	metrics metrics.BusinessMetrics
}

// NewAuthUseCaseWithMetrics wraps an AuthUseCase with metrics recording.
func NewAuthUseCaseWithMetrics(useCase AuthUseCase, m metrics.BusinessMetrics) AuthUseCase {
	return &authUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Login records metrics for login operations.
func (a *authUseCaseWithMetrics) Login(ctx context.Context, email, password string) (*authDomain.TokenPair, error) {
	start := time.Now()
	pair, err := a.next.Login(ctx, email, password)
	observe(ctx, a.metrics, "login", start, err)
	a.metrics.RecordLoginAttempt(ctx, loginOutcome(err))
	return pair, err
}

// Refresh records metrics for refresh operations.
func (a *authUseCaseWithMetrics) Refresh(ctx context.Context, refreshToken string) (*authDomain.TokenPair, error) {
	start := time.Now()
	pair, err := a.next.Refresh(ctx, refreshToken)
	observe(ctx, a.metrics, "token_refresh", start, err)
	return pair, err
}

// Authenticate records metrics for bearer token authentication.
func (a *authUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	accessToken string,
) (authDomain.UserContext, error) {
	start := time.Now()
	uc, err := a.next.Authenticate(ctx, accessToken)
	observe(ctx, a.metrics, "authenticate", start, err)
	return uc, err
}

// AuthenticateAPIKey records metrics for API key authentication.
func (a *authUseCaseWithMetrics) AuthenticateAPIKey(
	ctx context.Context,
	rawKey string,
) (authDomain.UserContext, error) {
	start := time.Now()
	uc, err := a.next.AuthenticateAPIKey(ctx, rawKey)
	observe(ctx, a.metrics, "authenticate_api_key", start, err)
	return uc, err
}

// apiKeyUseCaseWithMetrics decorates APIKeyUseCase with metrics instrumentation.
type apiKeyUseCaseWithMetrics struct {
	next    APIKeyUseCase
	metrics metrics.BusinessMetrics
}

// NewAPIKeyUseCaseWithMetrics wraps an APIKeyUseCase with metrics recording.
func NewAPIKeyUseCaseWithMetrics(useCase APIKeyUseCase, m metrics.BusinessMetrics) APIKeyUseCase {
	return &apiKeyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for API key creation.
func (a *apiKeyUseCaseWithMetrics) Create(
	ctx context.Context,
	userID uuid.UUID,
	name string,
) (*authDomain.CreateAPIKeyOutput, error) {
	start := time.Now()
	output, err := a.next.Create(ctx, userID, name)
	observe(ctx, a.metrics, "api_key_create", start, err)
	return output, err
}

// List records metrics for API key listing.
func (a *apiKeyUseCaseWithMetrics) List(ctx context.Context, userID uuid.UUID) ([]*authDomain.APIKey, error) {
	start := time.Now()
	keys, err := a.next.List(ctx, userID)
	observe(ctx, a.metrics, "api_key_list", start, err)
	return keys, err
}

// Revoke records metrics for API key revocation.
func (a *apiKeyUseCaseWithMetrics) Revoke(ctx context.Context, userID, keyID uuid.UUID) error {
	start := time.Now()
	err := a.next.Revoke(ctx, userID, keyID)
	observe(ctx, a.metrics, "api_key_revoke", start, err)
	return err
}

// userUseCaseWithMetrics decorates UserUseCase with metrics instrumentation.
type userUseCaseWithMetrics struct {
	next    UserUseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UserUseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UserUseCase, m metrics.BusinessMetrics) UserUseCase {
	return &userUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for user creation.
func (u *userUseCaseWithMetrics) Create(
	ctx context.Context,
	actor authDomain.UserContext,
	input *authDomain.CreateUserInput,
) (*authDomain.User, error) {
	start := time.Now()
	user, err := u.next.Create(ctx, actor, input)
	observe(ctx, u.metrics, "user_create", start, err)
	return user, err
}

// Get records metrics for user retrieval.
func (u *userUseCaseWithMetrics) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	start := time.Now()
	user, err := u.next.Get(ctx, userID)
	observe(ctx, u.metrics, "user_get", start, err)
	return user, err
}

// UpdateStatus records metrics for user status changes.
func (u *userUseCaseWithMetrics) UpdateStatus(
	ctx context.Context,
	actor authDomain.UserContext,
	userID uuid.UUID,
	status authDomain.UserStatus,
) error {
	start := time.Now()
	err := u.next.UpdateStatus(ctx, actor, userID, status)
	observe(ctx, u.metrics, "user_update_status", start, err)
	return err
}

// Unlock records metrics for account unlocks.
func (u *userUseCaseWithMetrics) Unlock(
	ctx context.Context,
	actor authDomain.UserContext,
	userID uuid.UUID,
) (*authDomain.User, error) {
	start := time.Now()
	user, err := u.next.Unlock(ctx, actor, userID)
	observe(ctx, u.metrics, "user_unlock", start, err)
	return user, err
}

// auditLogUseCaseWithMetrics decorates AuditLogUseCase with metrics instrumentation.
type auditLogUseCaseWithMetrics struct {
	next    AuditLogUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditLogUseCaseWithMetrics wraps an AuditLogUseCase with metrics recording.
func NewAuditLogUseCaseWithMetrics(useCase AuditLogUseCase, m metrics.BusinessMetrics) AuditLogUseCase {
	return &auditLogUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for audit log writes. The decision is counted even when the
// write fails.
func (a *auditLogUseCaseWithMetrics) Create(
	ctx context.Context,
	requestID string,
	userID *uuid.UUID,
	permission string,
	allowed bool,
) error {
	start := time.Now()
	err := a.next.Create(ctx, requestID, userID, permission, allowed)
	observe(ctx, a.metrics, "audit_log_create", start, err)
	a.metrics.RecordPermissionDecision(ctx, permission, allowed)
	return err
}

// List records metrics for audit log listing.
func (a *auditLogUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*authDomain.AuditLog, error) {
	start := time.Now()
	logs, err := a.next.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	observe(ctx, a.metrics, "audit_log_list", start, err)
	return logs, err
}
