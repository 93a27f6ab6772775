package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/screening/internal/auth/domain"
	authService "github.com/allisson/screening/internal/auth/service"
	cryptoDomain "github.com/allisson/screening/internal/crypto/domain"
	cryptoService "github.com/allisson/screening/internal/crypto/service"
	apperrors "github.com/allisson/screening/internal/errors"
)

// dummyPassword is hashed once so that logins for unknown emails cost one verification,
// like logins for known ones.
const dummyPassword = "screening-login-timing-equalizer"

// LockoutPolicy controls account lockout after consecutive failed logins.
// A zero MaxAttempts disables lockout.
type LockoutPolicy struct {
	MaxAttempts int
	Duration    time.Duration
}

// authUseCase implements AuthUseCase.
type authUseCase struct {
	userRepo        UserRepository
	apiKeyRepo      APIKeyRepository
	userLookup      UserLookup
	tokenService    authService.TokenService
	passwordHasher  cryptoService.PasswordHasher
	apiKeyHasher    cryptoService.APIKeyHasher
	auditLogUseCase AuditLogUseCase
	lockout         LockoutPolicy
	logger          *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthUseCase creates a new AuthUseCase with the provided dependencies.
// auditLogUseCase may be nil, in which case logins are not audited.
func NewAuthUseCase(
	userRepo UserRepository,
	apiKeyRepo APIKeyRepository,
	userLookup UserLookup,
	tokenService authService.TokenService,
	passwordHasher cryptoService.PasswordHasher,
	apiKeyHasher cryptoService.APIKeyHasher,
	auditLogUseCase AuditLogUseCase,
	lockout LockoutPolicy,
	logger *slog.Logger,
) AuthUseCase {
	return &authUseCase{
		userRepo:        userRepo,
		apiKeyRepo:      apiKeyRepo,
		userLookup:      userLookup,
		tokenService:    tokenService,
		passwordHasher:  passwordHasher,
		apiKeyHasher:    apiKeyHasher,
		auditLogUseCase: auditLogUseCase,
		lockout:         lockout,
		logger:          logger,
	}
}

// Login implements AuthUseCase.
//
// A locked account is rejected before the password is checked. The active status is
// checked only after the password, so account state is never revealed to someone who
// does not know the password.
func (a *authUseCase) Login(ctx context.Context, email, password string) (*authDomain.TokenPair, error) {
	user, err := a.userRepo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, authDomain.ErrUserNotFound) {
			a.passwordHasher.Verify(password, a.getDummyHash())
			a.recordLogin(ctx, nil, false)
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now().UTC()
	if user.IsLocked(now) {
		a.recordLogin(ctx, &user.ID, false)
		return nil, authDomain.ErrUserLocked
	}

	if !a.passwordHasher.Verify(password, user.PasswordHash) {
		a.recordLogin(ctx, &user.ID, false)
		return nil, a.registerFailedLogin(ctx, user, now)
	}

	if user.FailedAttempts > 0 || user.LockedUntil != nil {
		if err := a.userRepo.UpdateLockState(ctx, user.ID, 0, nil); err != nil {
			return nil, err
		}
	}

	if !user.IsActive() {
		a.recordLogin(ctx, &user.ID, false)
		return nil, authDomain.ErrUserInactive
	}

	pair, err := a.issuePair(authDomain.NewUserContext(user))
	if err != nil {
		return nil, err
	}
	a.recordLogin(ctx, &user.ID, true)
	return pair, nil
}

// registerFailedLogin bumps the failure counter and locks the account once the policy
// threshold is reached. A counter left over from an expired lock starts again at one.
func (a *authUseCase) registerFailedLogin(ctx context.Context, user *authDomain.User, now time.Time) error {
	attempts := user.FailedAttempts + 1
	if user.LockedUntil != nil {
		attempts = 1
	}

	var lockedUntil *time.Time
	if a.lockout.MaxAttempts > 0 && attempts >= a.lockout.MaxAttempts {
		until := now.Add(a.lockout.Duration)
		lockedUntil = &until
	}

	if err := a.userRepo.UpdateLockState(ctx, user.ID, attempts, lockedUntil); err != nil {
		return err
	}

	if lockedUntil != nil {
		a.logger.Warn("account locked after failed logins",
			slog.String("user_id", user.ID.String()),
			slog.Int("failed_attempts", attempts),
			slog.Time("locked_until", *lockedUntil))
		return authDomain.ErrUserLocked
	}
	return authDomain.ErrInvalidCredentials
}

// recordLogin writes the login decision to the audit log. A failed write is logged and
// does not change the outcome of the login.
func (a *authUseCase) recordLogin(ctx context.Context, userID *uuid.UUID, allowed bool) {
	if a.auditLogUseCase == nil {
		return
	}
	requestID := authDomain.RequestIDFromContext(ctx)
	if err := a.auditLogUseCase.Create(ctx, requestID, userID, authDomain.PermissionLogin, allowed); err != nil {
		a.logger.Warn("failed to record login audit log",
			slog.String("request_id", requestID),
			slog.Any("error", err))
	}
}

// Refresh implements AuthUseCase.
//
// The user is read from the repository rather than the lookup cache: a refresh is the
// moment a changed role or a deactivation must take effect.
func (a *authUseCase) Refresh(ctx context.Context, refreshToken string) (*authDomain.TokenPair, error) {
	userID, err := a.tokenService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := a.userRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, authDomain.ErrUserNotFound) {
			return nil, authDomain.ErrUserInactive
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, authDomain.ErrUserInactive
	}

	return a.issuePair(authDomain.NewUserContext(user))
}

// Authenticate implements AuthUseCase.
func (a *authUseCase) Authenticate(ctx context.Context, accessToken string) (authDomain.UserContext, error) {
	claimed, err := a.tokenService.ValidateAccessToken(accessToken)
	if err != nil {
		return authDomain.UserContext{}, err
	}
	return a.liveUserContext(ctx, claimed.ID)
}

// AuthenticateAPIKey implements AuthUseCase.
func (a *authUseCase) AuthenticateAPIKey(ctx context.Context, rawKey string) (authDomain.UserContext, error) {
	if len(rawKey) != cryptoDomain.APIKeyBytes*2 {
		return authDomain.UserContext{}, authDomain.ErrInvalidCredentials
	}

	candidates, err := a.apiKeyRepo.ListActiveByPrefix(ctx, cryptoService.APIKeyPrefix(rawKey))
	if err != nil {
		return authDomain.UserContext{}, err
	}

	var matched *authDomain.APIKey
	for _, candidate := range candidates {
		if a.apiKeyHasher.Verify(rawKey, candidate.KeyHash, candidate.Salt) {
			matched = candidate
			break
		}
	}
	if matched == nil {
		return authDomain.UserContext{}, authDomain.ErrInvalidCredentials
	}

	uc, err := a.liveUserContext(ctx, matched.UserID)
	if err != nil {
		return authDomain.UserContext{}, err
	}

	// Last-used tracking is informational; a failed write does not reject the request.
	if err := a.apiKeyRepo.TouchLastUsed(ctx, matched.ID, time.Now().UTC()); err != nil {
		a.logger.Warn("failed to record api key usage",
			slog.String("api_key_id", matched.ID.String()),
			slog.Any("error", err))
	}

	return uc, nil
}

// liveUserContext builds the principal from the current user record, not from token claims.
func (a *authUseCase) liveUserContext(ctx context.Context, userID uuid.UUID) (authDomain.UserContext, error) {
	user, err := a.userLookup.LookupUser(ctx, userID)
	if err != nil {
		if errors.Is(err, authDomain.ErrUserNotFound) {
			return authDomain.UserContext{}, authDomain.ErrUserInactive
		}
		return authDomain.UserContext{}, apperrors.Wrap(err, "user lookup failed")
	}
	if !user.IsActive() {
		return authDomain.UserContext{}, authDomain.ErrUserInactive
	}
	return authDomain.NewUserContext(user), nil
}

func (a *authUseCase) issuePair(uc authDomain.UserContext) (*authDomain.TokenPair, error) {
	accessToken, accessExpiresAt, err := a.tokenService.IssueAccessToken(uc)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExpiresAt, err := a.tokenService.IssueRefreshToken(uc)
	if err != nil {
		return nil, err
	}

	return &authDomain.TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

func (a *authUseCase) getDummyHash() string {
	a.dummyOnce.Do(func() {
		hash, err := a.passwordHasher.Hash(dummyPassword)
		if err == nil {
			a.dummyHash = hash
		}
	})
	return a.dummyHash
}

// NormalizeEmail trims and lowercases an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
