package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	authDomain "github.com/allisson/screening/internal/auth/domain"
	authService "github.com/allisson/screening/internal/auth/service"
	"github.com/allisson/screening/internal/auth/usecase"
	usecaseMocks "github.com/allisson/screening/internal/auth/usecase/mocks"
	cryptoDomain "github.com/allisson/screening/internal/crypto/domain"
	cryptoService "github.com/allisson/screening/internal/crypto/service"
	apperrors "github.com/allisson/screening/internal/errors"
)

const (
	testLockoutAttempts = 3
	testLockoutDuration = 15 * time.Minute
)

type authFixture struct {
	userRepo     *usecaseMocks.MockUserRepository
	apiKeyRepo   *usecaseMocks.MockAPIKeyRepository
	lookup       *usecaseMocks.MockUserLookup
	audit        *usecaseMocks.MockAuditLogUseCase
	tokens       authService.TokenService
	hasher       cryptoService.PasswordHasher
	apiKeyHasher cryptoService.APIKeyHasher
	logs         *bytes.Buffer
	uc           usecase.AuthUseCase
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	tokens, err := authService.NewTokenService(authService.TokenConfig{
		AccessSecret:  "access-secret-for-tests-0123456789",
		RefreshSecret: "refresh-secret-for-tests-0123456789",
		Issuer:        "screening-api",
		Audience:      "screening-portals",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	hasher, err := cryptoService.NewPasswordHasher(cryptoDomain.Bcrypt, bcrypt.MinCost)
	require.NoError(t, err)

	f := &authFixture{
		userRepo:     &usecaseMocks.MockUserRepository{},
		apiKeyRepo:   &usecaseMocks.MockAPIKeyRepository{},
		lookup:       &usecaseMocks.MockUserLookup{},
		audit:        &usecaseMocks.MockAuditLogUseCase{},
		tokens:       tokens,
		hasher:       hasher,
		apiKeyHasher: cryptoService.NewAPIKeyHasher(),
		logs:         &bytes.Buffer{},
	}
	f.uc = usecase.NewAuthUseCase(
		f.userRepo,
		f.apiKeyRepo,
		f.lookup,
		f.tokens,
		f.hasher,
		f.apiKeyHasher,
		f.audit,
		usecase.LockoutPolicy{MaxAttempts: testLockoutAttempts, Duration: testLockoutDuration},
		slog.New(slog.NewTextHandler(f.logs, nil)),
	)
	return f
}

// expectLoginAudit registers the audit entry a login attempt must write.
func (f *authFixture) expectLoginAudit(userID *uuid.UUID, allowed bool) {
	f.audit.On("Create", mock.Anything, mock.Anything, userID, authDomain.PermissionLogin, allowed).
		Return(nil).
		Once()
}

func (f *authFixture) newUser(t *testing.T, password string, role authDomain.Role) *authDomain.User {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)
	return &authDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        "processor@example.com",
		PasswordHash: hash,
		Role:         role,
		Status:       authDomain.UserStatusActive,
	}
}

func TestAuthUseCase_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_IssuesPair", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "Sup3r-Secret!", authDomain.RoleProcessor)
		f.userRepo.On("GetByEmail", ctx, "processor@example.com").Return(user, nil).Once()
		f.expectLoginAudit(&user.ID, true)

		pair, err := f.uc.Login(ctx, "  Processor@Example.com ", "Sup3r-Secret!")
		require.NoError(t, err)
		require.NotNil(t, pair)

		principal, err := f.tokens.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, principal.ID)
		assert.Equal(t, authDomain.RoleProcessor, principal.Role)

		userID, err := f.tokens.ValidateRefreshToken(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, userID)
		assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))
		f.userRepo.AssertExpectations(t)
		f.audit.AssertExpectations(t)
		f.userRepo.AssertNotCalled(t, "UpdateLockState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_WrongPassword", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "Sup3r-Secret!", authDomain.RoleProcessor)
		f.userRepo.On("GetByEmail", ctx, "processor@example.com").Return(user, nil).Once()
		f.userRepo.On("UpdateLockState", ctx, user.ID, 1, (*time.Time)(nil)).Return(nil).Once()
		f.expectLoginAudit(&user.ID, false)

		pair, err := f.uc.Login(ctx, "processor@example.com", "wrong")
		assert.Nil(t, pair)
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		f.userRepo.AssertExpectations(t)
		f.audit.AssertExpectations(t)
	})

	t.Run("Error_UnknownEmailLooksLikeWrongPassword", func(t *testing.T) {
		f := newAuthFixture(t)
		f.userRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, authDomain.ErrUserNotFound).Once()
		f.expectLoginAudit(nil, false)

		pair, err := f.uc.Login(ctx, "nobody@example.com", "whatever")
		assert.Nil(t, pair)
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		assert.NotErrorIs(t, err, apperrors.ErrNotFound)
		f.audit.AssertExpectations(t)
	})

	t.Run("Error_InactiveUser", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "Sup3r-Secret!", authDomain.RoleProcessor)
		user.Status = authDomain.UserStatusSuspended
		f.userRepo.On("GetByEmail", ctx, "processor@example.com").Return(user, nil).Once()
		f.expectLoginAudit(&user.ID, false)

		_, err := f.uc.Login(ctx, "processor@example.com", "Sup3r-Secret!")
		assert.ErrorIs(t, err, authDomain.ErrUserInactive)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Error_RepositoryFailure", func(t *testing.T) {
		f := newAuthFixture(t)
		dbErr := errors.New("connection refused")
		f.userRepo.On("GetByEmail", ctx, "processor@example.com").Return(nil, dbErr).Once()

		_, err := f.uc.Login(ctx, "processor@example.com", "x")
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestAuthUseCase_Login_Lockout(t *testing.T) {
	ctx := context.Background()

	t.Run("Error_LocksAtThreshold", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "Sup3r-Secret!", authDomain.RoleProcessor)
		user.FailedAttempts = testLockoutAttempts - 1
		f.userRepo.On("GetByEmail", ctx, "processor@example.com").Return(user, nil).Once()
		f.userRepo.On("UpdateLockState", ctx, user.ID, testLockoutAttempts, mock.MatchedBy(func(until *time.Time) bool {
			return until != nil && time.Until(*until) > testLockoutDuration-time.Minute
		})).Return(nil).Once()
		f.expectLoginAudit(&user.ID, false)

		pair, err := f.uc.Login(ctx, "processor@example.com", "wrong")
		assert.Nil(t, pair)
		assert.ErrorIs(t, err, authDomain.ErrUserLocked)
		assert.ErrorIs(t, err, apperrors.ErrLocked)
		assert.Contains(t, f.logs.String(), "account locked after failed logins")
		f.userRepo.AssertExpectations(t)
	})

	t.Run("Error_BelowThresholdOnlyCounts", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "Sup3r-Secret!", authDomain.RoleProcessor)
		user.FailedAttempts = testLockoutAttempts - 2
		f.userRepo.On("GetByEmail", ctx, "processor@example.com").Return(user, nil).Once()
		f.userRepo.On("UpdateLockState", ctx, user.ID, testLockoutAttempts-1, (*time.Time)(nil)).Return(nil).Once()
		f.expectLoginAudit(&user.ID, false)

		_, err := f.uc.Login(ctx, "processor@example.com", "wrong")
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		f.userRepo.AssertExpectations(t)
	})

	t.Run("Error_LockedRejectsCorrectPassword", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "Sup3r-Secret!", authDomain.RoleProcessor)
		until := time.Now().UTC().Add(10 * time.Minute)
		user.FailedAttempts = testLockoutAttempts
		user.LockedUntil = &until
		f.userRepo.On("GetByEmail", ctx, "processor@example.com").Return(user, nil).Once()
		f.expectLoginAudit(&user.ID, false)

		pair, err := f.uc.Login(ctx, "processor@example.com", "Sup3r-Secret!")
		assert.Nil(t, pair)
		assert.ErrorIs(t, err, authDomain.ErrUserLocked)
		f.userRepo.AssertNotCalled(t, "UpdateLockState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success_ExpiredLockResetsOnLogin", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "Sup3r-Secret!", authDomain.RoleProcessor)
		until := time.Now().UTC().Add(-time.Second)
		user.FailedAttempts = testLockoutAttempts
		user.LockedUntil = &until
		f.userRepo.On("GetByEmail", ctx, "processor@example.com").Return(user, nil).Once()
		f.userRepo.On("UpdateLockState", ctx, user.ID, 0, (*time.Time)(nil)).Return(nil).Once()
		f.expectLoginAudit(&user.ID, true)

		pair, err := f.uc.Login(ctx, "processor@example.com", "Sup3r-Secret!")
		require.NoError(t, err)
		assert.NotNil(t, pair)
		f.userRepo.AssertExpectations(t)
	})

	t.Run("Error_ExpiredLockStartsNewCount", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "Sup3r-Secret!", authDomain.RoleProcessor)
		until := time.Now().UTC().Add(-time.Second)
		user.FailedAttempts = testLockoutAttempts
		user.LockedUntil = &until
		f.userRepo.On("GetByEmail", ctx, "processor@example.com").Return(user, nil).Once()
		f.userRepo.On("UpdateLockState", ctx, user.ID, 1, (*time.Time)(nil)).Return(nil).Once()
		f.expectLoginAudit(&user.ID, false)

		_, err := f.uc.Login(ctx, "processor@example.com", "wrong")
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		f.userRepo.AssertExpectations(t)
	})

	t.Run("Success_ResetsFailureCounter", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "Sup3r-Secret!", authDomain.RoleProcessor)
		user.FailedAttempts = 2
		f.userRepo.On("GetByEmail", ctx, "processor@example.com").Return(user, nil).Once()
		f.userRepo.On("UpdateLockState", ctx, user.ID, 0, (*time.Time)(nil)).Return(nil).Once()
		f.expectLoginAudit(&user.ID, true)

		_, err := f.uc.Login(ctx, "processor@example.com", "Sup3r-Secret!")
		require.NoError(t, err)
		f.userRepo.AssertExpectations(t)
	})

	t.Run("Error_LockStateWriteFails", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "Sup3r-Secret!", authDomain.RoleProcessor)
		dbErr := errors.New("connection refused")
		f.userRepo.On("GetByEmail", ctx, "processor@example.com").Return(user, nil).Once()
		f.userRepo.On("UpdateLockState", ctx, user.ID, 1, (*time.Time)(nil)).Return(dbErr).Once()
		f.expectLoginAudit(&user.ID, false)

		_, err := f.uc.Login(ctx, "processor@example.com", "wrong")
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestAuthUseCase_Login_Audit(t *testing.T) {
	t.Run("Success_RecordsRequestID", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "Sup3r-Secret!", authDomain.RoleProcessor)
		ctx := authDomain.WithRequestID(context.Background(), "req-123")
		f.userRepo.On("GetByEmail", ctx, "processor@example.com").Return(user, nil).Once()
		f.audit.On("Create", ctx, "req-123", &user.ID, authDomain.PermissionLogin, true).Return(nil).Once()

		_, err := f.uc.Login(ctx, "processor@example.com", "Sup3r-Secret!")
		require.NoError(t, err)
		f.audit.AssertExpectations(t)
	})

	t.Run("Success_AuditFailureDoesNotBlockLogin", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "Sup3r-Secret!", authDomain.RoleProcessor)
		ctx := context.Background()
		f.userRepo.On("GetByEmail", ctx, "processor@example.com").Return(user, nil).Once()
		f.audit.On("Create", ctx, "", &user.ID, authDomain.PermissionLogin, true).
			Return(errors.New("audit table unavailable")).
			Once()

		pair, err := f.uc.Login(ctx, "processor@example.com", "Sup3r-Secret!")
		require.NoError(t, err)
		assert.NotNil(t, pair)
		assert.Contains(t, f.logs.String(), "failed to record login audit log")
	})
}

func TestAuthUseCase_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ReflectsCurrentRole", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "pw", authDomain.RoleProcessor)
		refresh, _, err := f.tokens.IssueRefreshToken(authDomain.NewUserContext(user))
		require.NoError(t, err)

		promoted := *user
		promoted.Role = authDomain.RoleOperationsManager
		f.userRepo.On("Get", ctx, user.ID).Return(&promoted, nil).Once()

		pair, err := f.uc.Refresh(ctx, refresh)
		require.NoError(t, err)

		principal, err := f.tokens.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, authDomain.RoleOperationsManager, principal.Role)
		assert.NotEqual(t, refresh, pair.RefreshToken)
	})

	t.Run("Error_UserDeactivatedAfterIssue", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "pw", authDomain.RoleProcessor)
		refresh, _, err := f.tokens.IssueRefreshToken(authDomain.NewUserContext(user))
		require.NoError(t, err)

		deactivated := *user
		deactivated.Status = authDomain.UserStatusInactive
		f.userRepo.On("Get", ctx, user.ID).Return(&deactivated, nil).Once()

		pair, err := f.uc.Refresh(ctx, refresh)
		assert.Nil(t, pair)
		assert.ErrorIs(t, err, authDomain.ErrUserInactive)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Error_UserDeleted", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "pw", authDomain.RoleProcessor)
		refresh, _, err := f.tokens.IssueRefreshToken(authDomain.NewUserContext(user))
		require.NoError(t, err)
		f.userRepo.On("Get", ctx, user.ID).Return(nil, authDomain.ErrUserNotFound).Once()

		_, err = f.uc.Refresh(ctx, refresh)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Error_AccessTokenRejected", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "pw", authDomain.RoleProcessor)
		access, _, err := f.tokens.IssueAccessToken(authDomain.NewUserContext(user))
		require.NoError(t, err)

		_, err = f.uc.Refresh(ctx, access)
		assert.ErrorIs(t, err, authDomain.ErrTokenInvalid)
		f.userRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestAuthUseCase_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_LiveRoleWins", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "pw", authDomain.RoleProcessor)
		access, _, err := f.tokens.IssueAccessToken(authDomain.NewUserContext(user))
		require.NoError(t, err)

		live := *user
		live.Role = authDomain.RoleQASpecialist
		f.lookup.On("LookupUser", ctx, user.ID).Return(&live, nil).Once()

		principal, err := f.uc.Authenticate(ctx, access)
		require.NoError(t, err)
		assert.Equal(t, authDomain.RoleQASpecialist, principal.Role)
		assert.Equal(t, authDomain.UserStatusActive, principal.Status)
	})

	t.Run("Error_InvalidToken", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.uc.Authenticate(ctx, "garbage")
		assert.ErrorIs(t, err, authDomain.ErrTokenInvalid)
		f.lookup.AssertNotCalled(t, "LookupUser", mock.Anything, mock.Anything)
	})

	t.Run("Error_InactiveUser", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "pw", authDomain.RoleProcessor)
		access, _, err := f.tokens.IssueAccessToken(authDomain.NewUserContext(user))
		require.NoError(t, err)

		live := *user
		live.Status = authDomain.UserStatusInactive
		f.lookup.On("LookupUser", ctx, user.ID).Return(&live, nil).Once()

		_, err = f.uc.Authenticate(ctx, access)
		assert.ErrorIs(t, err, authDomain.ErrUserInactive)
	})

	t.Run("Error_UserNotFound", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "pw", authDomain.RoleProcessor)
		access, _, err := f.tokens.IssueAccessToken(authDomain.NewUserContext(user))
		require.NoError(t, err)
		f.lookup.On("LookupUser", ctx, user.ID).Return(nil, authDomain.ErrUserNotFound).Once()

		_, err = f.uc.Authenticate(ctx, access)
		assert.ErrorIs(t, err, authDomain.ErrUserInactive)
	})

	t.Run("Error_LookupFailureFailsClosed", func(t *testing.T) {
		f := newAuthFixture(t)
		user := f.newUser(t, "pw", authDomain.RoleProcessor)
		access, _, err := f.tokens.IssueAccessToken(authDomain.NewUserContext(user))
		require.NoError(t, err)
		f.lookup.On("LookupUser", ctx, user.ID).Return(nil, context.DeadlineExceeded).Once()

		principal, err := f.uc.Authenticate(ctx, access)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.NotErrorIs(t, err, apperrors.ErrUnauthorized)
		assert.Equal(t, authDomain.UserContext{}, principal)
	})
}

func TestAuthUseCase_AuthenticateAPIKey(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*authFixture, *authDomain.User, string, *authDomain.APIKey) {
		f := newAuthFixture(t)
		user := f.newUser(t, "pw", authDomain.RoleProcessor)
		rawKey, err := f.apiKeyHasher.Generate()
		require.NoError(t, err)
		hash, salt, err := f.apiKeyHasher.Hash(rawKey)
		require.NoError(t, err)
		key := &authDomain.APIKey{
			ID:        uuid.Must(uuid.NewV7()),
			UserID:    user.ID,
			KeyPrefix: cryptoService.APIKeyPrefix(rawKey),
			KeyHash:   hash,
			Salt:      salt,
		}
		return f, user, rawKey, key
	}

	t.Run("Success", func(t *testing.T) {
		f, user, rawKey, key := setup(t)
		f.apiKeyRepo.On("ListActiveByPrefix", ctx, key.KeyPrefix).Return([]*authDomain.APIKey{key}, nil).Once()
		f.lookup.On("LookupUser", ctx, user.ID).Return(user, nil).Once()
		f.apiKeyRepo.On("TouchLastUsed", ctx, key.ID, mock.AnythingOfType("time.Time")).Return(nil).Once()

		principal, err := f.uc.AuthenticateAPIKey(ctx, rawKey)
		require.NoError(t, err)
		assert.Equal(t, user.ID, principal.ID)
		f.apiKeyRepo.AssertExpectations(t)
		assert.Empty(t, f.logs.String())
	})

	t.Run("Success_TouchFailureIsLogged", func(t *testing.T) {
		f, user, rawKey, key := setup(t)
		f.apiKeyRepo.On("ListActiveByPrefix", ctx, key.KeyPrefix).Return([]*authDomain.APIKey{key}, nil).Once()
		f.lookup.On("LookupUser", ctx, user.ID).Return(user, nil).Once()
		f.apiKeyRepo.On("TouchLastUsed", ctx, key.ID, mock.AnythingOfType("time.Time")).
			Return(errors.New("write timeout")).
			Once()

		principal, err := f.uc.AuthenticateAPIKey(ctx, rawKey)
		require.NoError(t, err)
		assert.Equal(t, user.ID, principal.ID)
		assert.Contains(t, f.logs.String(), "level=WARN")
		assert.Contains(t, f.logs.String(), "api_key_id="+key.ID.String())
		assert.Contains(t, f.logs.String(), "write timeout")
	})

	t.Run("Error_WrongKeySamePrefix", func(t *testing.T) {
		f, _, rawKey, key := setup(t)
		forged := rawKey[:len(rawKey)-1] + "0"
		if forged == rawKey {
			forged = rawKey[:len(rawKey)-1] + "1"
		}
		f.apiKeyRepo.On("ListActiveByPrefix", ctx, key.KeyPrefix).Return([]*authDomain.APIKey{key}, nil).Once()

		_, err := f.uc.AuthenticateAPIKey(ctx, forged)
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		f.lookup.AssertNotCalled(t, "LookupUser", mock.Anything, mock.Anything)
	})

	t.Run("Error_MalformedKey", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.uc.AuthenticateAPIKey(ctx, "short")
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		f.apiKeyRepo.AssertNotCalled(t, "ListActiveByPrefix", mock.Anything, mock.Anything)
	})

	t.Run("Error_OwnerInactive", func(t *testing.T) {
		f, user, rawKey, key := setup(t)
		inactive := *user
		inactive.Status = authDomain.UserStatusInactive
		f.apiKeyRepo.On("ListActiveByPrefix", ctx, key.KeyPrefix).Return([]*authDomain.APIKey{key}, nil).Once()
		f.lookup.On("LookupUser", ctx, user.ID).Return(&inactive, nil).Once()

		_, err := f.uc.AuthenticateAPIKey(ctx, rawKey)
		assert.ErrorIs(t, err, authDomain.ErrUserInactive)
		f.apiKeyRepo.AssertNotCalled(t, "TouchLastUsed", mock.Anything, mock.Anything, mock.Anything)
	})
}
