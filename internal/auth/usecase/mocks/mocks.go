// Package mocks provides testify mock implementations of the auth usecase interfaces
// and their repositories.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/screening/internal/auth/domain"
)

// MockAuthUseCase is a mock implementation of usecase.AuthUseCase.
type MockAuthUseCase struct {
	mock.Mock
}

// Login mocks the Login method.
func (m *MockAuthUseCase) Login(ctx context.Context, email, password string) (*authDomain.TokenPair, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.TokenPair), args.Error(1)
}

// Refresh mocks the Refresh method.
func (m *MockAuthUseCase) Refresh(ctx context.Context, refreshToken string) (*authDomain.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.TokenPair), args.Error(1)
}

// Authenticate mocks the Authenticate method.
func (m *MockAuthUseCase) Authenticate(ctx context.Context, accessToken string) (authDomain.UserContext, error) {
	args := m.Called(ctx, accessToken)
	return args.Get(0).(authDomain.UserContext), args.Error(1)
}

// AuthenticateAPIKey mocks the AuthenticateAPIKey method.
func (m *MockAuthUseCase) AuthenticateAPIKey(ctx context.Context, rawKey string) (authDomain.UserContext, error) {
	args := m.Called(ctx, rawKey)
	return args.Get(0).(authDomain.UserContext), args.Error(1)
}

// MockAPIKeyUseCase is a mock implementation of usecase.APIKeyUseCase.
type MockAPIKeyUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockAPIKeyUseCase) Create(
	ctx context.Context,
	userID uuid.UUID,
	name string,
) (*authDomain.CreateAPIKeyOutput, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.CreateAPIKeyOutput), args.Error(1)
}

// List mocks the List method.
func (m *MockAPIKeyUseCase) List(ctx context.Context, userID uuid.UUID) ([]*authDomain.APIKey, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.APIKey), args.Error(1)
}

// Revoke mocks the Revoke method.
func (m *MockAPIKeyUseCase) Revoke(ctx context.Context, userID, keyID uuid.UUID) error {
	args := m.Called(ctx, userID, keyID)
	return args.Error(0)
}

// MockUserUseCase is a mock implementation of usecase.UserUseCase.
type MockUserUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockUserUseCase) Create(
	ctx context.Context,
	actor authDomain.UserContext,
	input *authDomain.CreateUserInput,
) (*authDomain.User, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

// Get mocks the Get method.
func (m *MockUserUseCase) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

// UpdateStatus mocks the UpdateStatus method.
func (m *MockUserUseCase) UpdateStatus(
	ctx context.Context,
	actor authDomain.UserContext,
	userID uuid.UUID,
	status authDomain.UserStatus,
) error {
	args := m.Called(ctx, actor, userID, status)
	return args.Error(0)
}

// Unlock mocks the Unlock method.
func (m *MockUserUseCase) Unlock(
	ctx context.Context,
	actor authDomain.UserContext,
	userID uuid.UUID,
) (*authDomain.User, error) {
	args := m.Called(ctx, actor, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

// MockAuditLogUseCase is a mock implementation of usecase.AuditLogUseCase.
type MockAuditLogUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockAuditLogUseCase) Create(
	ctx context.Context,
	requestID string,
	userID *uuid.UUID,
	permission string,
	allowed bool,
) error {
	args := m.Called(ctx, requestID, userID, permission, allowed)
	return args.Error(0)
}

// List mocks the List method.
func (m *MockAuditLogUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*authDomain.AuditLog, error) {
	args := m.Called(ctx, offset, limit, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.AuditLog), args.Error(1)
}

// MockUserRepository is a mock implementation of usecase.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockUserRepository) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

// GetByEmail mocks the GetByEmail method.
func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*authDomain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

// UpdateStatus mocks the UpdateStatus method.
func (m *MockUserRepository) UpdateStatus(
	ctx context.Context,
	userID uuid.UUID,
	status authDomain.UserStatus,
	updatedAt time.Time,
) error {
	args := m.Called(ctx, userID, status, updatedAt)
	return args.Error(0)
}

// UpdateLockState mocks the UpdateLockState method.
func (m *MockUserRepository) UpdateLockState(
	ctx context.Context,
	userID uuid.UUID,
	failedAttempts int,
	lockedUntil *time.Time,
) error {
	args := m.Called(ctx, userID, failedAttempts, lockedUntil)
	return args.Error(0)
}

// MockAuditLogRepository is a mock implementation of usecase.AuditLogRepository.
type MockAuditLogRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockAuditLogRepository) Create(ctx context.Context, auditLog *authDomain.AuditLog) error {
	args := m.Called(ctx, auditLog)
	return args.Error(0)
}

// List mocks the List method.
func (m *MockAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*authDomain.AuditLog, error) {
	args := m.Called(ctx, offset, limit, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.AuditLog), args.Error(1)
}

// MockAPIKeyRepository is a mock implementation of usecase.APIKeyRepository.
type MockAPIKeyRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockAPIKeyRepository) Create(ctx context.Context, apiKey *authDomain.APIKey) error {
	args := m.Called(ctx, apiKey)
	return args.Error(0)
}

// ListActiveByPrefix mocks the ListActiveByPrefix method.
func (m *MockAPIKeyRepository) ListActiveByPrefix(ctx context.Context, prefix string) ([]*authDomain.APIKey, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.APIKey), args.Error(1)
}

// ListByUser mocks the ListByUser method.
func (m *MockAPIKeyRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*authDomain.APIKey, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.APIKey), args.Error(1)
}

// CountActiveByUser mocks the CountActiveByUser method.
func (m *MockAPIKeyRepository) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// Revoke mocks the Revoke method.
func (m *MockAPIKeyRepository) Revoke(ctx context.Context, keyID, userID uuid.UUID, revokedAt time.Time) error {
	args := m.Called(ctx, keyID, userID, revokedAt)
	return args.Error(0)
}

// TouchLastUsed mocks the TouchLastUsed method.
func (m *MockAPIKeyRepository) TouchLastUsed(ctx context.Context, keyID uuid.UUID, usedAt time.Time) error {
	args := m.Called(ctx, keyID, usedAt)
	return args.Error(0)
}

// MockUserLookup is a mock implementation of usecase.UserLookup.
type MockUserLookup struct {
	mock.Mock
}

// LookupUser mocks the LookupUser method.
func (m *MockUserLookup) LookupUser(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

// Invalidate mocks the Invalidate method.
func (m *MockUserLookup) Invalidate(userID uuid.UUID) {
	m.Called(userID)
}

// MockTxManager is a mock implementation of database.TxManager that runs fn inline.
type MockTxManager struct {
	mock.Mock
}

// WithTx records the call and runs fn with the same context.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}
