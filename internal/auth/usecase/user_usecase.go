package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/screening/internal/auth/domain"
	cryptoService "github.com/allisson/screening/internal/crypto/service"
	apperrors "github.com/allisson/screening/internal/errors"
)

// userUseCase implements UserUseCase.
type userUseCase struct {
	userRepo       UserRepository
	userLookup     UserLookup
	passwordHasher cryptoService.PasswordHasher
}

// NewUserUseCase creates a new UserUseCase.
func NewUserUseCase(
	userRepo UserRepository,
	userLookup UserLookup,
	passwordHasher cryptoService.PasswordHasher,
) UserUseCase {
	return &userUseCase{
		userRepo:       userRepo,
		userLookup:     userLookup,
		passwordHasher: passwordHasher,
	}
}

// Create implements UserUseCase.
func (u *userUseCase) Create(
	ctx context.Context,
	actor authDomain.UserContext,
	input *authDomain.CreateUserInput,
) (*authDomain.User, error) {
	if !input.Role.IsValid() {
		return nil, authDomain.ErrUnknownRole
	}
	status := input.Status
	if status == "" {
		status = authDomain.UserStatusActive
	}
	if !status.IsValid() {
		return nil, authDomain.ErrUnknownStatus
	}
	if input.Role.IsClientRole() && input.ClientID == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "client users require a client id")
	}
	if !input.Role.IsClientRole() && input.ClientID != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "only client users belong to a client")
	}
	if err := authorizeUserAdmin(actor, input.Role, input.ClientID); err != nil {
		return nil, err
	}

	passwordHash, err := u.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &authDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        NormalizeEmail(input.Email),
		PasswordHash: passwordHash,
		Role:         input.Role,
		ClientID:     input.ClientID,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get implements UserUseCase.
func (u *userUseCase) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	return u.userRepo.Get(ctx, userID)
}

// UpdateStatus implements UserUseCase.
func (u *userUseCase) UpdateStatus(
	ctx context.Context,
	actor authDomain.UserContext,
	userID uuid.UUID,
	status authDomain.UserStatus,
) error {
	if !status.IsValid() {
		return authDomain.ErrUnknownStatus
	}

	target, err := u.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := authorizeUserAdmin(actor, target.Role, target.ClientID); err != nil {
		return err
	}
	if target.ID == actor.ID {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "cannot change own status")
	}

	if err := u.userRepo.UpdateStatus(ctx, userID, status, time.Now().UTC()); err != nil {
		return err
	}
	u.userLookup.Invalidate(userID)
	return nil
}

// Unlock implements UserUseCase.
func (u *userUseCase) Unlock(
	ctx context.Context,
	actor authDomain.UserContext,
	userID uuid.UUID,
) (*authDomain.User, error) {
	target, err := u.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := authorizeUserAdmin(actor, target.Role, target.ClientID); err != nil {
		return nil, err
	}

	if err := u.userRepo.UpdateLockState(ctx, userID, 0, nil); err != nil {
		return nil, err
	}
	target.FailedAttempts = 0
	target.LockedUntil = nil
	return target, nil
}

// authorizeUserAdmin applies the tenant and role rules of user administration on top of
// the route permission: only the owner manages owners, and client-side actors only
// manage client users of their own organization.
func authorizeUserAdmin(actor authDomain.UserContext, role authDomain.Role, clientID *uuid.UUID) error {
	if role == authDomain.RoleOwner && actor.Role != authDomain.RoleOwner {
		return authDomain.ErrPermissionDenied
	}
	if !actor.Role.IsClientRole() {
		return nil
	}
	if !role.IsClientRole() || clientID == nil || actor.ClientID == nil || *clientID != *actor.ClientID {
		return authDomain.ErrPermissionDenied
	}
	return nil
}
