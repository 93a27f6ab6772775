package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/screening/internal/auth/domain"
	"github.com/allisson/screening/internal/auth/http/dto"
	authUseCase "github.com/allisson/screening/internal/auth/usecase"
	customValidation "github.com/allisson/screening/internal/validation"
)

// systemActor is the principal used by operator commands. It bypasses tenant rules the
// same way an owner does, which is what bootstrapping the first owner requires.
var systemActor = authDomain.UserContext{
	ID:     uuid.Nil,
	Role:   authDomain.RoleOwner,
	Status: authDomain.UserStatusActive,
}

type createUserOutput struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ClientID  string    `json:"client_id,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// RunCreateUser creates a user from the command line. When password is empty or "-" it is
// read from the reader so it never shows up in shell history.
//
// Requirements: Database must be migrated and accessible.
func RunCreateUser(
	ctx context.Context,
	userUseCase authUseCase.UserUseCase,
	logger *slog.Logger,
	email, password, role, clientID string,
	format string,
	tuple IOTuple,
) error {
	password, err := valueOrStdin(password, "Password: ", tuple)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	req := dto.CreateUserRequest{
		Email:    email,
		Password: password,
		Role:     role,
		ClientID: clientID,
	}
	if err := req.Validate(); err != nil {
		return customValidation.WrapValidationError(err)
	}

	logger.Info("creating user", slog.String("role", role))

	user, err := userUseCase.Create(ctx, systemActor, req.ToInput())
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	out := createUserOutput{
		ID:        user.ID.String(),
		Email:     user.Email,
		Role:      string(user.Role),
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
	}
	if user.ClientID != nil {
		out.ClientID = user.ClientID.String()
	}

	if err := writeOutput(tuple.Writer, format, out, func(w io.Writer) {
		_, _ = fmt.Fprintln(w, "User created successfully!")
		_, _ = fmt.Fprintf(w, "ID:     %s\n", out.ID)
		_, _ = fmt.Fprintf(w, "Email:  %s\n", out.Email)
		_, _ = fmt.Fprintf(w, "Role:   %s\n", out.Role)
		if out.ClientID != "" {
			_, _ = fmt.Fprintf(w, "Client: %s\n", out.ClientID)
		}
		_, _ = fmt.Fprintf(w, "Status: %s\n", out.Status)
	}); err != nil {
		return err
	}

	logger.Info("user created successfully",
		slog.String("user_id", out.ID),
		slog.String("role", out.Role),
	)
	return nil
}
