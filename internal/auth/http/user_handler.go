package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/screening/internal/auth/domain"
	"github.com/allisson/screening/internal/auth/http/dto"
	authUseCase "github.com/allisson/screening/internal/auth/usecase"
	"github.com/allisson/screening/internal/httputil"
	customValidation "github.com/allisson/screening/internal/validation"
)

// UserHandler handles user administration. Tenant rules (who may manage whom) are
// enforced by the use case on top of the route permission.
type UserHandler struct {
	userUseCase authUseCase.UserUseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler with required dependencies.
func NewUserHandler(userUseCase authUseCase.UserUseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// CreateHandler registers a new user.
// POST /v1/users - Requires users:create.
// Returns 201 Created with the user (no password hash).
func (h *UserHandler) CreateHandler(c *gin.Context) {
	actor, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrMissingCredentials, h.logger)
		return
	}

	var req dto.CreateUserRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.userUseCase.Create(c.Request.Context(), actor, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapUserToResponse(user))
}

// UpdateStatusHandler activates, deactivates or suspends a user. The change takes effect
// on the user's next request.
// PATCH /v1/users/:id/status - Requires users:update.
// Returns 204 No Content.
func (h *UserHandler) UpdateStatusHandler(c *gin.Context) {
	actor, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrMissingCredentials, h.logger)
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid user ID format: must be a valid UUID"), h.logger)
		return
	}

	var req dto.UpdateUserStatusRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	status := authDomain.UserStatus(req.Status)
	if err := h.userUseCase.UpdateStatus(c.Request.Context(), actor, userID, status); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// UnlockHandler clears a lockout left by repeated failed logins.
// POST /v1/users/:id/unlock - Requires users:update.
// Returns 200 OK with the user.
func (h *UserHandler) UnlockHandler(c *gin.Context) {
	actor, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrMissingCredentials, h.logger)
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid user ID format: must be a valid UUID"), h.logger)
		return
	}

	user, err := h.userUseCase.Unlock(c.Request.Context(), actor, userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("user unlocked",
		slog.String("user_id", user.ID.String()),
		slog.String("actor_id", actor.ID.String()))

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}
