package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/screening/internal/auth/domain"
	"github.com/allisson/screening/internal/auth/http/dto"
	authUseCase "github.com/allisson/screening/internal/auth/usecase"
	"github.com/allisson/screening/internal/httputil"
	customValidation "github.com/allisson/screening/internal/validation"
)

// AuthHandler handles login, token refresh and the current-user endpoint.
type AuthHandler struct {
	authUseCase     authUseCase.AuthUseCase
	userUseCase     authUseCase.UserUseCase
	permissionTable *authDomain.PermissionTable
	logger          *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(
	authUseCase authUseCase.AuthUseCase,
	userUseCase authUseCase.UserUseCase,
	permissionTable *authDomain.PermissionTable,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUseCase:     authUseCase,
		userUseCase:     userUseCase,
		permissionTable: permissionTable,
		logger:          logger,
	}
}

// LoginHandler exchanges email and password for a token pair.
// POST /v1/auth/login - No authentication required.
// Returns 200 OK with access and refresh tokens.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ctx := authDomain.WithRequestID(c.Request.Context(), requestid.Get(c))
	pair, err := h.authUseCase.Login(ctx, req.Email, req.Password)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokenPairToResponse(pair))
}

// RefreshHandler exchanges a refresh token for a new token pair carrying the user's
// current role and status.
// POST /v1/auth/refresh - No authentication required.
// Returns 200 OK with access and refresh tokens.
func (h *AuthHandler) RefreshHandler(c *gin.Context) {
	var req dto.RefreshRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	pair, err := h.authUseCase.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokenPairToResponse(pair))
}

// MeHandler returns the authenticated user and the permissions of their role.
// GET /v1/auth/me - Requires authentication.
func (h *AuthHandler) MeHandler(c *gin.Context) {
	principal, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrMissingCredentials, h.logger)
		return
	}

	user, err := h.userUseCase.Get(c.Request.Context(), principal.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	grants := h.permissionTable.Grants(principal.Role)
	if principal.Role == authDomain.RoleOwner {
		grants = []authDomain.PermissionGrant{
			{Resource: authDomain.ResourceAll, Actions: []authDomain.Action{authDomain.ActionManage}},
		}
	}

	c.JSON(http.StatusOK, dto.MapMeToResponse(user, grants))
}
