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

// APIKeyHandler handles self-service API key management. Every operation is scoped to
// the authenticated user.
type APIKeyHandler struct {
	apiKeyUseCase authUseCase.APIKeyUseCase
	logger        *slog.Logger
}

// NewAPIKeyHandler creates a new API key handler with required dependencies.
func NewAPIKeyHandler(apiKeyUseCase authUseCase.APIKeyUseCase, logger *slog.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		apiKeyUseCase: apiKeyUseCase,
		logger:        logger,
	}
}

// CreateHandler creates an API key for the authenticated user.
// POST /v1/api-keys - Requires api_keys:create.
// Returns 201 Created with the plaintext key, which is never shown again.
func (h *APIKeyHandler) CreateHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrMissingCredentials, h.logger)
		return
	}

	var req dto.CreateAPIKeyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.apiKeyUseCase.Create(c.Request.Context(), user.ID, req.Name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateAPIKeyResponse{
		APIKeyResponse: dto.MapAPIKeyToResponse(output.APIKey),
		Key:            output.PlainKey,
	})
}

// ListHandler lists the API keys of the authenticated user.
// GET /v1/api-keys - Requires api_keys:read.
func (h *APIKeyHandler) ListHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrMissingCredentials, h.logger)
		return
	}

	apiKeys, err := h.apiKeyUseCase.List(c.Request.Context(), user.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ListAPIKeysResponse{Data: dto.MapAPIKeysToResponse(apiKeys)})
}

// RevokeHandler revokes an API key of the authenticated user.
// DELETE /v1/api-keys/:id - Requires api_keys:delete.
// Returns 204 No Content.
func (h *APIKeyHandler) RevokeHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrMissingCredentials, h.logger)
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid api key ID format: must be a valid UUID"), h.logger)
		return
	}

	if err := h.apiKeyUseCase.Revoke(c.Request.Context(), user.ID, keyID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
