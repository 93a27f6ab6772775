// Package http provides HTTP handlers for sensitive field encryption used by admin tooling.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/screening/internal/crypto/http/dto"
	cryptoService "github.com/allisson/screening/internal/crypto/service"
	"github.com/allisson/screening/internal/httputil"
	customValidation "github.com/allisson/screening/internal/validation"
)

// FieldHandler encrypts and decrypts sensitive fields (SIN, date of birth, bank data).
// Plaintext values are never logged.
type FieldHandler struct {
	fieldCipher cryptoService.FieldCipher
	logger      *slog.Logger
}

// NewFieldHandler creates a new field handler with required dependencies.
func NewFieldHandler(fieldCipher cryptoService.FieldCipher, logger *slog.Logger) *FieldHandler {
	return &FieldHandler{
		fieldCipher: fieldCipher,
		logger:      logger,
	}
}

// EncryptHandler encrypts a value into the "iv:ciphertext" hex form.
// POST /v1/fields/encrypt - Requires sensitive_fields:create.
func (h *FieldHandler) EncryptHandler(c *gin.Context) {
	var req dto.FieldRequest
	if !h.bind(c, &req) {
		return
	}

	encrypted, err := h.fieldCipher.Encrypt(req.Value)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.FieldResponse{Value: encrypted})
}

// DecryptHandler decrypts a stored value. With ?mask=true the response also carries the
// masked form for display.
// POST /v1/fields/decrypt - Requires sensitive_fields:read.
// Returns 422 when the value cannot be decrypted.
func (h *FieldHandler) DecryptHandler(c *gin.Context) {
	var req dto.FieldRequest
	if !h.bind(c, &req) {
		return
	}

	plaintext, err := h.fieldCipher.Decrypt(req.Value)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	resp := dto.FieldResponse{Value: plaintext}
	if c.Query("mask") == "true" {
		resp.Masked = cryptoService.MaskSIN(plaintext)
	}

	c.JSON(http.StatusOK, resp)
}

func (h *FieldHandler) bind(c *gin.Context, req *dto.FieldRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return false
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return false
	}
	return true
}
