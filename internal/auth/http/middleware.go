package http

import (
	"log/slog"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/screening/internal/auth/domain"
	authUseCase "github.com/allisson/screening/internal/auth/usecase"
	"github.com/allisson/screening/internal/httputil"
)

// APIKeyHeader carries a raw API key.
const APIKeyHeader = "X-API-Key"

// AuthenticationMiddleware authenticates requests with a Bearer access token in the
// Authorization header (case-insensitive "bearer").
//
// The role and status stored in the request context come from the live user record, not
// from the token, so a deactivated user is rejected on the next request.
//
// Error handling:
//   - Missing or malformed Authorization header → 401 UNAUTHORIZED
//   - Expired token → 401 TOKEN_EXPIRED
//   - Invalid signature, issuer, audience or token type → 401 TOKEN_INVALID
//   - User not found or not active → 401 UNAUTHORIZED
//   - User lookup failure or timeout → 500
//
// Usage:
//
//	router.GET("/v1/auth/me", AuthenticationMiddleware(authUseCase, logger), handler)
func AuthenticationMiddleware(useCase authUseCase.AuthUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, authDomain.ErrMissingCredentials, logger)
			return
		}
		authenticate(c, logger, func() (authDomain.UserContext, error) {
			return useCase.Authenticate(c.Request.Context(), token)
		})
	}
}

// APIKeyAuthenticationMiddleware authenticates requests with a raw key in the X-API-Key header.
// The resulting principal is identical to the one produced by AuthenticationMiddleware.
func APIKeyAuthenticationMiddleware(useCase authUseCase.AuthUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawKey := strings.TrimSpace(c.GetHeader(APIKeyHeader))
		if rawKey == "" {
			logger.Debug("authentication failed: missing api key header")
			httputil.HandleErrorGin(c, authDomain.ErrMissingCredentials, logger)
			return
		}
		authenticate(c, logger, func() (authDomain.UserContext, error) {
			return useCase.AuthenticateAPIKey(c.Request.Context(), rawKey)
		})
	}
}

// AuthenticateAnyMiddleware accepts either credential. When both headers are present the
// API key is used and the bearer token is ignored.
func AuthenticateAnyMiddleware(useCase authUseCase.AuthUseCase, logger *slog.Logger) gin.HandlerFunc {
	bearer := AuthenticationMiddleware(useCase, logger)
	apiKey := APIKeyAuthenticationMiddleware(useCase, logger)

	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader(APIKeyHeader)) != "" {
			apiKey(c)
			return
		}
		bearer(c)
	}
}

func authenticate(c *gin.Context, logger *slog.Logger, fn func() (authDomain.UserContext, error)) {
	user, err := fn()
	if err != nil {
		logger.Debug("authentication failed", slog.String("error", err.Error()))
		httputil.HandleErrorGin(c, err, logger)
		return
	}

	c.Request = c.Request.WithContext(WithUser(c.Request.Context(), user))

	logger.Debug("authentication successful",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)))

	c.Next()
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, bool) {
	const bearerPrefix = "bearer "
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// RequirePermission allows the request only when the principal's role grants action on
// resource in table. MUST be used after one of the authentication middlewares.
//
//   - No principal in context → 401 UNAUTHORIZED
//   - Role lacks the permission → 403 FORBIDDEN
//
// Every decision on an authenticated principal is written to the audit log when
// auditLogUseCase is non-nil. A failed audit write is logged and does not change the decision.
func RequirePermission(
	table *authDomain.PermissionTable,
	resource string,
	action authDomain.Action,
	auditLogUseCase authUseCase.AuditLogUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	permission := authDomain.Permission{Resource: resource, Action: action}.String()

	return func(c *gin.Context) {
		user, ok := GetUser(c.Request.Context())
		if !ok {
			logger.Debug("authorization failed: no authenticated user in context")
			httputil.HandleErrorGin(c, authDomain.ErrMissingCredentials, logger)
			return
		}

		allowed := table.HasPermission(user.Role, resource, action)
		recordDecision(c, auditLogUseCase, logger, user, permission, allowed)

		if !allowed {
			logger.Debug("authorization failed: insufficient permissions",
				slog.String("user_id", user.ID.String()),
				slog.String("role", string(user.Role)),
				slog.String("permission", permission))
			httputil.HandleErrorGin(c, authDomain.ErrPermissionDenied, logger)
			return
		}

		c.Next()
	}
}

func recordDecision(
	c *gin.Context,
	auditLogUseCase authUseCase.AuditLogUseCase,
	logger *slog.Logger,
	user authDomain.UserContext,
	permission string,
	allowed bool,
) {
	if auditLogUseCase == nil {
		return
	}
	requestID := requestid.Get(c)
	userID := user.ID
	if err := auditLogUseCase.Create(c.Request.Context(), requestID, &userID, permission, allowed); err != nil {
		logger.Warn("failed to record audit log",
			slog.String("request_id", requestID),
			slog.String("permission", permission),
			slog.Any("error", err))
	}
}

// RequireRoles allows the request only when the principal holds one of roles.
// MUST be used after one of the authentication middlewares.
func RequireRoles(logger *slog.Logger, roles ...authDomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c.Request.Context())
		if !ok {
			logger.Debug("authorization failed: no authenticated user in context")
			httputil.HandleErrorGin(c, authDomain.ErrMissingCredentials, logger)
			return
		}

		if !user.HasRole(roles...) {
			logger.Debug("authorization failed: role not allowed",
				slog.String("user_id", user.ID.String()),
				slog.String("role", string(user.Role)))
			httputil.HandleErrorGin(c, authDomain.ErrPermissionDenied, logger)
			return
		}

		c.Next()
	}
}
