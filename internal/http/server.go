// Package http provides the HTTP server, router and shared middleware of the screening API.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/screening/internal/auth/domain"
	authHTTP "github.com/allisson/screening/internal/auth/http"
	authUseCase "github.com/allisson/screening/internal/auth/usecase"
	"github.com/allisson/screening/internal/config"
	cryptoHTTP "github.com/allisson/screening/internal/crypto/http"
	"github.com/allisson/screening/internal/metrics"
)

// readinessTimeout bounds the database ping of the readiness check.
const readinessTimeout = 2 * time.Second

// Server represents the HTTP server
type Server struct {
	db     *sql.DB
	server *http.Server
	logger *slog.Logger
	router *gin.Engine
}

// NewServer creates a new HTTP server. Call SetupRouter before Start.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Handlers groups the route handlers mounted by SetupRouter.
type Handlers struct {
	Auth     *authHTTP.AuthHandler
	APIKey   *authHTTP.APIKeyHandler
	User     *authHTTP.UserHandler
	AuditLog *authHTTP.AuditLogHandler
	Field    *cryptoHTTP.FieldHandler
}

// SetupRouter builds the gin engine with every route of the API.
//
// Every /v1 route except login and refresh passes the auth gate (bearer token or API key),
// then the per-user rate limiter, then its permission check. Permission decisions are
// written to the audit log through auditLogUC.
func (s *Server) SetupRouter(
	cfg *config.Config,
	handlers Handlers,
	authUC authUseCase.AuthUseCase,
	auditLogUC authUseCase.AuditLogUseCase,
	permissionTable *authDomain.PermissionTable,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	// Unauthenticated credential exchange
	login := v1.Group("/auth")
	if cfg.RateLimitLoginEnabled {
		login.Use(authHTTP.LoginRateLimitMiddleware(
			cfg.RateLimitLoginRequestsPerSec,
			cfg.RateLimitLoginBurst,
			s.logger,
		))
	}
	login.POST("/login", handlers.Auth.LoginHandler)
	login.POST("/refresh", handlers.Auth.RefreshHandler)

	// Authenticated routes
	protected := v1.Group("")
	protected.Use(authHTTP.AuthenticateAnyMiddleware(authUC, s.logger))
	if cfg.RateLimitEnabled {
		protected.Use(authHTTP.RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	allow := func(resource string, action authDomain.Action) gin.HandlerFunc {
		return authHTTP.RequirePermission(permissionTable, resource, action, auditLogUC, s.logger)
	}

	protected.GET("/auth/me", handlers.Auth.MeHandler)

	apiKeys := protected.Group("/api-keys")
	{
		apiKeys.POST("", allow(authDomain.ResourceAPIKeys, authDomain.ActionCreate), handlers.APIKey.CreateHandler)
		apiKeys.GET("", allow(authDomain.ResourceAPIKeys, authDomain.ActionRead), handlers.APIKey.ListHandler)
		apiKeys.DELETE(
			"/:id",
			allow(authDomain.ResourceAPIKeys, authDomain.ActionDelete),
			handlers.APIKey.RevokeHandler,
		)
	}

	users := protected.Group("/users")
	{
		users.POST("", allow(authDomain.ResourceUsers, authDomain.ActionCreate), handlers.User.CreateHandler)
		users.PATCH(
			"/:id/status",
			allow(authDomain.ResourceUsers, authDomain.ActionUpdate),
			handlers.User.UpdateStatusHandler,
		)
		users.POST(
			"/:id/unlock",
			allow(authDomain.ResourceUsers, authDomain.ActionUpdate),
			handlers.User.UnlockHandler,
		)
	}

	protected.GET(
		"/audit-logs",
		allow(authDomain.ResourceAuditLogs, authDomain.ActionRead),
		handlers.AuditLog.ListHandler,
	)

	fields := protected.Group("/fields")
	{
		fields.POST(
			"/encrypt",
			allow(authDomain.ResourceSensitiveFields, authDomain.ActionCreate),
			handlers.Field.EncryptHandler,
		)
		fields.POST(
			"/decrypt",
			allow(authDomain.ResourceSensitiveFields, authDomain.ActionRead),
			handlers.Field.DecryptHandler,
		)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured: call SetupRouter before Start")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports liveness. It never touches dependencies.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the database answers, since every authenticated
// request needs a live user lookup.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}

	if s.db == nil {
		components["database"] = "error"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			components["database"] = "error"
		}
	}

	if components["database"] != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
