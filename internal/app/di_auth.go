package app

import (
	"fmt"

	authDomain "github.com/allisson/screening/internal/auth/domain"
	authHTTP "github.com/allisson/screening/internal/auth/http"
	authRepository "github.com/allisson/screening/internal/auth/repository"
	authService "github.com/allisson/screening/internal/auth/service"
	authUseCase "github.com/allisson/screening/internal/auth/usecase"
)

// TokenService returns the JWT token service signed with the resolved secrets.
func (c *Container) TokenService() (authService.TokenService, error) {
	var err error
	c.tokenServiceInit.Do(func() {
		c.tokenService, err = c.initTokenService()
		if err != nil {
			c.initErrors["tokenService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.tokenService, nil
}

// PermissionTable returns the role permission table, either the embedded default or the
// file named by RBAC_POLICY_FILE.
func (c *Container) PermissionTable() (*authDomain.PermissionTable, error) {
	var err error
	c.permissionTableInit.Do(func() {
		c.permissionTable, err = c.initPermissionTable()
		if err != nil {
			c.initErrors["permissionTable"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["permissionTable"]; exists {
		return nil, storedErr
	}
	return c.permissionTable, nil
}

// UserRepository returns the user repository based on database driver.
func (c *Container) UserRepository() (authUseCase.UserRepository, error) {
	var err error
	c.userRepoInit.Do(func() {
		c.userRepo, err = c.initUserRepository()
		if err != nil {
			c.initErrors["userRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// APIKeyRepository returns the API key repository based on database driver.
func (c *Container) APIKeyRepository() (authUseCase.APIKeyRepository, error) {
	var err error
	c.apiKeyRepoInit.Do(func() {
		c.apiKeyRepo, err = c.initAPIKeyRepository()
		if err != nil {
			c.initErrors["apiKeyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyRepo"]; exists {
		return nil, storedErr
	}
	return c.apiKeyRepo, nil
}

// AuditLogRepository returns the audit log repository based on database driver.
func (c *Container) AuditLogRepository() (authUseCase.AuditLogRepository, error) {
	var err error
	c.auditLogRepoInit.Do(func() {
		c.auditLogRepo, err = c.initAuditLogRepository()
		if err != nil {
			c.initErrors["auditLogRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogRepo"]; exists {
		return nil, storedErr
	}
	return c.auditLogRepo, nil
}

// UserLookup returns the cached live user lookup shared by the auth gate and user management.
func (c *Container) UserLookup() (authUseCase.UserLookup, error) {
	var err error
	c.userLookupInit.Do(func() {
		var userRepo authUseCase.UserRepository
		userRepo, err = c.UserRepository()
		if err != nil {
			err = fmt.Errorf("failed to get user repository for user lookup: %w", err)
			c.initErrors["userLookup"] = err
			return
		}
		c.userLookup = authUseCase.NewCachedUserLookup(
			userRepo,
			c.config.UserLookupCacheTTL,
			c.config.UserLookupTimeout,
		)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userLookup"]; exists {
		return nil, storedErr
	}
	return c.userLookup, nil
}

// AuthUseCase returns the auth use case.
func (c *Container) AuthUseCase() (authUseCase.AuthUseCase, error) {
	var err error
	c.authUseCaseInit.Do(func() {
		c.authUseCase, err = c.initAuthUseCase()
		if err != nil {
			c.initErrors["authUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authUseCase"]; exists {
		return nil, storedErr
	}
	return c.authUseCase, nil
}

// APIKeyUseCase returns the API key use case.
func (c *Container) APIKeyUseCase() (authUseCase.APIKeyUseCase, error) {
	var err error
	c.apiKeyUseCaseInit.Do(func() {
		c.apiKeyUseCase, err = c.initAPIKeyUseCase()
		if err != nil {
			c.initErrors["apiKeyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyUseCase"]; exists {
		return nil, storedErr
	}
	return c.apiKeyUseCase, nil
}

// UserUseCase returns the user use case.
func (c *Container) UserUseCase() (authUseCase.UserUseCase, error) {
	var err error
	c.userUseCaseInit.Do(func() {
		c.userUseCase, err = c.initUserUseCase()
		if err != nil {
			c.initErrors["userUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userUseCase"]; exists {
		return nil, storedErr
	}
	return c.userUseCase, nil
}

// AuditLogUseCase returns the audit log use case shared by login and the permission gate.
func (c *Container) AuditLogUseCase() (authUseCase.AuditLogUseCase, error) {
	var err error
	c.auditLogUseCaseInit.Do(func() {
		c.auditLogUseCase, err = c.initAuditLogUseCase()
		if err != nil {
			c.initErrors["auditLogUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditLogUseCase, nil
}

// AuthHandler returns the login, refresh and me handler.
func (c *Container) AuthHandler() (*authHTTP.AuthHandler, error) {
	var err error
	c.authHandlerInit.Do(func() {
		c.authHandler, err = c.initAuthHandler()
		if err != nil {
			c.initErrors["authHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authHandler"]; exists {
		return nil, storedErr
	}
	return c.authHandler, nil
}

// APIKeyHandler returns the API key handler.
func (c *Container) APIKeyHandler() (*authHTTP.APIKeyHandler, error) {
	var err error
	c.apiKeyHandlerInit.Do(func() {
		var useCase authUseCase.APIKeyUseCase
		useCase, err = c.APIKeyUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get api key use case for api key handler: %w", err)
			c.initErrors["apiKeyHandler"] = err
			return
		}
		c.apiKeyHandler = authHTTP.NewAPIKeyHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiKeyHandler"]; exists {
		return nil, storedErr
	}
	return c.apiKeyHandler, nil
}

// UserHandler returns the user administration handler.
func (c *Container) UserHandler() (*authHTTP.UserHandler, error) {
	var err error
	c.userHandlerInit.Do(func() {
		var useCase authUseCase.UserUseCase
		useCase, err = c.UserUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get user use case for user handler: %w", err)
			c.initErrors["userHandler"] = err
			return
		}
		c.userHandler = authHTTP.NewUserHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userHandler"]; exists {
		return nil, storedErr
	}
	return c.userHandler, nil
}

// AuditLogHandler returns the audit log handler.
func (c *Container) AuditLogHandler() (*authHTTP.AuditLogHandler, error) {
	var err error
	c.auditLogHandlerInit.Do(func() {
		var useCase authUseCase.AuditLogUseCase
		useCase, err = c.AuditLogUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get audit log use case for audit log handler: %w", err)
			c.initErrors["auditLogHandler"] = err
			return
		}
		c.auditLogHandler = authHTTP.NewAuditLogHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogHandler"]; exists {
		return nil, storedErr
	}
	return c.auditLogHandler, nil
}

// initTokenService creates the token service from the resolved signing secrets.
func (c *Container) initTokenService() (authService.TokenService, error) {
	secrets, err := c.BootSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to get boot secrets for token service: %w", err)
	}

	tokenService, err := authService.NewTokenService(authService.TokenConfig{
		AccessSecret:  secrets.JWTAccessSecret,
		RefreshSecret: secrets.JWTRefreshSecret,
		Issuer:        c.config.JWTIssuer,
		Audience:      c.config.JWTAudience,
		AccessTTL:     c.config.JWTAccessTTL,
		RefreshTTL:    c.config.JWTRefreshTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	return tokenService, nil
}

// initPermissionTable loads the permission table. A broken policy file fails startup.
func (c *Container) initPermissionTable() (*authDomain.PermissionTable, error) {
	if c.config.RBACPolicyFile == "" {
		return authDomain.DefaultPermissionTable()
	}

	table, err := authDomain.LoadPermissionTableFile(c.config.RBACPolicyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load RBAC policy file: %w", err)
	}
	return table, nil
}

// initUserRepository creates the user repository for the configured driver.
func (c *Container) initUserRepository() (authUseCase.UserRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return authRepository.NewMySQLUserRepository(db), nil
	case "postgres":
		return authRepository.NewPostgreSQLUserRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAPIKeyRepository creates the API key repository for the configured driver.
func (c *Container) initAPIKeyRepository() (authUseCase.APIKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for api key repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return authRepository.NewMySQLAPIKeyRepository(db), nil
	case "postgres":
		return authRepository.NewPostgreSQLAPIKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditLogRepository creates the audit log repository for the configured driver.
func (c *Container) initAuditLogRepository() (authUseCase.AuditLogRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit log repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return authRepository.NewMySQLAuditLogRepository(db), nil
	case "postgres":
		return authRepository.NewPostgreSQLAuditLogRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditLogUseCase creates the audit log use case wrapped with business metrics.
func (c *Container) initAuditLogUseCase() (authUseCase.AuditLogUseCase, error) {
	auditLogRepo, err := c.AuditLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log repository for audit log use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for audit log use case: %w", err)
	}

	useCase := authUseCase.NewAuditLogUseCase(auditLogRepo)
	return authUseCase.NewAuditLogUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initAuthUseCase creates the auth use case wrapped with business metrics.
func (c *Container) initAuthUseCase() (authUseCase.AuthUseCase, error) {
	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for auth use case: %w", err)
	}

	apiKeyRepo, err := c.APIKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key repository for auth use case: %w", err)
	}

	userLookup, err := c.UserLookup()
	if err != nil {
		return nil, fmt.Errorf("failed to get user lookup for auth use case: %w", err)
	}

	tokenService, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for auth use case: %w", err)
	}

	passwordHasher, err := c.PasswordHasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get password hasher for auth use case: %w", err)
	}

	auditLogUC, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for auth use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for auth use case: %w", err)
	}

	useCase := authUseCase.NewAuthUseCase(
		userRepo,
		apiKeyRepo,
		userLookup,
		tokenService,
		passwordHasher,
		c.APIKeyHasher(),
		auditLogUC,
		authUseCase.LockoutPolicy{
			MaxAttempts: c.config.LockoutMaxAttempts,
			Duration:    c.config.LockoutDuration,
		},
		c.Logger(),
	)
	return authUseCase.NewAuthUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initAPIKeyUseCase creates the API key use case wrapped with business metrics.
func (c *Container) initAPIKeyUseCase() (authUseCase.APIKeyUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for api key use case: %w", err)
	}

	apiKeyRepo, err := c.APIKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get api key repository for api key use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for api key use case: %w", err)
	}

	useCase := authUseCase.NewAPIKeyUseCase(txManager, apiKeyRepo, c.APIKeyHasher(), c.config.APIKeyMaxPerUser)
	return authUseCase.NewAPIKeyUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initUserUseCase creates the user use case wrapped with business metrics.
func (c *Container) initUserUseCase() (authUseCase.UserUseCase, error) {
	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for user use case: %w", err)
	}

	userLookup, err := c.UserLookup()
	if err != nil {
		return nil, fmt.Errorf("failed to get user lookup for user use case: %w", err)
	}

	passwordHasher, err := c.PasswordHasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get password hasher for user use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for user use case: %w", err)
	}

	useCase := authUseCase.NewUserUseCase(userRepo, userLookup, passwordHasher)
	return authUseCase.NewUserUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initAuthHandler creates the auth handler.
func (c *Container) initAuthHandler() (*authHTTP.AuthHandler, error) {
	authUC, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for auth handler: %w", err)
	}

	userUC, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for auth handler: %w", err)
	}

	table, err := c.PermissionTable()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission table for auth handler: %w", err)
	}

	return authHTTP.NewAuthHandler(authUC, userUC, table, c.Logger()), nil
}
