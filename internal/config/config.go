// Package config provides application configuration through environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// EnvProduction is the APP_ENV value that turns missing secrets into a startup failure.
const EnvProduction = "production"

// minSecretLength is the minimum byte length accepted for signing and encryption secrets in production.
const minSecretLength = 32

// Config holds all application configuration.
type Config struct {
	// AppEnv is the deployment environment (e.g., "development", "production").
	AppEnv string

	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int

	// DBDriver is the database driver to use ("mysql" or "postgres").
	DBDriver string
	// DBConnectionString is the connection string for the database.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// JWTAccessSecret signs access tokens (HMAC-SHA256).
	JWTAccessSecret string
	// JWTRefreshSecret signs refresh tokens. Must differ from JWTAccessSecret.
	JWTRefreshSecret string
	// JWTIssuer is embedded in and required from every token.
	JWTIssuer string
	// JWTAudience is embedded in and required from every access token.
	JWTAudience string
	// JWTAccessTTL is the lifetime of access tokens.
	JWTAccessTTL time.Duration
	// JWTRefreshTTL is the lifetime of refresh tokens.
	JWTRefreshTTL time.Duration

	// FieldEncryptionSecret is the passphrase the field cipher key is derived from.
	FieldEncryptionSecret string
	// FieldEncryptionSalt is the fixed KDF salt for the field cipher key.
	FieldEncryptionSalt string
	// FieldEncryptionStrict rejects values without the iv:cipher delimiter instead of passing them through.
	FieldEncryptionStrict bool

	// PasswordHashAlgorithm selects the algorithm for new password hashes ("bcrypt" or "argon2id").
	PasswordHashAlgorithm string
	// PasswordHashCost is the bcrypt cost factor.
	PasswordHashCost int

	// KMSKeyURI, when set, marks the secrets above as base64 KMS ciphertexts to be unwrapped at boot.
	KMSKeyURI string

	// RBACPolicyFile optionally overrides the embedded role permission table.
	RBACPolicyFile string

	// UserLookupCacheTTL is how long a live user lookup result may be reused.
	UserLookupCacheTTL time.Duration
	// UserLookupTimeout bounds each live user lookup; a timeout rejects the request.
	UserLookupTimeout time.Duration

	// LockoutMaxAttempts is the number of consecutive failed logins before an account is locked.
	LockoutMaxAttempts int
	// LockoutDuration is how long a locked account stays locked.
	LockoutDuration time.Duration

	// APIKeyMaxPerUser caps the number of active API keys a user may hold.
	APIKeyMaxPerUser int

	// RateLimitEnabled indicates whether per-user rate limiting for authenticated endpoints is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second for authenticated endpoints.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for authenticated endpoints rate limiting.
	RateLimitBurst int

	// RateLimitLoginEnabled indicates whether per-IP rate limiting for login and refresh is enabled.
	RateLimitLoginEnabled bool
	// RateLimitLoginRequestsPerSec is the number of requests allowed per second for login and refresh.
	RateLimitLoginRequestsPerSec float64
	// RateLimitLoginBurst is the burst size for login and refresh rate limiting.
	RateLimitLoginBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	loadDotEnv()

	return &Config{
		AppEnv: env.GetString("APP_ENV", "development"),

		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Database configuration
		DBDriver: env.GetString("DB_DRIVER", "mysql"),
		DBConnectionString: env.GetString(
			"DB_CONNECTION_STRING",
			"user:password@tcp(localhost:3306)/screening?parseTime=true",
		),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Tokens
		JWTAccessSecret:  env.GetString("JWT_ACCESS_SECRET", ""),
		JWTRefreshSecret: env.GetString("JWT_REFRESH_SECRET", ""),
		JWTIssuer:        env.GetString("JWT_ISSUER", "screening-api"),
		JWTAudience:      env.GetString("JWT_AUDIENCE", "screening-portals"),
		JWTAccessTTL:     env.GetDuration("JWT_ACCESS_TTL_MINUTES", 15, time.Minute),
		JWTRefreshTTL:    env.GetDuration("JWT_REFRESH_TTL_HOURS", 168, time.Hour),

		// Field encryption
		FieldEncryptionSecret: env.GetString("FIELD_ENCRYPTION_SECRET", ""),
		FieldEncryptionSalt:   env.GetString("FIELD_ENCRYPTION_SALT", "screening-field-encryption"),
		FieldEncryptionStrict: env.GetBool("FIELD_ENCRYPTION_STRICT", false),

		// Password hashing
		PasswordHashAlgorithm: env.GetString("PASSWORD_HASH_ALGORITHM", "bcrypt"),
		PasswordHashCost:      env.GetInt("PASSWORD_HASH_COST", 12),

		// KMS
		KMSKeyURI: env.GetString("KMS_KEY_URI", ""),

		// RBAC
		RBACPolicyFile: env.GetString("RBAC_POLICY_FILE", ""),

		// Live user lookup
		UserLookupCacheTTL: env.GetDuration("USER_LOOKUP_CACHE_TTL_SECONDS", 10, time.Second),
		UserLookupTimeout:  env.GetDuration("USER_LOOKUP_TIMEOUT_SECONDS", 2, time.Second),

		// Account lockout
		LockoutMaxAttempts: env.GetInt("LOCKOUT_MAX_ATTEMPTS", 10),
		LockoutDuration:    env.GetDuration("LOCKOUT_DURATION_MINUTES", 30, time.Minute),

		// API keys
		APIKeyMaxPerUser: env.GetInt("API_KEY_MAX_PER_USER", 10),

		// Rate Limiting (authenticated endpoints)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// Rate Limiting for login/refresh (IP-based, unauthenticated)
		RateLimitLoginEnabled:        env.GetBool("RATE_LIMIT_LOGIN_ENABLED", true),
		RateLimitLoginRequestsPerSec: env.GetFloat64("RATE_LIMIT_LOGIN_REQUESTS_PER_SEC", 2.0),
		RateLimitLoginBurst:          env.GetInt("RATE_LIMIT_LOGIN_BURST", 5),

		// CORS (the portals are browser SPAs)
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "screening"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// IsProduction reports whether the application runs with production safeguards.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, EnvProduction)
}

// Validate checks settings that must hold before the process starts serving.
// Missing or short secrets are fatal in production; elsewhere only structural
// errors (bad TTLs, unknown algorithm) are reported.
func (c *Config) Validate() error {
	if c.JWTAccessTTL <= 0 || c.JWTRefreshTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if c.JWTRefreshTTL <= c.JWTAccessTTL {
		return fmt.Errorf("JWT_REFRESH_TTL_HOURS must be longer than JWT_ACCESS_TTL_MINUTES")
	}
	if c.UserLookupTimeout <= 0 {
		return fmt.Errorf("USER_LOOKUP_TIMEOUT_SECONDS must be positive")
	}
	if c.UserLookupCacheTTL < 0 {
		return fmt.Errorf("USER_LOOKUP_CACHE_TTL_SECONDS must not be negative")
	}
	if c.UserLookupCacheTTL >= c.JWTAccessTTL {
		return fmt.Errorf("USER_LOOKUP_CACHE_TTL_SECONDS must be shorter than the access token TTL")
	}

	if c.LockoutMaxAttempts < 1 {
		return fmt.Errorf("LOCKOUT_MAX_ATTEMPTS must be at least 1")
	}
	if c.LockoutDuration <= 0 {
		return fmt.Errorf("LOCKOUT_DURATION_MINUTES must be positive")
	}

	switch c.PasswordHashAlgorithm {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("unsupported PASSWORD_HASH_ALGORITHM: %s", c.PasswordHashAlgorithm)
	}

	if !c.IsProduction() {
		return nil
	}

	// KMS ciphertexts are longer than the plaintext, so the length check still holds for them.
	secrets := []struct {
		name  string
		value string
	}{
		{"JWT_ACCESS_SECRET", c.JWTAccessSecret},
		{"JWT_REFRESH_SECRET", c.JWTRefreshSecret},
		{"FIELD_ENCRYPTION_SECRET", c.FieldEncryptionSecret},
	}
	for _, s := range secrets {
		if s.value == "" {
			return fmt.Errorf("%s is required in production", s.name)
		}
		if len(s.value) < minSecretLength {
			return fmt.Errorf("%s must be at least %d bytes", s.name, minSecretLength)
		}
	}
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		return fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	return nil
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	if c.LogLevel == "debug" {
		return "debug"
	}
	return "release"
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
