package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.ServerHost)
				assert.Equal(t, 8080, cfg.ServerPort)
				assert.Equal(t, "mysql", cfg.DBDriver)
				assert.Equal(t, 25, cfg.DBMaxOpenConnections)
				assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
				assert.Equal(t, 15*time.Minute, cfg.JWTAccessTTL)
				assert.Equal(t, 7*24*time.Hour, cfg.JWTRefreshTTL)
				assert.Equal(t, "bcrypt", cfg.PasswordHashAlgorithm)
				assert.Equal(t, 12, cfg.PasswordHashCost)
				assert.Equal(t, 10*time.Second, cfg.UserLookupCacheTTL)
				assert.Equal(t, 2*time.Second, cfg.UserLookupTimeout)
				assert.Equal(t, 10, cfg.LockoutMaxAttempts)
				assert.Equal(t, 30*time.Minute, cfg.LockoutDuration)
				assert.False(t, cfg.FieldEncryptionStrict)
				assert.False(t, cfg.IsProduction())
			},
		},
		{
			name: "load custom token configuration",
			envVars: map[string]string{
				"JWT_ACCESS_SECRET":      "access",
				"JWT_REFRESH_SECRET":     "refresh",
				"JWT_ISSUER":             "issuer",
				"JWT_AUDIENCE":           "audience",
				"JWT_ACCESS_TTL_MINUTES": "5",
				"JWT_REFRESH_TTL_HOURS":  "24",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "access", cfg.JWTAccessSecret)
				assert.Equal(t, "refresh", cfg.JWTRefreshSecret)
				assert.Equal(t, "issuer", cfg.JWTIssuer)
				assert.Equal(t, "audience", cfg.JWTAudience)
				assert.Equal(t, 5*time.Minute, cfg.JWTAccessTTL)
				assert.Equal(t, 24*time.Hour, cfg.JWTRefreshTTL)
			},
		},
		{
			name: "load custom lockout configuration",
			envVars: map[string]string{
				"LOCKOUT_MAX_ATTEMPTS":     "3",
				"LOCKOUT_DURATION_MINUTES": "5",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3, cfg.LockoutMaxAttempts)
				assert.Equal(t, 5*time.Minute, cfg.LockoutDuration)
			},
		},
		{
			name: "load production environment",
			envVars: map[string]string{
				"APP_ENV":                 "Production",
				"FIELD_ENCRYPTION_STRICT": "true",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.IsProduction())
				assert.True(t, cfg.FieldEncryptionStrict)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			tt.validate(t, Load())
		})
	}
}

func validConfig() *Config {
	return &Config{
		AppEnv:                EnvProduction,
		JWTAccessSecret:       strings.Repeat("a", 32),
		JWTRefreshSecret:      strings.Repeat("b", 32),
		FieldEncryptionSecret: strings.Repeat("c", 32),
		JWTAccessTTL:          15 * time.Minute,
		JWTRefreshTTL:         7 * 24 * time.Hour,
		UserLookupCacheTTL:    10 * time.Second,
		UserLookupTimeout:     2 * time.Second,
		LockoutMaxAttempts:    10,
		LockoutDuration:       30 * time.Minute,
		PasswordHashAlgorithm: "bcrypt",
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("Success_Production", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	t.Run("Success_CacheDisabled", func(t *testing.T) {
		cfg := validConfig()
		cfg.UserLookupCacheTTL = 0
		require.NoError(t, cfg.Validate())
	})

	t.Run("Success_DevelopmentWithoutSecrets", func(t *testing.T) {
		cfg := validConfig()
		cfg.AppEnv = "development"
		cfg.JWTAccessSecret = ""
		cfg.FieldEncryptionSecret = ""
		require.NoError(t, cfg.Validate())
	})

	tests := []struct {
		name   string
		mutate func(cfg *Config)
		errMsg string
	}{
		{"Error_MissingAccessSecret", func(c *Config) { c.JWTAccessSecret = "" }, "JWT_ACCESS_SECRET is required"},
		{"Error_MissingRefreshSecret", func(c *Config) { c.JWTRefreshSecret = "" }, "JWT_REFRESH_SECRET is required"},
		{
			"Error_MissingFieldSecret",
			func(c *Config) { c.FieldEncryptionSecret = "" },
			"FIELD_ENCRYPTION_SECRET is required",
		},
		{"Error_ShortSecret", func(c *Config) { c.JWTAccessSecret = "short" }, "at least 32 bytes"},
		{"Error_SameSecrets", func(c *Config) { c.JWTRefreshSecret = c.JWTAccessSecret }, "must differ"},
		{"Error_RefreshShorterThanAccess", func(c *Config) { c.JWTRefreshTTL = time.Minute }, "must be longer"},
		{
			"Error_CacheTTLTooLong",
			func(c *Config) { c.UserLookupCacheTTL = 20 * time.Minute },
			"USER_LOOKUP_CACHE_TTL_SECONDS",
		},
		{
			"Error_ZeroLookupTimeout",
			func(c *Config) { c.UserLookupTimeout = 0 },
			"USER_LOOKUP_TIMEOUT_SECONDS must be positive",
		},
		{
			"Error_NegativeLookupTimeout",
			func(c *Config) { c.UserLookupTimeout = -time.Second },
			"USER_LOOKUP_TIMEOUT_SECONDS must be positive",
		},
		{
			"Error_NegativeCacheTTL",
			func(c *Config) { c.UserLookupCacheTTL = -time.Second },
			"USER_LOOKUP_CACHE_TTL_SECONDS must not be negative",
		},
		{"Error_ZeroLockoutAttempts", func(c *Config) { c.LockoutMaxAttempts = 0 }, "LOCKOUT_MAX_ATTEMPTS"},
		{"Error_ZeroLockoutDuration", func(c *Config) { c.LockoutDuration = 0 }, "LOCKOUT_DURATION_MINUTES"},
		{"Error_UnknownAlgorithm", func(c *Config) { c.PasswordHashAlgorithm = "md5" }, "unsupported"},
		{"Error_ZeroTTL", func(c *Config) { c.JWTAccessTTL = 0 }, "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestGetGinMode(t *testing.T) {
	assert.Equal(t, "debug", (&Config{LogLevel: "debug"}).GetGinMode())
	assert.Equal(t, "release", (&Config{LogLevel: "info"}).GetGinMode())
	assert.Equal(t, "release", (&Config{LogLevel: "bogus"}).GetGinMode())
}
