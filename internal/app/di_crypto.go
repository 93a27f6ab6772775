package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/allisson/screening/internal/config"
	cryptoDomain "github.com/allisson/screening/internal/crypto/domain"
	cryptoHTTP "github.com/allisson/screening/internal/crypto/http"
	cryptoService "github.com/allisson/screening/internal/crypto/service"
)

// kmsUnwrapTimeout bounds the KMS round trips made while resolving boot secrets.
const kmsUnwrapTimeout = 30 * time.Second

// ephemeralSecretBytes is the randomness of a development secret generated at boot.
const ephemeralSecretBytes = 32

// BootSecrets holds the plaintext signing and encryption secrets after KMS unwrapping.
type BootSecrets struct {
	JWTAccessSecret       string
	JWTRefreshSecret      string
	FieldEncryptionSecret string
}

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// BootSecrets returns the resolved secrets. When KMS_KEY_URI is set the configured
// values are KMS ciphertexts and are unwrapped once here.
func (c *Container) BootSecrets() (*BootSecrets, error) {
	var err error
	c.bootSecretsInit.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), kmsUnwrapTimeout)
		defer cancel()
		c.bootSecrets, err = resolveBootSecrets(ctx, c.config, c.KMSService(), c.Logger())
		if err != nil {
			c.initErrors["bootSecrets"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["bootSecrets"]; exists {
		return nil, storedErr
	}
	return c.bootSecrets, nil
}

// PasswordHasher returns the password hasher for the configured algorithm.
func (c *Container) PasswordHasher() (cryptoService.PasswordHasher, error) {
	var err error
	c.passwordHasherInit.Do(func() {
		c.passwordHasher, err = cryptoService.NewPasswordHasher(
			cryptoDomain.PasswordAlgorithm(c.config.PasswordHashAlgorithm),
			c.config.PasswordHashCost,
		)
		if err != nil {
			c.initErrors["passwordHasher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["passwordHasher"]; exists {
		return nil, storedErr
	}
	return c.passwordHasher, nil
}

// APIKeyHasher returns the API key hasher.
func (c *Container) APIKeyHasher() cryptoService.APIKeyHasher {
	c.apiKeyHasherInit.Do(func() {
		c.apiKeyHasher = cryptoService.NewAPIKeyHasher()
	})
	return c.apiKeyHasher
}

// FieldCipher returns the cipher for sensitive fields.
func (c *Container) FieldCipher() (cryptoService.FieldCipher, error) {
	var err error
	c.fieldCipherInit.Do(func() {
		c.fieldCipher, err = c.initFieldCipher()
		if err != nil {
			c.initErrors["fieldCipher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["fieldCipher"]; exists {
		return nil, storedErr
	}
	return c.fieldCipher, nil
}

// FieldHandler returns the HTTP handler for field encryption.
func (c *Container) FieldHandler() (*cryptoHTTP.FieldHandler, error) {
	var err error
	c.fieldHandlerInit.Do(func() {
		var fieldCipher cryptoService.FieldCipher
		fieldCipher, err = c.FieldCipher()
		if err != nil {
			err = fmt.Errorf("failed to get field cipher for field handler: %w", err)
			c.initErrors["fieldHandler"] = err
			return
		}
		c.fieldHandler = cryptoHTTP.NewFieldHandler(fieldCipher, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["fieldHandler"]; exists {
		return nil, storedErr
	}
	return c.fieldHandler, nil
}

// initFieldCipher derives the field key from the resolved secret.
func (c *Container) initFieldCipher() (cryptoService.FieldCipher, error) {
	secrets, err := c.BootSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to get boot secrets for field cipher: %w", err)
	}

	fieldCipher, err := cryptoService.NewFieldCipher(
		secrets.FieldEncryptionSecret,
		c.config.FieldEncryptionSalt,
		cryptoService.WithStrictDecrypt(c.config.FieldEncryptionStrict),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create field cipher: %w", err)
	}
	return fieldCipher, nil
}

// resolveBootSecrets unwraps KMS-sealed secrets and, outside production, fills missing
// ones with random values so a developer can start the server without configuration.
func resolveBootSecrets(
	ctx context.Context,
	cfg *config.Config,
	kms cryptoService.KMSService,
	logger *slog.Logger,
) (*BootSecrets, error) {
	secrets := &BootSecrets{
		JWTAccessSecret:       cfg.JWTAccessSecret,
		JWTRefreshSecret:      cfg.JWTRefreshSecret,
		FieldEncryptionSecret: cfg.FieldEncryptionSecret,
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"JWT_ACCESS_SECRET", &secrets.JWTAccessSecret},
		{"JWT_REFRESH_SECRET", &secrets.JWTRefreshSecret},
		{"FIELD_ENCRYPTION_SECRET", &secrets.FieldEncryptionSecret},
	}

	if cfg.KMSKeyURI != "" {
		keeper, err := kms.OpenKeeper(ctx, cfg.KMSKeyURI)
		if err != nil {
			return nil, err
		}
		defer func() {
			if closeErr := keeper.Close(); closeErr != nil {
				logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
			}
		}()

		for _, f := range fields {
			if *f.value == "" {
				continue
			}
			plaintext, err := kms.UnwrapSecret(ctx, keeper, *f.value)
			if err != nil {
				return nil, fmt.Errorf("failed to unwrap %s: %w", f.name, err)
			}
			*f.value = plaintext
		}
		logger.Info("boot secrets unwrapped with KMS")
	}

	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		if cfg.IsProduction() {
			return nil, fmt.Errorf("%s is required in production", f.name)
		}

		buf := make([]byte, ephemeralSecretBytes)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate ephemeral %s: %w", f.name, err)
		}
		*f.value = hex.EncodeToString(buf)
		logger.Warn("using an ephemeral secret; tokens and encrypted fields will not survive a restart",
			slog.String("secret", f.name))
	}

	return secrets, nil
}
