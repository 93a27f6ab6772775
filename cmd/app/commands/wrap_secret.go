package commands

import (
	"context"
	"fmt"
	"log/slog"

	cryptoService "github.com/allisson/screening/internal/crypto/service"
)

// RunWrapSecret seals a boot secret (JWT_ACCESS_SECRET, JWT_REFRESH_SECRET or
// FIELD_ENCRYPTION_SECRET) with the KMS key so it can be stored in the environment
// as base64 ciphertext. The server unwraps it at startup when KMS_KEY_URI is set.
//
// For local development use kmsKeyURI="base64key://<32-byte-base64-key>"; never in production.
func RunWrapSecret(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	kmsKeyURI, secret string,
	tuple IOTuple,
) error {
	if kmsKeyURI == "" {
		return fmt.Errorf("--kms-key-uri is required (or set KMS_KEY_URI)")
	}

	secret, err := valueOrStdin(secret, "", tuple)
	if err != nil {
		return err
	}

	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	wrapped, err := kmsService.WrapSecret(ctx, keeper, secret)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(tuple.Writer, wrapped)
	return nil
}
