// Package service implements credential hashing, API key handling, reversible
// field encryption and KMS access for boot secrets.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/screening/internal/crypto/domain"
)

// PasswordHasher produces and checks one-way password hashes.
type PasswordHasher interface {
	// Hash returns a salted hash of the password using the configured algorithm.
	Hash(plain string) (string, error)

	// Verify reports whether plain matches hash. The algorithm is detected from the
	// hash prefix, so records created under a previous algorithm keep verifying.
	// Malformed hashes and mismatches both return false.
	Verify(plain, hash string) bool
}

// APIKeyHasher generates API keys and stores them as salted PBKDF2 hashes.
type APIKeyHasher interface {
	// Generate returns a new random key as lowercase hex.
	Generate() (string, error)

	// Hash derives a hash of rawKey under a fresh random salt. Both are hex encoded.
	Hash(rawKey string) (hash string, salt string, err error)

	// Verify recomputes the hash under salt and compares it in constant time.
	Verify(rawKey, hash, salt string) bool
}

// FieldCipher reversibly encrypts sensitive text fields for storage.
type FieldCipher interface {
	// Encrypt returns "ivHex:cipherHex" under a fresh random IV.
	Encrypt(plaintext string) (string, error)

	// Decrypt reverses Encrypt. Values without the separator are legacy plaintext and
	// are returned unchanged unless the cipher is strict.
	Decrypt(value string) (string, error)

	// IsEncrypted reports whether value is well-formed ciphertext.
	IsEncrypted(value string) bool
}

// KMSService opens KMS keepers and unwraps secrets sealed with them.
type KMSService interface {
	// OpenKeeper opens a secrets.Keeper for the configured KMS provider.
	// Returns an error if the KMS provider URI is invalid or connection fails.
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)

	// WrapSecret encrypts plaintext with keeper and returns standard base64.
	WrapSecret(ctx context.Context, keeper cryptoDomain.KMSKeeper, plaintext string) (string, error)

	// UnwrapSecret decodes base64 ciphertext produced by WrapSecret and decrypts it.
	UnwrapSecret(ctx context.Context, keeper cryptoDomain.KMSKeeper, wrapped string) (string, error)
}
