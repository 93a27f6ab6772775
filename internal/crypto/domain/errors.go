package domain

import (
	"github.com/allisson/screening/internal/errors"
)

// Cryptographic operation errors.
//
// Messages are deliberately generic: they never carry plaintext, ciphertext
// fragments or key material.
var (
	// ErrDecryption indicates an encrypted field could not be decrypted. Causes include
	// malformed hex, a wrong IV length, a truncated ciphertext and a wrong key (bad padding).
	//
	// HTTP Status: 422 Unprocessable Entity when the value came from the request.
	ErrDecryption = errors.Wrap(errors.ErrUnprocessable, "decryption failed")

	// ErrHash indicates an internal failure while hashing (random source or KDF).
	// It is always treated as an internal error.
	ErrHash = errors.New("hash failed")

	// ErrPasswordTooLong indicates a password exceeds the 72-byte bcrypt input limit.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrPasswordTooLong = errors.Wrap(errors.ErrInvalidInput, "password exceeds 72 bytes")

	// ErrUnsupportedAlgorithm indicates an unknown password hashing algorithm was configured.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported password algorithm")

	// ErrEmptySecret indicates the field cipher was constructed without a secret.
	ErrEmptySecret = errors.Wrap(errors.ErrInvalidInput, "field encryption secret is empty")
)
