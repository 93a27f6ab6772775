// Package domain defines the cryptographic parameters and errors shared by the
// credential hasher and the field cipher.
//
// The parameters are part of the persisted formats: changing any of them makes
// existing password hashes, API key hashes or encrypted fields unverifiable.
package domain

// PasswordAlgorithm identifies the algorithm used for new password hashes.
type PasswordAlgorithm string

const (
	// Bcrypt produces "$2a$"-prefixed hashes. It is the default because existing
	// user records were created with bcrypt at cost 12.
	Bcrypt PasswordAlgorithm = "bcrypt"

	// Argon2id produces PHC-formatted "$argon2id$" hashes via go-pwdhash.
	Argon2id PasswordAlgorithm = "argon2id"
)

const (
	// DefaultBcryptCost is the bcrypt work factor used when none is configured.
	DefaultBcryptCost = 12

	// APIKeyBytes is the amount of randomness in a generated API key (256 bits).
	// Keys are hex encoded, so the string form is twice as long.
	APIKeyBytes = 32

	// APIKeySaltBytes is the size of the random per-key PBKDF2 salt.
	APIKeySaltBytes = 16

	// APIKeyKDFIterations is the PBKDF2-HMAC-SHA512 iteration count for API key hashes.
	APIKeyKDFIterations = 100_000

	// APIKeyHashBytes is the PBKDF2 output length for API key hashes.
	APIKeyHashBytes = 64

	// APIKeyPrefixLength is the number of leading key characters stored in clear
	// to locate a key record before the slow hash comparison.
	APIKeyPrefixLength = 12

	// APIKeyVisibleChars is the number of trailing characters a masked key reveals.
	APIKeyVisibleChars = 4

	// ShortKeyMask is returned when a key is too short to reveal anything.
	ShortKeyMask = "****"
)

const (
	// FieldKeyBytes is the derived AES-256 key size.
	FieldKeyBytes = 32

	// FieldKDFIterations is the PBKDF2-HMAC-SHA256 iteration count for the field key.
	FieldKDFIterations = 100_000

	// FieldIVBytes is the AES-CBC initialization vector size.
	FieldIVBytes = 16

	// FieldSeparator separates the hex IV from the hex ciphertext in the wire format.
	FieldSeparator = ":"
)
