package service

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/screening/internal/crypto/domain"
)

type apiKeyHasher struct{}

// NewAPIKeyHasher creates an APIKeyHasher using PBKDF2-HMAC-SHA512.
func NewAPIKeyHasher() APIKeyHasher {
	return &apiKeyHasher{}
}

// Generate implements APIKeyHasher.
func (a *apiKeyHasher) Generate() (string, error) {
	raw := make([]byte, cryptoDomain.APIKeyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Join(cryptoDomain.ErrHash, err)
	}
	return hex.EncodeToString(raw), nil
}

// Hash implements APIKeyHasher.
func (a *apiKeyHasher) Hash(rawKey string) (string, string, error) {
	salt := make([]byte, cryptoDomain.APIKeySaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", "", errors.Join(cryptoDomain.ErrHash, err)
	}

	derived := deriveAPIKeyHash(rawKey, salt)
	return hex.EncodeToString(derived), hex.EncodeToString(salt), nil
}

// Verify implements APIKeyHasher.
func (a *apiKeyHasher) Verify(rawKey, hash, salt string) bool {
	saltBytes, err := hex.DecodeString(salt)
	if err != nil || len(saltBytes) == 0 {
		return false
	}
	expected, err := hex.DecodeString(hash)
	if err != nil || len(expected) != cryptoDomain.APIKeyHashBytes {
		return false
	}

	derived := deriveAPIKeyHash(rawKey, saltBytes)
	return subtle.ConstantTimeCompare(derived, expected) == 1
}

func deriveAPIKeyHash(rawKey string, salt []byte) []byte {
	return pbkdf2.Key(
		[]byte(rawKey),
		salt,
		cryptoDomain.APIKeyKDFIterations,
		cryptoDomain.APIKeyHashBytes,
		sha512.New,
	)
}

// MaskAPIKey hides all but the last four characters of a key. Keys shorter than
// four characters are replaced by a fixed mask.
func MaskAPIKey(rawKey string) string {
	n := utf8.RuneCountInString(rawKey)
	if n < cryptoDomain.APIKeyVisibleChars {
		return cryptoDomain.ShortKeyMask
	}
	runes := []rune(rawKey)
	hidden := n - cryptoDomain.APIKeyVisibleChars
	return strings.Repeat("*", hidden) + string(runes[hidden:])
}

// APIKeyPrefix returns the leading characters stored alongside the hash for lookup.
func APIKeyPrefix(rawKey string) string {
	if len(rawKey) <= cryptoDomain.APIKeyPrefixLength {
		return rawKey
	}
	return rawKey[:cryptoDomain.APIKeyPrefixLength]
}
