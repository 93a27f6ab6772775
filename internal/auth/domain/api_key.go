package domain

import (
	"time"

	"github.com/google/uuid"
)

// APIKey is a long-lived credential for scripted access. Only the salted hash is stored;
// KeyPrefix locates the record and MaskedKey is shown in listings.
type APIKey struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	KeyPrefix  string
	KeyHash    string
	Salt       string
	MaskedKey  string
	LastUsedAt *time.Time
	RevokedAt  *time.Time
	CreatedAt  time.Time
}

// IsRevoked reports whether the key can no longer authenticate.
func (k *APIKey) IsRevoked() bool {
	return k.RevokedAt != nil
}

// CreateAPIKeyOutput contains the result of creating an API key.
// SECURITY: PlainKey is returned exactly once and never stored.
type CreateAPIKeyOutput struct {
	APIKey   *APIKey
	PlainKey string //nolint:gosec // shown once to the owner
}
