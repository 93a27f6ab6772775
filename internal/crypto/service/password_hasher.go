package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/allisson/go-pwdhash"
	"golang.org/x/crypto/bcrypt"

	cryptoDomain "github.com/allisson/screening/internal/crypto/domain"
)

const argon2idPrefix = "$argon2id$"

// passwordHasher hashes with the configured algorithm and verifies any supported one.
type passwordHasher struct {
	algorithm cryptoDomain.PasswordAlgorithm
	cost      int
	argon     *pwdhash.PasswordHasher
}

// NewPasswordHasher creates a PasswordHasher. A zero cost selects DefaultBcryptCost.
func NewPasswordHasher(algorithm cryptoDomain.PasswordAlgorithm, cost int) (PasswordHasher, error) {
	switch algorithm {
	case cryptoDomain.Bcrypt, cryptoDomain.Argon2id:
	default:
		return nil, fmt.Errorf("%w: %q", cryptoDomain.ErrUnsupportedAlgorithm, algorithm)
	}

	if cost == 0 {
		cost = cryptoDomain.DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	argon, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, fmt.Errorf("failed to create argon2id hasher: %w", err)
	}

	return &passwordHasher{algorithm: algorithm, cost: cost, argon: argon}, nil
}

// Hash implements PasswordHasher.
func (p *passwordHasher) Hash(plain string) (string, error) {
	if p.algorithm == cryptoDomain.Argon2id {
		hash, err := p.argon.Hash([]byte(plain))
		if err != nil {
			return "", errors.Join(cryptoDomain.ErrHash, err)
		}
		return hash, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), p.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", cryptoDomain.ErrPasswordTooLong
		}
		return "", errors.Join(cryptoDomain.ErrHash, err)
	}
	return string(hash), nil
}

// Verify implements PasswordHasher.
func (p *passwordHasher) Verify(plain, hash string) bool {
	switch {
	case isBcryptHash(hash):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
	case strings.HasPrefix(hash, argon2idPrefix):
		ok, err := p.argon.Verify([]byte(plain), hash)
		return err == nil && ok
	default:
		return false
	}
}

func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}
