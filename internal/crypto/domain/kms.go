package domain

import "context"

// KMSKeeper is the subset of *secrets.Keeper used to wrap and unwrap boot secrets.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
