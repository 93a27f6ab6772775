package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/screening/internal/auth/domain"
	cryptoService "github.com/allisson/screening/internal/crypto/service"
	"github.com/allisson/screening/internal/database"
)

// apiKeyUseCase implements APIKeyUseCase.
type apiKeyUseCase struct {
	txManager    database.TxManager
	apiKeyRepo   APIKeyRepository
	apiKeyHasher cryptoService.APIKeyHasher
	maxPerUser   int
}

// NewAPIKeyUseCase creates a new APIKeyUseCase. A non-positive maxPerUser disables the cap.
func NewAPIKeyUseCase(
	txManager database.TxManager,
	apiKeyRepo APIKeyRepository,
	apiKeyHasher cryptoService.APIKeyHasher,
	maxPerUser int,
) APIKeyUseCase {
	return &apiKeyUseCase{
		txManager:    txManager,
		apiKeyRepo:   apiKeyRepo,
		apiKeyHasher: apiKeyHasher,
		maxPerUser:   maxPerUser,
	}
}

// Create implements APIKeyUseCase.
//
// The key is generated and hashed before the transaction is opened, so the slow KDF
// never holds a database connection. The count and the insert share the transaction.
func (a *apiKeyUseCase) Create(
	ctx context.Context,
	userID uuid.UUID,
	name string,
) (*authDomain.CreateAPIKeyOutput, error) {
	plainKey, err := a.apiKeyHasher.Generate()
	if err != nil {
		return nil, err
	}
	keyHash, salt, err := a.apiKeyHasher.Hash(plainKey)
	if err != nil {
		return nil, err
	}

	apiKey := &authDomain.APIKey{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		KeyPrefix: cryptoService.APIKeyPrefix(plainKey),
		KeyHash:   keyHash,
		Salt:      salt,
		MaskedKey: cryptoService.MaskAPIKey(plainKey),
		CreatedAt: time.Now().UTC(),
	}

	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if a.maxPerUser > 0 {
			count, err := a.apiKeyRepo.CountActiveByUser(ctx, userID)
			if err != nil {
				return err
			}
			if count >= a.maxPerUser {
				return authDomain.ErrAPIKeyLimitReached
			}
		}
		return a.apiKeyRepo.Create(ctx, apiKey)
	})
	if err != nil {
		return nil, err
	}

	return &authDomain.CreateAPIKeyOutput{APIKey: apiKey, PlainKey: plainKey}, nil
}

// List implements APIKeyUseCase.
func (a *apiKeyUseCase) List(ctx context.Context, userID uuid.UUID) ([]*authDomain.APIKey, error) {
	return a.apiKeyRepo.ListByUser(ctx, userID)
}

// Revoke implements APIKeyUseCase.
func (a *apiKeyUseCase) Revoke(ctx context.Context, userID, keyID uuid.UUID) error {
	return a.apiKeyRepo.Revoke(ctx, keyID, userID, time.Now().UTC())
}
