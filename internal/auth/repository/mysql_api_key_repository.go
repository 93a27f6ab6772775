package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/screening/internal/auth/domain"
	"github.com/allisson/screening/internal/database"
	apperrors "github.com/allisson/screening/internal/errors"
)

const mysqlAPIKeyColumns = `id, user_id, name, key_prefix, key_hash, salt, masked_key, last_used_at, revoked_at, created_at`

// MySQLAPIKeyRepository implements APIKey persistence for MySQL using BINARY(16) UUIDs.
type MySQLAPIKeyRepository struct {
	db *sql.DB
}

// Create inserts a new APIKey.
func (m *MySQLAPIKeyRepository) Create(ctx context.Context, apiKey *authDomain.APIKey) error {
	querier := database.GetTx(ctx, m.db)

	id, err := apiKey.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}
	userID, err := apiKey.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `INSERT INTO api_keys (` + mysqlAPIKeyColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		userID,
		apiKey.Name,
		apiKey.KeyPrefix,
		apiKey.KeyHash,
		apiKey.Salt,
		apiKey.MaskedKey,
		apiKey.LastUsedAt,
		apiKey.RevokedAt,
		apiKey.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create api key")
	}
	return nil
}

// ListActiveByPrefix returns the non-revoked keys sharing prefix.
func (m *MySQLAPIKeyRepository) ListActiveByPrefix(
	ctx context.Context,
	prefix string,
) ([]*authDomain.APIKey, error) {
	query := `SELECT ` + mysqlAPIKeyColumns + ` FROM api_keys
			  WHERE key_prefix = ? AND revoked_at IS NULL`
	return m.list(ctx, query, prefix)
}

// ListByUser returns every key of userID, newest first.
func (m *MySQLAPIKeyRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*authDomain.APIKey, error) {
	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT ` + mysqlAPIKeyColumns + ` FROM api_keys
			  WHERE user_id = ?
			  ORDER BY created_at DESC`
	return m.list(ctx, query, id)
}

func (m *MySQLAPIKeyRepository) list(ctx context.Context, query string, arg any) ([]*authDomain.APIKey, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list api keys")
	}
	defer func() {
		_ = rows.Close()
	}()

	apiKeys := make([]*authDomain.APIKey, 0)
	for rows.Next() {
		var apiKey authDomain.APIKey
		var idBytes, userIDBytes []byte

		err := rows.Scan(
			&idBytes,
			&userIDBytes,
			&apiKey.Name,
			&apiKey.KeyPrefix,
			&apiKey.KeyHash,
			&apiKey.Salt,
			&apiKey.MaskedKey,
			&apiKey.LastUsedAt,
			&apiKey.RevokedAt,
			&apiKey.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan api key row")
		}

		if err := apiKey.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal api key id")
		}
		if err := apiKey.UserID.UnmarshalBinary(userIDBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal user id")
		}

		apiKeys = append(apiKeys, &apiKey)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating api key rows")
	}

	return apiKeys, nil
}

// CountActiveByUser returns the number of non-revoked keys of userID.
func (m *MySQLAPIKeyRepository) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal user id")
	}

	var count int
	query := `SELECT COUNT(*) FROM api_keys WHERE user_id = ? AND revoked_at IS NULL`
	if err := querier.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count api keys")
	}
	return count, nil
}

// Revoke marks an active key of userID as revoked. Returns ErrAPIKeyNotFound if no row matched.
func (m *MySQLAPIKeyRepository) Revoke(
	ctx context.Context,
	keyID, userID uuid.UUID,
	revokedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := keyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}
	ownerID, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `UPDATE api_keys SET revoked_at = ?
			  WHERE id = ? AND user_id = ? AND revoked_at IS NULL`
	result, err := querier.ExecContext(ctx, query, revokedAt, id, ownerID)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke api key")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if rows == 0 {
		return authDomain.ErrAPIKeyNotFound
	}
	return nil
}

// TouchLastUsed records the last successful authentication with a key.
func (m *MySQLAPIKeyRepository) TouchLastUsed(ctx context.Context, keyID uuid.UUID, usedAt time.Time) error {
	querier := database.GetTx(ctx, m.db)

	id, err := keyID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal api key id")
	}

	query := `UPDATE api_keys SET last_used_at = ? WHERE id = ?`
	if _, err := querier.ExecContext(ctx, query, usedAt, id); err != nil {
		return apperrors.Wrap(err, "failed to update api key last used")
	}
	return nil
}

// NewMySQLAPIKeyRepository creates a new MySQL APIKey repository.
func NewMySQLAPIKeyRepository(db *sql.DB) *MySQLAPIKeyRepository {
	return &MySQLAPIKeyRepository{db: db}
}
