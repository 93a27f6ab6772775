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

const pgAPIKeyColumns = `id, user_id, name, key_prefix, key_hash, salt, masked_key, last_used_at, revoked_at, created_at`

// PostgreSQLAPIKeyRepository implements APIKey persistence for PostgreSQL.
type PostgreSQLAPIKeyRepository struct {
	db *sql.DB
}

// Create inserts a new APIKey.
func (p *PostgreSQLAPIKeyRepository) Create(ctx context.Context, apiKey *authDomain.APIKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO api_keys (` + pgAPIKeyColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		apiKey.ID,
		apiKey.UserID,
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
func (p *PostgreSQLAPIKeyRepository) ListActiveByPrefix(
	ctx context.Context,
	prefix string,
) ([]*authDomain.APIKey, error) {
	query := `SELECT ` + pgAPIKeyColumns + ` FROM api_keys
			  WHERE key_prefix = $1 AND revoked_at IS NULL`
	return p.list(ctx, query, prefix)
}

// ListByUser returns every key of userID, newest first.
func (p *PostgreSQLAPIKeyRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*authDomain.APIKey, error) {
	query := `SELECT ` + pgAPIKeyColumns + ` FROM api_keys
			  WHERE user_id = $1
			  ORDER BY created_at DESC`
	return p.list(ctx, query, userID)
}

func (p *PostgreSQLAPIKeyRepository) list(ctx context.Context, query string, arg any) ([]*authDomain.APIKey, error) {
	querier := database.GetTx(ctx, p.db)

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
		err := rows.Scan(
			&apiKey.ID,
			&apiKey.UserID,
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
		apiKeys = append(apiKeys, &apiKey)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating api key rows")
	}

	return apiKeys, nil
}

// CountActiveByUser returns the number of non-revoked keys of userID.
func (p *PostgreSQLAPIKeyRepository) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	querier := database.GetTx(ctx, p.db)

	var count int
	query := `SELECT COUNT(*) FROM api_keys WHERE user_id = $1 AND revoked_at IS NULL`
	if err := querier.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count api keys")
	}
	return count, nil
}

// Revoke marks an active key of userID as revoked. Returns ErrAPIKeyNotFound if no row matched.
func (p *PostgreSQLAPIKeyRepository) Revoke(
	ctx context.Context,
	keyID, userID uuid.UUID,
	revokedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE api_keys SET revoked_at = $1
			  WHERE id = $2 AND user_id = $3 AND revoked_at IS NULL`
	result, err := querier.ExecContext(ctx, query, revokedAt, keyID, userID)
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
func (p *PostgreSQLAPIKeyRepository) TouchLastUsed(ctx context.Context, keyID uuid.UUID, usedAt time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE api_keys SET last_used_at = $1 WHERE id = $2`
	if _, err := querier.ExecContext(ctx, query, usedAt, keyID); err != nil {
		return apperrors.Wrap(err, "failed to update api key last used")
	}
	return nil
}

// NewPostgreSQLAPIKeyRepository creates a new PostgreSQL APIKey repository.
func NewPostgreSQLAPIKeyRepository(db *sql.DB) *PostgreSQLAPIKeyRepository {
	return &PostgreSQLAPIKeyRepository{db: db}
}
