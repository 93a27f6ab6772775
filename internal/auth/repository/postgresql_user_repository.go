// Package repository implements data persistence for users and API keys.
//
// Provides PostgreSQL and MySQL implementations with transaction support via database.GetTx().
// PostgreSQL uses native UUID types, MySQL uses BINARY(16) types.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	authDomain "github.com/allisson/screening/internal/auth/domain"
	"github.com/allisson/screening/internal/database"
	apperrors "github.com/allisson/screening/internal/errors"
)

// pgUniqueViolation is the SQLSTATE raised on a unique constraint violation.
const pgUniqueViolation = "23505"

// PostgreSQLUserRepository implements User persistence for PostgreSQL.
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// Create inserts a new User. Returns ErrUserAlreadyExists when the email is taken.
func (p *PostgreSQLUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO users (id, email, password_hash, role, client_id, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		nullUUID(user.ClientID),
		string(user.Status),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return authDomain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Get retrieves a User by ID. Returns ErrUserNotFound if the user doesn't exist.
func (p *PostgreSQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	query := `SELECT id, email, password_hash, role, client_id, status, created_at, updated_at,
					 failed_attempts, locked_until
			  FROM users WHERE id = $1`
	return p.getOne(ctx, query, userID)
}

// GetByEmail retrieves a User by normalized email. Returns ErrUserNotFound if the user doesn't exist.
func (p *PostgreSQLUserRepository) GetByEmail(ctx context.Context, email string) (*authDomain.User, error) {
	query := `SELECT id, email, password_hash, role, client_id, status, created_at, updated_at,
					 failed_attempts, locked_until
			  FROM users WHERE email = $1`
	return p.getOne(ctx, query, email)
}

func (p *PostgreSQLUserRepository) getOne(ctx context.Context, query string, arg any) (*authDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	var user authDomain.User
	var role, status string
	var lockedUntil sql.NullTime
	var clientID uuid.NullUUID

	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&role,
		&clientID,
		&status,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.FailedAttempts,
		&lockedUntil,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}

	user.Role = authDomain.Role(role)
	user.Status = authDomain.UserStatus(status)
	if lockedUntil.Valid {
		user.LockedUntil = &lockedUntil.Time
	}
	if clientID.Valid {
		user.ClientID = &clientID.UUID
	}
	return &user, nil
}

// UpdateStatus changes the status of a User. Returns ErrUserNotFound if no row matched.
func (p *PostgreSQLUserRepository) UpdateStatus(
	ctx context.Context,
	userID uuid.UUID,
	status authDomain.UserStatus,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE users SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := querier.ExecContext(ctx, query, string(status), updatedAt, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user status")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows")
	}
	if rows == 0 {
		return authDomain.ErrUserNotFound
	}
	return nil
}

// UpdateLockState stores the failed login counter and lockout deadline of a User.
// A nil lockedUntil clears the lockout.
func (p *PostgreSQLUserRepository) UpdateLockState(
	ctx context.Context,
	userID uuid.UUID,
	failedAttempts int,
	lockedUntil *time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE users SET failed_attempts = $1, locked_until = $2 WHERE id = $3`
	if _, err := querier.ExecContext(ctx, query, failedAttempts, lockedUntil, userID); err != nil {
		return apperrors.Wrap(err, "failed to update user lock state")
	}
	return nil
}

// NewPostgreSQLUserRepository creates a new PostgreSQL User repository.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{db: db}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func isPostgreSQLUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}
