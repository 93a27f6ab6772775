package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	authDomain "github.com/allisson/screening/internal/auth/domain"
	"github.com/allisson/screening/internal/database"
	apperrors "github.com/allisson/screening/internal/errors"
)

// mysqlDuplicateEntry is the MySQL error number for a duplicate unique key.
const mysqlDuplicateEntry = 1062

// MySQLUserRepository implements User persistence for MySQL using BINARY(16) UUIDs.
type MySQLUserRepository struct {
	db *sql.DB
}

// Create inserts a new User. Returns ErrUserAlreadyExists when the email is taken.
func (m *MySQLUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO users (id, email, password_hash, role, client_id, status, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	clientID, err := marshalOptionalUUID(user.ClientID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal client id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		clientID,
		string(user.Status),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isMySQLDuplicateEntry(err) {
			return authDomain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Get retrieves a User by ID. Returns ErrUserNotFound if the user doesn't exist.
func (m *MySQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT id, email, password_hash, role, client_id, status, created_at, updated_at,
					 failed_attempts, locked_until
			  FROM users WHERE id = ?`
	return m.getOne(ctx, query, id)
}

// GetByEmail retrieves a User by normalized email. Returns ErrUserNotFound if the user doesn't exist.
func (m *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*authDomain.User, error) {
	query := `SELECT id, email, password_hash, role, client_id, status, created_at, updated_at,
					 failed_attempts, locked_until
			  FROM users WHERE email = ?`
	return m.getOne(ctx, query, email)
}

func (m *MySQLUserRepository) getOne(ctx context.Context, query string, arg any) (*authDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	var user authDomain.User
	var idBytes, clientIDBytes []byte
	var role, status string
	var lockedUntil sql.NullTime

	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&idBytes,
		&user.Email,
		&user.PasswordHash,
		&role,
		&clientIDBytes,
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

	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}
	if user.ClientID, err = unmarshalOptionalUUID(clientIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal client id")
	}

	user.Role = authDomain.Role(role)
	user.Status = authDomain.UserStatus(status)
	if lockedUntil.Valid {
		user.LockedUntil = &lockedUntil.Time
	}
	return &user, nil
}

// UpdateStatus changes the status of a User. Returns ErrUserNotFound if the user doesn't exist.
func (m *MySQLUserRepository) UpdateStatus(
	ctx context.Context,
	userID uuid.UUID,
	status authDomain.UserStatus,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	// MySQL reports matched-but-unchanged rows as unaffected, so existence is checked explicitly.
	var exists int
	err = querier.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authDomain.ErrUserNotFound
		}
		return apperrors.Wrap(err, "failed to get user")
	}

	query := `UPDATE users SET status = ?, updated_at = ? WHERE id = ?`
	if _, err := querier.ExecContext(ctx, query, string(status), updatedAt, id); err != nil {
		return apperrors.Wrap(err, "failed to update user status")
	}
	return nil
}

// UpdateLockState stores the failed login counter and lockout deadline of a User.
// A nil lockedUntil clears the lockout.
func (m *MySQLUserRepository) UpdateLockState(
	ctx context.Context,
	userID uuid.UUID,
	failedAttempts int,
	lockedUntil *time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `UPDATE users SET failed_attempts = ?, locked_until = ? WHERE id = ?`
	if _, err := querier.ExecContext(ctx, query, failedAttempts, lockedUntil, id); err != nil {
		return apperrors.Wrap(err, "failed to update user lock state")
	}
	return nil
}

// NewMySQLUserRepository creates a new MySQL User repository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

func marshalOptionalUUID(id *uuid.UUID) ([]byte, error) {
	if id == nil {
		return nil, nil
	}
	return id.MarshalBinary()
}

func unmarshalOptionalUUID(b []byte) (*uuid.UUID, error) {
	if b == nil {
		return nil, nil
	}
	var id uuid.UUID
	if err := id.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return &id, nil
}

func isMySQLDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
