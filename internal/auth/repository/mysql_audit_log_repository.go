package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	authDomain "github.com/allisson/screening/internal/auth/domain"
	"github.com/allisson/screening/internal/database"
	apperrors "github.com/allisson/screening/internal/errors"
)

// MySQLAuditLogRepository implements AuditLog persistence for MySQL using BINARY(16) UUIDs.
type MySQLAuditLogRepository struct {
	db *sql.DB
}

// Create inserts a new AuditLog. A nil UserID is stored as NULL.
func (m *MySQLAuditLogRepository) Create(ctx context.Context, auditLog *authDomain.AuditLog) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO audit_logs (id, request_id, user_id, permission, allowed, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	id, err := auditLog.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit log id")
	}

	userID, err := marshalOptionalUUID(auditLog.UserID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit log user_id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		auditLog.RequestID,
		userID,
		auditLog.Permission,
		auditLog.Allowed,
		auditLog.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit log")
	}
	return nil
}

// List retrieves audit logs newest first with pagination. createdAtFrom and createdAtTo are
// optional inclusive bounds. Returns an empty slice when nothing matches.
func (m *MySQLAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*authDomain.AuditLog, error) {
	querier := database.GetTx(ctx, m.db)

	var conditions []string
	var args []any

	if createdAtFrom != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *createdAtFrom)
	}
	if createdAtTo != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *createdAtTo)
	}

	query := `SELECT id, request_id, user_id, permission, allowed, created_at FROM audit_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	auditLogs := make([]*authDomain.AuditLog, 0)
	for rows.Next() {
		var auditLog authDomain.AuditLog
		var idBinary, userIDBinary []byte

		err := rows.Scan(
			&idBinary,
			&auditLog.RequestID,
			&userIDBinary,
			&auditLog.Permission,
			&auditLog.Allowed,
			&auditLog.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit log")
		}

		if err := auditLog.ID.UnmarshalBinary(idBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit log id")
		}
		if auditLog.UserID, err = unmarshalOptionalUUID(userIDBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit log user_id")
		}

		auditLogs = append(auditLogs, &auditLog)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit logs")
	}
	return auditLogs, nil
}

// NewMySQLAuditLogRepository creates a new MySQL AuditLog repository.
func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}
