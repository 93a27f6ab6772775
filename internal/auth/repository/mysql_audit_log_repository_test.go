package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLAuditLogRepository_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLAuditLogRepository(db)
		userID := uuid.Must(uuid.NewV7())
		auditLog := newTestAuditLog(&userID, false)

		mock.ExpectExec(`INSERT INTO audit_logs`).
			WithArgs(
				mustBinary(t, auditLog.ID),
				auditLog.RequestID,
				mustBinary(t, userID),
				"users:create",
				false,
				auditLog.CreatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), auditLog))
	})

	t.Run("Success_UnknownUser", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLAuditLogRepository(db)

		mock.ExpectExec(`INSERT INTO audit_logs`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), nil, sqlmock.AnyArg(), true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), newTestAuditLog(nil, true)))
	})
}

func TestMySQLAuditLogRepository_List(t *testing.T) {
	t.Run("Success_FromFilter", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLAuditLogRepository(db)
		userID := uuid.Must(uuid.NewV7())
		entry := newTestAuditLog(&userID, true)
		from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`FROM audit_logs WHERE created_at >= \? ORDER BY created_at DESC, id DESC LIMIT \? OFFSET \?`).
			WithArgs(from, 50, 0).
			WillReturnRows(sqlmock.NewRows(auditLogColumns).AddRow(
				mustBinary(t, entry.ID), entry.RequestID, mustBinary(t, userID), entry.Permission, true,
				entry.CreatedAt,
			))

		logs, err := repo.List(context.Background(), 0, 50, &from, nil)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, entry.ID, logs[0].ID)
		assert.Equal(t, entry.RequestID, logs[0].RequestID)
		require.NotNil(t, logs[0].UserID)
		assert.Equal(t, userID, *logs[0].UserID)
	})

	t.Run("Error_CorruptID", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLAuditLogRepository(db)

		mock.ExpectQuery(`FROM audit_logs`).
			WillReturnRows(sqlmock.NewRows(auditLogColumns).AddRow(
				[]byte{1, 2}, "req", nil, "users:read", true, time.Now(),
			))

		_, err := repo.List(context.Background(), 0, 50, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal audit log id")
	})
}
