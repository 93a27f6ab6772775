package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records one access decision: a permission check on a protected route or a
// password login. UserID is nil when the principal could not be resolved (an unknown
// login email).
type AuditLog struct {
	ID         uuid.UUID
	RequestID  string
	UserID     *uuid.UUID
	Permission string // "resource:action", or PermissionLogin
	Allowed    bool
	CreatedAt  time.Time
}
