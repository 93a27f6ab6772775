// Package domain defines the authentication and authorization models of the screening platform.
//
// Users authenticate with a password (or an API key) and carry exactly one Role. Authorization
// is role based: a PermissionTable maps each role to the resources and actions it may use.
package domain

// Role is the closed set of roles a user can hold.
type Role string

const (
	// RoleOwner is the super-admin role. It passes every permission check.
	RoleOwner                   Role = "owner"
	RoleAdmin                   Role = "admin"
	RoleOperationsManager       Role = "operations_manager"
	RoleProcessor               Role = "processor"
	RoleQASpecialist            Role = "qa_specialist"
	RoleClientSuccessManager    Role = "client_success_manager"
	RoleCredentialingSpecialist Role = "credentialing_specialist"
	RoleComplianceOfficer       Role = "compliance_officer"
	RoleClientAdmin             Role = "client_admin"
	RoleClientUser              Role = "client_user"
	RoleCandidate               Role = "candidate"
)

// AllRoles lists every role. A permission table must cover each of them.
var AllRoles = []Role{
	RoleOwner,
	RoleAdmin,
	RoleOperationsManager,
	RoleProcessor,
	RoleQASpecialist,
	RoleClientSuccessManager,
	RoleCredentialingSpecialist,
	RoleComplianceOfficer,
	RoleClientAdmin,
	RoleClientUser,
	RoleCandidate,
}

// IsValid reports whether r is one of AllRoles.
func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsClientRole reports whether r belongs to a client organization rather than to staff.
func (r Role) IsClientRole() bool {
	return r == RoleClientAdmin || r == RoleClientUser
}

// Action is an operation on a resource.
type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionExport  Action = "export"
	ActionAdmin   Action = "admin"

	// ActionManage implies every other action on the same resource.
	ActionManage Action = "manage"
)

var knownActions = map[Action]struct{}{
	ActionCreate:  {},
	ActionRead:    {},
	ActionUpdate:  {},
	ActionDelete:  {},
	ActionApprove: {},
	ActionExport:  {},
	ActionAdmin:   {},
	ActionManage:  {},
}

// ResourceAll is the wildcard resource; a grant on it applies to every resource.
const ResourceAll = "all"

// Resources guarded by this service's own routes.
const (
	ResourceUsers           = "users"
	ResourceAPIKeys         = "api_keys"
	ResourceSensitiveFields = "sensitive_fields"
	ResourceAuditLogs       = "audit_logs"
)

// PermissionLogin is the audit permission recorded for password logins.
const PermissionLogin = "auth:login"

// UserStatus is the lifecycle state of a user account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusPending   UserStatus = "pending"
)

// IsValid reports whether s is a known status.
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended, UserStatusPending:
		return true
	}
	return false
}

// TokenType distinguishes access from refresh tokens so one can never stand in for the other.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)
