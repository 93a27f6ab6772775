package domain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/screening/internal/errors"
)

func loadDefaultTable(t *testing.T) *PermissionTable {
	t.Helper()
	table, err := DefaultPermissionTable()
	require.NoError(t, err)
	return table
}

func TestDefaultPermissionTable_CoversEveryRole(t *testing.T) {
	table := loadDefaultTable(t)
	for _, role := range AllRoles {
		_, ok := table.grants[role]
		assert.True(t, ok, "role %s has no entry", role)
	}
}

func TestPermissionTable_HasPermission(t *testing.T) {
	table := loadDefaultTable(t)

	tests := []struct {
		name     string
		role     Role
		resource string
		action   Action
		expected bool
	}{
		{"Owner_AnyResource", RoleOwner, "anything", "anything", true},
		{"Owner_ClientAdmin", RoleOwner, "client", ActionAdmin, true},
		{"Processor_ReadOrders", RoleProcessor, "orders", ActionRead, true},
		{"Processor_UpdateOrders", RoleProcessor, "orders", ActionUpdate, true},
		{"Processor_ReadClients", RoleProcessor, "clients", ActionRead, true},
		{"Processor_DeleteClients", RoleProcessor, "clients", ActionDelete, false},
		{"Processor_ClientAdmin", RoleProcessor, "client", ActionAdmin, false},
		{"Processor_DeleteOrders", RoleProcessor, "orders", ActionDelete, false},
		{"Admin_ManageImpliesDelete", RoleAdmin, "users", ActionDelete, true},
		{"Admin_ManageImpliesApprove", RoleAdmin, "orders", ActionApprove, true},
		{"Admin_NoGrant", RoleAdmin, "compliance", ActionRead, false},
		{"ClientAdmin_ClientAdmin", RoleClientAdmin, "client", ActionAdmin, true},
		{"ClientUser_ClientAdmin", RoleClientUser, "client", ActionAdmin, false},
		{"Candidate_ReadUsers", RoleCandidate, "users", ActionRead, false},
		{"UnknownRole", Role("intern"), "orders", ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, table.HasPermission(tt.role, tt.resource, tt.action))
		})
	}
}

func TestPermissionTable_WildcardResource(t *testing.T) {
	policy := `{
		"owner": [], "admin": [{"resource": "all", "actions": ["read"]}],
		"operations_manager": [{"resource": "all", "actions": ["manage"]}],
		"processor": [], "qa_specialist": [], "client_success_manager": [],
		"credentialing_specialist": [], "compliance_officer": [], "client_admin": [],
		"client_user": [], "candidate": []
	}`
	table, err := ParsePermissionTable(strings.NewReader(policy))
	require.NoError(t, err)

	assert.True(t, table.HasPermission(RoleAdmin, "orders", ActionRead))
	assert.False(t, table.HasPermission(RoleAdmin, "orders", ActionDelete))
	assert.True(t, table.HasPermission(RoleOperationsManager, "invoices", ActionDelete))
	assert.False(t, table.HasPermission(RoleProcessor, "orders", ActionRead))
}

func TestParsePermissionTable_Errors(t *testing.T) {
	tests := []struct {
		name   string
		policy string
		errMsg string
	}{
		{"InvalidJSON", `{`, "invalid permission table"},
		{"MissingRole", `{"owner": []}`, `role "admin" has no entry`},
		{
			"UnknownRole",
			completePolicy(`"intern": [{"resource": "orders", "actions": ["read"]}]`),
			"unknown role",
		},
		{
			"UnknownAction",
			completePolicy(`"candidate": [{"resource": "orders", "actions": ["fly"]}]`),
			`unknown action "fly"`,
		},
		{
			"EmptyResource",
			completePolicy(`"candidate": [{"resource": "", "actions": ["read"]}]`),
			"without resource",
		},
		{
			"NoActions",
			completePolicy(`"candidate": [{"resource": "orders", "actions": []}]`),
			"grants no action",
		},
		{
			"UnknownField",
			completePolicy(`"candidate": [{"resource": "orders", "actions": ["read"], "scope": "own"}]`),
			"unknown field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParsePermissionTable(strings.NewReader(tt.policy))
			require.Error(t, err)
			assert.Nil(t, table)
			assert.ErrorIs(t, err, ErrInvalidPermissionTable)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

// completePolicy returns a policy covering every role except those overridden by extra.
func completePolicy(extra string) string {
	entries := []string{extra}
	for _, role := range AllRoles {
		if strings.Contains(extra, `"`+string(role)+`"`) {
			continue
		}
		entries = append(entries, `"`+string(role)+`": []`)
	}
	return "{" + strings.Join(entries, ",") + "}"
}

func TestLoadPermissionTableFile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rbac.json")
		require.NoError(t, os.WriteFile(path, []byte(completePolicy(
			`"processor": [{"resource": "clients", "actions": ["delete"]}]`,
		)), 0o600))

		table, err := LoadPermissionTableFile(path)
		require.NoError(t, err)
		assert.True(t, table.HasPermission(RoleProcessor, "clients", ActionDelete))
		assert.False(t, table.HasPermission(RoleProcessor, "orders", ActionRead))
	})

	t.Run("Error_MissingFile", func(t *testing.T) {
		_, err := LoadPermissionTableFile(filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open permission table")
	})
}

func TestParsePermission(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		p, err := ParsePermission("client:admin")
		require.NoError(t, err)
		assert.Equal(t, Permission{Resource: "client", Action: ActionAdmin}, p)
		assert.Equal(t, "client:admin", p.String())
	})

	for _, in := range []string{"", "orders", ":read", "orders:", "orders:read:extra", "orders:fly"} {
		t.Run("Error_"+in, func(t *testing.T) {
			_, err := ParsePermission(in)
			assert.ErrorIs(t, err, ErrInvalidPermission)
		})
	}
}

func TestPermissionTable_Allows(t *testing.T) {
	table := loadDefaultTable(t)
	p, err := ParsePermission("client:admin")
	require.NoError(t, err)

	assert.True(t, table.Allows(RoleClientAdmin, p))
	assert.False(t, table.Allows(RoleProcessor, p))
}

func TestPermissionTable_Grants(t *testing.T) {
	table := loadDefaultTable(t)

	grants := table.Grants(RoleProcessor)
	require.NotEmpty(t, grants)
	for i := 1; i < len(grants); i++ {
		assert.LessOrEqual(t, grants[i-1].Resource, grants[i].Resource)
	}

	// Mutating the copy leaves the table untouched.
	grants[0].Actions[0] = ActionManage
	assert.NotEqual(t, ActionManage, table.Grants(RoleProcessor)[0].Actions[0])
	assert.Empty(t, table.Grants(RoleOwner))
}
