package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/screening/internal/auth/domain"
)

func TestRunCheckPermissions(t *testing.T) {
	t.Run("matrix-text", func(t *testing.T) {
		var out bytes.Buffer

		err := RunCheckPermissions("", "", "", "text", IOTuple{Writer: &out})

		require.NoError(t, err)
		for _, role := range authDomain.AllRoles {
			require.Contains(t, out.String(), string(role))
		}
		require.Contains(t, out.String(), "all:manage")
	})

	t.Run("single-role-json", func(t *testing.T) {
		var out bytes.Buffer

		err := RunCheckPermissions("", "client_user", "", "json", IOTuple{Writer: &out})

		require.NoError(t, err)
		var matrix []roleGrants
		require.NoError(t, json.Unmarshal(out.Bytes(), &matrix))
		require.Len(t, matrix, 1)
		require.Equal(t, "client_user", matrix[0].Role)
	})

	t.Run("decision", func(t *testing.T) {
		var out bytes.Buffer

		err := RunCheckPermissions("", "client_user", "client:admin", "text", IOTuple{Writer: &out})

		require.NoError(t, err)
		require.Equal(t, "client_user client:admin: DENIED\n", out.String())
	})

	t.Run("owner-always-allowed", func(t *testing.T) {
		var out bytes.Buffer

		err := RunCheckPermissions("", "owner", "anything:delete", "json", IOTuple{Writer: &out})

		require.NoError(t, err)
		var check permissionCheck
		require.NoError(t, json.Unmarshal(out.Bytes(), &check))
		require.True(t, check.Allowed)
	})

	t.Run("unknown-role", func(t *testing.T) {
		err := RunCheckPermissions("", "root", "", "text", IOTuple{Writer: &bytes.Buffer{}})
		require.ErrorIs(t, err, authDomain.ErrUnknownRole)
	})

	t.Run("malformed-permission", func(t *testing.T) {
		err := RunCheckPermissions("", "admin", "users", "text", IOTuple{Writer: &bytes.Buffer{}})
		require.ErrorIs(t, err, authDomain.ErrInvalidPermission)
	})

	t.Run("invalid-policy-file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rbac.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"admin": []}`), 0o600))

		err := RunCheckPermissions(path, "", "", "text", IOTuple{Writer: &bytes.Buffer{}})

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid policy file")
	})
}
