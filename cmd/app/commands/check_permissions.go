package commands

import (
	"fmt"
	"io"
	"strings"

	authDomain "github.com/allisson/screening/internal/auth/domain"
)

type roleGrants struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type permissionCheck struct {
	Role       string `json:"role"`
	Permission string `json:"permission"`
	Allowed    bool   `json:"allowed"`
}

// RunCheckPermissions validates a permission table and prints it.
//
// With an empty policyFile the embedded default table is used. With role set only that
// role is printed; with role and permission ("resource:action") the single decision is
// printed instead, which is handy when reviewing a policy change.
func RunCheckPermissions(policyFile, role, permission, format string, tuple IOTuple) error {
	table, err := loadPermissionTable(policyFile)
	if err != nil {
		return err
	}

	roles := authDomain.AllRoles
	if role != "" {
		r := authDomain.Role(role)
		if !r.IsValid() {
			return fmt.Errorf("%w: %q", authDomain.ErrUnknownRole, role)
		}
		roles = []authDomain.Role{r}
	}

	if permission != "" {
		if role == "" {
			return fmt.Errorf("--role is required with --permission")
		}
		p, err := authDomain.ParsePermission(permission)
		if err != nil {
			return err
		}
		check := permissionCheck{Role: role, Permission: p.String(), Allowed: table.Allows(roles[0], p)}
		return writeOutput(tuple.Writer, format, check, func(w io.Writer) {
			decision := "DENIED"
			if check.Allowed {
				decision = "ALLOWED"
			}
			_, _ = fmt.Fprintf(w, "%s %s: %s\n", check.Role, check.Permission, decision)
		})
	}

	matrix := make([]roleGrants, 0, len(roles))
	for _, r := range roles {
		matrix = append(matrix, roleGrants{Role: string(r), Permissions: describeGrants(table, r)})
	}

	return writeOutput(tuple.Writer, format, matrix, func(w io.Writer) {
		for _, rg := range matrix {
			_, _ = fmt.Fprintf(w, "%s\n", rg.Role)
			for _, p := range rg.Permissions {
				_, _ = fmt.Fprintf(w, "  %s\n", p)
			}
		}
	})
}

func loadPermissionTable(policyFile string) (*authDomain.PermissionTable, error) {
	if policyFile == "" {
		return authDomain.DefaultPermissionTable()
	}
	table, err := authDomain.LoadPermissionTableFile(policyFile)
	if err != nil {
		return nil, fmt.Errorf("invalid policy file: %w", err)
	}
	return table, nil
}

// describeGrants renders grants as "resource:action1,action2". The owner role has no
// grants in the table and is shown as all:manage.
func describeGrants(table *authDomain.PermissionTable, role authDomain.Role) []string {
	if role == authDomain.RoleOwner {
		return []string{authDomain.ResourceAll + ":" + string(authDomain.ActionManage)}
	}

	grants := table.Grants(role)
	out := make([]string, 0, len(grants))
	for _, g := range grants {
		actions := make([]string, 0, len(g.Actions))
		for _, a := range g.Actions {
			actions = append(actions, string(a))
		}
		out = append(out, g.Resource+":"+strings.Join(actions, ","))
	}
	return out
}
