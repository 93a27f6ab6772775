package domain

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"
)

//go:embed default_permissions.json
var defaultPermissionsJSON []byte

// Permission is a single (resource, action) requirement, written "resource:action".
type Permission struct {
	Resource string
	Action   Action
}

// String returns the "resource:action" form.
func (p Permission) String() string {
	return p.Resource + ":" + string(p.Action)
}

// ParsePermission parses "resource:action", e.g. "client:admin".
func ParsePermission(s string) (Permission, error) {
	resource, action, found := strings.Cut(s, ":")
	if !found || resource == "" || action == "" || strings.Contains(action, ":") {
		return Permission{}, fmt.Errorf("%w: %q", ErrInvalidPermission, s)
	}
	if _, ok := knownActions[Action(action)]; !ok {
		return Permission{}, fmt.Errorf("%w: unknown action %q", ErrInvalidPermission, action)
	}
	return Permission{Resource: resource, Action: Action(action)}, nil
}

// PermissionGrant allows a set of actions on one resource (or on ResourceAll).
type PermissionGrant struct {
	Resource string   `json:"resource"`
	Actions  []Action `json:"actions"`
}

// allows reports whether the grant covers resource and action.
func (g PermissionGrant) allows(resource string, action Action) bool {
	if g.Resource != resource && g.Resource != ResourceAll {
		return false
	}
	return slices.Contains(g.Actions, action) || slices.Contains(g.Actions, ActionManage)
}

// PermissionTable maps every role to its grants. It is loaded once at startup and
// read concurrently afterwards; it is never mutated after Validate succeeds.
type PermissionTable struct {
	grants map[Role][]PermissionGrant
}

// DefaultPermissionTable returns the built-in role table.
func DefaultPermissionTable() (*PermissionTable, error) {
	return ParsePermissionTable(bytes.NewReader(defaultPermissionsJSON))
}

// LoadPermissionTableFile reads a role table from a JSON file.
func LoadPermissionTableFile(path string) (*PermissionTable, error) {
	f, err := os.Open(path) //nolint:gosec // operator supplied policy path
	if err != nil {
		return nil, fmt.Errorf("failed to open permission table: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return ParsePermissionTable(f)
}

// ParsePermissionTable decodes and validates a role table of the form
// {"role": [{"resource": "...", "actions": ["..."]}]}.
func ParsePermissionTable(r io.Reader) (*PermissionTable, error) {
	raw := make(map[Role][]PermissionGrant)
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPermissionTable, err)
	}

	table := &PermissionTable{grants: raw}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Validate checks that every role has an entry, and that no unknown role, empty resource
// or unknown action appears.
func (t *PermissionTable) Validate() error {
	for _, role := range AllRoles {
		if _, ok := t.grants[role]; !ok {
			return fmt.Errorf("%w: role %q has no entry", ErrInvalidPermissionTable, role)
		}
	}
	for role, grants := range t.grants {
		if !role.IsValid() {
			return fmt.Errorf("%w: %v %q", ErrInvalidPermissionTable, ErrUnknownRole, role)
		}
		for _, g := range grants {
			if g.Resource == "" {
				return fmt.Errorf("%w: role %q has a grant without resource", ErrInvalidPermissionTable, role)
			}
			if len(g.Actions) == 0 {
				return fmt.Errorf("%w: role %q grants no action on %q", ErrInvalidPermissionTable, role, g.Resource)
			}
			for _, a := range g.Actions {
				if _, ok := knownActions[a]; !ok {
					return fmt.Errorf("%w: role %q has unknown action %q", ErrInvalidPermissionTable, role, a)
				}
			}
		}
	}
	return nil
}

// HasPermission reports whether role may perform action on resource. The owner role
// always may; other roles need a grant on resource (or ResourceAll) containing action
// or ActionManage.
func (t *PermissionTable) HasPermission(role Role, resource string, action Action) bool {
	if role == RoleOwner {
		return true
	}
	for _, g := range t.grants[role] {
		if g.allows(resource, action) {
			return true
		}
	}
	return false
}

// Allows is HasPermission for a parsed Permission.
func (t *PermissionTable) Allows(role Role, p Permission) bool {
	return t.HasPermission(role, p.Resource, p.Action)
}

// Grants returns a copy of the grants of role, sorted by resource.
func (t *PermissionTable) Grants(role Role) []PermissionGrant {
	grants := make([]PermissionGrant, 0, len(t.grants[role]))
	for _, g := range t.grants[role] {
		grants = append(grants, PermissionGrant{Resource: g.Resource, Actions: slices.Clone(g.Actions)})
	}
	sort.Slice(grants, func(i, j int) bool { return grants[i].Resource < grants[j].Resource })
	return grants
}
