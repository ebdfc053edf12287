// Package rbac resolves a user's role and answers capability queries over
// it. Evaluation is pure and fail-closed: malformed input and nil roles
// evaluate to false, never to a panic or an error in the hot path.
package rbac

import (
	"strings"

	"github.com/caveat-labs/caveat/internal/roles"
	"github.com/caveat-labs/caveat/internal/shared"
)

// HasPermission reports whether the role grants the named permission,
// either by membership or by holding the wildcard. A nil role or a blank
// name is always false.
func HasPermission(role *roles.Role, name string) bool {
	if role == nil {
		return false
	}
	name = normalize(name)
	if name == "" {
		return false
	}
	for _, p := range role.Permissions {
		if p == shared.PermWildcard || normalize(p) == name {
			return true
		}
	}
	return false
}

// HasAny reports whether at least one of the names is granted. An empty
// list is false.
func HasAny(role *roles.Role, names []string) bool {
	for _, name := range names {
		if HasPermission(role, name) {
			return true
		}
	}
	return false
}

// HasAll reports whether every name is granted. An empty list is
// vacuously true.
func HasAll(role *roles.Role, names []string) bool {
	for _, name := range names {
		if !HasPermission(role, name) {
			return false
		}
	}
	return true
}

// HasRoleTag reports a role-identity match, distinct from a capability
// check. The wildcard does not satisfy a tag check.
func HasRoleTag(role *roles.Role, tag roles.Tag) bool {
	return role != nil && role.Tag == tag
}

// IsAdmin reports whether the role is administrative: tagged admin or
// super_admin, or holding the wildcard.
func IsAdmin(role *roles.Role) bool {
	if role == nil {
		return false
	}
	if role.Tag == roles.TagAdmin || role.Tag == roles.TagSuperAdmin {
		return true
	}
	return hasWildcard(role)
}

func hasWildcard(role *roles.Role) bool {
	for _, p := range role.Permissions {
		if p == shared.PermWildcard {
			return true
		}
	}
	return false
}

// CanManageUsers is a derived convenience predicate.
func CanManageUsers(role *roles.Role) bool {
	return HasAny(role, []string{shared.PermManageUsers})
}

// CanManageDisputes is a derived convenience predicate.
func CanManageDisputes(role *roles.Role) bool {
	return HasAny(role, []string{shared.PermManageDisputes})
}

// CanModerateContent is a derived convenience predicate.
func CanModerateContent(role *roles.Role) bool {
	return HasAny(role, []string{shared.PermModerateContent})
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
