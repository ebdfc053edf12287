package rbac

import (
	"testing"

	"github.com/caveat-labs/caveat/internal/roles"
)

func sellerRole(t *testing.T) *roles.Role {
	t.Helper()
	role, err := roles.Default().ByTag(roles.TagSeller)
	if err != nil {
		t.Fatalf("seller role: %v", err)
	}
	return role
}

func superAdminRole(t *testing.T) *roles.Role {
	t.Helper()
	role, err := roles.Default().ByTag(roles.TagSuperAdmin)
	if err != nil {
		t.Fatalf("super admin role: %v", err)
	}
	return role
}

func TestHasPermissionMembership(t *testing.T) {
	seller := sellerRole(t)
	if !HasPermission(seller, "create_gigs") {
		t.Fatalf("seller must hold create_gigs")
	}
	if HasPermission(seller, "system_admin") {
		t.Fatalf("seller must not hold system_admin")
	}
	for _, name := range seller.Permissions {
		if !HasPermission(seller, name) {
			t.Fatalf("member permission %q evaluated false", name)
		}
	}
}

func TestHasPermissionWildcard(t *testing.T) {
	super := superAdminRole(t)
	for _, name := range []string{"anything_whatsoever", "manage_users", "delete_everything"} {
		if !HasPermission(super, name) {
			t.Fatalf("wildcard must grant %q", name)
		}
	}
}

func TestHasPermissionMalformedInput(t *testing.T) {
	seller := sellerRole(t)
	if HasPermission(seller, "") {
		t.Fatalf("empty permission name must be false")
	}
	if HasPermission(seller, "   ") {
		t.Fatalf("blank permission name must be false")
	}
	if HasPermission(nil, "create_gigs") {
		t.Fatalf("nil role must be false")
	}
	// Wildcard holders still deny a blank name.
	if HasPermission(superAdminRole(t), "") {
		t.Fatalf("empty name must be false even with wildcard")
	}
}

func TestHasAnyHasAll(t *testing.T) {
	seller := sellerRole(t)
	if !HasAny(seller, []string{"system_admin", "create_gigs"}) {
		t.Fatalf("hasAny with one member must be true")
	}
	if HasAll(seller, []string{"system_admin", "create_gigs"}) {
		t.Fatalf("hasAll with one missing must be false")
	}
	if HasAny(seller, nil) {
		t.Fatalf("hasAny over empty list must be false")
	}
	if !HasAll(seller, nil) {
		t.Fatalf("hasAll over empty list must be vacuously true")
	}
	if !HasAll(nil, nil) {
		t.Fatalf("hasAll over empty list is vacuously true even for nil role")
	}
}

func TestHasRoleTag(t *testing.T) {
	seller := sellerRole(t)
	if !HasRoleTag(seller, roles.TagSeller) {
		t.Fatalf("tag identity check failed")
	}
	if HasRoleTag(seller, roles.TagAdmin) {
		t.Fatalf("seller is not admin")
	}
	if HasRoleTag(nil, roles.TagAdmin) {
		t.Fatalf("nil role matches no tag")
	}
	// Wildcard does not satisfy an identity check.
	if HasRoleTag(superAdminRole(t), roles.TagAdmin) {
		t.Fatalf("super_admin tag is not admin tag")
	}
}

func TestDerivedPredicates(t *testing.T) {
	catalog := roles.Default()
	admin, err := catalog.ByTag(roles.TagAdmin)
	if err != nil {
		t.Fatalf("admin role: %v", err)
	}
	moderator, err := catalog.ByTag(roles.TagModerator)
	if err != nil {
		t.Fatalf("moderator role: %v", err)
	}

	if !IsAdmin(admin) || !IsAdmin(superAdminRole(t)) {
		t.Fatalf("admin and super_admin are administrative")
	}
	if IsAdmin(sellerRole(t)) || IsAdmin(moderator) || IsAdmin(nil) {
		t.Fatalf("seller, moderator and no-role are not administrative")
	}
	if !CanManageUsers(admin) || CanManageUsers(moderator) {
		t.Fatalf("manage users predicate wrong")
	}
	if !CanManageDisputes(moderator) || CanManageDisputes(sellerRole(t)) {
		t.Fatalf("manage disputes predicate wrong")
	}
	if !CanModerateContent(moderator) || CanModerateContent(nil) {
		t.Fatalf("moderate content predicate wrong")
	}
}
