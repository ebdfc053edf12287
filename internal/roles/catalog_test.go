package roles

import (
	"errors"
	"testing"

	"github.com/caveat-labs/caveat/internal/shared"
)

func TestDefaultCatalogListsAllRoles(t *testing.T) {
	catalog := Default()
	all := catalog.All()
	if len(all) != 6 {
		t.Fatalf("expected 6 roles, got %d", len(all))
	}
	want := []Tag{TagBuyer, TagSeller, TagModerator, TagSupport, TagAdmin, TagSuperAdmin}
	for i, tag := range want {
		if all[i].Tag != tag {
			t.Fatalf("expected role %d to be %q, got %q", i, tag, all[i].Tag)
		}
	}
	// Order is stable across calls.
	again := catalog.All()
	for i := range all {
		if all[i].Tag != again[i].Tag {
			t.Fatalf("role order changed between calls at index %d", i)
		}
	}
}

func TestAdminRolesExcludeEndUserRoles(t *testing.T) {
	for _, role := range Default().AdminRoles() {
		if role.Tag == TagBuyer || role.Tag == TagSeller {
			t.Fatalf("admin roles must not include %q", role.Tag)
		}
	}
	if got := len(Default().AdminRoles()); got != 4 {
		t.Fatalf("expected 4 admin roles, got %d", got)
	}
}

func TestByTagUnknownRole(t *testing.T) {
	catalog := Default()
	role, err := catalog.ByTag(Tag("intruder"))
	if !errors.Is(err, shared.ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
	if role != nil {
		t.Fatalf("expected nil role on unknown tag")
	}
}

func TestByTagLenientLookup(t *testing.T) {
	catalog := Default(WithLenientLookup())
	role, err := catalog.ByTag(Tag("intruder"))
	if err != nil {
		t.Fatalf("lenient lookup must not error, got %v", err)
	}
	if role != nil {
		t.Fatalf("expected nil role on unknown tag")
	}
}

func TestDisplayNameDefaultsFromTag(t *testing.T) {
	role, err := Default().ByTag(TagSuperAdmin)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if role.DisplayName != "Super Admin" {
		t.Fatalf("expected derived display name, got %q", role.DisplayName)
	}
}

func TestCatalogIsImmutableThroughAccessors(t *testing.T) {
	catalog := Default()
	role, err := catalog.ByTag(TagSeller)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	role.Permissions[0] = "tampered"
	fresh, err := catalog.ByTag(TagSeller)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if fresh.Permissions[0] == "tampered" {
		t.Fatalf("catalog leaked mutable permission slice")
	}
}

func TestDefines(t *testing.T) {
	catalog := Default()
	if !catalog.Defines(shared.PermCreateGigs) {
		t.Fatalf("expected create_gigs to be defined")
	}
	if catalog.Defines("system_meltdown") {
		t.Fatalf("unknown permission must not be defined")
	}
	if catalog.Defines("") {
		t.Fatalf("empty permission must not be defined")
	}
	if catalog.Defines(shared.PermWildcard) {
		t.Fatalf("wildcard is not itself a defined permission")
	}
}

func TestNewCatalogRejectsBadDefinitions(t *testing.T) {
	if _, err := NewCatalog([]Role{{Tag: Tag("ghost")}}); !errors.Is(err, shared.ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole for out-of-enumeration tag, got %v", err)
	}
	if _, err := NewCatalog([]Role{{Tag: TagBuyer}, {Tag: TagBuyer}}); err == nil {
		t.Fatalf("expected duplicate tag to be rejected")
	}
}
