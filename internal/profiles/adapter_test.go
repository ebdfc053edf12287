package profiles

import "testing"

func TestRoleTagOfPrefersCanonicalColumn(t *testing.T) {
	tag, ok := RoleTagOf(Profile{RoleTag: "seller", LegacyRole: "admin", LegacyTitle: "Super Admin"})
	if !ok || tag != "seller" {
		t.Fatalf("expected user_type to win, got %q %v", tag, ok)
	}
}

func TestRoleTagOfLegacyFallbacks(t *testing.T) {
	cases := []struct {
		name string
		in   Profile
		want string
	}{
		{"legacy role", Profile{LegacyRole: "moderator"}, "moderator"},
		{"legacy title spaces", Profile{LegacyTitle: "Super Admin"}, "super_admin"},
		{"legacy title hyphens", Profile{LegacyTitle: "super-admin"}, "super_admin"},
		{"mixed case", Profile{LegacyRole: "  Support "}, "support"},
		{"admin email hint", Profile{Email: "admin@caveat.example"}, "admin"},
		{"admin plus email hint", Profile{Email: "admin+legal@caveat.example"}, "admin"},
	}
	for _, tc := range cases {
		tag, ok := RoleTagOf(tc.in)
		if !ok || tag != tc.want {
			t.Fatalf("%s: expected %q, got %q %v", tc.name, tc.want, tag, ok)
		}
	}
}

func TestRoleTagOfNoRole(t *testing.T) {
	cases := []Profile{
		{},
		{Email: "buyer@example.com"},
		{Email: "administrator@example.com"},
		{Email: "badminton@club.example"},
		{RoleTag: "   "},
	}
	for i, p := range cases {
		if tag, ok := RoleTagOf(p); ok {
			t.Fatalf("case %d: expected no role, got %q", i, tag)
		}
	}
}
