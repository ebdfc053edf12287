package profiles

import "strings"

// RoleTagOf extracts the effective role tag from a profile row. Every
// fallback the legacy schema needs lives here and nowhere else: new rows
// carry user_type, older rows may carry role or role_title, and the very
// oldest staff rows carry nothing but a staff email prefix.
func RoleTagOf(p Profile) (string, bool) {
	if tag := canonical(p.RoleTag); tag != "" {
		return tag, true
	}
	if tag := canonical(p.LegacyRole); tag != "" {
		return tag, true
	}
	if tag := canonical(p.LegacyTitle); tag != "" {
		return tag, true
	}
	local, _, found := strings.Cut(strings.ToLower(p.Email), "@")
	if found && (local == "admin" || strings.HasPrefix(local, "admin+")) {
		return "admin", true
	}
	return "", false
}

// canonical normalises legacy spellings ("Super Admin", "super-admin")
// into enumeration form. It does not validate against the catalog; the
// resolver decides what to do with tags it does not recognise.
func canonical(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	tag = strings.ReplaceAll(tag, " ", "_")
	tag = strings.ReplaceAll(tag, "-", "_")
	return tag
}
