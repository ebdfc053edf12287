package roles

// Tag identifies a role in the fixed enumeration.
type Tag string

const (
	TagBuyer      Tag = "buyer"
	TagSeller     Tag = "seller"
	TagAdmin      Tag = "admin"
	TagSuperAdmin Tag = "super_admin"
	TagModerator  Tag = "moderator"
	TagSupport    Tag = "support"
)

// Role bundles a tag with display metadata and its permission set. A
// permission entry of "*" grants every permission.
type Role struct {
	Tag         Tag
	DisplayName string
	Color       string
	Permissions []string
}

// Valid reports whether the tag belongs to the enumeration.
func (t Tag) Valid() bool {
	switch t {
	case TagBuyer, TagSeller, TagAdmin, TagSuperAdmin, TagModerator, TagSupport:
		return true
	}
	return false
}

// EndUser reports whether the tag is a customer-facing role. The admin
// assignment path must never grant these.
func (t Tag) EndUser() bool {
	return t == TagBuyer || t == TagSeller
}
