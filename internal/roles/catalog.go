package roles

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/caveat-labs/caveat/internal/shared"
)

// Catalog holds the role definitions for the process lifetime. It is
// constructed once at startup and injected where needed; it has no write
// path after construction.
type Catalog struct {
	order   []Tag
	byTag   map[Tag]Role
	lenient bool
}

// Option customises catalog construction.
type Option func(*Catalog)

// WithLenientLookup restores the legacy behaviour where ByTag returns nil
// for an unrecognised tag instead of ErrUnknownRole.
func WithLenientLookup() Option {
	return func(c *Catalog) { c.lenient = true }
}

// NewCatalog builds a catalog from the given definitions, preserving order.
func NewCatalog(defs []Role, opts ...Option) (*Catalog, error) {
	c := &Catalog{byTag: make(map[Tag]Role, len(defs))}
	for _, def := range defs {
		if !def.Tag.Valid() {
			return nil, fmt.Errorf("catalog: %w: %q", shared.ErrUnknownRole, def.Tag)
		}
		if _, dup := c.byTag[def.Tag]; dup {
			return nil, fmt.Errorf("catalog: duplicate role %q", def.Tag)
		}
		if def.DisplayName == "" {
			def.DisplayName = titleize(def.Tag)
		}
		def.Permissions = append([]string(nil), def.Permissions...)
		c.byTag[def.Tag] = def
		c.order = append(c.order, def.Tag)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Default returns the marketplace role catalog.
func Default(opts ...Option) *Catalog {
	c, err := NewCatalog([]Role{
		{Tag: TagBuyer, Color: "green", Permissions: []string{
			shared.PermBrowseGigs, shared.PermPlaceBids, shared.PermMessageSellers,
			shared.PermUploadDocuments, shared.PermViewOwnOrders,
		}},
		{Tag: TagSeller, Color: "blue", Permissions: []string{
			shared.PermCreateGigs, shared.PermManageBids, shared.PermMessageBuyers,
			shared.PermUploadDocuments,
		}},
		{Tag: TagModerator, Color: "orange", Permissions: []string{
			shared.PermModerateContent, shared.PermManageDisputes, shared.PermViewReports,
		}},
		{Tag: TagSupport, Color: "teal", Permissions: []string{
			shared.PermViewUsers, shared.PermViewTransactions, shared.PermRespondTickets,
		}},
		{Tag: TagAdmin, Color: "purple", Permissions: []string{
			shared.PermManageUsers, shared.PermManageRoles, shared.PermManageDisputes,
			shared.PermModerateContent, shared.PermViewAnalytics, shared.PermViewReports,
			shared.PermViewTransactions,
		}},
		{Tag: TagSuperAdmin, Color: "red", Permissions: []string{shared.PermWildcard}},
	}, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns every defined role in stable order.
func (c *Catalog) All() []Role {
	out := make([]Role, 0, len(c.order))
	for _, tag := range c.order {
		out = append(out, c.clone(tag))
	}
	return out
}

// AdminRoles returns every role except the customer-facing buyer and
// seller roles. The admin assignment UI must not offer those.
func (c *Catalog) AdminRoles() []Role {
	out := make([]Role, 0, len(c.order))
	for _, tag := range c.order {
		if tag.EndUser() {
			continue
		}
		out = append(out, c.clone(tag))
	}
	return out
}

// ByTag looks up a role definition. Unknown tags return ErrUnknownRole
// unless the catalog was built with WithLenientLookup, in which case both
// return values are nil.
func (c *Catalog) ByTag(tag Tag) (*Role, error) {
	if _, ok := c.byTag[tag]; !ok {
		if c.lenient {
			return nil, nil
		}
		return nil, fmt.Errorf("catalog: %w: %q", shared.ErrUnknownRole, tag)
	}
	role := c.clone(tag)
	return &role, nil
}

// Defines reports whether any role in the catalog names the permission.
// Wildcard entries do not count: a permission nobody spells out is
// considered unknown to the catalog.
func (c *Catalog) Defines(permission string) bool {
	if permission == "" || permission == shared.PermWildcard {
		return false
	}
	for _, role := range c.byTag {
		for _, p := range role.Permissions {
			if p == permission {
				return true
			}
		}
	}
	return false
}

func (c *Catalog) clone(tag Tag) Role {
	role := c.byTag[tag]
	role.Permissions = append([]string(nil), role.Permissions...)
	return role
}

func titleize(tag Tag) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(tag), "_", " "))
}
