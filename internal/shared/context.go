package shared

import (
	"context"

	"github.com/google/uuid"
)

// Principal describes the authenticated actor as verified from the
// identity provider's bearer token.
type Principal struct {
	UserID uuid.UUID
	Email  string
}

// Anonymous reports whether the principal carries no verified identity.
func (p *Principal) Anonymous() bool {
	return p == nil || p.UserID == uuid.Nil
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
