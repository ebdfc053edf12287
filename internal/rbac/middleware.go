package rbac

import (
	"log/slog"
	"net/http"

	"github.com/caveat-labs/caveat/internal/platform/httpx"
	"github.com/caveat-labs/caveat/internal/roles"
	"github.com/caveat-labs/caveat/internal/shared"
)

// Middleware wires capability gate authorization for HTTP handlers. These
// server-side guards are the enforcement point; client gates consuming the
// same decisions are rendering hints only.
type Middleware struct {
	Gate   *Gate
	Logger *slog.Logger
}

// RequireAny ensures the current user holds at least one of the required
// permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return m.require(Requirement{AnyOf: perms})
}

// RequireAll ensures the current user holds all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return m.require(Requirement{AllOf: perms})
}

// RequireRole ensures the current user carries the exact role tag.
func (m Middleware) RequireRole(tag roles.Tag) func(http.Handler) http.Handler {
	return m.require(Requirement{Role: tag})
}

func (m Middleware) require(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal.Anonymous() {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			decision, err := m.Gate.Evaluate(r.Context(), principal.UserID, req)
			switch decision {
			case DecisionAllow:
				next.ServeHTTP(w, r)
			case DecisionPending:
				// Transient lookup failure: tell the caller to retry,
				// never silently deny.
				if m.Logger != nil {
					m.Logger.Warn("authorization pending", slog.Any("error", err))
				}
				w.Header().Set("Retry-After", "1")
				httpx.Problem(w, http.StatusServiceUnavailable, "Authorization Unavailable", "role lookup failed, retry shortly")
			default:
				httpx.RespondError(w, httpx.ErrForbidden)
			}
		})
	}
}
