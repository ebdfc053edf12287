package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/caveat-labs/caveat/internal/shared"
)

// Middleware extracts and verifies the bearer token, placing the principal
// in the request context. Requests without a valid token proceed with an
// anonymous principal; the capability gate denies those downstream, so
// public routes keep working and guarded ones fail closed.
func Middleware(verifier *Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}
			principal, err := verifier.Verify(token)
			if err != nil {
				if logger != nil {
					logger.Debug("token verification failed", slog.Any("error", err))
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}
