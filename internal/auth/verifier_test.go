package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/caveat-labs/caveat/internal/shared"
)

func signToken(t *testing.T, secret string, subject string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email: "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestVerifyValidToken(t *testing.T) {
	userID := uuid.New()
	verifier := NewVerifier("topsecret")

	principal, err := verifier.Verify(signToken(t, "topsecret", userID.String(), time.Hour))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if principal.UserID != userID {
		t.Fatalf("expected subject %s, got %s", userID, principal.UserID)
	}
	if principal.Email != "user@example.com" {
		t.Fatalf("unexpected email %q", principal.Email)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	verifier := NewVerifier("topsecret")
	cases := map[string]string{
		"wrong secret":     signToken(t, "other", uuid.NewString(), time.Hour),
		"expired":          signToken(t, "topsecret", uuid.NewString(), -time.Hour),
		"garbage":          "not.a.token",
		"non-uuid subject": signToken(t, "topsecret", "user-42", time.Hour),
	}
	for name, token := range cases {
		if _, err := verifier.Verify(token); !errors.Is(err, shared.ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestMiddlewareSetsPrincipal(t *testing.T) {
	userID := uuid.New()
	verifier := NewVerifier("topsecret")

	var seen *shared.Principal
	handler := Middleware(verifier, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "topsecret", userID.String(), time.Hour))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen == nil || seen.UserID != userID {
		t.Fatalf("expected principal %s in context, got %+v", userID, seen)
	}
}

func TestMiddlewareAnonymousOnBadToken(t *testing.T) {
	verifier := NewVerifier("topsecret")

	var seen *shared.Principal
	handler := Middleware(verifier, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.PrincipalFromContext(r.Context())
	}))

	for _, header := range []string{"", "Bearer forged.token.here", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if !seen.Anonymous() {
			t.Fatalf("header %q: expected anonymous principal", header)
		}
	}
}
