// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carterperez-dev/templates/tablebook/internal/core"
)

type stubVerifier struct {
	claims map[string]*AccessTokenClaims
	err    error
}

func (s stubVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*AccessTokenClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.claims[token]
	if !ok {
		return nil, fmt.Errorf("verify: %w", core.ErrTokenInvalid)
	}
	return c, nil
}

func newVerifier() stubVerifier {
	return stubVerifier{claims: map[string]*AccessTokenClaims{
		"user-token":  {UserID: "u-1", Role: "user"},
		"admin-token": {UserID: "a-1", Role: RoleAdmin},
	}}
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-User", GetUserID(r.Context()))
	w.WriteHeader(http.StatusOK)
}

func TestAuthenticator(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier stubVerifier
		status   int
		user     string
	}{
		{"missing token", "", newVerifier(), http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", newVerifier(), http.StatusUnauthorized, ""},
		{"unknown token", "Bearer nope", newVerifier(), http.StatusUnauthorized, ""},
		{"valid token", "Bearer user-token", newVerifier(), http.StatusOK, "u-1"},
		{"case insensitive scheme", "bearer admin-token", newVerifier(), http.StatusOK, "a-1"},
		{
			"expired token",
			"Bearer user-token",
			stubVerifier{err: fmt.Errorf("x: %w", core.ErrTokenExpired)},
			http.StatusUnauthorized,
			"",
		},
		{
			"store outage",
			"Bearer user-token",
			stubVerifier{err: fmt.Errorf("verify token: %w", core.ErrUnavailable)},
			http.StatusInternalServerError,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Authenticator(tt.verifier)(http.HandlerFunc(echoUser))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := rec.Header().Get("X-User"); got != tt.user {
				t.Errorf("user = %q, want %q", got, tt.user)
			}
		})
	}
}

func TestExtractToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		if got := ExtractToken(req); got != want {
			t.Errorf("%q: got %q, want %q", header, got, want)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	chain := Authenticator(newVerifier())(RequireAdmin(http.HandlerFunc(echoUser)))

	tests := []struct {
		token  string
		status int
	}{
		{"user-token", http.StatusForbidden},
		{"admin-token", http.StatusOK},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tt.token)
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, req)

		if rec.Code != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.token, rec.Code, tt.status)
		}
	}
}

func TestAuthorize(t *testing.T) {
	if Authorize(nil, "user") {
		t.Error("nil identity must not be authorized")
	}
	if !Authorize(&AccessTokenClaims{UserID: "a", Role: RoleAdmin}, "user") {
		t.Error("admin satisfies any role")
	}
	if Authorize(&AccessTokenClaims{UserID: "u", Role: "user"}, RoleAdmin) {
		t.Error("user must not satisfy admin")
	}
}
