// AngelaMos | 2026
// handler_test.go

package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestCredentialEndpoints(t *testing.T) {
	h := newHarness(t)

	passthrough := func(next http.Handler) http.Handler { return next }
	r := chi.NewRouter()
	NewHandler(h.svc).RegisterRoutes(r, passthrough, passthrough)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"register", "/auth/register", `{"email":"new@example.com","password":"long enough pw","name":"New"}`, http.StatusCreated},
		{"duplicate", "/auth/register", `{"email":"new@example.com","password":"long enough pw","name":"New"}`, http.StatusConflict},
		{"invalid body", "/auth/register", `{"email":"nope","password":"short"}`, http.StatusBadRequest},
		{"login", "/auth/login", `{"email":"new@example.com","password":"long enough pw"}`, http.StatusOK},
		{"wrong password", "/auth/login", `{"email":"new@example.com","password":"not the password"}`, http.StatusUnauthorized},
		{"unknown user", "/auth/login", `{"email":"ghost@example.com","password":"long enough pw"}`, http.StatusUnauthorized},
		{"bad refresh", "/auth/refresh", `{"refresh_token":"garbage"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != tt.status {
			t.Errorf("%s: status = %d, want %d (%s)", tt.name, rec.Code, tt.status, rec.Body.String())
		}
	}
}
