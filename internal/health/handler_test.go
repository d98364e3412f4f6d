// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("down") }

func readiness(t *testing.T, h *Handler) (int, ReadinessResponse) {
	t.Helper()
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var body ReadinessResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body) //nolint:errcheck // status-only responses lack checks
	return rec.Code, body
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name   string
		checks []Check
		code   int
		status string
	}{
		{"all healthy", []Check{{"database", true, ok}, {"redis", false, ok}}, http.StatusOK, "ok"},
		{"cache down", []Check{{"database", true, ok}, {"redis", false, down}}, http.StatusOK, "degraded"},
		{"database down", []Check{{"database", true, down}, {"redis", false, ok}}, http.StatusServiceUnavailable, "unavailable"},
		{"unconfigured", []Check{{"database", true, nil}}, http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := readiness(t, NewHandler(tt.checks...))
			if code != tt.code || body.Status != tt.status {
				t.Errorf("got %d %q, want %d %q", code, body.Status, tt.code, tt.status)
			}
			if len(body.Checks) != len(tt.checks) {
				t.Errorf("checks = %d", len(body.Checks))
			}
		})
	}
}

func TestShutdownFlipsProbes(t *testing.T) {
	h := NewHandler(Check{Name: "database", Critical: true, Ping: ok})
	h.SetShutdown(true)

	code, _ := readiness(t, h)
	if code != http.StatusServiceUnavailable {
		t.Errorf("readiness during shutdown = %d", code)
	}

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("liveness during shutdown = %d", rec.Code)
	}
}
