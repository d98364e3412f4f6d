// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carterperez-dev/templates/tablebook/internal/config"
)

type fakeHealth struct {
	ready    bool
	shutdown bool
}

func (f *fakeHealth) SetReady(ready bool)       { f.ready = ready }
func (f *fakeHealth) SetShutdown(shutdown bool) { f.shutdown = shutdown }

func TestUnknownRouteIsJSON404(t *testing.T) {
	srv := New(Config{ServerConfig: config.ServerConfig{Host: "127.0.0.1", Port: 0}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}

func TestShutdownMarksHealth(t *testing.T) {
	h := &fakeHealth{ready: true}
	srv := New(Config{ServerConfig: config.ServerConfig{Host: "127.0.0.1", Port: 0}, HealthHandler: h})

	if err := srv.Shutdown(context.Background(), 0); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if h.ready || !h.shutdown {
		t.Errorf("health not updated: %+v", h)
	}
}
