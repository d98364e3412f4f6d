// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rl := NewRateLimiter(client, RateLimitConfig{
		Limit:    PerHour(2, 2),
		FailOpen: true,
	})
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/v1/reservations", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("first two requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("third request should be limited, got %v", codes)
	}
}

func TestScopesDoNotShareBuckets(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	global := NewRateLimiter(client, RateLimitConfig{Limit: PerHour(1, 1)}).Handler(ok)
	bookings := NewRateLimiter(client, RateLimitConfig{Scope: "bookings", Limit: PerHour(1, 1)}).Handler(ok)

	for _, h := range []http.Handler{global, bookings} {
		req := httptest.NewRequest(http.MethodPost, "/v1/reservations", nil)
		req.RemoteAddr = "10.0.0.2:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("first request in each scope should pass, got %d", rec.Code)
		}
	}
}

func TestFallbackWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	h := NewRateLimiter(client, RateLimitConfig{Limit: PerHour(1, 1), FailOpen: true}).
		Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 2)
	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/v1/restaurants", nil)
		req.RemoteAddr = "10.0.0.3:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("local fallback should enforce the limit, got %v", codes)
	}
}

func TestFailClosedWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	h := NewRateLimiter(client, RateLimitConfig{Limit: PerHour(10, 10)}).
		Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/restaurants", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestKeyByIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"remote addr", nil, "192.0.2.1:4000", "ip:192.0.2.1"},
		{"last forwarded hop", map[string]string{"X-Forwarded-For": "203.0.113.9, 198.51.100.7"}, "10.0.0.1:1", "ip:198.51.100.7"},
		{"garbage forwarded", map[string]string{"X-Forwarded-For": "nope"}, "10.0.0.1:1", "ip:10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.8"}, "10.0.0.1:1", "ip:198.51.100.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if got := KeyByIP(req); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocalLimiterSweepsIdleKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLocalLimiter(func() time.Time { return now })

	l.allow("a", PerMinute(10, 10))
	now = now.Add(2 * localEntryTTL)
	l.allow("b", PerMinute(10, 10))

	if _, ok := l.entries["a"]; ok {
		t.Fatal("idle key should have been swept")
	}
	if _, ok := l.entries["b"]; !ok {
		t.Fatal("active key missing")
	}
}
