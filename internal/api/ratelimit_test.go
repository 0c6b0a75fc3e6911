package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aiagentrag/ragserver/internal/log"
)

func TestRateLimiter_Burst(t *testing.T) {
	rl := newRateLimiter(0.0001, 3)

	for i := range 3 {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("request %d denied within burst", i)
		}
	}
	if rl.allow("1.2.3.4") {
		t.Fatal("request allowed after burst exhausted")
	}

	// A different IP gets its own bucket.
	if !rl.allow("5.6.7.8") {
		t.Fatal("fresh IP denied")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := newRateLimiter(0.0001, 1)
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := rateLimitMiddleware(rl, false, log.NewNop())(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header not set")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		realIP     string
		forwarded  string
		trustProxy bool
		want       string
	}{
		{"remote addr only", "10.0.0.1:1234", "", "", false, "10.0.0.1"},
		{"ignores headers without trust", "10.0.0.1:1234", "2.2.2.2", "3.3.3.3", false, "10.0.0.1"},
		{"x-real-ip preferred", "10.0.0.1:1234", "2.2.2.2", "3.3.3.3", true, "2.2.2.2"},
		{"x-forwarded-for first entry", "10.0.0.1:1234", "", "3.3.3.3, 4.4.4.4", true, "3.3.3.3"},
		{"invalid header falls back", "10.0.0.1:1234", "not-an-ip", "also-bad", true, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			if got := clientIP(req, tt.trustProxy); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
