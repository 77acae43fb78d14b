package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("first two requests denied")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("third request in the window allowed")
	}
	if rl.RetryAfter("10.0.0.1") <= 0 {
		t.Error("RetryAfter not positive while limited")
	}

	// Other clients keep their own budget.
	if !rl.Allow("10.0.0.2") {
		t.Error("independent client denied")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	calls := 0
	h := RateLimitMiddleware(rl, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "192.0.2.7:4444"

	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusOK || calls != 1 {
		t.Fatalf("first call: code %d, calls %d", rec.Code, calls)
	}

	rec2 := httptest.NewRecorder()
	h(rec2, req)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("second call: code %d, want 429", rec2.Code)
	}
	if rec2.Header().Get("Retry-After") == "" {
		t.Error("429 without Retry-After header")
	}
	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "192.0.2.7:4444"

	if got := clientIP(req); got != "192.0.2.7" {
		t.Errorf("clientIP = %q, want bare remote host", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 192.0.2.7")
	if got := clientIP(req); got != "203.0.113.9" {
		t.Errorf("clientIP = %q, want first forwarded hop", got)
	}
}
