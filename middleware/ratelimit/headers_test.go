package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"chat-gateway/middleware/ratelimit/domain"
)

func TestSetHeaders_BlockedSetsRetryAfterSeconds(t *testing.T) {
	w := httptest.NewRecorder()
	SetHeaders(w, "k", domain.Decision{Allowed: false, RetryAfter: 2500 * time.Millisecond}, false)

	if got := w.Header().Get("Retry-After"); got != "2" {
		// int(2.5s.Seconds()) == 2
		t.Fatalf("expected Retry-After=2, got %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Limit"); got != "" {
		t.Fatalf("expected no rate headers when disabled, got %q", got)
	}
}

func TestSetHeaders_AllowedWithRateHeaders(t *testing.T) {
	reset := time.Unix(1_700_000_060, 0)
	w := httptest.NewRecorder()
	SetHeaders(w, "203.0.113.9", domain.Decision{Allowed: true, Limit: 10, Remaining: 7, ResetAt: reset}, true)

	h := w.Header()
	if h.Get("X-RateLimit-Key") != "203.0.113.9" {
		t.Fatalf("expected X-RateLimit-Key header to be set")
	}
	if h.Get("X-RateLimit-Limit") != "10" || h.Get("X-RateLimit-Remaining") != "7" {
		t.Fatalf("unexpected limit headers: %v", h)
	}
	if h.Get("X-RateLimit-Reset") != "1700000060" {
		t.Fatalf("unexpected reset header %q", h.Get("X-RateLimit-Reset"))
	}
	if h.Get("Retry-After") != "" {
		t.Fatalf("expected no Retry-After when allowed")
	}
}
