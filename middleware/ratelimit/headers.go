package ratelimit

import (
	"net/http"

	"chat-gateway/middleware/ratelimit/domain"
)

// SetHeaders traduz uma Decision para headers HTTP.
//
// Retry-After vai sempre que a decisão bloqueia; os X-RateLimit-* só quando
// withRateHeaders=true (ADD_RATELIMIT_HEADERS).
func SetHeaders(w http.ResponseWriter, key domain.Key, dec domain.Decision, withRateHeaders bool) {
	h := w.Header()
	if withRateHeaders {
		h.Set("X-RateLimit-Key", string(key))
		h.Set("X-RateLimit-Limit", formatInt(dec.Limit))
		h.Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
		if !dec.ResetAt.IsZero() {
			h.Set("X-RateLimit-Reset", formatInt64(dec.ResetAt.Unix()))
		}
	}
	if !dec.Allowed && dec.RetryAfter > 0 {
		h.Set("Retry-After", formatInt(int(dec.RetryAfter.Seconds())))
	}
}
