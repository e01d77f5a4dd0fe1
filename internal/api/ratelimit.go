/**
 * @description
 * Fixed-window rate limit middleware. Three tiers share one counter backend:
 * a general tier over the whole API, a tighter tier for the auth endpoints,
 * and a write tier for mutating methods. Each tier counts independently, so a
 * single request may consume from more than one.
 *
 * Counters are keyed by client IP. chi's RealIP middleware runs earlier in
 * the chain, so RemoteAddr already reflects X-Forwarded-For when present.
 */

package api

import (
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fintrackr/finance-api/internal/app"
)

// RateLimitTier is one named limit over a shared fixed window.
type RateLimitTier struct {
	Scope string
	Limit int

	// Methods restricts the tier to the listed HTTP methods. Empty means all.
	Methods []string
}

// RateLimiter applies a tier against a RateLimitStore.
type RateLimiter struct {
	store  app.RateLimitStore
	window time.Duration
}

func NewRateLimiter(store app.RateLimitStore, window time.Duration) *RateLimiter {
	return &RateLimiter{store: store, window: window}
}

// Middleware returns the chi middleware for one tier. Requests over the limit
// get a 429 with RateLimit headers and a Retry-After hint; counter backend
// failures let the request through.
func (l *RateLimiter) Middleware(tier RateLimitTier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l == nil || l.store == nil || tier.Limit <= 0 || !tier.applies(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			subject := clientIP(r)
			count, retryAfter, err := l.store.Consume(r.Context(), tier.Scope, subject, l.window)
			if err != nil {
				log.Printf("level=warn component=rate_limit msg=\"counter unavailable; allowing request\" scope=%s err=%v", tier.Scope, err)
				next.ServeHTTP(w, r)
				return
			}

			remaining := tier.Limit - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("RateLimit-Limit", strconv.Itoa(tier.Limit))
			w.Header().Set("RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("RateLimit-Reset", strconv.Itoa(retryAfter))

			if count > tier.Limit {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				log.Printf("level=warn component=rate_limit msg=\"limit exceeded\" scope=%s subject=%s count=%d limit=%d", tier.Scope, subject, count, tier.Limit)
				writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (t RateLimitTier) applies(method string) bool {
	if len(t.Methods) == 0 {
		return true
	}
	for _, m := range t.Methods {
		if m == method {
			return true
		}
	}
	return false
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
