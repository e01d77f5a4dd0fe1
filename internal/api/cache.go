/**
 * @description
 * Response cache middleware for read endpoints. Successful GET responses are
 * stored under path+query for a short TTL and replayed verbatim until they
 * expire. Entries are not invalidated by writes; readers tolerate briefly
 * stale data in exchange for cheap dashboard loads.
 */

package api

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/fintrackr/finance-api/internal/app"
)

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// ResponseCache wraps GET handlers with a CacheStore-backed TTL cache.
type ResponseCache struct {
	store app.CacheStore
	ttl   time.Duration
}

func NewResponseCache(store app.CacheStore, ttl time.Duration) *ResponseCache {
	return &ResponseCache{store: store, ttl: ttl}
}

// Middleware serves cache hits directly and records 200 responses on a miss.
// Only GET requests participate; everything else passes straight through.
func (c *ResponseCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c == nil || c.store == nil || r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := r.URL.Path + "?" + r.URL.RawQuery

		if raw, ok, err := c.store.Get(r.Context(), key); err != nil {
			log.Printf("level=warn component=response_cache msg=\"cache read failed\" key=%s err=%v", key, err)
		} else if ok {
			var cached cachedResponse
			if unmarshalErr := json.Unmarshal(raw, &cached); unmarshalErr == nil {
				w.Header().Set("Content-Type", cached.ContentType)
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(cached.Status)
				w.Write(cached.Body)
				return
			}
		}

		recorder := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		if recorder.status != http.StatusOK {
			return
		}

		entry, err := json.Marshal(cachedResponse{
			Status:      recorder.status,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		})
		if err != nil {
			return
		}
		if err := c.store.Set(r.Context(), key, entry, c.ttl); err != nil {
			log.Printf("level=warn component=response_cache msg=\"cache write failed\" key=%s err=%v", key, err)
		}
	})
}

// responseRecorder tees the response body so it can be cached after the
// handler returns.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}
