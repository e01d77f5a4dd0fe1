/**
 * @description
 * Session resolution and the authentication gate. Resolution runs on every
 * request: it looks for the session cookie first, then a Bearer token, and
 * verifies whichever it finds with the identity provider client. Resolution
 * never rejects a request; it only attaches the identity to the context when
 * one could be established. RequireAuth is the separate gate that turns a
 * missing identity into a 401.
 *
 * The session cookie value carries an HMAC-SHA256 tag so a tampered cookie is
 * discarded before the verifier ever sees it.
 */

package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fintrackr/finance-api/internal/domain"
)

type contextKey string

const identityContextKey contextKey = "identity"

// TokenVerifier validates a provider-issued credential and returns the
// identity claims it carries.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*domain.Identity, error)
}

// SessionConfig controls how the session middleware reads credentials.
type SessionConfig struct {
	CookieName   string
	CookieSecret string
	Verifier     TokenVerifier
}

// SecurityHeaders sets the baseline browser protection headers on every
// response before any route-level middleware runs.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("Content-Security-Policy", "default-src 'self'")
		header.Set("X-Content-Type-Options", "nosniff")
		header.Set("X-Frame-Options", "SAMEORIGIN")
		header.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// SessionMiddleware resolves the request identity from the session cookie or,
// when no cookie is present, from the Authorization header. At most one
// verifier call happens per request.
func SessionMiddleware(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionTokenFromRequest(r, cfg)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := cfg.Verifier.VerifyToken(r.Context(), token)
			if err != nil {
				log.Printf("level=warn component=session msg=\"credential rejected\" path=%s err=%v", r.URL.Path, err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionTokenFromRequest extracts the credential to verify. The cookie takes
// precedence over the Authorization header.
func sessionTokenFromRequest(r *http.Request, cfg SessionConfig) string {
	if cookie, err := r.Cookie(cfg.CookieName); err == nil {
		if token, ok := openCookieValue(cookie.Value, cfg.CookieSecret); ok {
			return token
		}
		log.Printf("level=warn component=session msg=\"session cookie failed integrity check\" path=%s", r.URL.Path)
		return ""
	}

	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// RequireAuth rejects requests that carry no resolved identity.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext returns the resolved identity for the request.
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*domain.Identity)
	return identity, ok
}

// WithIdentity stores an identity in context. Used by tests and the session
// middleware.
func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// sealCookieValue wraps a session token as base64(token).base64(hmac).
func sealCookieValue(token, secret string) string {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(token))
	return encoded + "." + cookieMAC(encoded, secret)
}

// openCookieValue verifies the HMAC tag and returns the inner token.
func openCookieValue(value, secret string) (string, bool) {
	parts := strings.SplitN(value, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	if !hmac.Equal([]byte(cookieMAC(parts[0], secret)), []byte(parts[1])) {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", false
	}
	return string(raw), true
}

func cookieMAC(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// newSessionCookie builds the session cookie for a sealed token value.
func newSessionCookie(name, sealedValue string, maxAge time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    sealedValue,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// expiredSessionCookie builds the clearing counterpart of newSessionCookie.
func expiredSessionCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
