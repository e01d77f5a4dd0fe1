/**
 * @description
 * This file defines the Handlers struct, which holds the dependencies for the
 * HTTP handlers, and the small request helpers shared across resources.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: URL parameter extraction.
 * - github.com/google/uuid: Entity identifier parsing.
 */

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fintrackr/finance-api/internal/domain"
	"github.com/fintrackr/finance-api/internal/store"
	"github.com/fintrackr/finance-api/pkg/rabbitmq"
)

// SessionService covers the identity-provider operations the handlers need.
type SessionService interface {
	TokenVerifier
	CreateSession(ctx context.Context, idToken string, ttl time.Duration) (string, error)
	RevokeSession(ctx context.Context, sessionToken string) error
}

// Handlers holds the dependencies for the API handlers.
type Handlers struct {
	users        store.UserRepository
	transactions store.TransactionRepository
	categories   store.CategoryRepository
	goals        store.SavingsGoalRepository
	debts        store.DebtRecordRepository

	sessions SessionService
	events   rabbitmq.Publisher

	cookieName   string
	cookieSecret string
	secureCookie bool
	sessionTTL   time.Duration
}

// HandlersConfig wires a Handlers instance.
type HandlersConfig struct {
	Users        store.UserRepository
	Transactions store.TransactionRepository
	Categories   store.CategoryRepository
	Goals        store.SavingsGoalRepository
	Debts        store.DebtRecordRepository

	Sessions SessionService
	Events   rabbitmq.Publisher

	CookieName   string
	CookieSecret string
	SecureCookie bool
	SessionTTL   time.Duration
}

// NewHandlers creates the handler set for the router.
func NewHandlers(cfg HandlersConfig) *Handlers {
	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &Handlers{
		users:        cfg.Users,
		transactions: cfg.Transactions,
		categories:   cfg.Categories,
		goals:        cfg.Goals,
		debts:        cfg.Debts,
		sessions:     cfg.Sessions,
		events:       cfg.Events,
		cookieName:   cfg.CookieName,
		cookieSecret: cfg.CookieSecret,
		secureCookie: cfg.SecureCookie,
		sessionTTL:   sessionTTL,
	}
}

// requestIdentity returns the resolved identity. Handlers behind RequireAuth
// can rely on ok being true.
func requestIdentity(r *http.Request) (*domain.Identity, bool) {
	return IdentityFromContext(r.Context())
}

// decodeJSON parses a request body, rejecting unknown top-level syntax errors
// with a client-safe message.
func decodeJSON(r *http.Request, dst interface{}) error {
	defer io.Copy(io.Discard, r.Body)
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// uuidParam parses a chi URL parameter as a UUID.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid id")
	}
	return id, nil
}

// queryInt parses an optional integer query parameter, returning fallback
// when absent or malformed.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// queryDate parses an optional RFC 3339 or YYYY-MM-DD query parameter.
func queryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s date", name)
	}
	return &t, nil
}
