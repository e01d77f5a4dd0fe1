/**
 * @description
 * This package provides a client for the external identity provider. It covers
 * two concerns: local verification of provider-issued RS256 JWTs against the
 * provider's JWKS endpoint (with an in-process key cache), and the REST calls
 * that mint and revoke long-lived session tokens.
 *
 * @dependencies
 * - github.com/golang-jwt/jwt/v5: JWT parsing and RS256 signature verification.
 */
package identity

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fintrackr/finance-api/internal/domain"
)

// ErrInvalidToken is returned for any credential that fails verification.
// Callers get no detail about why; the reason is logged, not exposed.
var ErrInvalidToken = errors.New("identity: invalid token")

// Client talks to the identity provider.
type Client struct {
	baseURL    string
	apiKey     string
	jwksURL    string
	httpClient *http.Client
	cacheTTL   time.Duration

	mu       sync.RWMutex
	expires  time.Time
	keyByKID map[string]*rsa.PublicKey
}

// NewClient creates a new identity provider client. jwksURL is where the
// provider publishes its signing keys.
func NewClient(baseURL, apiKey, jwksURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		jwksURL:    strings.TrimSpace(jwksURL),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cacheTTL:   10 * time.Minute,
		keyByKID:   map[string]*rsa.PublicKey{},
	}
}

// VerifyToken validates a provider-issued JWT locally and extracts the
// identity claims. It never calls the provider unless the signing key is
// missing from the cache.
func (c *Client) VerifyToken(ctx context.Context, tokenString string) (*domain.Identity, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}), jwt.WithLeeway(30*time.Second))
	claims := jwt.MapClaims{}

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || strings.TrimSpace(kid) == "" {
			return nil, errors.New("missing kid in token")
		}
		return c.getPublicKey(ctx, kid)
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || strings.TrimSpace(sub) == "" {
		return nil, ErrInvalidToken
	}

	return &domain.Identity{
		SubjectID: sub,
		Email:     stringClaim(claims, "email"),
		Name:      stringClaim(claims, "name"),
		AvatarURL: stringClaim(claims, "picture"),
	}, nil
}

func stringClaim(claims jwt.MapClaims, name string) string {
	value, _ := claims[name].(string)
	return strings.TrimSpace(value)
}

// CreateSession exchanges a short-lived ID token for a session token with the
// requested lifetime. The provider signs the session token with the same keys
// it uses for ID tokens, so VerifyToken works on both.
func (c *Client) CreateSession(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	payload := map[string]any{
		"idToken":       idToken,
		"expiresInSecs": int64(ttl.Seconds()),
	}

	var result struct {
		SessionToken string `json:"sessionToken"`
	}
	if err := c.post(ctx, "/v1/sessions", payload, &result); err != nil {
		return "", err
	}
	if strings.TrimSpace(result.SessionToken) == "" {
		return "", errors.New("identity: provider returned empty session token")
	}
	return result.SessionToken, nil
}

// RevokeSession invalidates a session token at the provider. A token the
// provider no longer recognizes is treated as already revoked.
func (c *Client) RevokeSession(ctx context.Context, sessionToken string) error {
	payload := map[string]any{"sessionToken": sessionToken}
	err := c.post(ctx, "/v1/sessions/revoke", payload, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode == http.StatusUnauthorized) {
			return nil
		}
	}
	return err
}

// APIError is a non-2xx response from the identity provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity: provider returned %d: %s", e.StatusCode, e.Body)
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) getPublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if key := c.getCachedKey(kid); key != nil {
		return key, nil
	}

	if err := c.refreshKeys(ctx); err != nil {
		return nil, err
	}

	if key := c.getCachedKey(kid); key != nil {
		return key, nil
	}

	return nil, fmt.Errorf("key not found for kid %s", kid)
}

func (c *Client) getCachedKey(kid string) *rsa.PublicKey {
	now := time.Now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	if now.After(c.expires) {
		return nil
	}
	return c.keyByKID[kid]
}

func (c *Client) refreshKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks endpoint returned %d", resp.StatusCode)
	}

	var payload struct {
		Keys []struct {
			Kid string `json:"kid"`
			Kty string `json:"kty"`
			Use string `json:"use"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return err
	}

	keys := map[string]*rsa.PublicKey{}
	for _, key := range payload.Keys {
		if !strings.EqualFold(key.Kty, "RSA") || strings.TrimSpace(key.Kid) == "" {
			continue
		}
		pub, convErr := rsaPublicKeyFromJWK(key.N, key.E)
		if convErr != nil {
			continue
		}
		keys[key.Kid] = pub
	}

	if len(keys) == 0 {
		return errors.New("jwks endpoint returned no usable RSA keys")
	}

	c.mu.Lock()
	c.keyByKID = keys
	c.expires = time.Now().Add(c.cacheTTL)
	c.mu.Unlock()

	return nil
}

func rsaPublicKeyFromJWK(n, e string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, err
	}

	exponent := 0
	for _, b := range eBytes {
		exponent = exponent<<8 | int(b)
	}
	if exponent <= 0 {
		return nil, errors.New("invalid RSA exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: exponent,
	}, nil
}
