/**
 * @description
 * Authentication handlers: Google sign-in, logout, and the identity probe.
 * Sign-in verifies the provider ID token, exchanges it for a long-lived
 * session token, syncs the user record, and sets the session cookie. Logout
 * revokes the session at the provider on a best-effort basis and always
 * clears the cookie.
 */

package api

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fintrackr/finance-api/internal/domain"
	"github.com/fintrackr/finance-api/pkg/rabbitmq"
)

type googleLoginRequest struct {
	IDToken string `json:"idToken"`
}

// GoogleLoginHandler handles POST /api/auth/google.
func (h *Handlers) GoogleLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.IDToken) == "" {
		writeValidationError(w, map[string]string{"idToken": "idToken is required"})
		return
	}

	identity, err := h.sessions.VerifyToken(r.Context(), req.IDToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	sessionToken, err := h.sessions.CreateSession(r.Context(), req.IDToken, h.sessionTTL)
	if err != nil {
		log.Printf("level=error component=auth msg=\"session mint failed\" subject=%s err=%v", identity.SubjectID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, created, err := h.users.Sync(r.Context(), *identity, domain.SyncRequest{})
	if err != nil {
		writeStoreError(w, "auth", err)
		return
	}
	h.publishUserEvent(r, user, created)

	http.SetCookie(w, newSessionCookie(
		h.cookieName,
		sealCookieValue(sessionToken, h.cookieSecret),
		h.sessionTTL,
		h.secureCookie,
	))

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeData(w, status, map[string]interface{}{"user": user})
}

// LogoutHandler handles POST /api/auth/logout. Revocation failures are logged
// and swallowed; the cookie is cleared regardless.
func (h *Handlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if token, ok := openCookieValue(cookie.Value, h.cookieSecret); ok {
			if err := h.sessions.RevokeSession(r.Context(), token); err != nil {
				log.Printf("level=warn component=auth msg=\"session revoke failed\" err=%v", err)
			}
		}
	}

	http.SetCookie(w, expiredSessionCookie(h.cookieName, h.secureCookie))
	writeData(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// AuthMeHandler handles GET /api/auth/me. It reports the resolved identity,
// or null when the request carries no valid credential. Never a 401.
func (h *Handlers) AuthMeHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := requestIdentity(r)
	if !ok {
		writeData(w, http.StatusOK, map[string]interface{}{"identity": nil})
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"identity": identity})
}

func (h *Handlers) publishUserEvent(r *http.Request, user *domain.User, created bool) {
	if h.events == nil {
		return
	}
	routingKey := domain.EventUserSynced
	if created {
		routingKey = domain.EventUserCreated
	}
	occurredAt := time.Now().UTC()
	if user.LastLogin != nil {
		occurredAt = *user.LastLogin
	}
	event := domain.UserEvent{
		UserID:     user.ID.String(),
		SubjectID:  user.SubjectID,
		Email:      user.Email,
		LoginCount: user.LoginCount,
		OccurredAt: occurredAt,
	}
	if err := h.events.Publish(r.Context(), rabbitmq.UserEventsExchange, routingKey, event); err != nil {
		log.Printf("level=warn component=auth msg=\"user event publish failed\" routing_key=%s err=%v", routingKey, err)
	}
}
