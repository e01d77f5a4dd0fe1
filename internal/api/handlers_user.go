/**
 * @description
 * User profile handlers: read, partial update, preference blocks, sync, and
 * soft delete. Every handler operates on the record keyed by the resolved
 * identity's subject id; there is no way to address another user's profile.
 */

package api

import (
	"net/http"
	"strings"

	"github.com/fintrackr/finance-api/internal/domain"
)

// GetMeHandler handles GET /api/users/me.
func (h *Handlers) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	user, err := h.users.FindBySubjectID(r.Context(), identity.SubjectID)
	if err != nil {
		writeStoreError(w, "users", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"user": user})
}

// UpdateMeHandler handles PUT /api/users/me. Only the allow-listed fields are
// applied; a name update also refreshes the derived first/last split.
func (h *Handlers) UpdateMeHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	var patch domain.UserProfileUpdate
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := validateProfileUpdate(patch); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	if patch.Name != nil && patch.FirstName == nil && patch.LastName == nil {
		first, last := splitName(*patch.Name)
		patch.FirstName = &first
		patch.LastName = &last
	}

	user, err := h.users.UpdateProfile(r.Context(), identity.SubjectID, patch)
	if err != nil {
		writeStoreError(w, "users", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"user": user})
}

// DeleteMeHandler handles DELETE /api/users/me. The record is soft-deleted
// and the session cookie cleared.
func (h *Handlers) DeleteMeHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	if err := h.users.SoftDelete(r.Context(), identity.SubjectID); err != nil {
		writeStoreError(w, "users", err)
		return
	}

	http.SetCookie(w, expiredSessionCookie(h.cookieName, h.secureCookie))
	writeData(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}

// UpdateNotificationsHandler handles PUT /api/users/me/notifications. The body
// replaces the whole notifications block.
func (h *Handlers) UpdateNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	var settings domain.NotificationSettings
	if err := decodeJSON(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.UpdateNotifications(r.Context(), identity.SubjectID, settings)
	if err != nil {
		writeStoreError(w, "users", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"user": user})
}

// UpdateSecurityHandler handles PUT /api/users/me/security.
func (h *Handlers) UpdateSecurityHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	var settings domain.SecuritySettings
	if err := decodeJSON(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.UpdateSecurity(r.Context(), identity.SubjectID, settings)
	if err != nil {
		writeStoreError(w, "users", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"user": user})
}

// SyncHandler handles POST /api/users/sync. Creates the user on first call
// and refreshes claims plus login counters on every subsequent one.
func (h *Handlers) SyncHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	var req domain.SyncRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, created, err := h.users.Sync(r.Context(), *identity, req)
	if err != nil {
		writeStoreError(w, "users", err)
		return
	}
	h.publishUserEvent(r, user, created)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeData(w, status, map[string]interface{}{"user": user, "created": created})
}

func validateProfileUpdate(patch domain.UserProfileUpdate) map[string]string {
	details := map[string]string{}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		details["name"] = "name cannot be empty"
	}
	if patch.Currency != nil && len(strings.TrimSpace(*patch.Currency)) != 3 {
		details["currency"] = "currency must be a 3-letter code"
	}
	return details
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
