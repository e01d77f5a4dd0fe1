/**
 * @description
 * Response envelope helpers shared by every handler. Success payloads are
 * wrapped as {"success": true, "data": ...}; failures as
 * {"success": false, "error": "..."} with optional field-level details for
 * validation errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fintrackr/finance-api/internal/store"
)

type successEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type errorEnvelope struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// writeJSON is a helper for writing JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeData wraps a payload in the success envelope.
func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, successEnvelope{Success: true, Data: data})
}

// writeError writes a failure envelope with a stable, client-safe message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorEnvelope{Success: false, Error: message})
}

// writeValidationError writes a 400 with per-field messages.
func writeValidationError(w http.ResponseWriter, details map[string]string) {
	writeJSON(w, http.StatusBadRequest, errorEnvelope{
		Success: false,
		Error:   "Validation failed",
		Details: details,
	})
}

// writeStoreError maps repository errors onto the HTTP error taxonomy.
// Not-found sentinels become 404s, uniqueness conflicts 409s, everything
// else is logged and redacted to a generic 500.
func writeStoreError(w http.ResponseWriter, component string, err error) {
	switch {
	case errors.Is(err, store.ErrTransactionNotFound),
		errors.Is(err, store.ErrCategoryNotFound),
		errors.Is(err, store.ErrGoalNotFound),
		errors.Is(err, store.ErrDebtRecordNotFound),
		errors.Is(err, store.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, store.ErrDuplicateCategory),
		errors.Is(err, store.ErrDuplicateUser):
		writeError(w, http.StatusConflict, "Resource already exists")
	default:
		log.Printf("level=error component=%s msg=\"storage operation failed\" err=%v", component, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
