/**
 * @description
 * Savings goal handlers. Progress updates go through a single conditional
 * increment in the store, so concurrent contributions can never lose updates
 * or complete a goal twice.
 */

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/fintrackr/finance-api/internal/domain"
)

// CreateSavingsGoalHandler handles POST /api/savings-goals.
func (h *Handlers) CreateSavingsGoalHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	var input domain.SavingsGoalInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := validateSavingsGoalInput(input, true); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	goal := &domain.SavingsGoal{
		ID:           uuid.New(),
		UserID:       identity.SubjectID,
		Name:         strings.TrimSpace(*input.Name),
		TargetAmount: *input.TargetAmount,
		GoalType:     domain.GoalMinor,
		Status:       domain.GoalActive,
		Deadline:     input.Deadline,
	}
	if input.CurrentAmount != nil {
		goal.CurrentAmount = *input.CurrentAmount
	}
	if input.Category != nil {
		goal.Category = strings.TrimSpace(*input.Category)
	}
	if input.GoalType != nil {
		goal.GoalType = *input.GoalType
	}
	if input.Notes != nil {
		goal.Notes = strings.TrimSpace(*input.Notes)
	}

	if err := h.goals.Create(r.Context(), goal); err != nil {
		writeStoreError(w, "savings_goals", err)
		return
	}
	writeData(w, http.StatusCreated, map[string]interface{}{"goal": goal})
}

// ListSavingsGoalsHandler handles GET /api/savings-goals.
func (h *Handlers) ListSavingsGoalsHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	goals, err := h.goals.List(r.Context(), identity.SubjectID)
	if err != nil {
		writeStoreError(w, "savings_goals", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"goals": goals})
}

// ListActiveSavingsGoalsHandler handles GET /api/savings-goals/active.
func (h *Handlers) ListActiveSavingsGoalsHandler(w http.ResponseWriter, r *http.Request) {
	h.listGoalsByStatus(w, r, domain.GoalActive)
}

// ListCompletedSavingsGoalsHandler handles GET /api/savings-goals/completed.
func (h *Handlers) ListCompletedSavingsGoalsHandler(w http.ResponseWriter, r *http.Request) {
	h.listGoalsByStatus(w, r, domain.GoalCompleted)
}

func (h *Handlers) listGoalsByStatus(w http.ResponseWriter, r *http.Request, status string) {
	identity, _ := requestIdentity(r)

	goals, err := h.goals.ListByStatus(r.Context(), identity.SubjectID, status)
	if err != nil {
		writeStoreError(w, "savings_goals", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"goals": goals})
}

// GetSavingsGoalHandler handles GET /api/savings-goals/{id}.
func (h *Handlers) GetSavingsGoalHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid goal id")
		return
	}

	goal, err := h.goals.GetByID(r.Context(), identity.SubjectID, id)
	if err != nil {
		writeStoreError(w, "savings_goals", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"goal": goal})
}

// UpdateSavingsGoalHandler handles PUT /api/savings-goals/{id}.
func (h *Handlers) UpdateSavingsGoalHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid goal id")
		return
	}

	var input domain.SavingsGoalInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := validateSavingsGoalInput(input, false); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	goal, err := h.goals.Update(r.Context(), identity.SubjectID, id, input)
	if err != nil {
		writeStoreError(w, "savings_goals", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"goal": goal})
}

// DeleteSavingsGoalHandler handles DELETE /api/savings-goals/{id}.
func (h *Handlers) DeleteSavingsGoalHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid goal id")
		return
	}

	if err := h.goals.Delete(r.Context(), identity.SubjectID, id); err != nil {
		writeStoreError(w, "savings_goals", err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"message": "Savings goal deleted"})
}

type goalProgressRequest struct {
	AmountToAdd json.RawMessage `json:"amountToAdd"`
}

// progressAmount coerces the raw amountToAdd value to a number. Absent,
// null, and unparseable values all count as zero.
func progressAmount(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, perr := strconv.ParseFloat(strings.TrimSpace(s), 64); perr == nil {
			return parsed
		}
	}
	return 0
}

// UpdateSavingsGoalProgressHandler handles PATCH /api/savings-goals/{id}/progress.
func (h *Handlers) UpdateSavingsGoalProgressHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid goal id")
		return
	}

	var req goalProgressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	amount := progressAmount(req.AmountToAdd)
	if amount < 0 {
		writeValidationError(w, map[string]string{"amountToAdd": "amountToAdd must not be negative"})
		return
	}

	goal, err := h.goals.AddProgress(r.Context(), identity.SubjectID, id, amount)
	if err != nil {
		writeStoreError(w, "savings_goals", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"goal": goal})
}

func validateSavingsGoalInput(input domain.SavingsGoalInput, create bool) map[string]string {
	details := map[string]string{}

	if create {
		if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
			details["name"] = "name is required"
		}
		if input.TargetAmount == nil {
			details["targetAmount"] = "targetAmount is required"
		}
	} else if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		details["name"] = "name cannot be empty"
	}
	if input.TargetAmount != nil && *input.TargetAmount < 0 {
		details["targetAmount"] = "targetAmount must not be negative"
	}
	if input.CurrentAmount != nil && *input.CurrentAmount < 0 {
		details["currentAmount"] = "currentAmount must not be negative"
	}
	if input.GoalType != nil && !domain.ValidGoalType(*input.GoalType) {
		details["type"] = "type must be minor goal or major goal"
	}
	if input.Status != nil && !domain.ValidGoalStatus(*input.Status) {
		details["status"] = "status must be active, completed or cancelled"
	}

	return details
}
