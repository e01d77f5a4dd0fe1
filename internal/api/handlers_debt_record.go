/**
 * @description
 * Debt record handlers: CRUD plus the pending and paid listings.
 */

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fintrackr/finance-api/internal/domain"
)

// CreateDebtRecordHandler handles POST /api/debt-records.
func (h *Handlers) CreateDebtRecordHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	var input domain.DebtRecordInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := validateDebtRecordInput(input, true); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	record := &domain.DebtRecord{
		ID:          uuid.New(),
		UserID:      identity.SubjectID,
		ContactName: strings.TrimSpace(*input.ContactName),
		Amount:      *input.Amount,
		Direction:   *input.Direction,
		StartDate:   time.Now().UTC(),
		Status:      domain.DebtPending,
		DueDate:     input.DueDate,
	}
	if input.StartDate != nil {
		record.StartDate = *input.StartDate
	}
	if input.ContactEmail != nil {
		record.ContactEmail = strings.TrimSpace(*input.ContactEmail)
	}
	if input.ContactPhone != nil {
		record.ContactPhone = strings.TrimSpace(*input.ContactPhone)
	}
	if input.Description != nil {
		record.Description = strings.TrimSpace(*input.Description)
	}
	if input.Status != nil {
		record.Status = *input.Status
	}
	if input.AmountPaid != nil {
		record.AmountPaid = *input.AmountPaid
	}
	if input.Notes != nil {
		record.Notes = strings.TrimSpace(*input.Notes)
	}

	if err := h.debts.Create(r.Context(), record); err != nil {
		writeStoreError(w, "debt_records", err)
		return
	}
	writeData(w, http.StatusCreated, map[string]interface{}{"debtRecord": record})
}

// ListDebtRecordsHandler handles GET /api/debt-records.
func (h *Handlers) ListDebtRecordsHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	records, err := h.debts.List(r.Context(), identity.SubjectID)
	if err != nil {
		writeStoreError(w, "debt_records", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"debtRecords": records})
}

// ListPendingDebtRecordsHandler handles GET /api/debt-records/pending.
func (h *Handlers) ListPendingDebtRecordsHandler(w http.ResponseWriter, r *http.Request) {
	h.listDebtsByStatus(w, r, domain.DebtPending)
}

// ListPaidDebtRecordsHandler handles GET /api/debt-records/paid.
func (h *Handlers) ListPaidDebtRecordsHandler(w http.ResponseWriter, r *http.Request) {
	h.listDebtsByStatus(w, r, domain.DebtPaid)
}

func (h *Handlers) listDebtsByStatus(w http.ResponseWriter, r *http.Request, status string) {
	identity, _ := requestIdentity(r)

	records, err := h.debts.ListByStatus(r.Context(), identity.SubjectID, status)
	if err != nil {
		writeStoreError(w, "debt_records", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"debtRecords": records})
}

// GetDebtRecordHandler handles GET /api/debt-records/{id}.
func (h *Handlers) GetDebtRecordHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid debt record id")
		return
	}

	record, err := h.debts.GetByID(r.Context(), identity.SubjectID, id)
	if err != nil {
		writeStoreError(w, "debt_records", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"debtRecord": record})
}

// UpdateDebtRecordHandler handles PUT /api/debt-records/{id}.
func (h *Handlers) UpdateDebtRecordHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid debt record id")
		return
	}

	var input domain.DebtRecordInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := validateDebtRecordInput(input, false); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	record, err := h.debts.Update(r.Context(), identity.SubjectID, id, input)
	if err != nil {
		writeStoreError(w, "debt_records", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"debtRecord": record})
}

// DeleteDebtRecordHandler handles DELETE /api/debt-records/{id}.
func (h *Handlers) DeleteDebtRecordHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid debt record id")
		return
	}

	if err := h.debts.Delete(r.Context(), identity.SubjectID, id); err != nil {
		writeStoreError(w, "debt_records", err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"message": "Debt record deleted"})
}

func validateDebtRecordInput(input domain.DebtRecordInput, create bool) map[string]string {
	details := map[string]string{}

	if create {
		if input.ContactName == nil || strings.TrimSpace(*input.ContactName) == "" {
			details["contactName"] = "contactName is required"
		}
		if input.Amount == nil {
			details["amount"] = "amount is required"
		}
		if input.Direction == nil {
			details["direction"] = "direction is required"
		}
	} else if input.ContactName != nil && strings.TrimSpace(*input.ContactName) == "" {
		details["contactName"] = "contactName cannot be empty"
	}
	if input.Amount != nil && *input.Amount < 0 {
		details["amount"] = "amount must not be negative"
	}
	if input.AmountPaid != nil && *input.AmountPaid < 0 {
		details["amountPaid"] = "amountPaid must not be negative"
	}
	if input.Direction != nil && !domain.ValidDebtDirection(*input.Direction) {
		details["direction"] = "direction must be lent or borrowed"
	}
	if input.Status != nil && !domain.ValidDebtStatus(*input.Status) {
		details["status"] = "status must be pending, paid or overdue"
	}

	return details
}
