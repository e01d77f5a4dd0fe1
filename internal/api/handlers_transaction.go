/**
 * @description
 * Transaction handlers: CRUD, filtered listings, and the per-user aggregation
 * endpoints. Every repository call carries the owner's subject id, so a
 * well-formed request for another user's transaction is indistinguishable
 * from a miss.
 */

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fintrackr/finance-api/internal/domain"
)

var (
	errInvalidCategoryFilter = errors.New("invalid categoryId filter")
	errInvalidTypeFilter     = errors.New("invalid type filter")
)

// CreateTransactionHandler handles POST /api/transactions.
func (h *Handlers) CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	var input domain.TransactionInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := validateTransactionInput(input, true); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	tx := &domain.Transaction{
		ID:             uuid.New(),
		UserID:         identity.SubjectID,
		Date:           *input.Date,
		Type:           *input.Type,
		CategoryID:     input.CategoryID,
		Amount:         *input.Amount,
		PaymentMethod:  domain.PaymentOther,
		NeedOrWant:     domain.NeedWantNotAppl,
		RunningBalance: input.RunningBalance,
	}
	if input.Description != nil {
		tx.Description = strings.TrimSpace(*input.Description)
	}
	if input.PaymentMethod != nil {
		tx.PaymentMethod = *input.PaymentMethod
	}
	if input.Recurring != nil {
		tx.Recurring = *input.Recurring
	}
	if input.RecurringInterval != nil {
		tx.RecurringInterval = input.RecurringInterval
	}
	if input.NeedOrWant != nil {
		tx.NeedOrWant = *input.NeedOrWant
	}
	if input.Notes != nil {
		tx.Notes = strings.TrimSpace(*input.Notes)
	}

	if err := h.transactions.Create(r.Context(), tx); err != nil {
		writeStoreError(w, "transactions", err)
		return
	}
	writeData(w, http.StatusCreated, map[string]interface{}{"transaction": tx})
}

// ListTransactionsHandler handles GET /api/transactions with optional
// from/to/categoryId/type/recurring query filters.
func (h *Handlers) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	filter, err := transactionFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.listTransactions(w, r, identity.SubjectID, filter)
}

// ListTransactionsByMonthHandler handles GET /api/transactions/by-month.
func (h *Handlers) ListTransactionsByMonthHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	now := time.Now().UTC()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))
	if month < 1 || month > 12 {
		writeValidationError(w, map[string]string{"month": "month must be between 1 and 12"})
		return
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	h.listTransactions(w, r, identity.SubjectID, domain.TransactionFilter{From: &from, To: &to})
}

// ListTransactionsByCategoryHandler handles GET /api/transactions/by-category/{categoryID}.
func (h *Handlers) ListTransactionsByCategoryHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	categoryID, err := uuidParam(r, "categoryID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	h.listTransactions(w, r, identity.SubjectID, domain.TransactionFilter{CategoryID: &categoryID})
}

// ListTransactionsByTypeHandler handles GET /api/transactions/by-type/{type}.
func (h *Handlers) ListTransactionsByTypeHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	txType := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "type")))
	if !domain.ValidTransactionType(txType) {
		writeValidationError(w, map[string]string{"type": "type must be income, expense or transfer"})
		return
	}

	h.listTransactions(w, r, identity.SubjectID, domain.TransactionFilter{Type: txType})
}

// ListRecurringTransactionsHandler handles GET /api/transactions/recurring.
func (h *Handlers) ListRecurringTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	recurring := true
	h.listTransactions(w, r, identity.SubjectID, domain.TransactionFilter{Recurring: &recurring})
}

func (h *Handlers) listTransactions(w http.ResponseWriter, r *http.Request, ownerID string, filter domain.TransactionFilter) {
	transactions, err := h.transactions.List(r.Context(), ownerID, filter)
	if err != nil {
		writeStoreError(w, "transactions", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// GetTransactionHandler handles GET /api/transactions/{id}.
func (h *Handlers) GetTransactionHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	tx, err := h.transactions.GetByID(r.Context(), identity.SubjectID, id)
	if err != nil {
		writeStoreError(w, "transactions", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"transaction": tx})
}

// UpdateTransactionHandler handles PUT /api/transactions/{id}. Absent fields
// keep their stored values.
func (h *Handlers) UpdateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	var input domain.TransactionInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if details := validateTransactionInput(input, false); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	tx, err := h.transactions.Update(r.Context(), identity.SubjectID, id, input)
	if err != nil {
		writeStoreError(w, "transactions", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"transaction": tx})
}

// DeleteTransactionHandler handles DELETE /api/transactions/{id}.
func (h *Handlers) DeleteTransactionHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	if err := h.transactions.Delete(r.Context(), identity.SubjectID, id); err != nil {
		writeStoreError(w, "transactions", err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"message": "Transaction deleted"})
}

// MonthlySummaryHandler handles GET /api/transactions/summary/monthly.
func (h *Handlers) MonthlySummaryHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	year := queryInt(r, "year", time.Now().UTC().Year())
	rows, err := h.transactions.MonthlySummary(r.Context(), identity.SubjectID, year)
	if err != nil {
		writeStoreError(w, "transactions", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"year": year, "summary": rows})
}

// YearlySummaryHandler handles GET /api/transactions/summary/yearly.
func (h *Handlers) YearlySummaryHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	rows, err := h.transactions.YearlySummary(r.Context(), identity.SubjectID)
	if err != nil {
		writeStoreError(w, "transactions", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"summary": rows})
}

// DashboardStatsHandler handles GET /api/transactions/dashboard-stats.
func (h *Handlers) DashboardStatsHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	stats, err := h.transactions.DashboardStats(r.Context(), identity.SubjectID)
	if err != nil {
		writeStoreError(w, "transactions", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"stats": stats})
}

// TransactionAnalyticsHandler handles GET /api/transactions/analytics: the
// per-type count/total/average breakdown.
func (h *Handlers) TransactionAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	stats, err := h.transactions.TypeStats(r.Context(), identity.SubjectID)
	if err != nil {
		writeStoreError(w, "transactions", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"analytics": stats})
}

// validateTransactionInput checks enum membership and, for creates, the
// required fields.
func validateTransactionInput(input domain.TransactionInput, create bool) map[string]string {
	details := map[string]string{}

	if create {
		if input.Date == nil {
			details["date"] = "date is required"
		}
		if input.Type == nil {
			details["type"] = "type is required"
		}
		if input.Amount == nil {
			details["amount"] = "amount is required"
		}
	}
	if input.Type != nil && !domain.ValidTransactionType(*input.Type) {
		details["type"] = "type must be income, expense or transfer"
	}
	if input.Amount != nil && *input.Amount < 0 {
		details["amount"] = "amount must not be negative"
	}
	if input.PaymentMethod != nil && !domain.ValidPaymentMethod(*input.PaymentMethod) {
		details["paymentMethod"] = "unknown payment method"
	}
	if input.NeedOrWant != nil && !domain.ValidNeedOrWant(*input.NeedOrWant) {
		details["needOrWant"] = "needOrWant must be need, want or n/a"
	}
	if input.RecurringInterval != nil && !domain.ValidRecurringInterval(*input.RecurringInterval) {
		details["recurringInterval"] = "unknown recurring interval"
	}
	if input.Recurring != nil && *input.Recurring && input.RecurringInterval == nil && create {
		details["recurringInterval"] = "recurringInterval is required for recurring transactions"
	}

	return details
}

func transactionFilterFromQuery(r *http.Request) (domain.TransactionFilter, error) {
	var filter domain.TransactionFilter

	from, err := queryDate(r, "from")
	if err != nil {
		return filter, err
	}
	to, err := queryDate(r, "to")
	if err != nil {
		return filter, err
	}
	filter.From = from
	filter.To = to

	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		categoryID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return filter, errInvalidCategoryFilter
		}
		filter.CategoryID = &categoryID
	}

	if raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))); raw != "" {
		if !domain.ValidTransactionType(raw) {
			return filter, errInvalidTypeFilter
		}
		filter.Type = raw
	}

	if raw := r.URL.Query().Get("recurring"); raw != "" {
		recurring := raw == "true" || raw == "1"
		filter.Recurring = &recurring
	}

	return filter, nil
}
