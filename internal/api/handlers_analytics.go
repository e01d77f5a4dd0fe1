/**
 * @description
 * Cross-cutting analytics handlers built on the transaction aggregation
 * queries: monthly balance series, expense vs savings, need/want breakdown,
 * and per-category spending.
 */

package api

import (
	"net/http"
	"time"

	"github.com/fintrackr/finance-api/internal/domain"
)

// BalanceOverTimeHandler handles GET /api/analytics/balance-over-time. Each
// point is that month's income minus expense for the requested year.
func (h *Handlers) BalanceOverTimeHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	year := queryInt(r, "year", time.Now().UTC().Year())
	points, err := h.transactions.BalanceOverTime(r.Context(), identity.SubjectID, year)
	if err != nil {
		writeStoreError(w, "analytics", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"year": year, "balances": points})
}

// ExpenseSavingsHandler handles GET /api/analytics/expense-savings. Savings is
// derived as income minus expense; a negative figure means overspending.
func (h *Handlers) ExpenseSavingsHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	stats, err := h.transactions.DashboardStats(r.Context(), identity.SubjectID)
	if err != nil {
		writeStoreError(w, "analytics", err)
		return
	}

	breakdown := domain.ExpenseSavingsBreakdown{
		TotalIncome:  stats.TotalIncome,
		TotalExpense: stats.TotalExpenses,
		Savings:      stats.TotalIncome - stats.TotalExpenses,
	}
	writeData(w, http.StatusOK, map[string]interface{}{"breakdown": breakdown})
}

// NeedWantHandler handles GET /api/analytics/need-want. Untagged expenses are
// excluded from the breakdown.
func (h *Handlers) NeedWantHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	totals, err := h.transactions.ExpenseByNeedWant(r.Context(), identity.SubjectID, true)
	if err != nil {
		writeStoreError(w, "analytics", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"totals": totals})
}

// AnalyticsStatsHandler handles GET /api/analytics/stats: per-category expense
// totals for chart rendering.
func (h *Handlers) AnalyticsStatsHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := requestIdentity(r)

	totals, err := h.transactions.ExpenseByCategory(r.Context(), identity.SubjectID)
	if err != nil {
		writeStoreError(w, "analytics", err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"totals": totals})
}
