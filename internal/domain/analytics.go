package domain

// MonthlySummaryRow is one (month, type) group of the monthly summary
// aggregation for a given year.
type MonthlySummaryRow struct {
	Month       int     `json:"month"`
	Type        string  `json:"type"`
	TotalAmount float64 `json:"totalAmount"`
}

// YearlySummaryRow is one (year, type) group across all of a user's history.
type YearlySummaryRow struct {
	Year        int     `json:"year"`
	Type        string  `json:"type"`
	TotalAmount float64 `json:"totalAmount"`
}

// DashboardStats carries the headline totals for the dashboard.
type DashboardStats struct {
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	NetBalance    float64 `json:"netBalance"`
}

// CategoryTotal is one per-category expense total.
type CategoryTotal struct {
	CategoryID *string `json:"categoryId"`
	Total      float64 `json:"total"`
}

// NeedWantTotal is one need/want expense total.
type NeedWantTotal struct {
	NeedOrWant string  `json:"needOrWant"`
	Total      float64 `json:"total"`
}

// BalancePoint is one month of the balance-over-time series: income minus
// expense within that month.
type BalancePoint struct {
	Month   string  `json:"month"`
	Balance float64 `json:"balance"`
}

// ExpenseSavingsBreakdown compares lifetime income, expense, and the derived
// savings figure.
type ExpenseSavingsBreakdown struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
	Savings      float64 `json:"savings"`
}

// TypeStats is the per-type count/sum/average aggregation row.
type TypeStats struct {
	Type    string  `json:"type"`
	Count   int64   `json:"count"`
	Total   float64 `json:"total"`
	Average float64 `json:"avg"`
}
