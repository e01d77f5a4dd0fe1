/**
 * @description
 * This file provides the PostgreSQL implementation of TransactionRepository.
 * All read and write queries filter by the owning user's subject id in the
 * same WHERE clause as the record id, so a lookup against another user's
 * transaction is indistinguishable from a miss.
 *
 * The aggregation methods express the dashboard pipelines as GROUP BY
 * queries with FILTER clauses.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintrackr/finance-api/internal/domain"
)

// PostgresTransactionRepository is the pgx-backed TransactionRepository.
type PostgresTransactionRepository struct {
	db *pgxpool.Pool
}

// NewPostgresTransactionRepository creates a new instance of PostgresTransactionRepository.
func NewPostgresTransactionRepository(db *pgxpool.Pool) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

const transactionColumns = `
	id, user_id, date, type, category_id, COALESCE(description, '') AS description,
	amount, payment_method, recurring, recurring_interval, need_or_want,
	COALESCE(notes, '') AS notes, running_balance, created_at, updated_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.Date, &tx.Type, &tx.CategoryID, &tx.Description,
		&tx.Amount, &tx.PaymentMethod, &tx.Recurring, &tx.RecurringInterval,
		&tx.NeedOrWant, &tx.Notes, &tx.RunningBalance, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// Create inserts a new transaction row. The caller is responsible for setting
// UserID from the resolved identity.
func (r *PostgresTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, user_id, date, type, category_id, description, amount,
			payment_method, recurring, recurring_interval, need_or_want,
			notes, running_balance
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		tx.ID,
		tx.UserID,
		tx.Date,
		tx.Type,
		tx.CategoryID,
		tx.Description,
		tx.Amount,
		tx.PaymentMethod,
		tx.Recurring,
		tx.RecurringInterval,
		tx.NeedOrWant,
		tx.Notes,
		tx.RunningBalance,
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)
}

// buildTransactionListQuery appends one positional predicate per set filter
// field to the owner-scoped base query. Argument order follows clause order.
func buildTransactionListQuery(ownerID string, filter domain.TransactionFilter) (string, []interface{}) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []interface{}{ownerID}
	argPos := 2

	if filter.From != nil {
		query += fmt.Sprintf(" AND date >= $%d", argPos)
		args = append(args, *filter.From)
		argPos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND date <= $%d", argPos)
		args = append(args, *filter.To)
		argPos++
	}
	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND category_id = $%d", argPos)
		args = append(args, *filter.CategoryID)
		argPos++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argPos)
		args = append(args, filter.Type)
		argPos++
	}
	if filter.Recurring != nil {
		query += fmt.Sprintf(" AND recurring = $%d", argPos)
		args = append(args, *filter.Recurring)
		argPos++
	}
	query += " ORDER BY date DESC, created_at DESC"
	return query, args
}

// yearRange returns the half-open UTC interval covering one calendar year.
func yearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// List retrieves all transactions owned by ownerID matching the filter,
// newest date first.
func (r *PostgresTransactionRepository) List(ctx context.Context, ownerID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	query, args := buildTransactionListQuery(ownerID, filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}
	return transactions, rows.Err()
}

// GetByID retrieves one transaction iff it exists and is owned by ownerID.
func (r *PostgresTransactionRepository) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`
	tx, err := scanTransaction(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// Update performs an owner-scoped partial update. Absent patch fields keep
// their stored values.
func (r *PostgresTransactionRepository) Update(ctx context.Context, ownerID string, id uuid.UUID, patch domain.TransactionInput) (*domain.Transaction, error) {
	query := `
		UPDATE transactions
		SET
			date = COALESCE($3, date),
			type = COALESCE($4, type),
			category_id = COALESCE($5, category_id),
			description = COALESCE($6, description),
			amount = COALESCE($7, amount),
			payment_method = COALESCE($8, payment_method),
			recurring = COALESCE($9, recurring),
			recurring_interval = COALESCE($10, recurring_interval),
			need_or_want = COALESCE($11, need_or_want),
			notes = COALESCE($12, notes),
			running_balance = COALESCE($13, running_balance),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + transactionColumns
	tx, err := scanTransaction(r.db.QueryRow(ctx, query,
		id, ownerID,
		patch.Date,
		patch.Type,
		patch.CategoryID,
		patch.Description,
		patch.Amount,
		patch.PaymentMethod,
		patch.Recurring,
		patch.RecurringInterval,
		patch.NeedOrWant,
		patch.Notes,
		patch.RunningBalance,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// Delete hard-deletes an owner-scoped transaction.
func (r *PostgresTransactionRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// MonthlySummary groups one year of transactions by (month, type) and sums
// their amounts.
func (r *PostgresTransactionRepository) MonthlySummary(ctx context.Context, ownerID string, year int) ([]domain.MonthlySummaryRow, error) {
	query := `
		SELECT EXTRACT(MONTH FROM date)::int AS month, type, SUM(amount) AS total_amount
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date < $3
		GROUP BY 1, 2
		ORDER BY 1, 2
	`
	start, end := yearRange(year)
	rows, err := r.db.Query(ctx, query, ownerID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := []domain.MonthlySummaryRow{}
	for rows.Next() {
		var row domain.MonthlySummaryRow
		if err := rows.Scan(&row.Month, &row.Type, &row.TotalAmount); err != nil {
			return nil, err
		}
		summary = append(summary, row)
	}
	return summary, rows.Err()
}

// YearlySummary groups the user's full history by (year, type).
func (r *PostgresTransactionRepository) YearlySummary(ctx context.Context, ownerID string) ([]domain.YearlySummaryRow, error) {
	query := `
		SELECT EXTRACT(YEAR FROM date)::int AS year, type, SUM(amount) AS total_amount
		FROM transactions
		WHERE user_id = $1
		GROUP BY 1, 2
		ORDER BY 1, 2
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := []domain.YearlySummaryRow{}
	for rows.Next() {
		var row domain.YearlySummaryRow
		if err := rows.Scan(&row.Year, &row.Type, &row.TotalAmount); err != nil {
			return nil, err
		}
		summary = append(summary, row)
	}
	return summary, rows.Err()
}

// DashboardStats computes lifetime income/expense totals and the net balance
// in one pass.
func (r *PostgresTransactionRepository) DashboardStats(ctx context.Context, ownerID string) (*domain.DashboardStats, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0) AS total_income,
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0) AS total_expenses
		FROM transactions
		WHERE user_id = $1
	`
	var stats domain.DashboardStats
	if err := r.db.QueryRow(ctx, query, ownerID).Scan(&stats.TotalIncome, &stats.TotalExpenses); err != nil {
		return nil, err
	}
	stats.NetBalance = stats.TotalIncome - stats.TotalExpenses
	return &stats, nil
}

// ExpenseByCategory totals expense transactions per category.
func (r *PostgresTransactionRepository) ExpenseByCategory(ctx context.Context, ownerID string) ([]domain.CategoryTotal, error) {
	query := `
		SELECT category_id::text, SUM(amount) AS total
		FROM transactions
		WHERE user_id = $1 AND type = 'expense'
		GROUP BY category_id
		ORDER BY total DESC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []domain.CategoryTotal{}
	for rows.Next() {
		var row domain.CategoryTotal
		if err := rows.Scan(&row.CategoryID, &row.Total); err != nil {
			return nil, err
		}
		totals = append(totals, row)
	}
	return totals, rows.Err()
}

// ExpenseByNeedWant totals expense transactions per need/want tag. When
// excludeUntagged is set, "n/a" rows are left out of the breakdown.
func (r *PostgresTransactionRepository) ExpenseByNeedWant(ctx context.Context, ownerID string, excludeUntagged bool) ([]domain.NeedWantTotal, error) {
	query := `
		SELECT need_or_want, SUM(amount) AS total
		FROM transactions
		WHERE user_id = $1 AND type = 'expense'
	`
	if excludeUntagged {
		query += ` AND need_or_want <> 'n/a'`
	}
	query += `
		GROUP BY need_or_want
		ORDER BY total DESC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []domain.NeedWantTotal{}
	for rows.Next() {
		var row domain.NeedWantTotal
		if err := rows.Scan(&row.NeedOrWant, &row.Total); err != nil {
			return nil, err
		}
		totals = append(totals, row)
	}
	return totals, rows.Err()
}

// BalanceOverTime computes the per-month net of income minus expense within
// one year, in month order. Months without transactions are omitted.
func (r *PostgresTransactionRepository) BalanceOverTime(ctx context.Context, ownerID string, year int) ([]domain.BalancePoint, error) {
	query := `
		SELECT
			'M' || EXTRACT(MONTH FROM date)::int AS month,
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0)
				- COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0) AS balance
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date < $3
		GROUP BY EXTRACT(MONTH FROM date)
		ORDER BY EXTRACT(MONTH FROM date)
	`
	start, end := yearRange(year)
	rows, err := r.db.Query(ctx, query, ownerID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []domain.BalancePoint{}
	for rows.Next() {
		var point domain.BalancePoint
		if err := rows.Scan(&point.Month, &point.Balance); err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return points, rows.Err()
}

// TypeStats computes count, sum, and average per transaction type.
func (r *PostgresTransactionRepository) TypeStats(ctx context.Context, ownerID string) ([]domain.TypeStats, error) {
	query := `
		SELECT type, COUNT(*) AS count, SUM(amount) AS total, AVG(amount) AS avg
		FROM transactions
		WHERE user_id = $1
		GROUP BY type
		ORDER BY type
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []domain.TypeStats{}
	for rows.Next() {
		var row domain.TypeStats
		if err := rows.Scan(&row.Type, &row.Count, &row.Total, &row.Average); err != nil {
			return nil, err
		}
		stats = append(stats, row)
	}
	return stats, rows.Err()
}
