/**
 * @description
 * PostgreSQL implementation of DebtRecordRepository. Same owner-scoped query
 * discipline as the other repositories: record id and owner id always travel
 * together in the WHERE clause.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintrackr/finance-api/internal/domain"
)

// PostgresDebtRecordRepository is the pgx-backed DebtRecordRepository.
type PostgresDebtRecordRepository struct {
	db *pgxpool.Pool
}

// NewPostgresDebtRecordRepository creates a new instance of PostgresDebtRecordRepository.
func NewPostgresDebtRecordRepository(db *pgxpool.Pool) *PostgresDebtRecordRepository {
	return &PostgresDebtRecordRepository{db: db}
}

const debtColumns = `
	id, user_id, contact_name, COALESCE(contact_email, '') AS contact_email,
	COALESCE(contact_phone, '') AS contact_phone, amount, direction,
	COALESCE(description, '') AS description, start_date, due_date, status,
	amount_paid, COALESCE(notes, '') AS notes, created_at, updated_at`

func scanDebtRecord(row pgx.Row) (*domain.DebtRecord, error) {
	var d domain.DebtRecord
	err := row.Scan(
		&d.ID, &d.UserID, &d.ContactName, &d.ContactEmail, &d.ContactPhone,
		&d.Amount, &d.Direction, &d.Description, &d.StartDate, &d.DueDate,
		&d.Status, &d.AmountPaid, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new debt record row.
func (r *PostgresDebtRecordRepository) Create(ctx context.Context, record *domain.DebtRecord) error {
	query := `
		INSERT INTO debt_records (
			id, user_id, contact_name, contact_email, contact_phone, amount,
			direction, description, start_date, due_date, status, amount_paid, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		record.ID,
		record.UserID,
		record.ContactName,
		record.ContactEmail,
		record.ContactPhone,
		record.Amount,
		record.Direction,
		record.Description,
		record.StartDate,
		record.DueDate,
		record.Status,
		record.AmountPaid,
		record.Notes,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
}

// List retrieves all debt records owned by ownerID, most recent start first.
func (r *PostgresDebtRecordRepository) List(ctx context.Context, ownerID string) ([]domain.DebtRecord, error) {
	query := `SELECT ` + debtColumns + ` FROM debt_records WHERE user_id = $1 ORDER BY start_date DESC`
	return r.queryDebts(ctx, query, ownerID)
}

// ListByStatus retrieves the owner's records in one status.
func (r *PostgresDebtRecordRepository) ListByStatus(ctx context.Context, ownerID string, status string) ([]domain.DebtRecord, error) {
	query := `SELECT ` + debtColumns + ` FROM debt_records WHERE user_id = $1 AND status = $2 ORDER BY start_date DESC`
	return r.queryDebts(ctx, query, ownerID, status)
}

func (r *PostgresDebtRecordRepository) queryDebts(ctx context.Context, query string, args ...interface{}) ([]domain.DebtRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.DebtRecord{}
	for rows.Next() {
		d, err := scanDebtRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *d)
	}
	return records, rows.Err()
}

// GetByID retrieves one record iff it exists and is owned by ownerID.
func (r *PostgresDebtRecordRepository) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*domain.DebtRecord, error) {
	query := `SELECT ` + debtColumns + ` FROM debt_records WHERE id = $1 AND user_id = $2`
	d, err := scanDebtRecord(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDebtRecordNotFound
		}
		return nil, err
	}
	return d, nil
}

// Update performs an owner-scoped partial update.
func (r *PostgresDebtRecordRepository) Update(ctx context.Context, ownerID string, id uuid.UUID, patch domain.DebtRecordInput) (*domain.DebtRecord, error) {
	query := `
		UPDATE debt_records
		SET
			contact_name = COALESCE($3, contact_name),
			contact_email = COALESCE($4, contact_email),
			contact_phone = COALESCE($5, contact_phone),
			amount = COALESCE($6, amount),
			direction = COALESCE($7, direction),
			description = COALESCE($8, description),
			start_date = COALESCE($9, start_date),
			due_date = COALESCE($10, due_date),
			status = COALESCE($11, status),
			amount_paid = COALESCE($12, amount_paid),
			notes = COALESCE($13, notes),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + debtColumns
	d, err := scanDebtRecord(r.db.QueryRow(ctx, query,
		id, ownerID,
		patch.ContactName,
		patch.ContactEmail,
		patch.ContactPhone,
		patch.Amount,
		patch.Direction,
		patch.Description,
		patch.StartDate,
		patch.DueDate,
		patch.Status,
		patch.AmountPaid,
		patch.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDebtRecordNotFound
		}
		return nil, err
	}
	return d, nil
}

// Delete hard-deletes an owner-scoped debt record.
func (r *PostgresDebtRecordRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM debt_records WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDebtRecordNotFound
	}
	return nil
}
