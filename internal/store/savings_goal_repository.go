/**
 * @description
 * PostgreSQL implementation of SavingsGoalRepository. AddProgress is expressed
 * as a single conditional UPDATE so the increment and the status transition
 * commit atomically; there is no load-mutate-save window for concurrent
 * updates to interleave with.
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

// PostgresSavingsGoalRepository is the pgx-backed SavingsGoalRepository.
type PostgresSavingsGoalRepository struct {
	db *pgxpool.Pool
}

// NewPostgresSavingsGoalRepository creates a new instance of PostgresSavingsGoalRepository.
func NewPostgresSavingsGoalRepository(db *pgxpool.Pool) *PostgresSavingsGoalRepository {
	return &PostgresSavingsGoalRepository{db: db}
}

const goalColumns = `
	id, user_id, name, target_amount, current_amount, deadline,
	COALESCE(category, '') AS category, goal_type, status,
	COALESCE(notes, '') AS notes, created_at, updated_at`

func scanGoal(row pgx.Row) (*domain.SavingsGoal, error) {
	var g domain.SavingsGoal
	err := row.Scan(
		&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount,
		&g.Deadline, &g.Category, &g.GoalType, &g.Status, &g.Notes,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts a new savings goal row.
func (r *PostgresSavingsGoalRepository) Create(ctx context.Context, goal *domain.SavingsGoal) error {
	query := `
		INSERT INTO savings_goals (
			id, user_id, name, target_amount, current_amount, deadline,
			category, goal_type, status, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		goal.ID,
		goal.UserID,
		goal.Name,
		goal.TargetAmount,
		goal.CurrentAmount,
		goal.Deadline,
		goal.Category,
		goal.GoalType,
		goal.Status,
		goal.Notes,
	).Scan(&goal.CreatedAt, &goal.UpdatedAt)
}

// List retrieves all goals owned by ownerID, newest first.
func (r *PostgresSavingsGoalRepository) List(ctx context.Context, ownerID string) ([]domain.SavingsGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM savings_goals WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryGoals(ctx, query, ownerID)
}

// ListByStatus retrieves the owner's goals in one status, newest first.
func (r *PostgresSavingsGoalRepository) ListByStatus(ctx context.Context, ownerID string, status string) ([]domain.SavingsGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM savings_goals WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC`
	return r.queryGoals(ctx, query, ownerID, status)
}

func (r *PostgresSavingsGoalRepository) queryGoals(ctx context.Context, query string, args ...interface{}) ([]domain.SavingsGoal, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []domain.SavingsGoal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// GetByID retrieves one goal iff it exists and is owned by ownerID.
func (r *PostgresSavingsGoalRepository) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*domain.SavingsGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM savings_goals WHERE id = $1 AND user_id = $2`
	g, err := scanGoal(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return g, nil
}

// Update performs an owner-scoped partial update of the goal's plain fields.
// Status transitions to completed happen through AddProgress, not here.
func (r *PostgresSavingsGoalRepository) Update(ctx context.Context, ownerID string, id uuid.UUID, patch domain.SavingsGoalInput) (*domain.SavingsGoal, error) {
	query := `
		UPDATE savings_goals
		SET
			name = COALESCE($3, name),
			target_amount = COALESCE($4, target_amount),
			current_amount = COALESCE($5, current_amount),
			deadline = COALESCE($6, deadline),
			category = COALESCE($7, category),
			goal_type = COALESCE($8, goal_type),
			status = COALESCE($9, status),
			notes = COALESCE($10, notes),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + goalColumns
	g, err := scanGoal(r.db.QueryRow(ctx, query,
		id, ownerID,
		patch.Name,
		patch.TargetAmount,
		patch.CurrentAmount,
		patch.Deadline,
		patch.Category,
		patch.GoalType,
		patch.Status,
		patch.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return g, nil
}

// Delete hard-deletes an owner-scoped goal.
func (r *PostgresSavingsGoalRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM savings_goals WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}

// AddProgress atomically increments current_amount and flips the status to
// completed the moment the target is reached. Repeating the call once
// completed leaves the status unchanged.
func (r *PostgresSavingsGoalRepository) AddProgress(ctx context.Context, ownerID string, id uuid.UUID, amountToAdd float64) (*domain.SavingsGoal, error) {
	query := `
		UPDATE savings_goals
		SET
			current_amount = current_amount + $3,
			status = CASE
				WHEN current_amount + $3 >= target_amount AND status <> 'completed' THEN 'completed'
				ELSE status
			END,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + goalColumns
	g, err := scanGoal(r.db.QueryRow(ctx, query, id, ownerID, amountToAdd))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return g, nil
}
