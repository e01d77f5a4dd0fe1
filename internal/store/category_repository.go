/**
 * @description
 * PostgreSQL implementation of CategoryRepository. The (user_id, name, type)
 * unique constraint backs the duplicate-category conflict: inserts and updates
 * that would collide surface ErrDuplicateCategory for the handler to map to
 * a 409.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintrackr/finance-api/internal/domain"
)

// PostgresCategoryRepository is the pgx-backed CategoryRepository.
type PostgresCategoryRepository struct {
	db *pgxpool.Pool
}

// NewPostgresCategoryRepository creates a new instance of PostgresCategoryRepository.
func NewPostgresCategoryRepository(db *pgxpool.Pool) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

const categoryColumns = `
	id, user_id, name, type, COALESCE(icon, '') AS icon,
	COALESCE(color, '') AS color, is_default, created_at, updated_at`

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color,
		&c.IsDefault, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts a new category row.
func (r *PostgresCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, type, icon, color, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		category.ID,
		category.UserID,
		category.Name,
		category.Type,
		category.Icon,
		category.Color,
		category.IsDefault,
	).Scan(&category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCategory
		}
		return err
	}
	return nil
}

// List retrieves all categories owned by ownerID.
func (r *PostgresCategoryRepository) List(ctx context.Context, ownerID string) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = $1 ORDER BY name`
	return r.queryCategories(ctx, query, ownerID)
}

// ListByType retrieves the owner's categories of one transaction type.
func (r *PostgresCategoryRepository) ListByType(ctx context.Context, ownerID string, categoryType string) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = $1 AND type = $2 ORDER BY name`
	return r.queryCategories(ctx, query, ownerID, categoryType)
}

func (r *PostgresCategoryRepository) queryCategories(ctx context.Context, query string, args ...interface{}) ([]domain.Category, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// Update performs an owner-scoped partial update.
func (r *PostgresCategoryRepository) Update(ctx context.Context, ownerID string, id uuid.UUID, patch domain.CategoryInput) (*domain.Category, error) {
	query := `
		UPDATE categories
		SET
			name = COALESCE($3, name),
			type = COALESCE($4, type),
			icon = COALESCE($5, icon),
			color = COALESCE($6, color),
			is_default = COALESCE($7, is_default),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + categoryColumns
	c, err := scanCategory(r.db.QueryRow(ctx, query,
		id, ownerID,
		patch.Name,
		patch.Type,
		patch.Icon,
		patch.Color,
		patch.IsDefault,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateCategory
		}
		return nil, err
	}
	return c, nil
}

// Delete hard-deletes an owner-scoped category.
func (r *PostgresCategoryRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
