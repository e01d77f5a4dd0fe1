/**
 * @description
 * This file defines the repository interfaces and sentinel errors for the
 * service's data layer. Handlers depend on these interfaces rather than the
 * concrete PostgreSQL implementations so that tests can substitute fakes.
 *
 * Every accessor that touches an owned entity takes the owner's subject id as
 * a mandatory parameter: the ownership filter is part of the query, never a
 * separate check, so a lookup against another user's record behaves exactly
 * like a miss.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/google/uuid: Entity identifiers.
 * - internal/domain: Entity and DTO definitions.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/fintrackr/finance-api/internal/domain"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrGoalNotFound        = errors.New("savings goal not found")
	ErrDebtRecordNotFound  = errors.New("debt record not found")
	ErrDuplicateCategory   = errors.New("category already exists")
	ErrDuplicateUser       = errors.New("user already exists")
)

// TransactionRepository persists transactions and computes the aggregation
// pipelines the dashboard and analytics endpoints are built on.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	List(ctx context.Context, ownerID string, filter domain.TransactionFilter) ([]domain.Transaction, error)
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*domain.Transaction, error)
	Update(ctx context.Context, ownerID string, id uuid.UUID, patch domain.TransactionInput) (*domain.Transaction, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error

	MonthlySummary(ctx context.Context, ownerID string, year int) ([]domain.MonthlySummaryRow, error)
	YearlySummary(ctx context.Context, ownerID string) ([]domain.YearlySummaryRow, error)
	DashboardStats(ctx context.Context, ownerID string) (*domain.DashboardStats, error)
	ExpenseByCategory(ctx context.Context, ownerID string) ([]domain.CategoryTotal, error)
	ExpenseByNeedWant(ctx context.Context, ownerID string, excludeUntagged bool) ([]domain.NeedWantTotal, error)
	BalanceOverTime(ctx context.Context, ownerID string, year int) ([]domain.BalancePoint, error)
	TypeStats(ctx context.Context, ownerID string) ([]domain.TypeStats, error)
}

// CategoryRepository persists user-defined categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	List(ctx context.Context, ownerID string) ([]domain.Category, error)
	ListByType(ctx context.Context, ownerID string, categoryType string) ([]domain.Category, error)
	Update(ctx context.Context, ownerID string, id uuid.UUID, patch domain.CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// SavingsGoalRepository persists savings goals. AddProgress is the one
// operation with business logic: a single conditional increment that flips the
// status to completed when the target is reached.
type SavingsGoalRepository interface {
	Create(ctx context.Context, goal *domain.SavingsGoal) error
	List(ctx context.Context, ownerID string) ([]domain.SavingsGoal, error)
	ListByStatus(ctx context.Context, ownerID string, status string) ([]domain.SavingsGoal, error)
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*domain.SavingsGoal, error)
	Update(ctx context.Context, ownerID string, id uuid.UUID, patch domain.SavingsGoalInput) (*domain.SavingsGoal, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	AddProgress(ctx context.Context, ownerID string, id uuid.UUID, amountToAdd float64) (*domain.SavingsGoal, error)
}

// DebtRecordRepository persists debt records.
type DebtRecordRepository interface {
	Create(ctx context.Context, record *domain.DebtRecord) error
	List(ctx context.Context, ownerID string) ([]domain.DebtRecord, error)
	ListByStatus(ctx context.Context, ownerID string, status string) ([]domain.DebtRecord, error)
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*domain.DebtRecord, error)
	Update(ctx context.Context, ownerID string, id uuid.UUID, patch domain.DebtRecordInput) (*domain.DebtRecord, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// UserRepository persists the profile record keyed by the provider subject id.
// Sync implements create-or-refresh on login; deletes are soft.
type UserRepository interface {
	FindBySubjectID(ctx context.Context, subjectID string) (*domain.User, error)
	Sync(ctx context.Context, identity domain.Identity, req domain.SyncRequest) (user *domain.User, created bool, err error)
	UpdateProfile(ctx context.Context, subjectID string, patch domain.UserProfileUpdate) (*domain.User, error)
	UpdateNotifications(ctx context.Context, subjectID string, settings domain.NotificationSettings) (*domain.User, error)
	UpdateSecurity(ctx context.Context, subjectID string, settings domain.SecuritySettings) (*domain.User, error)
	SoftDelete(ctx context.Context, subjectID string) error
}
