package api

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fintrackr/finance-api/internal/domain"
	"github.com/fintrackr/finance-api/internal/store"
)

// fakeTransactionRepo keeps transactions in a slice and records the owner ids
// it was queried with, so tests can assert ownership scoping.
type fakeTransactionRepo struct {
	transactions []domain.Transaction
	queriedOwner string

	monthlyRows []domain.MonthlySummaryRow
	yearlyRows  []domain.YearlySummaryRow
	stats       domain.DashboardStats
	needWant    []domain.NeedWantTotal
	byCategory  []domain.CategoryTotal
	balances    []domain.BalancePoint
	typeStats   []domain.TypeStats
	err         error
}

func (f *fakeTransactionRepo) Create(_ context.Context, tx *domain.Transaction) error {
	if f.err != nil {
		return f.err
	}
	f.transactions = append(f.transactions, *tx)
	return nil
}

func (f *fakeTransactionRepo) List(_ context.Context, ownerID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.queriedOwner = ownerID
	var out []domain.Transaction
	for _, tx := range f.transactions {
		if tx.UserID != ownerID {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if filter.Recurring != nil && tx.Recurring != *filter.Recurring {
			continue
		}
		if filter.CategoryID != nil && (tx.CategoryID == nil || *tx.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.From != nil && tx.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !tx.Date.Before(*filter.To) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (f *fakeTransactionRepo) GetByID(_ context.Context, ownerID string, id uuid.UUID) (*domain.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.queriedOwner = ownerID
	for i := range f.transactions {
		if f.transactions[i].ID == id && f.transactions[i].UserID == ownerID {
			return &f.transactions[i], nil
		}
	}
	return nil, store.ErrTransactionNotFound
}

func (f *fakeTransactionRepo) Update(ctx context.Context, ownerID string, id uuid.UUID, patch domain.TransactionInput) (*domain.Transaction, error) {
	tx, err := f.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Notes != nil {
		tx.Notes = *patch.Notes
	}
	return tx, nil
}

func (f *fakeTransactionRepo) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	_, err := f.GetByID(ctx, ownerID, id)
	return err
}

func (f *fakeTransactionRepo) MonthlySummary(_ context.Context, ownerID string, _ int) ([]domain.MonthlySummaryRow, error) {
	f.queriedOwner = ownerID
	return f.monthlyRows, f.err
}

func (f *fakeTransactionRepo) YearlySummary(_ context.Context, ownerID string) ([]domain.YearlySummaryRow, error) {
	f.queriedOwner = ownerID
	return f.yearlyRows, f.err
}

func (f *fakeTransactionRepo) DashboardStats(_ context.Context, ownerID string) (*domain.DashboardStats, error) {
	f.queriedOwner = ownerID
	if f.err != nil {
		return nil, f.err
	}
	stats := f.stats
	return &stats, nil
}

func (f *fakeTransactionRepo) ExpenseByCategory(_ context.Context, ownerID string) ([]domain.CategoryTotal, error) {
	f.queriedOwner = ownerID
	return f.byCategory, f.err
}

func (f *fakeTransactionRepo) ExpenseByNeedWant(_ context.Context, ownerID string, _ bool) ([]domain.NeedWantTotal, error) {
	f.queriedOwner = ownerID
	return f.needWant, f.err
}

func (f *fakeTransactionRepo) BalanceOverTime(_ context.Context, ownerID string, _ int) ([]domain.BalancePoint, error) {
	f.queriedOwner = ownerID
	return f.balances, f.err
}

func (f *fakeTransactionRepo) TypeStats(_ context.Context, ownerID string) ([]domain.TypeStats, error) {
	f.queriedOwner = ownerID
	return f.typeStats, f.err
}

type fakeCategoryRepo struct {
	categories []domain.Category
	err        error
}

func (f *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.categories {
		if existing.UserID == category.UserID && existing.Name == category.Name && existing.Type == category.Type {
			return store.ErrDuplicateCategory
		}
	}
	f.categories = append(f.categories, *category)
	return nil
}

func (f *fakeCategoryRepo) List(_ context.Context, ownerID string) ([]domain.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Category
	for _, c := range f.categories {
		if c.UserID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) ListByType(ctx context.Context, ownerID string, categoryType string) ([]domain.Category, error) {
	all, err := f.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var out []domain.Category
	for _, c := range all {
		if c.Type == categoryType {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, ownerID string, id uuid.UUID, patch domain.CategoryInput) (*domain.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.categories {
		if f.categories[i].ID == id && f.categories[i].UserID == ownerID {
			if patch.Name != nil {
				f.categories[i].Name = *patch.Name
			}
			return &f.categories[i], nil
		}
	}
	return nil, store.ErrCategoryNotFound
}

func (f *fakeCategoryRepo) Delete(_ context.Context, ownerID string, id uuid.UUID) error {
	for i := range f.categories {
		if f.categories[i].ID == id && f.categories[i].UserID == ownerID {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return nil
		}
	}
	return store.ErrCategoryNotFound
}

type fakeGoalRepo struct {
	goals []domain.SavingsGoal
	err   error
}

func (f *fakeGoalRepo) Create(_ context.Context, goal *domain.SavingsGoal) error {
	if f.err != nil {
		return f.err
	}
	f.goals = append(f.goals, *goal)
	return nil
}

func (f *fakeGoalRepo) List(_ context.Context, ownerID string) ([]domain.SavingsGoal, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.SavingsGoal
	for _, g := range f.goals {
		if g.UserID == ownerID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGoalRepo) ListByStatus(ctx context.Context, ownerID string, status string) ([]domain.SavingsGoal, error) {
	all, err := f.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var out []domain.SavingsGoal
	for _, g := range all {
		if g.Status == status {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGoalRepo) GetByID(_ context.Context, ownerID string, id uuid.UUID) (*domain.SavingsGoal, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.goals {
		if f.goals[i].ID == id && f.goals[i].UserID == ownerID {
			return &f.goals[i], nil
		}
	}
	return nil, store.ErrGoalNotFound
}

func (f *fakeGoalRepo) Update(ctx context.Context, ownerID string, id uuid.UUID, patch domain.SavingsGoalInput) (*domain.SavingsGoal, error) {
	goal, err := f.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		goal.Name = *patch.Name
	}
	if patch.Status != nil {
		goal.Status = *patch.Status
	}
	return goal, nil
}

func (f *fakeGoalRepo) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	_, err := f.GetByID(ctx, ownerID, id)
	return err
}

func (f *fakeGoalRepo) AddProgress(ctx context.Context, ownerID string, id uuid.UUID, amountToAdd float64) (*domain.SavingsGoal, error) {
	goal, err := f.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	goal.CurrentAmount += amountToAdd
	if goal.CurrentAmount >= goal.TargetAmount && goal.Status != domain.GoalCompleted {
		goal.Status = domain.GoalCompleted
	}
	return goal, nil
}

type fakeDebtRepo struct {
	records []domain.DebtRecord
	err     error
}

func (f *fakeDebtRepo) Create(_ context.Context, record *domain.DebtRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeDebtRepo) List(_ context.Context, ownerID string) ([]domain.DebtRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.DebtRecord
	for _, rec := range f.records {
		if rec.UserID == ownerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeDebtRepo) ListByStatus(ctx context.Context, ownerID string, status string) ([]domain.DebtRecord, error) {
	all, err := f.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var out []domain.DebtRecord
	for _, rec := range all {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeDebtRepo) GetByID(_ context.Context, ownerID string, id uuid.UUID) (*domain.DebtRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.records {
		if f.records[i].ID == id && f.records[i].UserID == ownerID {
			return &f.records[i], nil
		}
	}
	return nil, store.ErrDebtRecordNotFound
}

func (f *fakeDebtRepo) Update(ctx context.Context, ownerID string, id uuid.UUID, patch domain.DebtRecordInput) (*domain.DebtRecord, error) {
	record, err := f.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil {
		record.Status = *patch.Status
	}
	if patch.AmountPaid != nil {
		record.AmountPaid = *patch.AmountPaid
	}
	return record, nil
}

func (f *fakeDebtRepo) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	_, err := f.GetByID(ctx, ownerID, id)
	return err
}

type fakeUserRepo struct {
	users map[string]*domain.User
	err   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (f *fakeUserRepo) FindBySubjectID(_ context.Context, subjectID string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[subjectID]
	if !ok || user.Deleted {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Sync(_ context.Context, identity domain.Identity, req domain.SyncRequest) (*domain.User, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	now := time.Now().UTC()
	if user, ok := f.users[identity.SubjectID]; ok {
		user.LoginCount++
		user.LastLogin = &now
		if identity.Email != "" {
			user.Email = identity.Email
		}
		return user, false, nil
	}
	user := &domain.User{
		ID:         uuid.New(),
		SubjectID:  identity.SubjectID,
		Email:      identity.Email,
		Name:       identity.Name,
		LoginCount: 1,
		LastLogin:  &now,
	}
	if user.Email == "" {
		user.Email = req.Email
	}
	f.users[identity.SubjectID] = user
	return user, true, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, subjectID string, patch domain.UserProfileUpdate) (*domain.User, error) {
	user, err := f.FindBySubjectID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Currency != nil {
		user.Currency = *patch.Currency
	}
	return user, nil
}

func (f *fakeUserRepo) UpdateNotifications(ctx context.Context, subjectID string, settings domain.NotificationSettings) (*domain.User, error) {
	user, err := f.FindBySubjectID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	user.Notifications = settings
	return user, nil
}

func (f *fakeUserRepo) UpdateSecurity(ctx context.Context, subjectID string, settings domain.SecuritySettings) (*domain.User, error) {
	user, err := f.FindBySubjectID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	user.Security = settings
	return user, nil
}

func (f *fakeUserRepo) SoftDelete(ctx context.Context, subjectID string) error {
	user, err := f.FindBySubjectID(ctx, subjectID)
	if err != nil {
		return err
	}
	user.Deleted = true
	return nil
}

// fakeSessionService verifies tokens against a fixed map and records session
// lifecycle calls.
type fakeSessionService struct {
	identities map[string]*domain.Identity
	minted     []string
	revoked    []string
	mintErr    error
}

func newFakeSessionService() *fakeSessionService {
	return &fakeSessionService{identities: map[string]*domain.Identity{}}
}

func (f *fakeSessionService) VerifyToken(_ context.Context, token string) (*domain.Identity, error) {
	identity, ok := f.identities[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return identity, nil
}

func (f *fakeSessionService) CreateSession(_ context.Context, idToken string, _ time.Duration) (string, error) {
	if f.mintErr != nil {
		return "", f.mintErr
	}
	session := "session-for-" + idToken
	f.minted = append(f.minted, session)
	f.identities[session] = f.identities[idToken]
	return session, nil
}

func (f *fakeSessionService) RevokeSession(_ context.Context, sessionToken string) error {
	f.revoked = append(f.revoked, sessionToken)
	return nil
}

func newTestHandlers(txRepo *fakeTransactionRepo, catRepo *fakeCategoryRepo, goalRepo *fakeGoalRepo, debtRepo *fakeDebtRepo, userRepo *fakeUserRepo, sessions *fakeSessionService) *Handlers {
	return NewHandlers(HandlersConfig{
		Users:        userRepo,
		Transactions: txRepo,
		Categories:   catRepo,
		Goals:        goalRepo,
		Debts:        debtRepo,
		Sessions:     sessions,
		CookieName:   "ft_session",
		CookieSecret: "test-secret",
		SessionTTL:   24 * time.Hour,
	})
}
