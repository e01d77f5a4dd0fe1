package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fintrackr/finance-api/internal/app"
	"github.com/fintrackr/finance-api/internal/domain"
)

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func newTestServer(h *Handlers, sessions *fakeSessionService) http.Handler {
	return NewRouter(RouterConfig{
		Handlers: h,
		Session: SessionConfig{
			CookieName:   "ft_session",
			CookieSecret: "test-secret",
			Verifier:     sessions,
		},
		Limiter:        NewRateLimiter(app.NewMemoryRateLimitStore(), 15*time.Minute),
		GeneralMax:     100,
		AuthMax:        5,
		WriteMax:       20,
		Cache:          NewResponseCache(app.NewMemoryCacheStore(), 5*time.Minute),
		FrontendOrigin: "http://localhost:3000",
		Version:        "test",
	})
}

func newTransactionTestEnv() (http.Handler, *fakeTransactionRepo) {
	txRepo := &fakeTransactionRepo{}
	sessions := newFakeSessionService()
	sessions.identities["token-alice"] = &domain.Identity{SubjectID: "alice", Email: "alice@example.com"}
	sessions.identities["token-bob"] = &domain.Identity{SubjectID: "bob", Email: "bob@example.com"}

	h := newTestHandlers(txRepo, &fakeCategoryRepo{}, &fakeGoalRepo{}, &fakeDebtRepo{}, newFakeUserRepo(), sessions)
	return newTestServer(h, sessions), txRepo
}

func doJSON(t *testing.T, server http.Handler, method, target, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("response is not an envelope: %v (body %q)", err, rec.Body.String())
		}
	}
	return rec, env
}

func TestCreateTransaction_RequiresAuth(t *testing.T) {
	server, _ := newTransactionTestEnv()

	rec, env := doJSON(t, server, http.MethodPost, "/api/transactions", "", `{"amount":10}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if env.Success {
		t.Fatal("expected success=false")
	}
}

func TestCreateTransaction_ValidatesRequiredFields(t *testing.T) {
	server, _ := newTransactionTestEnv()

	rec, env := doJSON(t, server, http.MethodPost, "/api/transactions", "token-alice", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	for _, field := range []string{"date", "type", "amount"} {
		if env.Details[field] == "" {
			t.Fatalf("expected validation detail for %s, got %v", field, env.Details)
		}
	}
}

func TestCreateTransaction_RejectsUnknownEnumValues(t *testing.T) {
	server, _ := newTransactionTestEnv()

	body := `{"date":"2025-03-10T00:00:00Z","type":"donation","amount":50}`
	rec, env := doJSON(t, server, http.MethodPost, "/api/transactions", "token-alice", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.Details["type"] == "" {
		t.Fatalf("expected type detail, got %v", env.Details)
	}
}

func TestCreateTransaction_RejectsNegativeAmount(t *testing.T) {
	server, _ := newTransactionTestEnv()

	body := `{"date":"2025-03-10T00:00:00Z","type":"expense","amount":-5}`
	rec, env := doJSON(t, server, http.MethodPost, "/api/transactions", "token-alice", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.Details["amount"] == "" {
		t.Fatalf("expected amount detail, got %v", env.Details)
	}
}

func TestCreateTransaction_StoresOwnerFromIdentity(t *testing.T) {
	server, txRepo := newTransactionTestEnv()

	body := `{"date":"2025-03-10T00:00:00Z","type":"expense","amount":50,"userId":"mallory"}`
	rec, _ := doJSON(t, server, http.MethodPost, "/api/transactions", "token-alice", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if len(txRepo.transactions) != 1 {
		t.Fatalf("expected 1 stored transaction, got %d", len(txRepo.transactions))
	}
	if txRepo.transactions[0].UserID != "alice" {
		t.Fatalf("expected owner alice regardless of body, got %q", txRepo.transactions[0].UserID)
	}
	if txRepo.transactions[0].PaymentMethod != domain.PaymentOther {
		t.Fatalf("expected default payment method, got %q", txRepo.transactions[0].PaymentMethod)
	}
	if txRepo.transactions[0].NeedOrWant != domain.NeedWantNotAppl {
		t.Fatalf("expected default need/want tag, got %q", txRepo.transactions[0].NeedOrWant)
	}
}

func TestListTransactions_IsolatesOwners(t *testing.T) {
	server, txRepo := newTransactionTestEnv()
	txRepo.transactions = []domain.Transaction{
		{ID: uuid.New(), UserID: "alice", Type: domain.TransactionExpense, Amount: 50, Date: time.Now()},
		{ID: uuid.New(), UserID: "bob", Type: domain.TransactionIncome, Amount: 900, Date: time.Now()},
	}

	rec, env := doJSON(t, server, http.MethodGet, "/api/transactions", "token-alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Transactions []domain.Transaction `json:"transactions"`
		Count        int                  `json:"count"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if payload.Count != 1 {
		t.Fatalf("expected 1 transaction for alice, got %d", payload.Count)
	}
	if payload.Transactions[0].UserID != "alice" {
		t.Fatalf("expected alice's transaction, got owner %q", payload.Transactions[0].UserID)
	}
}

func TestGetTransaction_OtherOwnersRecordIs404(t *testing.T) {
	server, txRepo := newTransactionTestEnv()
	bobsID := uuid.New()
	txRepo.transactions = []domain.Transaction{
		{ID: bobsID, UserID: "bob", Type: domain.TransactionIncome, Amount: 900, Date: time.Now()},
	}

	rec, env := doJSON(t, server, http.MethodGet, "/api/transactions/"+bobsID.String(), "token-alice", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another owner's record, got %d", rec.Code)
	}
	if env.Error == "" {
		t.Fatal("expected error message in envelope")
	}
}

func TestListTransactionsByType_RejectsUnknownType(t *testing.T) {
	server, _ := newTransactionTestEnv()

	rec, _ := doJSON(t, server, http.MethodGet, "/api/transactions/by-type/donation", "token-alice", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMonthlySummary_ReturnsYearAndRows(t *testing.T) {
	server, txRepo := newTransactionTestEnv()
	txRepo.monthlyRows = []domain.MonthlySummaryRow{
		{Month: 3, Type: domain.TransactionExpense, TotalAmount: 50},
	}

	rec, env := doJSON(t, server, http.MethodGet, "/api/transactions/summary/monthly?year=2025", "token-alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Year    int                        `json:"year"`
		Summary []domain.MonthlySummaryRow `json:"summary"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if payload.Year != 2025 {
		t.Fatalf("expected year 2025, got %d", payload.Year)
	}
	if len(payload.Summary) != 1 || payload.Summary[0].Month != 3 || payload.Summary[0].TotalAmount != 50 {
		t.Fatalf("unexpected summary rows: %+v", payload.Summary)
	}
	if txRepo.queriedOwner != "alice" {
		t.Fatalf("expected summary scoped to alice, got %q", txRepo.queriedOwner)
	}
}

func TestUpdateTransaction_PartialUpdateKeepsOtherFields(t *testing.T) {
	server, txRepo := newTransactionTestEnv()
	id := uuid.New()
	txRepo.transactions = []domain.Transaction{
		{ID: id, UserID: "alice", Type: domain.TransactionExpense, Amount: 50, Notes: "groceries", Date: time.Now()},
	}

	rec, env := doJSON(t, server, http.MethodPut, "/api/transactions/"+id.String(), "token-alice", `{"amount":75}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Transaction domain.Transaction `json:"transaction"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if payload.Transaction.Amount != 75 {
		t.Fatalf("expected updated amount 75, got %f", payload.Transaction.Amount)
	}
	if payload.Transaction.Notes != "groceries" {
		t.Fatalf("expected notes preserved, got %q", payload.Transaction.Notes)
	}
}
