package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/fintrackr/finance-api/internal/domain"
)

func newDebtTestEnv() (http.Handler, *fakeDebtRepo) {
	debtRepo := &fakeDebtRepo{}
	sessions := newFakeSessionService()
	sessions.identities["token-alice"] = &domain.Identity{SubjectID: "alice", Email: "alice@example.com"}
	sessions.identities["token-bob"] = &domain.Identity{SubjectID: "bob", Email: "bob@example.com"}

	h := newTestHandlers(&fakeTransactionRepo{}, &fakeCategoryRepo{}, &fakeGoalRepo{}, debtRepo, newFakeUserRepo(), sessions)
	return newTestServer(h, sessions), debtRepo
}

func decodeDebtRecord(t *testing.T, env envelope) domain.DebtRecord {
	t.Helper()
	var payload struct {
		DebtRecord domain.DebtRecord `json:"debtRecord"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode debt record payload: %v", err)
	}
	return payload.DebtRecord
}

func decodeDebtRecords(t *testing.T, env envelope) []domain.DebtRecord {
	t.Helper()
	var payload struct {
		DebtRecords []domain.DebtRecord `json:"debtRecords"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode debt record list payload: %v", err)
	}
	return payload.DebtRecords
}

func TestCreateDebtRecord_RequiresCoreFields(t *testing.T) {
	server, _ := newDebtTestEnv()

	rec, env := doJSON(t, server, http.MethodPost, "/api/debt-records", "token-alice", `{"notes":"lunch"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	for _, field := range []string{"contactName", "amount", "direction"} {
		if _, ok := env.Details[field]; !ok {
			t.Fatalf("expected validation detail for %s, got %v", field, env.Details)
		}
	}
}

func TestCreateDebtRecord_RejectsUnknownDirection(t *testing.T) {
	server, _ := newDebtTestEnv()

	rec, env := doJSON(t, server, http.MethodPost, "/api/debt-records", "token-alice",
		`{"contactName":"Bob","amount":500,"direction":"gifted"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if _, ok := env.Details["direction"]; !ok {
		t.Fatalf("expected direction detail, got %v", env.Details)
	}
}

func TestCreateDebtRecord_AcceptsZeroAmount(t *testing.T) {
	server, _ := newDebtTestEnv()

	rec, env := doJSON(t, server, http.MethodPost, "/api/debt-records", "token-alice",
		`{"contactName":"Bob","amount":0,"direction":"lent"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for zero amount, got %d: %s", rec.Code, env.Error)
	}

	rec, env = doJSON(t, server, http.MethodPost, "/api/debt-records", "token-alice",
		`{"contactName":"Bob","amount":-1,"direction":"lent"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative amount, got %d", rec.Code)
	}
	if _, ok := env.Details["amount"]; !ok {
		t.Fatalf("expected amount detail, got %v", env.Details)
	}
}

func TestCreateDebtRecord_DefaultsToPending(t *testing.T) {
	server, _ := newDebtTestEnv()

	rec, env := doJSON(t, server, http.MethodPost, "/api/debt-records", "token-alice",
		`{"contactName":"Bob","amount":500,"direction":"lent"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, env.Error)
	}

	record := decodeDebtRecord(t, env)
	if record.Status != domain.DebtPending {
		t.Fatalf("expected pending status, got %q", record.Status)
	}
	if record.UserID != "alice" {
		t.Fatalf("expected owner alice, got %q", record.UserID)
	}
	if record.StartDate.IsZero() {
		t.Fatal("expected start date to default to now")
	}
	if record.AmountPaid != 0 {
		t.Fatalf("expected amountPaid 0, got %v", record.AmountPaid)
	}
}

func TestListDebtRecords_FiltersByStatusRoute(t *testing.T) {
	server, _ := newDebtTestEnv()

	bodies := []string{
		`{"contactName":"Bob","amount":500,"direction":"lent"}`,
		`{"contactName":"Carol","amount":200,"direction":"borrowed","status":"paid","amountPaid":200}`,
	}
	for _, body := range bodies {
		if rec, env := doJSON(t, server, http.MethodPost, "/api/debt-records", "token-alice", body); rec.Code != http.StatusCreated {
			t.Fatalf("seed create failed with %d: %s", rec.Code, env.Error)
		}
	}

	_, pendingEnv := doJSON(t, server, http.MethodGet, "/api/debt-records/pending", "token-alice", "")
	pending := decodeDebtRecords(t, pendingEnv)
	if len(pending) != 1 || pending[0].ContactName != "Bob" {
		t.Fatalf("expected only Bob pending, got %+v", pending)
	}

	_, paidEnv := doJSON(t, server, http.MethodGet, "/api/debt-records/paid", "token-alice", "")
	paid := decodeDebtRecords(t, paidEnv)
	if len(paid) != 1 || paid[0].ContactName != "Carol" {
		t.Fatalf("expected only Carol paid, got %+v", paid)
	}
}

func TestGetDebtRecord_OtherOwnerGets404(t *testing.T) {
	server, _ := newDebtTestEnv()

	_, created := doJSON(t, server, http.MethodPost, "/api/debt-records", "token-alice",
		`{"contactName":"Bob","amount":500,"direction":"lent"}`)
	record := decodeDebtRecord(t, created)

	rec, env := doJSON(t, server, http.MethodGet, "/api/debt-records/"+record.ID.String(), "token-bob", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another owner's record, got %d: %s", rec.Code, env.Error)
	}
}

func TestUpdateDebtRecord_MarksPaid(t *testing.T) {
	server, _ := newDebtTestEnv()

	_, created := doJSON(t, server, http.MethodPost, "/api/debt-records", "token-alice",
		`{"contactName":"Bob","amount":500,"direction":"lent"}`)
	record := decodeDebtRecord(t, created)

	rec, env := doJSON(t, server, http.MethodPut, "/api/debt-records/"+record.ID.String(), "token-alice",
		`{"status":"paid","amountPaid":500}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, env.Error)
	}

	updated := decodeDebtRecord(t, env)
	if updated.Status != domain.DebtPaid {
		t.Fatalf("expected paid status, got %q", updated.Status)
	}
	if updated.AmountPaid != 500 {
		t.Fatalf("expected amountPaid 500, got %v", updated.AmountPaid)
	}
}

func TestUpdateDebtRecord_RejectsNegativeAmountPaid(t *testing.T) {
	server, _ := newDebtTestEnv()

	_, created := doJSON(t, server, http.MethodPost, "/api/debt-records", "token-alice",
		`{"contactName":"Bob","amount":500,"direction":"lent"}`)
	record := decodeDebtRecord(t, created)

	rec, env := doJSON(t, server, http.MethodPut, "/api/debt-records/"+record.ID.String(), "token-alice",
		`{"amountPaid":-10}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if _, ok := env.Details["amountPaid"]; !ok {
		t.Fatalf("expected amountPaid detail, got %v", env.Details)
	}
}

func TestDeleteDebtRecord_UnknownIDGets404(t *testing.T) {
	server, _ := newDebtTestEnv()

	target := fmt.Sprintf("/api/debt-records/%s", uuid.New())
	rec, _ := doJSON(t, server, http.MethodDelete, target, "token-alice", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
