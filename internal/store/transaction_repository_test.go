package store

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fintrackr/finance-api/internal/domain"
)

func TestBuildTransactionListQuery(t *testing.T) {
	from := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	categoryID := uuid.New()

	tests := []struct {
		name        string
		filter      domain.TransactionFilter
		wantClauses []string
		wantArgs    []interface{}
	}{
		{
			name:     "no filters",
			filter:   domain.TransactionFilter{},
			wantArgs: []interface{}{"alice"},
		},
		{
			name:        "type only",
			filter:      domain.TransactionFilter{Type: "expense"},
			wantClauses: []string{"AND type = $2"},
			wantArgs:    []interface{}{"alice", "expense"},
		},
		{
			name:        "date range",
			filter:      domain.TransactionFilter{From: &from, To: &to},
			wantClauses: []string{"AND date >= $2", "AND date <= $3"},
			wantArgs:    []interface{}{"alice", from, to},
		},
		{
			name: "all filters keep placeholder order",
			filter: domain.TransactionFilter{
				From:       &from,
				To:         &to,
				CategoryID: &categoryID,
				Type:       "expense",
				Recurring:  ptrBool(true),
			},
			wantClauses: []string{
				"AND date >= $2",
				"AND date <= $3",
				"AND category_id = $4",
				"AND type = $5",
				"AND recurring = $6",
			},
			wantArgs: []interface{}{"alice", from, to, categoryID, "expense", true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildTransactionListQuery("alice", tt.filter)

			if !strings.Contains(query, "WHERE user_id = $1") {
				t.Fatalf("expected owner scope in query, got %q", query)
			}
			if !strings.HasSuffix(query, "ORDER BY date DESC, created_at DESC") {
				t.Fatalf("expected newest-first ordering, got %q", query)
			}
			for _, clause := range tt.wantClauses {
				if !strings.Contains(query, clause) {
					t.Fatalf("expected clause %q in query %q", clause, query)
				}
			}

			if len(args) != len(tt.wantArgs) {
				t.Fatalf("expected %d args, got %d: %v", len(tt.wantArgs), len(args), args)
			}
			for i, want := range tt.wantArgs {
				if args[i] != want {
					t.Fatalf("arg %d: expected %v, got %v", i, want, args[i])
				}
			}
		})
	}
}

func TestBuildTransactionListQuery_UnsetFiltersAddNoClauses(t *testing.T) {
	query, _ := buildTransactionListQuery("alice", domain.TransactionFilter{})
	if strings.Contains(query, "$2") {
		t.Fatalf("expected a single placeholder for the owner, got %q", query)
	}
}

func TestYearRange(t *testing.T) {
	start, end := yearRange(2025)

	if got := start.Format(time.RFC3339); got != "2025-01-01T00:00:00Z" {
		t.Fatalf("expected year start at Jan 1 UTC, got %s", got)
	}
	if got := end.Format(time.RFC3339); got != "2026-01-01T00:00:00Z" {
		t.Fatalf("expected exclusive bound at next Jan 1 UTC, got %s", got)
	}

	march := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	if march.Before(start) || !march.Before(end) {
		t.Fatalf("expected mid-year date inside [%s, %s)", start, end)
	}
	if !end.After(start.AddDate(0, 11, 30)) {
		t.Fatalf("expected the range to span a full year, got [%s, %s)", start, end)
	}
}

func ptrBool(value bool) *bool {
	return &value
}
