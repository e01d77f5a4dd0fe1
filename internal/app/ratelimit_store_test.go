package app

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRateLimitStore_CountsWithinWindow(t *testing.T) {
	store := NewMemoryRateLimitStore()

	for i := 1; i <= 5; i++ {
		count, retryAfter, err := store.Consume(context.Background(), "general", "10.0.0.1", time.Minute)
		if err != nil {
			t.Fatalf("Consume returned error: %v", err)
		}
		if count != i {
			t.Fatalf("expected count %d, got %d", i, count)
		}
		if retryAfter < 1 {
			t.Fatalf("expected retryAfter >= 1, got %d", retryAfter)
		}
	}
}

func TestMemoryRateLimitStore_ResetsAfterWindow(t *testing.T) {
	store := NewMemoryRateLimitStore()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, _, err := store.Consume(context.Background(), "auth", "10.0.0.1", time.Minute); err != nil {
			t.Fatalf("Consume returned error: %v", err)
		}
	}

	now = now.Add(61 * time.Second)
	count, _, err := store.Consume(context.Background(), "auth", "10.0.0.1", time.Minute)
	if err != nil {
		t.Fatalf("Consume returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected fresh window count 1, got %d", count)
	}
}

func TestMemoryRateLimitStore_ScopesAreIndependent(t *testing.T) {
	store := NewMemoryRateLimitStore()

	if _, _, err := store.Consume(context.Background(), "general", "10.0.0.1", time.Minute); err != nil {
		t.Fatalf("Consume returned error: %v", err)
	}
	count, _, err := store.Consume(context.Background(), "write", "10.0.0.1", time.Minute)
	if err != nil {
		t.Fatalf("Consume returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected independent scope count 1, got %d", count)
	}
}

func TestMemoryRateLimitStore_SubjectsAreIndependent(t *testing.T) {
	store := NewMemoryRateLimitStore()

	if _, _, err := store.Consume(context.Background(), "general", "10.0.0.1", time.Minute); err != nil {
		t.Fatalf("Consume returned error: %v", err)
	}
	count, _, err := store.Consume(context.Background(), "general", "10.0.0.2", time.Minute)
	if err != nil {
		t.Fatalf("Consume returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected independent subject count 1, got %d", count)
	}
}

func TestMemoryRateLimitStore_IgnoresBlankSubject(t *testing.T) {
	store := NewMemoryRateLimitStore()

	count, retryAfter, err := store.Consume(context.Background(), "general", "  ", time.Minute)
	if err != nil {
		t.Fatalf("Consume returned error: %v", err)
	}
	if count != 0 || retryAfter != 0 {
		t.Fatalf("expected no-op for blank subject, got count=%d retryAfter=%d", count, retryAfter)
	}
}
