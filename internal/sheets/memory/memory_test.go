package memory

import (
	"context"
	"testing"

	"spendify/internal/core"
	ports "spendify/internal/sheets"
)

func TestStore_UpsertReplacesByID(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.Upsert(ctx, core.Transaction{ID: "t1", Content: "first"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if _, err := store.Upsert(ctx, core.Transaction{ID: "t1", Content: "second"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	rows := store.Rows()
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].Content != "second" {
		t.Errorf("Content = %q, want %q", rows[0].Content, "second")
	}
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.Upsert(ctx, core.Transaction{ID: "t1"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	key := ports.RowKey{TransactionID: "t1"}
	if err := store.Remove(ctx, key); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := store.Remove(ctx, key); err != nil {
		t.Errorf("Remove(absent) error = %v, want nil", err)
	}
	if len(store.Rows()) != 0 {
		t.Errorf("len(rows) = %d, want 0", len(store.Rows()))
	}
}
