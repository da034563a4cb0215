package app_test

import (
	"context"
	"testing"

	"github.com/parleyhq/parley/internal/app"
	"github.com/parleyhq/parley/internal/domain"
	"github.com/parleyhq/parley/internal/storage/memory"
)

func TestCallLogEnsureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	calls := app.NewCallLog(store)

	names := []string{"Alice", "Bob"}
	ids := []string{"u1", "u2"}
	if err := calls.Ensure(ctx, "room_Alice_Bob", "001", names, ids); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if err := calls.Ensure(ctx, "room_Alice_Bob", "001", names, ids); err != nil {
		t.Fatalf("second Ensure failed: %v", err)
	}

	recs := store.Calls()
	if len(recs) != 1 {
		t.Fatalf("expected exactly one call record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.Status != domain.CallStatusActive {
		t.Fatalf("expected status active, got %q", rec.Status)
	}
	if rec.SessionID != "001" {
		t.Fatalf("expected session id 001, got %q", rec.SessionID)
	}
	if len(rec.ParticipantDisplayNames) != 2 || rec.ParticipantDisplayNames[0] != "Alice" {
		t.Fatalf("unexpected participants %v", rec.ParticipantDisplayNames)
	}
}
