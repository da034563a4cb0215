package domain_test

import (
	"testing"

	"github.com/parleyhq/parley/internal/domain"
)

func TestDeriveRoomIsOrderIndependent(t *testing.T) {
	a := domain.DeriveRoom("Alice", "Bob")
	b := domain.DeriveRoom("Bob", "Alice")
	if a != b {
		t.Fatalf("expected same room key from either order, got %q and %q", a, b)
	}
	if a != "room_Alice_Bob" {
		t.Fatalf("unexpected room key %q", a)
	}
}
