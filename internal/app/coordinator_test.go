package app_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/parleyhq/parley/internal/app"
	"github.com/parleyhq/parley/internal/domain"
	"github.com/parleyhq/parley/internal/storage/memory"
)

func newCoordinator(store *memory.Store) *app.Coordinator {
	presence := app.NewPresence()
	rooms := app.NewRooms()
	return app.NewCoordinator(presence, rooms, app.NewSessionAllocator(store), app.NewCallLog(store))
}

func decodeFrame(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("bad frame %s: %v", b, err)
	}
	return m
}

func TestInitiateAndAcceptCall(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	coord := newCoordinator(store)

	alice := &fakeConn{}
	bob := &fakeConn{}
	coord.Presence.Register("u1", "Alice", "sid-alice", alice)
	coord.Presence.Register("u2", "Bob", "sid-bob", bob)

	room := domain.DeriveRoom("Alice", "Bob")
	coord.InitiateCall(ctx, "u1", "u2", room)

	frames := bob.Frames()
	if len(frames) != 1 {
		t.Fatalf("expected one frame to Bob, got %d", len(frames))
	}
	ev := decodeFrame(t, frames[0])
	if ev["type"] != "incoming-call" {
		t.Fatalf("expected incoming-call, got %v", ev["type"])
	}
	if ev["fromDisplayName"] != "Alice" {
		t.Fatalf("expected fromDisplayName Alice, got %v", ev["fromDisplayName"])
	}
	if ev["room"] != string(room) {
		t.Fatalf("expected room %q, got %v", room, ev["room"])
	}

	coord.RespondToCall("u1", true, room)
	frames = alice.Frames()
	if len(frames) != 1 {
		t.Fatalf("expected one frame to Alice, got %d", len(frames))
	}
	ev = decodeFrame(t, frames[0])
	if ev["type"] != "call-response" {
		t.Fatalf("expected call-response, got %v", ev["type"])
	}
	if ev["accepted"] != true {
		t.Fatalf("expected accepted=true, got %v", ev["accepted"])
	}

	recs := store.Calls()
	if len(recs) != 1 {
		t.Fatalf("expected exactly one call record, got %d", len(recs))
	}
	if recs[0].Room != room || recs[0].Status != domain.CallStatusActive {
		t.Fatalf("unexpected call record %+v", recs[0])
	}
	if recs[0].SessionID != "001" {
		t.Fatalf("expected session id 001, got %q", recs[0].SessionID)
	}
}

func TestInitiateCallCorrectsRoomKey(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	coord := newCoordinator(store)

	bob := &fakeConn{}
	coord.Presence.Register("u1", "Alice", "sid-alice", &fakeConn{})
	coord.Presence.Register("u2", "Bob", "sid-bob", bob)

	coord.InitiateCall(ctx, "u1", "u2", "room_bogus")

	want := domain.DeriveRoom("Alice", "Bob")
	frames := bob.Frames()
	if len(frames) != 1 {
		t.Fatalf("expected one frame to Bob, got %d", len(frames))
	}
	ev := decodeFrame(t, frames[0])
	if ev["room"] != string(want) {
		t.Fatalf("expected derived room %q, got %v", want, ev["room"])
	}

	recs := store.Calls()
	if len(recs) != 1 || recs[0].Room != want {
		t.Fatalf("expected the record under %q, got %+v", want, recs)
	}
	if _, ok := coord.Sessions.Lookup("room_bogus"); ok {
		t.Fatal("expected no identifier bound to the wire value")
	}
	if _, ok := coord.Sessions.Lookup(want); !ok {
		t.Fatal("expected the identifier bound to the derived key")
	}
}

func TestInitiateToOfflineCalleeIsDropped(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	coord := newCoordinator(store)

	alice := &fakeConn{}
	coord.Presence.Register("u1", "Alice", "sid-alice", alice)

	coord.InitiateCall(ctx, "u1", "u2", "room_Alice_Bob")

	if got := len(alice.Frames()); got != 0 {
		t.Fatalf("initiator must not be notified, got %d frames", got)
	}
	if got := len(store.Calls()); got != 0 {
		t.Fatalf("no call record for an unpaired attempt, got %d", got)
	}
	// Session identifier allocation is coupled to successful pairing.
	if _, ok := coord.Sessions.Lookup("room_Alice_Bob"); ok {
		t.Fatal("expected no session identifier for an unpaired attempt")
	}
}

func TestRespondToOfflineCallerIsDropped(t *testing.T) {
	store := memory.NewStore()
	coord := newCoordinator(store)

	coord.RespondToCall("u1", true, "room_Alice_Bob")
	// Nothing to assert beyond not panicking; the event is dropped.
}

func TestConcurrentInitiationsMintOneIdentifier(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	coord := newCoordinator(store)

	coord.Presence.Register("u1", "Alice", "sid-alice", &fakeConn{})
	coord.Presence.Register("u2", "Bob", "sid-bob", &fakeConn{})

	room := domain.DeriveRoom("Alice", "Bob")
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			coord.InitiateCall(ctx, "u1", "u2", room)
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	if got := len(store.Calls()); got != 1 {
		t.Fatalf("expected one call record, got %d", got)
	}
	id, ok := coord.Sessions.Lookup(room)
	if !ok || id != "001" {
		t.Fatalf("expected single identifier 001, got %q (ok=%v)", id, ok)
	}
}
