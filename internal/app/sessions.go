package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/domain"
)

// counterName is the single process-wide counter document.
const counterName = "callRegister"

// FormatSessionID renders the counter value zero-padded to width 3; past 999
// it grows unpadded.
func FormatSessionID(n int64) string {
	return fmt.Sprintf("%03d", n)
}

// SessionAllocator binds rooms to durable, strictly increasing session
// identifiers. Allocation is lazy: a room gets its identifier on first use
// and keeps it for the process lifetime. The check-then-create is a single
// critical section so two concurrent initiations for one room always observe
// the same identifier.
type SessionAllocator struct {
	mu     sync.Mutex
	store  core.Store
	byRoom map[domain.RoomName]string
}

func NewSessionAllocator(store core.Store) *SessionAllocator {
	return &SessionAllocator{
		store:  store,
		byRoom: make(map[domain.RoomName]string),
	}
}

// For returns the room's session identifier, allocating one if absent.
// A storage failure leaves the room unallocated; the caller decides whether
// to retry.
func (a *SessionAllocator) For(ctx context.Context, room domain.RoomName) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id, ok := a.byRoom[room]; ok {
		return id, nil
	}
	seq, err := a.store.NextSequence(ctx, counterName)
	if err != nil {
		return "", fmt.Errorf("allocate session id for %s: %w", room, err)
	}
	id := FormatSessionID(seq)
	a.byRoom[room] = id
	log.Info().Str("module", "app.sessions").Str("room", string(room)).Str("session_id", id).Msg("allocated session id")
	return id, nil
}

// Lookup returns the identifier already bound to room, without allocating.
func (a *SessionAllocator) Lookup(room domain.RoomName) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, ok := a.byRoom[room]
	return id, ok
}
