package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/domain"
)

// CallLog creates the persisted record describing a call. Idempotent per
// room: the first pairing creates the record as active, later invocations
// no-op. Duration and final status transitions happen in teardown logic
// outside this server.
type CallLog struct {
	mu    sync.Mutex
	store core.Store
	seen  map[domain.RoomName]struct{}
}

func NewCallLog(store core.Store) *CallLog {
	return &CallLog{store: store, seen: make(map[domain.RoomName]struct{})}
}

func (l *CallLog) Ensure(ctx context.Context, room domain.RoomName, sessionID string, names, identities []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[room]; ok {
		return nil
	}
	rec := domain.CallRecord{
		SessionID:               sessionID,
		Room:                    room,
		ParticipantDisplayNames: names,
		ParticipantIdentities:   identities,
		Type:                    "video",
		Status:                  domain.CallStatusActive,
		CreatedAt:               time.Now().UTC(),
	}
	if err := l.store.EnsureCall(ctx, rec); err != nil {
		return fmt.Errorf("ensure call record for %s: %w", room, err)
	}
	l.seen[room] = struct{}{}
	log.Info().Str("module", "app.calls").Str("room", string(room)).Str("session_id", sessionID).Msg("call record created")
	return nil
}
