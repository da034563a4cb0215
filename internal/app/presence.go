package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/domain"
)

type presenceEntry struct {
	Identity domain.Identity
	SID      core.SessionID
	Conn     core.SignalConnection
}

// Presence tracks which identities currently hold a live connection and how
// to reach them. It is the single source of truth for reachability; nothing
// downstream caches it.
type Presence struct {
	mu     sync.RWMutex
	byUser map[domain.UserID]*presenceEntry
}

func NewPresence() *Presence {
	return &Presence{byUser: make(map[domain.UserID]*presenceEntry)}
}

// Register upserts the entry for id. A later registration silently replaces
// an earlier one for the same identity. Empty id or display name is a no-op.
func (p *Presence) Register(id domain.UserID, displayName string, sid core.SessionID, conn core.SignalConnection) {
	if id == "" || displayName == "" {
		log.Debug().Str("module", "app.presence").Str("sid", string(sid)).Msg("register ignored, empty identity or name")
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byUser[id] = &presenceEntry{
		Identity: domain.Identity{ID: id, DisplayName: displayName},
		SID:      sid,
		Conn:     conn,
	}
	log.Info().Str("module", "app.presence").Str("user", string(id)).Str("name", displayName).Str("sid", string(sid)).Msg("registered")
}

// Lookup returns the connection and display name for id, if reachable.
func (p *Presence) Lookup(id domain.UserID) (core.SignalConnection, string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.byUser[id]
	if !ok {
		return nil, "", false
	}
	return e.Conn, e.Identity.DisplayName, true
}

// UnregisterSession removes whichever entry is bound to the closing
// connection. The session id alone is not enough: it is stable across
// reconnects from the same client, so an overlapping reconnect leaves a
// stale socket closing under the same sid as the live one. Only the entry
// whose connection is the closing one is removed.
func (p *Presence) UnregisterSession(sid core.SessionID, conn core.SignalConnection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, e := range p.byUser {
		if e.SID == sid && e.Conn == conn {
			delete(p.byUser, id)
			log.Info().Str("module", "app.presence").Str("user", string(id)).Str("sid", string(sid)).Msg("unregistered")
			return
		}
	}
}
