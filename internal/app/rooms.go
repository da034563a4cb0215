package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/domain"
)

// Rooms owns the room→connection broadcast groups. Rooms are created on
// first join and removed when the last member leaves; leaving is implicit
// on disconnect.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[domain.RoomName]map[core.SessionID]core.SignalConnection
}

func NewRooms() *Rooms {
	return &Rooms{rooms: make(map[domain.RoomName]map[core.SessionID]core.SignalConnection)}
}

func (r *Rooms) Join(room domain.RoomName, sid core.SessionID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[core.SessionID]core.SignalConnection)
		r.rooms[room] = members
	}
	members[sid] = conn
	log.Info().Str("module", "app.rooms").Str("room", string(room)).Str("sid", string(sid)).Int("count", len(members)).Msg("joined room")
}

// Leave removes the closing connection from every room it belongs to. A
// membership that was since replaced by a newer connection under the same
// sid is left alone.
func (r *Rooms) Leave(sid core.SessionID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, members := range r.rooms {
		if member, ok := members[sid]; !ok || member != conn {
			continue
		}
		delete(members, sid)
		log.Info().Str("module", "app.rooms").Str("room", string(name)).Str("sid", string(sid)).Msg("left room")
		if len(members) == 0 {
			delete(r.rooms, name)
		}
	}
}

// Broadcast fans a frame out to every connection joined to room, the sender
// included. Slow consumers are dropped, never waited on.
func (r *Rooms) Broadcast(room domain.RoomName, data core.Frame) core.PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := core.PublishResult{}
	for sid, conn := range r.rooms[room] {
		if err := conn.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, sid)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "app.rooms").Str("room", string(room)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *Rooms) MemberCount(room domain.RoomName) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}
