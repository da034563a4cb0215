package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/domain"
)

// Coordinator drives call initiation, accept/reject and room membership on
// top of the presence registry. Lookups that fail drop the event: the
// underlying transport is fire-and-forget and the initiator is not told.
type Coordinator struct {
	Presence *Presence
	Rooms    *Rooms
	Sessions *SessionAllocator
	Calls    *CallLog
}

func NewCoordinator(presence *Presence, rooms *Rooms, sessions *SessionAllocator, calls *CallLog) *Coordinator {
	return &Coordinator{Presence: presence, Rooms: rooms, Sessions: sessions, Calls: calls}
}

// InitiateCall notifies the callee of an incoming call and, as a side
// effect, stamps the room with a session identifier and ensures its call
// record exists. Either party being offline drops the whole event.
func (c *Coordinator) InitiateCall(ctx context.Context, from, to domain.UserID, room domain.RoomName) {
	calleeConn, calleeName, ok := c.Presence.Lookup(to)
	if !ok {
		log.Warn().Str("module", "app.coordinator").Str("to", string(to)).Str("room", string(room)).Msg("initiate dropped, callee offline")
		return
	}
	_, callerName, ok := c.Presence.Lookup(from)
	if !ok {
		log.Warn().Str("module", "app.coordinator").Str("from", string(from)).Str("room", string(room)).Msg("initiate dropped, caller unknown")
		return
	}

	// The room key is a pure function of the pair; the wire value is only a
	// hint and is corrected when it disagrees.
	if expected := domain.DeriveRoom(callerName, calleeName); room != expected {
		log.Warn().Str("module", "app.coordinator").Str("got", string(room)).Str("want", string(expected)).Msg("room key corrected")
		room = expected
	}

	sessionID, err := c.Sessions.For(ctx, room)
	if err != nil {
		// The call can still proceed without a stamped record; storage
		// failures never block signaling.
		log.Error().Err(err).Str("module", "app.coordinator").Str("room", string(room)).Msg("session id allocation failed")
	} else if err := c.Calls.Ensure(ctx, room, sessionID, []string{callerName, calleeName}, []string{string(from), string(to)}); err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Str("room", string(room)).Msg("call record creation failed")
	}

	ev, ok := encodeEvent(IncomingCallEvent{
		Type:            "incoming-call",
		FromIdentity:    from,
		FromDisplayName: callerName,
		Room:            room,
	})
	if !ok {
		return
	}
	if err := calleeConn.TrySend(ev); err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Str("to", string(to)).Msg("incoming-call not delivered")
		return
	}
	log.Info().Str("module", "app.coordinator").Str("from", callerName).Str("to", calleeName).Str("room", string(room)).Msg("call initiated")
}

// RespondToCall forwards the callee's accept/reject back to the original
// caller. An offline caller drops the event.
func (c *Coordinator) RespondToCall(to domain.UserID, accepted bool, room domain.RoomName) {
	callerConn, callerName, ok := c.Presence.Lookup(to)
	if !ok {
		log.Warn().Str("module", "app.coordinator").Str("to", string(to)).Str("room", string(room)).Msg("call-response dropped, caller offline")
		return
	}
	ev, ok := encodeEvent(CallResponseEvent{Type: "call-response", Accepted: accepted, Room: room})
	if !ok {
		return
	}
	if err := callerConn.TrySend(ev); err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Str("to", string(to)).Msg("call-response not delivered")
		return
	}
	log.Info().Str("module", "app.coordinator").Str("to", callerName).Bool("accepted", accepted).Str("room", string(room)).Msg("call response forwarded")
}

// JoinRoom adds the connection to the room's broadcast group.
func (c *Coordinator) JoinRoom(sid core.SessionID, conn core.SignalConnection, room domain.RoomName) {
	c.Rooms.Join(room, sid, conn)
}

// OnDisconnect tears down everything bound to the closed connection. The
// connection itself is the handle: sids repeat across reconnects, so state
// established by a newer connection under the same sid survives.
func (c *Coordinator) OnDisconnect(sid core.SessionID, conn core.SignalConnection) {
	c.Presence.UnregisterSession(sid, conn)
	c.Rooms.Leave(sid, conn)
}
