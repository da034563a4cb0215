package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/domain"
)

func (ctl *SignalWSController) handleRegister(sid core.SessionID, conn *WsSignalConn, data []byte) {
	type registerPayload struct {
		Type        string `json:"type"`
		Identity    string `json:"identity"`
		DisplayName string `json:"displayName"`
	}
	var p registerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad register payload")
		return
	}
	ident, err := domain.NewIdentity(domain.UserID(p.Identity), p.DisplayName)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("register dropped")
		return
	}
	ctl.Coord.Presence.Register(ident.ID, ident.DisplayName, sid, conn)
}

func (ctl *SignalWSController) handleInitiate(sid core.SessionID, data []byte) {
	type initiatePayload struct {
		Type         string `json:"type"`
		ToIdentity   string `json:"toIdentity"`
		FromIdentity string `json:"fromIdentity"`
		Room         string `json:"room"`
	}
	var p initiatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad initiate payload")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("from", p.FromIdentity).Str("to", p.ToIdentity).Str("room", p.Room).Msg("initiate-call")
	ctl.Coord.InitiateCall(context.Background(), domain.UserID(p.FromIdentity), domain.UserID(p.ToIdentity), domain.RoomName(p.Room))
}

func (ctl *SignalWSController) handleResponse(sid core.SessionID, data []byte) {
	type responsePayload struct {
		Type       string `json:"type"`
		ToIdentity string `json:"toIdentity"`
		Accepted   bool   `json:"accepted"`
		Room       string `json:"room"`
	}
	var p responsePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad call-response payload")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("to", p.ToIdentity).Bool("accepted", p.Accepted).Str("room", p.Room).Msg("call-response")
	ctl.Coord.RespondToCall(domain.UserID(p.ToIdentity), p.Accepted, domain.RoomName(p.Room))
}

func (ctl *SignalWSController) handleJoinRoom(sid core.SessionID, conn *WsSignalConn, data []byte) {
	type joinPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}
	if p.Room == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("join-room without room")
		return
	}
	ctl.Coord.JoinRoom(sid, conn, domain.RoomName(p.Room))
}
