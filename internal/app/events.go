package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/domain"
)

// Outbound signaling events. The coordinator encodes these itself so the
// transport adapter stays a dumb pipe.

type IncomingCallEvent struct {
	Type            string          `json:"type"`
	FromIdentity    domain.UserID   `json:"fromIdentity"`
	FromDisplayName string          `json:"fromDisplayName"`
	Room            domain.RoomName `json:"room"`
}

type CallResponseEvent struct {
	Type     string          `json:"type"`
	Accepted bool            `json:"accepted"`
	Room     domain.RoomName `json:"room"`
}

func encodeEvent(v any) (core.Frame, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.events").Msg("encode event")
		return nil, false
	}
	return core.Frame(b), true
}
