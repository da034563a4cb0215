package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/domain"
	"github.com/parleyhq/parley/internal/transcribe"
)

func (ctl *SignalWSController) handleAudioFragment(sid core.SessionID, data []byte) {
	type fragmentPayload struct {
		Type               string          `json:"type"`
		Audio              json.RawMessage `json:"audio"`
		SpeakerDisplayName string          `json:"speakerDisplayName"`
		Room               string          `json:"room"`
		MimeType           string          `json:"mimeType"`
	}
	var p fragmentPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad audio-fragment payload")
		return
	}
	if p.Room == "" {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("audio-fragment without room")
		return
	}

	// Detached from the connection context: an in-flight fragment still
	// finishes (and persists) if the speaker drops right after sending it.
	go ctl.Transcriber.HandleFragment(context.Background(), transcribe.Fragment{
		Payload:  p.Audio,
		Speaker:  p.SpeakerDisplayName,
		Room:     domain.RoomName(p.Room),
		MimeType: p.MimeType,
	})
}
