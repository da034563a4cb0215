package transcribe

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/domain"
)

// Broadcaster fans a frame out to every connection joined to a room.
type Broadcaster interface {
	Broadcast(room domain.RoomName, data core.Frame) core.PublishResult
}

// SessionSource resolves the session identifier already bound to a room.
type SessionSource interface {
	Lookup(room domain.RoomName) (string, bool)
}

// Fragment is one chunk of captured audio plus its metadata, as read off
// the wire.
type Fragment struct {
	Payload  json.RawMessage
	Speaker  string
	Room     domain.RoomName
	MimeType string
}

// Caption is the broadcast shape of a finished transcript.
type Caption struct {
	Type               string    `json:"type"`
	SpeakerDisplayName string    `json:"speakerDisplayName"`
	Text               string    `json:"text"`
	LanguageLabel      string    `json:"languageLabel"`
	Timestamp          time.Time `json:"timestamp"`
}

// Orchestrator runs the per-fragment pipeline: normalize, fan out to both
// engines concurrently, merge under the precedence policy, persist, and
// broadcast the caption back to the room. No failure in here may take the
// process down; a bad fragment simply produces no effect.
type Orchestrator struct {
	Primary   Engine
	Secondary Engine // nil when credentials are not configured
	Detector  *Detector
	Store     core.Store
	Rooms     Broadcaster
	Sessions  SessionSource

	ScratchDir    string
	EngineTimeout time.Duration
}

// HandleFragment processes one audio fragment end to end. Safe for
// concurrent use; fragments from the same speaker may finish out of order.
func (o *Orchestrator) HandleFragment(ctx context.Context, frag Fragment) {
	audio, err := DecodeAudioPayload(frag.Payload)
	if err != nil {
		log.Warn().Err(err).Str("module", "transcribe").Str("room", string(frag.Room)).Msg("fragment dropped")
		return
	}
	if len(audio) == 0 {
		return
	}

	path := filepath.Join(o.scratchDir(), "frag-"+uuid.NewString())
	if err := os.WriteFile(path, audio, 0o600); err != nil {
		log.Error().Err(err).Str("module", "transcribe").Msg("scratch write failed")
		return
	}
	defer os.Remove(path)

	primary := Result{Language: LangUnknown}
	var secondary *Result

	// Both engines settle before we proceed; a failed or timed-out call
	// degrades to an empty result and never aborts the other.
	var g errgroup.Group
	g.Go(func() error {
		tctx, cancel := context.WithTimeout(ctx, o.engineTimeout())
		defer cancel()
		res, err := o.Primary.Transcribe(tctx, path, frag.MimeType)
		if err != nil {
			log.Warn().Err(err).Str("module", "transcribe").Str("engine", o.Primary.Name()).Msg("engine failed")
			return nil
		}
		primary = res
		return nil
	})
	if o.Secondary != nil {
		g.Go(func() error {
			tctx, cancel := context.WithTimeout(ctx, o.engineTimeout())
			defer cancel()
			res, err := o.Secondary.Transcribe(tctx, path, frag.MimeType)
			if err != nil {
				log.Warn().Err(err).Str("module", "transcribe").Str("engine", o.Secondary.Name()).Msg("engine failed")
				return nil
			}
			secondary = &res
			return nil
		})
	}
	_ = g.Wait()

	text, code, ok := resolve(primary, secondary, o.Detector)
	if !ok {
		log.Debug().Str("module", "transcribe").Str("room", string(frag.Room)).Msg("no speech detected")
		return
	}
	label := LanguageLabel(code)

	sessionID, _ := o.Sessions.Lookup(frag.Room)
	now := time.Now().UTC()
	rec := domain.TranscriptRecord{
		SpeakerDisplayName: frag.Speaker,
		Text:               text,
		LanguageLabel:      label,
		Room:               frag.Room,
		SessionID:          sessionID,
		CreatedAt:          now,
	}
	if err := o.Store.InsertTranscript(ctx, rec); err != nil {
		log.Error().Err(err).Str("module", "transcribe").Str("room", string(frag.Room)).Msg("transcript persist failed")
		return
	}

	frame, err := json.Marshal(Caption{
		Type:               "new-transcript",
		SpeakerDisplayName: frag.Speaker,
		Text:               text,
		LanguageLabel:      label,
		Timestamp:          now,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "transcribe").Msg("encode caption")
		return
	}
	sent := o.Rooms.Broadcast(frag.Room, core.Frame(frame))
	log.Info().Str("module", "transcribe").Str("room", string(frag.Room)).Str("speaker", frag.Speaker).Str("language", label).Int("sent_to", sent.SentTo).Msg("caption delivered")
}

// resolve applies the precedence policy: primary text over secondary text,
// then primary language, secondary language, statistical detection, unknown.
func resolve(primary Result, secondary *Result, det *Detector) (text, code string, ok bool) {
	priText := strings.TrimSpace(primary.Text)
	secText := ""
	if secondary != nil {
		secText = strings.TrimSpace(secondary.Text)
	}

	fromPrimary := false
	switch {
	case priText != "":
		text = priText
		fromPrimary = true
	case secText != "":
		text = secText
	default:
		return "", "", false
	}

	code = LangUnknown
	switch {
	case fromPrimary && usable(primary.Language):
		code = primary.Language
	case secondary != nil && usable(secondary.Language):
		code = secondary.Language
	case det != nil && utf8.RuneCountInString(text) >= 3:
		if c := det.DetectCode(text); c != "" {
			code = c
		}
	}
	return text, code, true
}

func usable(code string) bool {
	return code != "" && code != LangUnknown
}

func (o *Orchestrator) scratchDir() string {
	if o.ScratchDir != "" {
		return o.ScratchDir
	}
	return os.TempDir()
}

func (o *Orchestrator) engineTimeout() time.Duration {
	if o.EngineTimeout > 0 {
		return o.EngineTimeout
	}
	return 15 * time.Second
}
