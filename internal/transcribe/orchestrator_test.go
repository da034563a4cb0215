package transcribe_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/domain"
	"github.com/parleyhq/parley/internal/storage/memory"
	"github.com/parleyhq/parley/internal/transcribe"
)

type stubEngine struct {
	name string
	res  transcribe.Result
	err  error
}

func (e *stubEngine) Name() string { return e.name }

func (e *stubEngine) Transcribe(context.Context, string, string) (transcribe.Result, error) {
	return e.res, e.err
}

type captureBroadcaster struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (b *captureBroadcaster) Broadcast(_ domain.RoomName, f core.Frame) core.PublishResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = append(b.frames, f)
	return core.PublishResult{SentTo: 1}
}

func (b *captureBroadcaster) Frames() []core.Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]core.Frame, len(b.frames))
	copy(out, b.frames)
	return out
}

type fixedSessions map[domain.RoomName]string

func (s fixedSessions) Lookup(room domain.RoomName) (string, bool) {
	id, ok := s[room]
	return id, ok
}

func newTestOrchestrator(t *testing.T, primary, secondary transcribe.Engine) (*transcribe.Orchestrator, *memory.Store, *captureBroadcaster) {
	t.Helper()
	store := memory.NewStore()
	rooms := &captureBroadcaster{}
	o := &transcribe.Orchestrator{
		Primary:       primary,
		Secondary:     secondary,
		Detector:      transcribe.NewDetector(),
		Store:         store,
		Rooms:         rooms,
		Sessions:      fixedSessions{"room_Alice_Bob": "001"},
		ScratchDir:    t.TempDir(),
		EngineTimeout: 5 * time.Second,
	}
	return o, store, rooms
}

func audioFragment() transcribe.Fragment {
	return transcribe.Fragment{
		Payload:  json.RawMessage(`[1,2,3,4]`),
		Speaker:  "Alice",
		Room:     "room_Alice_Bob",
		MimeType: "audio/webm",
	}
}

func TestPrimaryResultWins(t *testing.T) {
	o, store, rooms := newTestOrchestrator(t,
		&stubEngine{name: "primary", res: transcribe.Result{Text: "Hola", Language: "es"}},
		nil,
	)

	o.HandleFragment(context.Background(), audioFragment())

	recs := store.Transcripts()
	if len(recs) != 1 {
		t.Fatalf("expected one transcript, got %d", len(recs))
	}
	if recs[0].Text != "Hola" || recs[0].LanguageLabel != "Spanish" {
		t.Fatalf("unexpected transcript %+v", recs[0])
	}
	if recs[0].SessionID != "001" {
		t.Fatalf("expected session id 001, got %q", recs[0].SessionID)
	}
	if recs[0].SpeakerDisplayName != "Alice" {
		t.Fatalf("unexpected speaker %q", recs[0].SpeakerDisplayName)
	}

	frames := rooms.Frames()
	if len(frames) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(frames))
	}
	var caption transcribe.Caption
	if err := json.Unmarshal(frames[0], &caption); err != nil {
		t.Fatalf("bad caption frame: %v", err)
	}
	if caption.Type != "new-transcript" || caption.Text != "Hola" || caption.LanguageLabel != "Spanish" {
		t.Fatalf("unexpected caption %+v", caption)
	}
}

func TestSecondaryTextUsedWhenPrimaryEmpty(t *testing.T) {
	o, store, _ := newTestOrchestrator(t,
		&stubEngine{name: "primary", res: transcribe.Result{Text: "", Language: "unknown"}},
		&stubEngine{name: "secondary", res: transcribe.Result{Text: "ok then", Language: "en"}},
	)

	o.HandleFragment(context.Background(), audioFragment())

	recs := store.Transcripts()
	if len(recs) != 1 {
		t.Fatalf("expected one transcript, got %d", len(recs))
	}
	if recs[0].Text != "ok then" {
		t.Fatalf("expected the secondary text verbatim, got %q", recs[0].Text)
	}
	if recs[0].LanguageLabel != "English" {
		t.Fatalf("expected English, got %q", recs[0].LanguageLabel)
	}
}

func TestTextHeuristicBreaksLanguageTie(t *testing.T) {
	o, store, _ := newTestOrchestrator(t,
		&stubEngine{name: "primary", res: transcribe.Result{Text: "", Language: "unknown"}},
		&stubEngine{name: "secondary", res: transcribe.Result{Text: "Bonjour, comment allez-vous ?", Language: "unknown"}},
	)

	o.HandleFragment(context.Background(), audioFragment())

	recs := store.Transcripts()
	if len(recs) != 1 {
		t.Fatalf("expected one transcript, got %d", len(recs))
	}
	if recs[0].LanguageLabel != "French" {
		t.Fatalf("expected French from the text heuristic, got %q", recs[0].LanguageLabel)
	}
}

func TestBothEnginesEmptyProducesNothing(t *testing.T) {
	o, store, rooms := newTestOrchestrator(t,
		&stubEngine{name: "primary", res: transcribe.Result{Text: "  ", Language: "en"}},
		&stubEngine{name: "secondary", res: transcribe.Result{Text: "", Language: "en"}},
	)

	o.HandleFragment(context.Background(), audioFragment())

	if got := len(store.Transcripts()); got != 0 {
		t.Fatalf("expected no transcript, got %d", got)
	}
	if got := len(rooms.Frames()); got != 0 {
		t.Fatalf("expected no broadcast, got %d", got)
	}
}

func TestPrimaryFailureFallsBackToSecondary(t *testing.T) {
	o, store, _ := newTestOrchestrator(t,
		&stubEngine{name: "primary", err: errors.New("backend down")},
		&stubEngine{name: "secondary", res: transcribe.Result{Text: "still here", Language: "en"}},
	)

	o.HandleFragment(context.Background(), audioFragment())

	recs := store.Transcripts()
	if len(recs) != 1 {
		t.Fatalf("expected one transcript despite primary failure, got %d", len(recs))
	}
	if recs[0].Text != "still here" {
		t.Fatalf("unexpected text %q", recs[0].Text)
	}
}

type blockingEngine struct{}

func (blockingEngine) Name() string { return "blocking" }

func (blockingEngine) Transcribe(ctx context.Context, _, _ string) (transcribe.Result, error) {
	<-ctx.Done()
	return transcribe.Result{}, ctx.Err()
}

func TestSlowEngineTimesOutWithoutBlockingPipeline(t *testing.T) {
	o, store, _ := newTestOrchestrator(t,
		blockingEngine{},
		&stubEngine{name: "secondary", res: transcribe.Result{Text: "made it", Language: "en"}},
	)
	o.EngineTimeout = 20 * time.Millisecond

	done := make(chan struct{})
	go func() {
		defer close(done)
		o.HandleFragment(context.Background(), audioFragment())
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline blocked on a slow engine")
	}

	recs := store.Transcripts()
	if len(recs) != 1 || recs[0].Text != "made it" {
		t.Fatalf("expected the secondary result, got %+v", recs)
	}
}

func TestUnresolvableLanguageIsRecordedAsUnknown(t *testing.T) {
	o, store, _ := newTestOrchestrator(t,
		&stubEngine{name: "primary", res: transcribe.Result{Text: "ab", Language: "unknown"}},
		nil,
	)

	o.HandleFragment(context.Background(), audioFragment())

	recs := store.Transcripts()
	if len(recs) != 1 {
		t.Fatalf("expected one transcript, got %d", len(recs))
	}
	// Two characters is below the heuristic threshold.
	if recs[0].LanguageLabel != "unknown" {
		t.Fatalf("expected unknown, got %q", recs[0].LanguageLabel)
	}
}

func TestMalformedPayloadIsDropped(t *testing.T) {
	o, store, rooms := newTestOrchestrator(t,
		&stubEngine{name: "primary", res: transcribe.Result{Text: "should not run", Language: "en"}},
		nil,
	)

	frag := audioFragment()
	frag.Payload = json.RawMessage(`42`)
	o.HandleFragment(context.Background(), frag)

	if got := len(store.Transcripts()); got != 0 {
		t.Fatalf("expected no transcript for malformed payload, got %d", got)
	}
	if got := len(rooms.Frames()); got != 0 {
		t.Fatalf("expected no broadcast for malformed payload, got %d", got)
	}
}

func TestEmptyAudioIsIgnored(t *testing.T) {
	o, store, _ := newTestOrchestrator(t,
		&stubEngine{name: "primary", res: transcribe.Result{Text: "should not run", Language: "en"}},
		nil,
	)

	frag := audioFragment()
	frag.Payload = json.RawMessage(`[]`)
	o.HandleFragment(context.Background(), frag)

	if got := len(store.Transcripts()); got != 0 {
		t.Fatalf("expected no transcript for empty audio, got %d", got)
	}
}
