// Package transcribe turns raw audio fragments into persisted, broadcast
// captions. Two independent recognition backends run concurrently per
// fragment; their results merge under a fixed precedence with a statistical
// text heuristic as the last resort for the language.
package transcribe

import "context"

// LangUnknown is the language code recorded when no method resolved one.
const LangUnknown = "unknown"

// Result is the uniform return shape of every recognition backend.
type Result struct {
	Text     string
	Language string // ISO 639-1 code, or LangUnknown
}

// Engine is a pluggable speech recognition backend. audioPath points at a
// scratch file both engines may stream from; implementations must not
// delete it.
type Engine interface {
	Name() string
	Transcribe(ctx context.Context, audioPath, mimeType string) (Result, error)
}
