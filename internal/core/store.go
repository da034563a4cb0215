package core

import (
	"context"
	"errors"

	"github.com/parleyhq/parley/internal/domain"
)

var (
	// ErrStorageUnavailable wraps any failure to reach the document store.
	// Callers decide whether to retry; nothing retries automatically.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrMalformedPayload marks an audio payload whose shape could not be
	// decoded. The fragment is dropped, never propagated.
	ErrMalformedPayload = errors.New("malformed audio payload")
)

// Store is the durable document store behind the allocator, call records and
// transcripts. Implementations live in internal/storage.
type Store interface {
	// NextSequence atomically increments and returns the named counter.
	// The counter is created at 1 on first use.
	NextSequence(ctx context.Context, name string) (int64, error)

	// EnsureCall creates the call record once per room; later calls for the
	// same room leave the stored record untouched.
	EnsureCall(ctx context.Context, rec domain.CallRecord) error

	// InsertTranscript appends one immutable transcript record.
	InsertTranscript(ctx context.Context, rec domain.TranscriptRecord) error

	// ListTranscripts returns all transcripts, newest first.
	ListTranscripts(ctx context.Context) ([]domain.TranscriptRecord, error)
}
