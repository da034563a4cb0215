// Package memory is an in-memory Store used by tests and local runs
// without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/parleyhq/parley/internal/domain"
)

type Store struct {
	mu          sync.Mutex
	counters    map[string]int64
	calls       map[domain.RoomName]domain.CallRecord
	transcripts []domain.TranscriptRecord
}

func NewStore() *Store {
	return &Store{
		counters: make(map[string]int64),
		calls:    make(map[domain.RoomName]domain.CallRecord),
	}
}

func (s *Store) NextSequence(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name]++
	return s.counters[name], nil
}

func (s *Store) EnsureCall(_ context.Context, rec domain.CallRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.calls[rec.Room]; !ok {
		s.calls[rec.Room] = rec
	}
	return nil
}

func (s *Store) InsertTranscript(_ context.Context, rec domain.TranscriptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts = append(s.transcripts, rec)
	return nil
}

func (s *Store) ListTranscripts(_ context.Context) ([]domain.TranscriptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TranscriptRecord, len(s.transcripts))
	copy(out, s.transcripts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Calls exposes the stored call records for assertions.
func (s *Store) Calls() []domain.CallRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CallRecord, 0, len(s.calls))
	for _, rec := range s.calls {
		out = append(out, rec)
	}
	return out
}

// Transcripts exposes the stored transcripts in insertion order.
func (s *Store) Transcripts() []domain.TranscriptRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TranscriptRecord, len(s.transcripts))
	copy(out, s.transcripts)
	return out
}
