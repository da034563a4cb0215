// Package mongo implements the durable document store on MongoDB.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/domain"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects and pings; a server that cannot reach its store at boot
// should not come up half-alive.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) counters() *mongo.Collection    { return s.db.Collection("counters") }
func (s *Store) calls() *mongo.Collection       { return s.db.Collection("calls") }
func (s *Store) transcripts() *mongo.Collection { return s.db.Collection("transcripts") }

type counterDoc struct {
	Name          string `bson:"name"`
	SequenceValue int64  `bson:"sequenceValue"`
}

// NextSequence increments the named counter atomically, creating it on
// first use. At-least-once under concurrent crashes: gaps are fine,
// repeats are not.
func (s *Store) NextSequence(ctx context.Context, name string) (int64, error) {
	res := s.counters().FindOneAndUpdate(ctx,
		bson.M{"name": name},
		bson.M{"$inc": bson.M{"sequenceValue": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	var doc counterDoc
	if err := res.Decode(&doc); err != nil {
		return 0, fmt.Errorf("%w: counter %s: %v", core.ErrStorageUnavailable, name, err)
	}
	return doc.SequenceValue, nil
}

// EnsureCall inserts the record once per room; $setOnInsert keeps replays
// across restarts from clobbering an existing record.
func (s *Store) EnsureCall(ctx context.Context, rec domain.CallRecord) error {
	_, err := s.calls().UpdateOne(ctx,
		bson.M{"room": rec.Room},
		bson.M{"$setOnInsert": rec},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("%w: ensure call %s: %v", core.ErrStorageUnavailable, rec.Room, err)
	}
	return nil
}

func (s *Store) InsertTranscript(ctx context.Context, rec domain.TranscriptRecord) error {
	if _, err := s.transcripts().InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("%w: insert transcript: %v", core.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Store) ListTranscripts(ctx context.Context) ([]domain.TranscriptRecord, error) {
	cur, err := s.transcripts().Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list transcripts: %v", core.ErrStorageUnavailable, err)
	}
	var out []domain.TranscriptRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%w: decode transcripts: %v", core.ErrStorageUnavailable, err)
	}
	return out, nil
}
