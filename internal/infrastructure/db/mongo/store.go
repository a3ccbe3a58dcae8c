package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/provnet/isp-admin/internal/core/domain"
	"github.com/provnet/isp-admin/internal/core/ports"
)

const storageCollection = "kv_storage"

// kvDoc is the persisted shape: one document per key, envelope fields
// inlined, data kept as a raw JSON string so the remote layout mirrors the
// local one byte-for-byte.
type kvDoc struct {
	Key       string `bson:"_id"`
	Timestamp int64  `bson:"timestamp"`
	Data      string `bson:"data"`
}

// Store implements ports.RemoteStore on MongoDB. Live subscriptions use
// change streams, which require a replica set deployment. The store keeps an
// adapter-local cache of the last successfully fetched envelope per key and
// serves it when the remote read fails.
type Store struct {
	coll *mongo.Collection
	log  zerolog.Logger

	cacheMu sync.RWMutex
	cache   map[string]domain.Envelope
}

var _ ports.RemoteStore = (*Store)(nil)

// NewStore wraps the storage collection of db.
func NewStore(db *mongo.Database, log zerolog.Logger) *Store {
	return &Store{
		coll:  db.Collection(storageCollection),
		log:   log,
		cache: make(map[string]domain.Envelope),
	}
}

// Name identifies the backend in logs and health output.
func (s *Store) Name() string { return "mongo" }

// Put upserts the envelope under key.
func (s *Store) Put(ctx context.Context, key string, env domain.Envelope) error {
	doc := kvDoc{Key: key, Timestamp: env.Timestamp, Data: string(env.Data)}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo put %s: %w", key, err)
	}
	s.cacheSet(key, env)
	return nil
}

// Fetch reads the envelope under key. A confirmed-missing key returns
// exists=false with a nil error. Any other failure falls back to the last
// successfully fetched envelope before propagating the error.
func (s *Store) Fetch(ctx context.Context, key string) (domain.Envelope, bool, error) {
	var doc kvDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Envelope{}, false, nil
	}
	if err != nil {
		if env, ok := s.cacheGet(key); ok {
			s.log.Debug().Err(err).Str("key", key).Msg("mongo read failed, serving adapter cache")
			return env, true, nil
		}
		return domain.Envelope{}, false, fmt.Errorf("mongo fetch %s: %w", key, err)
	}

	env := domain.Envelope{Timestamp: doc.Timestamp, Data: json.RawMessage(doc.Data)}
	s.cacheSet(key, env)
	return env, true, nil
}

// Remove deletes the key. Missing documents are not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("mongo remove %s: %w", key, err)
	}
	s.cacheDel(key)
	return nil
}

// changeEvent is the slice of a change stream document this store consumes.
type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument kvDoc `bson:"fullDocument"`
}

// Subscribe opens a change stream scoped to keys and delivers every insert,
// replace, update and delete to onChange. The returned function cancels the
// stream and stops the delivery goroutine.
func (s *Store) Subscribe(ctx context.Context, keys []string, onChange ports.ChangeHandler) (func(), error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "documentKey._id", Value: bson.D{{Key: "$in", Value: keys}}},
		}}},
	}

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := s.coll.Watch(streamCtx, pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("mongo subscribe: %w", err)
	}

	go func() {
		defer func() {
			if err := stream.Close(context.Background()); err != nil {
				s.log.Warn().Err(err).Msg("change stream close failed")
			}
		}()
		for stream.Next(streamCtx) {
			var ev changeEvent
			if err := stream.Decode(&ev); err != nil {
				s.log.Warn().Err(err).Msg("malformed change stream event")
				continue
			}
			key := ev.DocumentKey.ID
			if ev.OperationType == "delete" {
				s.cacheDel(key)
				onChange(key, nil)
				continue
			}
			env := domain.Envelope{
				Timestamp: ev.FullDocument.Timestamp,
				Data:      json.RawMessage(ev.FullDocument.Data),
			}
			s.cacheSet(key, env)
			onChange(key, env.Data)
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			s.log.Warn().Err(err).Msg("change stream terminated")
		}
	}()

	return cancel, nil
}

// Ping probes connectivity; the caller bounds the latency via ctx.
func (s *Store) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

func (s *Store) cacheGet(key string) (domain.Envelope, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	env, ok := s.cache[key]
	return env, ok
}

func (s *Store) cacheSet(key string, env domain.Envelope) {
	s.cacheMu.Lock()
	s.cache[key] = env
	s.cacheMu.Unlock()
}

func (s *Store) cacheDel(key string) {
	s.cacheMu.Lock()
	delete(s.cache, key)
	s.cacheMu.Unlock()
}
