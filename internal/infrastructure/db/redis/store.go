package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/provnet/isp-admin/internal/core/domain"
	"github.com/provnet/isp-admin/internal/core/ports"
)

const (
	// Key format: kv:<key> for values, kv:events:<key> for change channels.
	keyPrefix     = "kv:"
	channelPrefix = "kv:events:"
)

// Store implements ports.RemoteStore on Redis. Each value is an envelope
// stored under kv:<key>; every Put and Remove additionally publishes the
// envelope (or an empty payload for removals) on kv:events:<key>, which
// subscribers listen on. The store keeps an adapter-local cache of the last
// successfully fetched envelope per key and serves it when the remote read
// fails.
type Store struct {
	client *redis.Client
	log    zerolog.Logger

	cacheMu sync.RWMutex
	cache   map[string]domain.Envelope
}

var _ ports.RemoteStore = (*Store)(nil)

// NewStore wraps an existing Redis client.
func NewStore(client *redis.Client, log zerolog.Logger) *Store {
	return &Store{
		client: client,
		log:    log,
		cache:  make(map[string]domain.Envelope),
	}
}

// Name identifies the backend in logs and health output.
func (s *Store) Name() string { return "redis" }

// Put writes the envelope and notifies subscribers.
func (s *Store) Put(ctx context.Context, key string, env domain.Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("redis put %s: %w", key, err)
	}
	if err := s.client.Set(ctx, keyPrefix+key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis put %s: %w", key, err)
	}
	s.cacheSet(key, env)
	if err := s.client.Publish(ctx, channelPrefix+key, raw).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("change publish failed")
	}
	return nil
}

// Fetch reads the envelope under key. A confirmed-missing key returns
// exists=false with a nil error. Any other failure falls back to the last
// successfully fetched envelope before propagating the error.
func (s *Store) Fetch(ctx context.Context, key string) (domain.Envelope, bool, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Envelope{}, false, nil
	}
	if err != nil {
		if env, ok := s.cacheGet(key); ok {
			s.log.Debug().Err(err).Str("key", key).Msg("redis read failed, serving adapter cache")
			return env, true, nil
		}
		return domain.Envelope{}, false, fmt.Errorf("redis fetch %s: %w", key, err)
	}

	var env domain.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if cached, ok := s.cacheGet(key); ok {
			return cached, true, nil
		}
		return domain.Envelope{}, false, fmt.Errorf("redis fetch %s: %w", key, err)
	}
	s.cacheSet(key, env)
	return env, true, nil
}

// Remove deletes the key and notifies subscribers with an empty payload.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis remove %s: %w", key, err)
	}
	s.cacheDel(key)
	if err := s.client.Publish(ctx, channelPrefix+key, "").Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("removal publish failed")
	}
	return nil
}

// Subscribe listens on the change channel of every key and delivers each
// event to onChange. The returned function closes the subscription and
// stops the delivery goroutine.
func (s *Store) Subscribe(ctx context.Context, keys []string, onChange ports.ChangeHandler) (func(), error) {
	channels := make([]string, len(keys))
	for i, key := range keys {
		channels[i] = channelPrefix + key
	}

	pubsub := s.client.Subscribe(ctx, channels...)
	// Confirm the subscription so a dead server fails fast instead of
	// silently delivering nothing.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			key := msg.Channel[len(channelPrefix):]
			if msg.Payload == "" {
				s.cacheDel(key)
				onChange(key, nil)
				continue
			}
			var env domain.Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				s.log.Warn().Err(err).Str("key", key).Msg("malformed change event")
				continue
			}
			s.cacheSet(key, env)
			onChange(key, env.Data)
		}
	}()

	return func() {
		if err := pubsub.Close(); err != nil {
			s.log.Warn().Err(err).Msg("pubsub close failed")
		}
	}, nil
}

// Ping probes connectivity; the caller bounds the latency via ctx.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
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
