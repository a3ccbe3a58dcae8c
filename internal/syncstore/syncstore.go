// Package syncstore implements the synchronized storage core: a local
// durable cache reconciled with a remote key-value store under uncertain
// connectivity. Writes are local-first and never fail because the remote is
// down; reads prefer successfully fetched remote data and repair a
// confirmed-empty remote from the local cache.
package syncstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/provnet/isp-admin/internal/core/domain"
	"github.com/provnet/isp-admin/internal/core/ports"
	"github.com/provnet/isp-admin/internal/metrics"
)

const (
	defaultSetTimeout   = 3 * time.Second
	defaultFetchTimeout = 4 * time.Second
)

// Options tunes facade timeouts. Zero values fall back to the recommended
// defaults.
type Options struct {
	SetTimeout   time.Duration
	FetchTimeout time.Duration
}

// Store is the Synchronized Storage Facade. It satisfies ports.SyncStorage.
type Store struct {
	local  ports.LocalStore
	remote ports.RemoteStore
	conn   *ConnectionManager
	bus    *ChangeBus
	log    zerolog.Logger

	setTimeout   time.Duration
	fetchTimeout time.Duration

	fetchGroup singleflight.Group

	// Remote live subscription shared by all change listeners; reference
	// counted so the last unsubscribe tears it down.
	subMu        sync.Mutex
	subCount     int
	remoteUnsub  func()
	reconnectOne sync.Once
}

var _ ports.SyncStorage = (*Store)(nil)

// New builds the facade from its collaborators.
func New(local ports.LocalStore, remote ports.RemoteStore, conn *ConnectionManager, bus *ChangeBus, opts Options, log zerolog.Logger) *Store {
	if opts.SetTimeout <= 0 {
		opts.SetTimeout = defaultSetTimeout
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	return &Store{
		local:        local,
		remote:       remote,
		conn:         conn,
		bus:          bus,
		log:          log,
		setTimeout:   opts.SetTimeout,
		fetchTimeout: opts.FetchTimeout,
	}
}

// SetItem writes value under key. The local write is unconditional and
// authoritative; the remote write is best-effort under a bounded timeout and
// its failure is logged, never surfaced. The only error returned is a local
// environment failure (marshal or local store).
func (s *Store) SetItem(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		metrics.StorageOperationsTotal.WithLabelValues("set", "error").Inc()
		return err
	}
	env := domain.NewEnvelope(raw)

	if err := s.local.Save(key, env); err != nil {
		metrics.StorageOperationsTotal.WithLabelValues("set", "error").Inc()
		return err
	}

	outcome := "synced"
	putCtx, cancel := context.WithTimeout(ctx, s.setTimeout)
	if err := s.remote.Put(putCtx, key, env); err != nil {
		outcome = "local_only"
		metrics.RemoteFallbacksTotal.WithLabelValues("set").Inc()
		s.log.Warn().Err(err).Str("key", key).Msg("remote write failed, kept local copy")
	}
	cancel()

	metrics.StorageOperationsTotal.WithLabelValues("set", outcome).Inc()
	metrics.ChangeEventsTotal.WithLabelValues("local").Inc()
	s.bus.Publish(key, raw)
	return nil
}

type fetchResult struct {
	env    domain.Envelope
	exists bool
	err    error
}

// GetItem resolves the best-known value for key into dest. dest must be a
// pointer; it keeps its prior (default) value when no data exists anywhere.
// The call never fails because of remote unavailability.
func (s *Store) GetItem(ctx context.Context, key string, dest any) error {
	baseline, haveLocal := s.local.Load(key)

	v, _, _ := s.fetchGroup.Do(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
		env, exists, err := s.remote.Fetch(fetchCtx, key)
		return fetchResult{env: env, exists: exists, err: err}, nil
	})
	res := v.(fetchResult)

	switch {
	case res.err == nil && res.exists:
		// Remote wins over any stale local copy.
		if err := s.local.Save(key, res.env); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("local refresh after remote read failed")
		}
		metrics.StorageOperationsTotal.WithLabelValues("get", "synced").Inc()
		return s.unmarshalInto(key, res.env.Data, dest)

	case res.err == nil && haveLocal:
		// Remote confirmed empty: promote the local copy (repair write).
		// Promotion never happens on a mere timeout, so an outage cannot
		// cause a false-empty overwrite.
		putCtx, cancel := context.WithTimeout(ctx, s.setTimeout)
		if err := s.remote.Put(putCtx, key, baseline); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("repair write failed")
		} else {
			metrics.RepairWritesTotal.Inc()
			s.log.Info().Str("key", key).Msg("repaired empty remote key from local cache")
		}
		cancel()
		metrics.StorageOperationsTotal.WithLabelValues("get", "synced").Inc()
		return s.unmarshalInto(key, baseline.Data, dest)

	case res.err != nil && haveLocal:
		metrics.RemoteFallbacksTotal.WithLabelValues("get").Inc()
		metrics.StorageOperationsTotal.WithLabelValues("get", "local_only").Inc()
		s.log.Debug().Err(res.err).Str("key", key).Msg("remote read failed, serving local cache")
		return s.unmarshalInto(key, baseline.Data, dest)

	case res.err != nil:
		metrics.RemoteFallbacksTotal.WithLabelValues("get").Inc()
		metrics.StorageOperationsTotal.WithLabelValues("get", "local_only").Inc()
		s.log.Debug().Err(res.err).Str("key", key).Msg("remote read failed and no local copy, serving default")
		return nil

	default:
		// Confirmed empty everywhere: leave the caller's default untouched.
		metrics.StorageOperationsTotal.WithLabelValues("get", "synced").Inc()
		return nil
	}
}

// GetItemSync reads the local cache only. It reports whether a usable value
// was found.
func (s *Store) GetItemSync(key string, dest any) bool {
	env, ok := s.local.Load(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("corrupt local entry, serving default")
		return false
	}
	return true
}

// RemoveItem mirrors SetItem's policy: local removal is authoritative,
// remote removal is best-effort.
func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if err := s.local.Remove(key); err != nil {
		metrics.StorageOperationsTotal.WithLabelValues("remove", "error").Inc()
		return err
	}

	outcome := "synced"
	rmCtx, cancel := context.WithTimeout(ctx, s.setTimeout)
	if err := s.remote.Remove(rmCtx, key); err != nil {
		outcome = "local_only"
		metrics.RemoteFallbacksTotal.WithLabelValues("remove").Inc()
		s.log.Warn().Err(err).Str("key", key).Msg("remote removal failed")
	}
	cancel()

	metrics.StorageOperationsTotal.WithLabelValues("remove", outcome).Inc()
	metrics.ChangeEventsTotal.WithLabelValues("local").Inc()
	s.bus.Publish(key, nil)
	return nil
}

// Clear wipes the local cache and best-effort removes the well-known keys
// remotely.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.local.Clear(); err != nil {
		metrics.StorageOperationsTotal.WithLabelValues("clear", "error").Inc()
		return err
	}

	outcome := "synced"
	for _, key := range domain.WellKnownKeys() {
		rmCtx, cancel := context.WithTimeout(ctx, s.setTimeout)
		if err := s.remote.Remove(rmCtx, key); err != nil {
			outcome = "local_only"
			s.log.Warn().Err(err).Str("key", key).Msg("remote removal failed during clear")
		}
		cancel()
		s.bus.Publish(key, nil)
	}
	metrics.StorageOperationsTotal.WithLabelValues("clear", outcome).Inc()
	return nil
}

// AddChangeListener registers onChange for local mutations and remote
// live-subscription events on the well-known keys. The remote subscription
// is shared and reference counted; the returned function deregisters the
// bus handler and releases the remote side, so no partial cleanup is
// possible.
func (s *Store) AddChangeListener(onChange ports.ChangeHandler) (func(), error) {
	unsubBus := s.bus.Subscribe(onChange)

	if err := s.acquireRemoteSubscription(); err != nil {
		// Local notifications still work offline; the remote feed is
		// re-attempted by the next listener registration.
		s.log.Warn().Err(err).Msg("remote subscription unavailable, listener is local-only")
		return unsubBus, nil
	}

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			unsubBus()
			s.releaseRemoteSubscription()
		})
	}
	return unsub, nil
}

func (s *Store) acquireRemoteSubscription() error {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if s.subCount > 0 {
		s.subCount++
		return nil
	}

	unsub, err := s.remote.Subscribe(context.Background(), domain.WellKnownKeys(), s.onRemoteChange)
	if err != nil {
		return err
	}
	s.remoteUnsub = unsub
	s.subCount = 1
	return nil
}

func (s *Store) releaseRemoteSubscription() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	s.subCount--
	if s.subCount > 0 {
		return
	}
	if s.remoteUnsub != nil {
		s.remoteUnsub()
		s.remoteUnsub = nil
	}
	s.subCount = 0
}

// onRemoteChange refreshes the local cache from a remote push and fans the
// event out to subscribers. Remote events interleave arbitrarily with local
// writes; consumers see eventual consistency, not linearizability.
func (s *Store) onRemoteChange(key string, data json.RawMessage) {
	if data == nil {
		if err := s.local.Remove(key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("local removal after remote event failed")
		}
	} else {
		if err := s.local.Save(key, domain.NewEnvelope(data)); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("local refresh after remote event failed")
		}
	}
	metrics.ChangeEventsTotal.WithLabelValues("remote").Inc()
	s.bus.Publish(key, data)
}

// CheckConnection reports remote reachability. Callers use it to warn about
// offline mode, never to gate reads or writes.
func (s *Store) CheckConnection(ctx context.Context) bool {
	return s.conn.Check(ctx)
}

// ResetConnection clears connectivity throttle state so the next check
// probes fresh.
func (s *Store) ResetConnection() {
	s.conn.Reset()
}

// StartAutoReconnect launches a background loop that re-checks connectivity
// every retry interval until ctx is cancelled. Safe to call once per store;
// subsequent calls are no-ops.
func (s *Store) StartAutoReconnect(ctx context.Context) {
	s.reconnectOne.Do(func() {
		go func() {
			ticker := time.NewTicker(s.conn.retryInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if connected, known := s.conn.State().Snapshot(); !known || !connected {
						s.conn.Check(ctx)
					}
				}
			}
		}()
	})
}

func (s *Store) unmarshalInto(key string, data json.RawMessage, dest any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// Corrupt payloads degrade to the caller's default, per the
		// fail-soft read contract.
		s.log.Warn().Err(err).Str("key", key).Msg("corrupt stored entry, serving default")
	}
	return nil
}
