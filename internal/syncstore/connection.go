package syncstore

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/provnet/isp-admin/internal/core/ports"
	"github.com/provnet/isp-admin/internal/metrics"
)

const (
	defaultProbeTimeout  = 3 * time.Second
	defaultRetryInterval = 5 * time.Second
)

// ConnectionState holds the shared connectivity cache. It is owned by a
// ConnectionManager instance rather than living in package globals, so tests
// can run multiple independent managers.
type ConnectionState struct {
	mu        sync.Mutex
	known     bool
	connected bool
	lastCheck time.Time
}

// Snapshot returns the cached status and whether it is known at all.
func (s *ConnectionState) Snapshot() (connected, known bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected, s.known
}

func (s *ConnectionState) set(connected bool) {
	s.mu.Lock()
	s.known = true
	s.connected = connected
	s.lastCheck = time.Now()
	s.mu.Unlock()
}

func (s *ConnectionState) throttled(window time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.lastCheck.IsZero() && time.Since(s.lastCheck) < window
}

func (s *ConnectionState) reset() {
	s.mu.Lock()
	s.known = false
	s.connected = false
	s.lastCheck = time.Time{}
	s.mu.Unlock()
}

// ConnectionManager performs single-flight, rate-limited connectivity probes
// against the remote store and schedules automatic retries while
// disconnected. It runs for the lifetime of the process; there is no
// terminal state.
type ConnectionManager struct {
	state         *ConnectionState
	remote        ports.RemoteStore
	probeTimeout  time.Duration
	retryInterval time.Duration
	log           zerolog.Logger

	sf singleflight.Group

	timerMu    sync.Mutex
	retryTimer *time.Timer
}

// NewConnectionManager builds a manager probing remote. Zero durations fall
// back to the recommended defaults (3s probe timeout, 5s retry interval).
func NewConnectionManager(remote ports.RemoteStore, probeTimeout, retryInterval time.Duration, log zerolog.Logger) *ConnectionManager {
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}
	if retryInterval <= 0 {
		retryInterval = defaultRetryInterval
	}
	return &ConnectionManager{
		state:         &ConnectionState{},
		remote:        remote,
		probeTimeout:  probeTimeout,
		retryInterval: retryInterval,
		log:           log,
	}
}

// State exposes the shared connectivity cache to composing components.
func (m *ConnectionManager) State() *ConnectionState {
	return m.state
}

// Check returns the best-known connectivity status. A cached connected
// status is returned immediately. While throttled (a probe ran within the
// retry interval) the cached value is returned without re-probing; unknown
// counts as disconnected. Otherwise a fresh probe runs, coalesced so that
// concurrent callers share a single in-flight probe.
func (m *ConnectionManager) Check(ctx context.Context) bool {
	if connected, known := m.state.Snapshot(); known && connected {
		return true
	}
	if m.state.throttled(m.retryInterval) {
		connected, _ := m.state.Snapshot()
		return connected
	}

	v, _, _ := m.sf.Do("probe", func() (any, error) {
		return m.probe(ctx), nil
	})
	return v.(bool)
}

// Reset clears the throttle state so the next Check probes fresh. Used after
// user-initiated retries and suspected stale connections.
func (m *ConnectionManager) Reset() {
	m.state.reset()
}

func (m *ConnectionManager) probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	err := m.remote.Ping(probeCtx)
	connected := err == nil
	m.state.set(connected)

	if connected {
		metrics.ConnectionChecksTotal.WithLabelValues("connected").Inc()
		metrics.ConnectionStatus.Set(1)
		m.log.Debug().Str("backend", m.remote.Name()).Msg("remote store reachable")
	} else {
		metrics.ConnectionChecksTotal.WithLabelValues("disconnected").Inc()
		metrics.ConnectionStatus.Set(0)
		m.log.Warn().Err(err).Str("backend", m.remote.Name()).Msg("remote store unreachable")
		m.scheduleRetry()
	}
	return connected
}

// scheduleRetry arms a single deferred probe. An already armed timer is left
// alone so repeated failures do not stack retries.
func (m *ConnectionManager) scheduleRetry() {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()
	if m.retryTimer != nil {
		return
	}
	m.retryTimer = time.AfterFunc(m.retryInterval, func() {
		m.timerMu.Lock()
		m.retryTimer = nil
		m.timerMu.Unlock()

		m.state.reset()
		m.Check(context.Background())
	})
}
