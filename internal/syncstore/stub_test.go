package syncstore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/provnet/isp-admin/internal/core/domain"
	"github.com/provnet/isp-admin/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub local store
// ---------------------------------------------------------------------------

type stubLocal struct {
	mu      sync.Mutex
	data    map[string]domain.Envelope
	saveErr error
}

func newStubLocal() *stubLocal {
	return &stubLocal{data: make(map[string]domain.Envelope)}
}

func (l *stubLocal) Save(key string, env domain.Envelope) error {
	if l.saveErr != nil {
		return l.saveErr
	}
	l.mu.Lock()
	l.data[key] = env
	l.mu.Unlock()
	return nil
}

func (l *stubLocal) Load(key string) (domain.Envelope, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	env, ok := l.data[key]
	return env, ok
}

func (l *stubLocal) Remove(key string) error {
	l.mu.Lock()
	delete(l.data, key)
	l.mu.Unlock()
	return nil
}

func (l *stubLocal) Clear() error {
	l.mu.Lock()
	l.data = make(map[string]domain.Envelope)
	l.mu.Unlock()
	return nil
}

func (l *stubLocal) Close() error { return nil }

// ---------------------------------------------------------------------------
// In-memory stub remote store
// ---------------------------------------------------------------------------

type stubRemote struct {
	mu   sync.Mutex
	data map[string]domain.Envelope

	failAll   bool          // every data call errors
	pingErr   error         // if set, Ping returns this error
	callDelay time.Duration // artificial latency on Fetch/Ping

	putCalls   int
	fetchCalls int
	pingCalls  int32

	subscribed bool
	onChange   ports.ChangeHandler
}

func newStubRemote() *stubRemote {
	return &stubRemote{data: make(map[string]domain.Envelope)}
}

var errRemoteDown = context.DeadlineExceeded

func (r *stubRemote) wait(ctx context.Context) error {
	if r.callDelay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(r.callDelay):
		return nil
	}
}

func (r *stubRemote) Put(ctx context.Context, key string, env domain.Envelope) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errRemoteDown
	}
	r.putCalls++
	r.data[key] = env
	return nil
}

func (r *stubRemote) Fetch(ctx context.Context, key string) (domain.Envelope, bool, error) {
	if err := r.wait(ctx); err != nil {
		return domain.Envelope{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchCalls++
	if r.failAll {
		return domain.Envelope{}, false, errRemoteDown
	}
	env, ok := r.data[key]
	return env, ok, nil
}

func (r *stubRemote) Remove(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errRemoteDown
	}
	delete(r.data, key)
	return nil
}

func (r *stubRemote) Subscribe(_ context.Context, _ []string, onChange ports.ChangeHandler) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errRemoteDown
	}
	r.subscribed = true
	r.onChange = onChange
	return func() {
		r.mu.Lock()
		r.subscribed = false
		r.onChange = nil
		r.mu.Unlock()
	}, nil
}

// push simulates a remote-originated change event reaching the adapter.
func (r *stubRemote) push(key string, data []byte) {
	r.mu.Lock()
	fn := r.onChange
	r.mu.Unlock()
	if fn != nil {
		fn(key, data)
	}
}

func (r *stubRemote) Ping(ctx context.Context) error {
	atomic.AddInt32(&r.pingCalls, 1)
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errRemoteDown
	}
	return r.pingErr
}

func (r *stubRemote) Name() string { return "stub" }

func (r *stubRemote) pings() int32 { return atomic.LoadInt32(&r.pingCalls) }

func (r *stubRemote) puts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.putCalls
}
