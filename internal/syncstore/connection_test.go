package syncstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestCheck_CachedConnectedSkipsProbe(t *testing.T) {
	remote := newStubRemote()
	mgr := NewConnectionManager(remote, time.Second, time.Hour, zerolog.Nop())
	ctx := context.Background()

	if !mgr.Check(ctx) {
		t.Fatalf("expected connected")
	}
	if !mgr.Check(ctx) {
		t.Fatalf("expected cached connected")
	}
	if remote.pings() != 1 {
		t.Fatalf("expected 1 probe, got %d", remote.pings())
	}
}

func TestCheck_ThrottleReturnsCachedDisconnected(t *testing.T) {
	remote := newStubRemote()
	remote.failAll = true
	mgr := NewConnectionManager(remote, time.Second, time.Hour, zerolog.Nop())
	ctx := context.Background()

	if mgr.Check(ctx) {
		t.Fatalf("expected disconnected")
	}
	if mgr.Check(ctx) {
		t.Fatalf("expected throttled cached disconnected")
	}
	if remote.pings() != 1 {
		t.Fatalf("throttle window ignored: %d probes", remote.pings())
	}
}

func TestCheck_ConcurrentCallersShareOneProbe(t *testing.T) {
	remote := newStubRemote()
	remote.callDelay = 50 * time.Millisecond
	mgr := NewConnectionManager(remote, time.Second, time.Hour, zerolog.Nop())

	var wg sync.WaitGroup
	results := make([]bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = mgr.Check(context.Background())
		}(i)
	}
	wg.Wait()

	if remote.pings() != 1 {
		t.Fatalf("expected a single in-flight probe, got %d", remote.pings())
	}
	for i, ok := range results {
		if !ok {
			t.Fatalf("caller %d got disconnected", i)
		}
	}
}

func TestReset_ForcesFreshProbe(t *testing.T) {
	remote := newStubRemote()
	remote.failAll = true
	mgr := NewConnectionManager(remote, time.Second, time.Hour, zerolog.Nop())
	ctx := context.Background()

	mgr.Check(ctx)

	remote.mu.Lock()
	remote.failAll = false
	remote.mu.Unlock()

	// Still throttled: the cached disconnected status survives the recovery.
	if mgr.Check(ctx) {
		t.Fatalf("expected throttled disconnected")
	}

	mgr.Reset()
	if !mgr.Check(ctx) {
		t.Fatalf("expected fresh probe to report connected after reset")
	}
	if remote.pings() != 2 {
		t.Fatalf("expected 2 probes, got %d", remote.pings())
	}
}

func TestScheduleRetry_ReprobesAfterInterval(t *testing.T) {
	remote := newStubRemote()
	remote.failAll = true
	mgr := NewConnectionManager(remote, time.Second, 30*time.Millisecond, zerolog.Nop())

	if mgr.Check(context.Background()) {
		t.Fatalf("expected disconnected")
	}

	remote.mu.Lock()
	remote.failAll = false
	remote.mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if connected, known := mgr.State().Snapshot(); known && connected {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("automatic retry never restored connectivity")
}

func TestSnapshot_UnknownUntilFirstProbe(t *testing.T) {
	mgr := NewConnectionManager(newStubRemote(), time.Second, time.Hour, zerolog.Nop())

	if _, known := mgr.State().Snapshot(); known {
		t.Fatalf("status known before any probe")
	}
	mgr.Check(context.Background())
	if _, known := mgr.State().Snapshot(); !known {
		t.Fatalf("status unknown after probe")
	}
}
