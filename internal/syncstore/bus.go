package syncstore

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/provnet/isp-admin/internal/core/ports"
)

type busSubscriber struct {
	id string
	fn ports.ChangeHandler
}

// ChangeBus decouples storage mutation sources from consumers. Publish fans
// out synchronously, in registration order, on the caller's goroutine.
// There is no buffering or replay: subscribers registered after a publish
// never see that event.
type ChangeBus struct {
	mu   sync.RWMutex
	subs []busSubscriber
}

// NewChangeBus returns an empty bus.
func NewChangeBus() *ChangeBus {
	return &ChangeBus{}
}

// Subscribe registers fn and returns a function that removes exactly this
// registration, leaving all other subscribers intact.
func (b *ChangeBus) Subscribe(fn ports.ChangeHandler) func() {
	id := uuid.NewString()

	b.mu.Lock()
	b.subs = append(b.subs, busSubscriber{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers (key, data) to every subscriber in registration order.
func (b *ChangeBus) Publish(key string, data json.RawMessage) {
	b.mu.RLock()
	subs := make([]busSubscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(key, data)
	}
}

// Len reports the current number of subscribers.
func (b *ChangeBus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
