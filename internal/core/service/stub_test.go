package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/provnet/isp-admin/internal/core/ports"
)

// stubStorage is an in-memory SyncStorage for service tests. It keeps raw
// JSON per key, the same shape the real facade persists.
type stubStorage struct {
	mu   sync.Mutex
	data map[string]json.RawMessage

	getErr error
	setErr error
}

var _ ports.SyncStorage = (*stubStorage)(nil)

func newStubStorage() *stubStorage {
	return &stubStorage{data: make(map[string]json.RawMessage)}
}

func (s *stubStorage) seed(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
}

func (s *stubStorage) SetItem(_ context.Context, key string, value any) error {
	if s.setErr != nil {
		return s.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *stubStorage) GetItem(_ context.Context, key string, dest any) error {
	if s.getErr != nil {
		return s.getErr
	}
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func (s *stubStorage) GetItemSync(key string, dest any) bool {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (s *stubStorage) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

func (s *stubStorage) Clear(context.Context) error {
	s.mu.Lock()
	s.data = make(map[string]json.RawMessage)
	s.mu.Unlock()
	return nil
}

func (s *stubStorage) AddChangeListener(ports.ChangeHandler) (func(), error) {
	return func() {}, nil
}

func (s *stubStorage) CheckConnection(context.Context) bool { return true }
func (s *stubStorage) ResetConnection()                     {}
func (s *stubStorage) StartAutoReconnect(context.Context)   {}
